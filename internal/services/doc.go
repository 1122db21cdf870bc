// Package services contains HTTP clients for the remote collaborators of the
// Persona client: the Persona backend (auth config, credential exchange,
// conversations, messages) and the Groq API (capability key validation).
//
// Both remotes are specified only at their boundary; their internals are not
// part of this system. All calls are single round-trips with no retry policy,
// relying on the transport's default timeout behavior.
package services
