// Package models defines the domain entities and persistence interfaces for the Persona client.
//
// The package contains two categories of types:
//
// 1. Session state: credentials and identity exchanged through the [SessionStore]
//   - [Credentials] : access and refresh tokens issued by the backend
//   - [User] : the informational identity record returned by the exchange
//
// 2. Conversation state: in-memory chat data scoped to one activation
//   - [Session] : the logical conversation identifier (backend-issued or local fallback)
//   - [Turn] : one user or assistant message in the transcript
//
// Surfaces of the client (login, auth bootstrap, chat) never call each other
// directly; they communicate exclusively through a [SessionStore].
package models
