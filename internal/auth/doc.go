// Package auth implements the client side of the sign-in flow.
//
// Two components live here:
//
//   - [Initiator] builds the Google authorization request from backend-served
//     client configuration and sends the user agent to it.
//   - [Bootstrap] consumes the redirect result, exchanges the grant for
//     session credentials through the backend, and populates the session
//     store. Its lifecycle is an explicit state machine
//     (processing -> success | error) driven by a pure reducer, so the
//     transition logic is testable without any terminal rendering.
//
// The two never call each other; the redirect surface (internal/server) sits
// between them, and all resulting state flows through the session store.
package auth
