// Package repositories provides persistence implementations for the session store.
//
// The client's surfaces share state exclusively through [models.SessionStore];
// this package backs that interface with SQLite so credentials survive across
// invocations of the binary, the terminal analog of browser local storage.
package repositories
