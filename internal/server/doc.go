// Package server implements the loopback OAuth redirect surface.
//
// The identity provider redirects the user agent back to a local address with
// code, state, temp_token, or error as query parameters. The handler captures
// those parameters exactly once, renders a minimal "return to the terminal"
// page, and hands the result to the auth bootstrap over a channel. Parameter
// interpretation (priority order, exchange, persistence) belongs to the
// bootstrap, not this package.
package server
