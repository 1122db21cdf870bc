// Package ui implements the terminal chat surface with bubbletea.
//
// Two views: a capability key setup gate shown until a validated key is
// stored, and the conversation view. Entering a valid key re-opens the
// conversation session, mirroring the gate-then-chat activation flow.
// All state mutation happens in Update; network work runs in commands.
package ui
