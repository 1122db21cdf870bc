package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/personai/persona/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSessionOpened MsgKind = iota
	MsgExchangeDone
	MsgKeyValidated
	MsgTranscriptSaved
)

// sessionOpenedMsg is the constructor for [MsgSessionOpened]
func sessionOpenedMsg(session models.Session, err error) Msg {
	return Msg{
		kind: MsgSessionOpened,
		data: struct {
			session models.Session
			err     error
		}{session, err},
	}
}

// exchangeDoneMsg is the constructor for [MsgExchangeDone]
func exchangeDoneMsg(reply models.Turn) Msg {
	return Msg{kind: MsgExchangeDone, data: reply}
}

// keyValidatedMsg is the constructor for [MsgKeyValidated]
func keyValidatedMsg(err error) Msg {
	return Msg{kind: MsgKeyValidated, data: err}
}

// transcriptSavedMsg is the constructor for [MsgTranscriptSaved]
func transcriptSavedMsg(path string, err error) Msg {
	return Msg{
		kind: MsgTranscriptSaved,
		data: struct {
			path string
			err  error
		}{path, err},
	}
}
