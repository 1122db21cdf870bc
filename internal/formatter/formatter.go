// package formatter provides functions to export a conversation transcript to various formats (Markdown, plain text)
package formatter

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/personai/persona/internal/models"
)

// ExportToMarkdown renders a transcript as a Markdown document, one section
// per turn, attributed and timestamped.
func ExportToMarkdown(session models.Session, turns []models.Turn) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Conversation %s\n\n", session.ID))
	if session.Degraded {
		buf.WriteString("_Local session (not recorded by the backend)_\n\n")
	}

	for _, turn := range turns {
		buf.WriteString(fmt.Sprintf("## %s (%s)\n\n", turn.Role.DisplayName(), turn.Timestamp.Format(time.RFC3339)))
		buf.WriteString(turn.Content)
		buf.WriteString("\n\n")
	}

	return buf.Bytes()
}

// ExportToText renders a transcript as plain text, one line header per turn.
func ExportToText(session models.Session, turns []models.Turn) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Conversation %s\n", session.ID))
	buf.WriteString("----------------------------------------\n")

	for _, turn := range turns {
		buf.WriteString(fmt.Sprintf("[%s] %s:\n", turn.Timestamp.Format("15:04:05"), turn.Role.DisplayName()))
		buf.WriteString(turn.Content)
		buf.WriteString("\n\n")
	}

	return buf.Bytes()
}

// WriteTranscript exports the transcript to path in the format implied by the
// extension (.md for Markdown, anything else plain text).
func WriteTranscript(path string, session models.Session, turns []models.Turn) error {
	var data []byte
	if len(path) > 3 && path[len(path)-3:] == ".md" {
		data = ExportToMarkdown(session, turns)
	} else {
		data = ExportToText(session, turns)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}

	return nil
}
