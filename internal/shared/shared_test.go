package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestNewLogger(t *testing.T) {
	t.Run("With Writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		logger.Info("hello")
		if !bytes.Contains(buf.Bytes(), []byte("hello")) {
			t.Error("expected log output in the writer")
		}
	})

	t.Run("With Nil Writer", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("expected a logger")
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	t.Run("Creates Directories And Appends", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "app.log")

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		logger.Info("line one")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("expected the log file to exist, got %v", err)
		}
		if !bytes.Contains(data, []byte("line one")) {
			t.Error("expected the log line in the file")
		}
	})
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := WithLogger(NewLogger(&buf), "component", "test")

	logger.Info("tagged")
	if !bytes.Contains(buf.Bytes(), []byte("component")) {
		t.Error("expected the key-value pair in log output")
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	SetLogLevel(logger, log.ErrorLevel)
	logger.Info("hidden")
	if bytes.Contains(buf.Bytes(), []byte("hidden")) {
		t.Error("expected info output suppressed at error level")
	}
}

func TestGenerateID(t *testing.T) {
	id := GenerateID()

	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("expected a parseable UUID, got %q: %v", id, err)
	}
	if GenerateID() == id {
		t.Error("expected distinct ids")
	}
}
