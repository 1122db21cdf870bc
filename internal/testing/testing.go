// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/personai/persona/internal/models"
	"github.com/personai/persona/internal/services"
	"github.com/personai/persona/internal/testing/httpmock"
)

// MemStore is an in-memory [models.SessionStore] for tests.
type MemStore struct {
	mu   sync.Mutex
	data map[string]string

	// FailSet, when set, is returned by every Set call.
	FailSet error
}

func NewMemStore() *MemStore {
	return &MemStore{data: map[string]string{}}
}

func (s *MemStore) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *MemStore) Set(key, value string) error {
	if s.FailSet != nil {
		return s.FailSet
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = map[string]string{}
	return nil
}

// MockBackend is a test double for [services.Backend]. Each func field
// overrides one call; nil fields return zero values. Call counters record
// how many network calls each operation observed.
type MockBackend struct {
	AuthConfigFn        func(ctx context.Context) (*services.AuthConfig, error)
	ExchangeCodeFn      func(ctx context.Context, code, state string) (*services.ExchangeResult, error)
	ExchangeTempTokenFn func(ctx context.Context, tempToken string) (*services.ExchangeResult, error)
	CreateChatFn        func(ctx context.Context, accessToken, title string) (*services.ChatSession, error)
	SendMessageFn       func(ctx context.Context, accessToken, apiKey string, req *services.MessageRequest) (*services.MessageReply, error)

	mu    sync.Mutex
	Calls map[string]int
}

func (m *MockBackend) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = map[string]int{}
	}
	m.Calls[name]++
}

// CallCount returns how many times the named operation was invoked.
func (m *MockBackend) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func (m *MockBackend) AuthConfig(ctx context.Context) (*services.AuthConfig, error) {
	m.record("AuthConfig")
	if m.AuthConfigFn != nil {
		return m.AuthConfigFn(ctx)
	}
	return &services.AuthConfig{}, nil
}

func (m *MockBackend) ExchangeCode(ctx context.Context, code, state string) (*services.ExchangeResult, error) {
	m.record("ExchangeCode")
	if m.ExchangeCodeFn != nil {
		return m.ExchangeCodeFn(ctx, code, state)
	}
	return &services.ExchangeResult{}, nil
}

func (m *MockBackend) ExchangeTempToken(ctx context.Context, tempToken string) (*services.ExchangeResult, error) {
	m.record("ExchangeTempToken")
	if m.ExchangeTempTokenFn != nil {
		return m.ExchangeTempTokenFn(ctx, tempToken)
	}
	return &services.ExchangeResult{}, nil
}

func (m *MockBackend) CreateChat(ctx context.Context, accessToken, title string) (*services.ChatSession, error) {
	m.record("CreateChat")
	if m.CreateChatFn != nil {
		return m.CreateChatFn(ctx, accessToken, title)
	}
	return &services.ChatSession{}, nil
}

func (m *MockBackend) SendMessage(ctx context.Context, accessToken, apiKey string, req *services.MessageRequest) (*services.MessageReply, error) {
	m.record("SendMessage")
	if m.SendMessageFn != nil {
		return m.SendMessageFn(ctx, accessToken, apiKey, req)
	}
	return &services.MessageReply{}, nil
}

var _ services.Backend = (*MockBackend)(nil)
var _ models.SessionStore = (*MemStore)(nil)

// MockValidator is a test double for [services.KeyValidator].
type MockValidator struct {
	Err   error
	Calls int
}

func (v *MockValidator) ValidateKey(ctx context.Context, key string) error {
	v.Calls++
	return v.Err
}

// MockRoundTripper allows custom HTTP responses for testing.
// It lives in the httpmock subpackage so packages imported by this one
// can use it in their in-package tests without an import cycle.
type MockRoundTripper = httpmock.MockRoundTripper

var NewMockRoundTripper = httpmock.NewMockRoundTripper

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

var _ io.Writer = (*FWriter)(nil)
