// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/soconhq/socon/internal/services"
)

// MockBackend is a test double for [services.Backend].
//
// Behavior is overridden per-test via the Func fields; every method also
// counts its calls so tests can assert on fetch frequency.
type MockBackend struct {
	ProviderStatusFunc   func(ctx context.Context, platform string) (*services.ProviderStatus, error)
	ConnectionsFunc      func(ctx context.Context) ([]services.ConnectionRecord, error)
	AuthorizationURLFunc func(ctx context.Context, platform, returnURL string) (string, error)
	DisconnectFunc       func(ctx context.Context, platform string) error
	TestConnectionFunc   func(ctx context.Context, platform string) (*services.TestResult, error)

	mu               sync.Mutex
	connectionsCalls int
	disconnectCalls  int
}

func (m *MockBackend) ProviderStatus(ctx context.Context, platform string) (*services.ProviderStatus, error) {
	if m.ProviderStatusFunc != nil {
		return m.ProviderStatusFunc(ctx, platform)
	}
	return &services.ProviderStatus{Configured: true}, nil
}

func (m *MockBackend) Connections(ctx context.Context) ([]services.ConnectionRecord, error) {
	m.mu.Lock()
	m.connectionsCalls++
	m.mu.Unlock()

	if m.ConnectionsFunc != nil {
		return m.ConnectionsFunc(ctx)
	}
	return []services.ConnectionRecord{}, nil
}

func (m *MockBackend) AuthorizationURL(ctx context.Context, platform, returnURL string) (string, error) {
	if m.AuthorizationURLFunc != nil {
		return m.AuthorizationURLFunc(ctx, platform, returnURL)
	}
	return "https://provider.example/authorize", nil
}

func (m *MockBackend) Disconnect(ctx context.Context, platform string) error {
	m.mu.Lock()
	m.disconnectCalls++
	m.mu.Unlock()

	if m.DisconnectFunc != nil {
		return m.DisconnectFunc(ctx, platform)
	}
	return nil
}

func (m *MockBackend) TestConnection(ctx context.Context, platform string) (*services.TestResult, error) {
	if m.TestConnectionFunc != nil {
		return m.TestConnectionFunc(ctx, platform)
	}
	return &services.TestResult{Success: true}, nil
}

// ConnectionsCallCount returns how many times Connections has been invoked.
func (m *MockBackend) ConnectionsCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectionsCalls
}

// DisconnectCallCount returns how many times Disconnect has been invoked.
func (m *MockBackend) DisconnectCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnectCalls
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}
