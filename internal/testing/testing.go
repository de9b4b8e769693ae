// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/paprika/internal/models"
)

// MockEditor is a test double for the frame edit endpoint.
//
// It returns Response and Err for every call and records each request.
type MockEditor struct {
	Response *models.EditResponse
	Err      error
	Block    chan struct{} // when non-nil, EditFrame waits for it to close

	mu       sync.Mutex
	requests []models.EditRequest
}

func (m *MockEditor) EditFrame(ctx context.Context, req models.EditRequest) (*models.EditResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.Response, m.Err
}

// Requests returns a copy of the recorded requests.
func (m *MockEditor) Requests() []models.EditRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.EditRequest(nil), m.requests...)
}

// SSEBody renders events as the service writes them: one "data: {json}" record followed by a blank line.
func SSEBody(events ...models.Event) string {
	var b strings.Builder
	for _, ev := range events {
		data, err := jsonRecord(ev)
		if err != nil {
			panic(err)
		}
		b.WriteString("data: ")
		b.Write(data)
		b.WriteString("\n\n")
	}
	return b.String()
}

func jsonRecord(ev models.Event) ([]byte, error) {
	return json.Marshal(models.ToWire(ev))
}

// ChunkReader returns one chunk per Read call, then [io.EOF].
//
// Used to simulate records split across network reads.
type ChunkReader struct {
	chunks []string
	Err    error // returned instead of io.EOF when set
}

func NewChunkReader(chunks ...string) *ChunkReader {
	return &ChunkReader{chunks: chunks}
}

// SplitEvery breaks s into pieces of at most n bytes.
func SplitEvery(s string, n int) []string {
	var out []string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

func (c *ChunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.Err != nil {
			return 0, c.Err
		}
		return 0, io.EOF
	}

	n := copy(p, c.chunks[0])
	if n < len(c.chunks[0]) {
		c.chunks[0] = c.chunks[0][n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
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

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
