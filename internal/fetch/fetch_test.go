package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdfServer(t *testing.T, body []byte, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Fetch(t *testing.T) {
	body := []byte("%PDF-1.7 fake document body")
	srv := pdfServer(t, body, http.StatusOK)

	c := New(0, zerolog.Nop())
	doc, err := c.Fetch(context.Background(), srv.URL+"/papers/report.pdf")
	require.NoError(t, err)
	assert.Equal(t, body, doc.Data)
	assert.Equal(t, "report.pdf", doc.Label)
}

func TestClient_Fetch_rejects_non_pdf(t *testing.T) {
	srv := pdfServer(t, []byte("<html>not a pdf</html>"), http.StatusOK)

	c := New(0, zerolog.Nop())
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a PDF")
}

func TestClient_Fetch_rejects_error_status(t *testing.T) {
	srv := pdfServer(t, nil, http.StatusNotFound)

	c := New(0, zerolog.Nop())
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_Fetch_enforces_size_cap(t *testing.T) {
	body := append([]byte("%PDF-"), make([]byte, 100)...)
	srv := pdfServer(t, body, http.StatusOK)

	c := New(50, zerolog.Nop())
	_, err := c.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cap")
}

func TestClient_Fetch_rejects_unsupported_scheme(t *testing.T) {
	c := New(0, zerolog.Nop())
	_, err := c.Fetch(context.Background(), "file:///etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestClient_Fetch_honors_cancellation(t *testing.T) {
	srv := pdfServer(t, []byte("%PDF-1.7"), http.StatusOK)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(0, zerolog.Nop())
	_, err := c.Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://example.com/papers/report.pdf", "report.pdf"},
		{"https://example.com/", "example.com"},
		{"https://example.com", "example.com"},
	}
	for _, tt := range tests {
		u, err := url.Parse(tt.url)
		require.NoError(t, err)
		assert.Equal(t, tt.want, labelFor(u))
	}
}
