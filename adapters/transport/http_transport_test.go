package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mokili/momo/core"
	"github.com/mokili/momo/ports"
)

func TestExecuteRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "Bearer abc", r.Header.Get("Authorization"))

		body := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(body)
		require.Equal(t, `{"amount":"100"}`, string(body))

		w.Header().Set("X-Request-Id", "req-1")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	transport := NewHTTPTransport(time.Second, 5*time.Second)
	defer transport.Close()

	resp, err := transport.Execute(context.Background(), ports.Request{
		Method:  http.MethodPost,
		URL:     server.URL,
		Headers: map[string]string{"Authorization": "Bearer abc"},
		Body:    []byte(`{"amount":"100"}`),
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, "ok", string(resp.Body))
	require.Equal(t, "req-1", resp.Headers["X-Request-Id"])
}

func TestExecuteReturnsTransportErrorOnConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens anymore

	transport := NewHTTPTransport(time.Second, time.Second)
	defer transport.Close()

	_, err := transport.Execute(context.Background(), ports.Request{
		Method: http.MethodGet,
		URL:    server.URL,
	})

	var transportErr *core.TransportError
	require.ErrorAs(t, err, &transportErr)
	require.Contains(t, transportErr.Op, "GET")
}

func TestExecuteHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	transport := NewHTTPTransport(time.Second, time.Minute)
	defer transport.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := transport.Execute(ctx, ports.Request{Method: http.MethodGet, URL: server.URL})

	var transportErr *core.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestExecuteAsyncDeliversOneResultAndCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewHTTPTransport(time.Second, 5*time.Second)
	defer transport.Close()

	results := transport.ExecuteAsync(context.Background(), ports.Request{
		Method: http.MethodGet,
		URL:    server.URL,
	})

	result := <-results
	require.NoError(t, result.Err)
	require.Equal(t, http.StatusOK, result.Response.StatusCode)

	_, open := <-results
	require.False(t, open)
}

func TestNewHTTPTransportFromClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	transport := NewHTTPTransportFromClient(server.Client())
	defer transport.Close()

	resp, err := transport.Execute(context.Background(), ports.Request{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}
