package transport

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/mokili/momo/core"
	"github.com/mokili/momo/ports"
)

// HTTPTransport implements the Transport interface on net/http.
// It applies the configured connection and request timeouts and leaves
// retries and response interpretation to the caller.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates a transport with the given timeouts
func NewHTTPTransport(connectionTimeout, requestTimeout time.Duration) *HTTPTransport {
	dialer := &net.Dialer{Timeout: connectionTimeout}

	return &HTTPTransport{
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: connectionTimeout,
			},
		},
	}
}

// NewHTTPTransportFromClient wraps an existing http.Client.
// The client keeps its own timeout settings.
func NewHTTPTransportFromClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// Execute runs the request and blocks until a response or failure
func (t *HTTPTransport) Execute(ctx context.Context, req ports.Request) (ports.Response, error) {
	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return ports.Response{}, &core.TransportError{Op: req.Method + " " + req.URL, Err: err}
	}

	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return ports.Response{}, &core.TransportError{Op: req.Method + " " + req.URL, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return ports.Response{}, &core.TransportError{Op: req.Method + " " + req.URL, Err: err}
	}

	headers := make(map[string]string, len(httpResp.Header))
	for name := range httpResp.Header {
		headers[name] = httpResp.Header.Get(name)
	}

	return ports.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    headers,
		Body:       respBody,
	}, nil
}

// ExecuteAsync runs the request without blocking the caller.
// The returned channel delivers exactly one Result and is closed.
func (t *HTTPTransport) ExecuteAsync(ctx context.Context, req ports.Request) <-chan ports.Result {
	results := make(chan ports.Result, 1)

	go func() {
		defer close(results)

		resp, err := t.Execute(ctx, req)
		results <- ports.Result{Response: resp, Err: err}
	}()

	return results
}

// Close releases idle connections held by the underlying client
func (t *HTTPTransport) Close() {
	t.client.CloseIdleConnections()
}
