package ports

import "context"

// Request is one HTTP exchange to execute against the provider
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response is the raw outcome of an executed Request
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// Result pairs a Response with the error from a non-blocking execution
type Result struct {
	Response Response
	Err      error
}

// Transport executes HTTP exchanges on behalf of the client.
// Implementations never retry and never interpret the response; they
// only surface connectivity and timeout failures as a transport error.
// A Transport must be safe for concurrent use.
type Transport interface {
	// Execute runs the request and blocks until a response or failure
	Execute(ctx context.Context, req Request) (Response, error)

	// ExecuteAsync runs the request without blocking the caller.
	// The returned channel delivers exactly one Result and is closed.
	ExecuteAsync(ctx context.Context, req Request) <-chan Result

	// Close releases idle connections held by the transport
	Close()
}
