package port

import "context"

type Response struct {
	Status int
	Body   []byte
}

// Result is the outcome of one fetch within a fan-out: either a response or a reason it failed.
type Result struct {
	Response *Response
	Err      error
}

type Fetcher interface {
	// Request performs a GET and returns status and body. Non-2xx statuses are not errors;
	// callers inspect Status.
	Request(ctx context.Context, url string) (*Response, error)
	// RequestMulti fetches all URLs concurrently and returns one Result per URL, preserving
	// input order. A failed fetch never affects the others.
	RequestMulti(ctx context.Context, urls []string) []Result
}
