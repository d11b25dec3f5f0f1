// Package rapi wraps the AWS Lambda Runtime API's three HTTP operations —
// next invocation, response, and error — as typed Go functions over the
// hand-rolled httpclient package, centralizing the path prefix and the
// request-id header handling so callers never touch raw paths.
package rapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/localstack/go-lambda-runtime/internal/rapi/httpclient"
)

const (
	basePath = "/2018-06-01"

	headerRequestID     = "lambda-runtime-aws-request-id"
	headerDeadlineMs    = "lambda-runtime-deadline-ms"
	headerInvokedArn    = "lambda-runtime-invoked-function-arn"
	headerTraceID       = "lambda-runtime-trace-id"
	envRuntimeAPI       = "AWS_LAMBDA_RUNTIME_API"
	fallbackRuntimeAPI  = "127.0.0.1:9001"
)

// ErrConfig reports a missing or malformed required environment variable.
var ErrConfig = errors.New("rapi: configuration error")

// ErrMissingRequestID reports that a next-invocation response lacked the
// Lambda-Runtime-Aws-Request-Id header.
var ErrMissingRequestID = errors.New("rapi: response missing Lambda-Runtime-Aws-Request-Id header")

// Event is one invocation delivered by the Runtime API: the opaque
// request id that must be echoed back on response/error, the raw user
// payload, and whichever optional context headers the platform sent.
type Event struct {
	RequestID          string
	Body               []byte
	DeadlineMs         string
	InvokedFunctionArn string
	TraceID            string
}

// ErrorRecord is the JSON shape POSTed to the invocation/init error
// endpoints.
type ErrorRecord struct {
	Kind    string `json:"errorType"`
	Message string `json:"errorMessage"`
}

// Client is a lightweight handle on the Runtime API endpoint. It holds no
// connection state of its own — every operation opens a fresh TCP
// connection via httpclient.
type Client struct {
	endpoint string
}

// NewClient reads AWS_LAMBDA_RUNTIME_API from the environment and returns
// a Client bound to it. The endpoint string is used verbatim as both the
// dial target and the Host header; it is never parsed or rewritten.
func NewClient() (*Client, error) {
	endpoint, ok := os.LookupEnv(envRuntimeAPI)
	if !ok || endpoint == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrConfig, envRuntimeAPI)
	}
	return &Client{endpoint: endpoint}, nil
}

// Endpoint returns the host:port this client talks to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// NextEvent long-polls GET /2018-06-01/runtime/invocation/next. It blocks
// until the platform has an invocation ready; no client-side timeout is
// applied to this call.
func (c *Client) NextEvent(ctx context.Context) (Event, error) {
	headers, body, err := httpclient.Get(ctx, c.endpoint, basePath+"/runtime/invocation/next")
	if err != nil {
		return Event{}, fmt.Errorf("rapi: next event: %w", err)
	}

	requestID, ok := headers.Get(headerRequestID)
	if !ok || requestID == "" {
		return Event{}, ErrMissingRequestID
	}

	ev := Event{RequestID: requestID, Body: body}
	ev.DeadlineMs, _ = headers.Get(headerDeadlineMs)
	ev.InvokedFunctionArn, _ = headers.Get(headerInvokedArn)
	ev.TraceID, _ = headers.Get(headerTraceID)
	return ev, nil
}

// PostResponse POSTs a handler's output to
// /2018-06-01/runtime/invocation/{requestID}/response. requestID must be
// the one returned by the immediately preceding NextEvent call.
func (c *Client) PostResponse(ctx context.Context, requestID string, body []byte) error {
	path := fmt.Sprintf("%s/runtime/invocation/%s/response", basePath, requestID)
	if err := httpclient.Post(ctx, c.endpoint, path, body); err != nil {
		return fmt.Errorf("rapi: post response for %s: %w", requestID, err)
	}
	return nil
}

// PostError POSTs an invocation error to
// /2018-06-01/runtime/invocation/{requestID}/error.
func (c *Client) PostError(ctx context.Context, requestID, kind, message string) error {
	path := fmt.Sprintf("%s/runtime/invocation/%s/error", basePath, requestID)
	return c.postErrorRecord(ctx, path, kind, message)
}

// PostInitError POSTs a startup failure to /2018-06-01/runtime/init/error.
// It is used only before the first successful NextEvent call.
func (c *Client) PostInitError(ctx context.Context, kind, message string) error {
	return c.postErrorRecord(ctx, basePath+"/runtime/init/error", kind, message)
}

func (c *Client) postErrorRecord(ctx context.Context, path, kind, message string) error {
	payload, err := json.Marshal(ErrorRecord{Kind: kind, Message: message})
	if err != nil {
		return fmt.Errorf("rapi: marshal error record: %w", err)
	}
	if err := httpclient.Post(ctx, c.endpoint, path, payload); err != nil {
		return fmt.Errorf("rapi: post error to %s: %w", path, err)
	}
	return nil
}

// FallbackEndpoint is the hard-coded Runtime API address used to report a
// startup failure when AWS_LAMBDA_RUNTIME_API itself could not be read —
// see DESIGN.md's resolution of the "init-error endpoint usage" open
// question.
const FallbackEndpoint = fallbackRuntimeAPI
