// Package rtbootstrap drives the Lambda Runtime API event loop: long-poll
// for the next invocation, dispatch to the handler, report the result or
// an error, repeat — forever, within a single container instance.
//
// The loop is strictly sequential. One event is in flight at a time; the
// runtime spawns no goroutine of its own to run the handler, and the POST
// for invocation N always completes before the GET for invocation N+1
// begins, since the Runtime API uses that GET's arrival as its signal
// that the previous invocation finished.
package rtbootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/localstack/go-lambda-runtime/internal/rapi"
	"github.com/localstack/go-lambda-runtime/internal/rtlog"
	"github.com/localstack/go-lambda-runtime/runtime"
)

// envTraceID is the environment variable X-Ray-instrumented user code reads
// the current invocation's trace id from. The Runtime API never requires
// this to be set, but the original runtime exports it on every invocation.
const envTraceID = "_X_AMZN_TRACE_ID"

// responsePostAttempts bounds the small, no-back-off retry the spec
// permits (but does not require) for a failed response POST: the initial
// attempt plus at most two more.
const responsePostAttempts = 3

// eventSource is the subset of *rapi.Client the loop depends on, so tests
// can drive it against a fake without a real socket.
type eventSource interface {
	NextEvent(ctx context.Context) (rapi.Event, error)
	PostResponse(ctx context.Context, requestID string, body []byte) error
	PostError(ctx context.Context, requestID, kind, message string) error
}

// Run executes the event loop until ctx is cancelled. It never returns on
// account of a transient Runtime API failure or a handler error — both
// are logged and the loop advances to the next iteration, per the
// platform contract that only the platform itself restarts containers.
func Run(ctx context.Context, client *rapi.Client, handler runtime.Handler) error {
	return run(ctx, client, handler)
}

func run(ctx context.Context, client eventSource, handler runtime.Handler) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		ev, err := client.NextEvent(ctx)
		if err != nil {
			rtlog.Log(rtlog.Error, fmt.Sprintf("next event failed: %v", err))
			continue
		}

		if ev.TraceID != "" {
			os.Setenv(envTraceID, ev.TraceID)
		}

		out, handlerErr := invoke(ctx, handler, ev)
		if handlerErr != nil {
			kind, message := classify(handlerErr)
			rtlog.LogWithRequestID(rtlog.Error, ev.RequestID, fmt.Sprintf("%s: %s", kind, message))
			if err := client.PostError(ctx, ev.RequestID, kind, message); err != nil {
				rtlog.LogWithRequestID(rtlog.Error, ev.RequestID, fmt.Sprintf("post error failed: %v", err))
			}
			continue
		}

		if err := postResponseWithRetry(ctx, client, ev.RequestID, out); err != nil {
			rtlog.LogWithRequestID(rtlog.Error, ev.RequestID, fmt.Sprintf("post response failed: %v", err))
		}
	}
}

// handlerError distinguishes a handler that returned an error (expected,
// ordinary failure reporting) from one that panicked (the boundary the
// runtime must guard because Go makes termination observable, unlike the
// "the handler is expected not to fail" baseline contract in the core
// spec).
type handlerError struct {
	panicked bool
	err      error
}

func classify(he *handlerError) (kind, message string) {
	if he.panicked {
		return "HandlerFailure", he.err.Error()
	}
	return "HandlerError", he.err.Error()
}

// invoke calls handler synchronously, recovering a panic into a
// handlerError so the loop can report it via PostError and continue
// instead of crashing the process.
func invoke(ctx context.Context, handler runtime.Handler, ev rapi.Event) (out []byte, herr *handlerError) {
	defer func() {
		if r := recover(); r != nil {
			herr = &handlerError{panicked: true, err: fmt.Errorf("handler panicked: %v", r)}
		}
	}()

	result, err := handler(ctx, ev.RequestID, ev.Body)
	if err != nil {
		return nil, &handlerError{err: err}
	}
	return result, nil
}

// postResponseWithRetry POSTs the handler's output, retrying up to
// responsePostAttempts total times with no back-off. Retrying against the
// same request id is safe: the Runtime API has not yet seen a successful
// response for it.
func postResponseWithRetry(ctx context.Context, client eventSource, requestID string, body []byte) error {
	var lastErr error
	for attempt := 1; attempt <= responsePostAttempts; attempt++ {
		lastErr = client.PostResponse(ctx, requestID, body)
		if lastErr == nil {
			return nil
		}
		rtlog.LogWithRequestID(rtlog.Error, requestID, fmt.Sprintf("post response attempt %d/%d failed: %v", attempt, responsePostAttempts, lastErr))
	}
	return lastErr
}
