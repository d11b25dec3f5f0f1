// Package rtadapter lets a handler written against the familiar
// github.com/aws/aws-lambda-go shape — func(ctx, TIn) (TOut, error) — run
// unmodified on top of this runtime's own, simpler ABI
// (runtime.Handler). It exists because that function shape is the one
// most Go Lambda authors already know (it is the shape used by
// baselines/go/main-fibonacci.go and by every aws-lambda-go-based
// fixture in the retrieval pack), even though the runtime core itself
// never requires generics, reflection, or JSON marshaling to do its job.
package rtadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/localstack/go-lambda-runtime/runtime"
)

// Wrap adapts fn, a handler of the aws-lambda-go shape, into a
// runtime.Handler. The request body is JSON-unmarshaled into a fresh TIn,
// and fn's TOut result is JSON-marshaled back out as the response body.
func Wrap[TIn, TOut any](fn func(ctx context.Context, event TIn) (TOut, error)) runtime.Handler {
	return func(ctx context.Context, _ string, body []byte) ([]byte, error) {
		var in TIn
		if len(body) > 0 {
			if err := json.Unmarshal(body, &in); err != nil {
				return nil, fmt.Errorf("rtadapter: unmarshal event: %w", err)
			}
		}

		out, err := fn(ctx, in)
		if err != nil {
			return nil, err
		}

		resp, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("rtadapter: marshal response: %w", err)
		}
		return resp, nil
	}
}
