package tailoring

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonathan/portfolio-backoffice/internal/llm"
	"github.com/jonathan/portfolio-backoffice/internal/schemas"
)

// complete performs exactly one completion call bounded by timeout.
// A reply that arrives after the deadline is discarded.
func complete(ctx context.Context, client llm.Client, timeout time.Duration, stage Stage, prompt string) (string, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := client.Complete(callCtx, prompt)
	if err != nil {
		return "", &UpstreamUnavailableError{Stage: stage, Cause: err}
	}
	if err := callCtx.Err(); err != nil {
		return "", &UpstreamUnavailableError{Stage: stage, Cause: err}
	}
	return text, nil
}

// decode strips a code fence from reply, rejects non-JSON with an
// UpstreamFormatError, and validates the rest against the named schema.
func decode[T any](stage Stage, schemaName, reply string) (*T, error) {
	cleaned := []byte(llm.CleanJSONBlock(reply))

	var probe any
	if err := json.Unmarshal(cleaned, &probe); err != nil {
		return nil, &UpstreamFormatError{Stage: stage, Cause: err}
	}

	return schemas.Decode[T](schemaName, cleaned)
}
