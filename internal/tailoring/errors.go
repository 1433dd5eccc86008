package tailoring

import "fmt"

// Stage names the pipeline step an upstream failure happened in.
type Stage string

// Pipeline stages
const (
	StageAnalyze  Stage = "analyze"
	StageGenerate Stage = "generate"
)

// UpstreamUnavailableError is returned when the completion service failed,
// timed out, or the caller's context ended before a result could be used.
type UpstreamUnavailableError struct {
	Stage Stage
	Cause error
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s: completion service unavailable: %v", e.Stage, e.Cause)
}

func (e *UpstreamUnavailableError) Unwrap() error {
	return e.Cause
}

// UpstreamFormatError is returned when a completion reply is not parseable
// JSON after fence stripping.
type UpstreamFormatError struct {
	Stage Stage
	Cause error
}

func (e *UpstreamFormatError) Error() string {
	return fmt.Sprintf("%s: completion reply is not valid JSON: %v", e.Stage, e.Cause)
}

func (e *UpstreamFormatError) Unwrap() error {
	return e.Cause
}
