package pipeline

// Status classifies how a stage ended. Callers can tell "model said nothing
// parseable" (parse_failed, raw text kept) from "model was never called"
// (unavailable/skipped).
type Status string

const (
	StatusOK             Status = "ok"
	StatusParseFailed    Status = "parse_failed"
	StatusTransportError Status = "transport_error"
	StatusUnavailable    Status = "unavailable"
	StatusSkipped        Status = "skipped"
)

// Outcome pairs a stage's structured value with the raw model text that
// produced it. Raw is kept on every path that reached the model, so a run
// stays inspectable after it completes.
type Outcome[T any] struct {
	Status Status `json:"status"`
	Value  *T     `json:"value,omitempty"`
	Raw    string `json:"raw,omitempty"`
	Err    string `json:"error,omitempty"`
}

// OK reports whether the stage produced a structured value.
func (o Outcome[T]) OK() bool { return o.Status == StatusOK && o.Value != nil }

func ok[T any](v T, raw string) Outcome[T] {
	return Outcome[T]{Status: StatusOK, Value: &v, Raw: raw}
}

func parseFailed[T any](raw string) Outcome[T] {
	return Outcome[T]{Status: StatusParseFailed, Raw: raw, Err: "model text contained no parseable JSON"}
}

func transportError[T any](err error) Outcome[T] {
	return Outcome[T]{Status: StatusTransportError, Err: err.Error()}
}

func unavailable[T any](reason string) Outcome[T] {
	return Outcome[T]{Status: StatusUnavailable, Err: reason}
}

func skipped[T any](reason string) Outcome[T] {
	return Outcome[T]{Status: StatusSkipped, Err: reason}
}
