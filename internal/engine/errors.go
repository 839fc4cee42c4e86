package engine

// BackendError wraps a failed LLM invocation so callers can
// distinguish retryable backend failures from fatal configuration
// errors.
type BackendError struct {
	Err error
}

func (e *BackendError) Error() string {
	return "backend invocation failed: " + e.Err.Error()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
