// Package upstream defines the single error type returned when an external
// provider call fails. Failures are never classified: the HTTP layer maps
// every one of them to a 500 carrying the provider's original message.
package upstream

import "errors"

// Provider names used in failures, logs and metrics.
const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"
	ProviderStripe = "stripe"
)

// Failure wraps an error raised by an external provider.
type Failure struct {
	Provider string
	Err      error
}

// Error returns the provider's message unchanged.
func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Provider + ": unknown failure"
	}
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Wrap marks err as a failure of provider. A nil err stays nil, and an
// existing Failure is returned as is.
func Wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Failure
	if errors.As(err, &existing) {
		return err
	}
	return &Failure{Provider: provider, Err: err}
}

// AsFailure reports whether err carries a Failure and returns it.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
