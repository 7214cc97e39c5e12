package llmclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownProvider is returned when the configured provider identifier
	// is not in the closed provider set.
	ErrUnknownProvider = errors.New("unknown LLM provider")

	// ErrMissingCredentials is returned when a selected HTTP backend lacks
	// its key, endpoint or deployment. Raised before any network call.
	ErrMissingCredentials = errors.New("missing LLM credentials")
)

// TransportError is a network or HTTP-layer failure calling a model backend.
// Body carries the raw error body (when available) so the degrade contract can
// attach it as diagnostic data on the substituted result.
type TransportError struct {
	Backend string
	Status  int
	Body    string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s backend returned status %d: %s", e.Backend, e.Status, e.Body)
	}
	return fmt.Sprintf("%s backend request failed: %v", e.Backend, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// transportBody extracts the diagnostic body to attach to a degraded result.
func transportBody(err error) string {
	var te *TransportError
	if errors.As(err, &te) && te.Body != "" {
		return te.Body
	}
	return err.Error()
}
