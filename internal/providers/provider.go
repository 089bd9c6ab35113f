package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/travelmate/flightproxy/internal/models"
)

type FlightOfferProvider interface {
	Name() string
	SearchFlightOffers(ctx context.Context, params models.OfferSearchParams) (models.FlightOffers, error)
}

// ResponseError is a structured error reply from the provider. Its status
// code and body are relayed to the caller unchanged.
type ResponseError struct {
	Provider   string
	StatusCode int
	Body       json.RawMessage
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: upstream responded with status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func NewResponseError(provider string, statusCode int, body json.RawMessage) *ResponseError {
	return &ResponseError{
		Provider:   provider,
		StatusCode: statusCode,
		Body:       body,
	}
}

// ProviderError covers every failure that carries no structured reply:
// transport errors, timeouts and responses that cannot be decoded.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}
