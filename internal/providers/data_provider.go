package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/planche-electronique/cepo/internal/models/entities"
)

// ErrFeedStatus is wrapped by every error caused by a non-2xx feed response.
var ErrFeedStatus = errors.New("unexpected feed status")

// FlightFeed is an external source of observed flights.
type FlightFeed interface {
	// FetchFlights returns the flights observed at airfield on day, in feed order.
	FetchFlights(ctx context.Context, day entities.Day, airfield string) ([]entities.Flight, error)
}

// ProviderError describes a failed call to an external data source.
type ProviderError struct {
	Code       string
	Message    string
	Details    string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
