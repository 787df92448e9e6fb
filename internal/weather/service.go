package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Service validates requests before handing them to the underlying provider
// and guarantees the Forecaster contract even if the provider misbehaves.
type Service struct {
	provider Forecaster
}

var _ Forecaster = (*Service)(nil)

// NewService creates a new Service.
func NewService(provider Forecaster) *Service {
	return &Service{provider: provider}
}

// Validate checks a request against the accepted ranges.
func Validate(req ForecastRequest) error {
	return validate.Struct(req)
}

// Fetch runs one forecast request.
func (s *Service) Fetch(ctx context.Context, req ForecastRequest) (result ForecastResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: forecast provider panicked: %v", r)
			result = Fail(UnexpectedError, fmt.Sprintf("An unexpected error occurred: %v", r))
		}
	}()

	if s.provider == nil {
		log.Printf("ERROR: no forecast provider configured")
		return Fail(UnexpectedError, "An unexpected error occurred: no forecast provider configured")
	}

	if err := Validate(req); err != nil {
		log.Printf("ERROR: rejecting forecast request %+v: %v", req, err)
		return Fail(UnexpectedError, fmt.Sprintf("An unexpected error occurred: invalid request: %s", describeInvalid(err)))
	}

	log.Printf("DEBUG: Fetch called for %s with %d forecast day(s)", req.Coordinates(), req.ForecastDays)

	result = s.provider.Fetch(ctx, req)
	if result.Failure == nil && result.Forecast == nil {
		return Fail(UnexpectedError, "An unexpected error occurred: provider returned no data")
	}
	if result.Failure != nil {
		log.Printf("forecast fetch failed for %s (%s): %s", req.Coordinates(), result.Failure.Kind, result.Failure.Message)
		return result
	}

	log.Printf("DEBUG: forecast for %s has %d hourly entries", req.Coordinates(), len(result.Forecast.Hourly))
	return result
}

// describeInvalid turns validator errors into "longitude 200 is out of range" style text.
func describeInvalid(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s %v is out of range", strings.ToLower(fe.Field()), fe.Value()))
	}
	return strings.Join(parts, "; ")
}
