package weather

import (
	"context"
)

// Forecaster abstracts the forecast data source (Open-Meteo in production, fakes in tests).
//
// Fetch blocks for the duration of the network call and must never panic or return
// a zero ForecastResult: every failure is reported as a Failure.
type Forecaster interface {
	Fetch(ctx context.Context, req ForecastRequest) ForecastResult
}

// ForecasterFunc adapts a plain function to the Forecaster interface.
type ForecasterFunc func(ctx context.Context, req ForecastRequest) ForecastResult

func (f ForecasterFunc) Fetch(ctx context.Context, req ForecastRequest) ForecastResult {
	return f(ctx, req)
}
