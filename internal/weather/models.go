package weather

import (
	"fmt"
	"time"
)

// Coordinates is a WGS84 position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// ForecastRequest describes one fetch. It is built fresh for every fetch and never mutated.
type ForecastRequest struct {
	Latitude     float64 `json:"latitude"     validate:"gte=-90,lte=90"`
	Longitude    float64 `json:"longitude"    validate:"gte=-180,lte=180"`
	ForecastDays int     `json:"forecastDays" validate:"min=1,max=7"`
}

// NewForecastRequest builds a request for the given position.
func NewForecastRequest(c Coordinates, days int) ForecastRequest {
	return ForecastRequest{
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		ForecastDays: days,
	}
}

// Coordinates returns the position the request targets.
func (r ForecastRequest) Coordinates() Coordinates {
	return Coordinates{Latitude: r.Latitude, Longitude: r.Longitude}
}

// CurrentConditions holds the "now" block of a forecast.
// Nil values mean the payload did not carry the field.
type CurrentConditions struct {
	Time        string   `json:"time"`
	Temperature *float64 `json:"temperature"`
	WindSpeed   *float64 `json:"windSpeed"`
}

// HourlyEntry is one row of the hourly forecast.
type HourlyEntry struct {
	Time             string   `json:"time"` // as returned by the API, presumed UTC
	Temperature      *float64 `json:"temperature"`
	WindSpeed        *float64 `json:"windSpeed"`
	RelativeHumidity *float64 `json:"relativeHumidity"`
}

// Units are the unit labels reported by the API. Empty means not reported.
type Units struct {
	Temperature      string `json:"temperature,omitempty"`
	WindSpeed        string `json:"windSpeed,omitempty"`
	RelativeHumidity string `json:"relativeHumidity,omitempty"`
}

// Forecast is the parsed body of a successful fetch.
// Hourly entries are in chronological order.
type Forecast struct {
	Current      CurrentConditions `json:"current"`
	CurrentUnits Units             `json:"currentUnits"`
	Hourly       []HourlyEntry     `json:"hourly"`
	HourlyUnits  Units             `json:"hourlyUnits"`
}

// ErrorKind classifies a failed fetch.
type ErrorKind int

const (
	NetworkError ErrorKind = iota + 1
	ParseError
	UnexpectedError
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkError:
		return "network"
	case ParseError:
		return "parse"
	case UnexpectedError:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Failure is the error variant of a ForecastResult.
type Failure struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (f *Failure) Error() string {
	return f.Message
}

// ForecastResult is either a Forecast or a Failure, never both.
type ForecastResult struct {
	Forecast *Forecast `json:"forecast,omitempty"`
	Failure  *Failure  `json:"failure,omitempty"`
}

// Success wraps a parsed forecast.
func Success(f Forecast) ForecastResult {
	return ForecastResult{Forecast: &f}
}

// Fail builds a failed result.
func Fail(kind ErrorKind, message string) ForecastResult {
	return ForecastResult{Failure: &Failure{Kind: kind, Message: message}}
}

// OK reports whether the result carries a forecast.
func (r ForecastResult) OK() bool {
	return r.Failure == nil && r.Forecast != nil
}

// Err returns the failure as an error, or nil on success.
func (r ForecastResult) Err() error {
	if r.Failure != nil {
		return r.Failure
	}
	if r.Forecast == nil {
		return &Failure{Kind: UnexpectedError, Message: "empty forecast result"}
	}
	return nil
}

// timeLayouts are the ISO 8601 shapes the API uses for "time" fields.
var timeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseTime parses an API timestamp. Timestamps without an offset are read as UTC.
func ParseTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
