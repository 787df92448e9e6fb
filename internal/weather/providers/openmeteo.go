package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dock/internal/weather"
)

const (
	// DefaultOpenMeteoURL is the public forecast endpoint; it needs no API key.
	DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

	currentFields = "temperature_2m,wind_speed_10m"
	hourlyFields  = "temperature_2m,relative_humidity_2m,wind_speed_10m"

	// ParseErrorMessage is shown for any body that is not a usable JSON document.
	ParseErrorMessage = "Could not parse weather data from the server."
)

// OpenMeteoProvider implements weather.Forecaster for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

var _ weather.Forecaster = (*OpenMeteoProvider)(nil)

// OpenMeteoOption customizes an OpenMeteoProvider.
type OpenMeteoOption func(*openMeteoOptions)

type openMeteoOptions struct {
	baseURL string
	breaker BreakerConfig
}

// WithBaseURL points the provider at another endpoint (tests, self-hosted instances).
func WithBaseURL(u string) OpenMeteoOption {
	return func(o *openMeteoOptions) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithBreaker overrides the circuit breaker settings.
func WithBreaker(cfg BreakerConfig) OpenMeteoOption {
	return func(o *openMeteoOptions) {
		o.breaker = cfg
	}
}

func NewOpenMeteoProvider(client *http.Client, opts ...OpenMeteoOption) *OpenMeteoProvider {
	o := openMeteoOptions{
		baseURL: DefaultOpenMeteoURL,
		breaker: DefaultBreakerConfig,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: o.baseURL,
		client:  client,
		circuit: newCircuitBreaker("openmeteo", o.breaker),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// URL returns the request URL for req.
func (p *OpenMeteoProvider) URL(req weather.ForecastRequest) (string, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return "", err
	}

	values := u.Query()
	values.Set("latitude", fmt.Sprintf("%f", req.Latitude))
	values.Set("longitude", fmt.Sprintf("%f", req.Longitude))
	values.Set("current", currentFields)
	values.Set("hourly", hourlyFields)
	values.Set("forecast_days", strconv.Itoa(req.ForecastDays))

	u.RawQuery = values.Encode()
	return u.String(), nil
}

// Fetch performs one blocking GET and never returns an error: every failure is
// folded into the result.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, req weather.ForecastRequest) (result weather.ForecastResult) {
	defer func() {
		if r := recover(); r != nil {
			result = unexpected(fmt.Errorf("%v", r))
		}
	}()

	u, err := p.URL(req)
	if err != nil {
		return unexpected(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return unexpected(err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := doRequest(p.client, p.circuit, httpReq)
	if err != nil {
		if errors.Is(err, errNoHTTPClient) {
			return unexpected(err)
		}
		log.Printf("openmeteo: request for %s failed: %v", req.Coordinates(), err)
		return weather.Fail(weather.NetworkError, "Network Error: "+networkReason(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return weather.Fail(weather.NetworkError, "Network Error: "+networkReason(err))
	}

	var payload openMeteoResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("openmeteo: cannot decode response for %s: %v", req.Coordinates(), err)
		return weather.Fail(weather.ParseError, ParseErrorMessage)
	}
	if payload.Current == nil && payload.Hourly == nil {
		log.Printf("openmeteo: response for %s has neither current nor hourly data", req.Coordinates())
		return weather.Fail(weather.ParseError, ParseErrorMessage)
	}

	return weather.Success(payload.toForecast())
}

func unexpected(err error) weather.ForecastResult {
	return weather.Fail(weather.UnexpectedError, fmt.Sprintf("An unexpected error occurred: %v", err))
}

// networkReason strips the "Get <url>:" prefix net/http puts on transport errors.
func networkReason(err error) string {
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return ue.Err.Error()
	}
	return err.Error()
}

type openMeteoResponse struct {
	Current *struct {
		Time        string   `json:"time"`
		Temperature *float64 `json:"temperature_2m"`
		WindSpeed   *float64 `json:"wind_speed_10m"`
	} `json:"current"`
	CurrentUnits map[string]string `json:"current_units"`
	Hourly       *struct {
		Time             []string   `json:"time"`
		Temperature      []*float64 `json:"temperature_2m"`
		RelativeHumidity []*float64 `json:"relative_humidity_2m"`
		WindSpeed        []*float64 `json:"wind_speed_10m"`
	} `json:"hourly"`
	HourlyUnits map[string]string `json:"hourly_units"`
}

func (r openMeteoResponse) toForecast() weather.Forecast {
	var f weather.Forecast

	if r.Current != nil {
		f.Current = weather.CurrentConditions{
			Time:        r.Current.Time,
			Temperature: r.Current.Temperature,
			WindSpeed:   r.Current.WindSpeed,
		}
	}
	f.CurrentUnits = unitsFrom(r.CurrentUnits)
	f.HourlyUnits = unitsFrom(r.HourlyUnits)

	if r.Hourly == nil {
		return f
	}

	// The hourly arrays are parallel; the time axis decides the row count and
	// shorter value arrays leave the missing cells empty.
	f.Hourly = make([]weather.HourlyEntry, 0, len(r.Hourly.Time))
	for i, ts := range r.Hourly.Time {
		f.Hourly = append(f.Hourly, weather.HourlyEntry{
			Time:             ts,
			Temperature:      at(r.Hourly.Temperature, i),
			WindSpeed:        at(r.Hourly.WindSpeed, i),
			RelativeHumidity: at(r.Hourly.RelativeHumidity, i),
		})
	}
	return f
}

func unitsFrom(m map[string]string) weather.Units {
	return weather.Units{
		Temperature:      m["temperature_2m"],
		WindSpeed:        m["wind_speed_10m"],
		RelativeHumidity: m["relative_humidity_2m"],
	}
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}
