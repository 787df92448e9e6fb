// Package render turns forecast results into the HTML documents shown in the panel.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"log"
	"strconv"
	"time"

	"github.com/i474232898/weather-dock/internal/weather"
)

const (
	DefaultTemperatureUnit = "°C"
	DefaultWindSpeedUnit   = "km/h"
	DefaultHumidityUnit    = "%"

	notAvailable = "N/A"
	unknownTime  = "Unknown Time"

	headerLayout = "Monday, January 02, 2006 15:04 MST-0700"
	hourLayout   = "Mon 15:04"
)

//go:embed templates/*.html
var files embed.FS

var templates = template.Must(template.ParseFS(files, "templates/*.html"))

// Renderer builds panel documents. Rendering has no side effects: the same
// inputs always give the same document.
type Renderer struct {
	loc *time.Location
}

// New creates a Renderer that shows times in loc (the viewer's zone).
// A nil loc means time.Local.
func New(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{loc: loc}
}

// Render produces the document for a fetch result. forecastDays only labels the
// hourly table; the row count follows the data.
func (r *Renderer) Render(res weather.ForecastResult, forecastDays int) string {
	if res.Failure != nil {
		return r.Error(res.Failure.Message)
	}
	if res.Forecast == nil {
		return r.Error("No weather data received.")
	}
	return r.execute("forecast", r.forecastView(*res.Forecast, forecastDays))
}

// Message renders a plain status message such as a loading notice.
func (r *Renderer) Message(msg string) string {
	return r.execute("message", msg)
}

// Error renders an error message with a remediation hint.
func (r *Renderer) Error(msg string) string {
	return r.execute("error", msg)
}

func (r *Renderer) execute(name string, data any) (doc string) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("ERROR: rendering %s panicked: %v", name, rec)
			doc = fallback(fmt.Sprint(data))
		}
	}()

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("ERROR: rendering %s: %v", name, err)
		return fallback(fmt.Sprint(data))
	}
	return buf.String()
}

// fallback is a template-free error document.
func fallback(msg string) string {
	return `<!DOCTYPE html><html><head><meta charset="UTF-8"></head><body>` +
		`<div class="error"><strong>Error:</strong> ` + html.EscapeString(msg) + `</div>` +
		`<p>Please try again later, check your network connection, or review settings.</p>` +
		`</body></html>`
}

type forecastView struct {
	Updated     string
	Temperature string
	Wind        string
	Title       string
	Rows        []hourRow
}

type hourRow struct {
	Time        string
	Temperature string
	Wind        string
	Humidity    string
	Alt         bool
}

func (r *Renderer) forecastView(f weather.Forecast, forecastDays int) forecastView {
	tempUnit := orDefault(f.CurrentUnits.Temperature, DefaultTemperatureUnit)
	windUnit := orDefault(f.CurrentUnits.WindSpeed, DefaultWindSpeedUnit)
	hourTempUnit := orDefault(f.HourlyUnits.Temperature, tempUnit)
	hourWindUnit := orDefault(f.HourlyUnits.WindSpeed, windUnit)
	humidityUnit := orDefault(f.HourlyUnits.RelativeHumidity, DefaultHumidityUnit)

	v := forecastView{
		Updated:     r.headerTime(f.Current.Time),
		Temperature: withUnit(raw(f.Current.Temperature), tempUnit, ""),
		Wind:        withUnit(raw(f.Current.WindSpeed), windUnit, " "),
		Title:       title(forecastDays),
		Rows:        make([]hourRow, 0, len(f.Hourly)),
	}

	for i, h := range f.Hourly {
		v.Rows = append(v.Rows, hourRow{
			Time:        r.hourLabel(h.Time),
			Temperature: withUnit(oneDecimal(h.Temperature), hourTempUnit, " "),
			Wind:        withUnit(oneDecimal(h.WindSpeed), hourWindUnit, " "),
			Humidity:    withUnit(raw(h.RelativeHumidity), humidityUnit, ""),
			Alt:         i%2 == 1,
		})
	}
	return v
}

func (r *Renderer) headerTime(s string) string {
	if s == "" {
		return unknownTime
	}
	ts, err := weather.ParseTime(s)
	if err != nil {
		return s
	}
	return ts.In(r.loc).Format(headerLayout)
}

// hourLabel converts a UTC API timestamp to the viewer's zone, e.g. "Mon 14:00".
func (r *Renderer) hourLabel(s string) string {
	ts, err := weather.ParseTime(s)
	if err != nil {
		return s
	}
	return ts.In(r.loc).Format(hourLayout)
}

func title(days int) string {
	switch {
	case days <= 0:
		return "Hourly Forecast"
	case days == 1:
		return "Hourly Forecast (1 Day)"
	default:
		return fmt.Sprintf("Hourly Forecast (%d Days)", days)
	}
}

func raw(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func oneDecimal(v *float64) string {
	if v == nil {
		return notAvailable
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func withUnit(value, unit, sep string) string {
	if value == notAvailable {
		return value
	}
	return value + sep + unit
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
