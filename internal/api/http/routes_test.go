package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dock/internal/eventloop"
	"github.com/i474232898/weather-dock/internal/host"
	"github.com/i474232898/weather-dock/internal/panel"
	"github.com/i474232898/weather-dock/internal/render"
	"github.com/i474232898/weather-dock/internal/settings"
	"github.com/i474232898/weather-dock/internal/weather"
)

type testServer struct {
	app  *fiber.App
	host *host.WebHost
	reqs chan weather.ForecastRequest
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	loop := eventloop.New(16)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	s := &testServer{
		app:  fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal}),
		host: host.NewWebHost(),
		reqs: make(chan weather.ForecastRequest, 16),
	}

	forecaster := weather.ForecasterFunc(func(ctx context.Context, req weather.ForecastRequest) weather.ForecastResult {
		s.reqs <- req
		return weather.Success(weather.Forecast{})
	})
	prefs := settings.NewPreferences(settings.NewMemoryStore())
	ctrl := panel.New(s.host, prefs, forecaster, loop, panel.Options{
		QuietPeriod: 10 * time.Millisecond,
		Renderer:    render.New(time.UTC),
	})
	require.True(t, loop.Call(ctrl.Attach))

	t.Cleanup(func() {
		loop.Call(ctrl.Detach)
		cancel()
		<-loop.Done()
	})

	RegisterRoutes(s.app, Deps{Loop: loop, Host: s.host, Dock: ctrl})
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)
	return resp
}

func (s *testServer) nextRequest(t *testing.T) weather.ForecastRequest {
	t.Helper()
	select {
	case req := <-s.reqs:
		return req
	case <-time.After(2 * time.Second):
		t.Fatal("no forecast request was made")
		return weather.ForecastRequest{}
	}
}

// TestForecastDaysValidation verifies that the settings endpoint enforces the
// expected 1-7 range for forecastDays.
func TestForecastDaysValidation(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{`{}`, `{"forecastDays":0}`, `{"forecastDays":8}`, `{"forecastDays":"3"}`, `not json`} {
		resp := s.do(t, http.MethodPut, "/api/v1/settings", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}

	resp := s.do(t, http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got settingsPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, settings.DefaultForecastDays, got.ForecastDays)
}

func TestSettingsUpdateRefetchesOpenPanel(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/v1/panel/open", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 1, s.nextRequest(t).ForecastDays)

	resp = s.do(t, http.MethodPut, "/api/v1/settings", `{"forecastDays":4}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, s.nextRequest(t).ForecastDays)

	resp = s.do(t, http.MethodGet, "/api/v1/settings", "")
	var got settingsPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 4, got.ForecastDays)
}

func TestPanelDocument(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/v1/panel", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/v1/panel/open", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	s.nextRequest(t)

	resp = s.do(t, http.MethodGet, "/api/v1/panel", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp = s.do(t, http.MethodPost, "/api/v1/panel/close", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestExtentValidation(t *testing.T) {
	s := newTestServer(t)

	bad := []string{
		`{"xmin":1,"ymin":2,"xmax":3}`,
		`{"xmin":5,"ymin":0,"xmax":1,"ymax":1}`,
		`[]`,
	}
	for _, body := range bad {
		resp := s.do(t, http.MethodPost, "/api/v1/map/extent", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}

	resp := s.do(t, http.MethodPost, "/api/v1/map/extent", `{"xmin":0,"ymin":40,"xmax":10,"ymax":50}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	view := s.host.MapView()
	assert.Equal(t, "EPSG:4326", view.CRS)
	assert.Equal(t, 10.0, view.Extent.XMax)
}

func TestExtentChangeRefetchesAfterQuietPeriod(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodPost, "/api/v1/panel/open", "")
	s.nextRequest(t)

	resp := s.do(t, http.MethodPost, "/api/v1/map/extent", `{"xmin":0,"ymin":40,"xmax":10,"ymax":50,"crs":"EPSG:4326"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req := s.nextRequest(t)
	assert.InDelta(t, 45, req.Latitude, 1e-9)
	assert.InDelta(t, 5, req.Longitude, 1e-9)
}

func TestActions(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/v1/actions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []actionView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 2)
	assert.Equal(t, panel.SettingsID, list[0].ID)
	assert.True(t, list[0].OpensSettings)
	assert.Equal(t, "/api/v1/settings", list[0].Href)
	assert.Equal(t, panel.ShowActionID, list[1].ID)
	assert.Empty(t, list[1].Href)
	assert.Equal(t, panel.MenuName, list[1].Menu)
	assert.True(t, list[1].InToolbar)

	resp = s.do(t, http.MethodPost, "/api/v1/actions/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/api/v1/actions/"+panel.ShowActionID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	s.nextRequest(t)
}

func TestSettingsActionPointsAtSettingsEndpoint(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/v1/actions/"+panel.SettingsID, "")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/api/v1/settings", resp.Header.Get("Location"))

	resp = s.do(t, http.MethodPut, resp.Header.Get("Location"), `{"forecastDays":6}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/api/v1/settings", "")
	var got settingsPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, 6, got.ForecastDays)
}
