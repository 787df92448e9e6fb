package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dock/internal/geo"
	"github.com/i474232898/weather-dock/internal/host"
	"github.com/i474232898/weather-dock/internal/settings"
)

var validate = validator.New()

// settingsPath is where browsers edit settings; the web host has no modal dialog.
const settingsPath = "/api/v1/settings"

// Dock is the part of the panel controller driven over HTTP.
// Its methods must run on the main control flow.
type Dock interface {
	ShowPanel()
	HidePanel()
	ForecastDays() int
	ApplySettings(days int) error
}

// Host is the browser-facing side of the web host.
type Host interface {
	SetView(v host.View)
	Document() (string, error)
	Actions() []host.ActionInfo
	Lookup(id string) (host.ActionInfo, bool)
	Trigger(id string) error
}

// Runner executes fn on the main control flow and waits for it.
type Runner interface {
	Call(fn func()) bool
}

// Deps groups what the routes need.
type Deps struct {
	Loop Runner
	Host Host
	Dock Dock
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	v1 := app.Group("/api/v1")

	v1.Post("/map/extent", func(c *fiber.Ctx) error {
		var req extentRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid extent payload")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if *req.XMax < *req.XMin || *req.YMax < *req.YMin {
			return fiber.NewError(fiber.StatusBadRequest, "extent maximum must not be below its minimum")
		}

		view := req.toView()
		if err := run(d.Loop, func() { d.Host.SetView(view) }); err != nil {
			return err
		}
		return c.JSON(view)
	})

	v1.Post("/panel/open", func(c *fiber.Ctx) error {
		if err := run(d.Loop, d.Dock.ShowPanel); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/panel/close", func(c *fiber.Ctx) error {
		if err := run(d.Loop, d.Dock.HidePanel); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/panel", func(c *fiber.Ctx) error {
		doc, err := d.Host.Document()
		if err != nil {
			if errors.Is(err, host.ErrNoPanel) {
				return fiber.NewError(fiber.StatusNotFound, "weather panel is not open")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read panel")
		}
		c.Type("html", "utf-8")
		return c.SendString(doc)
	})

	v1.Get("/actions", func(c *fiber.Ctx) error {
		actions := d.Host.Actions()
		out := make([]actionView, 0, len(actions))
		for _, a := range actions {
			out = append(out, newActionView(a))
		}
		return c.JSON(out)
	})

	v1.Post("/actions/:id", func(c *fiber.Ctx) error {
		id := c.Params("id")
		if a, ok := d.Host.Lookup(id); ok && a.OpensSettings {
			c.Location(settingsPath)
			return c.Status(fiber.StatusSeeOther).JSON(fiber.Map{
				"message": "edit settings with PUT " + settingsPath,
				"href":    settingsPath,
			})
		}

		var triggerErr error
		if err := run(d.Loop, func() { triggerErr = d.Host.Trigger(id) }); err != nil {
			return err
		}
		if errors.Is(triggerErr, host.ErrUnknownAction) {
			return fiber.NewError(fiber.StatusNotFound, "unknown action "+id)
		}
		if triggerErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, triggerErr.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Get("/settings", func(c *fiber.Ctx) error {
		var resp settingsPayload
		if err := run(d.Loop, func() { resp.ForecastDays = d.Dock.ForecastDays() }); err != nil {
			return err
		}
		return c.JSON(resp)
	})

	v1.Put("/settings", func(c *fiber.Ctx) error {
		var req settingsPayload
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid settings payload")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var applyErr error
		if err := run(d.Loop, func() { applyErr = d.Dock.ApplySettings(req.ForecastDays) }); err != nil {
			return err
		}
		if errors.Is(applyErr, settings.ErrOutOfRange) {
			return fiber.NewError(fiber.StatusBadRequest, applyErr.Error())
		}
		if applyErr != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to save settings")
		}
		return c.JSON(req)
	})
}

func run(loop Runner, fn func()) error {
	if !loop.Call(fn) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "shutting down")
	}
	return nil
}

// extentRequest is the visible map area reported by the viewer. An empty CRS means WGS84.
type extentRequest struct {
	XMin *float64 `json:"xmin" validate:"required"`
	YMin *float64 `json:"ymin" validate:"required"`
	XMax *float64 `json:"xmax" validate:"required"`
	YMax *float64 `json:"ymax" validate:"required"`
	CRS  string   `json:"crs" validate:"omitempty,max=64"`
}

func (r extentRequest) toView() host.View {
	crs := r.CRS
	if crs == "" {
		crs = geo.WGS84
	}
	return host.View{
		Extent: geo.Extent{XMin: *r.XMin, YMin: *r.YMin, XMax: *r.XMax, YMax: *r.YMax},
		CRS:    crs,
	}
}

// actionView is an action as listed to clients. Href is set when the action
// maps to an endpoint instead of running on the host.
type actionView struct {
	host.ActionInfo
	Href string `json:"href,omitempty"`
}

func newActionView(a host.ActionInfo) actionView {
	v := actionView{ActionInfo: a}
	if a.OpensSettings {
		v.Href = settingsPath
	}
	return v
}

type settingsPayload struct {
	ForecastDays int `json:"forecastDays" validate:"required,min=1,max=7"`
}
