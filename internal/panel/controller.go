// Package panel wires the weather panel into a host map application.
package panel

import (
	"fmt"
	"log"
	"time"

	"github.com/i474232898/weather-dock/internal/eventloop"
	"github.com/i474232898/weather-dock/internal/geo"
	"github.com/i474232898/weather-dock/internal/host"
	"github.com/i474232898/weather-dock/internal/render"
	"github.com/i474232898/weather-dock/internal/scheduler"
	"github.com/i474232898/weather-dock/internal/settings"
	"github.com/i474232898/weather-dock/internal/weather"
)

const (
	MenuName      = "&Weather Dock"
	Title         = "Weather Dock"
	ShowActionID  = "weatherdock.show"
	SettingsID    = "weatherdock.settings"
	loadingNotice = "Loading weather data..."
)

// Options configure a Controller. Zero values pick the defaults.
type Options struct {
	QuietPeriod  time.Duration
	FetchTimeout time.Duration
	Clock        scheduler.Clock
	Projector    geo.Projector
	Renderer     *render.Renderer
}

// Controller owns the panel, its visibility and the update pipeline
// scheduler -> forecaster -> renderer -> panel.
//
// It is not safe for concurrent use: every method runs on the main control flow.
type Controller struct {
	app       host.Application
	prefs     *settings.Preferences
	projector geo.Projector
	renderer  *render.Renderer
	sched     *scheduler.Debouncer

	panel   host.Panel
	visible bool
	days    int // forecast days of the request being fetched
	subs    []host.Subscription
	detach  bool
}

var _ scheduler.Target = (*Controller)(nil)

// New creates a Controller. Call Attach to hook it into the host.
func New(app host.Application, prefs *settings.Preferences, forecaster weather.Forecaster, dispatch eventloop.Dispatcher, opts Options) *Controller {
	if opts.Projector == nil {
		opts.Projector = geo.Builtin{}
	}
	if opts.Renderer == nil {
		opts.Renderer = render.New(nil)
	}

	c := &Controller{
		app:       app,
		prefs:     prefs,
		projector: opts.Projector,
		renderer:  opts.Renderer,
	}
	c.sched = scheduler.NewDebouncer(c, forecaster, dispatch, scheduler.Options{
		QuietPeriod:  opts.QuietPeriod,
		FetchTimeout: opts.FetchTimeout,
		Clock:        opts.Clock,
	})
	return c
}

// Attach registers the menu/toolbar actions and subscribes to map changes.
func (c *Controller) Attach() {
	c.subs = append(c.subs,
		c.app.AddAction(MenuName, host.Action{
			ID:        ShowActionID,
			Text:      "Show Weather Dock",
			Icon:      "icon.svg",
			InMenu:    true,
			InToolbar: true,
			Run:       c.ShowPanel,
		}),
		c.app.AddAction(MenuName, host.Action{
			ID:            SettingsID,
			Text:          "Settings...",
			InMenu:        true,
			OpensSettings: true,
			Run:           c.OpenSettings,
		}),
		c.app.OnExtentChanged(c.extentChanged),
	)
	log.Println("panel: attached to host")
}

// Detach undoes Attach and removes the panel. It is safe to call more than once.
func (c *Controller) Detach() {
	for _, s := range c.subs {
		s.Unsubscribe()
	}
	c.subs = nil
	c.sched.Stop()

	if c.panel != nil {
		c.app.DetachPanel(c.panel)
		c.panel = nil
	}
	c.visible = false
	if !c.detach {
		c.detach = true
		log.Println("panel: detached from host")
	}
}

// ShowPanel creates the panel if needed, shows it and fetches right away.
func (c *Controller) ShowPanel() {
	if c.detach {
		return
	}
	if c.panel == nil {
		c.panel = c.app.AttachPanel(Title)
		c.panel.SetDocument(c.renderer.Message(loadingNotice))
	}
	c.visible = true
	c.sched.ExplicitTrigger()
}

// HidePanel records that the user closed the panel; it stays attached.
func (c *Controller) HidePanel() {
	c.visible = false
}

// Refresh asks for a debounced update, the same way a map move does.
func (c *Controller) Refresh() {
	c.extentChanged()
}

// OpenSettings shows the settings dialog through the host and refreshes if it was accepted.
func (c *Controller) OpenSettings() {
	d := settings.NewDialog(c.prefs)
	if c.app.ExecDialog(d) && d.Accepted() {
		c.settingsChanged()
	}
}

// ForecastDays returns the stored preference.
func (c *Controller) ForecastDays() int {
	return c.prefs.ForecastDays()
}

// ApplySettings is the non-modal equivalent of accepting the dialog with days.
func (c *Controller) ApplySettings(days int) error {
	if days < settings.MinForecastDays || days > settings.MaxForecastDays {
		return fmt.Errorf("%w: got %d", settings.ErrOutOfRange, days)
	}
	d := settings.NewDialog(c.prefs)
	d.SetForecastDays(days)
	if err := d.Accept(); err != nil {
		return err
	}
	c.settingsChanged()
	return nil
}

func (c *Controller) settingsChanged() {
	log.Printf("panel: forecast days set to %d", c.prefs.ForecastDays())
	if c.Visible() {
		c.sched.ExplicitTrigger()
	}
}

func (c *Controller) extentChanged() {
	if c.panel == nil {
		return
	}
	c.sched.ExtentChanged()
}

// Visible reports whether the panel exists and is shown.
func (c *Controller) Visible() bool {
	return c.panel != nil && c.visible
}

// State exposes the scheduler phase, mainly for diagnostics.
func (c *Controller) State() scheduler.State {
	return c.sched.State()
}

// Prepare reads the map center and the preference for a fetch about to start.
func (c *Controller) Prepare() (weather.ForecastRequest, error) {
	view := c.app.MapView()
	center := view.Extent.Center()

	coords := geo.FromWGS84(center)
	if !geo.IsWGS84(view.CRS) {
		var err error
		coords, err = c.projector.Project(center, view.CRS)
		if err != nil {
			return weather.ForecastRequest{}, fmt.Errorf("project map center: %w", err)
		}
	}

	c.days = c.prefs.ForecastDays()
	if c.panel != nil {
		c.panel.SetDocument(c.renderer.Message(fmt.Sprintf("Loading weather data for coordinates: %s...", coords)))
	}
	return weather.NewForecastRequest(coords, c.days), nil
}

// Deliver shows the result of the current fetch.
func (c *Controller) Deliver(result weather.ForecastResult) {
	if c.panel == nil {
		return
	}
	c.panel.SetDocument(c.renderer.Render(result, c.days))
}
