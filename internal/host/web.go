package host

import (
	"errors"
	"log"
	"sort"
	"sync"

	"github.com/i474232898/weather-dock/internal/geo"
	"github.com/i474232898/weather-dock/internal/settings"
)

var (
	ErrNoPanel       = errors.New("no panel attached")
	ErrUnknownAction = errors.New("unknown action")
)

// WebHost is an Application driven by a browser map viewer over HTTP.
//
// Mutating methods are meant to run on the main control flow; the read
// accessors used by HTTP handlers are safe from any goroutine.
type WebHost struct {
	mu      sync.RWMutex
	view    View
	actions map[string]registeredAction
	panel   *webPanel

	extentChanged Signal
}

type registeredAction struct {
	Menu string
	Action
}

var _ Application = (*WebHost)(nil)

// NewWebHost creates a host whose initial view is the whole world in WGS84.
func NewWebHost() *WebHost {
	return &WebHost{
		view: View{
			Extent: geo.Extent{XMin: -180, YMin: -90, XMax: 180, YMax: 90},
			CRS:    geo.WGS84,
		},
		actions: make(map[string]registeredAction),
	}
}

func (h *WebHost) MapView() View {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.view
}

// SetView records a new visible area and notifies extent listeners.
func (h *WebHost) SetView(v View) {
	h.mu.Lock()
	h.view = v
	h.mu.Unlock()

	h.extentChanged.Emit()
}

func (h *WebHost) OnExtentChanged(fn func()) Subscription {
	return h.extentChanged.Connect(fn)
}

func (h *WebHost) AddAction(menu string, a Action) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.actions[a.ID] = registeredAction{Menu: menu, Action: a}

	return SubscriptionFunc(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.actions, a.ID)
	})
}

// ActionInfo describes a registered action for listing.
type ActionInfo struct {
	Menu string `json:"menu"`
	Action
}

// Actions lists registered actions ordered by ID.
func (h *WebHost) Actions() []ActionInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ActionInfo, 0, len(h.actions))
	for _, a := range h.actions {
		out = append(out, ActionInfo{Menu: a.Menu, Action: a.Action})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Trigger runs the action registered under id.
func (h *WebHost) Trigger(id string) error {
	h.mu.RLock()
	a, ok := h.actions[id]
	h.mu.RUnlock()
	if !ok || a.Run == nil {
		return ErrUnknownAction
	}
	a.Run()
	return nil
}

// Lookup returns the action registered under id.
func (h *WebHost) Lookup(id string) (ActionInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	a, ok := h.actions[id]
	if !ok {
		return ActionInfo{}, false
	}
	return ActionInfo{Menu: a.Menu, Action: a.Action}, true
}

// HasAction reports whether id is registered.
func (h *WebHost) HasAction(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.actions[id]
	return ok
}

func (h *WebHost) AttachPanel(title string) Panel {
	p := &webPanel{title: title}

	h.mu.Lock()
	h.panel = p
	h.mu.Unlock()

	log.Printf("INFO: panel %q attached", title)
	return p
}

func (h *WebHost) DetachPanel(p Panel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if wp, ok := p.(*webPanel); ok && wp == h.panel {
		h.panel = nil
		log.Printf("INFO: panel %q detached", wp.title)
	}
}

// Document returns the HTML currently shown in the attached panel.
func (h *WebHost) Document() (string, error) {
	h.mu.RLock()
	p := h.panel
	h.mu.RUnlock()
	if p == nil {
		return "", ErrNoPanel
	}
	return p.document(), nil
}

// ExecDialog never blocks: a browser has no modal dialog to wait on, so the
// settings endpoints apply changes directly instead.
func (h *WebHost) ExecDialog(d *settings.Dialog) bool {
	log.Printf("INFO: %q requested; edit settings through the settings endpoint", d.Title())
	return false
}

type webPanel struct {
	mu    sync.RWMutex
	title string
	doc   string
}

func (p *webPanel) SetDocument(doc string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc = doc
}

func (p *webPanel) document() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc
}
