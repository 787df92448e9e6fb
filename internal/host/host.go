// Package host describes what the map application offers to the weather panel
// and provides the signal/subscription plumbing hosts use to notify it.
package host

import (
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dock/internal/geo"
	"github.com/i474232898/weather-dock/internal/settings"
)

// View is the visible map area and the reference system its coordinates are in.
type View struct {
	Extent geo.Extent `json:"extent"`
	CRS    string     `json:"crs"`
}

// Action is a menu and/or toolbar entry.
type Action struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Icon      string `json:"icon,omitempty"`
	InMenu    bool   `json:"inMenu"`
	InToolbar bool   `json:"inToolbar"`
	// OpensSettings marks the action that shows the settings dialog.
	OpensSettings bool `json:"opensSettings,omitempty"`
	// Run is invoked on the main control flow.
	Run func() `json:"-"`
}

// Panel is a docked side panel showing an HTML document.
type Panel interface {
	SetDocument(doc string)
}

// Subscription is returned by every registration. Unsubscribe is idempotent:
// calling it on an already removed registration is not an error.
type Subscription interface {
	Unsubscribe()
}

// Application is the capability interface of the host map application.
// All methods are called on the main control flow.
type Application interface {
	// MapView returns the current visible extent and its reference system.
	MapView() View
	// OnExtentChanged registers fn to run whenever the visible area changes.
	OnExtentChanged(fn func()) Subscription
	// AddAction adds a menu/toolbar entry under menu.
	AddAction(menu string, a Action) Subscription
	// AttachPanel embeds a new side panel titled title.
	AttachPanel(title string) Panel
	// DetachPanel removes a panel returned by AttachPanel.
	DetachPanel(p Panel)
	// ExecDialog shows the settings dialog and reports whether it was accepted.
	ExecDialog(d *settings.Dialog) bool
}

// Signal fans a notification out to connected handlers.
type Signal struct {
	mu       sync.Mutex
	order    []string
	handlers map[string]func()
}

// Connect registers fn and returns its handle.
func (s *Signal) Connect(fn func()) Subscription {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handlers == nil {
		s.handlers = make(map[string]func())
	}
	s.handlers[id] = fn
	s.order = append(s.order, id)

	return &subscription{remove: func() { s.disconnect(id) }}
}

// Emit calls the connected handlers in connection order.
func (s *Signal) Emit() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.handlers[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of connected handlers.
func (s *Signal) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

func (s *Signal) disconnect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.handlers[id]; !ok {
		return
	}
	delete(s.handlers, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

type subscription struct {
	once   sync.Once
	remove func()
}

func (s *subscription) Unsubscribe() {
	s.once.Do(s.remove)
}

// SubscriptionFunc adapts a removal function; it runs at most once.
func SubscriptionFunc(remove func()) Subscription {
	return &subscription{remove: remove}
}
