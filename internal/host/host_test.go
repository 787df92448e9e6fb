package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dock/internal/geo"
	"github.com/i474232898/weather-dock/internal/settings"
)

func TestSignalUnsubscribeIsIdempotent(t *testing.T) {
	var s Signal
	var a, b int

	subA := s.Connect(func() { a++ })
	subB := s.Connect(func() { b++ })
	s.Emit()

	subA.Unsubscribe()
	subA.Unsubscribe()
	s.Emit()

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
	assert.Equal(t, 1, s.Len())

	subB.Unsubscribe()
	s.Emit()
	assert.Equal(t, 2, b)
	assert.Zero(t, s.Len())
}

func TestSignalHandlerMayUnsubscribeDuringEmit(t *testing.T) {
	var s Signal
	var sub Subscription
	calls := 0
	sub = s.Connect(func() {
		calls++
		sub.Unsubscribe()
	})

	s.Emit()
	s.Emit()
	assert.Equal(t, 1, calls)
}

func TestWebHostView(t *testing.T) {
	h := NewWebHost()
	assert.Equal(t, geo.WGS84, h.MapView().CRS)

	fired := 0
	sub := h.OnExtentChanged(func() { fired++ })

	v := View{Extent: geo.Extent{XMin: 0, YMin: 0, XMax: 10, YMax: 10}, CRS: "EPSG:3857"}
	h.SetView(v)
	assert.Equal(t, v, h.MapView())
	assert.Equal(t, 1, fired)

	sub.Unsubscribe()
	h.SetView(v)
	assert.Equal(t, 1, fired)
}

func TestWebHostActions(t *testing.T) {
	h := NewWebHost()
	ran := 0
	sub := h.AddAction("&Weather Dock", Action{ID: "show", Text: "Show", Run: func() { ran++ }})
	h.AddAction("&Weather Dock", Action{ID: "about", Text: "About"})

	list := h.Actions()
	require.Len(t, list, 2)
	assert.Equal(t, "about", list[0].ID)
	assert.Equal(t, "&Weather Dock", list[1].Menu)

	require.NoError(t, h.Trigger("show"))
	assert.Equal(t, 1, ran)
	assert.ErrorIs(t, h.Trigger("about"), ErrUnknownAction)

	info, ok := h.Lookup("show")
	require.True(t, ok)
	assert.Equal(t, "&Weather Dock", info.Menu)
	_, ok = h.Lookup("missing")
	assert.False(t, ok)

	sub.Unsubscribe()
	sub.Unsubscribe()
	assert.False(t, h.HasAction("show"))
	assert.ErrorIs(t, h.Trigger("show"), ErrUnknownAction)
}

func TestWebHostPanel(t *testing.T) {
	h := NewWebHost()
	_, err := h.Document()
	assert.ErrorIs(t, err, ErrNoPanel)

	p := h.AttachPanel("Weather Dock")
	p.SetDocument("<p>hi</p>")
	doc, err := h.Document()
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", doc)

	h.DetachPanel(p)
	_, err = h.Document()
	assert.ErrorIs(t, err, ErrNoPanel)
}

func TestWebHostDialogIsNotModal(t *testing.T) {
	h := NewWebHost()
	d := settings.NewDialog(settings.NewPreferences(settings.NewMemoryStore()))
	assert.False(t, h.ExecDialog(d))
}
