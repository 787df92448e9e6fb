package settings

const DialogTitle = "Weather Dock Settings"

// Dialog is the model behind the settings dialog: it loads the stored value
// when opened and writes it back only when accepted.
type Dialog struct {
	prefs    *Preferences
	days     int
	accepted bool
	closed   bool
}

// NewDialog opens a dialog showing the current preference.
func NewDialog(prefs *Preferences) *Dialog {
	d := &Dialog{prefs: prefs}
	d.Load()
	return d
}

func (d *Dialog) Title() string {
	return DialogTitle
}

// Load re-reads the stored preference into the dialog.
func (d *Dialog) Load() {
	d.days = d.prefs.ForecastDays()
}

// ForecastDays is the value currently shown.
func (d *Dialog) ForecastDays() int {
	return d.days
}

// SetForecastDays changes the shown value, clamped to the allowed range like a spin box.
func (d *Dialog) SetForecastDays(days int) {
	switch {
	case days < MinForecastDays:
		days = MinForecastDays
	case days > MaxForecastDays:
		days = MaxForecastDays
	}
	d.days = days
}

// Accept saves the shown value and closes the dialog.
func (d *Dialog) Accept() error {
	if err := d.prefs.SetForecastDays(d.days); err != nil {
		return err
	}
	d.accepted = true
	d.closed = true
	return nil
}

// Reject closes the dialog without saving.
func (d *Dialog) Reject() {
	d.accepted = false
	d.closed = true
}

// Accepted reports whether the dialog was closed with Accept.
func (d *Dialog) Accepted() bool {
	return d.closed && d.accepted
}
