package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-dock/internal/eventloop"
	"github.com/i474232898/weather-dock/internal/weather"
)

const (
	DefaultQuietPeriod  = 3 * time.Second
	DefaultFetchTimeout = 20 * time.Second
)

// State is the phase of the Debouncer.
type State int

const (
	Idle State = iota
	Pending
	Fetching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Fetching:
		return "fetching"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// followUp records what should happen once the in-flight fetch lands.
type followUp int

const (
	noFollowUp followUp = iota
	debouncedFollowUp
	immediateFollowUp
)

// Timer is the part of *time.Timer the Debouncer uses.
type Timer interface {
	Stop() bool
}

// Clock creates timers. SystemClock is the production implementation.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock uses the runtime timers.
type SystemClock struct{}

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Target is the consumer of fetches. All methods are called on the main control flow.
type Target interface {
	// Visible reports whether a fetch would be shown to anyone.
	Visible() bool
	// Prepare builds the request for a fetch that is about to start.
	Prepare() (weather.ForecastRequest, error)
	// Deliver receives the result of the current session.
	Deliver(result weather.ForecastResult)
}

// Options tune a Debouncer.
type Options struct {
	QuietPeriod  time.Duration
	FetchTimeout time.Duration
	Clock        Clock
}

// Debouncer coalesces bursts of update requests into one fetch per quiet period
// and keeps at most one fetch in flight.
//
// Every exported method, and every callback it triggers, must run on the
// dispatcher's goroutine; the Debouncer does no locking of its own.
type Debouncer struct {
	quiet      time.Duration
	timeout    time.Duration
	clock      Clock
	dispatch   eventloop.Dispatcher
	forecaster weather.Forecaster
	target     Target

	// spawn runs the blocking fetch off the main control flow.
	spawn    func(func())
	newToken func() string

	state    State
	timer    Timer
	gen      uint64 // invalidates timer callbacks that were already posted
	session  string // the only session allowed to deliver
	inFlight string // session of the running worker, "" when none
	follow   followUp
	stopped  bool
}

// NewDebouncer creates a Debouncer in the Idle state.
func NewDebouncer(target Target, forecaster weather.Forecaster, dispatch eventloop.Dispatcher, opts Options) *Debouncer {
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}

	return &Debouncer{
		quiet:      opts.QuietPeriod,
		timeout:    opts.FetchTimeout,
		clock:      opts.Clock,
		dispatch:   dispatch,
		forecaster: forecaster,
		target:     target,
		spawn:      func(fn func()) { go fn() },
		newToken:   newSessionToken,
		state:      Idle,
	}
}

func newSessionToken() string {
	id, err := uuid.NewRandom()
	if err != nil {
		// Tokens only need to differ from the previous one.
		return fmt.Sprintf("session-%d", time.Now().UnixNano())
	}
	return id.String()
}

// State returns the current phase.
func (d *Debouncer) State() State {
	return d.state
}

// Session returns the token of the session allowed to deliver, "" if none.
func (d *Debouncer) Session() string {
	return d.session
}

// ExtentChanged (re)starts the quiet period. While a fetch is running it only
// records that a debounced follow-up is wanted.
func (d *Debouncer) ExtentChanged() {
	if d.stopped {
		return
	}

	if d.state == Fetching {
		if d.follow == noFollowUp {
			d.follow = debouncedFollowUp
		}
		return
	}

	d.state = Pending
	d.arm()
}

// ExplicitTrigger starts a fetch now, skipping any pending quiet period.
// While a fetch is running it supersedes that fetch's session instead: the
// running result will be discarded and a new fetch starts as soon as it lands.
func (d *Debouncer) ExplicitTrigger() {
	if d.stopped {
		return
	}

	d.disarm()

	if d.state == Fetching {
		d.session = d.newToken()
		d.follow = immediateFollowUp
		log.Printf("scheduler: session %s supersedes in-flight %s", d.session, d.inFlight)
		return
	}

	d.start(d.newToken())
}

// Stop cancels any pending timer and drops the current session. Results still
// in flight are discarded when they land. Stop is idempotent.
func (d *Debouncer) Stop() {
	if d.stopped {
		return
	}
	d.stopped = true
	d.disarm()
	d.session = ""
	d.follow = noFollowUp
	d.state = Idle
}

func (d *Debouncer) arm() {
	d.disarm()
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.quiet, func() {
		d.dispatch.Post(func() { d.timerElapsed(gen) })
	})
}

func (d *Debouncer) disarm() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) timerElapsed(gen uint64) {
	if d.stopped || gen != d.gen || d.state != Pending {
		return
	}
	d.timer = nil

	if !d.target.Visible() {
		// Hidden panels do not fetch; reopening the panel triggers its own fetch.
		d.state = Idle
		return
	}

	d.start(d.newToken())
}

func (d *Debouncer) start(token string) {
	d.session = token
	d.state = Fetching
	d.follow = noFollowUp

	req, err := d.target.Prepare()
	if err != nil {
		log.Printf("scheduler: cannot prepare fetch: %v", err)
		d.state = Idle
		d.target.Deliver(weather.Fail(weather.UnexpectedError, fmt.Sprintf("An unexpected error occurred: %v", err)))
		return
	}

	d.inFlight = token
	forecaster, timeout := d.forecaster, d.timeout
	d.spawn(func() {
		result := fetch(forecaster, req, timeout)
		if !d.dispatch.Post(func() { d.completed(token, result) }) {
			log.Printf("scheduler: dropping result of session %s, main loop is gone", token)
		}
	})
}

// fetch runs on the worker; it only touches its arguments.
func fetch(f weather.Forecaster, req weather.ForecastRequest, timeout time.Duration) (result weather.ForecastResult) {
	defer func() {
		if r := recover(); r != nil {
			result = weather.Fail(weather.UnexpectedError, fmt.Sprintf("An unexpected error occurred: %v", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.Fetch(ctx, req)
}

func (d *Debouncer) completed(token string, result weather.ForecastResult) {
	if token != d.inFlight {
		return
	}
	d.inFlight = ""

	if d.stopped {
		return
	}

	if token == d.session {
		d.target.Deliver(result)
	} else {
		log.Printf("scheduler: discarding stale result of session %s", token)
	}

	follow := d.follow
	d.follow = noFollowUp

	switch follow {
	case immediateFollowUp:
		d.start(d.session)
	case debouncedFollowUp:
		// Re-arm instead of fetching inline so a steady stream of changes still
		// yields one request per quiet period.
		d.state = Pending
		d.arm()
	default:
		d.state = Idle
	}
}
