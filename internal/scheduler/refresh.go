package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Refresher periodically asks for a forecast update so an open panel does not
// go stale while the map sits still.
type Refresher struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	refresh   func()
}

// NewRefresher creates a Refresher calling refresh every interval.
// refresh runs on a gocron goroutine; it should only post work to the main loop.
func NewRefresher(interval time.Duration, refresh func()) *Refresher {
	s := gocron.NewScheduler(time.UTC)
	return &Refresher{
		scheduler: s,
		interval:  interval,
		refresh:   refresh,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// A non-positive interval disables periodic refresh.
func (r *Refresher) Start() error {
	if r.interval <= 0 || r.refresh == nil {
		log.Println("scheduler: periodic refresh disabled")
		return nil
	}

	_, err := r.scheduler.Every(r.interval).WaitForSchedule().SingletonMode().Do(func() {
		log.Println("scheduler: periodic forecast refresh")
		r.refresh()
	})
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	log.Printf("scheduler: refreshing every %s", r.interval)
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (r *Refresher) Stop() {
	if r.scheduler != nil && r.scheduler.IsRunning() {
		r.scheduler.Stop()
	}
}
