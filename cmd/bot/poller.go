package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/Jacobbrewer1/gavel/cmd/bot/monitoring"
	"github.com/Jacobbrewer1/gavel/pkg/logging"
	"golang.org/x/time/rate"
)

// pollInterval is how often the store is scanned for new appeals.
const pollInterval = 10 * time.Second

// provisionRate caps how quickly queued appeals are turned into channels, to
// stay clear of the Discord REST limits when a backlog lands at once.
var provisionRate = rate.Limit(1)

// poller is the periodic job that claims queued appeals and provisions them
// into discussion channels.
type poller struct {
	// a is the application.
	a IApp

	// interval is the poll interval.
	interval time.Duration

	// limiter paces provisioning within a cycle.
	limiter *rate.Limiter

	// stopped is closed to request a stop.
	stopped chan struct{}

	// done is closed once the loop has exited.
	done chan struct{}
}

func newPoller(a IApp, interval time.Duration) *poller {
	return &poller{
		a:        a,
		interval: interval,
		limiter:  rate.NewLimiter(provisionRate, 1),
		stopped:  make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// start runs the poll loop in the background until stop is called.
func (p *poller) start() {
	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			// The stop signal is checked at the top of each cycle; a cycle
			// that is already running is allowed to finish.
			select {
			case <-p.stopped:
				return
			case <-ticker.C:
				p.cycle(context.Background())
			}
		}
	}()
}

// stop requests a stop and waits for the loop to exit.
func (p *poller) stop() {
	close(p.stopped)
	<-p.done
}

// cycle runs one poll pass: it is a no-op until a category has been
// configured, then provisions every queued appeal.
func (p *poller) cycle(ctx context.Context) {
	monitoring.TotalPollCycles.Inc()

	cfg, err := p.a.ConfigDal(ctx).GetConfig()
	if err != nil {
		p.a.Log().Error("Error getting appeal config", slog.String(logging.KeyError, err.Error()))
		return
	}
	if cfg.Category == "" {
		return
	}

	appeals, err := p.a.AppealDal(ctx).GetPollingAppeals()
	if err != nil {
		p.a.Log().Error("Error getting queued appeals", slog.String(logging.KeyError, err.Error()))
		return
	}

	for _, appeal := range appeals {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}

		if err := provisionAppeal(ctx, p.a, appeal, cfg); err != nil {
			// No retry here; the appeal stays in whatever state was last
			// persisted and the next action is an operator's call.
			p.a.Log().Error("Error provisioning appeal",
				slog.String(logging.KeyAppeal, appeal.ID.Hex()),
				slog.String(logging.KeyError, err.Error()),
			)
		}
	}
}
