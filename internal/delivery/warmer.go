package delivery

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/jasim8799/api/internal/utils"
)

// Warmer refreshes the health cache on a cron schedule so reads rarely pay for probes.
// Lazy refresh on read still applies between runs.
type Warmer struct {
	cache    *HealthCache
	cron     *cron.Cron
	schedule string
	logger   *utils.Logger
}

// NewWarmer validates schedule and prepares the job. Standard five-field specs
// and descriptors such as "@every 30s" are accepted.
func NewWarmer(cache *HealthCache, schedule string, logger *utils.Logger) (*Warmer, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}

	w := &Warmer{
		cache:    cache,
		cron:     cron.New(cron.WithParser(parser)),
		schedule: schedule,
		logger:   logger.Named("health_warmer"),
	}

	if _, err := w.cron.AddFunc(schedule, w.run); err != nil {
		return nil, fmt.Errorf("schedule warm-up: %w", err)
	}
	return w, nil
}

// Start runs one refresh immediately and then follows the schedule until ctx is done.
func (w *Warmer) Start(ctx context.Context) {
	w.run()
	w.cron.Start()
	w.logger.Info("Health warm-up started", "schedule", w.schedule)

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
}

func (w *Warmer) run() {
	// Each probe carries its own configured timeout.
	status := w.cache.ForceRefresh(context.Background())
	up := 0
	for _, ok := range status {
		if ok {
			up++
		}
	}
	w.logger.Debug("Provider health warmed", "up", up, "total", len(status))
}
