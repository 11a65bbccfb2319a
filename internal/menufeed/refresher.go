package menufeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"corpintranet/portal/internal/domain"
)

const refreshTimeout = 2 * time.Minute

// Importer stores a freshly loaded menu.
type Importer interface {
	ImportMenu(ctx context.Context, days []domain.MenuDay) (int, error)
}

// Refresher periodically reloads the feed and imports it.
type Refresher struct {
	cron     *cron.Cron
	spec     string
	source   string
	loader   *Loader
	importer Importer
	logger   *zap.Logger
	initial  sync.WaitGroup // startup refresh, which cron does not track
}

// NewRefresher validates the cron spec (standard five fields) up front.
// Schedules are evaluated in loc.
func NewRefresher(source, spec string, loc *time.Location, loader *Loader, importer Importer, logger *zap.Logger) (*Refresher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("menu feed schedule %q: %w", spec, err)
	}
	return &Refresher{
		cron:     cron.New(cron.WithLocation(loc)),
		spec:     spec,
		source:   source,
		loader:   loader,
		importer: importer,
		logger:   logger,
	}, nil
}

// Start schedules the refresh job and runs it once right away.
func (r *Refresher) Start() error {
	r.logger.Info("starting menu feed refresher", zap.String("source", r.source), zap.String("schedule", r.spec))
	if _, err := r.cron.AddFunc(r.spec, r.run); err != nil {
		return err
	}
	r.cron.Start()
	r.initial.Add(1)
	go func() {
		defer r.initial.Done()
		r.run()
	}()
	return nil
}

// Stop waits for running refreshes, the startup one included, to finish or
// for ctx to expire.
func (r *Refresher) Stop(ctx context.Context) {
	r.logger.Info("stopping menu feed refresher")
	done := make(chan struct{})
	go func() {
		<-r.cron.Stop().Done()
		r.initial.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		r.logger.Warn("menu feed refresh still running at shutdown")
	}
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if _, err := r.RefreshOnce(ctx); err != nil {
		r.logger.Error("menu feed refresh failed", zap.Error(err))
	}
}

// RefreshOnce loads the feed and imports it, returning the number of days imported.
func (r *Refresher) RefreshOnce(ctx context.Context) (int, error) {
	days, err := r.loader.Load(ctx, r.source)
	if err != nil {
		return 0, err
	}
	if len(days) == 0 {
		r.logger.Warn("menu feed is empty", zap.String("source", r.source))
		return 0, nil
	}
	if _, err := r.importer.ImportMenu(ctx, days); err != nil {
		return 0, err
	}
	r.logger.Info("menu feed imported", zap.Int("days", len(days)))
	return len(days), nil
}
