package background

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/LavaJover/affiliate-aggregator/internal/usecase"
)

type BackgroundTasks struct {
	IngestionUsecase usecase.IngestionUsecase
	Interval         time.Duration
	logger           *slog.Logger
	wg               sync.WaitGroup
}

func NewBackgroundTasks(ingestionUC usecase.IngestionUsecase, interval time.Duration, logger *slog.Logger) *BackgroundTasks {
	return &BackgroundTasks{
		IngestionUsecase: ingestionUC,
		Interval:         interval,
		logger:           logger,
	}
}

// StartAll launches the scheduled jobs. A zero interval disables scheduled
// ingestion.
func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	if bt.Interval <= 0 {
		bt.logger.Info("scheduled ingestion disabled")
		return
	}
	bt.wg.Add(1)
	go func() {
		defer bt.wg.Done()
		bt.startScheduledIngestion(ctx)
	}()
}

// Wait blocks until every job started by StartAll has returned.
func (bt *BackgroundTasks) Wait() {
	bt.wg.Wait()
}

func (bt *BackgroundTasks) startScheduledIngestion(ctx context.Context) {
	ticker := time.NewTicker(bt.Interval)
	defer ticker.Stop()

	bt.logger.Info("scheduled ingestion started", "interval", bt.Interval)
	for {
		select {
		case <-ctx.Done():
			bt.logger.Info("scheduled ingestion stopped")
			return
		case <-ticker.C:
			outcomes := bt.IngestionUsecase.RunAll(ctx)
			failed := 0
			for _, outcome := range outcomes {
				if !outcome.Success {
					failed++
				}
			}
			bt.logger.Info("scheduled ingestion finished", "networks", len(outcomes), "failed", failed)
		}
	}
}
