package historical

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/stockintel/internal/clients/yahoo"
	"github.com/aristath/stockintel/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrSyncFailed is returned when no symbol could be synced.
var ErrSyncFailed = errors.New("price sync failed")

// BarFetcher supplies daily bars from a market data provider
type BarFetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]yahoo.Bar, error)
}

// PriceStore is the write side of the history database used by the sync
type PriceStore interface {
	UpsertDailyPrices(ctx context.Context, symbol string, prices []DailyPrice) error
	GetLatestDate(ctx context.Context, symbol string) (time.Time, bool, error)
	RecordSyncRun(ctx context.Context, run SyncRun) error
}

// SyncConfig configures SyncService
type SyncConfig struct {
	Symbols      []string
	HistoryYears int           // backfill depth for symbols with no stored bars
	Concurrency  int           // parallel fetches, default 4
	PassTimeout  time.Duration // bounds one shared pass, default 30m
}

// SyncService keeps the history database current for a fixed symbol list
type SyncService struct {
	store   PriceStore
	fetcher BarFetcher
	cfg     SyncConfig
	flight  singleflight.Group
	now     func() time.Time
	log     zerolog.Logger
}

// NewSyncService creates a new price sync service
func NewSyncService(store PriceStore, fetcher BarFetcher, cfg SyncConfig, log zerolog.Logger) *SyncService {
	if cfg.HistoryYears <= 0 {
		cfg.HistoryYears = 5
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.PassTimeout <= 0 {
		cfg.PassTimeout = 30 * time.Minute
	}
	return &SyncService{
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		now:     time.Now,
		log:     log.With().Str("service", "price_sync").Logger(),
	}
}

// Symbols returns the synced symbols
func (s *SyncService) Symbols() []string {
	return append([]string(nil), s.cfg.Symbols...)
}

// SyncAll syncs every configured symbol and records the run. Concurrent
// callers share one pass, which runs detached from any single caller's
// cancellation; each caller stops waiting when its own ctx is done. A partial
// failure is reported in the run, not as an error; ErrSyncFailed is returned
// only when every symbol failed.
func (s *SyncService) SyncAll(ctx context.Context) (*SyncRun, error) {
	ch := s.flight.DoChan("sync_all", func() (interface{}, error) {
		passCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.PassTimeout)
		defer cancel()
		return s.syncAll(passCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.log.Debug().Msg("Shared in-flight price sync")
		}
		run, _ := res.Val.(*SyncRun)
		return run, res.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("stopped waiting for price sync: %w", ctx.Err())
	}
}

func (s *SyncService) syncAll(ctx context.Context) (*SyncRun, error) {
	run := &SyncRun{
		ID:        uuid.NewString(),
		StartedAt: s.now().UTC(),
		Symbols:   len(s.cfg.Symbols),
	}

	var (
		mu       sync.Mutex
		firstErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, symbol := range s.cfg.Symbols {
		symbol := symbol
		g.Go(func() error {
			written, err := s.SyncSymbol(gctx, symbol)
			metrics.ObserveSync(err)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				run.Failed++
				if firstErr == nil {
					firstErr = err
				}
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to sync symbol")
				// Only cancellation aborts the pass.
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return nil
			}
			run.Succeeded++
			run.RowsWritten += written
			return nil
		})
	}
	waitErr := g.Wait()

	run.FinishedAt = s.now().UTC()
	if firstErr != nil {
		run.Error = firstErr.Error()
	}

	if err := s.store.RecordSyncRun(context.WithoutCancel(ctx), *run); err != nil {
		s.log.Error().Err(err).Str("run_id", run.ID).Msg("Failed to record sync run")
	}

	s.log.Info().
		Str("run_id", run.ID).
		Int("symbols", run.Symbols).
		Int("succeeded", run.Succeeded).
		Int("failed", run.Failed).
		Int("rows", run.RowsWritten).
		Dur("duration_ms", run.FinishedAt.Sub(run.StartedAt)).
		Msg("Price sync completed")

	if waitErr != nil {
		return run, waitErr
	}
	if run.Symbols > 0 && run.Succeeded == 0 {
		return run, fmt.Errorf("%w: all %d symbols failed: %v", ErrSyncFailed, run.Symbols, firstErr)
	}
	return run, nil
}

// SyncSymbol fetches the bars missing for one symbol and stores them. It
// returns the number of bars written.
func (s *SyncService) SyncSymbol(ctx context.Context, symbol string) (int, error) {
	now := s.now().UTC()
	today := truncateDay(now)

	latest, ok, err := s.store.GetLatestDate(ctx, symbol)
	if err != nil {
		return 0, err
	}

	from := today.AddDate(-s.cfg.HistoryYears, 0, 0)
	if ok {
		from = latest.AddDate(0, 0, 1)
	}
	if from.After(today) {
		s.log.Debug().Str("symbol", symbol).Msg("Prices already current")
		return 0, nil
	}

	bars, err := s.fetcher.FetchDailyBars(ctx, symbol, from, now)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", symbol, err)
	}

	prices := make([]DailyPrice, 0, len(bars))
	for _, b := range bars {
		if b.Date.Before(from) {
			continue
		}
		prices = append(prices, DailyPrice{
			Date:     b.Date,
			Open:     b.Open,
			High:     b.High,
			Low:      b.Low,
			Close:    b.Close,
			AdjClose: b.AdjClose,
			Volume:   b.Volume,
		})
	}

	if err := s.store.UpsertDailyPrices(ctx, symbol, prices); err != nil {
		return 0, err
	}
	return len(prices), nil
}
