package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"ibms/internal/cache"
	"ibms/internal/core"
	applog "ibms/internal/log"
	"ibms/internal/ports"
	"ibms/internal/rollup"
)

// DefaultTopPortfolios is how many marketers the dashboard ranks.
const DefaultTopPortfolios = 5

const snapshotKey = "snapshot"

type snapshotEntry struct {
	gen  uint64
	snap rollup.Snapshot
}

type SnapshotStore interface {
	ports.InvestorStore
	ports.PortfolioStore
}

// ReportService serves rollups from a cached snapshot of the book. A snapshot
// loaded at generation g never replaces one from a later generation, so a slow
// load racing a mutation cannot roll the cache back.
type ReportService struct {
	store      SnapshotStore
	gen        *Generation
	cache      *cache.LRUCache[snapshotEntry]
	group      singleflight.Group
	windowDays int
	now        func() time.Time
}

type ReportOptions struct {
	// CacheTTL bounds how long a snapshot is served without reloading. Zero
	// disables caching.
	CacheTTL   time.Duration
	WindowDays int
}

func NewReportService(store SnapshotStore, gen *Generation, opts ReportOptions) *ReportService {
	if gen == nil {
		gen = &Generation{}
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = rollup.TrailingWindowDays
	}
	s := &ReportService{
		store:      store,
		gen:        gen,
		windowDays: opts.WindowDays,
		now:        time.Now,
	}
	if opts.CacheTTL > 0 {
		s.cache = cache.NewLRUCache[snapshotEntry](1, opts.CacheTTL)
	}
	return s
}

// CleanExpired lets a cache.Manager purge an expired snapshot.
func (s *ReportService) CleanExpired() int {
	if s.cache == nil {
		return 0
	}
	return s.cache.CleanExpired()
}

// CacheStats reports snapshot cache effectiveness.
func (s *ReportService) CacheStats() cache.Stats {
	if s.cache == nil {
		return cache.Stats{}
	}
	return s.cache.Stats()
}

// Snapshot returns the current book, loading it at most once per generation
// however many callers ask concurrently.
func (s *ReportService) Snapshot(ctx context.Context) (rollup.Snapshot, error) {
	gen := s.gen.Current()
	if s.cache != nil {
		if e, ok := s.cache.Get(snapshotKey); ok && e.gen >= gen {
			return e.snap, nil
		}
	}

	// The load is shared by every caller of this generation and outlives any
	// one of them. A cancelled caller stops waiting without aborting it.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(strconv.FormatUint(gen, 10), func() (any, error) {
		snap, err := s.load(loadCtx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.Update(snapshotKey, func(old snapshotEntry, ok bool) (snapshotEntry, bool) {
				if ok && old.gen > gen {
					return old, false
				}
				return snapshotEntry{gen: gen, snap: snap}, true
			})
		}
		slog.DebugContext(loadCtx, "Report snapshot loaded",
			applog.FieldComponent, applog.ComponentReport,
			applog.FieldGeneration, gen,
			"investors", len(snap.Investors),
			"portfolios", len(snap.Portfolios))
		return snap, nil
	})
	select {
	case <-ctx.Done():
		return rollup.Snapshot{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return rollup.Snapshot{}, res.Err
		}
		return res.Val.(rollup.Snapshot), nil
	}
}

func (s *ReportService) load(ctx context.Context) (rollup.Snapshot, error) {
	var (
		investors  []core.Investor
		portfolios []core.Portfolio
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		investors, err = s.store.ListInvestors(gctx)
		if err != nil {
			return fmt.Errorf("load investors: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		portfolios, err = s.store.ListPortfolios(gctx)
		if err != nil {
			return fmt.Errorf("load portfolios: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return rollup.Snapshot{}, err
	}
	return rollup.Snapshot{Investors: investors, Portfolios: portfolios}, nil
}

func (s *ReportService) Dashboard(ctx context.Context) (rollup.DashboardStats, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return rollup.DashboardStats{}, err
	}
	return rollup.Dashboard(snap, s.now(), s.windowDays, DefaultTopPortfolios), nil
}

func (s *ReportService) Overall(ctx context.Context) (rollup.OverallStats, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return rollup.OverallStats{}, err
	}
	return rollup.Overall(snap), nil
}

func (s *ReportService) Investments(ctx context.Context) ([]rollup.InvestmentRow, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return rollup.InvestmentReport(snap), nil
}

// Marketers returns portfolio rollups ranked by amount raised.
func (s *ReportService) Marketers(ctx context.Context) ([]rollup.PortfolioRollup, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return rollup.PortfolioRollups(snap), nil
}

func (s *ReportService) SubMarketors(ctx context.Context) ([]rollup.SubMarketorRollup, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return rollup.SubMarketorRollups(snap), nil
}

// Report bundles every report table for export.
type Report struct {
	GeneratedAt  time.Time
	Overall      rollup.OverallStats
	Investments  []rollup.InvestmentRow
	Marketers    []rollup.PortfolioRollup
	SubMarketors []rollup.SubMarketorRollup
}

func (s *ReportService) Full(ctx context.Context) (Report, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Report{}, err
	}
	return Report{
		GeneratedAt:  s.now(),
		Overall:      rollup.Overall(snap),
		Investments:  rollup.InvestmentReport(snap),
		Marketers:    rollup.PortfolioRollups(snap),
		SubMarketors: rollup.SubMarketorRollups(snap),
	}, nil
}
