package vaschooldata

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"vaschooldata/internal/cache"
	"vaschooldata/internal/config"
	"vaschooldata/internal/errors"
	"vaschooldata/internal/fetch"
	"vaschooldata/internal/infrastructure"
	"vaschooldata/internal/normalize"
	"vaschooldata/internal/tidy"
	"vaschooldata/pkg/contracts/domain"
)

// Cache variants used by the fetch operations.
const (
	variantWide = "wide"
	variantTidy = "tidy"
)

// multiFetchWorkers bounds the fan-out of the multi-year operations. Each
// year is independent and owns a distinct cache key, so no further
// coordination is needed.
const multiFetchWorkers = 4

// Client is the public entry point: staleness-aware cached retrieval plus
// normalization of Virginia school enrollment and graduation data.
type Client struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *cache.Store
	fetcher    *fetch.Client
	normalizer *normalize.Normalizer
}

// NewClient builds a client. A nil config loads from the environment; a nil
// logger falls back to slog.Default.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	var err error
	if cfg == nil {
		cfg, err = config.Load()
		if err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	store, err := cache.NewStore(cfg.Cache.Dir, logger)
	if err != nil {
		return nil, err
	}

	return &Client{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		fetcher:    fetch.NewClient(cfg.Fetch, logger),
		normalizer: normalize.New(logger),
	}, nil
}

// AvailableYears lists the supported enrollment end years, ascending.
func AvailableYears() []int {
	return yearRange(domain.MinEnrollmentYear, domain.MaxEnrollmentYear)
}

// AvailableGradYears lists the supported graduation end years, ascending.
func AvailableGradYears() []int {
	return yearRange(domain.MinGraduationYear, domain.MaxGraduationYear)
}

// NormalizeEnrollment converts one year's raw school-level and
// district-level record sets into a canonical wide table. Callers with their
// own retrieval path use this directly; FetchEnrollment wraps it with
// download and caching.
func (c *Client) NormalizeEnrollment(ctx context.Context, rawSchool, rawDistrict *domain.RawTable, endYear int) (*domain.WideTable, error) {
	return c.normalizer.Enrollment(ctx, rawSchool, rawDistrict, endYear)
}

// NormalizeGraduation converts one year's raw cohort record set into a
// canonical wide table.
func (c *Client) NormalizeGraduation(ctx context.Context, raw *domain.RawTable, endYear int) (*domain.WideTable, error) {
	return c.normalizer.Graduation(ctx, raw, endYear)
}

// Tidy pivots a canonical wide table into long format.
func (c *Client) Tidy(wide *domain.WideTable) *domain.TidyTable {
	return tidy.Transform(wide)
}

// FetchEnrollment returns one year's canonical enrollment table, serving
// from cache when a fresh entry exists. refresh forces re-retrieval.
func (c *Client) FetchEnrollment(ctx context.Context, endYear int, refresh bool) (*domain.WideTable, error) {
	if !domain.YearSupported(domain.KindEnrollment, endYear) {
		return nil, errors.NewValidationError(fmt.Sprintf(
			"enrollment end year %d outside supported range %d-%d",
			endYear, domain.MinEnrollmentYear, domain.MaxEnrollmentYear))
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	key := cache.Key{Kind: domain.KindEnrollment, Year: endYear, Variant: variantWide}

	if !refresh && !c.store.IsStale(key, c.maxAge(domain.KindEnrollment, endYear)) {
		if table, ok := c.store.GetWide(key); ok {
			c.logger.InfoContext(ctx, "enrollment served from cache",
				slog.Int("end_year", endYear))
			return table, nil
		}
	}

	rawSchool, rawDistrict, err := c.fetcher.Enrollment(ctx, endYear)
	if err != nil {
		return nil, err
	}
	table, err := c.normalizer.Enrollment(ctx, rawSchool, rawDistrict, endYear)
	if err != nil {
		return nil, err
	}

	if err := c.store.PutWide(key, table); err != nil {
		// A failed cache write never fails the fetch.
		c.logger.WarnContext(ctx, "failed to cache enrollment table",
			slog.Int("end_year", endYear),
			slog.String("error", err.Error()))
	}
	return table, nil
}

// FetchTidyEnrollment returns one year's enrollment table in long format,
// cached under its own variant so wide and tidy entries never collide.
func (c *Client) FetchTidyEnrollment(ctx context.Context, endYear int, refresh bool) (*domain.TidyTable, error) {
	key := cache.Key{Kind: domain.KindEnrollment, Year: endYear, Variant: variantTidy}
	if !refresh && !c.store.IsStale(key, c.maxAge(domain.KindEnrollment, endYear)) {
		if table, ok := c.store.GetTidy(key); ok {
			return table, nil
		}
	}

	wide, err := c.FetchEnrollment(ctx, endYear, refresh)
	if err != nil {
		return nil, err
	}
	table := tidy.Transform(wide)

	if err := c.store.PutTidy(key, table); err != nil {
		c.logger.WarnContext(ctx, "failed to cache tidy enrollment table",
			slog.Int("end_year", endYear),
			slog.String("error", err.Error()))
	}
	return table, nil
}

// FetchEnrollmentMulti retrieves several years concurrently and merges the
// results into one table, rows ordered by ascending end year.
func (c *Client) FetchEnrollmentMulti(ctx context.Context, endYears []int, refresh bool) (*domain.WideTable, error) {
	for _, y := range endYears {
		if !domain.YearSupported(domain.KindEnrollment, y) {
			return nil, errors.NewValidationError(fmt.Sprintf(
				"enrollment end year %d outside supported range %d-%d",
				y, domain.MinEnrollmentYear, domain.MaxEnrollmentYear))
		}
	}
	return c.fetchMulti(ctx, domain.KindEnrollment, endYears, func(ctx context.Context, year int) (*domain.WideTable, error) {
		return c.FetchEnrollment(ctx, year, refresh)
	})
}

// FetchGraduation returns one year's canonical graduation table, serving
// from cache when a fresh entry exists.
func (c *Client) FetchGraduation(ctx context.Context, endYear int, refresh bool) (*domain.WideTable, error) {
	if !domain.YearSupported(domain.KindGraduation, endYear) {
		return nil, errors.NewValidationError(fmt.Sprintf(
			"graduation end year %d outside supported range %d-%d",
			endYear, domain.MinGraduationYear, domain.MaxGraduationYear))
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	key := cache.Key{Kind: domain.KindGraduation, Year: endYear, Variant: variantWide}

	if !refresh && !c.store.IsStale(key, c.maxAge(domain.KindGraduation, endYear)) {
		if table, ok := c.store.GetWide(key); ok {
			c.logger.InfoContext(ctx, "graduation served from cache",
				slog.Int("end_year", endYear))
			return table, nil
		}
	}

	raw, err := c.fetcher.Graduation(ctx, endYear)
	if err != nil {
		return nil, err
	}
	table, err := c.normalizer.Graduation(ctx, raw, endYear)
	if err != nil {
		return nil, err
	}

	if err := c.store.PutWide(key, table); err != nil {
		c.logger.WarnContext(ctx, "failed to cache graduation table",
			slog.Int("end_year", endYear),
			slog.String("error", err.Error()))
	}
	return table, nil
}

// FetchTidyGraduation returns one year's graduation table in long format,
// cached under its own variant.
func (c *Client) FetchTidyGraduation(ctx context.Context, endYear int, refresh bool) (*domain.TidyTable, error) {
	key := cache.Key{Kind: domain.KindGraduation, Year: endYear, Variant: variantTidy}
	if !refresh && !c.store.IsStale(key, c.maxAge(domain.KindGraduation, endYear)) {
		if table, ok := c.store.GetTidy(key); ok {
			return table, nil
		}
	}

	wide, err := c.FetchGraduation(ctx, endYear, refresh)
	if err != nil {
		return nil, err
	}
	table := tidy.Transform(wide)

	if err := c.store.PutTidy(key, table); err != nil {
		c.logger.WarnContext(ctx, "failed to cache tidy graduation table",
			slog.Int("end_year", endYear),
			slog.String("error", err.Error()))
	}
	return table, nil
}

// FetchGraduationMulti retrieves several graduation years concurrently.
func (c *Client) FetchGraduationMulti(ctx context.Context, endYears []int, refresh bool) (*domain.WideTable, error) {
	for _, y := range endYears {
		if !domain.YearSupported(domain.KindGraduation, y) {
			return nil, errors.NewValidationError(fmt.Sprintf(
				"graduation end year %d outside supported range %d-%d",
				y, domain.MinGraduationYear, domain.MaxGraduationYear))
		}
	}
	return c.fetchMulti(ctx, domain.KindGraduation, endYears, func(ctx context.Context, year int) (*domain.WideTable, error) {
		return c.FetchGraduation(ctx, year, refresh)
	})
}

// fetchMulti fans one worker out per year. Each worker hits a distinct cache
// key, so workers never contend on a cache file.
func (c *Client) fetchMulti(ctx context.Context, kind domain.DataKind, endYears []int, fetchYear func(context.Context, int) (*domain.WideTable, error)) (*domain.WideTable, error) {
	years := append([]int(nil), endYears...)
	sort.Ints(years)

	tables := make([]*domain.WideTable, len(years))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(multiFetchWorkers)
	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			table, err := fetchYear(gctx, year)
			if err != nil {
				return fmt.Errorf("end year %d: %w", year, err)
			}
			tables[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &domain.WideTable{Kind: kind}
	for _, t := range tables {
		if merged.Columns == nil {
			merged.Columns = t.Columns
		}
		merged.Rows = append(merged.Rows, t.Rows...)
	}
	return merged, nil
}

// maxAge selects the staleness window for a year's cache entries. The most
// recent end year is still subject to agency revision and expires sooner.
func (c *Client) maxAge(kind domain.DataKind, endYear int) time.Duration {
	latest := domain.MaxEnrollmentYear
	if kind == domain.KindGraduation {
		latest = domain.MaxGraduationYear
	}
	if endYear == latest && c.cfg.Cache.RecentMaxAge > 0 {
		return c.cfg.Cache.RecentMaxAge
	}
	return c.cfg.Cache.MaxAge
}

func yearRange(min, max int) []int {
	out := make([]int, 0, max-min+1)
	for y := min; y <= max; y++ {
		out = append(out, y)
	}
	return out
}
