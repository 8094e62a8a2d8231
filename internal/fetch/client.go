package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"vaschooldata/internal/config"
	"vaschooldata/internal/errors"
	"vaschooldata/pkg/contracts/domain"
)

// Mirror URL patterns per report family. The agency has moved and renamed
// its download endpoints several times; patterns are tried in order and the
// first successful download wins. Enrollment patterns take (year, level),
// graduation patterns take (year).
var enrollmentMirrors = []string{
	"https://p1pe.doe.virginia.gov/buildatable/fallmembership/%d/%s.csv",
	"https://www.doe.virginia.gov/statistics_reports/enrollment/fall_membership/%d_%s.csv",
	"https://www.doe.virginia.gov/content/dam/doe/statistics/enrollment/fall_membership_%d_%s.xlsx",
}

var graduationMirrors = []string{
	"https://p1pe.doe.virginia.gov/buildatable/cohort/%d/graduation.csv",
	"https://www.doe.virginia.gov/statistics_reports/graduation_completion/cohort_reports/cohort_%d.csv",
	"https://www.doe.virginia.gov/content/dam/doe/statistics/graduation/cohort_%d.xlsx",
}

// Entity-level tokens used in enrollment download paths.
const (
	levelSchool   = "school"
	levelDivision = "division"
)

// Client downloads source exports with bounded retries and a shared rate
// limit across all requests.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	retries   int
	userAgent string
	logger    *slog.Logger

	downloadRetries metric.Int64Counter
}

// NewClient builds a retrieval client from configuration.
func NewClient(cfg config.FetchConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	rps := cfg.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	meter := otel.Meter("vaschooldata/fetch")
	retriesCounter, _ := meter.Int64Counter("vaschooldata.download_retries",
		metric.WithDescription("Download attempts beyond the first, per URL"))

	return &Client{
		http:            &http.Client{Timeout: cfg.Timeout},
		limiter:         rate.NewLimiter(rate.Limit(rps), burst),
		retries:         retries,
		userAgent:       cfg.UserAgent,
		logger:          logger,
		downloadRetries: retriesCounter,
	}
}

// Enrollment retrieves one year's school-level and district-level raw record
// sets.
func (c *Client) Enrollment(ctx context.Context, endYear int) (school, district *domain.RawTable, err error) {
	school, err = c.fetchEnrollmentLevel(ctx, endYear, levelSchool)
	if err != nil {
		return nil, nil, err
	}
	district, err = c.fetchEnrollmentLevel(ctx, endYear, levelDivision)
	if err != nil {
		return nil, nil, err
	}
	return school, district, nil
}

// Graduation retrieves one year's cohort raw record set.
func (c *Client) Graduation(ctx context.Context, endYear int) (*domain.RawTable, error) {
	urls := make([]string, len(graduationMirrors))
	for i, pattern := range graduationMirrors {
		urls[i] = fmt.Sprintf(pattern, endYear)
	}
	return c.fetchFirst(ctx, urls)
}

func (c *Client) fetchEnrollmentLevel(ctx context.Context, endYear int, level string) (*domain.RawTable, error) {
	urls := make([]string, len(enrollmentMirrors))
	for i, pattern := range enrollmentMirrors {
		urls[i] = fmt.Sprintf(pattern, endYear, level)
	}
	return c.fetchFirst(ctx, urls)
}

// fetchFirst walks the mirror list, returning the first export that
// downloads and loads. Only when every mirror fails is the last failure
// surfaced.
func (c *Client) fetchFirst(ctx context.Context, urls []string) (*domain.RawTable, error) {
	var lastErr error
	for _, url := range urls {
		data, err := c.download(ctx, url)
		if err != nil {
			lastErr = err
			c.logger.DebugContext(ctx, "mirror failed, trying next",
				slog.String("url", url),
				slog.String("error", err.Error()))
			continue
		}
		table, err := load(url, data)
		if err != nil {
			lastErr = err
			continue
		}
		c.logger.InfoContext(ctx, "source export retrieved",
			slog.String("url", url),
			slog.Int("rows", len(table.Rows)))
		return table, nil
	}
	return nil, errors.NewNetworkError("all mirrors failed", lastErr)
}

// download fetches one URL with bounded retries. 404 means the mirror does
// not carry this year and is not retried; transient failures back off
// linearly.
func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.downloadRetries.Add(ctx, 1)
			select {
			case <-time.After(time.Duration(attempt) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.NewNetworkError("failed to build request", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				lastErr = err
				continue
			}
			return data, nil
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return nil, errors.NewNotFoundError(url)
		default:
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
		}
	}
	return nil, errors.NewNetworkError(
		fmt.Sprintf("download failed after %d attempts", c.retries+1), lastErr)
}

// load parses a downloaded export by its URL extension.
func load(url string, data []byte) (*domain.RawTable, error) {
	if strings.HasSuffix(strings.ToLower(url), ".xlsx") {
		return LoadWorkbook(bytes.NewReader(data))
	}
	return LoadCSV(bytes.NewReader(data))
}
