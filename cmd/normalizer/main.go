// Command normalizer fetches, normalizes and exports Virginia school data
// from the command line.
//
// Examples:
//
//	normalizer -kind enr -year 2019 -out reports
//	normalizer -kind grad -years 2010-2015 -tidy -refresh -out reports
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vaschooldata"
	"vaschooldata/internal/config"
	"vaschooldata/internal/infrastructure"
	"vaschooldata/pkg/contracts/domain"
)

func main() {
	kind := flag.String("kind", "enr", "report family: enr or grad")
	year := flag.Int("year", 0, "single end year to fetch")
	years := flag.String("years", "", "year range to fetch, e.g. 2010-2015 or 2010,2012,2014")
	tidyOut := flag.Bool("tidy", false, "write long-format output instead of wide")
	refresh := flag.Bool("refresh", false, "ignore cached entries and re-download")
	outDir := flag.String("out", ".", "output directory for CSV files")
	cacheDir := flag.String("cache", "", "cache directory (defaults to the user cache dir)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *cacheDir != "" {
		cfg.Cache.Dir = *cacheDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	telemetry, err := infrastructure.InitializeTelemetry(logger)
	if err != nil {
		logger.Warn("Failed to initialize telemetry", slog.String("error", err.Error()))
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	if telemetry != nil {
		defer telemetry.Shutdown(ctx)
	}

	endYears, err := parseYears(*year, *years)
	if err != nil {
		logger.Error("Invalid year selection", slog.String("error", err.Error()))
		os.Exit(1)
	}

	client, err := vaschooldata.NewClient(cfg, logger)
	if err != nil {
		logger.Error("Failed to create client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		logger.Error("Failed to create output directory", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Starting normalization run",
		slog.String("kind", *kind),
		slog.Any("end_years", endYears),
		slog.Bool("tidy", *tidyOut),
		slog.Bool("refresh", *refresh),
		slog.String("output_dir", *outDir))

	var table *domain.WideTable
	switch *kind {
	case "enr":
		table, err = client.FetchEnrollmentMulti(ctx, endYears, *refresh)
	case "grad":
		table, err = client.FetchGraduationMulti(ctx, endYears, *refresh)
	default:
		logger.Error("Unknown kind", slog.String("kind", *kind))
		os.Exit(1)
	}
	if err != nil {
		logger.Error("Normalization failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	name := outputName(*kind, endYears, *tidyOut)
	path := filepath.Join(*outDir, name)
	file, err := os.Create(path)
	if err != nil {
		logger.Error("Failed to create output file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer file.Close()

	if *tidyOut {
		err = vaschooldata.WriteTidyCSV(file, client.Tidy(table))
	} else {
		err = vaschooldata.WriteWideCSV(file, table)
	}
	if err != nil {
		logger.Error("Failed to write output", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Run complete",
		slog.String("output", path),
		slog.Int("rows", len(table.Rows)))
}

// parseYears merges the -year and -years flags into a year list.
func parseYears(single int, spec string) ([]int, error) {
	var out []int
	if single != 0 {
		out = append(out, single)
	}
	if spec != "" {
		if strings.Contains(spec, "-") {
			parts := strings.SplitN(spec, "-", 2)
			lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
			if err != nil {
				return nil, fmt.Errorf("bad year range %q: %w", spec, err)
			}
			hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
			if err != nil {
				return nil, fmt.Errorf("bad year range %q: %w", spec, err)
			}
			if hi < lo {
				return nil, fmt.Errorf("bad year range %q: end before start", spec)
			}
			for y := lo; y <= hi; y++ {
				out = append(out, y)
			}
		} else {
			for _, part := range strings.Split(spec, ",") {
				y, err := strconv.Atoi(strings.TrimSpace(part))
				if err != nil {
					return nil, fmt.Errorf("bad year list %q: %w", spec, err)
				}
				out = append(out, y)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no years selected: pass -year or -years")
	}
	return out, nil
}

func outputName(kind string, years []int, tidyOut bool) string {
	shape := "wide"
	if tidyOut {
		shape = "tidy"
	}
	if len(years) == 1 {
		return fmt.Sprintf("va_%s_%d_%s.csv", kind, years[0], shape)
	}
	return fmt.Sprintf("va_%s_%d_%d_%s.csv", kind, years[0], years[len(years)-1], shape)
}
