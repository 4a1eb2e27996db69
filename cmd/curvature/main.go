// Command curvature fits a smoothed spline to a sample series, marks its
// inflection and high-curvature points, and either renders the result to
// PNG/HTML or serves the interactive explorer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/banshee-data/curvature.report/internal/api"
	"github.com/banshee-data/curvature.report/internal/config"
	"github.com/banshee-data/curvature.report/internal/curve"
	"github.com/banshee-data/curvature.report/internal/fsutil"
	"github.com/banshee-data/curvature.report/internal/panel"
	"github.com/banshee-data/curvature.report/internal/samples"
	"github.com/banshee-data/curvature.report/internal/security"
	"github.com/banshee-data/curvature.report/internal/surface"
	"github.com/banshee-data/curvature.report/internal/surface/echart"
	"github.com/banshee-data/curvature.report/internal/surface/pngplot"
	"github.com/banshee-data/curvature.report/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to an explorer config JSON file (defaults apply when empty)")
	csvPath     = flag.String("csv", "", "Read samples from this CSV file")
	sqlitePath  = flag.String("sqlite", "", "Read samples from this SQLite database")
	table       = flag.String("table", samples.DefaultTable, "SQLite table holding the samples")
	xCol        = flag.String("x-col", "", "Name of the x column (CSV header or SQLite column)")
	yCol        = flag.String("y-col", "", "Name of the y column (CSV header or SQLite column)")
	synthetic   = flag.Bool("synthetic", false, "Use a seeded synthetic noisy signal (the default when no source is given)")
	seed        = flag.Uint64("seed", 1, "Seed for -synthetic")
	noise       = flag.Float64("noise", samples.DefaultSynthetic().Noise, "Noise standard deviation for -synthetic")
	points      = flag.Int("points", samples.DefaultSynthetic().N, "Number of samples for -synthetic")
	saveSQLite  = flag.String("save-sqlite", "", "Also write the loaded samples to this SQLite database (-table, -x-col, -y-col)")
	sigma       = flag.Float64("sigma", -1, "Initial Gaussian sigma (overrides config when >= 0)")
	label       = flag.String("label", "", "Panel label (overrides config)")
	listen      = flag.String("listen", "", "HTTP listen address (overrides config)")
	pngOut      = flag.String("png", "", "Render a PNG to this path and exit")
	htmlOut     = flag.String("html", "", "Render an interactive HTML chart to this path and exit")
	exportDir   = flag.String("export-dir", "exports", "Directory for POST /api/export (empty disables)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	series, err := loadSeries(ctx)
	if err != nil {
		log.Fatalf("failed to load samples: %v", err)
	}
	log.Printf("loaded %d samples", series.Len())

	if *saveSQLite != "" {
		if err := saveSeries(ctx, *saveSQLite, series); err != nil {
			log.Fatalf("failed to save samples: %v", err)
		}
		log.Printf("saved samples to %s table %s", *saveSQLite, *table)
	}

	p, scene, err := buildPanel(cfg, series)
	if err != nil {
		log.Fatalf("failed to build panel: %v", err)
	}

	if *pngOut != "" || *htmlOut != "" {
		renderer := pngplot.New(cfg.GetPNGWidthInches(), cfg.GetPNGHeightInches())
		if err := export(fsutil.OSFileSystem{}, scene.Snapshot(), renderer, *pngOut, *htmlOut); err != nil {
			log.Fatalf("failed to export: %v", err)
		}
		return
	}

	server := api.NewServer(api.Config{
		Address:   cfg.GetListen(),
		Panel:     p,
		Scene:     scene,
		PNG:       pngplot.New(cfg.GetPNGWidthInches(), cfg.GetPNGHeightInches()),
		Chart:     echart.DefaultOptions(),
		ExportDir: *exportDir,
	})
	if err := server.Start(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
	log.Printf("Graceful shutdown complete")
}

// loadConfig reads -config, or the built-in defaults, and applies the flag
// overrides.
func loadConfig() (*config.ExplorerConfig, error) {
	cfg := config.EmptyExplorerConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadExplorerConfig(*configPath); err != nil {
			return nil, err
		}
	}
	if *sigma >= 0 {
		cfg.Sigma = sigma
	}
	if *label != "" {
		cfg.Label = label
	}
	if *listen != "" {
		cfg.Listen = listen
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// loadSeries reads the one selected sample source.
func loadSeries(ctx context.Context) (samples.Series, error) {
	sources := 0
	for _, set := range []bool{*csvPath != "", *sqlitePath != "", *synthetic} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		return samples.Series{}, errors.New("choose at most one of -csv, -sqlite and -synthetic")
	}

	switch {
	case *csvPath != "":
		return samples.LoadCSV(fsutil.OSFileSystem{}, *csvPath, samples.Columns{X: *xCol, Y: *yCol})
	case *sqlitePath != "":
		return samples.LoadSQLite(ctx, *sqlitePath, sqliteQuery())
	default:
		return samples.Synthetic{N: *points, Span: samples.DefaultSynthetic().Span, Noise: *noise, Seed: *seed}.Series()
	}
}

func sqliteQuery() samples.Query {
	q := samples.Query{Table: *table, XColumn: *xCol, YColumn: *yCol}
	if q.XColumn == "" {
		q.XColumn = samples.DefaultXColumn
	}
	if q.YColumn == "" {
		q.YColumn = samples.DefaultYColumn
	}
	return q
}

func saveSeries(ctx context.Context, path string, series samples.Series) error {
	store, err := samples.OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveSeries(ctx, sqliteQuery(), series)
}

// buildPanel fits the model and draws the initial scene.
func buildPanel(cfg *config.ExplorerConfig, series samples.Series) (*panel.Panel, *surface.Scene, error) {
	model, err := curve.NewModel(series.X, series.Y, cfg.GetSigma())
	if err != nil {
		return nil, nil, err
	}
	scene := surface.NewScene(cfg.GetLabel())
	p := panel.New(model, scene, panel.AddStandardLines(scene), panel.ConfigFrom(cfg))
	return p, scene, nil
}

// export writes the requested renders of snap. Paths must stay under the
// working directory or the temp directory.
func export(fsys fsutil.FileSystem, snap surface.Snapshot, renderer *pngplot.Renderer, pngPath, htmlPath string) error {
	if pngPath != "" {
		if err := security.ValidateExportPath(pngPath); err != nil {
			return err
		}
		wt, err := renderer.WriterTo(snap)
		if err != nil {
			return err
		}
		if err := fsutil.SaveTo(fsys, pngPath, wt); err != nil {
			return err
		}
		log.Printf("wrote %s", pngPath)
	}
	if htmlPath != "" {
		if err := security.ValidateExportPath(htmlPath); err != nil {
			return err
		}
		wt, err := echart.WriterTo(snap, echart.DefaultOptions())
		if err != nil {
			return err
		}
		if err := fsutil.SaveTo(fsys, htmlPath, wt); err != nil {
			return err
		}
		log.Printf("wrote %s", htmlPath)
	}
	return nil
}
