// Command viscal runs the visibility pipeline over one observation:
// it loads the observation metadata, antenna table, raw visibilities
// and optional calibration solutions, then rephases, calibrates and
// averages the data and writes the result to the configured sink.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/arraydata/visibility.report/internal/config"
	"github.com/arraydata/visibility.report/internal/pos"
	"github.com/arraydata/visibility.report/internal/version"
	"github.com/arraydata/visibility.report/internal/vis"
	"github.com/arraydata/visibility.report/internal/vis/adapters"
	"github.com/arraydata/visibility.report/internal/vis/storage/sqlite"
)

func main() {
	var (
		configPath    string
		obsPath       string
		antennaPath   string
		visPath       string
		solutionsPath string
		showVersion   bool
	)
	flag.StringVar(&configPath, "config", "", "path to tuning config JSON (defaults baked in when omitted)")
	flag.StringVar(&obsPath, "obs", "", "path to observation metadata JSON")
	flag.StringVar(&antennaPath, "antennas", "", "path to antenna table CSV")
	flag.StringVar(&visPath, "vis", "", "path to visibility data CSV")
	flag.StringVar(&solutionsPath, "solutions", "", "path to Jones solutions CSV (optional)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("viscal %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}
	if obsPath == "" || antennaPath == "" || visPath == "" {
		log.Fatalf("-obs, -antennas and -vis must be provided")
	}

	cfg := config.EmptyTuningConfig()
	if configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	obs, err := adapters.LoadObsContext(obsPath, antennaPath)
	if err != nil {
		log.Fatalf("load observation: %v", err)
	}
	block, err := adapters.LoadVisibilityData(visPath, obs)
	if err != nil {
		log.Fatalf("load visibilities: %v", err)
	}

	var sols *vis.JonesSet
	if solutionsPath != "" {
		sols, err = adapters.LoadJonesSolutions(solutionsPath, len(obs.ChannelFreqsHz))
		if err != nil {
			log.Fatalf("load solutions: %v", err)
		}
	}

	engine, err := vis.EngineByName(cfg.GetApplyEngine())
	if err != nil {
		log.Fatalf("select engine: %v", err)
	}
	opts := vis.Options{
		TimeAvg:         cfg.GetTimeAverage(),
		FreqAvg:         cfg.GetFreqAverage(),
		InvertSolutions: cfg.GetInvertSolutions(),
		SingularEpsilon: cfg.GetSingularEpsilon(),
		Workers:         cfg.GetWorkers(),
		Engine:          engine,
	}
	if ra, dec, ok := cfg.PhaseCentreRadians(); ok {
		target := pos.RADec{RA: ra, Dec: dec}
		opts.TargetPhaseCentre = &target
	}

	pipeline, err := vis.NewPipeline(obs.Layout, obs.PhaseCentre, sols, opts)
	if err != nil {
		log.Fatalf("build pipeline: %v", err)
	}

	writer, err := openWriter(cfg, obs.ObsID)
	if err != nil {
		log.Fatalf("open writer: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, stats, err := pipeline.Process(ctx, block)
	if err != nil {
		writer.Close()
		log.Fatalf("process: %v", err)
	}
	if err := writer.WriteBlock(ctx, out, stats); err != nil {
		writer.Close()
		log.Fatalf("write output: %v", err)
	}
	if err := writer.Close(); err != nil {
		log.Fatalf("close writer: %v", err)
	}

	fmt.Printf("processed obs %s: %d times x %d baselines x %d channels -> %d x %d\n",
		obs.ObsID, stats.TimeSteps, stats.Baselines, stats.Channels,
		stats.OutTimeSteps, stats.OutChannels)
	if n := stats.FlaggedForError(); n > 0 {
		fmt.Printf("flagged %d cells for missing or invalid solutions\n", n)
	}
}

func openWriter(cfg *config.TuningConfig, obsID string) (adapters.Writer, error) {
	switch cfg.GetWriter() {
	case "memory":
		return adapters.NewMemoryWriter(), nil
	case "", "sqlite":
		return sqlite.Open(cfg.GetDBPath(), sqlite.Options{
			ObsID:         obsID,
			FlushInterval: cfg.GetFlushInterval(),
			BatchRows:     cfg.GetFlushBatchRows(),
		})
	default:
		return nil, fmt.Errorf("unknown writer %q", cfg.GetWriter())
	}
}
