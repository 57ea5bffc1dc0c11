package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"clustrmaps-go-crawler/internal/classifier"
	"clustrmaps-go-crawler/internal/config"
	"clustrmaps-go-crawler/internal/crawler"
	"clustrmaps-go-crawler/internal/ioformats"
	"clustrmaps-go-crawler/internal/pacing"
	"clustrmaps-go-crawler/internal/pipeline"
	"clustrmaps-go-crawler/internal/report"
	"clustrmaps-go-crawler/internal/store"
	"clustrmaps-go-crawler/pkg/logger"
)

type crawlFlags struct {
	input      string
	configPath string
	pacingPath string
	resultsDir string
	site       string
	driver     string
	headless   bool
	chromePath string
	screenshot string
	noDelay    bool
}

func newCrawlCmd() *cobra.Command {
	var f crawlFlags
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Look up every person of an input file",
		Long:  "Reads first_name, last_name and optional state columns from a CSV or NDJSON file. When --input is omitted the path is asked for on stdin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCrawl(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "input file (csv with first_name,last_name[,state] or ndjson)")
	fl.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fl.StringVar(&f.pacingPath, "pacing", "", "YAML pacing file (overrides the config file's pacing section)")
	fl.StringVarP(&f.resultsDir, "results-dir", "o", "", "results directory (default \"results\")")
	fl.StringVar(&f.site, "site", "", "people-search host (default \"clustrmaps.com\")")
	fl.StringVar(&f.driver, "driver", "", "browser driver: chrome or http (default \"chrome\")")
	fl.BoolVar(&f.headless, "headless", true, "run chrome headless")
	fl.StringVar(&f.chromePath, "chrome-path", "", "chrome executable (default: search PATH)")
	fl.StringVar(&f.screenshot, "screenshot", "", "screenshot path on fatal error (default \"error.png\")")
	fl.BoolVar(&f.noDelay, "no-delay", false, "disable pacing delays and session rotation")
	return cmd
}

func loadConfig(cmd *cobra.Command, f crawlFlags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	if f.resultsDir != "" {
		cfg.ResultsDir = f.resultsDir
	}
	if f.site != "" {
		cfg.Site = f.site
	}
	if f.driver != "" {
		cfg.Driver = f.driver
	}
	if changed("headless") {
		cfg.Headless = f.headless
	}
	if f.chromePath != "" {
		cfg.ChromePath = f.chromePath
	}
	if f.screenshot != "" {
		cfg.ScreenshotPath = f.screenshot
	}
	if f.pacingPath != "" {
		if cfg.Pacing, err = pacing.LoadConfig(f.pacingPath); err != nil {
			return cfg, err
		}
	}
	if f.noDelay {
		cfg.Pacing = pacing.NoDelay()
	}
	return cfg, cfg.Validate()
}

func runCrawl(cmd *cobra.Command, f crawlFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	log, err := logger.Open(cfg.LogPath())
	if err != nil {
		log = logger.New()
		log.Warnf("run log %s unavailable: %v", cfg.LogPath(), err)
	}
	defer log.Close()

	runID := uuid.NewString()
	log.Infof("Starting run %s (driver=%s, site=%s)", runID, cfg.Driver, cfg.Site)

	path := f.input
	if path == "" {
		if path, err = promptInput(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
			log.Errorf("Error reading input path: %v", err)
			return &exitError{code: exitNoInput, err: err}
		}
	}
	ids, err := ioformats.ReadIdentities(path)
	if err != nil {
		log.Errorf("Error reading input file: %v", err)
		log.Infof("No valid input data. Exiting.")
		return &exitError{code: exitNoInput, err: err}
	}
	log.Infof("Loaded %d identities from %s", len(ids), path)

	st, err := store.New(cfg.ResultsDir, log)
	if err != nil {
		return err
	}
	p := pipeline.New(pipeline.Options{
		Session:        crawler.NewSession(cfg.Launcher(), log),
		Store:          st,
		Pacer:          pacing.New(cfg.Pacing, pacing.WithLogger(log)),
		Classifier:     classifier.New(cfg.NotFoundMarkers...),
		Log:            log,
		Site:           cfg.Site,
		ScreenshotPath: cfg.ScreenshotPath,
		RunID:          runID,
	})

	summary, err := p.Run(cmd.Context(), ids)
	summary.Render(cmd.OutOrStdout())
	if err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	log.Infof("Run %s finished: %d done, %d not found, %d skipped",
		runID, summary.Count(report.Done), summary.Count(report.NotFound), summary.Count(report.Skipped))
	return nil
}

var errNoPath = errors.New("no input path given")

func promptInput(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Enter CSV file path (columns: first_name, last_name, [state]): ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	path := strings.TrimSpace(line)
	if path == "" {
		return "", errNoPath
	}
	return path, nil
}
