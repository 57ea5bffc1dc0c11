// Package config holds the settings of a crawl run. Values come from, in
// increasing precedence: defaults, an optional YAML file, CRAWLER_*
// environment variables (a .env file is loaded by the CLI), and CLI flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"clustrmaps-go-crawler/internal/classifier"
	"clustrmaps-go-crawler/internal/crawler"
	"clustrmaps-go-crawler/internal/pacing"
	"clustrmaps-go-crawler/internal/pipeline"
)

const (
	DriverChrome = "chrome"
	DriverHTTP   = "http"
)

type Config struct {
	ResultsDir      string        `yaml:"results_dir"`
	LogFile         string        `yaml:"log_file"` // relative paths live under ResultsDir
	Site            string        `yaml:"site"`
	Driver          string        `yaml:"driver"`
	Headless        bool          `yaml:"headless"`
	ChromePath      string        `yaml:"chrome_path"`
	UserAgent       string        `yaml:"user_agent"`
	PageTimeout     time.Duration `yaml:"page_timeout"`
	ScreenshotPath  string        `yaml:"screenshot_path"`
	NotFoundMarkers []string      `yaml:"not_found_markers"`
	Pacing          pacing.Config `yaml:"pacing"`
}

func Default() Config {
	return Config{
		ResultsDir:      "results",
		LogFile:         "clustrmaps_log.txt",
		Site:            pipeline.DefaultSite,
		Driver:          DriverChrome,
		Headless:        true,
		UserAgent:       crawler.DefaultUserAgent,
		PageTimeout:     45 * time.Second,
		ScreenshotPath:  pipeline.DefaultScreenshotPath,
		NotFoundMarkers: classifier.DefaultNotFoundMarkers,
		Pacing:          pacing.DefaultConfig(),
	}
}

// Load returns Default overlaid with the YAML file at path. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CRAWLER_* variables looked up with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("CRAWLER_RESULTS_DIR", &c.ResultsDir)
	str("CRAWLER_LOG_FILE", &c.LogFile)
	str("CRAWLER_SITE", &c.Site)
	str("CRAWLER_DRIVER", &c.Driver)
	str("CRAWLER_CHROME_PATH", &c.ChromePath)
	str("CRAWLER_USER_AGENT", &c.UserAgent)
	str("CRAWLER_SCREENSHOT", &c.ScreenshotPath)

	if v := strings.TrimSpace(getenv("CRAWLER_HEADLESS")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CRAWLER_HEADLESS: %w", err)
		}
		c.Headless = b
	}
	if v := strings.TrimSpace(getenv("CRAWLER_PAGE_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CRAWLER_PAGE_TIMEOUT: %w", err)
		}
		c.PageTimeout = d
	}
	if v := strings.TrimSpace(getenv("CRAWLER_RESTART_EVERY")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CRAWLER_RESTART_EVERY: %w", err)
		}
		c.Pacing.RestartEvery = n
	}
	return nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ResultsDir) == "" {
		return fmt.Errorf("config error: 'results_dir' must not be empty")
	}
	if strings.TrimSpace(c.Site) == "" || strings.Contains(c.Site, "/") {
		return fmt.Errorf("config error: 'site' must be a bare host, got %q", c.Site)
	}
	if c.Driver != DriverChrome && c.Driver != DriverHTTP {
		return fmt.Errorf("config error: unknown driver %q (want %s or %s)", c.Driver, DriverChrome, DriverHTTP)
	}
	if c.PageTimeout < 0 {
		return fmt.Errorf("config error: 'page_timeout' must be non-negative")
	}
	if err := c.Pacing.Validate(); err != nil {
		return fmt.Errorf("config error: pacing: %w", err)
	}
	return nil
}

func (c Config) LogPath() string {
	if filepath.IsAbs(c.LogFile) {
		return c.LogFile
	}
	return filepath.Join(c.ResultsDir, c.LogFile)
}

// Launcher builds the browser launcher for the configured driver.
func (c Config) Launcher() crawler.Launcher {
	if c.Driver == DriverHTTP {
		opts := crawler.DefaultHTTPOptions()
		opts.UserAgent = c.UserAgent
		if c.PageTimeout > 0 {
			opts.Timeout = c.PageTimeout
		}
		return crawler.HTTPLauncher(opts)
	}
	opts := crawler.DefaultChromeOptions()
	opts.Headless = c.Headless
	opts.ExecPath = c.ChromePath
	opts.UserAgent = c.UserAgent
	opts.Timeout = c.PageTimeout
	return crawler.ChromeLauncher(opts)
}
