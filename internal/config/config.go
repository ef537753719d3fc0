package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for the daily report tools.
type Config struct {
	Report   Report   `yaml:"report"`
	Storage  Storage  `yaml:"storage"`
	Launcher Launcher `yaml:"launcher"`
	Logging  Logging  `yaml:"logging"`
}

// Report holds the inputs and layout knobs for the fill pipeline.
type Report struct {
	TemplatePath string `yaml:"template_path"`
	MappingPath  string `yaml:"mapping_path"`
	SourcesGlob  string `yaml:"sources_glob"`
	OutputDir    string `yaml:"output_dir"`

	// PreferredSheet is matched against template sheet names after
	// normalization (lowercase, whitespace stripped).
	PreferredSheet string `yaml:"preferred_sheet"`

	// MetadataRows is the number of lines before the CSV header row.
	MetadataRows int `yaml:"metadata_rows"`

	// FillIfMissing is written to cells whose series has no in-window data.
	FillIfMissing string `yaml:"fill_if_missing"`

	// Stamp cells. Empty DateCell+TimeCell+DateTimeCell means the stamps go
	// to A1-A3 instead, skipping cells that already hold content.
	DateCell     string `yaml:"date_cell"`
	TimeCell     string `yaml:"time_cell"`
	DateTimeCell string `yaml:"datetime_cell"`

	// DefaultWindowMinutes seeds the interactive prompt.
	DefaultWindowMinutes int `yaml:"default_window_minutes"`

	// MissCandidates is how many near-miss series names are logged per
	// missing mapping entry. Zero disables the diagnostic.
	MissCandidates int `yaml:"miss_candidates"`
}

// Storage holds paths for the run archive.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Launcher configures the legacy delegating launcher.
type Launcher struct {
	// Probe is the interpreter presence check; its output is discarded and
	// any failure to run means "interpreter not found".
	Probe []string `yaml:"probe"`

	// Delegate is the program run after a successful probe, always with
	// zero extra arguments.
	Delegate []string `yaml:"delegate"`

	// DownloadURL is printed with the interpreter-missing diagnostic.
	DownloadURL string `yaml:"download_url"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ---------------------------------------------------------------------------
// Defaults and loading
// ---------------------------------------------------------------------------

// Default returns the configuration used when no config file is present.
// The defaults mirror the layout the report folder ships with: template and
// mapping next to the executable, CSV drops under sources/, output under
// output/.
func Default() *Config {
	return &Config{
		Report: Report{
			TemplatePath:         "template.xlsx",
			MappingPath:          "mapping.xlsx",
			SourcesGlob:          "sources/*.csv",
			OutputDir:            "output",
			PreferredSheet:       "daily rev0(+cn)",
			MetadataRows:         6,
			FillIfMissing:        "NA",
			DateCell:             "E34",
			TimeCell:             "E35",
			DefaultWindowMinutes: 30,
			MissCandidates:       5,
		},
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/report.db",
		},
		Launcher: Launcher{
			Probe:       []string{"python", "--version"},
			Delegate:    []string{"python", "fill_report.py"},
			DownloadURL: "https://www.python.org/downloads/",
		},
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML configuration file at the given path on top of the
// defaults, then applies environment variable overrides. A missing file is
// not an error: double-click users run without one.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides
// the corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TEMPLATE_XLSX"); v != "" {
		cfg.Report.TemplatePath = v
	}
	if v := os.Getenv("MAPPING_XLSX"); v != "" {
		cfg.Report.MappingPath = v
	}
	if v := os.Getenv("SOURCES_GLOB"); v != "" {
		cfg.Report.SourcesGlob = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Report.OutputDir = v
	}
	if v := os.Getenv("FILL_IF_MISSING"); v != "" {
		cfg.Report.FillIfMissing = v
	}
	if v := os.Getenv("REPORT_WINDOW_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Report.DefaultWindowMinutes = n
		}
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
