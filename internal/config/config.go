package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"movie_keywords/internal/filter"
	"movie_keywords/internal/logger"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid config")

// DateLayout is the layout of the policy timestamps in the config file.
const DateLayout = "2006-01-02"

type DBConfig struct {
	// Connection is a full connection string; when empty Host and Port are used.
	Connection string `yaml:"connection"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	AuthSource string `yaml:"auth_source"`
	TimeoutSec int    `yaml:"timeout_sec"`
	BatchSize  int    `yaml:"batch_size"`
}

type FilterConfig struct {
	AsOf           string  `yaml:"as_of"`
	NextCutoff     string  `yaml:"next_cutoff"`
	MinRuntime     int     `yaml:"min_runtime"`
	MinScore       float64 `yaml:"min_score"`
	MinRatingCount int     `yaml:"min_rating_count"`
	MaturityDays   int     `yaml:"maturity_days"`
	Country        string  `yaml:"country"`
	Language       string  `yaml:"language"`
}

type KeywordsConfig struct {
	StripMarkup   bool `yaml:"strip_markup"`
	NormalizeURLs bool `yaml:"normalize_urls"`
	ProgressEvery int  `yaml:"progress_every"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
	// MetricsFile, when set, receives the run metrics in the Prometheus
	// text format.
	MetricsFile string `yaml:"metrics_file"`
}

type DictionaryConfig struct {
	MinKeywordLength int `yaml:"min_keyword_length"`
}

type Config struct {
	DB         DBConfig         `yaml:"db"`
	Filter     FilterConfig     `yaml:"filter"`
	Keywords   KeywordsConfig   `yaml:"keywords"`
	Output     OutputConfig     `yaml:"output"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Log        logger.Config    `yaml:"log"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	policy := filter.DefaultPolicy()
	return &Config{
		DB: DBConfig{
			Host:       "127.0.0.1",
			Port:       27017,
			Collection: "imdb_data",
			TimeoutSec: 10,
			BatchSize:  1000,
		},
		Filter: FilterConfig{
			AsOf:           policy.AsOf.Format(DateLayout),
			NextCutoff:     policy.NextCutoff.Format(DateLayout),
			MinRuntime:     policy.MinRuntime,
			MinScore:       policy.MinScore,
			MinRatingCount: policy.MinRatingCount,
			MaturityDays:   int(policy.MaturityWindow / (24 * time.Hour)),
			Country:        policy.Country,
			Language:       policy.Language,
		},
		Keywords: KeywordsConfig{
			StripMarkup:   false,
			ProgressEvery: 20000,
		},
		Output: OutputConfig{
			Dir: ".",
		},
		Dictionary: DictionaryConfig{
			MinKeywordLength: 3,
		},
		Log: logger.Config{
			Level: "info",
		},
	}
}

// LoadConfig reads the YAML file at path on top of the defaults and then
// applies environment overrides. A .env file in the working directory is
// loaded first; an empty path or a missing file leaves the defaults alone.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	stringVars := map[string]*string{
		"MONGO_CONNECTION": &c.DB.Connection,
		"MONGO_HOST":       &c.DB.Host,
		"MONGO_DATABASE":   &c.DB.Database,
		"MONGO_COLLECTION": &c.DB.Collection,
		"MONGO_USERNAME":   &c.DB.Username,
		"MONGO_PASSWORD":   &c.DB.Password,
		"LOG_LEVEL":        &c.Log.Level,
		"OUTPUT_DIR":       &c.Output.Dir,
	}
	for key, dst := range stringVars {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("MONGO_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MONGO_PORT %q: %v", ErrInvalid, v, err)
		}
		c.DB.Port = port
	}
	return nil
}

// Validate checks the settings a run cannot do without.
func (c *Config) Validate() error {
	if c.DB.Database == "" {
		return fmt.Errorf("%w: db.database is required", ErrInvalid)
	}
	if c.DB.Collection == "" {
		return fmt.Errorf("%w: db.collection is required", ErrInvalid)
	}
	if c.DB.Connection == "" && (c.DB.Host == "" || c.DB.Port <= 0 || c.DB.Port > 65535) {
		return fmt.Errorf("%w: db.host and db.port are required", ErrInvalid)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("%w: output.dir is required", ErrInvalid)
	}
	return nil
}

// Policy converts the filter section into an eligibility policy.
func (c *Config) Policy() (filter.Policy, error) {
	asOf, err := time.Parse(DateLayout, c.Filter.AsOf)
	if err != nil {
		return filter.Policy{}, fmt.Errorf("%w: filter.as_of: %v", ErrInvalid, err)
	}
	cutoff, err := time.Parse(DateLayout, c.Filter.NextCutoff)
	if err != nil {
		return filter.Policy{}, fmt.Errorf("%w: filter.next_cutoff: %v", ErrInvalid, err)
	}
	if c.Filter.MinRuntime < 0 || c.Filter.MinScore < 0 || c.Filter.MinRatingCount < 0 || c.Filter.MaturityDays < 0 {
		return filter.Policy{}, fmt.Errorf("%w: filter thresholds must not be negative", ErrInvalid)
	}
	if c.Filter.Country == "" || c.Filter.Language == "" {
		return filter.Policy{}, fmt.Errorf("%w: filter.country and filter.language are required", ErrInvalid)
	}

	return filter.Policy{
		AsOf:           asOf,
		NextCutoff:     cutoff,
		MinRuntime:     c.Filter.MinRuntime,
		MinScore:       c.Filter.MinScore,
		MinRatingCount: c.Filter.MinRatingCount,
		MaturityWindow: time.Duration(c.Filter.MaturityDays) * 24 * time.Hour,
		Country:        c.Filter.Country,
		Language:       c.Filter.Language,
	}, nil
}
