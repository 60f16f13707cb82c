package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PrepKindSunday / PrepKindWednesday name the two recurring prep blocks.
// The kinds double as keys into the prep task catalog.
const (
	PrepKindSunday    = "domingo"
	PrepKindWednesday = "quarta"
)

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API and the calendar page.
	Listen string `yaml:"listen" json:"listen"`

	// DataDir holds the source documents (meal-plan.json, meals.json).
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// RefreshCron is a cron-style schedule string (e.g. "*/30 * * * *")
	// used to reload the source documents in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HorizonDays is the number of days to materialize. It is clamped to
	// a minimum of 56 and rounded up to whole weeks by the engine.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// ShoppingFrequencyDays is the interval between shopping days.
	ShoppingFrequencyDays int `yaml:"shopping_frequency_days" json:"shopping_frequency_days"`

	// ShoppingAnchorDate, when set, is a YYYY-MM-DD date the shopping
	// cycle counts from. Empty or malformed values fall back to the
	// schedule anchor.
	ShoppingAnchorDate string `yaml:"shopping_anchor_date" json:"shopping_anchor_date"`

	// PrepTasks maps a prep-block kind to its fixed task list. The task
	// catalog is configuration, not derived from the schedule.
	PrepTasks map[string][]string `yaml:"prep_tasks" json:"prep_tasks"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:                "127.0.0.1:8080",
		DataDir:               "./data",
		RefreshCron:           "*/30 * * * *",
		HorizonDays:           365,
		ShoppingFrequencyDays: 7,
		ShoppingAnchorDate:    "",
		PrepTasks:             defaultPrepTasks(),
	}
}

func defaultPrepTasks() map[string][]string {
	return map[string][]string{
		PrepKindSunday: {
			"Proteina da semana (acem ou file mignon, apenas 1 por semana)",
			"Arroz ate quarta almoco",
			"Legumes ate quarta almoco (2 mixes)",
			"Molho de tomate base (congelar em porcoes)",
			"Macarrao pre-cozido para quarta em diante",
			"Mise en place congelado: cebola, alho, pimentao, cheiro-verde (tomate opcional)",
		},
		PrepKindWednesday: {
			"Frango em cubos para a parte facil (quarta noite em diante)",
			"Ovos cozidos (8-12) para almocos/janta leves pos-quarta",
			"Sem legumes cozidos depois de quarta",
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/30 * * * *"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 365
	}
	if c.ShoppingFrequencyDays <= 0 {
		c.ShoppingFrequencyDays = 7
	}
	if c.PrepTasks == nil {
		c.PrepTasks = defaultPrepTasks()
	} else {
		// Fill only the missing kinds; a kind set to an explicit empty
		// list stays empty.
		for kind, tasks := range defaultPrepTasks() {
			if _, ok := c.PrepTasks[kind]; !ok {
				c.PrepTasks[kind] = tasks
			}
		}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".plancal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
