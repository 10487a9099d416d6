// Package config loads the YAML configuration shared by the game, the agent
// and the command line.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultYAML []byte

// Config is the full application configuration.
type Config struct {
	Board   Board   `yaml:"board"`
	Rewards Rewards `yaml:"rewards"`
	Agent   Agent   `yaml:"agent"`
	Paths   Paths   `yaml:"paths"`
}

// Board describes the grid and the tick rates.
type Board struct {
	Width       int `yaml:"width"`      // cells
	Height      int `yaml:"height"`     // cells
	BlockSize   int `yaml:"block_size"` // pixels per cell
	HumanSpeed  int `yaml:"human_speed"`
	AISpeed     int `yaml:"ai_speed"`
	StallFactor int `yaml:"stall_factor"`
}

// Rewards returned by a game step.
type Rewards struct {
	Food  float64 `yaml:"food"`
	Death float64 `yaml:"death"`
}

// Agent holds the learning hyperparameters.
type Agent struct {
	MaxMemory    int     `yaml:"max_memory"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Gamma        float64 `yaml:"gamma"`
	HiddenSize   int     `yaml:"hidden_size"`
	EpsilonStart int     `yaml:"epsilon_start"`
	EpsilonRange int     `yaml:"epsilon_range"`
}

// Paths of files written during training.
type Paths struct {
	Model string `yaml:"model"`
	DB    string `yaml:"db"`
}

// Default returns the hardcoded defaults. It matches defaults.yaml.
func Default() Config {
	return Config{
		Board: Board{
			Width:       32,
			Height:      24,
			BlockSize:   20,
			HumanSpeed:  10,
			AISpeed:     20,
			StallFactor: 100,
		},
		Rewards: Rewards{
			Food:  10,
			Death: -10,
		},
		Agent: Agent{
			MaxMemory:    100_000,
			BatchSize:    1000,
			LearningRate: 0.001,
			Gamma:        0.9,
			HiddenSize:   256,
			EpsilonStart: 80,
			EpsilonRange: 200,
		},
		Paths: Paths{
			Model: filepath.Join("model", "model.gob"),
			DB:    filepath.Join("data", "history.db"),
		},
	}
}

// Load reads the configuration.
// Search order: customPath -> ~/.snake-rl/config.yaml -> ./configs/config.yaml -> embedded default
func Load(customPath string) (Config, error) {
	if customPath != "" {
		cfg, err := parseFile(customPath)
		if err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}

	if userPath := userConfigPath(); userPath != "" {
		if cfg, err := parseFile(userPath); err == nil {
			return cfg, cfg.Validate()
		}
	}

	if cfg, err := parseFile(filepath.Join("configs", "config.yaml")); err == nil {
		return cfg, cfg.Validate()
	}

	cfg := Default()
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default(), nil
	}
	return cfg, cfg.Validate()
}

// parseFile overlays the file on top of the defaults, so partial files work.
func parseFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".snake-rl", "config.yaml")
}

// Validate rejects values the game or the network cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Board.Width < 4 || c.Board.Height < 2 {
		errs = append(errs, fmt.Errorf("config: board must be at least 4x2 cells, got %dx%d", c.Board.Width, c.Board.Height))
	}
	if c.Board.BlockSize <= 0 {
		errs = append(errs, errors.New("config: block_size must be positive"))
	}
	if c.Board.HumanSpeed <= 0 || c.Board.AISpeed <= 0 {
		errs = append(errs, errors.New("config: speeds must be positive"))
	}
	if c.Board.StallFactor <= 0 {
		errs = append(errs, errors.New("config: stall_factor must be positive"))
	}
	if c.Agent.MaxMemory <= 0 || c.Agent.BatchSize <= 0 || c.Agent.HiddenSize <= 0 {
		errs = append(errs, errors.New("config: max_memory, batch_size and hidden_size must be positive"))
	}
	if c.Agent.LearningRate <= 0 {
		errs = append(errs, errors.New("config: learning_rate must be positive"))
	}
	if c.Agent.Gamma < 0 || c.Agent.Gamma > 1 {
		errs = append(errs, fmt.Errorf("config: gamma must be in [0,1], got %v", c.Agent.Gamma))
	}
	if c.Agent.EpsilonRange <= 0 {
		errs = append(errs, errors.New("config: epsilon_range must be positive"))
	}
	return errors.Join(errs...)
}
