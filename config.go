package swp

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// ChannelConfig holds the loss/delay parameters for one channel direction.
type ChannelConfig struct {
	LossProbability float64 `toml:"loss_probability"`
	DelayMinMs      int     `toml:"delay_min_ms"`
	DelayMaxMs      int     `toml:"delay_max_ms"`
}

func (cfg ChannelConfig) DelayMin() time.Duration {
	return time.Duration(cfg.DelayMinMs) * time.Millisecond
}

func (cfg ChannelConfig) DelayMax() time.Duration {
	return time.Duration(cfg.DelayMaxMs) * time.Millisecond
}

// Config is the full simulation configuration shared by both endpoints.
// It is passed explicitly into the channel policy and both state machines;
// there are no process-wide mutable settings.
type Config struct {
	DataHost string `toml:"data_host"`
	DataPort int    `toml:"data_port"`
	AckHost  string `toml:"ack_host"`
	AckPort  int    `toml:"ack_port"`

	Seed       int64 `toml:"seed"`
	TimeoutMs  int   `toml:"timeout_ms"`
	MaxRetries int   `toml:"max_retries"`

	Input  string `toml:"input"`
	Output string `toml:"output"`

	Data ChannelConfig `toml:"data"`
	Ack  ChannelConfig `toml:"ack"`
}

func DefaultConfig() Config {
	return Config{
		DataHost:   "127.0.0.1",
		DataPort:   9000,
		AckHost:    "127.0.0.1",
		AckPort:    9001,
		Seed:       defaultSeed,
		TimeoutMs:  int(defaultRetransmissionTimeout / time.Millisecond),
		MaxRetries: defaultMaxRetries,
		Output:     "received.bin",
		Data: ChannelConfig{
			LossProbability: 0.15,
			DelayMinMs:      300,
			DelayMaxMs:      400,
		},
		Ack: ChannelConfig{
			LossProbability: 0.08,
			DelayMinMs:      25,
			DelayMaxMs:      40,
		},
	}
}

// LoadConfig reads a TOML file over the defaults. Values absent from the
// file keep their default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (cfg Config) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMs) * time.Millisecond
}

func (cfg Config) Validate() error {
	if err := cfg.Data.validate("data"); err != nil {
		return err
	}
	if err := cfg.Ack.validate("ack"); err != nil {
		return err
	}
	if cfg.TimeoutMs <= 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", cfg.TimeoutMs)
	}
	if cfg.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", cfg.MaxRetries)
	}
	return nil
}

func (cfg ChannelConfig) validate(direction string) error {
	if cfg.LossProbability < 0 || cfg.LossProbability > 1 {
		return fmt.Errorf("%s loss_probability must be within [0, 1], got %g", direction, cfg.LossProbability)
	}
	if cfg.DelayMinMs < 0 {
		return fmt.Errorf("%s delay_min_ms must not be negative, got %d", direction, cfg.DelayMinMs)
	}
	if cfg.DelayMaxMs < cfg.DelayMinMs {
		return fmt.Errorf("%s delay_max_ms must not be below delay_min_ms, got %d < %d",
			direction, cfg.DelayMaxMs, cfg.DelayMinMs)
	}
	return nil
}
