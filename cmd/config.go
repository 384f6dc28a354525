package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/luca-patrignani/powledger/ledger"
)

// Config holds the driver settings. Every field can be set from a TOML file;
// missing keys keep their defaults.
type Config struct {
	// Difficulty is the hex encoded prefix every seal must start with.
	Difficulty  string `toml:"difficulty"`
	Blocks      int    `toml:"blocks"`
	PayloadSize int    `toml:"payload_size"`
	// MaxAttempts bounds the nonce search of a single block, 0 means unbounded.
	MaxAttempts uint64 `toml:"max_attempts"`
	Hash        string `toml:"hash"`
	Verbose     bool   `toml:"verbose"`
}

func defaultConfig() Config {
	return Config{
		Difficulty:  "0000",
		Blocks:      200,
		PayloadSize: 255,
		Hash:        ledger.HashSHA512,
	}
}

// loadConfig reads the TOML file at path over the defaults. An empty path
// returns the defaults. Unknown keys are rejected.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Config{}, fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, err := c.difficulty(); err != nil {
		return err
	}
	if c.Blocks < 0 {
		return fmt.Errorf("blocks must not be negative, got %d", c.Blocks)
	}
	if c.PayloadSize < 0 {
		return fmt.Errorf("payload_size must not be negative, got %d", c.PayloadSize)
	}
	if _, err := ledger.HasherByName(c.Hash); err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	return nil
}

// difficulty decodes the difficulty prefix. An empty string is a zero-length
// difficulty that every seal meets.
func (c Config) difficulty() ([]byte, error) {
	d, err := hex.DecodeString(c.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("difficulty %q is not hex: %w", c.Difficulty, err)
	}
	if d == nil {
		d = []byte{}
	}
	return d, nil
}
