package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables that override file values.
const (
	EnvCount    = "SHAPES_COUNT"
	EnvSize     = "SHAPES_SIZE"
	EnvShape    = "SHAPES_SHAPE"
	EnvLogLevel = "SHAPES_LOG_LEVEL"
	EnvShowFPS  = "SHAPES_SHOW_FPS"
)

// LoadDotEnv reads KEY=VALUE lines from path (e.g. ".env") into the process environment.
// Blank lines and # comments are skipped, surrounding quotes are stripped, and variables
// already set in the environment win. A missing file is not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		value = unquote(strings.TrimSpace(value))
		if _, set := os.LookupEnv(key); set {
			continue
		}
		_ = os.Setenv(key, value)
	}
	return scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' && v[len(v)-1] == '"' || v[0] == '\'' && v[len(v)-1] == '\'') {
		return v[1 : len(v)-1]
	}
	return v
}

// ApplyEnv overrides cfg with any SHAPES_* variables that are set.
func ApplyEnv(cfg Config) (Config, error) {
	if v, ok := os.LookupEnv(EnvCount); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("config: %s: %w", EnvCount, err)
		}
		cfg.Instances.Count = n
	}
	if v, ok := os.LookupEnv(EnvSize); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 32)
		if err != nil {
			return cfg, fmt.Errorf("config: %s: %w", EnvSize, err)
		}
		cfg.Instances.Size = float32(f)
	}
	if v, ok := os.LookupEnv(EnvShape); ok {
		cfg.Shape = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.Log.Level = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvShowFPS); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return cfg, fmt.Errorf("config: %s: %w", EnvShowFPS, err)
		}
		cfg.Debug.ShowFPS = b
	}
	return cfg, nil
}
