// Package config loads process configuration: defaults in code,
// environment overrides via godotenv, then an optional JSON file
// deep-merged on top (spec.md §6, §9).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Gmail holds mail-provider connection and filter settings.
type Gmail struct {
	Senders         []string `json:"senders"`
	SubjectKeywords []string `json:"subjectKeywords"`
	RedirectPort    int      `json:"redirectPort"`
	AuthTimeoutMs   int      `json:"authTimeoutMs"`
	FetchBatchSize  int      `json:"fetchBatchSize"`
}

// Currency holds display/formatting settings, not used for conversion.
type Currency struct {
	Code   string `json:"code"`
	Locale string `json:"locale"`
}

// Alerts holds the C9 post-sync alert thresholds.
type Alerts struct {
	SpikeThreshold        float64 `json:"spikeThreshold"`
	LargeTransactionAmount float64 `json:"largeTransactionAmount"`
}

// Sync holds C4 ingestion defaults.
type Sync struct {
	DefaultLookbackMonths int `json:"defaultLookbackMonths"`
}

// Parser holds C5 parsing pipeline tunables.
type Parser struct {
	ConfidenceThreshold  float64 `json:"confidenceThreshold"`
	BodyTruncationLimit  int     `json:"bodyTruncationLimit"`
}

// RateLimit holds C2 retry tunables, expressed in milliseconds on disk
// and converted to time.Duration by callers.
type RateLimit struct {
	MaxRetries     int `json:"maxRetries"`
	InitialDelayMs int `json:"initialDelayMs"`
	MaxDelayMs     int `json:"maxDelayMs"`
}

// Dedup holds C7 candidate-selection tunables.
type Dedup struct {
	DateToleranceDays int `json:"dateToleranceDays"`
}

// Categories holds the closed category set override. Empty Descriptions
// entries fall back to the built-in domain.CategoryDescriptions text.
type Categories struct {
	List         []string          `json:"list"`
	Descriptions map[string]string `json:"descriptions"`
}

// Config is the full closed set of recognized options from spec.md §6.
type Config struct {
	Gmail      Gmail      `json:"gmail"`
	Currency   Currency   `json:"currency"`
	Alerts     Alerts     `json:"alerts"`
	Sync       Sync       `json:"sync"`
	Parser     Parser     `json:"parser"`
	RateLimit  RateLimit  `json:"rateLimit"`
	Dedup      Dedup      `json:"dedup"`
	Categories Categories `json:"categories"`

	// Not part of the JSON config surface: resolved from environment and
	// the default home layout.
	HomeDir string `json:"-"`
	DBPath  string `json:"-"`
}

// Defaults returns the built-in configuration before any env or file
// overrides are applied.
func Defaults() Config {
	return Config{
		Gmail: Gmail{
			Senders:         nil,
			SubjectKeywords: nil,
			RedirectPort:    8085,
			AuthTimeoutMs:   120_000,
			FetchBatchSize:  50,
		},
		Currency: Currency{Code: "INR", Locale: "en-IN"},
		Alerts:   Alerts{SpikeThreshold: 1.4, LargeTransactionAmount: 10000},
		Sync:     Sync{DefaultLookbackMonths: 3},
		Parser:   Parser{ConfidenceThreshold: 0.7, BodyTruncationLimit: 8000},
		RateLimit: RateLimit{
			MaxRetries:     5,
			InitialDelayMs: 1000,
			MaxDelayMs:     32000,
		},
		Dedup: Dedup{DateToleranceDays: 1},
	}
}

// Load resolves the full configuration: defaults, then .env-sourced
// environment overrides for the home/db path, then a deep-merge of
// ~/.expense-tracker/config.json if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	home, err := resolveHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.HomeDir = home
	cfg.DBPath = resolveDBPath(home)

	configPath := filepath.Join(home, "config.json")
	if data, err := os.ReadFile(configPath); err == nil {
		if err := mergeJSON(&cfg, data); err != nil {
			return Config{}, fmt.Errorf("load config: parse %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load config: read %s: %w", configPath, err)
	}

	return cfg, nil
}

func resolveHomeDir() (string, error) {
	if v, ok := os.LookupEnv("EXPENSE_TRACKER_HOME"); ok && v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".expense-tracker"), nil
}

func resolveDBPath(home string) string {
	if v, ok := os.LookupEnv("EXPENSE_TRACKER_DB"); ok && v != "" {
		return v
	}
	return filepath.Join(home, "data.db")
}

// mergeJSON deep-merges the JSON document in data onto cfg. Arrays are
// replaced wholesale rather than concatenated, so a user file can shrink
// an allow-list (spec.md §9).
func mergeJSON(cfg *Config, data []byte) error {
	var overrides Config
	if err := json.Unmarshal(data, &overrides); err != nil {
		return err
	}

	if overrides.Gmail.Senders != nil {
		cfg.Gmail.Senders = overrides.Gmail.Senders
	}
	if overrides.Gmail.SubjectKeywords != nil {
		cfg.Gmail.SubjectKeywords = overrides.Gmail.SubjectKeywords
	}
	if overrides.Gmail.RedirectPort != 0 {
		cfg.Gmail.RedirectPort = overrides.Gmail.RedirectPort
	}
	if overrides.Gmail.AuthTimeoutMs != 0 {
		cfg.Gmail.AuthTimeoutMs = overrides.Gmail.AuthTimeoutMs
	}
	if overrides.Gmail.FetchBatchSize != 0 {
		cfg.Gmail.FetchBatchSize = overrides.Gmail.FetchBatchSize
	}
	if overrides.Currency.Code != "" {
		cfg.Currency.Code = overrides.Currency.Code
	}
	if overrides.Currency.Locale != "" {
		cfg.Currency.Locale = overrides.Currency.Locale
	}
	if overrides.Alerts.SpikeThreshold != 0 {
		cfg.Alerts.SpikeThreshold = overrides.Alerts.SpikeThreshold
	}
	if overrides.Alerts.LargeTransactionAmount != 0 {
		cfg.Alerts.LargeTransactionAmount = overrides.Alerts.LargeTransactionAmount
	}
	if overrides.Sync.DefaultLookbackMonths != 0 {
		cfg.Sync.DefaultLookbackMonths = overrides.Sync.DefaultLookbackMonths
	}
	if overrides.Parser.ConfidenceThreshold != 0 {
		cfg.Parser.ConfidenceThreshold = overrides.Parser.ConfidenceThreshold
	}
	if overrides.Parser.BodyTruncationLimit != 0 {
		cfg.Parser.BodyTruncationLimit = overrides.Parser.BodyTruncationLimit
	}
	if overrides.RateLimit.MaxRetries != 0 {
		cfg.RateLimit.MaxRetries = overrides.RateLimit.MaxRetries
	}
	if overrides.RateLimit.InitialDelayMs != 0 {
		cfg.RateLimit.InitialDelayMs = overrides.RateLimit.InitialDelayMs
	}
	if overrides.RateLimit.MaxDelayMs != 0 {
		cfg.RateLimit.MaxDelayMs = overrides.RateLimit.MaxDelayMs
	}
	if overrides.Dedup.DateToleranceDays != 0 {
		cfg.Dedup.DateToleranceDays = overrides.Dedup.DateToleranceDays
	}
	if overrides.Categories.List != nil {
		cfg.Categories.List = overrides.Categories.List
	}
	if overrides.Categories.Descriptions != nil {
		cfg.Categories.Descriptions = overrides.Categories.Descriptions
	}
	return nil
}
