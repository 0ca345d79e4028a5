package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(lookupMap(nil))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse(lookupMap(map[string]string{
		EnvAddr:               "127.0.0.1:9000",
		EnvDBDriver:           "Postgres",
		EnvDBDSN:              "postgres://localhost/baccarat",
		EnvDecks:              "6",
		EnvReshuffleThreshold: "78",
		EnvMinDecksFloor:      "1.5",
		EnvCommission:         "0.04",
		EnvWorkers:            "3",
		EnvMaxHands:           "1_000_000",
		EnvRequestTimeout:     "30s",
	}))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	expected := Config{
		Addr:               "127.0.0.1:9000",
		DBDriver:           DriverPostgres,
		DBDSN:              "postgres://localhost/baccarat",
		Decks:              6,
		ReshuffleThreshold: 78,
		MinDecksFloor:      1.5,
		Commission:         0.04,
		Workers:            3,
		MaxHands:           1_000_000,
		RequestTimeout:     30 * time.Second,
	}
	if cfg != expected {
		t.Errorf("got %+v\nexpected %+v", cfg, expected)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"driver":     {EnvDBDriver: "mysql"},
		"decks":      {EnvDecks: "eight"},
		"threshold":  {EnvReshuffleThreshold: "3"},
		"too deep":   {EnvDecks: "1", EnvReshuffleThreshold: "52"},
		"floor":      {EnvMinDecksFloor: "-1"},
		"commission": {EnvCommission: "1"},
		"workers":    {EnvWorkers: "-1"},
		"max hands":  {EnvMaxHands: "0"},
		"timeout":    {EnvRequestTimeout: "soon"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(lookupMap(env)); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nBACCARAT_DECKS=4\nBACCARAT_ADDR=\":7070\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvAddr, ":6060")

	cfg, err := Load(filepath.Join(dir, "missing.env"), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Decks != 4 {
		t.Errorf("decks %d, expected 4 from .env", cfg.Decks)
	}
	if cfg.Addr != ":6060" {
		t.Errorf("addr %q, expected the process environment to win", cfg.Addr)
	}
}
