package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/anamarijapotokar/Baccarat/internal/games"
)

// Environment keys.
const (
	EnvAddr               = "BACCARAT_ADDR"
	EnvDBDriver           = "BACCARAT_DB_DRIVER"
	EnvDBDSN              = "BACCARAT_DB_DSN"
	EnvDecks              = "BACCARAT_DECKS"
	EnvReshuffleThreshold = "BACCARAT_RESHUFFLE_THRESHOLD"
	EnvMinDecksFloor      = "BACCARAT_MIN_DECKS_FLOOR"
	EnvCommission         = "BACCARAT_COMMISSION"
	EnvWorkers            = "BACCARAT_WORKERS"
	EnvMaxHands           = "BACCARAT_MAX_HANDS"
	EnvRequestTimeout     = "BACCARAT_REQUEST_TIMEOUT"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is the server configuration.
type Config struct {
	Addr     string
	DBDriver string
	DBDSN    string

	// Simulation defaults applied when a request leaves them empty.
	Decks              int
	ReshuffleThreshold int
	MinDecksFloor      float64
	Commission         float64

	Workers        int
	MaxHands       int64
	RequestTimeout time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:               ":8080",
		DBDriver:           DriverSQLite,
		DBDSN:              "baccarat.db",
		Decks:              games.DefaultDecks,
		ReshuffleThreshold: games.DefaultReshuffleThreshold,
		MinDecksFloor:      games.DefaultMinDecksFloor,
		Commission:         games.DefaultCommission,
		MaxHands:           10_000_000,
		RequestTimeout:     2 * time.Minute,
	}
}

// Load reads the given .env files (missing files are skipped) and then the
// process environment, which wins over file values.
func Load(files ...string) (Config, error) {
	fileEnv := map[string]string{}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range m {
			fileEnv[k] = v
		}
	}
	return Parse(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	})
}

// Parse builds a Config from lookup on top of Default.
func Parse(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvAddr); ok {
		cfg.Addr = v
	}
	if v, ok := get(EnvDBDriver); ok {
		cfg.DBDriver = strings.ToLower(v)
	}
	if v, ok := get(EnvDBDSN); ok {
		cfg.DBDSN = v
	}

	var err error
	if cfg.Decks, err = intVar(get, EnvDecks, cfg.Decks); err != nil {
		return Config{}, err
	}
	if cfg.ReshuffleThreshold, err = intVar(get, EnvReshuffleThreshold, cfg.ReshuffleThreshold); err != nil {
		return Config{}, err
	}
	if cfg.Workers, err = intVar(get, EnvWorkers, cfg.Workers); err != nil {
		return Config{}, err
	}
	if cfg.MinDecksFloor, err = floatVar(get, EnvMinDecksFloor, cfg.MinDecksFloor); err != nil {
		return Config{}, err
	}
	if cfg.Commission, err = floatVar(get, EnvCommission, cfg.Commission); err != nil {
		return Config{}, err
	}
	if v, ok := get(EnvMaxHands); ok {
		n, err := strconv.ParseInt(strings.ReplaceAll(v, "_", ""), 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q", ErrInvalid, EnvMaxHands, v)
		}
		cfg.MaxHands = n
	}
	if v, ok := get(EnvRequestTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q", ErrInvalid, EnvRequestTimeout, v)
		}
		cfg.RequestTimeout = d
	}

	return cfg, cfg.Validate()
}

// Validate checks ranges and that the shoe settings are playable.
func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: %s must be %q or %q, got %q", ErrInvalid, EnvDBDriver, DriverSQLite, DriverPostgres, c.DBDriver)
	}
	if c.DBDSN == "" {
		return fmt.Errorf("%w: %s is empty", ErrInvalid, EnvDBDSN)
	}
	shoe := games.ShoeConfig{Decks: c.Decks, ReshuffleThreshold: c.ReshuffleThreshold}
	if err := shoe.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.MinDecksFloor <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, EnvMinDecksFloor)
	}
	if c.Commission < 0 || c.Commission >= 1 {
		return fmt.Errorf("%w: %s must be in [0,1)", ErrInvalid, EnvCommission)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalid, EnvWorkers)
	}
	if c.MaxHands <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, EnvMaxHands)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalid, EnvRequestTimeout)
	}
	return nil
}

func intVar(get func(string) (string, bool), key string, def int) (int, error) {
	v, ok := get(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
	}
	return n, nil
}

func floatVar(get func(string) (string, bool), key string, def float64) (float64, error) {
	v, ok := get(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalid, key, v)
	}
	return f, nil
}
