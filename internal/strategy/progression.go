package strategy

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Progression sizes the next stake. current is the progression's previous
// stake before any bankroll cap, won is true only for a strictly positive
// profit (a push counts as a loss), bankroll is the balance after settlement.
type Progression interface {
	Name() string
	Next(current float64, won bool, bankroll float64) (float64, error)
}

// Flat always stakes the base bet.
type Flat struct {
	Base float64
}

func (Flat) Name() string { return "flat" }

func (f Flat) Next(float64, bool, float64) (float64, error) {
	return f.Base, nil
}

// Martingale doubles after a loss, capped at the bankroll, and resets after a win.
type Martingale struct {
	Base float64
}

func (Martingale) Name() string { return "martingale" }

func (m Martingale) Next(current float64, won bool, bankroll float64) (float64, error) {
	if won {
		return m.Base, nil
	}
	return math.Min(current*2, bankroll), nil
}

// Paroli doubles after a win, capped at Max, and resets after a loss.
type Paroli struct {
	Base float64
	Max  float64
}

func (Paroli) Name() string { return "paroli" }

func (p Paroli) Next(current float64, won bool, _ float64) (float64, error) {
	if won {
		return math.Min(current*2, p.Max), nil
	}
	return p.Base, nil
}

// DAlembert steps up one unit after a loss and down one after a win, never
// below the base bet.
type DAlembert struct {
	Base float64
	Unit float64
}

func (DAlembert) Name() string { return "dalembert" }

func (d DAlembert) Next(current float64, won bool, _ float64) (float64, error) {
	if won {
		return math.Max(d.Base, current-d.Unit), nil
	}
	return current + d.Unit, nil
}

var builtins = map[string]func(Config) Progression{
	"flat":       func(c Config) Progression { return Flat{Base: c.BaseBet} },
	"martingale": func(c Config) Progression { return Martingale{Base: c.BaseBet} },
	"paroli":     func(c Config) Progression { return Paroli{Base: c.BaseBet, Max: c.MaxBet} },
	"dalembert":  func(c Config) Progression { return DAlembert{Base: c.BaseBet, Unit: c.Unit} },
}

// Names returns the built-in progression names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds a named progression from cfg after applying defaults.
func New(name string, cfg Config) (Progression, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("'", "", "-", "", "_", "").Replace(key)
	if key == "reversemartingale" {
		key = "paroli"
	}
	build, ok := builtins[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return build(cfg), nil
}
