package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/anamarijapotokar/Baccarat/internal/games"
	"github.com/anamarijapotokar/Baccarat/internal/sim"
	"github.com/anamarijapotokar/Baccarat/internal/strategy"
)

// maxStrategyHands bounds /strategies, whose path is held in memory.
const maxStrategyHands = 1_000_000

func fieldError(field, format string, args ...interface{}) error {
	return NewError(ErrTypeValidation, fmt.Sprintf(format, args...)).
		WithContext("field", field).
		Build()
}

// simTimeoutMs leaves the handler a tenth of the request budget to respond.
func simTimeoutMs(requestTimeout time.Duration) int {
	return int((requestTimeout * 9 / 10).Milliseconds())
}

// prepareSimConfig applies server defaults and validates a simulation config.
func (s *Server) prepareSimConfig(cfg sim.Config) (sim.Config, error) {
	if cfg.Decks == 0 {
		cfg.Decks = s.cfg.Decks
	}
	if cfg.ReshuffleThreshold == 0 {
		cfg.ReshuffleThreshold = s.cfg.ReshuffleThreshold
	}
	if cfg.MinDecksFloor == 0 {
		cfg.MinDecksFloor = s.cfg.MinDecksFloor
	}
	if cfg.Commission == 0 {
		cfg.Commission = s.cfg.Commission
	}
	if cfg.TimeoutMs == 0 {
		cfg.TimeoutMs = simTimeoutMs(s.cfg.RequestTimeout)
	}
	cfg.System = strings.ToLower(strings.TrimSpace(cfg.System))
	cfg = cfg.WithDefaults()

	if cfg.Hands > s.cfg.MaxHands {
		return cfg, fieldError("hands", "hands %d exceeds the maximum of %d", cfg.Hands, s.cfg.MaxHands)
	}
	if cfg.System == "" && len(cfg.Weights) == 0 {
		return cfg, fieldError("system", "either system or weights is required")
	}
	if cfg.Fair != nil {
		if cfg.Fair.Server == "" {
			return cfg, fieldError("fair.server", "server seed is required")
		}
		if cfg.Fair.Client == "" {
			return cfg, fieldError("fair.client", "client seed is required")
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// prepareCompareConfig is prepareSimConfig without the system requirement.
func (s *Server) prepareCompareConfig(req CompareRequest) (sim.Config, []string, error) {
	base := req.Config
	base.System = games.SystemNames()[0]
	cfg, err := s.prepareSimConfig(base)
	if err != nil {
		return cfg, nil, err
	}
	cfg.System = ""

	systems := make([]string, 0, len(req.Systems))
	for _, name := range req.Systems {
		name = strings.ToLower(strings.TrimSpace(name))
		if _, ok := games.LookupSystem(name); !ok {
			return cfg, nil, fieldError("systems", "unknown counting system %q", name)
		}
		systems = append(systems, name)
	}
	n := len(systems)
	if n == 0 {
		n = len(games.SystemNames())
	}
	if cfg.Hands*int64(n) > s.cfg.MaxHands {
		return cfg, nil, fieldError("hands", "hands %d across %d systems exceeds the maximum of %d", cfg.Hands, n, s.cfg.MaxHands)
	}
	// Systems run one after another inside one request budget.
	if req.TimeoutMs == 0 {
		cfg.TimeoutMs = max(simTimeoutMs(s.cfg.RequestTimeout)/n, 1)
	}
	return cfg, systems, nil
}

// prepareStrategy validates a strategy request and builds its progression.
func (s *Server) prepareStrategy(req *StrategyRequest) (strategy.Progression, *strategy.Script, error) {
	if req.Config.Bet != "" {
		bet, err := games.ParseBetType(string(req.Config.Bet))
		if err != nil {
			return nil, nil, fieldError("config.bet_type", "%v", err)
		}
		req.Config.Bet = bet
	}
	if req.Config.Commission == 0 {
		req.Config.Commission = s.cfg.Commission
	}
	req.Config = req.Config.WithDefaults()
	if err := req.Config.Validate(); err != nil {
		return nil, nil, err
	}

	if len(req.Outcomes) > 0 {
		if len(req.Outcomes) > maxStrategyHands {
			return nil, nil, fieldError("outcomes", "at most %d outcomes", maxStrategyHands)
		}
		for i, o := range req.Outcomes {
			if !o.Valid() {
				return nil, nil, fieldError("outcomes", "outcome %d is invalid", i)
			}
		}
		req.Hands = len(req.Outcomes)
	} else {
		limit := maxStrategyHands
		if int64(limit) > s.cfg.MaxHands {
			limit = int(s.cfg.MaxHands)
		}
		if req.Hands <= 0 || req.Hands > limit {
			return nil, nil, fieldError("hands", "hands must be in [1, %d], got %d", limit, req.Hands)
		}
		if req.Fair != nil && (req.Fair.Server == "" || req.Fair.Client == "") {
			return nil, nil, fieldError("fair", "server and client seeds are required")
		}
	}

	if strings.TrimSpace(req.Script) != "" {
		script, err := strategy.NewScript(req.Script, req.Config)
		if err != nil {
			return nil, nil, err
		}
		return script, script, nil
	}
	if req.Strategy == "" {
		return nil, nil, fieldError("strategy", "strategy or script is required")
	}
	p, err := strategy.New(req.Strategy, req.Config)
	if err != nil {
		return nil, nil, err
	}
	return p, nil, nil
}

// prepareRuin applies server defaults and bounds a ruin study.
func (s *Server) prepareRuin(cfg sim.RuinConfig) (sim.RuinConfig, error) {
	if cfg.Decks == 0 {
		cfg.Decks = s.cfg.Decks
	}
	if cfg.ReshuffleThreshold == 0 {
		cfg.ReshuffleThreshold = s.cfg.ReshuffleThreshold
	}
	if err := (games.ShoeConfig{Decks: cfg.Decks, ReshuffleThreshold: cfg.ReshuffleThreshold}).Validate(); err != nil {
		return cfg, err
	}
	if cfg.Strategy.Commission == 0 {
		cfg.Strategy.Commission = s.cfg.Commission
	}
	if cfg.Strategy.Bet != "" {
		bet, err := games.ParseBetType(string(cfg.Strategy.Bet))
		if err != nil {
			return cfg, fieldError("strategy.bet_type", "%v", err)
		}
		cfg.Strategy.Bet = bet
	}
	cfg.Strategy = cfg.Strategy.WithDefaults()
	if cfg.Simulations <= 0 {
		return cfg, fieldError("simulations", "simulations must be positive")
	}
	if cfg.HandsPerSim <= 0 {
		return cfg, fieldError("hands_per_sim", "hands_per_sim must be positive")
	}
	if total := int64(cfg.Simulations) * int64(cfg.HandsPerSim); total > s.cfg.MaxHands {
		return cfg, fieldError("hands_per_sim", "%d total hands exceeds the maximum of %d", total, s.cfg.MaxHands)
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = strategy.Names()
	}
	for _, name := range cfg.Strategies {
		if _, err := strategy.New(name, cfg.Strategy); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// prepareSettle parses the bet and fills the commission.
func (s *Server) prepareSettle(req *SettleRequest) (games.BetType, float64, error) {
	bet, err := games.ParseBetType(req.Bet)
	if err != nil {
		return "", 0, fieldError("bet_type", "%v", err)
	}
	if !req.Outcome.Valid() {
		return "", 0, fieldError("outcome", "outcome is required")
	}
	commission := s.cfg.Commission
	if req.Commission != nil {
		commission = *req.Commission
	}
	return bet, commission, nil
}
