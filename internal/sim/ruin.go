package sim

import (
	"context"
	"fmt"

	"github.com/anamarijapotokar/Baccarat/internal/engine"
	"github.com/anamarijapotokar/Baccarat/internal/games"
	"github.com/anamarijapotokar/Baccarat/internal/strategy"
)

// RuinConfig describes a ruin study: Simulations independent shoes of
// HandsPerSim hands each, every strategy replayed on the same outcomes.
type RuinConfig struct {
	Strategies         []string        `json:"strategies"`
	Simulations        int             `json:"simulations"`
	HandsPerSim        int             `json:"hands_per_sim"`
	Decks              int             `json:"decks,omitempty"`
	ReshuffleThreshold int             `json:"reshuffle_threshold,omitempty"`
	Seed               uint64          `json:"seed"`
	Strategy           strategy.Config `json:"strategy"`
}

// RuinStats is the per-strategy outcome of a ruin study.
type RuinStats struct {
	Strategy     string   `json:"strategy"`
	Simulations  int      `json:"simulations"`
	Ruined       int      `json:"ruined"`
	AvgRuinTime  *float64 `json:"avg_ruin_time,omitempty"`
	MinRuinTime  int      `json:"min_ruin_time,omitempty"`
	MaxRuinTime  int      `json:"max_ruin_time,omitempty"`
	AvgFinal     float64  `json:"avg_final_bankroll"`
	RuinFraction float64  `json:"ruin_fraction"`
}

// RuinStudy replays each strategy over fresh outcome sequences. Simulation k
// deals from a shoe seeded with ShardSeed(Seed, k). Average ruin time counts
// only ruined runs and is nil when none was ruined.
func RuinStudy(ctx context.Context, cfg RuinConfig) ([]RuinStats, error) {
	if cfg.Simulations <= 0 || cfg.HandsPerSim <= 0 {
		return nil, fmt.Errorf("%w: simulations and hands per simulation must be positive", ErrInvalidConfig)
	}
	shoeCfg := games.ShoeConfig{Decks: cfg.Decks, ReshuffleThreshold: cfg.ReshuffleThreshold}.WithDefaults()
	if err := shoeCfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = strategy.Names()
	}

	progs := make([]strategy.Progression, len(cfg.Strategies))
	for i, name := range cfg.Strategies {
		p, err := strategy.New(name, cfg.Strategy)
		if err != nil {
			return nil, err
		}
		progs[i] = p
	}

	stats := make([]RuinStats, len(progs))
	ruinSums := make([]int, len(progs))
	for i, p := range progs {
		stats[i] = RuinStats{Strategy: p.Name(), Simulations: cfg.Simulations}
	}

	for k := 0; k < cfg.Simulations; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		shoe, err := games.NewShoe(shoeCfg, engine.NewSeededSource(engine.ShardSeed(cfg.Seed, k)))
		if err != nil {
			return nil, err
		}
		outcomes, err := games.DealOutcomes(shoe, cfg.HandsPerSim)
		if err != nil {
			return nil, err
		}

		for i, p := range progs {
			res, err := strategy.Run(outcomes, cfg.Strategy, p)
			if err != nil {
				return nil, err
			}
			st := &stats[i]
			st.AvgFinal += res.Stats.FinalBankroll / float64(cfg.Simulations)
			t, ruined := strategy.RuinTime(res.Path)
			if !ruined {
				continue
			}
			st.Ruined++
			ruinSums[i] += t
			if st.MinRuinTime == 0 || t < st.MinRuinTime {
				st.MinRuinTime = t
			}
			if t > st.MaxRuinTime {
				st.MaxRuinTime = t
			}
		}
	}

	for i := range stats {
		st := &stats[i]
		st.RuinFraction = float64(st.Ruined) / float64(st.Simulations)
		if st.Ruined > 0 {
			avg := float64(ruinSums[i]) / float64(st.Ruined)
			st.AvgRuinTime = &avg
		}
	}
	return stats, nil
}
