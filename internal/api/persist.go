package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anamarijapotokar/Baccarat/internal/sim"
	"github.com/anamarijapotokar/Baccarat/internal/store"
)

// customSystem labels runs that supplied their own weights.
const customSystem = "custom"

func (s *Server) shouldPersist(flag *bool) bool {
	if s.db == nil {
		return false
	}
	return flag == nil || *flag
}

// redactedConfig drops the raw server seed before a config is stored.
func redactedConfig(cfg sim.Config) sim.Config {
	if cfg.Fair != nil {
		fair := *cfg.Fair
		fair.Server = ""
		cfg.Fair = &fair
	}
	return cfg
}

func runRecord(kind string, res *sim.Result) (*store.Run, error) {
	cfg := res.Config
	raw, err := json.Marshal(redactedConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}

	system := cfg.System
	if system == "" {
		system = customSystem
	}
	run := &store.Run{
		Kind:               kind,
		System:             system,
		Signal:             string(cfg.Signal),
		Target:             cfg.Target.String(),
		Hands:              cfg.Hands,
		Played:             res.Played,
		Recorded:           res.Recorded,
		Decks:              cfg.Decks,
		ReshuffleThreshold: cfg.ReshuffleThreshold,
		Seed:               cfg.Seed,
		ConfigJSON:         string(raw),
		Banker:             res.Shares.Banker,
		Player:             res.Shares.Player,
		Tie:                res.Shares.Tie,
		TimedOut:           res.TimedOut,
		Exploitable:        res.Analysis.Exploitable,
		ElapsedMs:          res.ElapsedMs,
		EngineVersion:      EngineVersion,
	}
	if cfg.Fair != nil {
		run.ServerSeedHash = cfg.Fair.ServerHash()
		run.ClientSeed = cfg.Fair.Client
		run.Nonce = cfg.Fair.Nonce
	}
	return run, nil
}

func runBins(bins []sim.BinStats) []store.RunBin {
	out := make([]store.RunBin, len(bins))
	for i, b := range bins {
		out[i] = store.RunBin{
			Index:   b.Index,
			Left:    b.Left,
			Right:   b.Right,
			Hands:   b.Hands,
			Hits:    b.Hits,
			PHat:    b.PHat,
			CILower: b.CILower,
			CIUpper: b.CIUpper,
			EV:      b.EV,
			Kelly:   b.Kelly,
		}
	}
	return out
}

// saveResult stores a binned run and its bins, returning the run id.
func (s *Server) saveResult(ctx context.Context, kind string, res *sim.Result) (string, error) {
	run, err := runRecord(kind, res)
	if err != nil {
		return "", err
	}
	if err := s.db.SaveRun(ctx, run); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	if err := s.db.SaveBins(ctx, run.ID, runBins(res.Bins)); err != nil {
		return "", fmt.Errorf("save bins: %w", err)
	}
	return run.ID, nil
}

// saveRuin stores a ruin study as one run with a line per strategy.
func (s *Server) saveRuin(ctx context.Context, cfg sim.RuinConfig, stats []sim.RuinStats, elapsedMs int64) (string, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	hands := int64(cfg.Simulations) * int64(cfg.HandsPerSim)
	run := &store.Run{
		Kind:          store.KindRuin,
		Target:        string(cfg.Strategy.Bet),
		Hands:         hands,
		Played:        hands,
		Decks:         cfg.Decks,
		Seed:          cfg.Seed,
		ConfigJSON:    string(raw),
		ElapsedMs:     elapsedMs,
		EngineVersion: EngineVersion,
	}
	if err := s.db.SaveRun(ctx, run); err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}

	rows := make([]store.RuinRow, len(stats))
	for i, st := range stats {
		rows[i] = store.RuinRow{
			Strategy:    st.Strategy,
			Simulations: st.Simulations,
			Ruined:      st.Ruined,
			AvgRuinTime: st.AvgRuinTime,
			MinRuinTime: st.MinRuinTime,
			MaxRuinTime: st.MaxRuinTime,
			AvgFinal:    st.AvgFinal,
		}
	}
	if err := s.db.SaveRuinStats(ctx, run.ID, rows); err != nil {
		return "", fmt.Errorf("save ruin stats: %w", err)
	}
	return run.ID, nil
}
