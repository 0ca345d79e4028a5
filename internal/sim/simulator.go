package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/anamarijapotokar/Baccarat/internal/engine"
	"github.com/anamarijapotokar/Baccarat/internal/games"
)

const (
	// progressChunk is how many hands a shard plays between progress reports.
	progressChunk = 50_000

	// DefaultHandsPerHour is a typical live table pace.
	DefaultHandsPerHour = 60
)

// FairSeeds shuffles every shard from the provably-fair stream. Shard i uses Nonce+i.
type FairSeeds struct {
	engine.Seeds
	Nonce uint64 `json:"nonce"`
}

// Config describes one binned simulation run.
type Config struct {
	Hands int64 `json:"hands"`

	Decks              int     `json:"decks,omitempty"`
	ReshuffleThreshold int     `json:"reshuffle_threshold,omitempty"`
	MinDecksFloor      float64 `json:"min_decks_floor,omitempty"`

	// System names a built-in counting system. Weights is used when System is empty;
	// with neither the count stays at zero.
	System  string        `json:"system,omitempty"`
	Weights games.Weights `json:"weights,omitempty"`

	Signal     Signal        `json:"signal"`
	Bins       BinConfig     `json:"bins"`
	Target     games.Outcome `json:"target"`
	Commission float64       `json:"commission,omitempty"`
	Confidence float64       `json:"confidence,omitempty"`

	Seed    uint64     `json:"seed"`
	Fair    *FairSeeds `json:"fair,omitempty"`
	Workers int        `json:"workers,omitempty"`

	TimeoutMs    int `json:"timeout_ms,omitempty"`
	HandsPerHour int `json:"hands_per_hour,omitempty"`
}

// WithDefaults fills zero fields.
func (c Config) WithDefaults() Config {
	if c.Decks == 0 {
		c.Decks = games.DefaultDecks
	}
	if c.ReshuffleThreshold == 0 {
		c.ReshuffleThreshold = games.DefaultReshuffleThreshold
	}
	if c.MinDecksFloor == 0 {
		c.MinDecksFloor = games.DefaultMinDecksFloor
	}
	if sig, err := ParseSignal(string(c.Signal)); err == nil {
		c.Signal = sig
	}
	if c.Bins == (BinConfig{}) {
		c.Bins = c.Signal.DefaultBins()
	}
	if c.Target == 0 {
		c.Target = games.Tie
	}
	if c.Commission == 0 {
		c.Commission = games.DefaultCommission
	}
	if c.Confidence == 0 {
		c.Confidence = 0.95
	}
	if c.HandsPerHour == 0 {
		c.HandsPerHour = DefaultHandsPerHour
	}
	return c
}

// Validate checks a defaulted config. Every check happens here, before any hand is played.
func (c Config) Validate() error {
	if c.Hands <= 0 {
		return fmt.Errorf("%w: hands must be positive, got %d", ErrInvalidConfig, c.Hands)
	}
	if err := c.countingConfig().ShoeConfig.Validate(); err != nil {
		return err
	}
	if c.MinDecksFloor < 0 {
		return fmt.Errorf("%w: %v", games.ErrInvalidFloor, c.MinDecksFloor)
	}
	if _, err := ParseSignal(string(c.Signal)); err != nil {
		return err
	}
	if err := c.Bins.Validate(); err != nil {
		return err
	}
	if !c.Target.Valid() {
		return fmt.Errorf("%w: target %v", games.ErrInvalidOutcome, c.Target)
	}
	if !(c.Commission >= 0 && c.Commission < 1) {
		return fmt.Errorf("%w: %v", games.ErrInvalidCommission, c.Commission)
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return fmt.Errorf("%w: confidence must be in (0,1), got %v", ErrInvalidConfig, c.Confidence)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.TimeoutMs < 0 || c.HandsPerHour < 0 {
		return fmt.Errorf("%w: timeout and hands per hour must not be negative", ErrInvalidConfig)
	}
	if c.System != "" {
		if _, ok := games.LookupSystem(c.System); !ok {
			return fmt.Errorf("%w: unknown counting system %q", ErrInvalidConfig, c.System)
		}
	}
	return nil
}

// ResolvedWeights returns the named system's weights, or Weights.
func (c Config) ResolvedWeights() games.Weights {
	if c.System != "" {
		if w, ok := games.LookupSystem(c.System); ok {
			return w
		}
	}
	return c.Weights.Clone()
}

func (c Config) countingConfig() games.CountingConfig {
	return games.CountingConfig{
		ShoeConfig: games.ShoeConfig{
			Decks:              c.Decks,
			ReshuffleThreshold: c.ReshuffleThreshold,
		},
		Weights:       c.ResolvedWeights(),
		MinDecksFloor: c.MinDecksFloor,
	}
}

func (c Config) source(shard int) engine.Source {
	if c.Fair != nil {
		return engine.NewFairSource(c.Fair.Seeds, c.Fair.Nonce+uint64(shard))
	}
	return engine.NewSeededSource(engine.ShardSeed(c.Seed, shard))
}

// Payout is b in b:1 for a bet on the target outcome.
func (c Config) Payout() float64 {
	var bet games.BetType
	switch c.Target {
	case games.Player:
		bet = games.BetPlayer
	case games.Banker:
		bet = games.BetBanker
	default:
		bet = games.BetTie
	}
	p, _ := games.Payout(bet, c.Commission)
	return p
}

// Result is the merged outcome of a run.
type Result struct {
	Config    Config     `json:"config"`
	Bins      []BinStats `json:"bins"`
	Shares    Shares     `json:"shares"`
	Played    int64      `json:"played"`
	Recorded  int64      `json:"recorded"`
	Shuffles  int        `json:"shuffles"`
	Workers   int        `json:"workers"`
	TimedOut  bool       `json:"timed_out,omitempty"`
	ElapsedMs int64      `json:"elapsed_ms"`
	Analysis  Analysis   `json:"analysis"`

	// Raw merged counts, kept so results can be persisted and recombined.
	Counts []Bin `json:"-"`
}

// Progress is reported after each chunk a shard completes.
type Progress struct {
	Shard      int   `json:"shard"`
	ShardDone  int64 `json:"shard_done"`
	ShardHands int64 `json:"shard_hands"`
	Done       int64 `json:"done"`
	Total      int64 `json:"total"`
}

// Simulator runs sharded binned simulations.
type Simulator struct {
	workers  int
	logger   *log.Logger
	progress func(Progress)
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithWorkers sets the shard count used when Config.Workers is zero.
func WithWorkers(n int) Option {
	return func(s *Simulator) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithProgress registers a callback. It is called from shard goroutines
// concurrently and must be safe for that.
func WithProgress(fn func(Progress)) Option {
	return func(s *Simulator) { s.progress = fn }
}

// NewSimulator defaults to one shard per CPU and a discarding logger.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		workers: runtime.GOMAXPROCS(0),
		logger:  log.New(io.Discard, "[SIM] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type shard struct {
	cs       *games.CountingShoe
	agg      *Aggregator
	shares   Shares
	played   int64
	shuffles int
}

// Run validates cfg, plays cfg.Hands split across shards and merges them.
// Each shard owns its own counting shoe and aggregator. When the deadline
// (ctx or cfg.TimeoutMs) passes, the hands played so far are returned with
// TimedOut set. Cancellation returns ctx.Err().
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = s.workers
	}
	if int64(workers) > cfg.Hands {
		workers = int(cfg.Hands)
	}
	if workers < 1 {
		workers = 1
	}

	shards := make([]*shard, workers)
	for i := range shards {
		cs, err := games.NewCountingShoe(cfg.countingConfig(), cfg.source(i))
		if err != nil {
			return nil, err
		}
		agg, err := NewAggregator(cfg.Bins, cfg.Target)
		if err != nil {
			return nil, err
		}
		shards[i] = &shard{cs: cs, agg: agg}
	}

	s.logger.Printf("sim_start hands=%s workers=%d system=%q signal=%s target=%s seed=%d",
		humanize.Comma(cfg.Hands), workers, cfg.System, cfg.Signal, cfg.Target, cfg.Seed)

	start := time.Now()
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for i := range shards {
		i := i
		sh := shards[i]
		hands := cfg.Hands / int64(workers)
		if int64(i) < cfg.Hands%int64(workers) {
			hands++
		}

		g.Go(func() error {
			defer func() { sh.shuffles = sh.cs.Shuffles() }()

			for sh.played < hands {
				chunk := min(int64(progressChunk), hands-sh.played)
				shares, err := Drive(gctx, sh.cs, sh.agg, chunk, cfg.Signal)
				sh.shares.Merge(shares)
				sh.played += shares.Total()
				total := done.Add(shares.Total())
				if err != nil {
					return err
				}
				if s.progress != nil {
					s.progress(Progress{
						Shard:      i,
						ShardDone:  sh.played,
						ShardHands: hands,
						Done:       total,
						Total:      cfg.Hands,
					})
				}
			}
			return nil
		})
	}

	timedOut := false
	if err := g.Wait(); err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			timedOut = true
		case errors.Is(err, context.Canceled):
			return nil, err
		default:
			return nil, fmt.Errorf("simulation: %w", err)
		}
	}

	merged := shards[0].agg
	res := &Result{Config: cfg, Workers: workers, TimedOut: timedOut}
	for i, sh := range shards {
		if i > 0 {
			if err := merged.Merge(sh.agg); err != nil {
				return nil, err
			}
		}
		res.Shares.Merge(sh.shares)
		res.Played += sh.played
		res.Shuffles += sh.shuffles
	}

	res.Counts = merged.Bins()
	res.Recorded = merged.Recorded()
	res.Bins = ComputeStats(cfg.Bins, res.Counts, cfg.Payout(), ZScore(cfg.Confidence))
	res.Analysis = Analyze(res.Bins, cfg.HandsPerHour)
	res.ElapsedMs = time.Since(start).Milliseconds()

	s.logger.Printf("sim_complete played=%s recorded=%s bins=%d banker=%.2f%% player=%.2f%% tie=%.2f%% timed_out=%v duration=%s",
		humanize.Comma(res.Played), humanize.Comma(res.Recorded), len(res.Bins),
		res.Shares.Percent(games.Banker), res.Shares.Percent(games.Player), res.Shares.Percent(games.Tie),
		timedOut, time.Since(start).Round(time.Millisecond))

	return res, nil
}

// RunBinnedSimulation is the single-call entry point: a true-count run on a
// single shard seeded with 0, using weights, a bin width and [minSignal, maxSignal).
func RunBinnedSimulation(ctx context.Context, hands int64, decks int, weights games.Weights, width, minSignal, maxSignal float64, target games.Outcome) ([]BinStats, error) {
	bins := BinConfig{Width: width, Min: minSignal, Max: maxSignal}
	if err := bins.Validate(); err != nil {
		return nil, err
	}
	res, err := NewSimulator().Run(ctx, Config{
		Hands:   hands,
		Decks:   decks,
		Weights: weights,
		Signal:  SignalTrueCount,
		Bins:    bins,
		Target:  target,
		Workers: 1,
	})
	if err != nil {
		return nil, err
	}
	return res.Bins, nil
}
