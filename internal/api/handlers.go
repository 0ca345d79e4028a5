package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anamarijapotokar/Baccarat/internal/engine"
	"github.com/anamarijapotokar/Baccarat/internal/games"
	"github.com/anamarijapotokar/Baccarat/internal/sim"
	"github.com/anamarijapotokar/Baccarat/internal/store"
	"github.com/anamarijapotokar/Baccarat/internal/strategy"
)

// persistTimeout bounds writes made after a simulation finished, which may
// be after the request context expired.
const persistTimeout = 10 * time.Second

func persistContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
}

func newSimulationResponse(res *sim.Result) *SimulationResponse {
	return &SimulationResponse{
		Result: res,
		SharesPct: SharesPct{
			Banker: res.Shares.Percent(games.Banker),
			Player: res.Shares.Percent(games.Player),
			Tie:    res.Shares.Percent(games.Tie),
		},
		EngineVersion: EngineVersion,
	}
}

func (s *Server) logSimulationRequest(r *http.Request, cfg sim.Config) {
	serverHash := ""
	if cfg.Fair != nil {
		serverHash = hashSeed(cfg.Fair.Server)
	}
	s.logger.Printf(
		"simulation_request request_id=%s hands=%d system=%q signal=%s target=%s seed=%d fair=%t server_hash=%s timeout_ms=%d",
		middleware.GetReqID(r.Context()), cfg.Hands, cfg.System, cfg.Signal, cfg.Target, cfg.Seed, cfg.Fair != nil, serverHash, cfg.TimeoutMs,
	)
}

// handleSimulation runs a binned simulation and stores it.
func (s *Server) handleSimulation(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON: "+err.Error())
		return
	}

	cfg, err := s.prepareSimConfig(req.Config)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.logSimulationRequest(r, cfg)

	res, err := s.simulator().Run(r.Context(), cfg)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	resp := newSimulationResponse(res)
	if s.shouldPersist(req.Persist) {
		ctx, cancel := persistContext(r.Context())
		defer cancel()
		id, err := s.saveResult(ctx, store.KindBinned, res)
		if err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		resp.RunID = id
	}

	s.logger.Printf(
		"simulation_completed run_id=%s played=%d recorded=%d bins=%d exploitable=%t timed_out=%t elapsed_ms=%d",
		resp.RunID, res.Played, res.Recorded, len(res.Bins), res.Analysis.Exploitable, res.TimedOut, res.ElapsedMs,
	)

	s.writeJSON(w, http.StatusOK, resp)
}

// handleCompare runs one config under each requested counting system.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON: "+err.Error())
		return
	}

	cfg, systems, err := s.prepareCompareConfig(req)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.logSimulationRequest(r, cfg)

	summaries, err := s.simulator().CompareSystems(r.Context(), cfg, systems)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	resp := CompareResponse{Systems: summaries, EngineVersion: EngineVersion}
	if s.shouldPersist(req.Persist) {
		ctx, cancel := persistContext(r.Context())
		defer cancel()
		resp.RunIDs = make(map[string]string, len(summaries))
		for _, sum := range summaries {
			id, err := s.saveResult(ctx, store.KindCompare, sum.Result)
			if err != nil {
				s.errorHandler.HandleError(w, r, err)
				return
			}
			resp.RunIDs[sum.System] = id
		}
	}
	if !req.IncludeResults {
		for i := range resp.Systems {
			resp.Systems[i].Result = nil
		}
	}

	s.logger.Printf("compare_completed systems=%d hands=%d", len(summaries), cfg.Hands)
	s.writeJSON(w, http.StatusOK, resp)
}

// handleListSystems returns counting systems, progressions and signals.
func (s *Server) handleListSystems(w http.ResponseWriter, r *http.Request) {
	names := games.SystemNames()
	systems := make([]CountingSystem, 0, len(names))
	for _, name := range names {
		weights, _ := games.LookupSystem(name)
		systems = append(systems, CountingSystem{
			Name:    name,
			Weights: weights.Symbols(),
			Balance: weights.Balance(),
		})
	}

	s.writeJSON(w, http.StatusOK, SystemsResponse{
		Systems:       systems,
		Strategies:    strategy.Names(),
		Signals:       []sim.Signal{sim.SignalTrueCount, sim.SignalRunningCount},
		EngineVersion: EngineVersion,
	})
}

// dealOutcomes resolves req.Hands hands from a fresh shoe.
func (s *Server) dealOutcomes(req StrategyRequest) ([]games.Outcome, error) {
	var src engine.Source = engine.NewSeededSource(req.Seed)
	if req.Fair != nil {
		src = engine.NewFairSource(req.Fair.Seeds, req.Fair.Nonce)
	}

	shoeCfg := games.ShoeConfig{Decks: req.Decks, ReshuffleThreshold: req.ReshuffleThreshold}
	if shoeCfg.Decks == 0 {
		shoeCfg.Decks = s.cfg.Decks
	}
	if shoeCfg.ReshuffleThreshold == 0 {
		shoeCfg.ReshuffleThreshold = s.cfg.ReshuffleThreshold
	}
	shoe, err := games.NewShoe(shoeCfg, src)
	if err != nil {
		return nil, err
	}
	return games.DealOutcomes(shoe, req.Hands)
}

// handleStrategy plays one progression and reports its path statistics.
func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	var req StrategyRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON: "+err.Error())
		return
	}

	p, script, err := s.prepareStrategy(&req)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	outcomes := req.Outcomes
	if len(outcomes) == 0 {
		if outcomes, err = s.dealOutcomes(req); err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
	}

	res, err := strategy.Run(outcomes, req.Config, p)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	resp := StrategyResponse{
		Strategy:      res.Strategy,
		Config:        res.Config,
		Hands:         len(outcomes),
		Stats:         res.Stats,
		ROI:           res.Stats.ROI(),
		EngineVersion: EngineVersion,
	}
	if t, ruined := strategy.RuinTime(res.Path); ruined {
		resp.RuinTime = &t
	}
	if req.IncludePath {
		resp.Path = res.Path
		if req.TruncateAtRuin {
			resp.Path = strategy.TruncateAtRuin(res.Path)
		}
	}
	for _, o := range outcomes {
		resp.Shares.Add(o)
	}
	if script != nil {
		resp.Logs = script.Logs()
	}

	s.logger.Printf(
		"strategy_completed strategy=%s hands=%d final_bankroll=%.2f ruined=%t highest_bet=%.2f",
		res.Strategy, len(outcomes), res.Stats.FinalBankroll, res.Stats.Ruined, res.Stats.HighestBet,
	)

	s.writeJSON(w, http.StatusOK, resp)
}

// handleRuin runs a ruin study across progressions and stores it.
func (s *Server) handleRuin(w http.ResponseWriter, r *http.Request) {
	var req RuinRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON: "+err.Error())
		return
	}

	cfg, err := s.prepareRuin(req.RuinConfig)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	start := time.Now()
	stats, err := sim.RuinStudy(r.Context(), cfg)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	elapsed := time.Since(start).Milliseconds()

	resp := RuinResponse{Stats: stats, EngineVersion: EngineVersion}
	if s.shouldPersist(req.Persist) {
		ctx, cancel := persistContext(r.Context())
		defer cancel()
		id, err := s.saveRuin(ctx, cfg, stats, elapsed)
		if err != nil {
			s.errorHandler.HandleError(w, r, err)
			return
		}
		resp.RunID = id
	}

	s.logger.Printf("ruin_completed run_id=%s strategies=%d simulations=%d hands_per_sim=%d elapsed_ms=%d",
		resp.RunID, len(stats), cfg.Simulations, cfg.HandsPerSim, elapsed)

	s.writeJSON(w, http.StatusOK, resp)
}

// handleSettle settles one stake against an outcome.
func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.errorHandler.HandleValidationError(w, r, "body", "invalid JSON: "+err.Error())
		return
	}

	bet, commission, err := s.prepareSettle(&req)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	profit, err := games.Settle(req.Outcome, bet, req.Stake, commission)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	payout, err := games.Payout(bet, commission)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, SettleResponse{
		Profit:        profit,
		Payout:        payout,
		Echo:          req,
		EngineVersion: EngineVersion,
	})
}

// handleListRuns lists stored runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorHandler.HandleUnavailable(w, r, "database")
		return
	}

	q := r.URL.Query()
	query := store.RunsQuery{Kind: q.Get("kind"), System: q.Get("system")}
	for field, dst := range map[string]*int{"page": &query.Page, "per_page": &query.PerPage} {
		raw := q.Get(field)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.errorHandler.HandleValidationError(w, r, field, field+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	list, err := s.db.ListRuns(r.Context(), query)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

// handleGetRun returns one stored run with its bins or ruin lines.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorHandler.HandleUnavailable(w, r, "database")
		return
	}

	id := chi.URLParam(r, "id")
	run, err := s.db.GetRun(r.Context(), id)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	detail := RunDetail{Run: *run}
	if run.Kind == store.KindRuin {
		detail.Ruin, err = s.db.GetRuinStats(r.Context(), id)
	} else {
		detail.Bins, err = s.db.GetBins(r.Context(), id)
	}
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, detail)
}
