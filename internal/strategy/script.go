package strategy

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// LogEntry is one message written by a script with log() or console.log().
type LogEntry struct {
	Hand    int    `json:"hand"`
	Message string `json:"message"`
}

const (
	scriptInitTimeout = 2 * time.Second
	scriptCallTimeout = 100 * time.Millisecond
	scriptMaxLogs     = 200
)

// Script is a progression written in JavaScript. The source must define
//
//	function nextbet(current, won, bankroll, base) { ... }
//
// returning the next stake. The globals basebet, maxbet, unit and
// initialbankroll hold the config values. A Script owns a goja runtime and
// must not be shared between goroutines.
type Script struct {
	runtime *goja.Runtime
	fn      goja.Callable
	timeout time.Duration
	calls   int

	logsMu sync.Mutex
	logs   []LogEntry
}

// NewScript compiles source in a sandboxed runtime.
func NewScript(source string, cfg Config) (*Script, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("%w: empty source", ErrScript)
	}

	s := &Script{
		runtime: goja.New(),
		timeout: scriptCallTimeout,
	}
	s.injectGlobals(cfg)

	err := s.withTimeout(scriptInitTimeout, func() error {
		_, err := s.runtime.RunString(source)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}

	fn, ok := goja.AssertFunction(s.runtime.Get("nextbet"))
	if !ok {
		return nil, fmt.Errorf("%w: nextbet() is not defined", ErrScript)
	}
	s.fn = fn
	return s, nil
}

func (s *Script) injectGlobals(cfg Config) {
	rt := s.runtime

	rt.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		s.logsMu.Lock()
		if len(s.logs) >= scriptMaxLogs {
			s.logs = s.logs[1:]
		}
		s.logs = append(s.logs, LogEntry{Hand: s.calls, Message: strings.Join(parts, " ")})
		s.logsMu.Unlock()
		return goja.Undefined()
	})
	console := rt.NewObject()
	console.Set("log", rt.Get("log"))
	rt.Set("console", console)

	rt.Set("basebet", cfg.BaseBet)
	rt.Set("maxbet", cfg.MaxBet)
	rt.Set("unit", cfg.Unit)
	rt.Set("initialbankroll", cfg.InitialBankroll)

	// Sandbox
	rt.Set("require", goja.Undefined())
	rt.Set("fetch", goja.Undefined())
	rt.Set("eval", goja.Undefined())
	rt.Set("Function", goja.Undefined())
}

func (s *Script) Name() string { return "script" }

// Next calls nextbet(). A non-numeric, non-finite or non-positive result is an error.
func (s *Script) Next(current float64, won bool, bankroll float64) (float64, error) {
	s.calls++
	var out goja.Value
	err := s.withTimeout(s.timeout, func() error {
		v, err := s.fn(goja.Undefined(),
			s.runtime.ToValue(current),
			s.runtime.ToValue(won),
			s.runtime.ToValue(bankroll),
			s.runtime.Get("basebet"),
		)
		out = v
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%w: nextbet(): %v", ErrScript, err)
	}
	if out == nil || goja.IsUndefined(out) || goja.IsNull(out) {
		return 0, fmt.Errorf("%w: nextbet() returned nothing", ErrScript)
	}
	stake := out.ToFloat()
	if math.IsNaN(stake) || math.IsInf(stake, 0) || stake <= 0 {
		return 0, fmt.Errorf("%w: nextbet() returned %v", ErrScript, out)
	}
	return stake, nil
}

// Logs returns a copy of the log buffer.
func (s *Script) Logs() []LogEntry {
	s.logsMu.Lock()
	defer s.logsMu.Unlock()
	out := make([]LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

// withTimeout interrupts the runtime if fn runs longer than timeout.
func (s *Script) withTimeout(timeout time.Duration, fn func() error) error {
	fired := make(chan struct{})
	timer := time.AfterFunc(timeout, func() {
		s.runtime.Interrupt("script execution timeout")
		close(fired)
	})
	err := fn()
	if !timer.Stop() {
		// The interrupt must land before it is cleared or it leaks into the next call.
		<-fired
		s.runtime.ClearInterrupt()
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("timed out after %s", timeout)
	}
	return err
}
