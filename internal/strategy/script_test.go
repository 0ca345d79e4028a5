package strategy

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anamarijapotokar/Baccarat/internal/games"
)

func TestScriptMatchesMartingale(t *testing.T) {
	cfg := playerCfg(200, 1)
	script, err := NewScript(`
		function nextbet(current, won, bankroll, base) {
			if (won) return base;
			return Math.min(current * 2, bankroll);
		}
	`, cfg)
	if err != nil {
		t.Fatalf("NewScript failed: %v", err)
	}

	outcomes := dealt(t, 21, 5000)
	scripted, err := Simulate(outcomes, cfg, script)
	if err != nil {
		t.Fatal(err)
	}
	builtin, err := SimulateMartingale(outcomes, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for i := range builtin {
		if scripted[i] != builtin[i] {
			t.Fatalf("hand %d: script %v, martingale %v", i+1, scripted[i], builtin[i])
		}
	}
}

func TestScriptGlobalsAndLog(t *testing.T) {
	script, err := NewScript(`
		var nextbet = function(current, won) {
			console.log("won", won);
			return won ? maxbet : basebet;
		};
	`, Config{InitialBankroll: 50, BaseBet: 2, MaxBet: 5, Bet: games.BetPlayer})
	if err != nil {
		t.Fatal(err)
	}
	stake, err := script.Next(2, true, 52)
	if err != nil || stake != 5 {
		t.Fatalf("expected 5, got %v (%v)", stake, err)
	}
	logs := script.Logs()
	if len(logs) != 1 || logs[0].Message != "won true" || logs[0].Hand != 1 {
		t.Errorf("unexpected logs %+v", logs)
	}
}

func TestScriptErrors(t *testing.T) {
	cfg := playerCfg(10, 1)
	tests := []struct {
		name   string
		source string
	}{
		{"empty", "   "},
		{"syntax", "function nextbet( {"},
		{"missing nextbet", "var x = 1;"},
		{"require blocked", "require('fs'); function nextbet() { return 1 }"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewScript(tt.source, cfg); !errors.Is(err, ErrScript) {
				t.Errorf("expected ErrScript, got %v", err)
			}
		})
	}
}

func TestScriptBadStake(t *testing.T) {
	for _, body := range []string{"return 0", "return -1", "return 'abc'", "return undefined", "throw new Error('boom')"} {
		script, err := NewScript("function nextbet() { "+body+" }", playerCfg(10, 1))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := script.Next(1, false, 9); !errors.Is(err, ErrScript) {
			t.Errorf("%s: expected ErrScript, got %v", body, err)
		}
	}
}

func TestScriptTimeout(t *testing.T) {
	script, err := NewScript("function nextbet() { while (true) {} }", playerCfg(10, 1))
	if err != nil {
		t.Fatal(err)
	}
	_, err = script.Next(1, false, 9)
	if !errors.Is(err, ErrScript) || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
	// The runtime stays usable after an interrupt.
	if _, err := script.Next(1, false, 9); err == nil {
		t.Error("expected the looping script to time out again")
	}
}

func TestScriptRecoversAfterTimeout(t *testing.T) {
	src := "function nextbet(current, won) { if (won) { while (true) {} } return basebet; }"
	script, err := NewScript(src, playerCfg(10, 1))
	if err != nil {
		t.Fatal(err)
	}
	script.timeout = 5 * time.Millisecond

	for i := 0; i < 20; i++ {
		if _, err := script.Next(1, true, 9); !errors.Is(err, ErrScript) {
			t.Fatalf("round %d: expected timeout, got %v", i, err)
		}
		stake, err := script.Next(1, false, 9)
		if err != nil {
			t.Fatalf("round %d: call after timeout failed: %v", i, err)
		}
		if stake != 1 {
			t.Errorf("round %d: expected stake 1, got %v", i, stake)
		}
	}
}
