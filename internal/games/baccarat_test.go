package games

import (
	"errors"
	"testing"

	"github.com/anamarijapotokar/Baccarat/internal/engine"
)

// stackDealer deals a fixed sequence front to back.
type stackDealer struct {
	cards       []Rank
	dealt       int
	checkpoints int
}

func (s *stackDealer) Draw() (Rank, error) {
	if s.dealt >= len(s.cards) {
		return 0, ErrEmptyShoe
	}
	c := s.cards[s.dealt]
	s.dealt++
	return c, nil
}

func (s *stackDealer) Checkpoint() bool {
	s.checkpoints++
	return false
}

// rankWithValue returns a rank whose point value is v.
func rankWithValue(v int) Rank {
	if v == 0 {
		return King
	}
	return Rank(v)
}

func TestResolveHandNatural(t *testing.T) {
	// Player 4+5 = 9, banker 2+3 = 5
	d := &stackDealer{cards: []Rank{Four, Five, Two, Three, Ace, Ace}}
	round, err := ResolveHand(d)
	if err != nil {
		t.Fatalf("ResolveHand failed: %v", err)
	}
	if !round.Natural {
		t.Error("expected a natural")
	}
	if round.PlayerDrew || round.BankerDrew {
		t.Error("no side may draw on a natural")
	}
	if round.Outcome != Player {
		t.Errorf("expected Player, got %s", round.Outcome)
	}
	if round.CardsUsed() != 4 {
		t.Errorf("expected 4 cards used, got %d", round.CardsUsed())
	}
	if d.checkpoints != 1 {
		t.Errorf("expected exactly one checkpoint, got %d", d.checkpoints)
	}
}

func TestNaturalPropertyExhaustive(t *testing.T) {
	for _, p1 := range Ranks {
		for _, p2 := range Ranks {
			for _, b1 := range Ranks {
				for _, b2 := range Ranks {
					d := &stackDealer{cards: []Rank{p1, p2, b1, b2, Nine, Nine}}
					round, err := ResolveHand(d)
					if err != nil {
						t.Fatal(err)
					}
					ps := HandValue([]Rank{p1, p2})
					bs := HandValue([]Rank{b1, b2})
					natural := IsNatural(ps) || IsNatural(bs)
					if round.Natural != natural {
						t.Fatalf("%v %v vs %v %v: natural=%v, expected %v", p1, p2, b1, b2, round.Natural, natural)
					}
					if natural {
						if round.CardsUsed() != 4 {
							t.Fatalf("%v %v vs %v %v: natural drew a third card", p1, p2, b1, b2)
						}
						if round.Outcome != Compare(ps, bs) {
							t.Fatalf("%v %v vs %v %v: expected %s, got %s", p1, p2, b1, b2, Compare(ps, bs), round.Outcome)
						}
						continue
					}
					if round.PlayerDrew != (ps <= 5) {
						t.Fatalf("player total %d: drew=%v", ps, round.PlayerDrew)
					}
					playerThird := 0
					if round.PlayerDrew {
						playerThird = Nine.Value()
					}
					if round.BankerDrew != BankerShouldDraw(bs, round.PlayerDrew, playerThird) {
						t.Fatalf("banker total %d, player drew %v third %d: drew=%v", bs, round.PlayerDrew, playerThird, round.BankerDrew)
					}
				}
			}
		}
	}
}

func TestBankerTableauExhaustive(t *testing.T) {
	// drawsWhen[bankerTotal] lists player third-card values on which the banker draws.
	drawsWhen := map[int][]int{
		0: {0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		1: {0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		2: {0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		3: {0, 1, 2, 3, 4, 5, 6, 7, 9},
		4: {2, 3, 4, 5, 6, 7},
		5: {4, 5, 6, 7},
		6: {6, 7},
		7: {},
	}

	for banker := 0; banker <= 7; banker++ {
		set := map[int]bool{}
		for _, v := range drawsWhen[banker] {
			set[v] = true
		}
		for third := 0; third <= 9; third++ {
			if got := BankerShouldDraw(banker, true, third); got != set[third] {
				t.Errorf("banker %d, player third %d: expected draw=%v, got %v", banker, third, set[third], got)
			}
		}

		standDraw := banker <= 5
		if got := BankerShouldDraw(banker, false, 0); got != standDraw {
			t.Errorf("banker %d, player stood: expected draw=%v, got %v", banker, standDraw, got)
		}
	}
}

func TestResolveHandBankerUsesPlayerThird(t *testing.T) {
	tests := []struct {
		name        string
		bankerTotal int
		playerThird int
		bankerDraws bool
	}{
		{"banker 3 player 8", 3, 8, false},
		{"banker 3 player 7", 3, 7, true},
		{"banker 4 player 1", 4, 1, false},
		{"banker 5 player 4", 5, 4, true},
		{"banker 6 player 6", 6, 6, true},
		{"banker 6 player 5", 6, 5, false},
		{"banker 7 player 7", 7, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Player Ten+Two = 2 draws; banker Ten+total
			cards := []Rank{Ten, Two, Ten, rankWithValue(tt.bankerTotal), rankWithValue(tt.playerThird), Ace}
			round, err := ResolveHand(&stackDealer{cards: cards})
			if err != nil {
				t.Fatal(err)
			}
			if !round.PlayerDrew {
				t.Fatal("player on 2 must draw")
			}
			if round.BankerDrew != tt.bankerDraws {
				t.Errorf("expected banker draw=%v, got %v", tt.bankerDraws, round.BankerDrew)
			}
			third, ok := round.Player.Third()
			if !ok || third.Value() != tt.playerThird {
				t.Errorf("expected player third value %d, got %v", tt.playerThird, third)
			}
		})
	}
}

func TestResolveHandPlayerStands(t *testing.T) {
	// Player 6 stands, banker 5 draws, banker 7 stands
	for _, tt := range []struct {
		banker Rank
		draws  bool
	}{{Five, true}, {Six, false}, {Seven, false}} {
		round, err := ResolveHand(&stackDealer{cards: []Rank{Ten, Six, Ten, tt.banker, Ace, Ace}})
		if err != nil {
			t.Fatal(err)
		}
		if round.PlayerDrew {
			t.Error("player on 6 must stand")
		}
		if round.BankerDrew != tt.draws {
			t.Errorf("banker %s: expected draw=%v, got %v", tt.banker, tt.draws, round.BankerDrew)
		}
	}
}

func TestResolveHandAlwaysTerminates(t *testing.T) {
	shoe, _ := NewShoe(ShoeConfig{}, engine.NewSeededSource(123))
	for i := 0; i < 20000; i++ {
		before := shoe.Remaining()
		round, err := ResolveHand(shoe)
		if err != nil {
			t.Fatalf("hand %d: %v", i, err)
		}
		if !round.Outcome.Valid() {
			t.Fatalf("hand %d: invalid outcome %d", i, round.Outcome)
		}
		used := round.CardsUsed()
		if used < 4 || used > 6 {
			t.Fatalf("hand %d: used %d cards", i, used)
		}
		if before >= shoe.Threshold() && shoe.Remaining() != before-used {
			t.Fatalf("hand %d: shoe shrank by %d, round used %d", i, before-shoe.Remaining(), used)
		}
		if round.Outcome != Compare(round.Player.Value(), round.Banker.Value()) {
			t.Fatalf("hand %d: outcome does not match totals", i)
		}
	}
	if shoe.Shuffles() < 2 {
		t.Error("expected the shoe to be rebuilt at least once")
	}
}

func TestResolveHandEmptyShoe(t *testing.T) {
	_, err := ResolveHand(&stackDealer{cards: []Rank{Ace, Two}})
	if !errors.Is(err, ErrEmptyShoe) {
		t.Errorf("expected ErrEmptyShoe, got %v", err)
	}
}

func TestResolveCountedSnapshotBeforeDeal(t *testing.T) {
	cs, _ := NewCountingShoe(CountingConfig{Weights: OddGood}, engine.NewSeededSource(31))
	for i := 0; i < 500; i++ {
		expected := cs.RunningCount()
		remaining := cs.Remaining()
		if remaining < cs.Threshold() {
			expected = 0
			remaining = cs.Decks() * CardsPerDeck
		}
		_, snap, err := ResolveCounted(cs)
		if err != nil {
			t.Fatal(err)
		}
		if snap.RunningCount != expected || snap.Remaining != remaining {
			t.Fatalf("hand %d: snapshot %+v, expected count %d remaining %d", i, snap, expected, remaining)
		}
	}
}

func TestDealOutcomes(t *testing.T) {
	shoe, _ := NewShoe(ShoeConfig{}, engine.NewSeededSource(9))
	outcomes, err := DealOutcomes(shoe, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 1000 {
		t.Fatalf("expected 1000 outcomes, got %d", len(outcomes))
	}
	for i, o := range outcomes {
		if !o.Valid() {
			t.Fatalf("outcome %d invalid", i)
		}
	}
}

func TestParseOutcome(t *testing.T) {
	for _, o := range Outcomes {
		parsed, err := ParseOutcome(o.String())
		if err != nil || parsed != o {
			t.Errorf("ParseOutcome(%s): got %v (%v)", o, parsed, err)
		}
	}
	if _, err := ParseOutcome("dragon"); !errors.Is(err, ErrInvalidOutcome) {
		t.Errorf("expected ErrInvalidOutcome, got %v", err)
	}
}

func BenchmarkResolveHand(b *testing.B) {
	shoe, _ := NewShoe(ShoeConfig{}, engine.NewSeededSource(1))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ResolveHand(shoe); err != nil {
			b.Fatal(err)
		}
	}
}
