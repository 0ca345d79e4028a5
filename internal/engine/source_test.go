package engine

import "testing"

func TestSeededSourceReproducible(t *testing.T) {
	a := NewSeededSource(2024)
	b := NewSeededSource(2024)
	for i := 0; i < 1000; i++ {
		x, y := a.IntN(416), b.IntN(416)
		if x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
		if x < 0 || x >= 416 {
			t.Fatalf("draw %d out of range: %d", i, x)
		}
	}
	if a.Seed() != 2024 {
		t.Errorf("expected seed 2024, got %d", a.Seed())
	}
}

func TestFairSourceRange(t *testing.T) {
	src := NewFairSource(Seeds{Server: "server", Client: "client"}, 1)
	for i := 0; i < 2000; i++ {
		n := 1 + i%52
		if v := src.IntN(n); v < 0 || v >= n {
			t.Fatalf("IntN(%d) = %d out of range", n, v)
		}
	}
}

func TestFairSourceReproducible(t *testing.T) {
	seeds := Seeds{Server: "abc123", Client: "def456"}
	a := NewFairSource(seeds, 9)
	b := NewFairSource(seeds, 9)
	for i := 0; i < 100; i++ {
		if x, y := a.IntN(100), b.IntN(100); x != y {
			t.Fatalf("draw %d differs: %d != %d", i, x, y)
		}
	}
}

func TestShardSeed(t *testing.T) {
	if ShardSeed(99, 0) != 99 {
		t.Errorf("shard 0 should keep the run seed")
	}
	seen := map[uint64]int{}
	for i := 0; i < 64; i++ {
		s := ShardSeed(99, i)
		if prev, ok := seen[s]; ok {
			t.Fatalf("shards %d and %d share seed %d", prev, i, s)
		}
		seen[s] = i
	}
}

func TestServerHash(t *testing.T) {
	if h := (Seeds{}).ServerHash(); h != "" {
		t.Errorf("expected empty hash for empty seed, got %q", h)
	}
	h := Seeds{Server: "test_server_seed"}.ServerHash()
	if len(h) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h))
	}
}
