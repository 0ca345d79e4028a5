package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"testing"
)

func roundBytes(server, client string, nonce, round uint64) []byte {
	h := hmac.New(sha256.New, []byte(server))
	fmt.Fprintf(h, "%s:%d:%d", client, nonce, round)
	return h.Sum(nil)
}

func TestHMACStreamMatchesRounds(t *testing.T) {
	seeds := Seeds{Server: "shoe_server", Client: "shoe_client"}
	s := newHMACStream(seeds, 7)

	for round := uint64(0); round < 3; round++ {
		want := roundBytes(seeds.Server, seeds.Client, 7, round)
		for i, b := range want {
			if got := s.next(); got != b {
				t.Fatalf("round %d byte %d: expected %d, got %d", round, i, b, got)
			}
		}
	}
}

func TestHMACStreamFloat(t *testing.T) {
	seeds := Seeds{Server: "server", Client: "client"}
	raw := roundBytes(seeds.Server, seeds.Client, 1, 0)
	want := float64(raw[0])/256 + float64(raw[1])/(256*256) +
		float64(raw[2])/(256*256*256) + float64(raw[3])/(256*256*256*256)

	s := newHMACStream(seeds, 1)
	if got := s.float(); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
	for i := 0; i < 600; i++ {
		if f := s.float(); f < 0 || f >= 1 {
			t.Fatalf("float %d out of range [0, 1): %f", i, f)
		}
	}
}

func TestHMACStreamNonceChangesStream(t *testing.T) {
	seeds := Seeds{Server: "server", Client: "client"}
	a, b := newHMACStream(seeds, 42), newHMACStream(seeds, 43)
	same := true
	for i := 0; i < 16; i++ {
		if a.float() != b.float() {
			same = false
		}
	}
	if same {
		t.Error("different nonces produced identical streams")
	}
}
