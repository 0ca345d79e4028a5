package engine

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"strconv"
)

// hmacStream is the provably-fair byte stream: round r is
// HMAC-SHA256(server, "client:nonce:r"), rounds concatenated from r = 0.
type hmacStream struct {
	mac    hash.Hash
	prefix string
	round  uint64
	buf    []byte
	pos    int
}

func newHMACStream(seeds Seeds, nonce uint64) *hmacStream {
	s := &hmacStream{
		mac:    hmac.New(sha256.New, []byte(seeds.Server)),
		prefix: seeds.Client + ":" + strconv.FormatUint(nonce, 10) + ":",
	}
	s.fill()
	return s
}

func (s *hmacStream) fill() {
	s.mac.Reset()
	s.mac.Write([]byte(s.prefix + strconv.FormatUint(s.round, 10)))
	s.buf = s.mac.Sum(s.buf[:0])
	s.pos = 0
}

func (s *hmacStream) next() byte {
	if s.pos == len(s.buf) {
		s.round++
		s.fill()
	}
	b := s.buf[s.pos]
	s.pos++
	return b
}

// float reads four bytes as a big-endian fraction in [0, 1).
func (s *hmacStream) float() float64 {
	b := [4]byte{s.next(), s.next(), s.next(), s.next()}
	return float64(binary.BigEndian.Uint32(b[:])) / (1 << 32)
}
