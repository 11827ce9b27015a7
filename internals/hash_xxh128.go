package internals

import "github.com/zeebo/xxh3"

type xxh128Hasher struct {
	h *xxh3.Hasher
}

func newXXH128() *xxh128Hasher {
	return &xxh128Hasher{h: xxh3.New()}
}

func (h *xxh128Hasher) Write(p []byte) (int, error) { return h.h.Write(p) }

func (h *xxh128Hasher) Sum() []byte {
	sum := h.h.Sum128().Bytes()
	return sum[:]
}

func (h *xxh128Hasher) Reset() { h.h.Reset() }

func (h *xxh128Hasher) Size() int { return 16 }

func (h *xxh128Hasher) Algorithm() Algorithm { return AlgoXXH128 }
