package internals

import "github.com/cespare/xxhash/v2"

type xxh64Hasher struct {
	h *xxhash.Digest
}

func newXXH64() *xxh64Hasher {
	return &xxh64Hasher{h: xxhash.New()}
}

func (h *xxh64Hasher) Write(p []byte) (int, error) { return h.h.Write(p) }

func (h *xxh64Hasher) Sum() []byte { return h.h.Sum(nil) }

func (h *xxh64Hasher) Reset() { h.h.Reset() }

func (h *xxh64Hasher) Size() int { return h.h.Size() }

func (h *xxh64Hasher) Algorithm() Algorithm { return AlgoXXH64 }
