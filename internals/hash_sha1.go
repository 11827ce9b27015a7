package internals

import (
	"crypto/sha1"
	"hash"
)

type sha1Hasher struct {
	h hash.Hash
}

func newSHA1() *sha1Hasher {
	return &sha1Hasher{h: sha1.New()}
}

func (h *sha1Hasher) Write(p []byte) (int, error) { return h.h.Write(p) }

func (h *sha1Hasher) Sum() []byte { return h.h.Sum(nil) }

func (h *sha1Hasher) Reset() { h.h.Reset() }

func (h *sha1Hasher) Size() int { return h.h.Size() }

func (h *sha1Hasher) Algorithm() Algorithm { return AlgoSHA1 }
