package internals

import (
	"crypto/sha512"
	"hash"
	"math/big"
)

// c4Charset is the base58 alphabet used by C4 identifiers: the standard
// Bitcoin base58 alphabet (digits and letters with '0', 'O', 'I', 'l'
// removed to avoid visual ambiguity), ported from mhl/hasher.py's
// C4HashContext.charset.
const c4Charset = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// c4IDLength is the guaranteed total length of a C4 identifier string,
// including its "c4" prefix.
const c4IDLength = 90

// c4Hasher computes a C4 identifier: sha512 of the input, then the digest
// reinterpreted as a big integer and re-expressed in base58, left-padded
// with the zero-glyph ('1') to a fixed width and prefixed with "c4".
type c4Hasher struct {
	h hash.Hash
}

func newC4() *c4Hasher {
	return &c4Hasher{h: sha512.New()}
}

func (h *c4Hasher) Write(p []byte) (int, error) { return h.h.Write(p) }

// Sum returns the C4 identifier as its raw ASCII bytes (not the underlying
// sha512 digest) — the string form is the digest for this algorithm, per
// spec.md §4.1's "each has a fixed ... canonical hex (or c4-base58) string
// representation."
func (h *c4Hasher) Sum() []byte {
	sha := h.h.Sum(nil)
	return []byte(c4EncodeBase58(sha))
}

func (h *c4Hasher) Reset() { h.h.Reset() }

// Size returns the fixed length of the C4 identifier string, not the
// underlying sha512 digest width.
func (h *c4Hasher) Size() int { return c4IDLength }

func (h *c4Hasher) Algorithm() Algorithm { return AlgoC4 }

func c4EncodeBase58(sum []byte) string {
	value := new(big.Int).SetBytes(sum)
	base := big.NewInt(58)
	zero := big.NewInt(0)
	mod := new(big.Int)

	var out []byte
	for value.Cmp(zero) > 0 {
		value.DivMod(value, base, mod)
		out = append(out, c4Charset[mod.Int64()])
	}
	// digits were produced least-significant-first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	padded := make([]byte, 0, c4IDLength)
	padded = append(padded, 'c', '4')
	for i := 0; i < c4IDLength-2-len(out); i++ {
		padded = append(padded, '1')
	}
	padded = append(padded, out...)
	return string(padded)
}

