// Package format implements the on-disk manifest store: the CBOR document
// schema for a generation and the ManifestStore that reads, writes, locks,
// and discovers sealed roots on a real filesystem.
package format

import (
	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic Encoding
// (RFC 8949 §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. The same generation always serializes to
// identical bytes, which matters for a format whose whole purpose is
// tamper evidence.
var encMode cbor.EncMode

// decMode accepts standard CBOR and ignores unknown fields, so a store can
// read generations written by a newer version of this schema.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("format: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("format: CBOR decoder initialization failed: " + err.Error())
	}
}

func marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}
