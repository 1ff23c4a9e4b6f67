// Package envelope implements the spec.md §4.8 Envelope Serialization: a
// 3-byte CBOR-tag header selecting one of 8 feature/base-or-derived
// variants, followed by a canonical CBOR positional array, multibase
// base64url-no-pad encoded.
//
// Grounded directly on the teacher's crypto/ecdsa-sd/cbor.go (2-tag,
// fixed-shape scheme), generalized to the 8-tag / feature-dependent-array
// table spec.md §4.8 requires.
package envelope

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/multiformats/go-multibase"

	"github.com/vc-suite/bbs2023/pkg/bbserr"
)

// Feature selects which BBS variant produced/consumes an envelope, per
// spec.md §4.5 step 4 / §4.6 step 6.
type Feature int

const (
	Baseline Feature = iota
	AnonymousHolderBinding
	Pseudonym
	HolderBindingPseudonym
)

// Header byte triples per spec.md §4.8's table.
var (
	baseHeaders = map[Feature][3]byte{
		Baseline:               {0xd9, 0x5d, 0x02},
		AnonymousHolderBinding: {0xd9, 0x5d, 0x04},
		Pseudonym:              {0xd9, 0x5d, 0x06},
		HolderBindingPseudonym: {0xd9, 0x5d, 0x08},
	}
	derivedHeaders = map[Feature][3]byte{
		Baseline:               {0xd9, 0x5d, 0x03},
		AnonymousHolderBinding: {0xd9, 0x5d, 0x05},
		Pseudonym:              {0xd9, 0x5d, 0x07},
		HolderBindingPseudonym: {0xd9, 0x5d, 0x09},
	}
)

const (
	sigLen    = 80
	headerLen = 64
	pubKeyLen = 96
	hmacLen   = 32
)

func featureByHeader(header [3]byte, table map[Feature][3]byte) (Feature, bool) {
	for f, h := range table {
		if h == header {
			return f, true
		}
	}
	return 0, false
}

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	m, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return m
}

func multibaseEncode(tagged []byte) (string, error) {
	const op = "envelope.encode"
	s, err := multibase.Encode(multibase.Base64url, tagged)
	if err != nil {
		return "", bbserr.New(bbserr.DecodingError, op, err)
	}
	return s, nil
}

func multibaseDecode(s string) ([]byte, error) {
	const op = "envelope.decode"
	enc, decoded, err := multibase.Decode(s)
	if err != nil {
		return nil, bbserr.New(bbserr.DecodingError, op, err)
	}
	if enc != multibase.Base64url {
		return nil, bbserr.Newf(bbserr.DecodingError, op, "expected multibase 'u' prefix, got encoding %v", enc)
	}
	return decoded, nil
}
