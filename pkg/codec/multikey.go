// Package codec implements the Multikey and JWK encodings for BLS12-381 G2
// key material used by the bbs-2023 cryptosuite: a 32-byte private scalar
// and a 96-byte compressed public point.
package codec

import (
	"github.com/multiformats/go-multibase"

	"github.com/vc-suite/bbs2023/pkg/bbserr"
)

// Flag distinguishes public from private key material; it selects both the
// multicodec prefix and the JWK field/key_ops used by each encoding.
type Flag int

const (
	Public Flag = iota
	Private
)

// Multicodec prefixes for BLS12-381 G2 key material per spec.md §6.
var (
	multicodecPublic  = []byte{0xeb, 0x01}
	multicodecPrivate = []byte{0x80, 0x30}
)

const (
	publicKeyLen  = 96
	privateKeyLen = 32
)

func expectedLength(flag Flag) int {
	if flag == Public {
		return publicKeyLen
	}
	return privateKeyLen
}

func multicodecPrefix(flag Flag) []byte {
	if flag == Public {
		return multicodecPublic
	}
	return multicodecPrivate
}

// MaterialToMultibase encodes key material as a base58btc Multikey string.
func MaterialToMultibase(material []byte, flag Flag) (string, error) {
	const op = "codec.MaterialToMultibase"
	want := expectedLength(flag)
	if len(material) != want {
		return "", bbserr.Newf(bbserr.InvalidKeypairLength, op, "material length %d, want %d", len(material), want)
	}

	prefix := multicodecPrefix(flag)
	buf := make([]byte, 0, len(prefix)+len(material))
	buf = append(buf, prefix...)
	buf = append(buf, material...)

	encoded, err := multibase.Encode(multibase.Base58BTC, buf)
	if err != nil {
		return "", bbserr.New(bbserr.DecodingError, op, err)
	}
	return encoded, nil
}

// MultibaseToMaterial decodes a Multikey string, verifying the multicodec
// prefix matches flag and the remaining length matches the expected size.
func MultibaseToMaterial(s string, flag Flag) ([]byte, error) {
	const op = "codec.MultibaseToMaterial"
	_, decoded, err := multibase.Decode(s)
	if err != nil {
		return nil, bbserr.New(bbserr.DecodingError, op, err)
	}

	prefix := multicodecPrefix(flag)
	if len(decoded) < len(prefix) {
		return nil, bbserr.Newf(bbserr.DecodingError, op, "multikey too short")
	}
	for i, want := range prefix {
		if decoded[i] != want {
			return nil, bbserr.Newf(bbserr.DecodingError, op, "multicodec prefix mismatch: got %x, want %x", decoded[:len(prefix)], prefix)
		}
	}

	material := decoded[len(prefix):]
	want := expectedLength(flag)
	if len(material) != want {
		return nil, bbserr.Newf(bbserr.InvalidKeypairLength, op, "material length %d, want %d", len(material), want)
	}
	return material, nil
}
