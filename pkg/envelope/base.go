package envelope

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/vc-suite/bbs2023/pkg/bbserr"
)

// BaseComponents are the issuer-side proof components carried by a base
// envelope, per spec.md §4.8.
type BaseComponents struct {
	Feature           Feature
	BBSSignature      []byte
	BBSHeader         []byte
	PublicKey         []byte
	HMACKey           []byte
	MandatoryPointers []string
	SignerNymEntropy  []byte // PSEUDONYM, HOLDER_BINDING_PSEUDONYM only
}

func needsNymEntropy(f Feature) bool {
	return f == Pseudonym || f == HolderBindingPseudonym
}

// EncodeBase serializes c into a base envelope string.
func EncodeBase(c *BaseComponents) (string, error) {
	const op = "envelope.EncodeBase"

	if len(c.BBSSignature) != sigLen {
		return "", bbserr.Newf(bbserr.ProofGenerationError, op, "bbsSignature length %d, want %d", len(c.BBSSignature), sigLen)
	}
	if len(c.BBSHeader) != headerLen {
		return "", bbserr.Newf(bbserr.ProofGenerationError, op, "bbsHeader length %d, want %d", len(c.BBSHeader), headerLen)
	}
	if len(c.PublicKey) != pubKeyLen {
		return "", bbserr.Newf(bbserr.ProofGenerationError, op, "publicKey length %d, want %d", len(c.PublicKey), pubKeyLen)
	}
	if len(c.HMACKey) != hmacLen {
		return "", bbserr.Newf(bbserr.ProofGenerationError, op, "hmacKey length %d, want %d", len(c.HMACKey), hmacLen)
	}

	array := []interface{}{c.BBSSignature, c.BBSHeader, c.PublicKey, c.HMACKey, c.MandatoryPointers}
	if needsNymEntropy(c.Feature) {
		if len(c.SignerNymEntropy) == 0 {
			return "", bbserr.Newf(bbserr.ProofGenerationError, op, "feature %v requires signerNymEntropy", c.Feature)
		}
		array = append(array, c.SignerNymEntropy)
	}

	payload, err := encMode.Marshal(array)
	if err != nil {
		return "", bbserr.New(bbserr.ProofGenerationError, op, err)
	}

	header, ok := baseHeaders[c.Feature]
	if !ok {
		return "", bbserr.Newf(bbserr.ProofGenerationError, op, "unknown feature %v", c.Feature)
	}
	tagged := make([]byte, 0, 3+len(payload))
	tagged = append(tagged, header[:]...)
	tagged = append(tagged, payload...)

	return multibaseEncode(tagged)
}

// DecodeBase parses a base envelope string, validating the feature header,
// the array arity for that feature, and every fixed-length component.
func DecodeBase(s string) (*BaseComponents, error) {
	const op = "envelope.DecodeBase"

	decoded, err := multibaseDecode(s)
	if err != nil {
		return nil, err
	}
	if len(decoded) < 3 {
		return nil, bbserr.Newf(bbserr.ProofVerificationError, op, "envelope too short")
	}
	var header [3]byte
	copy(header[:], decoded[:3])
	feature, ok := featureByHeader(header, baseHeaders)
	if !ok {
		return nil, bbserr.Newf(bbserr.ProofVerificationError, op, "unrecognized base header %x", header)
	}

	var array []interface{}
	if err := cbor.Unmarshal(decoded[3:], &array); err != nil {
		return nil, bbserr.New(bbserr.ProofVerificationError, op, err)
	}

	wantLen := 5
	if needsNymEntropy(feature) {
		wantLen = 6
	}
	if len(array) != wantLen {
		return nil, bbserr.Newf(bbserr.ProofVerificationError, op, "base array length %d, want %d for feature %v", len(array), wantLen, feature)
	}

	c := &BaseComponents{Feature: feature}
	c.BBSSignature, err = bytesField(array[0], "bbsSignature")
	if err != nil {
		return nil, bbserr.New(bbserr.ProofVerificationError, op, err)
	}
	c.BBSHeader, err = bytesField(array[1], "bbsHeader")
	if err != nil {
		return nil, bbserr.New(bbserr.ProofVerificationError, op, err)
	}
	c.PublicKey, err = bytesField(array[2], "publicKey")
	if err != nil {
		return nil, bbserr.New(bbserr.ProofVerificationError, op, err)
	}
	c.HMACKey, err = bytesField(array[3], "hmacKey")
	if err != nil {
		return nil, bbserr.New(bbserr.ProofVerificationError, op, err)
	}
	c.MandatoryPointers, err = stringSliceField(array[4])
	if err != nil {
		return nil, bbserr.New(bbserr.ProofVerificationError, op, err)
	}
	if needsNymEntropy(feature) {
		c.SignerNymEntropy, err = bytesField(array[5], "signerNymEntropy")
		if err != nil {
			return nil, bbserr.New(bbserr.ProofVerificationError, op, err)
		}
	}

	if len(c.BBSSignature) != sigLen {
		return nil, bbserr.Newf(bbserr.ProofVerificationError, op, "bbsSignature length %d, want %d", len(c.BBSSignature), sigLen)
	}
	if len(c.BBSHeader) != headerLen {
		return nil, bbserr.Newf(bbserr.ProofVerificationError, op, "bbsHeader length %d, want %d", len(c.BBSHeader), headerLen)
	}
	if len(c.PublicKey) != pubKeyLen {
		return nil, bbserr.Newf(bbserr.ProofVerificationError, op, "publicKey length %d, want %d", len(c.PublicKey), pubKeyLen)
	}
	if len(c.HMACKey) != hmacLen {
		return nil, bbserr.Newf(bbserr.ProofVerificationError, op, "hmacKey length %d, want %d", len(c.HMACKey), hmacLen)
	}

	return c, nil
}
