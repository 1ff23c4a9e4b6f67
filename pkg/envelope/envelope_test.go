package envelope

import (
	"bytes"
	"testing"
)

func fixedBytes(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func TestEncodeDecodeBaseBaseline(t *testing.T) {
	c := &BaseComponents{
		Feature:           Baseline,
		BBSSignature:      fixedBytes(0x01, sigLen),
		BBSHeader:         fixedBytes(0x02, headerLen),
		PublicKey:         fixedBytes(0x03, pubKeyLen),
		HMACKey:           fixedBytes(0x04, hmacLen),
		MandatoryPointers: []string{"/issuer", "/credentialSubject/id"},
	}
	encoded, err := EncodeBase(c)
	if err != nil {
		t.Fatalf("EncodeBase() error = %v", err)
	}
	if encoded[0] != 'u' {
		t.Fatalf("EncodeBase() = %q, want multibase 'u' prefix", encoded)
	}

	decoded, err := DecodeBase(encoded)
	if err != nil {
		t.Fatalf("DecodeBase() error = %v", err)
	}
	if decoded.Feature != Baseline {
		t.Fatalf("Feature = %v, want Baseline", decoded.Feature)
	}
	if !bytes.Equal(decoded.BBSSignature, c.BBSSignature) {
		t.Fatal("round-tripped bbsSignature mismatch")
	}
	if len(decoded.MandatoryPointers) != 2 {
		t.Fatalf("MandatoryPointers length = %d, want 2", len(decoded.MandatoryPointers))
	}
}

func TestEncodeDecodeBasePseudonymRequiresEntropy(t *testing.T) {
	c := &BaseComponents{
		Feature:      Pseudonym,
		BBSSignature: fixedBytes(0x01, sigLen),
		BBSHeader:    fixedBytes(0x02, headerLen),
		PublicKey:    fixedBytes(0x03, pubKeyLen),
		HMACKey:      fixedBytes(0x04, hmacLen),
	}
	if _, err := EncodeBase(c); err == nil {
		t.Fatal("EncodeBase() for PSEUDONYM without signerNymEntropy = nil error, want error")
	}

	c.SignerNymEntropy = fixedBytes(0x05, 32)
	encoded, err := EncodeBase(c)
	if err != nil {
		t.Fatalf("EncodeBase() error = %v", err)
	}
	decoded, err := DecodeBase(encoded)
	if err != nil {
		t.Fatalf("DecodeBase() error = %v", err)
	}
	if !bytes.Equal(decoded.SignerNymEntropy, c.SignerNymEntropy) {
		t.Fatal("round-tripped signerNymEntropy mismatch")
	}
}

func TestDecodeBaseRejectsWrongHeader(t *testing.T) {
	s, err := multibaseEncode([]byte{0xff, 0xff, 0xff, 0x00})
	if err != nil {
		t.Fatalf("multibaseEncode() error = %v", err)
	}
	if _, err := DecodeBase(s); err == nil {
		t.Fatal("DecodeBase() with bad header = nil error, want error")
	}
}

func TestEncodeDecodeDerivedBaseline(t *testing.T) {
	c := &DerivedComponents{
		Feature:            Baseline,
		BBSProof:           fixedBytes(0x09, 200),
		CompressedLabelMap: map[int]int{0: 3, 2: 0},
		MandatoryIndexes:   []int{0, 2},
		SelectiveIndexes:   []int{1},
		PresentationHeader: fixedBytes(0x0a, 16),
	}
	encoded, err := EncodeDerived(c)
	if err != nil {
		t.Fatalf("EncodeDerived() error = %v", err)
	}
	decoded, err := DecodeDerived(encoded)
	if err != nil {
		t.Fatalf("DecodeDerived() error = %v", err)
	}
	if len(decoded.CompressedLabelMap) != 2 || decoded.CompressedLabelMap[0] != 3 {
		t.Fatalf("CompressedLabelMap = %v, want {0:3, 2:0}", decoded.CompressedLabelMap)
	}
	if len(decoded.MandatoryIndexes) != 2 || len(decoded.SelectiveIndexes) != 1 {
		t.Fatal("index slices did not round-trip")
	}
}

func TestEncodeDecodeDerivedAnonymousHolderBindingCarriesLength(t *testing.T) {
	c := &DerivedComponents{
		Feature:            AnonymousHolderBinding,
		BBSProof:           fixedBytes(0x09, 200),
		CompressedLabelMap: map[int]int{0: 1},
		MandatoryIndexes:   []int{0},
		SelectiveIndexes:   []int{},
		PresentationHeader: []byte{},
		LengthBBSMessages:  7,
	}
	encoded, err := EncodeDerived(c)
	if err != nil {
		t.Fatalf("EncodeDerived() error = %v", err)
	}
	decoded, err := DecodeDerived(encoded)
	if err != nil {
		t.Fatalf("DecodeDerived() error = %v", err)
	}
	if decoded.LengthBBSMessages != 7 {
		t.Fatalf("LengthBBSMessages = %d, want 7", decoded.LengthBBSMessages)
	}
}

func TestEncodeDecodeDerivedPseudonymCarriesNymFields(t *testing.T) {
	c := &DerivedComponents{
		Feature:            Pseudonym,
		BBSProof:           fixedBytes(0x09, 200),
		CompressedLabelMap: map[int]int{},
		MandatoryIndexes:   []int{},
		SelectiveIndexes:   []int{},
		PresentationHeader: []byte{},
		LengthBBSMessages:  3,
		NymDomain:          []byte("domain"),
		Pseudonym:          fixedBytes(0x0b, 48),
	}
	encoded, err := EncodeDerived(c)
	if err != nil {
		t.Fatalf("EncodeDerived() error = %v", err)
	}
	decoded, err := DecodeDerived(encoded)
	if err != nil {
		t.Fatalf("DecodeDerived() error = %v", err)
	}
	if string(decoded.NymDomain) != "domain" {
		t.Fatalf("NymDomain = %q, want %q", decoded.NymDomain, "domain")
	}
	if !bytes.Equal(decoded.Pseudonym, c.Pseudonym) {
		t.Fatal("round-tripped pseudonym mismatch")
	}
}
