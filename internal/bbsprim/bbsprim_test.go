package bbsprim

import (
	"bytes"
	"math/big"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	sk, pk, err := KeyGen(bytes.Repeat([]byte{0x01}, 32))
	if err != nil {
		t.Fatalf("KeyGen() error = %v", err)
	}

	messages := MessagesToScalars([][]byte{
		[]byte("_:b0 <urn:p> \"v1\" ."),
		[]byte("_:b1 <urn:p> \"v2\" ."),
	})
	header := []byte("header-bytes")

	sig, err := Sign(sk, pk, header, messages)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	ok, err := Verify(pk, sig, header, messages)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Fatal("Verify() = false, want true")
	}

	tamperedHeader := []byte("different-header-bytes")
	ok, err = Verify(pk, sig, tamperedHeader, messages)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ok {
		t.Fatal("Verify() with tampered header = true, want false")
	}
}

func TestSignatureBytesRoundTrip(t *testing.T) {
	sk, pk, err := KeyGen(bytes.Repeat([]byte{0x02}, 32))
	if err != nil {
		t.Fatalf("KeyGen() error = %v", err)
	}
	messages := MessagesToScalars([][]byte{[]byte("m1")})
	sig, err := Sign(sk, pk, []byte("h"), messages)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	b := sig.Bytes()
	if len(b) != SignatureSize {
		t.Fatalf("Bytes() length = %d, want %d", len(b), SignatureSize)
	}

	parsed, err := SignatureFromBytes(b)
	if err != nil {
		t.Fatalf("SignatureFromBytes() error = %v", err)
	}
	if parsed.E.Cmp(sig.E) != 0 {
		t.Fatal("round-tripped signature E mismatch")
	}
}

func TestProofGenVerifyRoundTrip(t *testing.T) {
	sk, pk, err := KeyGen(bytes.Repeat([]byte{0x03}, 32))
	if err != nil {
		t.Fatalf("KeyGen() error = %v", err)
	}

	messages := MessagesToScalars([][]byte{
		[]byte("_:b0 <urn:p> \"v1\" ."),
		[]byte("_:b1 <urn:p> \"v2\" ."),
		[]byte("_:b2 <urn:p> \"v3\" ."),
	})
	header := []byte("bbs-header")
	ph := []byte("presentation-header")

	sig, err := Sign(sk, pk, header, messages)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	disclosedIdx := []int{0, 2}
	proof, err := ProofGen(pk, sig, header, ph, messages, disclosedIdx)
	if err != nil {
		t.Fatalf("ProofGen() error = %v", err)
	}

	disclosedMessages := map[int]*big.Int{
		0: messages[0],
		2: messages[2],
	}
	ok, err := ProofVerify(pk, proof, header, ph, disclosedMessages, disclosedIdx, len(messages))
	if err != nil {
		t.Fatalf("ProofVerify() error = %v", err)
	}
	if !ok {
		t.Fatal("ProofVerify() = false, want true")
	}
}

func TestProofBytesRoundTrip(t *testing.T) {
	sk, pk, err := KeyGen(bytes.Repeat([]byte{0x04}, 32))
	if err != nil {
		t.Fatalf("KeyGen() error = %v", err)
	}
	messages := MessagesToScalars([][]byte{[]byte("m1"), []byte("m2")})
	header := []byte("h")
	ph := []byte("ph")

	sig, err := Sign(sk, pk, header, messages)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	proof, err := ProofGen(pk, sig, header, ph, messages, []int{1})
	if err != nil {
		t.Fatalf("ProofGen() error = %v", err)
	}

	b := proof.Bytes()
	parsed, err := ProofFromBytes(b)
	if err != nil {
		t.Fatalf("ProofFromBytes() error = %v", err)
	}
	if parsed.C.Cmp(proof.C) != 0 {
		t.Fatal("round-tripped proof C mismatch")
	}
	if len(parsed.MHat) != len(proof.MHat) {
		t.Fatalf("round-tripped MHat length = %d, want %d", len(parsed.MHat), len(proof.MHat))
	}
}
