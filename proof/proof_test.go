package proof

import (
	"testing"
	"time"

	"github.com/vc-suite/bbs2023/pkg/canon"
	"github.com/vc-suite/bbs2023/pkg/keypair"
	"github.com/vc-suite/bbs2023/pkg/vc20/credential"
)

const testVerificationMethod = "did:example:issuer#key-1"

func testCredential() map[string]interface{} {
	return map[string]interface{}{
		"@context": []interface{}{
			"https://www.w3.org/ns/credentials/v2",
			map[string]interface{}{
				"@vocab": "https://example.org/vocab#",
			},
		},
		"type":      []interface{}{"VerifiableCredential"},
		"issuer":    "https://issuer.example/1",
		"validFrom": "2024-01-01T00:00:00Z",
		"credentialSubject": map[string]interface{}{
			"id":     "https://subject.example/1",
			"name":   "Alice",
			"age":    float64(30),
			"degree": "Bachelor of Science",
		},
	}
}

func testKeyPair(t *testing.T) *keypair.KeyPair {
	t.Helper()
	kp := &keypair.KeyPair{Controller: "did:example:issuer"}
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	if err := kp.Initialize(seed); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	kp.ID = testVerificationMethod
	return kp
}

func resolverFor(kp *keypair.KeyPair) VerificationMethodResolver {
	return func(verificationMethod string) (*keypair.KeyPair, error) {
		return kp, nil
	}
}

func TestIssueDeriveVerifyBaselineRoundTrip(t *testing.T) {
	kp := testKeyPair(t)
	resolve := resolverFor(kp)
	doc := testCredential()
	created := time.Now().UTC().Truncate(time.Second)

	issued, err := Issue(doc, IssueOptions{
		VerificationMethod: testVerificationMethod,
		ProofPurpose:       credential.ProofPurposeAssertion,
		Created:            &created,
		MandatoryPointers:  []canon.JSONPointer{"/issuer", "/validFrom"},
		Feature:            Baseline,
	}, resolve)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if issued.ProofValue == "" {
		t.Fatal("Issue() produced an empty proofValue")
	}

	revealed, derived, err := Derive(doc, issued.ProofValue, *issued, DeriveOptions{
		SelectivePointers: []canon.JSONPointer{"/credentialSubject/name"},
	})
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	if revealed["credentialSubject"] == nil {
		t.Fatal("Derive() revealDocument is missing credentialSubject")
	}

	ok, err := Verify(revealed, derived, resolve)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ok {
		t.Fatal("Verify() = false, want true")
	}
}

func TestIssueRejectsMissingVerificationMethod(t *testing.T) {
	kp := testKeyPair(t)
	_, err := Issue(testCredential(), IssueOptions{
		Feature: Baseline,
	}, resolverFor(kp))
	if err == nil {
		t.Fatal("Issue() error = nil, want error for missing verificationMethod")
	}
}

func TestVerifyRejectsWrongCryptosuite(t *testing.T) {
	kp := testKeyPair(t)
	p := &credential.DataIntegrityProof{
		Type:        credential.ProofTypeDataIntegrity,
		Cryptosuite: credential.CryptosuiteECDSASD2023,
	}
	_, err := Verify(testCredential(), p, resolverFor(kp))
	if err == nil {
		t.Fatal("Verify() error = nil, want error for mismatched cryptosuite")
	}
}
