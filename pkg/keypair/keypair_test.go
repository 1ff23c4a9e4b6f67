package keypair

import (
	"bytes"
	"testing"

	"github.com/vc-suite/bbs2023/pkg/codec"
)

func TestInitializeWithSeedDerivesID(t *testing.T) {
	kp := &KeyPair{Controller: "did:example:123"}
	if err := kp.Initialize(bytes.Repeat([]byte{0x07}, 32)); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if kp.PrivateKey == nil || kp.PublicKey == nil {
		t.Fatal("Initialize() left key material nil")
	}
	fp, err := kp.GenerateFingerprint()
	if err != nil {
		t.Fatalf("GenerateFingerprint() error = %v", err)
	}
	if kp.ID != kp.Controller+"#"+fp {
		t.Fatalf("ID = %q, want %q", kp.ID, kp.Controller+"#"+fp)
	}
}

func TestInitializeRejectsShortSeed(t *testing.T) {
	kp := &KeyPair{}
	if err := kp.Initialize(make([]byte, 16)); err == nil {
		t.Fatal("Initialize() with short seed = nil error, want error")
	}
}

func TestVerifyFingerprint(t *testing.T) {
	kp := &KeyPair{Controller: "did:example:abc"}
	if err := kp.Initialize(bytes.Repeat([]byte{0x09}, 32)); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	fp, err := kp.GenerateFingerprint()
	if err != nil {
		t.Fatalf("GenerateFingerprint() error = %v", err)
	}
	ok, err := kp.VerifyFingerprint(fp)
	if err != nil {
		t.Fatalf("VerifyFingerprint() error = %v", err)
	}
	if !ok {
		t.Fatal("VerifyFingerprint() = false, want true")
	}
	ok, err = kp.VerifyFingerprint("zWrongFingerprint")
	if err != nil {
		t.Fatalf("VerifyFingerprint() error = %v", err)
	}
	if ok {
		t.Fatal("VerifyFingerprint() with wrong value = true, want false")
	}
}

func TestExportImportMultikeyRoundTrip(t *testing.T) {
	kp := &KeyPair{Controller: "did:example:xyz"}
	if err := kp.Initialize(bytes.Repeat([]byte{0x0a}, 32)); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	doc, err := kp.Export(ExportOptions{Flag: codec.Private, Type: TypeMultikey})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if doc.PublicKeyMultibase == "" || doc.SecretKeyMultibase == "" {
		t.Fatal("Export() with Flag=Private must set both multibase fields")
	}

	imported, err := Import(doc, "", ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if imported.PrivateKey == nil || imported.PublicKey == nil {
		t.Fatal("Import() left key material nil")
	}
	if !bytes.Equal(imported.PublicKey.Bytes(), kp.PublicKey.Bytes()) {
		t.Fatal("imported public key differs from original")
	}
}

func TestExportRejectsMissingController(t *testing.T) {
	kp := &KeyPair{}
	if err := kp.Initialize(bytes.Repeat([]byte{0x0b}, 32)); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	kp.ID = "did:example:orphan#key-1"

	if _, err := kp.Export(ExportOptions{}); err == nil {
		t.Fatal("Export() with missing controller = nil error, want error")
	}
}

func TestExportImportJwkOverridesID(t *testing.T) {
	kp := &KeyPair{Controller: "did:example:jwk"}
	if err := kp.Initialize(bytes.Repeat([]byte{0x0c}, 32)); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	originalID := kp.ID

	doc, err := kp.Export(ExportOptions{Type: TypeJsonWebKey})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if doc.PublicKeyJwk == nil {
		t.Fatal("Export() with Type=JsonWebKey must set publicKeyJwk")
	}
	if doc.ID == originalID {
		t.Fatal("Export() with Type=JsonWebKey must override id with the JWK thumbprint")
	}

	imported, err := Import(doc, "", ImportOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if !bytes.Equal(imported.PublicKey.Bytes(), kp.PublicKey.Bytes()) {
		t.Fatal("imported public key differs from original")
	}
}
