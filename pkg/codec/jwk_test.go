package codec

import "testing"

func TestMaterialToJwkPublicRoundTrip(t *testing.T) {
	material := make([]byte, publicKeyLen)
	for i := range material {
		material[i] = byte(i)
	}

	jwk, err := MaterialToJwk(material, Public)
	if err != nil {
		t.Fatalf("MaterialToJwk() error = %v", err)
	}
	if jwk.X == "" || jwk.D != "" {
		t.Fatal("public JWK must set x and leave d empty")
	}

	got, err := JwkToMaterial(jwk, Public)
	if err != nil {
		t.Fatalf("JwkToMaterial() error = %v", err)
	}
	if len(got) != len(material) {
		t.Fatalf("round-tripped material length = %d, want %d", len(got), len(material))
	}
	for i := range material {
		if got[i] != material[i] {
			t.Fatalf("round-tripped material differs at byte %d", i)
		}
	}
}

func TestMaterialToJwkPrivateRoundTrip(t *testing.T) {
	material := make([]byte, privateKeyLen)
	for i := range material {
		material[i] = byte(i + 1)
	}

	jwk, err := MaterialToJwk(material, Private)
	if err != nil {
		t.Fatalf("MaterialToJwk() error = %v", err)
	}
	if jwk.D == "" || jwk.X != "" {
		t.Fatal("private JWK must set d and leave x empty")
	}

	got, err := JwkToMaterial(jwk, Private)
	if err != nil {
		t.Fatalf("JwkToMaterial() error = %v", err)
	}
	if len(got) != len(material) {
		t.Fatalf("round-tripped material length = %d, want %d", len(got), len(material))
	}
}

func TestJwkToMaterialRejectsWrongKeyOps(t *testing.T) {
	material := make([]byte, publicKeyLen)
	jwk, err := MaterialToJwk(material, Public)
	if err != nil {
		t.Fatalf("MaterialToJwk() error = %v", err)
	}
	jwk.KeyOps = []string{"sign"}

	if _, err := JwkToMaterial(jwk, Public); err == nil {
		t.Fatal("JwkToMaterial() with mismatched key_ops = nil error, want error")
	}
}

func TestJwkThumbprintDeterministic(t *testing.T) {
	material := make([]byte, publicKeyLen)
	jwk, err := MaterialToJwk(material, Public)
	if err != nil {
		t.Fatalf("MaterialToJwk() error = %v", err)
	}

	tp1, err := JwkThumbprint(jwk)
	if err != nil {
		t.Fatalf("JwkThumbprint() error = %v", err)
	}
	tp2, err := JwkThumbprint(jwk)
	if err != nil {
		t.Fatalf("JwkThumbprint() error = %v", err)
	}
	if tp1 != tp2 {
		t.Fatal("JwkThumbprint() not deterministic")
	}
}
