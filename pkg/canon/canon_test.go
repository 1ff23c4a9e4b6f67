package canon

import (
	"bytes"
	"testing"
)

func sampleDocument() map[string]interface{} {
	return map[string]interface{}{
		"@context": []interface{}{
			"https://www.w3.org/ns/credentials/v2",
			map[string]interface{}{
				"@vocab": "https://example.org/vocab#",
			},
		},
		"@type": "VerifiableCredential",
		"issuer": map[string]interface{}{
			"@id": "https://issuer.example/1",
		},
		"credentialSubject": map[string]interface{}{
			"name": "Alice",
			"age":  float64(30),
		},
	}
}

func TestCanonicalizeShuffledDeterministic(t *testing.T) {
	c := NewCanonicalizer()
	key := HMACKey(bytes.Repeat([]byte{0x05}, HMACKeySize))

	doc := sampleDocument()
	quads1, labelMap1, err := CanonicalizeShuffled(c, doc, key)
	if err != nil {
		t.Fatalf("CanonicalizeShuffled() error = %v", err)
	}
	quads2, labelMap2, err := CanonicalizeShuffled(c, doc, key)
	if err != nil {
		t.Fatalf("CanonicalizeShuffled() error = %v", err)
	}

	if len(quads1) == 0 {
		t.Fatal("CanonicalizeShuffled() produced no quads")
	}
	if len(quads1) != len(quads2) {
		t.Fatalf("quad count mismatch: %d vs %d", len(quads1), len(quads2))
	}
	for i := range quads1 {
		if quads1[i].Line() != quads2[i].Line() {
			t.Fatalf("quad %d differs between identical runs: %q vs %q", i, quads1[i].Line(), quads2[i].Line())
		}
	}
	if len(labelMap1) != len(labelMap2) {
		t.Fatal("label map size differs between identical runs")
	}
}

func TestCanonicalizeAndGroupPartitionsStatements(t *testing.T) {
	c := NewCanonicalizer()
	key := HMACKey(bytes.Repeat([]byte{0x06}, HMACKeySize))
	doc := sampleDocument()

	groups, _, err := CanonicalizeAndGroup(c, doc, key, map[string][]JSONPointer{
		"mandatory": {"/issuer"},
	})
	if err != nil {
		t.Fatalf("CanonicalizeAndGroup() error = %v", err)
	}

	g, ok := groups["mandatory"]
	if !ok {
		t.Fatal("missing mandatory group")
	}
	if len(g.Matching) == 0 {
		t.Fatal("mandatory group matched no statements for /issuer")
	}
	for idx := range g.Matching {
		if _, clash := g.NonMatching[idx]; clash {
			t.Fatalf("index %d present in both matching and nonMatching", idx)
		}
	}
}
