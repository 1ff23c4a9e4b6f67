package canon

import "testing"

func TestSelectDocumentObjectMembers(t *testing.T) {
	doc := map[string]interface{}{
		"@context": "https://www.w3.org/ns/credentials/v2",
		"id":       "urn:uuid:1",
		"type":     []interface{}{"VerifiableCredential"},
		"issuer":   "https://issuer.example/1",
		"credentialSubject": map[string]interface{}{
			"name": "Alice",
			"age":  float64(30),
		},
	}

	got, err := SelectDocument(doc, []JSONPointer{"/issuer", "/credentialSubject/name"})
	if err != nil {
		t.Fatalf("SelectDocument() error = %v", err)
	}

	if got["issuer"] != "https://issuer.example/1" {
		t.Fatalf("issuer = %v, want preserved value", got["issuer"])
	}
	subject, ok := got["credentialSubject"].(map[string]interface{})
	if !ok {
		t.Fatalf("credentialSubject = %T, want map", got["credentialSubject"])
	}
	if subject["name"] != "Alice" {
		t.Fatalf("credentialSubject.name = %v, want Alice", subject["name"])
	}
	if _, present := subject["age"]; present {
		t.Fatal("credentialSubject.age leaked into the selected document")
	}
	if got["@context"] != doc["@context"] {
		t.Fatal("@context was not carried over")
	}
	if got["id"] != doc["id"] {
		t.Fatal("id was not carried over")
	}
}

func TestSelectDocumentGrowsArrayContainers(t *testing.T) {
	doc := map[string]interface{}{
		"@context": "https://www.w3.org/ns/credentials/v2",
		"credentialSubject": map[string]interface{}{
			"achievements": []interface{}{
				map[string]interface{}{"name": "First", "score": float64(1)},
				map[string]interface{}{"name": "Second", "score": float64(2)},
			},
		},
	}

	got, err := SelectDocument(doc, []JSONPointer{
		"/credentialSubject/achievements/1/name",
	})
	if err != nil {
		t.Fatalf("SelectDocument() error = %v", err)
	}

	subject, ok := got["credentialSubject"].(map[string]interface{})
	if !ok {
		t.Fatalf("credentialSubject = %T, want map", got["credentialSubject"])
	}
	achievements, ok := subject["achievements"].([]interface{})
	if !ok {
		t.Fatalf("achievements = %T, want slice", subject["achievements"])
	}
	if len(achievements) != 2 {
		t.Fatalf("len(achievements) = %d, want 2 (index 0 grown as a placeholder)", len(achievements))
	}
	if achievements[0] != nil {
		t.Fatalf("achievements[0] = %v, want nil placeholder", achievements[0])
	}
	second, ok := achievements[1].(map[string]interface{})
	if !ok {
		t.Fatalf("achievements[1] = %T, want map", achievements[1])
	}
	if second["name"] != "Second" {
		t.Fatalf("achievements[1].name = %v, want Second", second["name"])
	}
	if _, present := second["score"]; present {
		t.Fatal("achievements[1].score leaked into the selected document")
	}
}

func TestSelectDocumentRejectsMalformedPointer(t *testing.T) {
	doc := map[string]interface{}{"a": "b"}
	if _, err := SelectDocument(doc, []JSONPointer{"no-leading-slash"}); err == nil {
		t.Fatal("SelectDocument() error = nil, want error for a pointer missing its leading slash")
	}
}
