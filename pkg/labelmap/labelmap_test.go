package labelmap

import "testing"

func TestCompressDecompressRoundTrip(t *testing.T) {
	in := map[string]string{"c14n0": "b3", "c14n2": "b0"}

	compressed, err := Compress(in)
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if compressed[0] != 3 || compressed[2] != 0 {
		t.Fatalf("Compress() = %v, want {0:3, 2:0}", compressed)
	}

	back := Decompress(compressed)
	if len(back) != len(in) {
		t.Fatalf("Decompress() length = %d, want %d", len(back), len(in))
	}
	for k, v := range in {
		if back[k] != v {
			t.Fatalf("Decompress()[%q] = %q, want %q", k, back[k], v)
		}
	}
}

func TestCompressSingleEntry(t *testing.T) {
	compressed, err := Compress(map[string]string{"c14n0": "b3"})
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if len(compressed) != 1 || compressed[0] != 3 {
		t.Fatalf("Compress() = %v, want {0:3}", compressed)
	}
}

func TestCompressRejectsBadPrefix(t *testing.T) {
	if _, err := Compress(map[string]string{"x0": "b3"}); err == nil {
		t.Fatal("Compress() with bad canonical prefix = nil error, want error")
	}
	if _, err := Compress(map[string]string{"c14n0": "y3"}); err == nil {
		t.Fatal("Compress() with bad shuffled prefix = nil error, want error")
	}
}

func TestCompressRejectsNonInteger(t *testing.T) {
	if _, err := Compress(map[string]string{"c14nX": "b3"}); err == nil {
		t.Fatal("Compress() with non-integer suffix = nil error, want error")
	}
}
