// Package labelmap implements the Label-Map Compression contract of
// spec.md §4.4: converting between the string-keyed "c14nN"/"bM" label map
// produced by canonicalization and the integer-keyed wire form carried in
// the envelope.
//
// This is a two-line prefix-strip-and-parse operation; no library in the
// example corpus wraps blank-node label compression specifically, so it is
// built directly on strconv/strings rather than forced onto a dependency
// that doesn't fit.
package labelmap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vc-suite/bbs2023/pkg/bbserr"
)

const (
	canonicalPrefix = "c14n"
	shuffledPrefix  = "b"
)

// Compress converts a canonical-label -> shuffled-label map into its
// integer-keyed wire form.
func Compress(labelMap map[string]string) (map[int]int, error) {
	const op = "labelmap.Compress"
	out := make(map[int]int, len(labelMap))
	for k, v := range labelMap {
		ki, err := parseSuffix(k, canonicalPrefix)
		if err != nil {
			return nil, bbserr.New(bbserr.ProofGenerationError, op, err)
		}
		vi, err := parseSuffix(v, shuffledPrefix)
		if err != nil {
			return nil, bbserr.New(bbserr.ProofGenerationError, op, err)
		}
		out[ki] = vi
	}
	return out, nil
}

// Decompress is the inverse of Compress, prepending the fixed prefixes.
func Decompress(m map[int]int) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[canonicalPrefix+strconv.Itoa(k)] = shuffledPrefix + strconv.Itoa(v)
	}
	return out
}

func parseSuffix(s, prefix string) (int, error) {
	if !strings.HasPrefix(s, prefix) {
		return 0, fmt.Errorf("label %q does not begin with %q", s, prefix)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, prefix))
	if err != nil {
		return 0, fmt.Errorf("label %q has non-integer suffix: %w", s, err)
	}
	return n, nil
}
