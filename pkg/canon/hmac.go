package canon

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"sort"
	"strconv"

	"github.com/vc-suite/bbs2023/pkg/bbserr"
)

// HMACKeySize is the required key length for the blank-node label shuffle,
// per spec.md §4.5: a 32-byte random value generated fresh for every base
// proof.
const HMACKeySize = 32

// HMACKey drives the pseudorandom, deterministic-per-key blank-node label
// assignment used by the label-map factory (spec.md §4.3 step 1).
type HMACKey []byte

// GenerateHMACKey returns a new random 32-byte HMAC key.
func GenerateHMACKey() (HMACKey, error) {
	const op = "canon.GenerateHMACKey"
	key := make([]byte, HMACKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, bbserr.New(bbserr.ProofTransformationErr, op, err)
	}
	return HMACKey(key), nil
}

func (k HMACKey) digest(label string) []byte {
	mac := hmac.New(sha256.New, k)
	mac.Write([]byte(label))
	return mac.Sum(nil)
}

// ShuffleLabels assigns each canonical blank-node label a new "_:bN" label,
// where N is the label's rank when all labels are sorted by their
// HMAC-SHA-256 digest under k. This reproduces the teacher's
// RandomizeBlankNodeLabels intent (pseudorandom but deterministic per key)
// but assigns dense sequential indices instead of raw hex digests, matching
// spec.md §4.4's "bM" wire convention.
func (k HMACKey) ShuffleLabels(labels []string) (map[string]string, error) {
	const op = "canon.ShuffleLabels"
	if len(k) != HMACKeySize {
		return nil, bbserr.Newf(bbserr.ProofTransformationErr, op, "HMAC key must be %d bytes, got %d", HMACKeySize, len(k))
	}

	type ranked struct {
		label  string
		digest []byte
	}
	entries := make([]ranked, len(labels))
	for i, l := range labels {
		entries[i] = ranked{label: l, digest: k.digest(l)}
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].digest, entries[j].digest) < 0
	})

	labelMap := make(map[string]string, len(entries))
	for i, e := range entries {
		labelMap[e.label] = "_:b" + strconv.Itoa(i)
	}
	return labelMap, nil
}
