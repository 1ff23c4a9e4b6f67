package canon

import (
	"sort"

	"github.com/piprate/json-gold/ld"

	"github.com/vc-suite/bbs2023/loader"
	"github.com/vc-suite/bbs2023/pkg/bbserr"
)

// Canonicalizer wraps json-gold's URDNA2015 (RDFC-1.0) normalization.
type Canonicalizer struct {
	options *ld.JsonLdOptions
}

// NewCanonicalizer builds a Canonicalizer configured for RDFC-1.0 output as
// N-Quads. Context documents resolve through loader.Global(), so embedded
// well-known contexts (VC 2.0 and VC 1.1, from contextstore) never touch the
// network and anything else fetched is cached process-wide.
func NewCanonicalizer() *Canonicalizer {
	opts := loader.Options("")
	opts.Algorithm = "URDNA2015"
	opts.Format = "application/n-quads"
	return &Canonicalizer{options: opts}
}

// Canonicalize returns the document's RDFC-1.0 canonical N-Quads, with
// json-gold's own c14nN blank-node labels intact (the caller shuffles them).
func (c *Canonicalizer) Canonicalize(doc interface{}) (string, error) {
	const op = "canon.Canonicalize"
	proc := ld.NewJsonLdProcessor()
	normalized, err := proc.Normalize(doc, c.options)
	if err != nil {
		return "", bbserr.New(bbserr.ProofTransformationErr, op, err)
	}
	str, ok := normalized.(string)
	if !ok {
		return "", bbserr.Newf(bbserr.ProofTransformationErr, op, "unexpected normalize result type %T", normalized)
	}
	return str, nil
}

// shuffledLabeledQuads holds a quad alongside the HMAC-shuffled label
// substitution already applied to its text, kept paired through the
// resort-after-substitute step below.
type shuffledLabeledQuads struct {
	line string
	quad Quad
}

// CanonicalizeShuffled canonicalizes doc and replaces every json-gold c14nN
// blank-node label with an HMAC-shuffled _:bN label, per spec.md §4.3 step 1.
//
// The teacher's hmac.go substitutes labels with strings.ReplaceAll but never
// re-sorts the N-Quad list afterward; the lexicographic order of "_:c14n2"
// vs "_:c14n10" differs from that of their substituted "_:bN" counterparts,
// so a consumer expecting the final list ordered by its own emitted labels
// (required so issuer and holder agree on statement indices) sees a
// different order than what was actually signed. This implementation
// re-sorts after substitution to fix that.
func CanonicalizeShuffled(c *Canonicalizer, doc interface{}, hmacKey HMACKey) (quads []Quad, labelMap map[string]string, err error) {
	const op = "canon.CanonicalizeShuffled"

	raw, err := c.Canonicalize(doc)
	if err != nil {
		return nil, nil, err
	}
	rawQuads, err := ParseQuads(raw)
	if err != nil {
		return nil, nil, err
	}

	original := collectBlankLabels(rawQuads)
	labelMap, err = hmacKey.ShuffleLabels(original)
	if err != nil {
		return nil, nil, bbserr.New(bbserr.ProofTransformationErr, op, err)
	}

	relabeled := make([]shuffledLabeledQuads, 0, len(rawQuads))
	for _, q := range rawQuads {
		nq := Quad{
			Subject:   substituteLabel(q.Subject, labelMap),
			Predicate: substituteLabel(q.Predicate, labelMap),
			Object:    substituteLabel(q.Object, labelMap),
			Graph:     substituteLabel(q.Graph, labelMap),
		}
		relabeled = append(relabeled, shuffledLabeledQuads{line: nq.Line(), quad: nq})
	}

	sort.Slice(relabeled, func(i, j int) bool {
		return relabeled[i].line < relabeled[j].line
	})

	quads = make([]Quad, len(relabeled))
	for i, r := range relabeled {
		quads[i] = r.quad
	}
	return quads, labelMap, nil
}

// SubstituteAndResort renames every blank-node term in quads per labelMap
// and re-sorts the result lexicographically under the new labels, the same
// resort-after-substitute step CanonicalizeShuffled performs internally.
// Used by the verification pipeline (spec.md §4.7 step 3) to replay the
// holder's relabeling using the labelMap carried in the disclosure proof
// instead of an HMAC-derived one.
func SubstituteAndResort(quads []Quad, labelMap map[string]string) []Quad {
	relabeled := make([]shuffledLabeledQuads, 0, len(quads))
	for _, q := range quads {
		nq := Quad{
			Subject:   substituteLabel(q.Subject, labelMap),
			Predicate: substituteLabel(q.Predicate, labelMap),
			Object:    substituteLabel(q.Object, labelMap),
			Graph:     substituteLabel(q.Graph, labelMap),
		}
		relabeled = append(relabeled, shuffledLabeledQuads{line: nq.Line(), quad: nq})
	}
	sort.Slice(relabeled, func(i, j int) bool {
		return relabeled[i].line < relabeled[j].line
	})
	out := make([]Quad, len(relabeled))
	for i, r := range relabeled {
		out[i] = r.quad
	}
	return out
}

// collectBlankLabels returns every distinct blank-node label appearing as a
// quad term, in order of first appearance.
func collectBlankLabels(quads []Quad) []string {
	seen := make(map[string]bool)
	var labels []string
	note := func(term string) {
		if term != "" && isBlank(term) && !seen[term] {
			seen[term] = true
			labels = append(labels, term)
		}
	}
	for _, q := range quads {
		note(q.Subject)
		note(q.Object)
		note(q.Graph)
	}
	return labels
}

func substituteLabel(term string, labelMap map[string]string) string {
	if term == "" || !isBlank(term) {
		return term
	}
	if replacement, ok := labelMap[term]; ok {
		return replacement
	}
	return term
}
