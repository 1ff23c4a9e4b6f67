// Package canon implements the Canonical Grouping collaborator contract of
// spec.md §4.3: RDFC-1.0 canonicalization via json-gold with HMAC-shuffled
// blank-node labels, and JSON-Pointer-driven statement grouping into
// matching/nonMatching partitions over a single ordered N-Quad list.
//
// Grounded on the teacher's rdfcanon.Canonicalizer (json-gold wrapper) and
// crypto/ecdsa-sd's hmac.go/selection.go, generalized per SPEC_FULL.md §4.3a.
package canon

import (
	"strings"

	"github.com/vc-suite/bbs2023/pkg/bbserr"
)

// Quad is a parsed N-Quad statement. Graph is empty for the default graph.
type Quad struct {
	Subject   string
	Predicate string
	Object    string
	Graph     string
}

// Line reconstructs the N-Quad's canonical textual form (without trailing
// newline).
func (q Quad) Line() string {
	var b strings.Builder
	b.WriteString(q.Subject)
	b.WriteByte(' ')
	b.WriteString(q.Predicate)
	b.WriteByte(' ')
	b.WriteString(q.Object)
	if q.Graph != "" {
		b.WriteByte(' ')
		b.WriteString(q.Graph)
	}
	b.WriteString(" .")
	return b.String()
}

// isBlank reports whether term is a blank-node identifier.
func isBlank(term string) bool {
	return strings.HasPrefix(term, "_:")
}

// parseLines splits canonical N-Quads text into trimmed, non-empty lines.
func parseLines(nquads string) []string {
	raw := strings.Split(nquads, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}

// parseQuad parses a single canonical N-Quad line into its four terms. This
// is a whitespace splitter over unquoted regions, sufficient for
// machine-generated canonical N-Quads: literal values may contain spaces but
// never an un-escaped double quote, so quote-tracking alone identifies safe
// split points.
func parseQuad(line string) (Quad, error) {
	const op = "canon.parseQuad"
	trimmed := strings.TrimSpace(line)
	trimmed = strings.TrimSuffix(trimmed, ".")
	trimmed = strings.TrimSpace(trimmed)

	parts := splitTerms(trimmed)
	if len(parts) < 3 {
		return Quad{}, bbserr.Newf(bbserr.ProofTransformationErr, op, "malformed N-Quad line: %q", line)
	}
	q := Quad{Subject: parts[0], Predicate: parts[1], Object: parts[2]}
	if len(parts) >= 4 {
		q.Graph = parts[3]
	}
	return q, nil
}

func splitTerms(line string) []string {
	var parts []string
	var cur strings.Builder
	inQuotes := false
	escaped := false

	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}

	for _, ch := range line {
		switch {
		case escaped:
			cur.WriteRune(ch)
			escaped = false
		case ch == '\\':
			cur.WriteRune(ch)
			escaped = true
		case ch == '"':
			inQuotes = !inQuotes
			cur.WriteRune(ch)
		case ch == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(ch)
		}
	}
	flush()
	return parts
}

// ParseQuads parses canonical N-Quads text into an ordered Quad slice,
// preserving line order.
func ParseQuads(nquads string) ([]Quad, error) {
	lines := parseLines(nquads)
	quads := make([]Quad, 0, len(lines))
	for _, l := range lines {
		q, err := parseQuad(l)
		if err != nil {
			return nil, err
		}
		quads = append(quads, q)
	}
	return quads, nil
}
