package canon

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vc-suite/bbs2023/pkg/bbserr"
)

// XML Schema datatype IRIs that json-gold's canonicalizer assigns to
// JSON-LD-expanded values per the Value Expansion algorithm: numbers get
// xsd:integer or xsd:double, booleans get xsd:boolean, and strings matching
// a date/dateTime shape get the corresponding xsd type when a term's
// context coerces them. Plain strings get no datatype suffix at all.
const (
	xsdInteger  = "http://www.w3.org/2001/XMLSchema#integer"
	xsdDouble   = "http://www.w3.org/2001/XMLSchema#double"
	xsdBoolean  = "http://www.w3.org/2001/XMLSchema#boolean"
	xsdDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"
	xsdDate     = "http://www.w3.org/2001/XMLSchema#date"
)

// JSONPointer is an RFC 6901 pointer into the unsecured document, used to
// name the statements a mandatory/selective group must contain.
type JSONPointer string

// Group is the result of partitioning the canonical statement list for one
// group name: matching holds the statements reachable from the group's
// pointers, nonMatching holds the remainder. Both are keyed by the
// statement's position in the single shared canonical list (spec.md §4.3's
// invariant), so indices stay comparable across groups without
// re-canonicalizing.
type Group struct {
	Matching           map[int]string
	NonMatching        map[int]string
	DeskolemizedNQuads []string
}

// CanonicalizeAndGroup implements the spec.md §4.3 contract: canonicalize
// document with HMAC-shuffled blank-node labels, then partition the
// resulting N-Quad list into named groups.
func CanonicalizeAndGroup(c *Canonicalizer, document map[string]interface{}, hmacKey HMACKey, groupDefinitions map[string][]JSONPointer) (groups map[string]Group, labelMap map[string]string, err error) {
	quads, labelMap, err := CanonicalizeShuffled(c, document, hmacKey)
	if err != nil {
		return nil, nil, err
	}

	groups = make(map[string]Group, len(groupDefinitions))
	for name, pointers := range groupDefinitions {
		anchors := make(map[string]bool)
		for _, p := range pointers {
			collectAnchors(document, p, anchors)
		}

		matchedSubjects := reachableSubjects(quads, anchors)

		matching := make(map[int]string)
		nonMatching := make(map[int]string)
		var deskolemized []string
		for i, q := range quads {
			if quadMatches(q, anchors, matchedSubjects) {
				matching[i] = q.Line()
				deskolemized = append(deskolemized, q.Line())
			} else {
				nonMatching[i] = q.Line()
			}
		}

		groups[name] = Group{
			Matching:           matching,
			NonMatching:        nonMatching,
			DeskolemizedNQuads: deskolemized,
		}
	}

	return groups, labelMap, nil
}

// quadMatches reports whether q belongs to a group defined by anchors and
// matchedSubjects (the transitive blank-node closure computed by
// reachableSubjects).
func quadMatches(q Quad, anchors map[string]bool, matchedSubjects map[string]bool) bool {
	if !isBlank(q.Subject) && anchors[q.Subject] {
		return true
	}
	if !isBlank(q.Predicate) && anchors[q.Predicate] {
		return true
	}
	if !isBlank(q.Object) && anchors[q.Object] {
		return true
	}
	return matchedSubjects[q.Subject]
}

// reachableSubjects computes the set of blank-node subjects "reachable"
// from a group's anchor terms: any quad directly touching an anchor term
// seeds its subject as reachable, and reachability propagates to any blank
// object of an already-reachable subject (a nested anonymous node is part
// of its parent's subtree). This is RDF-statement-level reachability, not
// the teacher's SelectFields JSON-field copy: a pointer can select an
// entire anonymous subgraph, not just a literal leaf.
func reachableSubjects(quads []Quad, anchors map[string]bool) map[string]bool {
	matched := make(map[string]bool)
	for _, q := range quads {
		if (!isBlank(q.Subject) && anchors[q.Subject]) ||
			(!isBlank(q.Predicate) && anchors[q.Predicate]) ||
			(!isBlank(q.Object) && anchors[q.Object]) {
			if isBlank(q.Subject) {
				matched[q.Subject] = true
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for _, q := range quads {
			if matched[q.Subject] && isBlank(q.Object) && !matched[q.Object] {
				matched[q.Object] = true
				changed = true
			}
		}
	}
	return matched
}

// collectAnchors walks the JSON value selected by pointer within document
// and adds every scalar IRI/literal term found (recursively) to anchors.
// These are the named, non-blank RDF terms a group's statements must touch
// to be considered reachable from pointer.
func collectAnchors(document map[string]interface{}, pointer JSONPointer, anchors map[string]bool) {
	value, err := applyPointer(document, pointer)
	if err != nil {
		return
	}
	walkAnchors(value, anchors)
}

// walkAnchors collects every N-Quads term spelling a JSON value could
// RDF-expand to. A JSON string may end up as either a plain literal or an
// IRI reference depending on the document's @context (an "@id"-typed term,
// or any "id"/"issuer"-like value expands to a bracketed IRI, not a
// literal), so both forms go in; matching against the actual canonical
// quads is what discards whichever spelling didn't occur. Numbers and
// booleans always expand to a typed literal, never a bare or plain-quoted
// one, so only their typed spelling is added.
func walkAnchors(value interface{}, anchors map[string]bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		for _, sub := range v {
			walkAnchors(sub, anchors)
		}
	case []interface{}:
		for _, item := range v {
			walkAnchors(item, anchors)
		}
	case string:
		anchors["<"+v+">"] = true
		anchors[literalForm(v)] = true
		if _, err := time.Parse(time.RFC3339, v); err == nil {
			anchors[typedLiteral(v, xsdDateTime)] = true
		} else if _, err := time.Parse("2006-01-02", v); err == nil {
			anchors[typedLiteral(v, xsdDate)] = true
		}
	case float64:
		anchors[numericLiteral(v)] = true
	case bool:
		anchors[typedLiteral(strconv.FormatBool(v), xsdBoolean)] = true
	}
}

// literalForm spells a plain N-Quads string literal: json-gold omits the
// xsd:string datatype suffix for ordinary strings.
func literalForm(v string) string {
	return fmt.Sprintf("%q", v)
}

func typedLiteral(lexical, datatypeIRI string) string {
	return fmt.Sprintf("%q^^<%s>", lexical, datatypeIRI)
}

// numericLiteral spells the N-Quads form a JSON number expands to per
// JSON-LD's Value Expansion algorithm: xsd:integer for an integral value,
// xsd:double otherwise.
func numericLiteral(v float64) string {
	if v == float64(int64(v)) {
		return typedLiteral(strconv.FormatInt(int64(v), 10), xsdInteger)
	}
	return typedLiteral(strconv.FormatFloat(v, 'g', -1, 64), xsdDouble)
}

// applyPointer resolves an RFC 6901 JSON Pointer against document. Grounded
// on the teacher's ApplyJSONPointer (crypto/ecdsa-sd/selection.go).
func applyPointer(document map[string]interface{}, pointer JSONPointer) (interface{}, error) {
	const op = "canon.applyPointer"
	s := string(pointer)
	if s == "" {
		return document, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, bbserr.Newf(bbserr.ProofTransformationErr, op, "JSON pointer must start with '/': %q", s)
	}

	tokens := strings.Split(s[1:], "/")
	var current interface{} = document
	for _, tok := range tokens {
		tok = unescapePointerToken(tok)
		switch v := current.(type) {
		case map[string]interface{}:
			val, ok := v[tok]
			if !ok {
				return nil, bbserr.Newf(bbserr.ProofTransformationErr, op, "pointer %q: no member %q", pointer, tok)
			}
			current = val
		case []interface{}:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, bbserr.Newf(bbserr.ProofTransformationErr, op, "pointer %q: bad array index %q", pointer, tok)
			}
			current = v[idx]
		default:
			return nil, bbserr.Newf(bbserr.ProofTransformationErr, op, "pointer %q: cannot descend into %T", pointer, current)
		}
	}
	return current, nil
}

func unescapePointerToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~1", "/")
	tok = strings.ReplaceAll(tok, "~0", "~")
	return tok
}
