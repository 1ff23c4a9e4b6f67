package canon

import (
	"strconv"
	"strings"

	"github.com/vc-suite/bbs2023/pkg/bbserr"
)

// SelectDocument builds the holder's revealDocument (spec.md §4.6 step 7):
// a new JSON-LD document containing only the values named by pointers,
// plus @context (required for the verifier to canonicalize the same
// vocabulary) and the root "id"/"type" (present on every VC regardless of
// disclosure choices).
//
// Grounded on the teacher's SelectFields (crypto/ecdsa-sd/selection.go),
// extended with a box-based navigator so intermediate array containers can
// grow in place (the teacher's version only ever targeted object members).
func SelectDocument(document map[string]interface{}, pointers []JSONPointer) (map[string]interface{}, error) {
	const op = "canon.SelectDocument"

	result := make(map[string]interface{})
	if ctx, ok := document["@context"]; ok {
		result["@context"] = ctx
	}
	if id, ok := document["id"]; ok {
		result["id"] = id
	}
	if typ, ok := document["type"]; ok {
		result["type"] = typ
	}

	for _, pointer := range pointers {
		value, err := applyPointer(document, pointer)
		if err != nil {
			return nil, err
		}
		if err := setAtPointer(result, pointer, value); err != nil {
			return nil, bbserr.New(bbserr.ProofTransformationErr, op, err)
		}
	}
	return result, nil
}

// box holds a mutable reference to one container slot (a map, or a slot
// within a slice), so growing a slice in place is visible to its parent.
type box struct {
	get func() interface{}
	set func(interface{})
}

// setAtPointer writes value into target at the location named by pointer,
// creating intermediate objects/arrays as needed.
func setAtPointer(target map[string]interface{}, pointer JSONPointer, value interface{}) error {
	const op = "canon.setAtPointer"
	s := string(pointer)
	if s == "" || !strings.HasPrefix(s, "/") {
		return bbserr.Newf(bbserr.ProofTransformationErr, op, "invalid JSON pointer %q", pointer)
	}
	tokens := strings.Split(s[1:], "/")
	for i, tok := range tokens {
		tokens[i] = unescapePointerToken(tok)
	}

	root := target
	current := box{
		get: func() interface{} { return root },
		set: func(interface{}) {}, // the root map is never replaced
	}

	for i := 0; i < len(tokens)-1; i++ {
		tok := tokens[i]
		childIsIndexed := isArrayIndex(tokens[i+1])
		next, err := descend(current, tok, childIsIndexed)
		if err != nil {
			return err
		}
		current = next
	}

	return writeLeaf(current, tokens[len(tokens)-1], value)
}

func isArrayIndex(tok string) bool {
	_, err := strconv.Atoi(tok)
	return err == nil
}

// descend returns a box for the child named key within current's container,
// creating the child (and growing an enclosing slice) as necessary.
func descend(current box, key string, childIsIndexed bool) (box, error) {
	const op = "canon.descend"
	switch c := current.get().(type) {
	case map[string]interface{}:
		if existing, ok := c[key]; ok {
			k := key
			return box{
				get: func() interface{} { return c[k] },
				set: func(v interface{}) { c[k] = v },
			}, nil
		}
		var fresh interface{}
		if childIsIndexed {
			fresh = []interface{}{}
		} else {
			fresh = map[string]interface{}{}
		}
		c[key] = fresh
		k := key
		return box{
			get: func() interface{} { return c[k] },
			set: func(v interface{}) { c[k] = v },
		}, nil

	case []interface{}:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return box{}, bbserr.Newf(bbserr.ProofTransformationErr, op, "bad array index %q", key)
		}
		for idx >= len(c) {
			c = append(c, nil)
		}
		current.set(c)
		if c[idx] == nil {
			if childIsIndexed {
				c[idx] = []interface{}{}
			} else {
				c[idx] = map[string]interface{}{}
			}
		}
		return box{
			get: func() interface{} { return c[idx] },
			set: func(v interface{}) { c[idx] = v },
		}, nil

	default:
		return box{}, bbserr.Newf(bbserr.ProofTransformationErr, op, "cannot descend into %T", current.get())
	}
}

func writeLeaf(current box, key string, value interface{}) error {
	const op = "canon.writeLeaf"
	switch c := current.get().(type) {
	case map[string]interface{}:
		c[key] = value
		return nil
	case []interface{}:
		idx, err := strconv.Atoi(key)
		if err != nil {
			return bbserr.Newf(bbserr.ProofTransformationErr, op, "bad array index %q", key)
		}
		for idx >= len(c) {
			c = append(c, nil)
		}
		c[idx] = value
		current.set(c)
		return nil
	default:
		return bbserr.Newf(bbserr.ProofTransformationErr, op, "cannot assign into %T", current.get())
	}
}
