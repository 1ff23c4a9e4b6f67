package loader

import (
	"sync"

	"github.com/vc-suite/bbs2023/pkg/bbserr"
	"github.com/vc-suite/bbs2023/pkg/vc20/credential"
)

// ContextAllowlist validates the @context array of a credential or
// verification-method document against a caller-supplied set of trusted
// context URIs, fetching and caching each one via a DocumentLoader.
//
// Grounded on the teacher's pkg/vc20/context/manager.go, generalized from a
// single hardcoded VC20ContextURL check to an arbitrary allowed set so a
// caller can register its own (e.g. citizenship, BBS feature) vocabularies.
type ContextAllowlist struct {
	loader  *DocumentLoader
	mu      sync.RWMutex
	allowed map[string]bool
}

// NewContextAllowlist always allows the base VC 2.0 context plus whatever
// extra URIs the caller names.
func NewContextAllowlist(l *DocumentLoader, extra ...string) *ContextAllowlist {
	a := &ContextAllowlist{loader: l, allowed: map[string]bool{credential.VC20ContextURL: true}}
	for _, uri := range extra {
		a.allowed[uri] = true
	}
	return a
}

// Allow registers additional trusted context URIs.
func (a *ContextAllowlist) Allow(uris ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, uri := range uris {
		a.allowed[uri] = true
	}
}

// Validate checks that contextURLs is non-empty, begins with the base VC 2.0
// context, every entry is on the allowlist, and every entry resolves through
// the loader.
func (a *ContextAllowlist) Validate(contextURLs []string) error {
	const op = "loader.ContextAllowlist.Validate"

	if len(contextURLs) == 0 {
		return bbserr.New(bbserr.ContextResolutionError, op, credential.ErrMissingContext)
	}
	if contextURLs[0] != credential.VC20ContextURL {
		return bbserr.New(bbserr.ContextResolutionError, op, credential.ErrInvalidBaseContext)
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, uri := range contextURLs {
		if !a.allowed[uri] {
			return bbserr.Newf(bbserr.ContextResolutionError, op, "context %q is not on the allowlist", uri)
		}
		if _, err := a.loader.LoadDocument(uri); err != nil {
			return bbserr.New(bbserr.ContextResolutionError, op, err)
		}
	}
	return nil
}
