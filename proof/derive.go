package proof

import (
	"math/big"
	"strings"

	"github.com/vc-suite/bbs2023/internal/bbsprim"
	"github.com/vc-suite/bbs2023/pkg/bbserr"
	"github.com/vc-suite/bbs2023/pkg/canon"
	"github.com/vc-suite/bbs2023/pkg/envelope"
	"github.com/vc-suite/bbs2023/pkg/labelmap"
	"github.com/vc-suite/bbs2023/pkg/vc20/credential"
)

// DeriveOptions carries the holder's inputs to Derive, per spec.md §4.6.
type DeriveOptions struct {
	SelectivePointers  []canon.JSONPointer
	PresentationHeader []byte

	// HolderSecret is the discrete-log witness behind the issuer-time
	// commitment; required for ANONYMOUS_HOLDER_BINDING and
	// HOLDER_BINDING_PSEUDONYM.
	HolderSecret *big.Int
	// NymDomain selects the pseudonym's verifier-specific context;
	// required for PSEUDONYM and HOLDER_BINDING_PSEUDONYM.
	NymDomain []byte
}

// Derive runs the holder-side disclosure-proof derivation pipeline of
// spec.md §4.6, consuming the issuer's base proof and producing the
// revealDocument (spec.md §4.6 step 7) alongside a new DataIntegrityProof
// carrying a derived envelope. The caller presents both together.
func Derive(document map[string]interface{}, baseProofValue string, proofTemplate credential.DataIntegrityProof, opts DeriveOptions) (revealDocument map[string]interface{}, derivedProof *credential.DataIntegrityProof, err error) {
	const op = "proof.Derive"

	base, err := envelope.DecodeBase(baseProofValue)
	if err != nil {
		return nil, nil, err
	}

	hmacKey := canon.HMACKey(base.HMACKey)
	mandatoryPointers := toPointers(base.MandatoryPointers)
	combinedPointers := append(append([]canon.JSONPointer{}, mandatoryPointers...), opts.SelectivePointers...)

	c := canon.NewCanonicalizer()
	groups, _, err := canon.CanonicalizeAndGroup(c, document, hmacKey, map[string][]canon.JSONPointer{
		"mandatory": mandatoryPointers,
		"selective": opts.SelectivePointers,
		"combined":  combinedPointers,
	})
	if err != nil {
		return nil, nil, err
	}
	mandatory, selective, combined := groups["mandatory"], groups["selective"], groups["combined"]

	combinedKeys := sortedKeys(combined.Matching)
	mandatoryIndexes := positionsOf(sortedKeys(mandatory.Matching), combinedKeys)

	nonMandatoryKeys := sortedKeys(mandatory.NonMatching)
	selectiveIndexes := positionsOf(sortedKeys(selective.Matching), nonMandatoryKeys)

	bbsMessageLines := orderedByIndex(mandatory.NonMatching)
	bbsMessages := bbsprim.MessagesToScalars(linesToBytes(bbsMessageLines))

	signature, err := bbsprim.SignatureFromBytes(base.BBSSignature)
	if err != nil {
		return nil, nil, bbserr.New(bbserr.ProofGenerationError, op, err)
	}
	publicKey, err := bbsprim.PublicKeyFromBytes(base.PublicKey)
	if err != nil {
		return nil, nil, bbserr.New(bbserr.ProofGenerationError, op, err)
	}

	bbsProof, pseudonym, lengthBBSMessages, err := deriveProof(publicKey, signature, base, opts, bbsMessages, selectiveIndexes)
	if err != nil {
		return nil, nil, err
	}

	revealed, err := canon.SelectDocument(document, combinedPointers)
	if err != nil {
		return nil, nil, err
	}

	// Bridge the holder's private (HMAC-shuffled) label space to the
	// verifier's plain-RDFC1.0 label space, per spec.md §4.6 steps 7-8: a
	// verifier who independently canonicalizes revealDocument arrives at
	// its own deterministic labels for the same underlying blank nodes;
	// canonicalIdMap names, for each of the holder's shuffled labels, the
	// fresh label a verifier applying the identical deterministic
	// renumbering would assign. verifierLabelMap inverts that so the
	// verifier can substitute its own fresh labels back to the holder's.
	combinedQuads, err := canon.ParseQuads(joinNQuads(orderedByIndex(combined.Matching)))
	if err != nil {
		return nil, nil, bbserr.New(bbserr.ProofGenerationError, op, err)
	}
	_, canonicalIdMap := canon.RelabelStandalone(combinedQuads)

	verifierLabelMap := make(map[string]string, len(canonicalIdMap))
	for shuffledLabel, freshLabel := range canonicalIdMap {
		verifierLabelMap[stripBlankPrefix(freshLabel)] = stripBlankPrefix(shuffledLabel)
	}
	compressedLabelMap, err := labelmap.Compress(verifierLabelMap)
	if err != nil {
		return nil, nil, err
	}

	derivedC := &envelope.DerivedComponents{
		Feature:            base.Feature,
		BBSProof:           bbsProof,
		CompressedLabelMap: compressedLabelMap,
		MandatoryIndexes:   mandatoryIndexes,
		SelectiveIndexes:   selectiveIndexes,
		PresentationHeader: opts.PresentationHeader,
		LengthBBSMessages:  lengthBBSMessages,
		NymDomain:          opts.NymDomain,
		Pseudonym:          pseudonym,
	}
	proofValue, err := envelope.EncodeDerived(derivedC)
	if err != nil {
		return nil, nil, err
	}

	derived := proofTemplate
	derived.ProofValue = proofValue
	return revealed, &derived, nil
}

// deriveProof dispatches the BBS disclosure-proof step per feature, per
// spec.md §4.6 step 6.
func deriveProof(pk *bbsprim.PublicKey, sig *bbsprim.Signature, base *envelope.BaseComponents, opts DeriveOptions, bbsMessages []*big.Int, selectiveIndexes []int) (proofBytes, pseudonym []byte, lengthBBSMessages int, err error) {
	const op = "proof.deriveProof"

	switch base.Feature {
	case Baseline:
		proof, err := bbsprim.ProofGen(pk, sig, base.BBSHeader, opts.PresentationHeader, bbsMessages, selectiveIndexes)
		if err != nil {
			return nil, nil, 0, bbserr.New(bbserr.ProofGenerationError, op, err)
		}
		return proof.Bytes(), nil, len(bbsMessages), nil

	case AnonymousHolderBinding:
		if opts.HolderSecret == nil {
			return nil, nil, 0, bbserr.Newf(bbserr.ProofGenerationError, op, "feature requires holderSecret")
		}
		proof, err := bbsprim.BlindProofGen(pk, sig, opts.HolderSecret, base.BBSHeader, opts.PresentationHeader, bbsMessages, selectiveIndexes)
		if err != nil {
			return nil, nil, 0, bbserr.New(bbserr.ProofGenerationError, op, err)
		}
		return proof.Bytes(), nil, len(bbsMessages), nil

	case Pseudonym, HolderBindingPseudonym:
		if opts.NymDomain == nil {
			return nil, nil, 0, bbserr.Newf(bbserr.ProofGenerationError, op, "feature requires nymDomain")
		}
		signerNymEntropy := new(big.Int).SetBytes(base.SignerNymEntropy)
		var committed []*big.Int
		if base.Feature == HolderBindingPseudonym {
			if opts.HolderSecret == nil {
				return nil, nil, 0, bbserr.Newf(bbserr.ProofGenerationError, op, "feature requires holderSecret")
			}
			committed = []*big.Int{opts.HolderSecret}
		}
		proof, pseudo, err := bbsprim.NymProofGen(pk, sig, signerNymEntropy, committed, opts.NymDomain, base.BBSHeader, opts.PresentationHeader, bbsMessages, selectiveIndexes)
		if err != nil {
			return nil, nil, 0, bbserr.New(bbserr.ProofGenerationError, op, err)
		}
		return proof.Bytes(), pseudo, len(bbsMessages), nil

	default:
		return nil, nil, 0, bbserr.Newf(bbserr.ProofGenerationError, op, "unknown feature %v", base.Feature)
	}
}

func stripBlankPrefix(label string) string {
	return strings.TrimPrefix(label, "_:")
}

// positionsOf returns, for each key in subset (already ascending), its
// position within enclosing (also ascending) — "index within the enclosing
// list, not within the full canonical list" per spec.md §4.6 step 4.
func positionsOf(subset, enclosing []int) []int {
	pos := make(map[int]int, len(enclosing))
	for i, k := range enclosing {
		pos[k] = i
	}
	out := make([]int, 0, len(subset))
	for _, k := range subset {
		if p, ok := pos[k]; ok {
			out = append(out, p)
		}
	}
	return out
}
