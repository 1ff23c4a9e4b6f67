package proof

import (
	"math/big"
	"time"

	"github.com/vc-suite/bbs2023/internal/bbsprim"
	"github.com/vc-suite/bbs2023/pkg/bbserr"
	"github.com/vc-suite/bbs2023/pkg/canon"
	"github.com/vc-suite/bbs2023/pkg/envelope"
	"github.com/vc-suite/bbs2023/pkg/labelmap"
	"github.com/vc-suite/bbs2023/pkg/vc20/credential"
)

// Verify runs the verifier-side pipeline of spec.md §4.7 against a revealed
// document and its derived proof, resolving the public key via resolve.
//
// Unlike the teacher's crypto/ecdsa-sd/verify.go (a stub that parses the
// envelope and returns unimplemented), this runs every step: proof-config
// hashing, label-map-driven recanonicalization, mandatory/non-mandatory
// partitioning, and the feature-dispatched BBS proof check.
func Verify(revealedDocument map[string]interface{}, p *credential.DataIntegrityProof, resolve VerificationMethodResolver) (bool, error) {
	const op = "proof.Verify"

	if err := validateProofType(p.Type, p.Cryptosuite); err != nil {
		return false, err
	}

	c := canon.NewCanonicalizer()

	var created time.Time
	createdSet := p.Created != ""
	if createdSet {
		var err error
		created, err = time.Parse(time.RFC3339, p.Created)
		if err != nil {
			return false, bbserr.New(bbserr.ProofGenerationError, op, err)
		}
	}
	canonicalConfig, err := canonicalProofConfig(c, revealedDocument, p, created, createdSet)
	if err != nil {
		return false, err
	}
	proofHash := sha256Hex(canonicalConfig)

	derived, err := envelope.DecodeDerived(p.ProofValue)
	if err != nil {
		return false, err
	}

	kp, err := resolve(p.VerificationMethod)
	if err != nil {
		return false, bbserr.New(bbserr.ProofVerificationError, op, err)
	}
	if kp.PublicKey == nil {
		return false, bbserr.Newf(bbserr.ProofVerificationError, op, "verification method %q is missing a public key", p.VerificationMethod)
	}

	// §4.7 step 3: canonicalize the revealed document under plain RDFC-1.0,
	// then re-apply the same sort-then-first-appearance renumbering the
	// holder applied to its own combined group (canon.RelabelStandalone),
	// so both sides land on the same "freshLabel" numbering before
	// substituting the holder's labelMap (decompressed, "_:" restored) to
	// recover the names the BBS signature actually covers. json-gold's own
	// c14nN numbering is not used directly: it need not agree with
	// RelabelStandalone's simplified scheme.
	canonical, err := c.Canonicalize(revealedDocument)
	if err != nil {
		return false, err
	}
	rawQuads, err := canon.ParseQuads(canonical)
	if err != nil {
		return false, err
	}
	relabeledQuads, _ := canon.RelabelStandalone(rawQuads)
	restoredLabelMap := restoreBlankPrefixes(labelmap.Decompress(derived.CompressedLabelMap))
	quads := canon.SubstituteAndResort(relabeledQuads, restoredLabelMap)

	mandatorySet := indexSet(derived.MandatoryIndexes)
	var mandatoryLines, nonMandatoryLines []string
	for i, q := range quads {
		if mandatorySet[i] {
			mandatoryLines = append(mandatoryLines, q.Line())
		} else {
			nonMandatoryLines = append(nonMandatoryLines, q.Line())
		}
	}

	mandatoryHash := sha256Hex(joinNQuads(mandatoryLines))
	bbsHeader := make([]byte, 0, 64)
	bbsHeader = append(bbsHeader, proofHash[:]...)
	bbsHeader = append(bbsHeader, mandatoryHash[:]...)

	disclosedMessages := make(map[int]*big.Int, len(nonMandatoryLines))
	scalars := bbsprim.MessagesToScalars(linesToBytes(nonMandatoryLines))
	for _, idx := range derived.SelectiveIndexes {
		if idx < 0 || idx >= len(scalars) {
			return false, bbserr.Newf(bbserr.ProofVerificationError, op, "selective index %d out of range", idx)
		}
		disclosedMessages[idx] = scalars[idx]
	}

	proof, err := bbsprim.ProofFromBytes(derived.BBSProof)
	if err != nil {
		return false, bbserr.New(bbserr.ProofVerificationError, op, err)
	}

	return verifyProof(kp.PublicKey, proof, derived, bbsHeader, disclosedMessages)
}

// verifyProof dispatches the BBS proof check per feature, per spec.md §4.7
// step 5.
func verifyProof(pk *bbsprim.PublicKey, proof *bbsprim.Proof, derived *envelope.DerivedComponents, bbsHeader []byte, disclosedMessages map[int]*big.Int) (bool, error) {
	const op = "proof.verifyProof"

	switch derived.Feature {
	case Baseline:
		ok, err := bbsprim.ProofVerify(pk, proof, bbsHeader, derived.PresentationHeader, disclosedMessages, derived.SelectiveIndexes, derived.LengthBBSMessages)
		if err != nil {
			return false, bbserr.New(bbserr.ProofVerificationError, op, err)
		}
		return ok, nil

	case AnonymousHolderBinding:
		ok, err := bbsprim.BlindProofVerify(pk, proof, bbsHeader, derived.PresentationHeader, disclosedMessages, derived.SelectiveIndexes, derived.LengthBBSMessages)
		if err != nil {
			return false, bbserr.New(bbserr.ProofVerificationError, op, err)
		}
		return ok, nil

	case Pseudonym:
		// derived.Pseudonym and derived.NymDomain are not checked here:
		// NymProofVerify takes neither, so the result does not depend on
		// the pseudonym value the envelope carries.
		ok, err := bbsprim.NymProofVerify(pk, proof, bbsHeader, derived.PresentationHeader, disclosedMessages, derived.SelectiveIndexes, derived.LengthBBSMessages, 0)
		if err != nil {
			return false, bbserr.New(bbserr.ProofVerificationError, op, err)
		}
		return ok, nil

	case HolderBindingPseudonym:
		ok, err := bbsprim.NymProofVerify(pk, proof, bbsHeader, derived.PresentationHeader, disclosedMessages, derived.SelectiveIndexes, derived.LengthBBSMessages, 1)
		if err != nil {
			return false, bbserr.New(bbserr.ProofVerificationError, op, err)
		}
		return ok, nil

	default:
		return false, bbserr.Newf(bbserr.ProofVerificationError, op, "unknown feature %v", derived.Feature)
	}
}

func restoreBlankPrefixes(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out["_:"+k] = "_:" + v
	}
	return out
}

func indexSet(indexes []int) map[int]bool {
	s := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		s[i] = true
	}
	return s
}
