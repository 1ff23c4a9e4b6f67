package proof

import (
	"math/big"
	"time"

	"github.com/vc-suite/bbs2023/internal/bbsprim"
	"github.com/vc-suite/bbs2023/pkg/bbserr"
	"github.com/vc-suite/bbs2023/pkg/canon"
	"github.com/vc-suite/bbs2023/pkg/envelope"
	"github.com/vc-suite/bbs2023/pkg/vc20/credential"
)

// IssueOptions carries the proof options and feature-specific inputs an
// issuer supplies to Issue, per spec.md §4.5.
type IssueOptions struct {
	VerificationMethod string
	ProofPurpose       string
	Created            *time.Time
	PreviousProof      string

	MandatoryPointers []canon.JSONPointer
	Feature           Feature

	// Commitment is required for ANONYMOUS_HOLDER_BINDING and for the two
	// pseudonym features (the holder's blind commitment, verified out of
	// band before Issue is called).
	Commitment *bbsprim.Commitment
	// SignerNymEntropy is required for PSEUDONYM and
	// HOLDER_BINDING_PSEUDONYM.
	SignerNymEntropy *big.Int
}

// Issue runs the Transform, Config, Hash, and Serialize steps of spec.md
// §4.5, producing a DataIntegrityProof whose proofValue is a base envelope.
func Issue(document map[string]interface{}, opts IssueOptions, resolve VerificationMethodResolver) (*credential.DataIntegrityProof, error) {
	const op = "proof.Issue"

	if err := validateProofType(credential.ProofTypeDataIntegrity, cryptosuiteBBS2023); err != nil {
		return nil, err
	}
	if opts.VerificationMethod == "" {
		return nil, bbserr.Newf(bbserr.ProofTransformationErr, op, "verificationMethod is required")
	}

	// Transform.
	c := canon.NewCanonicalizer()
	hmacKey, err := canon.GenerateHMACKey()
	if err != nil {
		return nil, bbserr.New(bbserr.ProofTransformationErr, op, err)
	}
	groups, _, err := canon.CanonicalizeAndGroup(c, document, hmacKey, map[string][]canon.JSONPointer{
		"mandatory": opts.MandatoryPointers,
	})
	if err != nil {
		return nil, err
	}
	mandatory := groups["mandatory"]

	p := &credential.DataIntegrityProof{
		Type:               credential.ProofTypeDataIntegrity,
		Cryptosuite:        cryptosuiteBBS2023,
		VerificationMethod: opts.VerificationMethod,
		ProofPurpose:       opts.ProofPurpose,
		PreviousProof:      opts.PreviousProof,
	}

	// Config.
	var created time.Time
	createdSet := opts.Created != nil
	if createdSet {
		created = *opts.Created
		p.Created = created.UTC().Format(time.RFC3339)
	}
	canonicalConfig, err := canonicalProofConfig(c, document, p, created, createdSet)
	if err != nil {
		return nil, err
	}

	// Hash.
	proofHash := sha256Hex(canonicalConfig)
	mandatoryLines := orderedByIndex(mandatory.Matching)
	mandatoryHash := sha256Hex(joinNQuads(mandatoryLines))

	bbsHeader := make([]byte, 0, 64)
	bbsHeader = append(bbsHeader, proofHash[:]...)
	bbsHeader = append(bbsHeader, mandatoryHash[:]...)

	// Serialize: resolve keys, sign, envelope-encode.
	kp, err := resolve(opts.VerificationMethod)
	if err != nil {
		return nil, bbserr.New(bbserr.ProofGenerationError, op, err)
	}
	if kp.PrivateKey == nil || kp.PublicKey == nil {
		return nil, bbserr.Newf(bbserr.ProofGenerationError, op, "verification method %q is missing key material", opts.VerificationMethod)
	}

	nonMandatoryLines := orderedByIndex(mandatory.NonMatching)
	bbsMessages := bbsprim.MessagesToScalars(linesToBytes(nonMandatoryLines))

	bbsSignature, signerNymEntropyOut, err := signForFeature(kp, opts, bbsHeader, bbsMessages)
	if err != nil {
		return nil, err
	}

	envC := &envelope.BaseComponents{
		Feature:           opts.Feature,
		BBSSignature:      bbsSignature,
		BBSHeader:         bbsHeader,
		PublicKey:         kp.PublicKey.Bytes(),
		HMACKey:           []byte(hmacKey),
		MandatoryPointers: pointerStrings(opts.MandatoryPointers),
		SignerNymEntropy:  signerNymEntropyOut,
	}
	proofValue, err := envelope.EncodeBase(envC)
	if err != nil {
		return nil, err
	}
	p.ProofValue = proofValue

	return p, nil
}

func linesToBytes(lines []string) [][]byte {
	out := make([][]byte, len(lines))
	for i, l := range lines {
		out[i] = []byte(l)
	}
	return out
}
