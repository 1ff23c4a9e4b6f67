package proof

import (
	"math/big"

	"github.com/vc-suite/bbs2023/internal/bbsprim"
	"github.com/vc-suite/bbs2023/pkg/bbserr"
	"github.com/vc-suite/bbs2023/pkg/keypair"
)

// signForFeature dispatches Issue's BBS signing step per spec.md §4.5 step 4,
// returning the signature and (when the feature needs one) the
// signerNymEntropy the envelope must carry alongside it.
func signForFeature(kp *keypair.KeyPair, opts IssueOptions, bbsHeader []byte, messages []*big.Int) (signature, signerNymEntropyOut []byte, err error) {
	const op = "proof.signForFeature"

	switch opts.Feature {
	case Baseline:
		sig, err := bbsprim.Sign(kp.PrivateKey, kp.PublicKey, bbsHeader, messages)
		if err != nil {
			return nil, nil, bbserr.New(bbserr.ProofGenerationError, op, err)
		}
		return sig.Bytes(), nil, nil

	case AnonymousHolderBinding:
		if opts.Commitment == nil {
			return nil, nil, bbserr.Newf(bbserr.ProofGenerationError, op, "feature requires a holder commitment")
		}
		sig, err := bbsprim.BlindSign(kp.PrivateKey, kp.PublicKey, opts.Commitment, bbsHeader, messages)
		if err != nil {
			return nil, nil, bbserr.New(bbserr.ProofGenerationError, op, err)
		}
		return sig.Bytes(), nil, nil

	case Pseudonym, HolderBindingPseudonym:
		if opts.SignerNymEntropy == nil {
			return nil, nil, bbserr.Newf(bbserr.ProofGenerationError, op, "feature requires signerNymEntropy")
		}
		if opts.Commitment == nil {
			return nil, nil, bbserr.Newf(bbserr.ProofGenerationError, op, "feature requires a holder commitment")
		}
		sig, err := bbsprim.NymSign(kp.PrivateKey, kp.PublicKey, opts.SignerNymEntropy, opts.Commitment, bbsHeader, messages)
		if err != nil {
			return nil, nil, bbserr.New(bbserr.ProofGenerationError, op, err)
		}
		return sig.Bytes(), fixed32(opts.SignerNymEntropy), nil

	default:
		return nil, nil, bbserr.Newf(bbserr.ProofGenerationError, op, "unknown feature %v", opts.Feature)
	}
}

// fixed32 renders a scalar as a fixed 32-byte big-endian value, so the
// envelope's signerNymEntropy component is always 32 bytes long.
func fixed32(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) >= 32 {
		return b[len(b)-32:]
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}
