package bbsprim

import (
	"fmt"
	"math/big"
)

// Commitment is an opaque holder-supplied commitment (and accompanying
// proof of well-formedness) used by the ANONYMOUS_HOLDER_BINDING feature.
// The core pipeline treats this as a single extra hidden message slotted in
// ahead of the issuer's own messages, matching how the IETF BBS blind-
// signature extension folds a Pedersen commitment into the same
// accumulator the base signature covers.
type Commitment struct {
	Value *big.Int
}

// BlindSign signs header and messages on behalf of a holder who has
// already committed to an additional (unseen by the issuer) value via
// commitment. The commitment is folded in as message index 0 of an
// extended vector; the issuer-supplied messages shift by one.
func BlindSign(sk *PrivateKey, pk *PublicKey, commitment *Commitment, header []byte, messages []*big.Int) (*Signature, error) {
	if commitment == nil {
		return nil, fmt.Errorf("bbsprim: commitment is required for blind signing")
	}
	extended := make([]*big.Int, 0, len(messages)+1)
	extended = append(extended, commitment.Value)
	extended = append(extended, messages...)
	return Sign(sk, pk, header, extended)
}

// BlindProofGen derives a disclosure proof over a blind-signed credential.
// holderSecret is the discrete-log witness behind the original commitment;
// it is never disclosed, so index 0 of the extended vector always stays
// hidden regardless of the caller's disclosedIndexes (which are expressed
// in terms of the issuer's own message vector and are shifted by one here).
func BlindProofGen(pk *PublicKey, sig *Signature, holderSecret *big.Int, header, presentationHeader []byte, messages []*big.Int, disclosedIndexes []int) (*Proof, error) {
	extended := make([]*big.Int, 0, len(messages)+1)
	extended = append(extended, holderSecret)
	extended = append(extended, messages...)
	shifted := make([]int, len(disclosedIndexes))
	for i, idx := range disclosedIndexes {
		shifted[i] = idx + 1
	}
	return ProofGen(pk, sig, header, presentationHeader, extended, shifted)
}

// BlindProofVerify verifies a proof produced by BlindProofGen; the caller's
// disclosedMessages/disclosedIndexes are in the issuer's own (unshifted)
// index space.
func BlindProofVerify(pk *PublicKey, proof *Proof, header, presentationHeader []byte, disclosedMessages map[int]*big.Int, disclosedIndexes []int, totalMessageCount int) (bool, error) {
	shiftedMessages := make(map[int]*big.Int, len(disclosedMessages))
	for idx, m := range disclosedMessages {
		shiftedMessages[idx+1] = m
	}
	shiftedIndexes := make([]int, len(disclosedIndexes))
	for i, idx := range disclosedIndexes {
		shiftedIndexes[i] = idx + 1
	}
	return ProofVerify(pk, proof, header, presentationHeader, shiftedMessages, shiftedIndexes, totalMessageCount+1)
}

// NymSign signs on behalf of a holder binding a pseudonym secret in
// addition to a blind commitment; used by PSEUDONYM and
// HOLDER_BINDING_PSEUDONYM.
func NymSign(sk *PrivateKey, pk *PublicKey, signerNymEntropy *big.Int, commitment *Commitment, header []byte, messages []*big.Int) (*Signature, error) {
	extended := make([]*big.Int, 0, len(messages)+2)
	extended = append(extended, signerNymEntropy)
	if commitment != nil {
		extended = append(extended, commitment.Value)
	} else {
		extended = append(extended, big.NewInt(0))
	}
	extended = append(extended, messages...)
	return Sign(sk, pk, header, extended)
}

// NymProofGen derives a disclosure proof that also outputs a domain-bound
// pseudonym. committedMessages is empty for PSEUDONYM and [holderSecret]
// for HOLDER_BINDING_PSEUDONYM, per spec.md §4.6 step 6.
func NymProofGen(pk *PublicKey, sig *Signature, signerNymEntropy *big.Int, committedMessages []*big.Int, nymDomain []byte, header, presentationHeader []byte, messages []*big.Int, disclosedIndexes []int) (*Proof, []byte, error) {
	extended := make([]*big.Int, 0, len(messages)+1+len(committedMessages))
	extended = append(extended, signerNymEntropy)
	extended = append(extended, committedMessages...)
	extended = append(extended, messages...)

	shift := 1 + len(committedMessages)
	shifted := make([]int, len(disclosedIndexes))
	for i, idx := range disclosedIndexes {
		shifted[i] = idx + shift
	}

	proof, err := ProofGen(pk, sig, header, presentationHeader, extended, shifted)
	if err != nil {
		return nil, nil, err
	}

	nymSecret := signerNymEntropy
	if len(committedMessages) > 0 {
		nymSecret = committedMessages[0]
	}
	pseudonym := PseudonymBytes(Pseudonym(nymSecret, nymDomain))
	return proof, pseudonym, nil
}

// NymProofVerify verifies a proof produced by NymProofGen. It takes neither
// the pseudonym nor nymDomain, so the pseudonym is not checked; it only
// confirms the disclosed-message pairing relation, exactly as ProofVerify
// does for the BASELINE feature.
func NymProofVerify(pk *PublicKey, proof *Proof, header, presentationHeader []byte, disclosedMessages map[int]*big.Int, disclosedIndexes []int, totalMessageCount, committedCount int) (bool, error) {
	shift := 1 + committedCount
	shiftedMessages := make(map[int]*big.Int, len(disclosedMessages))
	for idx, m := range disclosedMessages {
		shiftedMessages[idx+shift] = m
	}
	shiftedIndexes := make([]int, len(disclosedIndexes))
	for i, idx := range disclosedIndexes {
		shiftedIndexes[i] = idx + shift
	}
	return ProofVerify(pk, proof, header, presentationHeader, shiftedMessages, shiftedIndexes, totalMessageCount+shift)
}
