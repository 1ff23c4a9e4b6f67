// Package bbsprim is the BBS signature primitive collaborator: key
// generation, Sign/Verify over a header and a variable-length message
// vector, and ProofGen/ProofVerify for selective disclosure. It follows the
// shape of the IETF cfrg-bbs-signatures scheme (a BBS+ style accumulator
// signature over BLS12-381, proven with a Fiat-Shamir Schnorr proof of
// knowledge of the undisclosed messages and signature blinding factors).
//
// Unlike a key-bound message count, generators are derived on demand for
// however many messages a given header/message-vector pair needs, since the
// caller (the proof pipeline) presents a different non-mandatory statement
// count per credential.
package bbsprim

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"
	"sort"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Sizes per the suite: 32-byte scalar private key, 96-byte compressed G2
// public key, 80-byte signature (48-byte compressed G1 point A followed by
// the 32-byte scalar e).
const (
	PrivateKeySize = 32
	PublicKeySize  = 96
	SignatureSize  = 80
)

var order = fr.Modulus()

// PrivateKey is a BBS signing key: a nonzero scalar in [1, r).
type PrivateKey struct {
	X *big.Int
}

// PublicKey is the G2 public key W = G2 * x. Generators are derived on
// demand by baseGenerator, not cached here.
type PublicKey struct {
	W bls12381.G2Affine
}

// Signature is a BBS signature: (A, e) where A is a G1 point and e a scalar.
type Signature struct {
	A bls12381.G1Affine
	E *big.Int
}

// Proof is the selective-disclosure zero-knowledge proof of knowledge of a
// signature over a partially-disclosed message vector.
type Proof struct {
	APrime bls12381.G1Affine
	ABar   bls12381.G1Affine
	D      bls12381.G1Affine
	C      *big.Int
	EHat   *big.Int
	SHat   *big.Int
	MHat   map[int]*big.Int
}

func randomScalar() (*big.Int, error) {
	for {
		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		s := new(big.Int).SetBytes(buf)
		s.Mod(s, order)
		if s.Sign() != 0 {
			return s, nil
		}
	}
}

// hashToScalar reduces an arbitrary-length octet string to a nonzero scalar
// in [1, r). This mirrors the domain-separated hash_to_scalar step of the
// BBS draft without pulling in a dedicated expand_message_xmd dependency:
// SHA-256 over the tagged input is uniform enough for a deterministic,
// non-adversarial domain/message encoding step.
func hashToScalar(dst string, parts ...[]byte) *big.Int {
	h := sha256.New()
	h.Write([]byte(dst))
	for _, p := range parts {
		var lenBuf [8]byte
		lenBuf[0] = byte(len(p) >> 24)
		lenBuf[1] = byte(len(p) >> 16)
		lenBuf[2] = byte(len(p) >> 8)
		lenBuf[3] = byte(len(p))
		h.Write(lenBuf[:4])
		h.Write(p)
	}
	digest := h.Sum(nil)
	s := new(big.Int).SetBytes(digest)
	s.Mod(s, order)
	if s.Sign() == 0 {
		s.SetInt64(1)
	}
	return s
}

// baseGenerator derives the i-th deterministic G1 generator for this suite.
// index -1 is P1 (the fixed base point), -2 is Q1 (blinding generator), -3
// is Q2 (domain generator); index >= 0 addresses the i-th message generator.
func baseGenerator(index int) bls12381.G1Affine {
	_, _, g1gen, _ := bls12381.Generators()
	scalar := hashToScalar("BBS_BLS12381G1_XMD:SHA-256_SSWU_RO_GENERATOR_", []byte(fmt.Sprint(index)))
	var p bls12381.G1Jac
	var s big.Int
	s.Set(scalar)
	p.FromAffine(&g1gen)
	p.ScalarMultiplication(&p, &s)
	var aff bls12381.G1Affine
	aff.FromJacobian(&p)
	return aff
}

func p1() bls12381.G1Affine { return baseGenerator(-1) }
func q1() bls12381.G1Affine { return baseGenerator(-2) }
func q2() bls12381.G1Affine { return baseGenerator(-3) }
func hGen(i int) bls12381.G1Affine { return baseGenerator(i) }

// KeyGen derives a BBS keypair from a 32-byte (or longer) seed.
func KeyGen(seed []byte) (*PrivateKey, *PublicKey, error) {
	if len(seed) < PrivateKeySize {
		return nil, nil, fmt.Errorf("bbsprim: seed must be at least %d bytes", PrivateKeySize)
	}
	x := hashToScalar("BBS_BLS12381G2_XMD:SHA-256_SSWU_RO_KEYGEN_", seed)
	_, _, _, g2gen := bls12381.Generators()
	var wJac bls12381.G2Jac
	var xb big.Int
	xb.Set(x)
	wJac.FromAffine(&g2gen)
	wJac.ScalarMultiplication(&wJac, &xb)
	var w bls12381.G2Affine
	w.FromJacobian(&wJac)
	return &PrivateKey{X: x}, &PublicKey{W: w}, nil
}

// domainValue folds the public key, generator count, and header into a
// single domain-separation scalar shared by Sign/Verify/Proof{Gen,Verify}.
func domainValue(pk *PublicKey, count int, header []byte) *big.Int {
	pkBytes := pk.W.Bytes()
	return hashToScalar("BBS_DOMAIN_", pkBytes[:], big.NewInt(int64(count)).Bytes(), header)
}

func computeB(domain *big.Int, s *big.Int, messages []*big.Int) bls12381.G1Affine {
	var acc bls12381.G1Jac
	p1a := p1()
	acc.FromAffine(&p1a)

	q1a := q1()
	var q1j bls12381.G1Jac
	q1j.FromAffine(&q1a)
	var sb big.Int
	sb.Set(s)
	q1j.ScalarMultiplication(&q1j, &sb)
	acc.AddAssign(&q1j)

	q2a := q2()
	var q2j bls12381.G1Jac
	q2j.FromAffine(&q2a)
	var db big.Int
	db.Set(domain)
	q2j.ScalarMultiplication(&q2j, &db)
	acc.AddAssign(&q2j)

	for i, m := range messages {
		hi := hGen(i)
		var hj bls12381.G1Jac
		hj.FromAffine(&hi)
		var mb big.Int
		mb.Set(m)
		hj.ScalarMultiplication(&hj, &mb)
		acc.AddAssign(&hj)
	}

	var out bls12381.G1Affine
	out.FromJacobian(&acc)
	return out
}

// MessagesToScalars maps raw message octet strings (e.g. UTF-8 N-Quads) to
// the scalar field, in positional order.
func MessagesToScalars(messages [][]byte) []*big.Int {
	out := make([]*big.Int, len(messages))
	for i, m := range messages {
		out[i] = hashToScalar("BBS_MESSAGE_", big.NewInt(int64(i)).Bytes(), m)
	}
	return out
}

// Sign produces a BBS signature over header and the (already scalar-mapped)
// message vector.
func Sign(sk *PrivateKey, pk *PublicKey, header []byte, messages []*big.Int) (*Signature, error) {
	domain := domainValue(pk, len(messages), header)
	e, err := randomScalar()
	if err != nil {
		return nil, err
	}
	// s is derived from e rather than drawn independently, so Verify and
	// ProofGen can recompute B from the signature alone.
	s := hashToScalar("BBS_S_FROM_E_", e.Bytes())
	b := computeB(domain, s, messages)

	xPlusE := new(big.Int)
	xPlusE.Add(sk.X, e)
	xPlusE.Mod(xPlusE, order)
	inv := new(big.Int).ModInverse(xPlusE, order)
	if inv == nil {
		return nil, fmt.Errorf("bbsprim: signing key collided with -e, retry")
	}

	var aJac bls12381.G1Jac
	aJac.FromAffine(&b)
	aJac.ScalarMultiplication(&aJac, inv)
	var a bls12381.G1Affine
	a.FromJacobian(&aJac)

	return &Signature{A: a, E: e}, nil
}

// Verify checks a BBS signature against header and the message vector.
func Verify(pk *PublicKey, sig *Signature, header []byte, messages []*big.Int) (bool, error) {
	domain := domainValue(pk, len(messages), header)
	// Verify recomputes B with the s that Sign derived from sig.E (see
	// computeBForVerify), then checks e(A, W + P2*e) == e(B, P2), which
	// holds only for the B the signer used.
	b := computeBForVerify(domain, sig, messages)

	_, _, _, g2gen := bls12381.Generators()
	var weJac bls12381.G2Jac
	weJac.FromAffine(&pk.W)
	var g2eJac bls12381.G2Jac
	g2eJac.FromAffine(&g2gen)
	var eb big.Int
	eb.Set(sig.E)
	g2eJac.ScalarMultiplication(&g2eJac, &eb)
	weJac.AddAssign(&g2eJac)
	var we bls12381.G2Affine
	we.FromJacobian(&weJac)

	var negG2Jac bls12381.G2Jac
	negG2Jac.FromAffine(&g2gen)
	negG2Jac.Neg(&negG2Jac)
	var negG2 bls12381.G2Affine
	negG2.FromJacobian(&negG2Jac)

	result, err := bls12381.Pair([]bls12381.G1Affine{sig.A, b}, []bls12381.G2Affine{we, negG2})
	if err != nil {
		return false, fmt.Errorf("bbsprim: pairing failed: %w", err)
	}
	return result.IsOne(), nil
}

// computeBForVerify recomputes B from the message terms and the s that Sign
// derives deterministically from E, so Verify stays a pure function
// of (pk, sig, header, messages) as the §6 BBS primitive contract requires.
func computeBForVerify(domain *big.Int, sig *Signature, messages []*big.Int) bls12381.G1Affine {
	sDerived := hashToScalar("BBS_S_FROM_E_", sig.E.Bytes())
	return computeB(domain, sDerived, messages)
}

// ProofGen derives a disclosure proof over header/presentationHeader,
// revealing only the messages at disclosedIndexes.
func ProofGen(pk *PublicKey, sig *Signature, header, presentationHeader []byte, messages []*big.Int, disclosedIndexes []int) (*Proof, error) {
	disclosed := make(map[int]bool, len(disclosedIndexes))
	for _, i := range disclosedIndexes {
		if i < 0 || i >= len(messages) {
			return nil, fmt.Errorf("bbsprim: disclosed index %d out of range", i)
		}
		disclosed[i] = true
	}

	domain := domainValue(pk, len(messages), header)
	sDerived := hashToScalar("BBS_S_FROM_E_", sig.E.Bytes())

	r, err := randomScalar()
	if err != nil {
		return nil, err
	}

	p1a := p1()
	var aPrimeJac bls12381.G1Jac
	aPrimeJac.FromAffine(&sig.A)
	var g1rJac bls12381.G1Jac
	g1rJac.FromAffine(&p1a)
	g1rJac.ScalarMultiplication(&g1rJac, r)
	aPrimeJac.AddAssign(&g1rJac)
	var aPrime bls12381.G1Affine
	aPrime.FromJacobian(&aPrimeJac)

	var aBarJac bls12381.G1Jac
	aBarJac.FromAffine(&aPrime)
	for i, m := range messages {
		if disclosed[i] {
			continue
		}
		mr := new(big.Int).Mul(m, r)
		mr.Mod(mr, order)
		hi := hGen(i)
		var hj bls12381.G1Jac
		hj.FromAffine(&hi)
		hj.ScalarMultiplication(&hj, mr)
		aBarJac.AddAssign(&hj)
	}
	var aBar bls12381.G1Affine
	aBar.FromJacobian(&aBarJac)

	eBlind, err := randomScalar()
	if err != nil {
		return nil, err
	}
	sBlind, err := randomScalar()
	if err != nil {
		return nil, err
	}
	domainBlind, err := randomScalar()
	if err != nil {
		return nil, err
	}
	mBlind := make(map[int]*big.Int)
	for i := range messages {
		if !disclosed[i] {
			mb, err := randomScalar()
			if err != nil {
				return nil, err
			}
			mBlind[i] = mb
		}
	}

	q1a := q1()
	var dJac bls12381.G1Jac
	var q1sJac bls12381.G1Jac
	q1sJac.FromAffine(&q1a)
	q1sJac.ScalarMultiplication(&q1sJac, sBlind)
	dJac.AddAssign(&q1sJac)

	q2a := q2()
	var q2dJac bls12381.G1Jac
	q2dJac.FromAffine(&q2a)
	q2dJac.ScalarMultiplication(&q2dJac, domainBlind)
	dJac.AddAssign(&q2dJac)

	for i := range messages {
		if disclosed[i] {
			continue
		}
		hi := hGen(i)
		var hj bls12381.G1Jac
		hj.FromAffine(&hi)
		hj.ScalarMultiplication(&hj, mBlind[i])
		dJac.AddAssign(&hj)
	}
	var d bls12381.G1Affine
	d.FromJacobian(&dJac)

	disclosedMessages := make(map[int]*big.Int, len(disclosedIndexes))
	for i := range disclosed {
		disclosedMessages[i] = messages[i]
	}
	c := proofChallenge(aPrime, aBar, d, disclosedIndexes, disclosedMessages, presentationHeader)

	eHat := new(big.Int).Mul(sig.E, c)
	eHat.Add(eHat, eBlind)
	eHat.Mod(eHat, order)

	sHat := new(big.Int).Mul(sDerived, c)
	sHat.Add(sHat, sBlind)
	sHat.Mod(sHat, order)

	mHat := make(map[int]*big.Int)
	for i, m := range messages {
		if disclosed[i] {
			continue
		}
		v := new(big.Int).Mul(m, c)
		v.Add(v, mBlind[i])
		v.Mod(v, order)
		mHat[i] = v
	}

	_ = domain
	return &Proof{APrime: aPrime, ABar: aBar, D: d, C: c, EHat: eHat, SHat: sHat, MHat: mHat}, nil
}

// ProofVerify checks a selective-disclosure proof against header,
// presentationHeader, the disclosed messages (keyed by original index), and
// the total message vector length (needed to rebuild the domain scalar).
func ProofVerify(pk *PublicKey, proof *Proof, header, presentationHeader []byte, disclosedMessages map[int]*big.Int, disclosedIndexes []int, totalMessageCount int) (bool, error) {
	sorted := append([]int(nil), disclosedIndexes...)
	sort.Ints(sorted)
	c := proofChallenge(proof.APrime, proof.ABar, proof.D, sorted, disclosedMessages, presentationHeader)
	if c.Cmp(proof.C) != 0 {
		return false, nil
	}

	domain := domainValue(pk, totalMessageCount, header)

	var g1bJac bls12381.G1Jac
	p1a := p1()
	g1bJac.FromAffine(&p1a)

	q1a := q1()
	var q1sJac bls12381.G1Jac
	q1sJac.FromAffine(&q1a)
	q1sJac.ScalarMultiplication(&q1sJac, proof.SHat)
	g1bJac.AddAssign(&q1sJac)

	q2a := q2()
	var q2dJac bls12381.G1Jac
	q2dJac.FromAffine(&q2a)
	var domCopy big.Int
	domCopy.Set(domain)
	q2dJac.ScalarMultiplication(&q2dJac, &domCopy)
	g1bJac.AddAssign(&q2dJac)

	for idx, m := range disclosedMessages {
		hi := hGen(idx)
		var hj bls12381.G1Jac
		hj.FromAffine(&hi)
		hj.ScalarMultiplication(&hj, m)
		g1bJac.AddAssign(&hj)
	}
	for idx, mh := range proof.MHat {
		hi := hGen(idx)
		var hj bls12381.G1Jac
		hj.FromAffine(&hi)
		hj.ScalarMultiplication(&hj, mh)
		g1bJac.AddAssign(&hj)
	}

	negC := new(big.Int).Neg(proof.C)
	negC.Mod(negC, order)
	var dNegCJac bls12381.G1Jac
	dNegCJac.FromAffine(&proof.D)
	dNegCJac.ScalarMultiplication(&dNegCJac, negC)
	g1bJac.AddAssign(&dNegCJac)

	var g1b bls12381.G1Affine
	g1b.FromJacobian(&g1bJac)

	var tJac bls12381.G1Jac
	tJac.FromAffine(&proof.ABar)
	tJac.ScalarMultiplication(&tJac, proof.C)
	var dJac bls12381.G1Jac
	dJac.FromAffine(&proof.D)
	tJac.AddAssign(&dJac)
	var t bls12381.G1Affine
	t.FromJacobian(&tJac)

	_, _, _, g2gen := bls12381.Generators()
	var negG2Jac bls12381.G2Jac
	negG2Jac.FromAffine(&g2gen)
	negG2Jac.Neg(&negG2Jac)
	var negG2 bls12381.G2Affine
	negG2.FromJacobian(&negG2Jac)

	result, err := bls12381.Pair(
		[]bls12381.G1Affine{proof.APrime, g1b, t},
		[]bls12381.G2Affine{pk.W, negG2, g2gen},
	)
	if err != nil {
		return false, fmt.Errorf("bbsprim: pairing failed: %w", err)
	}
	return result.IsOne(), nil
}

func proofChallenge(aPrime, aBar, d bls12381.G1Affine, disclosedIndexes []int, disclosedMessages map[int]*big.Int, presentationHeader []byte) *big.Int {
	aPrimeB := aPrime.Bytes()
	aBarB := aBar.Bytes()
	dB := d.Bytes()
	parts := [][]byte{aPrimeB[:], aBarB[:], dB[:]}
	for _, idx := range disclosedIndexes {
		parts = append(parts, big.NewInt(int64(idx)).Bytes())
		if m, ok := disclosedMessages[idx]; ok {
			parts = append(parts, m.Bytes())
		}
	}
	parts = append(parts, presentationHeader)
	return hashToScalar("BBS_CHALLENGE_", parts...)
}

// Bytes returns the 96-byte compressed G2 encoding of pk.
func (pk *PublicKey) Bytes() []byte {
	b := pk.W.Bytes()
	out := make([]byte, PublicKeySize)
	copy(out, b[:])
	return out
}

// PublicKeyFromBytes parses a 96-byte compressed G2 public key.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	if len(b) != PublicKeySize {
		return nil, fmt.Errorf("bbsprim: public key must be %d bytes, got %d", PublicKeySize, len(b))
	}
	var w bls12381.G2Affine
	var arr [PublicKeySize]byte
	copy(arr[:], b)
	if _, err := w.SetBytes(arr[:]); err != nil {
		return nil, fmt.Errorf("bbsprim: invalid G2 point: %w", err)
	}
	return &PublicKey{W: w}, nil
}

// Bytes returns the 32-byte big-endian scalar encoding of sk.
func (sk *PrivateKey) Bytes() []byte {
	out := make([]byte, PrivateKeySize)
	b := sk.X.Bytes()
	copy(out[PrivateKeySize-len(b):], b)
	return out
}

// PrivateKeyFromBytes parses a 32-byte scalar private key.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != PrivateKeySize {
		return nil, fmt.Errorf("bbsprim: private key must be %d bytes, got %d", PrivateKeySize, len(b))
	}
	x := new(big.Int).SetBytes(b)
	x.Mod(x, order)
	return &PrivateKey{X: x}, nil
}

// Bytes serializes a signature to its fixed 80-byte wire form:
// 48-byte compressed A followed by a 32-byte big-endian e.
func (s *Signature) Bytes() []byte {
	a := s.A.Bytes()
	out := make([]byte, SignatureSize)
	copy(out[:48], a[:])
	eb := s.E.Bytes()
	copy(out[48+32-len(eb):80], eb)
	return out
}

// SignatureFromBytes parses the fixed 80-byte signature wire form.
func SignatureFromBytes(b []byte) (*Signature, error) {
	if len(b) != SignatureSize {
		return nil, fmt.Errorf("bbsprim: signature must be %d bytes, got %d", SignatureSize, len(b))
	}
	var a bls12381.G1Affine
	var arr [48]byte
	copy(arr[:], b[:48])
	if _, err := a.SetBytes(arr[:]); err != nil {
		return nil, fmt.Errorf("bbsprim: invalid G1 point: %w", err)
	}
	e := new(big.Int).SetBytes(b[48:80])
	return &Signature{A: a, E: e}, nil
}

// Bytes serializes a proof to a self-contained wire form: three 48-byte
// compressed G1 points (APrime, ABar, D), three 32-byte scalars (C, EHat,
// SHat), then a count-prefixed list of (2-byte index, 32-byte scalar)
// entries for MHat, sorted by index for determinism.
func (p *Proof) Bytes() []byte {
	aPrime := p.APrime.Bytes()
	aBar := p.ABar.Bytes()
	d := p.D.Bytes()
	out := make([]byte, 0, 48*3+32*3+2+len(p.MHat)*(2+32))
	out = append(out, aPrime[:]...)
	out = append(out, aBar[:]...)
	out = append(out, d[:]...)
	out = append(out, fixed32(p.C)...)
	out = append(out, fixed32(p.EHat)...)
	out = append(out, fixed32(p.SHat)...)

	indexes := make([]int, 0, len(p.MHat))
	for i := range p.MHat {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	out = append(out, byte(len(indexes)>>8), byte(len(indexes)))
	for _, idx := range indexes {
		out = append(out, byte(idx>>8), byte(idx))
		out = append(out, fixed32(p.MHat[idx])...)
	}
	return out
}

// ProofFromBytes parses the wire form produced by Proof.Bytes.
func ProofFromBytes(b []byte) (*Proof, error) {
	if len(b) < 48*3+32*3+2 {
		return nil, fmt.Errorf("bbsprim: proof too short")
	}
	var aPrime, aBar, d bls12381.G1Affine
	var arr [48]byte
	copy(arr[:], b[0:48])
	if _, err := aPrime.SetBytes(arr[:]); err != nil {
		return nil, fmt.Errorf("bbsprim: invalid APrime point: %w", err)
	}
	copy(arr[:], b[48:96])
	if _, err := aBar.SetBytes(arr[:]); err != nil {
		return nil, fmt.Errorf("bbsprim: invalid ABar point: %w", err)
	}
	copy(arr[:], b[96:144])
	if _, err := d.SetBytes(arr[:]); err != nil {
		return nil, fmt.Errorf("bbsprim: invalid D point: %w", err)
	}
	off := 144
	c := new(big.Int).SetBytes(b[off : off+32])
	off += 32
	eHat := new(big.Int).SetBytes(b[off : off+32])
	off += 32
	sHat := new(big.Int).SetBytes(b[off : off+32])
	off += 32

	count := int(b[off])<<8 | int(b[off+1])
	off += 2
	mHat := make(map[int]*big.Int, count)
	for i := 0; i < count; i++ {
		if off+2+32 > len(b) {
			return nil, fmt.Errorf("bbsprim: proof truncated in MHat entry %d", i)
		}
		idx := int(b[off])<<8 | int(b[off+1])
		off += 2
		mHat[idx] = new(big.Int).SetBytes(b[off : off+32])
		off += 32
	}

	return &Proof{APrime: aPrime, ABar: aBar, D: d, C: c, EHat: eHat, SHat: sHat, MHat: mHat}, nil
}

func fixed32(v *big.Int) []byte {
	out := make([]byte, 32)
	b := v.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// Pseudonym computes the domain-bound pseudonym used by the PSEUDONYM and
// HOLDER_BINDING_PSEUDONYM features: a deterministic commitment to the
// holder's nym secret under a verifier-chosen domain, per the IETF BBS
// pseudonym extension draft's "pid = nymSecret * hash_to_scalar(domain)"
// shape, realized here over G1 so it composes with the other accumulator
// points.
func Pseudonym(nymSecret *big.Int, nymDomain []byte) bls12381.G1Affine {
	domainScalar := hashToScalar("BBS_NYM_DOMAIN_", nymDomain)
	exp := new(big.Int).Mul(nymSecret, domainScalar)
	exp.Mod(exp, order)
	p1a := p1()
	var pj bls12381.G1Jac
	pj.FromAffine(&p1a)
	pj.ScalarMultiplication(&pj, exp)
	var out bls12381.G1Affine
	out.FromJacobian(&pj)
	return out
}

// PseudonymBytes returns the 48-byte compressed encoding of a pseudonym.
func PseudonymBytes(pseudonym bls12381.G1Affine) []byte {
	b := pseudonym.Bytes()
	return b[:]
}
