// Package keypair implements the bbs-2023 Keypair component: generation,
// fingerprinting, and import/export to and from verification-method
// documents (spec.md §4.2), grounded on the teacher's ecdsa-sd Suite
// keypair lifecycle but carrying BLS12-381 G2 material instead of ECDSA.
package keypair

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vc-suite/bbs2023/internal/bbsprim"
	"github.com/vc-suite/bbs2023/loader"
	"github.com/vc-suite/bbs2023/pkg/bbserr"
	"github.com/vc-suite/bbs2023/pkg/codec"
)

var docValidate = validator.New()

// Multikey and JsonWebKey are the two verification-method variants this
// suite understands, per spec.md §6.
const (
	TypeMultikey   = "Multikey"
	TypeJsonWebKey = "JsonWebKey"
)

// KeyPair is the in-memory carrier for BLS12-381 G2 key material plus the
// identity/lifecycle metadata spec.md §3 attaches to it.
type KeyPair struct {
	ID         string
	Controller string
	Expires    *time.Time
	Revoked    *time.Time

	PrivateKey *bbsprim.PrivateKey
	PublicKey  *bbsprim.PublicKey
}

// Initialize fills kp's key material. If seed is nil, 32 cryptographically
// random bytes are generated; a non-nil seed shorter than 32 bytes fails
// INVALID_KEYPAIR_LENGTH. If Controller is already set and ID is not, ID is
// derived as controller + "#" + fingerprint(publicKey).
func (kp *KeyPair) Initialize(seed []byte) error {
	const op = "keypair.Initialize"
	if seed == nil {
		seed = make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			return bbserr.New(bbserr.DecodingError, op, err)
		}
	} else if len(seed) < 32 {
		return bbserr.Newf(bbserr.InvalidKeypairLength, op, "seed length %d, want >= 32", len(seed))
	}

	sk, pk, err := bbsprim.KeyGen(seed)
	if err != nil {
		return bbserr.New(bbserr.InvalidKeypairContent, op, err)
	}
	kp.PrivateKey = sk
	kp.PublicKey = pk

	if kp.Controller != "" && kp.ID == "" {
		fp, err := kp.GenerateFingerprint()
		if err != nil {
			return err
		}
		kp.ID = kp.Controller + "#" + fp
	}
	return nil
}

// GenerateFingerprint returns the multibase encoding of the public key.
func (kp *KeyPair) GenerateFingerprint() (string, error) {
	const op = "keypair.GenerateFingerprint"
	if kp.PublicKey == nil {
		return "", bbserr.Newf(bbserr.InvalidKeypairContent, op, "no public key material")
	}
	fp, err := codec.MaterialToMultibase(kp.PublicKey.Bytes(), codec.Public)
	if err != nil {
		return "", err
	}
	return fp, nil
}

// VerifyFingerprint reports whether s equals GenerateFingerprint().
func (kp *KeyPair) VerifyFingerprint(s string) (bool, error) {
	fp, err := kp.GenerateFingerprint()
	if err != nil {
		return false, err
	}
	return fp == s, nil
}

// ExportOptions configures Export. The zero value exports the public
// Multikey.
type ExportOptions struct {
	Flag codec.Flag
	Type string
}

// VerificationMethodDoc is the polymorphic wire shape from spec.md §6.
type VerificationMethodDoc struct {
	ID         string     `json:"id" validate:"required,uri"`
	Type       string     `json:"type" validate:"required,oneof=Multikey JsonWebKey"`
	Controller string     `json:"controller" validate:"required,uri"`
	Expires    *time.Time `json:"expires,omitempty"`
	Revoked    *time.Time `json:"revoked,omitempty"`

	PublicKeyMultibase string     `json:"publicKeyMultibase,omitempty"`
	SecretKeyMultibase string     `json:"secretKeyMultibase,omitempty"`
	PublicKeyJwk       *codec.JWK `json:"publicKeyJwk,omitempty"`
	SecretKeyJwk       *codec.JWK `json:"secretKeyJwk,omitempty"`
}

// Export renders kp as a verification-method document per opts.
func (kp *KeyPair) Export(opts ExportOptions) (*VerificationMethodDoc, error) {
	const op = "keypair.Export"
	vmType := opts.Type
	if vmType == "" {
		vmType = TypeMultikey
	}

	wantPrivate := opts.Flag == codec.Private
	if wantPrivate && kp.PrivateKey == nil {
		return nil, bbserr.Newf(bbserr.KeypairExportError, op, "private key material requested but absent")
	}
	if kp.ID == "" || kp.Controller == "" {
		return nil, bbserr.Newf(bbserr.KeypairExportError, op, "id and controller are required to export")
	}
	if !strings.HasPrefix(kp.ID, kp.Controller) {
		return nil, bbserr.Newf(bbserr.KeypairExportError, op, "id %q does not start with controller %q", kp.ID, kp.Controller)
	}

	doc := &VerificationMethodDoc{
		ID:         kp.ID,
		Type:       vmType,
		Controller: kp.Controller,
		Expires:    kp.Expires,
		Revoked:    kp.Revoked,
	}

	switch vmType {
	case TypeMultikey:
		if kp.PublicKey != nil {
			mb, err := codec.MaterialToMultibase(kp.PublicKey.Bytes(), codec.Public)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairExportError, op, err)
			}
			doc.PublicKeyMultibase = mb
		}
		if wantPrivate {
			mb, err := codec.MaterialToMultibase(kp.PrivateKey.Bytes(), codec.Private)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairExportError, op, err)
			}
			doc.SecretKeyMultibase = mb
		}
	case TypeJsonWebKey:
		if kp.PublicKey != nil {
			jwk, err := codec.MaterialToJwk(kp.PublicKey.Bytes(), codec.Public)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairExportError, op, err)
			}
			doc.PublicKeyJwk = jwk
			thumb, err := codec.JwkThumbprint(jwk)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairExportError, op, err)
			}
			doc.ID = kp.Controller + "#" + thumb
		}
		if wantPrivate {
			jwk, err := codec.MaterialToJwk(kp.PrivateKey.Bytes(), codec.Private)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairExportError, op, err)
			}
			doc.SecretKeyJwk = jwk
		}
	default:
		return nil, bbserr.Newf(bbserr.KeypairExportError, op, "unknown verification method type %q", vmType)
	}

	return doc, nil
}

// ImportOptions configures Import's validation behaviour.
type ImportOptions struct {
	CheckContext bool
	ContextAllow []string
	CheckExpired bool
	CheckRevoked bool
	Now          time.Time
}

// Import builds a KeyPair from a verification-method document.
func Import(doc *VerificationMethodDoc, contextURI string, opts ImportOptions) (*KeyPair, error) {
	const op = "keypair.Import"

	if err := docValidate.Struct(doc); err != nil {
		return nil, bbserr.New(bbserr.KeypairImportError, op, err)
	}

	if opts.CheckContext {
		allowlist := loader.NewContextAllowlist(loader.Global(), opts.ContextAllow...)
		if err := allowlist.Validate([]string{contextURI}); err != nil {
			return nil, bbserr.New(bbserr.KeypairImportError, op, err)
		}
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	if opts.CheckExpired && doc.Expires != nil && now.After(*doc.Expires) {
		return nil, bbserr.Newf(bbserr.KeypairExpiredError, op, "verification method expired at %s", doc.Expires)
	}
	if opts.CheckRevoked && doc.Revoked != nil && now.After(*doc.Revoked) {
		return nil, bbserr.Newf(bbserr.KeypairExpiredError, op, "verification method revoked at %s", doc.Revoked)
	}

	kp := &KeyPair{
		ID:         doc.ID,
		Controller: doc.Controller,
		Expires:    doc.Expires,
		Revoked:    doc.Revoked,
	}

	switch doc.Type {
	case TypeMultikey:
		if doc.PublicKeyMultibase != "" {
			material, err := codec.MultibaseToMaterial(doc.PublicKeyMultibase, codec.Public)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairImportError, op, err)
			}
			pk, err := bbsprim.PublicKeyFromBytes(material)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairImportError, op, err)
			}
			kp.PublicKey = pk
		}
		if doc.SecretKeyMultibase != "" {
			material, err := codec.MultibaseToMaterial(doc.SecretKeyMultibase, codec.Private)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairImportError, op, err)
			}
			sk, err := bbsprim.PrivateKeyFromBytes(material)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairImportError, op, err)
			}
			kp.PrivateKey = sk
		}
	case TypeJsonWebKey:
		if doc.PublicKeyJwk != nil {
			material, err := codec.JwkToMaterial(doc.PublicKeyJwk, codec.Public)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairImportError, op, err)
			}
			pk, err := bbsprim.PublicKeyFromBytes(material)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairImportError, op, err)
			}
			kp.PublicKey = pk
		}
		if doc.SecretKeyJwk != nil {
			material, err := codec.JwkToMaterial(doc.SecretKeyJwk, codec.Private)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairImportError, op, err)
			}
			sk, err := bbsprim.PrivateKeyFromBytes(material)
			if err != nil {
				return nil, bbserr.New(bbserr.KeypairImportError, op, err)
			}
			kp.PrivateKey = sk
		}
	default:
		return nil, bbserr.Newf(bbserr.KeypairImportError, op, "unknown verification method type %q", doc.Type)
	}

	if kp.PublicKey == nil && kp.PrivateKey == nil {
		return nil, bbserr.Newf(bbserr.InvalidKeypairContent, op, "neither public nor private key material present")
	}

	return kp, nil
}
