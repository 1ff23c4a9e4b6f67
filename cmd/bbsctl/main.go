// Command bbsctl drives the bbs-2023 pipelines (keygen, issue, derive,
// verify) from the shell, for local experimentation and test-fixture
// generation.
//
// Grounded on the teacher's cmd/vc20-test-server/main.go (flag-based,
// single-process harness over the vc20 crypto suites), adapted from an
// HTTP test server to a CLI that reads JSON files named by flags and writes
// its results to stdout, since this module is a library plus CLI rather
// than a service.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vc-suite/bbs2023/pkg/bbserr"
	"github.com/vc-suite/bbs2023/pkg/canon"
	"github.com/vc-suite/bbs2023/pkg/codec"
	"github.com/vc-suite/bbs2023/pkg/keypair"
	"github.com/vc-suite/bbs2023/pkg/logger"
	"github.com/vc-suite/bbs2023/pkg/vc20/credential"
	"github.com/vc-suite/bbs2023/proof"
)

var log = logger.NewSimple("bbsctl")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "keygen":
		err = runKeygen(os.Args[2:])
	case "issue":
		err = runIssue(os.Args[2:])
	case "derive":
		err = runDerive(os.Args[2:])
	case "verify":
		err = runVerify(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Info("command failed", "error", err.Error())
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bbsctl <keygen|issue|derive|verify> [flags]")
}

func runKeygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	controller := fs.String("controller", "", "controller URI the key belongs to")
	vmType := fs.String("type", keypair.TypeMultikey, "verification method type: Multikey or JsonWebKey")
	private := fs.Bool("private", false, "include private key material in the output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *controller == "" {
		return fmt.Errorf("bbsctl keygen: -controller is required")
	}

	kp := &keypair.KeyPair{Controller: *controller}
	if err := kp.Initialize(nil); err != nil {
		return err
	}

	exportFlag := codec.Public
	if *private {
		exportFlag = codec.Private
	}
	doc, err := kp.Export(keypair.ExportOptions{Flag: exportFlag, Type: *vmType})
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, doc)
}

func runIssue(args []string) error {
	fs := flag.NewFlagSet("issue", flag.ExitOnError)
	docPath := fs.String("doc", "", "path to the unsecured JSON-LD credential")
	vmPath := fs.String("vm", "", "path to the signer's verification-method document (must carry private key material)")
	vmID := fs.String("vm-id", "", "verificationMethod URI to record in the proof")
	purpose := fs.String("purpose", "assertionMethod", "proofPurpose")
	mandatory := fs.String("mandatory", "", "comma-separated JSON Pointers naming mandatory statements")
	feature := fs.String("feature", "baseline", "baseline|anonymous-holder-binding|pseudonym|holder-binding-pseudonym")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *docPath == "" || *vmPath == "" || *vmID == "" {
		return fmt.Errorf("bbsctl issue: -doc, -vm, and -vm-id are required")
	}

	document, err := readJSONDocument(*docPath)
	if err != nil {
		return err
	}
	vmDoc, err := readVerificationMethodDoc(*vmPath)
	if err != nil {
		return err
	}
	kp, err := keypair.Import(vmDoc, vc20ContextURI(document), keypair.ImportOptions{})
	if err != nil {
		return err
	}

	f, err := parseFeature(*feature)
	if err != nil {
		return err
	}

	created := time.Now().UTC()
	p, err := proof.Issue(document, proof.IssueOptions{
		VerificationMethod: *vmID,
		ProofPurpose:       *purpose,
		Created:            &created,
		MandatoryPointers:  splitPointers(*mandatory),
		Feature:            f,
	}, singleKeyResolver(kp))
	if err != nil {
		return err
	}

	document["proof"] = p
	return writeJSON(os.Stdout, document)
}

func runDerive(args []string) error {
	fs := flag.NewFlagSet("derive", flag.ExitOnError)
	docPath := fs.String("doc", "", "path to the secured JSON-LD credential (carrying an issuer base proof)")
	selective := fs.String("selective", "", "comma-separated JSON Pointers naming selectively-disclosed statements")
	presentationHeader := fs.String("presentation-header", "", "presentation header bytes, as UTF-8 text")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *docPath == "" {
		return fmt.Errorf("bbsctl derive: -doc is required")
	}

	document, proofObj, err := readSecuredDocument(*docPath)
	if err != nil {
		return err
	}

	revealed, derived, err := proof.Derive(document, proofObj.ProofValue, *proofObj, proof.DeriveOptions{
		SelectivePointers:  splitPointers(*selective),
		PresentationHeader: []byte(*presentationHeader),
	})
	if err != nil {
		return err
	}

	revealed["proof"] = derived
	return writeJSON(os.Stdout, revealed)
}

func runVerify(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	docPath := fs.String("doc", "", "path to the revealed JSON-LD credential with its derived proof")
	vmPath := fs.String("vm", "", "path to the signer's verification-method document (public key only is needed)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *docPath == "" || *vmPath == "" {
		return fmt.Errorf("bbsctl verify: -doc and -vm are required")
	}

	document, proofObj, err := readSecuredDocument(*docPath)
	if err != nil {
		return err
	}
	vmDoc, err := readVerificationMethodDoc(*vmPath)
	if err != nil {
		return err
	}
	kp, err := keypair.Import(vmDoc, vc20ContextURI(document), keypair.ImportOptions{})
	if err != nil {
		return err
	}

	ok, err := proof.Verify(document, proofObj, singleKeyResolver(kp))
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, map[string]interface{}{"verified": ok, "id": uuid.NewString()})
}

// singleKeyResolver ignores the verificationMethod URI and always returns
// kp: this CLI is a local harness, not a DID resolver.
func singleKeyResolver(kp *keypair.KeyPair) proof.VerificationMethodResolver {
	return func(string) (*keypair.KeyPair, error) {
		return kp, nil
	}
}

func parseFeature(s string) (proof.Feature, error) {
	switch strings.ToLower(s) {
	case "baseline", "":
		return proof.Baseline, nil
	case "anonymous-holder-binding":
		return proof.AnonymousHolderBinding, nil
	case "pseudonym":
		return proof.Pseudonym, nil
	case "holder-binding-pseudonym":
		return proof.HolderBindingPseudonym, nil
	default:
		return 0, fmt.Errorf("unknown -feature %q", s)
	}
}

func splitPointers(s string) []canon.JSONPointer {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]canon.JSONPointer, len(parts))
	for i, p := range parts {
		out[i] = canon.JSONPointer(strings.TrimSpace(p))
	}
	return out
}

func vc20ContextURI(document map[string]interface{}) string {
	switch ctx := document["@context"].(type) {
	case string:
		return ctx
	case []interface{}:
		if len(ctx) > 0 {
			if s, ok := ctx[0].(string); ok {
				return s
			}
		}
	}
	return ""
}

func readJSONDocument(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, bbserr.New(bbserr.DecodingError, "bbsctl.readJSONDocument", err)
	}
	return doc, nil
}

func readVerificationMethodDoc(path string) (*keypair.VerificationMethodDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc keypair.VerificationMethodDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, bbserr.New(bbserr.DecodingError, "bbsctl.readVerificationMethodDoc", err)
	}
	return &doc, nil
}

// readSecuredDocument splits a credential carrying an embedded "proof"
// member back into the bare document and its proof object, since Derive and
// Verify operate on the two separately.
func readSecuredDocument(path string) (map[string]interface{}, *credential.DataIntegrityProof, error) {
	document, err := readJSONDocument(path)
	if err != nil {
		return nil, nil, err
	}
	raw, ok := document["proof"]
	if !ok {
		return nil, nil, fmt.Errorf("bbsctl: %s has no \"proof\" member", path)
	}
	delete(document, "proof")

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, nil, err
	}
	var p credential.DataIntegrityProof
	if err := json.Unmarshal(encoded, &p); err != nil {
		return nil, nil, bbserr.New(bbserr.DecodingError, "bbsctl.readSecuredDocument", err)
	}
	return document, &p, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
