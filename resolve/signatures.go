package resolve

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mhr3/sigscan/pattern"
)

// signatureFile is the YAML layout of a signature set:
//
//	signatures:
//	  - name: player_update
//	    pattern: "48 89 5C 24 ?? 57 48 83 EC 20"
//	    required: true
//	  - name: global_table
//	    pattern: "48 8B 05 ?? ?? ?? ?? 48 85 C0"
//	    offset: 3
type signatureFile struct {
	Signatures []Signature `yaml:"signatures"`
}

// LoadSignatures decodes a YAML signature set and checks that every pattern
// compiles and every name is unique.
func LoadSignatures(r io.Reader) ([]Signature, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f signatureFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode signatures: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Signatures))
	for i, sig := range f.Signatures {
		if sig.Name == "" {
			return nil, fmt.Errorf("signature %d: missing name", i)
		}
		if _, dup := seen[sig.Name]; dup {
			return nil, fmt.Errorf("signature %s: duplicate name", sig.Name)
		}
		seen[sig.Name] = struct{}{}

		if _, err := pattern.Compile(sig.Pattern); err != nil {
			return nil, fmt.Errorf("signature %s: %w", sig.Name, err)
		}
	}
	return f.Signatures, nil
}

// LoadSignatureFile is LoadSignatures on the file at path.
func LoadSignatureFile(path string) ([]Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sigs, err := LoadSignatures(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sigs, nil
}
