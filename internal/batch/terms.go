// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// TermsFile is the YAML input format for batch runs.
type TermsFile struct {
	Terms []string `yaml:"terms"`
}

// ReadTermsFile loads search terms from a YAML file, dropping blank
// entries and preserving order.
func ReadTermsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading terms file: %w", err)
	}

	var tf TermsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing terms file %s: %w", path, err)
	}

	var terms []string
	for _, t := range tf.Terms {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("terms file %s contains no search terms", path)
	}
	return terms, nil
}
