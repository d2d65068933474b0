package chain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pairing selects one pre-generated job script.
type Pairing struct {
	Model  string `yaml:"model"`
	Cohort string `yaml:"cohort"`
}

// manifest is the on-disk shape of an explicit pairing list.
type manifest struct {
	Pairings []Pairing `yaml:"pairings"`
}

// LoadManifest reads an explicit list of (model, cohort) pairings from a YAML
// file. A manifest replaces the model × cohort product, for resubmitting a
// hand-picked set of combinations:
//
//	pairings:
//	  - model: virchow2
//	    cohort: BRCA
//	  - model: ctranspath
//	    cohort: LUAD
func LoadManifest(path string) ([]Pairing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	if len(m.Pairings) == 0 {
		return nil, fmt.Errorf("manifest %s contains no pairings", path)
	}
	for i, p := range m.Pairings {
		if p.Model == "" || p.Cohort == "" {
			return nil, fmt.Errorf("manifest %s: pairing %d is missing model or cohort", path, i+1)
		}
	}

	return m.Pairings, nil
}

// Product expands models × cohorts into the pairing list the submitter
// processes, models outer, cohorts inner.
func Product(models, cohorts []string) []Pairing {
	pairings := make([]Pairing, 0, len(models)*len(cohorts))
	for _, model := range models {
		for _, cohort := range cohorts {
			pairings = append(pairings, Pairing{Model: model, Cohort: cohort})
		}
	}
	return pairings
}
