package chain

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `pairings:
  - model: virchow2
    cohort: BRCA
  - model: ctranspath
    cohort: LUAD
`)

	pairings, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if len(pairings) != 2 {
		t.Fatalf("pairings = %d; want 2", len(pairings))
	}
	if pairings[0].Model != "virchow2" || pairings[0].Cohort != "BRCA" {
		t.Errorf("first pairing = %+v; want virchow2/BRCA", pairings[0])
	}
	if pairings[1].Model != "ctranspath" || pairings[1].Cohort != "LUAD" {
		t.Errorf("second pairing = %+v; want ctranspath/LUAD", pairings[1])
	}
}

func TestLoadManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty pairing list", "pairings: []\n"},
		{"missing cohort", "pairings:\n  - model: virchow2\n"},
		{"missing model", "pairings:\n  - cohort: BRCA\n"},
		{"invalid yaml", "pairings: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.content)
			if _, err := LoadManifest(path); err == nil {
				t.Error("LoadManifest succeeded, want error")
			}
		})
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadManifest succeeded for missing file")
	}
}

func TestProduct(t *testing.T) {
	pairings := Product([]string{"m1", "m2"}, []string{"c1", "c2", "c3"})
	if len(pairings) != 6 {
		t.Fatalf("pairings = %d; want 6", len(pairings))
	}
	// Models outer, cohorts inner.
	want := []Pairing{
		{"m1", "c1"}, {"m1", "c2"}, {"m1", "c3"},
		{"m2", "c1"}, {"m2", "c2"}, {"m2", "c3"},
	}
	for i, p := range pairings {
		if p != want[i] {
			t.Errorf("pairing %d = %+v; want %+v", i, p, want[i])
		}
	}
}

func TestProductEmptyInputs(t *testing.T) {
	if got := Product(nil, []string{"c1"}); len(got) != 0 {
		t.Errorf("Product(nil, cohorts) = %v; want empty", got)
	}
	if got := Product([]string{"m1"}, nil); len(got) != 0 {
		t.Errorf("Product(models, nil) = %v; want empty", got)
	}
}
