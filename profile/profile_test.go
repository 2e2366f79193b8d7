package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedProfiles(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	want := []string{"gis", "postgres", "shapefile"}
	got := r.List()
	if len(got) != len(want) {
		t.Fatalf("List() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestProfileScrubbers(t *testing.T) {
	tests := []struct {
		profile string
		input   string
		want    string
	}{
		{"gis", "2019 Population (est.)", "Population_2019"},
		{"gis", "123", "N123"},
		{"shapefile", "Population 2019", "Popul_2019"},
		{"postgres", "Année de création", "Annee_de_creation"},
		{"postgres", "=A1", "=A1"},
	}

	for _, tt := range tests {
		t.Run(tt.profile+"/"+tt.input, func(t *testing.T) {
			p, err := Resolve(tt.profile, "")
			if err != nil {
				t.Fatalf("Resolve(%q): %v", tt.profile, err)
			}
			s, err := p.Scrubber()
			if err != nil {
				t.Fatalf("Scrubber: %v", err)
			}
			if got := s.Scrub(tt.input); got != tt.want {
				t.Errorf("Scrub(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveDefault(t *testing.T) {
	p, err := Resolve("", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Name != DefaultName {
		t.Errorf("Name = %q, want %q", p.Name, DefaultName)
	}
	if p.MaxLength != 16 || p.TailLength != 4 || p.Filler != "N" {
		t.Errorf("unexpected gis parameters: %+v", p)
	}
}

func TestResolveUnknown(t *testing.T) {
	if _, err := Resolve("nope", ""); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestLoadProfileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "county.yaml")
	content := "max_length: 12\ntail_length: 2\nfiller: X\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Resolve("gis", path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p.Name != "county" {
		t.Errorf("Name = %q, want county", p.Name)
	}

	s, err := p.Scrubber()
	if err != nil {
		t.Fatalf("Scrubber: %v", err)
	}
	if got := s.Scrub("7"); got != "X7" {
		t.Errorf("Scrub(7) = %q, want X7", got)
	}
	if got := s.Scrub("abcdefghijklmnop"); got != "abcdefghi_op" {
		t.Errorf("Scrub = %q, want abcdefghi_op", got)
	}
}

func TestInvalidProfiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown step", "name: bad\nsteps: [substitute, explode]\n"},
		{"tail too long", "name: bad\nmax_length: 4\ntail_length: 4\n"},
		{"multi char filler", "name: bad\nfiller: NN\n"},
		{"digit filler", "name: bad\nfiller: \"1\"\n"},
		{"not yaml", "name: [unterminated\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadProfileFromString(tt.content); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadProfileFileErrorNamesProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "county.yaml")
	if err := os.WriteFile(path, []byte("filler: NN\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadProfile(path)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "profile county:") {
		t.Errorf("error = %q, want it to name profile county", err)
	}
}
