package synonyms

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/edulang/corpusprep/pkg/corpusprep/internalerr"
)

func TestRewriteBasic(t *testing.T) {
	mp := NewMapper(New(map[string]string{"utilize": "use", "commence": "start"}))
	got := mp.Rewrite("We utilize tools to commence work.")
	want := "We use tools to start work."
	if got != want {
		t.Fatalf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewritePreservesCase(t *testing.T) {
	mp := NewMapper(New(map[string]string{"utilize": "use"}))
	cases := map[string]string{
		"Utilize it.":      "Use it.",
		"UTILIZE IT.":      "USE IT.",
		"utilize it.":      "use it.",
		"Please utilize.":  "Please use.",
		"(utilize), okay?": "(use), okay?",
	}
	for in, want := range cases {
		if got := mp.Rewrite(in); got != want {
			t.Errorf("Rewrite(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRewriteLeavesPunctuationAndUnmappedTokens(t *testing.T) {
	mp := NewMapper(New(map[string]string{"purchase": "buy"}))
	got := mp.Rewrite(`"Purchase," she said -- don't purchase twice!`)
	want := `"Buy," she said -- don't buy twice!`
	if got != want {
		t.Fatalf("Rewrite = %q, want %q", got, want)
	}
}

func TestRewriteNonTransitive(t *testing.T) {
	// "big" maps to "large"; even if a caller sneaks "large" in as a key,
	// a single Rewrite pass must not chain through it.
	mp := NewMapper(Map{"big": "large", "large": "huge"})
	if got := mp.Rewrite("a big dog"); got != "a large dog" {
		t.Fatalf("Rewrite = %q, want %q", got, "a large dog")
	}
}

func TestRewriteIdempotent(t *testing.T) {
	m := New(map[string]string{"commence": "start", "terminate": "end"})
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	mp := NewMapper(m)
	in := "They commence at dawn and terminate at dusk."
	once := mp.Rewrite(in)
	twice := mp.Rewrite(once)
	if once != twice {
		t.Fatalf("not idempotent: %q vs %q", once, twice)
	}
}

func TestValidateRejectsChainedMap(t *testing.T) {
	m := Map{"big": "large", "large": "huge"}
	if err := m.Validate(); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	if err := os.WriteFile(path, []byte(`{"Utilize": "use", "commence": "start"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m["utilize"] != "use" || m["commence"] != "start" {
		t.Fatalf("unexpected map: %v", m)
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.csv")
	data := "from,to,source,from_cefr,to_cefr\nutilize,use,thesaurus,C1,A1\ncommence,start,manual,B2,A1\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m) != 2 || m["utilize"] != "use" {
		t.Fatalf("unexpected map: %v", m)
	}
}

func TestLoadRejectsChainedArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.json")
	if err := os.WriteFile(path, []byte(`{"big": "large", "large": "huge"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	if _, err := Load("map.yaml"); !errors.Is(err, internalerr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
