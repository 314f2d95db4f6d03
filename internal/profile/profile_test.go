package profile

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunSetupUsesAnswers(t *testing.T) {
	in := strings.NewReader("Ada\njson\n/tmp/casts\n3\n")
	var out bytes.Buffer

	prof, err := RunSetup(in, &out, nil)
	if err != nil {
		t.Fatalf("RunSetup: %v", err)
	}
	want := Profile{Name: "Ada", DefaultFormat: "json", OutputDir: "/tmp/casts", DefaultChapter: 3}
	if *prof != want {
		t.Errorf("got %+v, want %+v", *prof, want)
	}
	if !strings.Contains(out.String(), "Your name") {
		t.Errorf("prompts not written: %q", out.String())
	}
}

func TestRunSetupKeepsExistingOnBlankAnswers(t *testing.T) {
	existing := &Profile{Name: "Grace", DefaultFormat: "json", OutputDir: "out", DefaultChapter: 2}
	prof, err := RunSetup(strings.NewReader("\n\n\n\n"), &bytes.Buffer{}, existing)
	if err != nil {
		t.Fatalf("RunSetup: %v", err)
	}
	if *prof != *existing {
		t.Errorf("got %+v, want %+v", *prof, *existing)
	}
}

func TestRunSetupRejectsBadChapter(t *testing.T) {
	prof, err := RunSetup(strings.NewReader("Ada\nmarkdown\n.\n9"), &bytes.Buffer{}, nil)
	if err != nil {
		t.Fatalf("RunSetup: %v", err)
	}
	if prof.DefaultChapter != 1 {
		t.Errorf("DefaultChapter: got %d, want 1", prof.DefaultChapter)
	}
}

func TestRunSetupEOF(t *testing.T) {
	if _, err := RunSetup(strings.NewReader(""), &bytes.Buffer{}, nil); err == nil {
		t.Error("expected error on empty input")
	}
}

func TestSaveLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if Exists() {
		t.Fatal("profile exists in empty home")
	}
	if _, err := Load(); err == nil {
		t.Error("expected error loading missing profile")
	}
	p := &Profile{Name: "Ada", DefaultFormat: "markdown", OutputDir: ".", DefaultChapter: 4}
	if err := Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *got != *p {
		t.Errorf("got %+v, want %+v", *got, *p)
	}
}

func TestChapterFallback(t *testing.T) {
	var nilProfile *Profile
	if nilProfile.Chapter() != 1 {
		t.Error("nil profile should default to chapter 1")
	}
	if (&Profile{DefaultChapter: 7}).Chapter() != 1 {
		t.Error("out of range chapter should default to 1")
	}
	if (&Profile{DefaultChapter: 3}).Chapter() != 3 {
		t.Error("valid chapter not kept")
	}
}
