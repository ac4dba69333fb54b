package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func testCorpus(t *testing.T) Corpus {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "note.txt", "A general note. It has two sentences.")
	writeFile(t, root, "blog/post-one.md", "First post. Second sentence here. Third one.")
	writeFile(t, root, "blog/post-two.txt", "Another post entirely.")
	writeFile(t, root, "tweets/short.txt", "Tiny.")
	writeFile(t, root, "blog/drafts/nested.txt", "Nested under blog. Still blog domain.")
	writeFile(t, root, "blog/empty.txt", "   \n ")
	writeFile(t, root, "blog/image.png", "not a sample")
	writeFile(t, root, "vendor/skipped.txt", "ignored directory")

	c, err := Load(root, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestLoad_DomainsFromDirectories(t *testing.T) {
	c := testCorpus(t)

	domains := c.Domains()
	if domains[""] != 1 {
		t.Errorf("general bucket has %d samples, want 1", domains[""])
	}
	if domains["blog"] != 3 {
		t.Errorf("blog has %d samples, want 3 (nested file included)", domains["blog"])
	}
	if domains["tweets"] != 1 {
		t.Errorf("tweets has %d samples, want 1", domains["tweets"])
	}
}

func TestLoad_SkipsNonSamples(t *testing.T) {
	c := testCorpus(t)
	for _, e := range c.Entries {
		if strings.HasSuffix(e.Path, ".png") {
			t.Errorf("non-text file loaded: %s", e.Path)
		}
		if strings.Contains(e.Path, "vendor") {
			t.Errorf("ignored directory walked: %s", e.Path)
		}
		if strings.Contains(e.Path, "empty") {
			t.Errorf("blank sample loaded: %s", e.Path)
		}
	}
	if len(c.Entries) != 5 {
		t.Errorf("loaded %d entries, want 5", len(c.Entries))
	}
}

func TestLoad_CountsWordsAndSentences(t *testing.T) {
	c := testCorpus(t)
	for _, e := range c.Entries {
		if e.Path == filepath.Join("blog", "post-one.md") {
			if e.Sentences != 3 {
				t.Errorf("post-one sentences = %d, want 3", e.Sentences)
			}
			if e.Words != 7 {
				t.Errorf("post-one words = %d, want 7", e.Words)
			}
			return
		}
	}
	t.Fatal("post-one.md not loaded")
}

func TestSamples(t *testing.T) {
	c := testCorpus(t)
	samples := c.Samples()
	if len(samples) != len(c.Entries) {
		t.Fatalf("Samples() len %d != entries %d", len(samples), len(c.Entries))
	}
	for i, s := range samples {
		if s.DomainID != c.Entries[i].DomainID || s.Text != c.Entries[i].Text {
			t.Errorf("sample %d does not match entry: %+v", i, s)
		}
	}
}

func TestSummary(t *testing.T) {
	c := testCorpus(t)
	got := c.Summary()
	for _, want := range []string{"=== Corpus ===", "=== Domains ===", "blog: 3 samples", "(general)"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestLoad_MissingRoot(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope"), nil); err == nil {
		t.Fatal("missing root did not error")
	}
}
