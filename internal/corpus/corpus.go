// Package corpus loads a directory tree of writing samples for extraction.
// The first-level subdirectory a sample lives in names its domain context
// ("blog", "tweets"); files at the root belong to the implicit general
// bucket. No parsing beyond plain text is attempted.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/voicemark/internal/extract"
	"github.com/dshills/voicemark/internal/sentence"
)

// maxFileSize is the maximum sample file size read. Larger files are skipped.
const maxFileSize = 1 << 20 // 1 MB

// sampleExtensions are the file extensions treated as writing samples.
var sampleExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

// defaultIgnore is the default set of directory names to skip.
// Matching is against directory base names only, not full paths.
var defaultIgnore = map[string]bool{
	".git":         true,
	"vendor":       true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
}

// Entry is one loaded writing sample.
type Entry struct {
	Path      string // relative to the corpus root
	DomainID  string // "" for the general bucket
	Text      string
	Words     int
	Sentences int
}

// Corpus is the complete set of samples loaded from one root.
type Corpus struct {
	Root    string
	Entries []Entry
}

// Load walks the directory at root and loads every sample file.
// ignorePatterns supplements the default ignore list; entries are matched
// against directory base names (not full paths).
func Load(root string, ignorePatterns []string) (Corpus, error) {
	extraIgnore := make(map[string]bool, len(ignorePatterns))
	for _, p := range ignorePatterns {
		extraIgnore[p] = true
	}

	c := Corpus{Root: root}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		if d.IsDir() {
			if (defaultIgnore[d.Name()] || extraIgnore[d.Name()]) && path != root {
				return fs.SkipDir
			}
			return nil
		}

		if !sampleExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil || info.Size() > maxFileSize {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			// Skip unreadable files silently.
			return nil
		}
		text := string(data)
		if strings.TrimSpace(text) == "" {
			return nil
		}

		c.Entries = append(c.Entries, Entry{
			Path:      rel,
			DomainID:  domainOf(rel),
			Text:      text,
			Words:     sentence.WordCount(text),
			Sentences: len(sentence.Split(text)),
		})
		return nil
	})
	if err != nil {
		return Corpus{}, fmt.Errorf("corpus: walk %s: %w", root, err)
	}

	return c, nil
}

// domainOf maps a relative sample path to its domain: the first path element
// when the file sits in a subdirectory, otherwise the general bucket.
func domainOf(rel string) string {
	dir := filepath.Dir(rel)
	if dir == "." {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(dir), "/")
	return parts[0]
}

// Samples converts the corpus into extraction input.
func (c Corpus) Samples() []extract.Sample {
	out := make([]extract.Sample, len(c.Entries))
	for i, e := range c.Entries {
		out[i] = extract.Sample{Text: e.Text, DomainID: e.DomainID}
	}
	return out
}

// Domains returns the sample count per domain.
func (c Corpus) Domains() map[string]int {
	out := make(map[string]int)
	for _, e := range c.Entries {
		out[e.DomainID]++
	}
	return out
}

// Summary produces a human-readable inventory block for logging and CLI
// output.
func (c Corpus) Summary() string {
	var sb strings.Builder

	sb.WriteString("=== Corpus ===\n")
	for _, e := range c.Entries {
		domain := e.DomainID
		if domain == "" {
			domain = "(general)"
		}
		fmt.Fprintf(&sb, "  %s [%s]: %d words, %d sentences\n", e.Path, domain, e.Words, e.Sentences)
	}

	domains := c.Domains()
	names := make([]string, 0, len(domains))
	for d := range domains {
		names = append(names, d)
	}
	sort.Strings(names)
	sb.WriteString("\n=== Domains ===\n")
	for _, d := range names {
		name := d
		if name == "" {
			name = "(general)"
		}
		fmt.Fprintf(&sb, "  %s: %d samples\n", name, domains[d])
	}

	return sb.String()
}
