// Package corpus loads the raw policy documents the retrieval index is built
// from. A missing required document is a configuration failure surfaced at
// startup, never a runtime error.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	logx "github.com/hrassist-core-poc/server/pkg/logger"
)

// Document is one raw source document: the filename it came from, the title
// taken from its first line, and its cleaned text.
type Document struct {
	Source string
	Title  string
	Text   string
}

// RequiredPolicies are the documents the assistant cannot start without.
var RequiredPolicies = []string{
	"leave_policy.txt",
	"remote_work_policy.txt",
	"expense_policy.txt",
	"code_of_conduct.txt",
	"it_security_policy.txt",
}

var (
	reSpaces      = regexp.MustCompile(`[ \t]+`)
	reHyphenBreak = regexp.MustCompile(`(\w)-\n(\w)`)
	reManyBreaks  = regexp.MustCompile(`\n{3,}`)
	rePunctJoin   = regexp.MustCompile(`([.!?])([A-Z])`)
)

// Load reads every .txt document under dir, validating that all required
// files are present. Documents are returned sorted by filename so downstream
// chunk ids are deterministic.
func Load(dir string, required []string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read docs dir %q: %w", dir, err)
	}

	available := map[string]bool{}
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			available[e.Name()] = true
		}
	}

	var missing []string
	for _, name := range required {
		if !available[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required documents in %q: %s", dir, strings.Join(missing, ", "))
	}

	log := logx.Component("corpus")

	names := make([]string, 0, len(available))
	for name := range available {
		names = append(names, name)
	}
	sort.Strings(names)

	docs := make([]Document, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read document %q: %w", name, err)
		}
		text := CleanText(string(raw))
		if text == "" {
			return nil, fmt.Errorf("document %q is empty after cleanup", name)
		}
		doc := Document{
			Source: name,
			Title:  titleOf(text),
			Text:   text,
		}
		log.Debug().Str("source", doc.Source).Str("title", doc.Title).Int("chars", len(doc.Text)).Msg("loaded document")
		docs = append(docs, doc)
	}
	return docs, nil
}

// CleanText normalises whitespace and repairs common extraction artifacts
// (hyphenated line breaks, missing space after sentence punctuation) so
// chunk boundaries land on real sentence structure.
func CleanText(text string) string {
	text = reSpaces.ReplaceAllString(text, " ")
	text = reHyphenBreak.ReplaceAllString(text, "$1$2")
	text = reManyBreaks.ReplaceAllString(text, "\n\n")
	text = rePunctJoin.ReplaceAllString(text, "$1 $2")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func titleOf(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return strings.TrimSpace(text[:i])
	}
	return strings.TrimSpace(text)
}
