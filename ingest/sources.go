package ingest

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/parley/core"
)

// Classify derives the SourceItem for one identifier from its URL shape or
// file extension.
func Classify(identifier string) core.SourceItem {
	item := core.SourceItem{Identifier: identifier}

	if isURL(identifier) {
		item.Kind = core.SourceURL
		return item
	}

	switch strings.ToLower(filepath.Ext(identifier)) {
	case ".pdf":
		item.Kind = core.SourcePDF
	case ".txt":
		item.Kind = core.SourceText
	case ".csv":
		item.Kind = core.SourceCSV
	case ".docx":
		item.Kind = core.SourceDocx
	default:
		item.Kind = core.SourceUnknown
	}
	return item
}

// ClassifyAll classifies a literal list of identifiers.
func ClassifyAll(identifiers []string) []core.SourceItem {
	items := make([]core.SourceItem, 0, len(identifiers))
	for _, id := range identifiers {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		items = append(items, Classify(id))
	}
	return items
}

// Expand resolves a single data path into source items:
//   - a URL expands to itself
//   - a directory expands to its direct children
//   - a single file is read as a newline-delimited list of identifiers
func Expand(dataPath string) ([]core.SourceItem, error) {
	if isURL(dataPath) {
		return []core.SourceItem{Classify(dataPath)}, nil
	}

	info, err := os.Stat(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSourceNotFound
		}
		return nil, err
	}

	if info.IsDir() {
		entries, err := os.ReadDir(dataPath)
		if err != nil {
			return nil, err
		}
		items := make([]core.SourceItem, 0, len(entries))
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			items = append(items, Classify(filepath.Join(dataPath, entry.Name())))
		}
		return items, nil
	}

	// A single file is a newline-delimited list of identifiers.
	content, err := os.ReadFile(dataPath)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	items := ClassifyAll(lines)
	if len(items) == 0 {
		return nil, ErrNoSources
	}
	return items, nil
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
