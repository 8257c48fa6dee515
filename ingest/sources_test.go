package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/parley/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		identifier string
		want       core.SourceKind
	}{
		{"docs/manual.pdf", core.SourcePDF},
		{"notes.TXT", core.SourceText},
		{"table.csv", core.SourceCSV},
		{"report.docx", core.SourceDocx},
		{"https://example.com/page", core.SourceURL},
		{"http://example.com", core.SourceURL},
		{"archive.tar.gz", core.SourceUnknown},
		{"plain", core.SourceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			item := Classify(tt.identifier)
			assert.Equal(t, tt.want, item.Kind)
			assert.Equal(t, tt.identifier, item.Identifier)
		})
	}
}

func TestExpandDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("%PDF"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))

	items, err := Expand(dir)
	require.NoError(t, err)

	// Direct children only, subdirectories skipped.
	require.Len(t, items, 2)
	kinds := map[core.SourceKind]bool{}
	for _, item := range items {
		kinds[item.Kind] = true
	}
	assert.True(t, kinds[core.SourceText])
	assert.True(t, kinds[core.SourcePDF])
}

func TestExpandListFile(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "sources.list")
	content := "doc1.pdf\n\n  doc2.txt  \nhttps://example.com/page\n"
	require.NoError(t, os.WriteFile(list, []byte(content), 0644))

	items, err := Expand(list)
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, core.SourcePDF, items[0].Kind)
	assert.Equal(t, "doc2.txt", items[1].Identifier)
	assert.Equal(t, core.SourceURL, items[2].Kind)
}

func TestExpandURL(t *testing.T) {
	items, err := Expand("https://example.com/docs")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, core.SourceURL, items[0].Kind)
}

func TestExpandMissingPath(t *testing.T) {
	_, err := Expand(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestExpandEmptyListFile(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "empty.list")
	require.NoError(t, os.WriteFile(list, []byte("\n  \n"), 0644))

	_, err := Expand(list)
	assert.ErrorIs(t, err, ErrNoSources)
}
