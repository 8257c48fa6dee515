package ingest

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/parley/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"collapses blank lines", "a\n\n\n\nb", "a\nb"},
		{"keeps single newlines", "a\nb", "a\nb"},
		{"empty input", "   \n\n  ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestChunkTextSource(t *testing.T) {
	p, err := NewPipeline(WithChunkSize(100), WithChunkOverlap(20))
	require.NoError(t, err)
	defer p.Release()

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 20)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))

	chunks, err := p.Chunk(context.Background(), []core.SourceItem{Classify(path)})
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Text), 100, "chunk exceeds configured max size")
		assert.NotEmpty(t, strings.TrimSpace(chunk.Text))
		assert.Equal(t, path, chunk.Source)
		assert.NotZero(t, chunk.Id)
	}
}

func TestChunkAdjacentOverlap(t *testing.T) {
	const (
		size    = 100
		overlap = 20
	)

	p, err := NewPipeline(WithChunkSize(size), WithChunkOverlap(overlap))
	require.NoError(t, err)
	defer p.Release()

	// A separator-free character stream forces the splitter down to its
	// character level, where the overlap carry-over is exact. Non-repeating
	// content so a shared window cannot match by accident.
	var sb strings.Builder
	seed := uint32(2463534242)
	for sb.Len() < 4*size {
		seed = seed*1664525 + 1013904223
		sb.WriteByte(byte('a' + seed%26))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0644))

	chunks, err := p.Chunk(context.Background(), []core.SourceItem{Classify(path)})
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		require.GreaterOrEqual(t, len(prev), overlap)
		tail := prev[len(prev)-overlap:]
		assert.True(t, strings.HasPrefix(chunks[i].Text, tail),
			"chunk %d must start with the last %d characters of chunk %d", i, overlap, i-1)
	}
}

func TestChunkIsolatesFailingSource(t *testing.T) {
	p, err := NewPipeline()
	require.NoError(t, err)
	defer p.Release()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good, []byte("healthy document content"), 0644))

	// A pdf extension over garbage bytes makes the PDF extractor fail.
	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("not a pdf at all"), 0644))

	chunks, err := p.Chunk(context.Background(), []core.SourceItem{
		Classify(bad),
		Classify(good),
	})
	require.NoError(t, err, "one malformed source must not fail the ingestion")
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.Equal(t, good, chunk.Source, "chunks must only come from the well-formed document")
	}
}

func TestChunkSkipsUnsupportedSource(t *testing.T) {
	p, err := NewPipeline()
	require.NoError(t, err)
	defer p.Release()

	dir := t.TempDir()
	good := filepath.Join(dir, "good.txt")
	require.NoError(t, os.WriteFile(good, []byte("supported content"), 0644))

	chunks, err := p.Chunk(context.Background(), []core.SourceItem{
		Classify(filepath.Join(dir, "mystery.bin")),
		Classify(good),
	})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, good, chunks[0].Source)
}

func TestChunkNoSources(t *testing.T) {
	p, err := NewPipeline()
	require.NoError(t, err)
	defer p.Release()

	_, err = p.Chunk(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoSources)
}

func TestChunkMissingFile(t *testing.T) {
	p, err := NewPipeline()
	require.NoError(t, err)
	defer p.Release()

	chunks, err := p.Chunk(context.Background(), []core.SourceItem{
		Classify(filepath.Join(t.TempDir(), "gone.txt")),
	})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestExtractDocx(t *testing.T) {
	path := writeTestDocx(t, []string{"First paragraph.", "Second paragraph."})

	segments, err := extractDocx(path)
	require.NoError(t, err)
	require.Len(t, segments, 2)
	assert.Equal(t, "First paragraph.", segments[0])
	assert.Equal(t, "Second paragraph.", segments[1])
}

func TestExtractDocxNotAnArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("plain bytes"), 0644))

	_, err := extractDocx(path)
	assert.Error(t, err)
}

// writeTestDocx builds a minimal docx archive with one run per paragraph.
func writeTestDocx(t *testing.T, paragraphs []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		sb.WriteString("<w:p><w:r><w:t>")
		sb.WriteString(p)
		sb.WriteString("</w:t></w:r></w:p>")
	}
	sb.WriteString(`</w:body></w:document>`)

	_, err = w.Write([]byte(sb.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return path
}
