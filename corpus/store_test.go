package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/poiesic/parley/ai/mock"
	"github.com/poiesic/parley/core"
	"github.com/poiesic/parley/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *mock.MockEmbedder) {
	t.Helper()

	pipeline, err := ingest.NewPipeline()
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	embedder := mock.NewMockEmbedder()
	store, err := NewStore(t.TempDir(), embedder, pipeline)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, embedder
}

func testChunks(source string, texts ...string) []core.Chunk {
	chunks := make([]core.Chunk, 0, len(texts))
	for _, text := range texts {
		chunks = append(chunks, core.Chunk{
			Id:     core.IDFromContent(source + "\x00" + text),
			Source: source,
			Text:   text,
		})
	}
	return chunks
}

func TestBuildAndQuery(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	chunks := testChunks("doc.txt",
		"the capital of france is paris",
		"badgers are nocturnal mammals",
		"go is a statically typed language",
	)
	require.NoError(t, store.Build(ctx, "kb", chunks))
	assert.True(t, store.Exists("kb"))

	matches, err := store.Query(ctx, "kb", "the capital of france is paris", 2, ModeSimilarityScore)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	// The identical text must rank first with the best score.
	assert.Equal(t, "the capital of france is paris", matches[0].Text)
	assert.Equal(t, "doc.txt", matches[0].Source)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

func TestBuildEmptyCorpus(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Build(context.Background(), "empty", nil)
	assert.ErrorIs(t, err, ErrEmptyCorpus)
	assert.False(t, store.Exists("empty"), "no index may be written for an empty build")
}

func TestBuildExistingIndex(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Build(ctx, "kb", testChunks("a.txt", "content")))

	err := store.Build(ctx, "kb", testChunks("b.txt", "more content"))
	assert.ErrorIs(t, err, ErrIndexExists)
}

func TestBuildDiscardsPartialIndex(t *testing.T) {
	store, embedder := newTestStore(t)
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, fmt.Errorf("embedding backend down")
	}

	err := store.Build(context.Background(), "kb", testChunks("a.txt", "content"))
	require.Error(t, err)
	assert.False(t, store.Exists("kb"), "a failed build must not leave an index behind")
}

func TestLoadMissingIndex(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrIndexNotFound)
}

func TestCreateOrLoadBuildOncePolicy(t *testing.T) {
	store, embedder := newTestStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	docA := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(docA, []byte("first document content"), 0644))

	sources := []core.SourceItem{ingest.Classify(docA)}
	require.NoError(t, store.CreateOrLoad(ctx, "kb", sources))
	embedsAfterBuild := embedder.CallCount()

	// Second call with different sources is a pure load: no re-ingestion.
	docB := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(docB, []byte("other document content"), 0644))
	require.NoError(t, store.CreateOrLoad(ctx, "kb", []core.SourceItem{ingest.Classify(docB)}))

	assert.Equal(t, embedsAfterBuild, embedder.CallCount(), "existing index must not be rebuilt")

	matches, err := store.Query(ctx, "kb", "first document content", 0, ModeSimilarityScore)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, docA, matches[0].Source)
}

func TestAddAppendsToExistingIndex(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	docA := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(docA, []byte("alpha content here"), 0644))
	docB := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(docB, []byte("beta content there"), 0644))

	require.NoError(t, store.Add(ctx, "kb", []core.SourceItem{ingest.Classify(docA)}))
	require.NoError(t, store.Add(ctx, "kb", []core.SourceItem{ingest.Classify(docB)}))

	matches, err := store.Query(ctx, "kb", "content", 10, ModeSimilarityScore)
	require.NoError(t, err)

	sources := map[string]bool{}
	for _, m := range matches {
		sources[m.Source] = true
	}
	assert.True(t, sources[docA])
	assert.True(t, sources[docB])
}

func TestClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Build(ctx, "kb", testChunks("a.txt", "content")))
	require.NoError(t, store.Clear("kb"))
	assert.False(t, store.Exists("kb"))

	// Clearing again fails: the location no longer exists.
	assert.ErrorIs(t, store.Clear("kb"), ErrCorpusNotFound)
}

func TestQueryDefaultK(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	texts := make([]string, 8)
	for i := range texts {
		texts[i] = fmt.Sprintf("document number %d about topic %d", i, i)
	}
	require.NoError(t, store.Build(ctx, "kb", testChunks("doc.txt", texts...)))

	matches, err := store.Query(ctx, "kb", "topic", 0, ModeSimilarity)
	require.NoError(t, err)
	assert.Len(t, matches, DefaultQueryK)
	for _, m := range matches {
		assert.Zero(t, m.Score, "similarity mode omits scores")
	}
}

func TestQueryMMR(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Build(ctx, "kb", testChunks("doc.txt",
		"alpha", "beta", "gamma", "delta", "epsilon",
	)))

	matches, err := store.Query(ctx, "kb", "alpha", 3, ModeMMR)
	require.NoError(t, err)
	assert.Len(t, matches, 3)
}

func TestRetrieverThreshold(t *testing.T) {
	store, embedder := newTestStore(t)
	ctx := context.Background()

	// Orthogonal unit vectors per text: only the identical text scores 1,
	// everything else scores 0 and falls below the threshold.
	axis := map[string]int{"red": 0, "green": 1, "blue": 2}
	embed := func(text string) []float32 {
		v := make([]float32, 3)
		if i, ok := axis[text]; ok {
			v[i] = 1
		}
		return v
	}
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return embed(text), nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, t := range texts {
			out[i] = embed(t)
		}
		return out, nil
	}

	require.NoError(t, store.Build(ctx, "kb", testChunks("doc.txt", "red", "green", "blue")))

	retriever := store.Retriever("kb")
	matches, err := retriever.Relevant(ctx, "red")
	require.NoError(t, err)
	require.Len(t, matches, 1, "below-threshold matches are excluded, not padded")
	assert.Equal(t, "red", matches[0].Text)
}

func TestRetrieverMissingIndex(t *testing.T) {
	store, _ := newTestStore(t)

	retriever := store.Retriever("ghost")
	matches, err := retriever.Relevant(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestConcurrentBuildsDistinctCorpora(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("corpus-%d", i)
			errs[i] = store.Build(ctx, id, testChunks("doc.txt", fmt.Sprintf("content %d", i)))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "build %d", i)
		assert.True(t, store.Exists(fmt.Sprintf("corpus-%d", i)))
	}
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "kb", NormalizeID("kb"))
	assert.Equal(t, "kb", NormalizeID("/data/dbs/kb"))
	assert.Equal(t, "kb", NormalizeID("  dbs/kb "))
}

func TestRecordRoundTrip(t *testing.T) {
	rec := &record{
		Id:     42,
		Source: "doc.txt",
		Text:   "some chunk text",
		Vector: []float32{0.1, -0.5, 0.25},
	}

	got, err := unmarshalRecord(marshalRecord(rec))
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}
