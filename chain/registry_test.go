package chain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/parley/ai/mock"
	"github.com/poiesic/parley/core"
	"github.com/poiesic/parley/corpus"
	"github.com/poiesic/parley/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registryFixture struct {
	registry *Registry
	store    *corpus.Store
	base     string
}

func newTestRegistry(t *testing.T) *registryFixture {
	t.Helper()

	pipeline, err := ingest.NewPipeline()
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	base := t.TempDir()
	store, err := corpus.NewStore(base, mock.NewMockEmbedder(), pipeline)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	registry, err := NewRegistry(store, mock.NewMockGenerator(),
		WithDefaultCorpus("kb"))
	require.NoError(t, err)

	return &registryFixture{registry: registry, store: store, base: base}
}

func buildCorpus(t *testing.T, store *corpus.Store, id string) {
	t.Helper()
	chunks := []core.Chunk{{
		Id:     core.IDFromContent(id),
		Source: "doc.txt",
		Text:   "content for " + id,
	}}
	require.NoError(t, store.Build(context.Background(), id, chunks))
}

func TestInitializeFallsBackToDefault(t *testing.T) {
	registry := newTestRegistry(t).registry

	require.NoError(t, registry.Initialize(context.Background()))
	assert.Equal(t, []string{"kb"}, registry.List())

	c, err := registry.Get("kb")
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestInitializeEnumeratesCorpora(t *testing.T) {
	fx := newTestRegistry(t)
	buildCorpus(t, fx.store, "alpha")
	buildCorpus(t, fx.store, "beta")

	require.NoError(t, fx.registry.Initialize(context.Background()))
	assert.ElementsMatch(t, []string{"alpha", "beta"}, fx.registry.List())
}

func TestInitializeIsolatesBrokenCorpus(t *testing.T) {
	fx := newTestRegistry(t)
	buildCorpus(t, fx.store, "good")

	// A garbage manifest where a badger directory should be makes open fail.
	badDir := filepath.Join(fx.base, "bad")
	require.NoError(t, os.MkdirAll(badDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(badDir, "MANIFEST"), []byte("garbage"), 0644))

	require.NoError(t, fx.registry.Initialize(context.Background()))

	_, err := fx.registry.Get("good")
	assert.NoError(t, err)
}

func TestGetUnknownChain(t *testing.T) {
	registry := newTestRegistry(t).registry

	_, err := registry.Get("ghost")
	assert.ErrorIs(t, err, ErrChainNotFound)
}

func TestUpsertWithoutIndex(t *testing.T) {
	registry := newTestRegistry(t).registry

	require.NoError(t, registry.Upsert(context.Background(), "fresh", false))

	c, err := registry.Get("fresh")
	require.NoError(t, err)

	// A chain over a corpus with no index answers from empty context.
	_, err = c.Answer(context.Background(), "anything?", nil)
	assert.NoError(t, err)
}

func TestUpsertKeepsExistingWithoutForce(t *testing.T) {
	registry := newTestRegistry(t).registry
	ctx := context.Background()

	require.NoError(t, registry.Upsert(ctx, "kb", false))
	first, err := registry.Get("kb")
	require.NoError(t, err)

	require.NoError(t, registry.Upsert(ctx, "kb", false))
	again, err := registry.Get("kb")
	require.NoError(t, err)
	assert.Same(t, first, again)

	require.NoError(t, registry.Upsert(ctx, "kb", true))
	rebuilt, err := registry.Get("kb")
	require.NoError(t, err)
	assert.NotSame(t, first, rebuilt)
}

func TestUpsertEmptyID(t *testing.T) {
	registry := newTestRegistry(t).registry

	err := registry.Upsert(context.Background(), "  ", false)
	assert.ErrorIs(t, err, corpus.ErrEmptyID)
}

func TestRemove(t *testing.T) {
	registry := newTestRegistry(t).registry

	require.NoError(t, registry.Upsert(context.Background(), "kb", false))
	assert.True(t, registry.Remove("kb"))
	assert.False(t, registry.Remove("kb"))

	_, err := registry.Get("kb")
	assert.ErrorIs(t, err, ErrChainNotFound)
}
