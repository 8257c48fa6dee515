package ingest

import (
	"context"
	"log/slog"
	"net/http"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/parley/core"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the overlap between adjacent chunks from the
	// same source, in characters.
	DefaultChunkOverlap = 20
)

// Pipeline turns source material into normalized, overlapping chunks.
// Extraction fans out over a worker pool; per-source failures are isolated.
type Pipeline struct {
	pool         *ants.Pool
	chunkSize    int
	chunkOverlap int
	httpClient   *http.Client
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent extraction.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithChunkSize sets the maximum chunk length in characters.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.chunkSize = size
		}
		return nil
	}
}

// WithChunkOverlap sets the overlap between adjacent chunks in characters.
func WithChunkOverlap(overlap int) Option {
	return func(p *Pipeline) error {
		if overlap >= 0 {
			p.chunkOverlap = overlap
		}
		return nil
	}
}

// WithHTTPClient sets the client used to fetch URL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) error {
		if client != nil {
			p.httpClient = client
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new chunking pipeline.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		pool:         pool,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		logger:       slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Overlap must leave room for new content in every chunk.
	if p.chunkOverlap >= p.chunkSize {
		p.chunkOverlap = p.chunkSize / 4
	}

	return p, nil
}

// ChunkPath expands a data path (directory, list file or URL) and chunks the
// resulting sources.
func (p *Pipeline) ChunkPath(ctx context.Context, dataPath string) ([]core.Chunk, error) {
	items, err := Expand(dataPath)
	if err != nil {
		return nil, err
	}
	return p.Chunk(ctx, items)
}

// Chunk extracts, normalizes and splits every source concurrently. A source
// that fails extraction is logged and contributes zero chunks; the remaining
// sources are still processed. The order of the returned chunks follows the
// order of the input sources, with chunks from one source kept contiguous.
func (p *Pipeline) Chunk(ctx context.Context, sources []core.SourceItem) ([]core.Chunk, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.chunkSize),
		textsplitter.WithChunkOverlap(p.chunkOverlap),
	)

	var wg sync.WaitGroup
	perSource := make([][]core.Chunk, len(sources))

	for i, item := range sources {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			chunks, err := p.chunkOne(ctx, splitter, item)
			if err != nil {
				// Isolate the failure: this source yields nothing, the rest
				// of the ingestion continues.
				p.logger.Error("failed to process source", "source", item.Identifier, "err", err)
				return
			}
			perSource[i] = chunks
		})
		if err != nil {
			wg.Done()
			p.logger.Error("failed to submit source to pool", "source", item.Identifier, "err", err)
		}
	}
	wg.Wait()

	var chunks []core.Chunk
	for _, sc := range perSource {
		chunks = append(chunks, sc...)
	}

	p.logger.Info("chunked sources", "sources", len(sources), "chunks", len(chunks))
	return chunks, nil
}

func (p *Pipeline) chunkOne(ctx context.Context, splitter textsplitter.RecursiveCharacter, item core.SourceItem) ([]core.Chunk, error) {
	if item.Kind == core.SourceUnknown {
		p.logger.Warn("skipping unsupported source", "source", item.Identifier)
		return nil, nil
	}

	p.logger.Info("processing source", "source", item.Identifier, "kind", item.Kind.String())

	segments, err := p.extract(ctx, item)
	if err != nil {
		return nil, err
	}

	var chunks []core.Chunk
	for _, segment := range segments {
		text := Normalize(segment)
		if text == "" {
			continue
		}

		parts, err := splitter.SplitText(text)
		if err != nil {
			return nil, err
		}

		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			chunks = append(chunks, core.Chunk{
				Id:     core.IDFromContent(item.Identifier + "\x00" + part),
				Source: item.Identifier,
				Text:   part,
			})
		}
	}

	return chunks, nil
}

var blankLines = regexp.MustCompile(`\n{2,}`)

// Normalize trims surrounding whitespace and collapses runs of blank lines.
func Normalize(text string) string {
	return blankLines.ReplaceAllString(strings.TrimSpace(text), "\n")
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
