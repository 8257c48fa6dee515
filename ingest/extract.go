package ingest

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/poiesic/parley/core"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/schema"
)

// extract dispatches a source item to its type-specific extractor and
// returns the raw text segments it produced.
func (p *Pipeline) extract(ctx context.Context, item core.SourceItem) ([]string, error) {
	switch item.Kind {
	case core.SourcePDF:
		return p.extractPDF(ctx, item.Identifier)
	case core.SourceText:
		return p.extractText(ctx, item.Identifier)
	case core.SourceCSV:
		return p.extractCSV(ctx, item.Identifier)
	case core.SourceDocx:
		return extractDocx(item.Identifier)
	case core.SourceURL:
		return p.extractURL(ctx, item.Identifier)
	default:
		return nil, ErrUnsupportedSource
	}
}

func (p *Pipeline) extractPDF(ctx context.Context, filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	docs, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return nil, err
	}

	p.logger.Info("extracted pdf", "source", filePath, "segments", len(docs))
	return segmentTexts(docs), nil
}

func (p *Pipeline) extractText(ctx context.Context, filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := documentloaders.NewText(f).Load(ctx)
	if err != nil {
		return nil, err
	}

	p.logger.Info("extracted text file", "source", filePath, "segments", len(docs))
	return segmentTexts(docs), nil
}

func (p *Pipeline) extractCSV(ctx context.Context, filePath string) ([]string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	docs, err := documentloaders.NewCSV(f).Load(ctx)
	if err != nil {
		return nil, err
	}

	p.logger.Info("extracted csv", "source", filePath, "segments", len(docs))
	return segmentTexts(docs), nil
}

func (p *Pipeline) extractURL(ctx context.Context, pageURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
	}

	docs, err := documentloaders.NewHTML(resp.Body).Load(ctx)
	if err != nil {
		return nil, err
	}

	p.logger.Info("extracted web page", "source", pageURL, "segments", len(docs))
	return segmentTexts(docs), nil
}

func segmentTexts(docs []schema.Document) []string {
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		texts = append(texts, doc.PageContent)
	}
	return texts
}
