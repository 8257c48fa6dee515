package corpus

import (
	"context"
	"errors"
	"log/slog"
)

const (
	// DefaultRetrieverK is the top-k a retriever fetches per query.
	DefaultRetrieverK = 5

	// DefaultScoreThreshold is the minimum similarity a match needs to be
	// included. Matches below the threshold are excluded, never padded.
	DefaultScoreThreshold = 0.1
)

// Retriever answers similarity queries against one corpus with a fixed
// score threshold and top-k. It is the handle a retrieval chain holds.
type Retriever struct {
	store     *Store
	corpusID  string
	k         int
	threshold float32
	logger    *slog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithTopK sets the number of matches fetched per query.
func WithTopK(k int) RetrieverOption {
	return func(r *Retriever) {
		if k > 0 {
			r.k = k
		}
	}
}

// WithScoreThreshold sets the minimum similarity for a match to count.
func WithScoreThreshold(threshold float32) RetrieverOption {
	return func(r *Retriever) {
		r.threshold = threshold
	}
}

// Retriever returns a retriever bound to the corpus identifier.
// The corpus does not need to exist yet; an absent index surfaces as
// ErrIndexNotFound at query time.
func (s *Store) Retriever(corpusID string, opts ...RetrieverOption) *Retriever {
	r := &Retriever{
		store:     s,
		corpusID:  NormalizeID(corpusID),
		k:         DefaultRetrieverK,
		threshold: DefaultScoreThreshold,
		logger:    s.logger.With("corpus", NormalizeID(corpusID)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CorpusID returns the normalized identifier the retriever is bound to.
func (r *Retriever) CorpusID() string {
	return r.corpusID
}

// Relevant returns the matches for the query that clear the score threshold,
// best first. Fewer than k matches may be returned; an empty result is valid.
// A corpus with no persisted index yields zero matches, so a chain over a
// cleared corpus answers from empty context instead of failing.
func (r *Retriever) Relevant(ctx context.Context, query string) ([]Match, error) {
	matches, err := r.store.Query(ctx, r.corpusID, query, r.k, ModeSimilarityScore)
	if errors.Is(err, ErrIndexNotFound) {
		r.logger.Debug("no index for corpus, retrieving nothing")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	relevant := matches[:0]
	for _, m := range matches {
		if m.Score >= r.threshold {
			relevant = append(relevant, m)
		}
	}

	r.logger.Debug("retrieved context", "candidates", len(matches), "relevant", len(relevant))
	return relevant, nil
}
