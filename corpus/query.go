package corpus

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"
)

// QueryMode selects how matches are ranked.
type QueryMode int

const (
	// ModeSimilarity ranks by cosine similarity, scores omitted.
	ModeSimilarity QueryMode = iota
	// ModeSimilarityScore ranks by cosine similarity and reports scores.
	ModeSimilarityScore
	// ModeMMR ranks by max-marginal-relevance, trading similarity to the
	// query against diversity among the results.
	ModeMMR
)

const (
	// DefaultQueryK is the number of matches returned when k is not given.
	DefaultQueryK = 4

	// mmrLambda balances query relevance against result diversity.
	mmrLambda = 0.5
)

// Match is one query result: chunk text, provenance and relevance score.
// Score is zero when the query mode omits scores.
type Match struct {
	Text   string
	Source string
	Score  float32
}

// scored is an internal match that keeps the record vector for MMR.
type scored struct {
	record *record
	score  float32
}

// Query embeds the text and returns up to k matches from the corpus,
// ordered by descending relevance. k defaults to DefaultQueryK.
func (s *Store) Query(ctx context.Context, corpusID, text string, k int, mode QueryMode) ([]Match, error) {
	if k <= 0 {
		k = DefaultQueryK
	}

	id := NormalizeID(corpusID)
	if !s.Exists(corpusID) {
		return nil, ErrIndexNotFound
	}

	db, err := s.handle(id)
	if err != nil {
		return nil, err
	}

	vector, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	vector = normalize(vector)

	// MMR re-ranks a wider candidate set.
	fetch := k
	if mode == ModeMMR {
		fetch = max(4*k, 20)
	}

	candidates, err := scan(db, vector, -1, fetch)
	if err != nil {
		return nil, err
	}

	if mode == ModeMMR {
		candidates = maxMarginalRelevance(vector, candidates, k)
	}

	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		m := Match{Text: c.record.Text, Source: c.record.Source}
		if mode != ModeSimilarity {
			m.Score = c.score
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// scan iterates every chunk record, scoring each against the query vector.
// Records scoring below minScore are dropped; a negative minScore keeps all.
// Results are sorted by descending score and truncated to limit.
func scan(db *badger.DB, vector []float32, minScore float32, limit int) ([]scored, error) {
	var results []scored

	err := db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var rec *record
			err := item.Value(func(val []byte) error {
				var err error
				rec, err = unmarshalRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if rec == nil || len(rec.Vector) == 0 {
				continue
			}

			similarity := dotProduct(vector, rec.Vector)
			if similarity >= minScore {
				results = append(results, scored{record: rec, score: similarity})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b scored) int {
		if a.score > b.score {
			return -1
		}
		if a.score < b.score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// maxMarginalRelevance greedily selects k candidates maximizing
// lambda*sim(query, c) - (1-lambda)*max sim(c, selected).
func maxMarginalRelevance(query []float32, candidates []scored, k int) []scored {
	if len(candidates) <= 1 {
		return candidates
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	selected := make([]scored, 0, k)
	remaining := slices.Clone(candidates)

	for len(selected) < k && len(remaining) > 0 {
		bestIdx := 0
		bestScore := float32(-2)

		for i, c := range remaining {
			redundancy := float32(0)
			for _, s := range selected {
				if sim := dotProduct(c.record.Vector, s.record.Vector); sim > redundancy {
					redundancy = sim
				}
			}
			score := mmrLambda*c.score - (1-mmrLambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}

		selected = append(selected, remaining[bestIdx])
		remaining = slices.Delete(remaining, bestIdx, bestIdx+1)
	}
	return selected
}
