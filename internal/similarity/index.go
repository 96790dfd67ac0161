package similarity

import (
	"errors"
	"fmt"

	"ticketdraft/internal/domain"
	"ticketdraft/internal/tfidf"
)

var (
	ErrEmptyCorpus   = errors.New("similarity: corpus is empty")
	ErrModelMismatch = errors.New("similarity: model was built from a different corpus")
)

// Model is a TF-IDF vector space over the subjects of one corpus. It is
// read-only once built; rebuild it whenever the corpus changes.
type Model struct {
	vectorizer *tfidf.Vectorizer
	docs       []tfidf.Vector
}

// Match is the historical ticket closest to a query subject.
type Match struct {
	Index      int
	Record     domain.TicketRecord
	Similarity float64
}

func Build(corpus domain.Corpus) *Model {
	v, docs := tfidf.Fit(corpus.Subjects())
	return &Model{vectorizer: v, docs: docs}
}

// Len is the number of documents the model was built from.
func (m *Model) Len() int {
	return len(m.docs)
}

func (m *Model) VocabularySize() int {
	return m.vectorizer.VocabularySize()
}

// Knows reports whether term appeared in any subject at build time.
func (m *Model) Knows(term string) bool {
	return m.vectorizer.Contains(term)
}

// Similarities scores subject against every document, in corpus order.
func (m *Model) Similarities(subject string) []float64 {
	q := m.vectorizer.Transform(subject)
	out := make([]float64, len(m.docs))
	for i, doc := range m.docs {
		out[i] = tfidf.Cosine(q, doc)
	}
	return out
}

// FindNearest returns the record whose subject is most similar to subject.
// Ties, including a query with no known terms, go to the earliest record.
func FindNearest(m *Model, corpus domain.Corpus, subject string) (Match, error) {
	if len(corpus) == 0 {
		return Match{}, ErrEmptyCorpus
	}
	if m == nil || m.Len() != len(corpus) {
		return Match{}, fmt.Errorf("%w: model has %d documents, corpus has %d", ErrModelMismatch, modelLen(m), len(corpus))
	}

	sims := m.Similarities(subject)
	best := 0
	for i := 1; i < len(sims); i++ {
		if sims[i] > sims[best] {
			best = i
		}
	}
	return Match{Index: best, Record: corpus[best], Similarity: sims[best]}, nil
}

func modelLen(m *Model) int {
	if m == nil {
		return 0
	}
	return m.Len()
}
