package similarity

import (
	"errors"
	"sync/atomic"
	"time"

	"ticketdraft/internal/domain"
)

var ErrNoIndex = errors.New("similarity: no index published")

// Index pairs a corpus with the model built from it.
type Index struct {
	Corpus   domain.Corpus
	Model    *Model
	Source   string
	LoadedAt time.Time
}

func NewIndex(corpus domain.Corpus, source string) *Index {
	return &Index{
		Corpus:   corpus,
		Model:    Build(corpus),
		Source:   source,
		LoadedAt: time.Now(),
	}
}

func (idx *Index) Nearest(subject string) (Match, error) {
	return FindNearest(idx.Model, idx.Corpus, subject)
}

// Holder publishes the current Index. Readers always see a complete index;
// a rebuild replaces the reference and never touches the old one.
type Holder struct {
	current atomic.Pointer[Index]
}

func NewHolder(idx *Index) *Holder {
	h := &Holder{}
	if idx != nil {
		h.Store(idx)
	}
	return h
}

func (h *Holder) Load() *Index {
	return h.current.Load()
}

func (h *Holder) Store(idx *Index) {
	h.current.Store(idx)
}

func (h *Holder) Nearest(subject string) (Match, error) {
	idx := h.Load()
	if idx == nil {
		return Match{}, ErrNoIndex
	}
	return idx.Nearest(subject)
}
