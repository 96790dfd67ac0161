package tfidf

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

const minTokenRunes = 2

// Term is one non-zero entry of a sparse vector.
type Term struct {
	Index  int
	Weight float64
}

// Vector is a sparse TF-IDF vector ordered by term index.
type Vector []Term

// Vectorizer holds the vocabulary and IDF weights fitted on a document set.
// It is never modified after Fit returns.
type Vectorizer struct {
	vocab map[string]int
	idf   []float64
}

// Tokenize lower-cases s and splits it into runs of letters, digits and
// underscores. Single-rune tokens are dropped.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if utf8.RuneCountInString(cur.String()) >= minTokenRunes {
			tokens = append(tokens, cur.String())
		}
		cur.Reset()
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			cur.WriteRune(r)
		} else if cur.Len() > 0 {
			flush()
		}
	}
	if cur.Len() > 0 {
		flush()
	}
	return tokens
}

// Fit builds a vocabulary over docs and returns the vectorizer together with
// one vector per document, in input order.
func Fit(docs []string) (*Vectorizer, []Vector) {
	vocab := make(map[string]int)
	tokenized := make([][]string, len(docs))
	for i, doc := range docs {
		tokenized[i] = Tokenize(doc)
		for _, tok := range tokenized[i] {
			if _, ok := vocab[tok]; !ok {
				vocab[tok] = len(vocab)
			}
		}
	}

	df := make([]int, len(vocab))
	counts := make([]map[int]int, len(docs))
	for i, tokens := range tokenized {
		tf := make(map[int]int)
		for _, tok := range tokens {
			tf[vocab[tok]]++
		}
		for idx := range tf {
			df[idx]++
		}
		counts[i] = tf
	}

	// Smoothed IDF, as if one extra document contained every term.
	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for i, d := range df {
		idf[i] = math.Log((1+n)/(1+float64(d))) + 1.0
	}

	v := &Vectorizer{vocab: vocab, idf: idf}
	vecs := make([]Vector, len(docs))
	for i, tf := range counts {
		vecs[i] = v.weigh(tf)
	}
	return v, vecs
}

// Transform maps doc into the fitted space. Terms outside the vocabulary
// carry no weight.
func (v *Vectorizer) Transform(doc string) Vector {
	tf := make(map[int]int)
	for _, tok := range Tokenize(doc) {
		if idx, ok := v.vocab[tok]; ok {
			tf[idx]++
		}
	}
	return v.weigh(tf)
}

func (v *Vectorizer) weigh(tf map[int]int) Vector {
	vec := make(Vector, 0, len(tf))
	for idx, count := range tf {
		vec = append(vec, Term{Index: idx, Weight: float64(count) * v.idf[idx]})
	}
	sort.Slice(vec, func(a, b int) bool {
		return vec[a].Index < vec[b].Index
	})
	return vec
}

func (v *Vectorizer) VocabularySize() int {
	return len(v.vocab)
}

func (v *Vectorizer) Contains(term string) bool {
	_, ok := v.vocab[strings.ToLower(term)]
	return ok
}

// IDF returns the inverse document frequency of term, or 0 when the term is
// not in the vocabulary.
func (v *Vectorizer) IDF(term string) float64 {
	idx, ok := v.vocab[strings.ToLower(term)]
	if !ok {
		return 0
	}
	return v.idf[idx]
}

// Cosine returns the cosine similarity of two vectors, or 0 if either is empty.
func Cosine(a, b Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Index == b[j].Index:
			dot += a[i].Weight * b[j].Weight
			i++
			j++
		case a[i].Index < b[j].Index:
			i++
		default:
			j++
		}
	}
	normA, normB := squaredNorm(a), squaredNorm(b)
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / math.Sqrt(normA*normB)
	if sim > 1 {
		return 1
	}
	return sim
}

func squaredNorm(v Vector) float64 {
	var sum float64
	for _, t := range v {
		sum += t.Weight * t.Weight
	}
	return sum
}
