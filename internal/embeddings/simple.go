package embeddings

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SimpleProvider generates embeddings using a keyword hashing approach.
// Not semantically meaningful, but deterministic and sufficient for
// development and tests where matching on shared keywords is enough.
type SimpleProvider struct{}

// NewSimpleProvider creates a new SimpleProvider.
func NewSimpleProvider() *SimpleProvider {
	return &SimpleProvider{}
}

// Name returns the provider name.
func (p *SimpleProvider) Name() string {
	return "simple"
}

// Embed generates a pseudo-embedding by hashing words into vector dimensions.
// Words are lowercased, split on whitespace/punctuation, then each word is
// hashed to a dimension index and its contribution is added. Bigrams are
// added with a lower weight to capture word ordering. The result is L2
// normalized so cosine distances behave like the real provider's.
func (p *SimpleProvider) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, Dimensions)

	words := tokenize(text)

	for _, word := range words {
		h := fnv.New64a()
		h.Write([]byte(word))
		idx := h.Sum64() % uint64(Dimensions)
		vec[idx] += 1.0
	}

	for i := 0; i < len(words)-1; i++ {
		bigram := words[i] + " " + words[i+1]
		h := fnv.New64a()
		h.Write([]byte(bigram))
		idx := h.Sum64() % uint64(Dimensions)
		vec[idx] += 0.5
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] = float32(float64(vec[i]) / norm)
		}
	}

	return vec, nil
}

// tokenize splits text into lowercase word tokens. Splitting is
// unicode-aware so Cyrillic input tokenizes the same way Latin does; the
// apostrophe is kept because Ukrainian uses it inside words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
	var result []string
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if utf8.RuneCountInString(f) >= 2 {
			result = append(result, f)
		}
	}
	return result
}
