package embeddings

import (
	"context"
	"math"
	"testing"
)

func TestSimpleProviderDeterministic(t *testing.T) {
	p := NewSimpleProvider()
	ctx := context.Background()

	a, err := p.Embed(ctx, "втрата житла через обстріли")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := p.Embed(ctx, "втрата житла через обстріли")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if len(a) != Dimensions {
		t.Fatalf("got %d dimensions, want %d", len(a), Dimensions)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at dimension %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestSimpleProviderUnitNorm(t *testing.T) {
	p := NewSimpleProvider()

	vec, err := p.Embed(context.Background(), "people need warm shelter and legal aid")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-5 {
		t.Errorf("vector norm = %f, want 1.0", math.Sqrt(norm))
	}
}

func TestSimpleProviderSharedKeywordsCloser(t *testing.T) {
	p := NewSimpleProvider()
	ctx := context.Background()

	base, _ := p.Embed(ctx, "housing shelter displacement")
	similar, _ := p.Embed(ctx, "housing shelter support")
	unrelated, _ := p.Embed(ctx, "music festival tickets")

	if dot(base, similar) <= dot(base, unrelated) {
		t.Error("texts sharing keywords must score higher than unrelated texts")
	}
}

func TestSimpleProviderEmptyText(t *testing.T) {
	p := NewSimpleProvider()

	vec, err := p.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("empty text must embed to the zero vector, dimension %d = %v", i, v)
		}
	}
}

func TestTokenizeUkrainian(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Втрата житла, через обстріли!", []string{"втрата", "житла", "через", "обстріли"}},
		{"об'єднання сімей", []string{"об'єднання", "сімей"}},
		{"а б в", nil}, // single-rune tokens are dropped
	}
	for _, tt := range tests {
		got := tokenize(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("tokenize(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
