package kb

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "drops stopwords and short tokens",
			text: "I was charged twice for my subscription",
			want: []string{"charged", "twice", "subscription"},
		},
		{
			name: "lowercases and strips punctuation",
			text: "Payment FAILED: invoice #123 (urgent)!",
			want: []string{"payment", "failed", "invoice", "123", "urgent"},
		},
		{
			name: "caps at ten keywords",
			text: "alpha bravo charlie delta echo foxtrot golf hotel india juliet kilo lima",
			want: []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel", "india", "juliet"},
		},
		{
			name: "empty text",
			text: "",
			want: []string{},
		},
		{
			name: "only stopwords",
			text: "the and or but",
			want: []string{},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractKeywords(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractKeywordsDeterministic(t *testing.T) {
	t.Parallel()
	text := "Where is my package? The tracking page shows no delivery updates."
	first := ExtractKeywords(text)
	for i := 0; i < 3; i++ {
		if got := ExtractKeywords(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d = %v, want %v", i, got, first)
		}
	}
}

func TestWordPairs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "non-overlapping pairs",
			text: "duplicate charge on invoice",
			want: []string{"duplicate charge", "on invoice"},
		},
		{
			name: "odd trailing word is dropped",
			text: "refund my duplicate charge please",
			want: []string{"refund my", "duplicate charge"},
		},
		{
			name: "single word",
			text: "refund",
			want: []string{},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := wordPairs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wordPairs(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
