package agent

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

const (
	stubProviderName = "stub"
	stubModelName    = "deterministic-v1"

	maxLengthBonus = 0.3
	keywordBonus   = 0.1
	minConfidence  = 0.1
	maxConfidence  = 1.0
	snippetLength  = 150
	maxDraftsCited = 3
)

// categoryKeywords drives the deterministic classifier. "other" has no
// keyword list; it wins only when every other category scores zero.
var categoryKeywords = map[domain.TicketCategory][]string{
	domain.CategoryBilling: {
		"refund", "invoice", "payment", "charge", "billing",
		"money", "cost", "price", "subscription", "cancel",
	},
	domain.CategoryTech: {
		"error", "bug", "crash", "issue", "problem",
		"not working", "broken", "stack", "code", "login",
	},
	domain.CategoryShipping: {
		"delivery", "shipment", "package", "tracking",
		"shipping", "order", "delayed", "arrived",
	},
}

var draftOpenings = map[domain.TicketCategory]string{
	domain.CategoryBilling:  "Thank you for contacting us regarding your billing concern. ",
	domain.CategoryTech:     "Thank you for reporting this technical issue. ",
	domain.CategoryShipping: "Thank you for contacting us about your shipment. ",
	domain.CategoryOther:    "Thank you for contacting our support team. ",
}

// StubProvider classifies by keyword overlap and drafts templated replies.
// An optional seeded rand adds jitter to the confidence; with a nil rand the
// provider is fully deterministic.
type StubProvider struct {
	promptVersion string

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStubProvider constructs the deterministic provider. Pass a non-nil rng
// to enable confidence jitter; the same seed reproduces the same scores.
func NewStubProvider(promptVersion string, rng *rand.Rand) *StubProvider {
	if promptVersion == "" {
		promptVersion = "1.0.0"
	}
	return &StubProvider{promptVersion: promptVersion, rng: rng}
}

// Name identifies the provider variant.
func (p *StubProvider) Name() string { return stubProviderName }

// Classify scores the text against each category's keyword list and picks the
// best match, defaulting to "other" when nothing matches.
func (p *StubProvider) Classify(ctx context.Context, text string) (*Classification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	lower := strings.ToLower(text)
	best := domain.CategoryOther
	bestScore := 0.0
	var matched []string

	for _, category := range domain.Categories() {
		words := categoryKeywords[category]
		if len(words) == 0 {
			continue
		}
		var hits []string
		for _, word := range words {
			if strings.Contains(lower, word) {
				hits = append(hits, word)
			}
		}
		score := float64(len(hits)) / float64(len(words))
		if score > bestScore {
			bestScore = score
			best = category
			matched = hits
		}
	}

	confidence := bestScore
	wordCount := float64(len(strings.Fields(text)))
	confidence += math.Min(wordCount/50, maxLengthBonus)
	confidence += float64(len(matched)) * keywordBonus
	confidence += p.jitter()
	confidence = clamp(confidence, minConfidence, maxConfidence)
	confidence = math.Round(confidence*100) / 100

	return &Classification{
		PredictedCategory: best,
		Confidence:        confidence,
		MatchedKeywords:   matched,
		ModelInfo: domain.ModelInfo{
			Provider:      stubProviderName,
			Model:         stubModelName,
			PromptVersion: p.promptVersion,
			LatencyMs:     time.Since(start).Milliseconds(),
		},
	}, nil
}

// Draft assembles a templated reply: a category-specific opening, up to three
// numbered article citations with body snippets, and a closing line. With no
// articles it falls back to a generic acknowledgement.
func (p *StubProvider) Draft(ctx context.Context, text string, articles []domain.Article) (*Draft, error) {
	classification, err := p.Classify(ctx, text)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	var b strings.Builder
	b.WriteString(draftOpenings[classification.PredictedCategory])

	var citations []string
	if len(articles) > 0 {
		b.WriteString("Based on our knowledge base, here are some resources that might help:\n\n")
		for i, article := range articles {
			if i == maxDraftsCited {
				break
			}
			fmt.Fprintf(&b, "%d. %s\n   %s\n\n", i+1, article.Title, snippet(article.Body))
			citations = append(citations, article.ID)
		}
		b.WriteString("If these resources don't resolve your issue, please let us know and we'll be happy to assist you further.\n\n")
	} else {
		b.WriteString("We're looking into your request and will get back to you shortly.\n\n")
	}
	b.WriteString("Best regards,\nSupport Team")

	return &Draft{
		Reply:     b.String(),
		Citations: citations,
		ModelInfo: domain.ModelInfo{
			Provider:      stubProviderName,
			Model:         stubModelName,
			PromptVersion: p.promptVersion,
			LatencyMs:     time.Since(start).Milliseconds(),
		},
	}, nil
}

func (p *StubProvider) jitter() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rng == nil {
		return 0
	}
	return (p.rng.Float64() - 0.5) * 0.2
}

func snippet(body string) string {
	if len(body) <= snippetLength {
		return body
	}
	return body[:snippetLength] + "..."
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
