package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
)

const externalProviderName = "external"

// ExternalProvider calls a hosted LLM messages API for classification and
// drafting. It is selected at startup via AGENT_PROVIDER=external.
type ExternalProvider struct {
	apiKey        string
	baseURL       string
	model         string
	promptVersion string
	httpClient    *http.Client
}

// NewExternalProvider builds the client. baseURL defaults to the Anthropic
// API; any messages-compatible endpoint works.
func NewExternalProvider(apiKey, baseURL, model, promptVersion string) *ExternalProvider {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if promptVersion == "" {
		promptVersion = "1.0.0"
	}
	return &ExternalProvider{
		apiKey:        apiKey,
		baseURL:       strings.TrimRight(baseURL, "/"),
		model:         model,
		promptVersion: promptVersion,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Name identifies the provider variant.
func (p *ExternalProvider) Name() string { return externalProviderName }

type externalMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type externalRequest struct {
	Model     string            `json:"model"`
	MaxTokens int               `json:"max_tokens"`
	System    string            `json:"system,omitempty"`
	Messages  []externalMessage `json:"messages"`
}

type externalResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

const classifySystemPrompt = `You classify helpdesk tickets. Respond with a single JSON object
{"category":"billing|tech|shipping|other","confidence":0.0}
where confidence is between 0 and 1. No other output.`

const draftSystemPrompt = `You draft helpdesk replies. Write a short, polite reply to the ticket.
When knowledge-base articles are supplied, cite up to three of them as a numbered list.
Close with "Best regards,\nSupport Team". No other output.`

// Classify asks the model for a category and confidence.
func (p *ExternalProvider) Classify(ctx context.Context, text string) (*Classification, error) {
	start := time.Now()
	raw, err := p.send(ctx, classifySystemPrompt, text)
	if err != nil {
		return nil, err
	}

	var verdict struct {
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &verdict); err != nil {
		return nil, fmt.Errorf("parse classification: %w", err)
	}
	category := domain.TicketCategory(verdict.Category)
	if !domain.ValidCategory(category) {
		category = domain.CategoryOther
	}

	return &Classification{
		PredictedCategory: category,
		Confidence:        clamp(verdict.Confidence, 0, 1),
		ModelInfo: domain.ModelInfo{
			Provider:      externalProviderName,
			Model:         p.model,
			PromptVersion: p.promptVersion,
			LatencyMs:     time.Since(start).Milliseconds(),
		},
	}, nil
}

// Draft asks the model for a reply citing the supplied articles.
func (p *ExternalProvider) Draft(ctx context.Context, text string, articles []domain.Article) (*Draft, error) {
	start := time.Now()

	var b strings.Builder
	b.WriteString("Ticket:\n")
	b.WriteString(text)
	var citations []string
	if len(articles) > 0 {
		b.WriteString("\n\nKnowledge-base articles:\n")
		for i, article := range articles {
			if i == maxDraftsCited {
				break
			}
			fmt.Fprintf(&b, "%d. %s\n%s\n", i+1, article.Title, snippet(article.Body))
			citations = append(citations, article.ID)
		}
	}

	reply, err := p.send(ctx, draftSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	return &Draft{
		Reply:     reply,
		Citations: citations,
		ModelInfo: domain.ModelInfo{
			Provider:      externalProviderName,
			Model:         p.model,
			PromptVersion: p.promptVersion,
			LatencyMs:     time.Since(start).Milliseconds(),
		},
	}, nil
}

func (p *ExternalProvider) send(ctx context.Context, system, user string) (string, error) {
	body, err := json.Marshal(externalRequest{
		Model:     p.model,
		MaxTokens: 1024,
		System:    system,
		Messages:  []externalMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model api error %d: %s", resp.StatusCode, string(respBody))
	}

	var out externalResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	var text strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("model returned no text content")
	}
	return text.String(), nil
}

// extractJSON trims any prose around the first JSON object in the reply.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
