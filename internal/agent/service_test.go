package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/domain"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/kb"
	"github.com/purnachandra9816-del/Smart-Helpdesk-with-Agentic-Triage/internal/repository"
)

type mockTicketRepo struct {
	mu         sync.Mutex
	tickets    map[string]domain.Ticket
	replies    []domain.TicketReply
	updates    int
	failUpdate bool
}

func newMockTicketRepo(tickets ...domain.Ticket) *mockTicketRepo {
	m := &mockTicketRepo{tickets: make(map[string]domain.Ticket)}
	for _, t := range tickets {
		m.tickets[t.ID] = t
	}
	return m
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *mockTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate {
		return errors.New("update failed")
	}
	if _, ok := m.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.tickets[ticket.ID] = *ticket
	m.updates++
	return nil
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := ticket
	return &copied, nil
}

func (m *mockTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, errors.New("not implemented")
}

func (m *mockTicketRepo) AppendReply(ctx context.Context, reply *domain.TicketReply) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reply.ID = fmt.Sprintf("reply-%d", len(m.replies)+1)
	m.replies = append(m.replies, *reply)
	return nil
}

func (m *mockTicketRepo) ListReplies(ctx context.Context, ticketID string) ([]domain.TicketReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TicketReply{}, m.replies...), nil
}

func (m *mockTicketRepo) get(id string) domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tickets[id]
}

type mockSuggestionRepo struct {
	mu          sync.Mutex
	suggestions map[string]domain.AgentSuggestion
	seq         int
	failCreate  bool
	deleted     []string
}

func newMockSuggestionRepo() *mockSuggestionRepo {
	return &mockSuggestionRepo{suggestions: make(map[string]domain.AgentSuggestion)}
}

func (m *mockSuggestionRepo) Create(ctx context.Context, s *domain.AgentSuggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return errors.New("create failed")
	}
	m.seq++
	s.ID = fmt.Sprintf("sug-%d", m.seq)
	m.suggestions[s.ID] = *s
	return nil
}

func (m *mockSuggestionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.suggestions[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.suggestions, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockSuggestionRepo) GetByID(ctx context.Context, id string) (*domain.AgentSuggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.suggestions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := s
	return &copied, nil
}

func (m *mockSuggestionRepo) GetLatestByTicket(ctx context.Context, ticketID string) (*domain.AgentSuggestion, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSuggestionRepo) Approve(ctx context.Context, id, approverID string, approved bool, draftReply *string) (*domain.AgentSuggestion, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSuggestionRepo) Stats(ctx context.Context, since time.Time) (*domain.SuggestionStats, error) {
	return nil, errors.New("not implemented")
}

func (m *mockSuggestionRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.suggestions)
}

type mockSettingsRepo struct {
	settings domain.TriageSettings
	err      error
}

func (m *mockSettingsRepo) GetOrDefault(ctx context.Context) (domain.TriageSettings, error) {
	if m.err != nil {
		return domain.TriageSettings{}, m.err
	}
	return m.settings, nil
}

func (m *mockSettingsRepo) Update(ctx context.Context, settings domain.TriageSettings) (domain.TriageSettings, error) {
	m.settings = settings
	return settings, nil
}

type mockArticleRepo struct {
	articles  []domain.Article
	searchErr error
}

func (m *mockArticleRepo) Create(ctx context.Context, article *domain.Article) error { return nil }
func (m *mockArticleRepo) Update(ctx context.Context, article *domain.Article) error { return nil }
func (m *mockArticleRepo) Delete(ctx context.Context, id string) error               { return nil }

func (m *mockArticleRepo) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	return nil, pgx.ErrNoRows
}

func (m *mockArticleRepo) GetByIDs(ctx context.Context, ids []string) ([]domain.Article, error) {
	return append([]domain.Article{}, m.articles...), nil
}

func (m *mockArticleRepo) Search(ctx context.Context, query string, category *domain.TicketCategory, limit int) ([]domain.Article, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return append([]domain.Article{}, m.articles...), nil
}

func (m *mockArticleRepo) ListWithFilter(ctx context.Context, filter repository.ArticleFilter) ([]domain.Article, error) {
	return append([]domain.Article{}, m.articles...), nil
}

func (m *mockArticleRepo) IncrementViewCount(ctx context.Context, id string) error { return nil }

type mockAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLogEntry
}

func (m *mockAuditRepo) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = fmt.Sprintf("audit-%d", len(m.entries)+1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditLogEntry{}, m.entries...), nil
}

func (m *mockAuditRepo) ListByTrace(ctx context.Context, traceID string) ([]domain.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditLogEntry
	for _, e := range m.entries {
		if e.TraceID == traceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockAuditRepo) actions() []domain.AuditAction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.AuditAction, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.Action
	}
	return out
}

type mockProvider struct {
	classification *Classification
	classifyErr    error
	draft          *Draft
	draftErr       error
}

func (p *mockProvider) Name() string { return "mock" }

func (p *mockProvider) Classify(ctx context.Context, text string) (*Classification, error) {
	if p.classifyErr != nil {
		return nil, p.classifyErr
	}
	copied := *p.classification
	return &copied, nil
}

func (p *mockProvider) Draft(ctx context.Context, text string, articles []domain.Article) (*Draft, error) {
	if p.draftErr != nil {
		return nil, p.draftErr
	}
	copied := *p.draft
	return &copied, nil
}

type triageFixture struct {
	service     *Service
	tickets     *mockTicketRepo
	suggestions *mockSuggestionRepo
	settings    *mockSettingsRepo
	articles    *mockArticleRepo
	audits      *mockAuditRepo
	recorder    *Recorder
	provider    *mockProvider
}

func newTriageFixture(t *testing.T, confidence float64) *triageFixture {
	t.Helper()

	tickets := newMockTicketRepo(domain.Ticket{
		ID:          "ticket-1",
		Title:       "I was charged twice for my subscription",
		Description: "Please refund the duplicate charge on my invoice.",
		Category:    domain.CategoryOther,
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityMedium,
		CreatedBy:   "user-1",
	})
	articles := &mockArticleRepo{articles: []domain.Article{
		{ID: "art-1", Title: "How to handle billing disputes", Body: "Refund duplicate charges within 5 days.", Status: domain.ArticleStatusPublished, Category: domain.CategoryBilling},
	}}
	suggestions := newMockSuggestionRepo()
	settings := &mockSettingsRepo{settings: domain.DefaultTriageSettings()}
	audits := &mockAuditRepo{}
	logger := zap.NewNop()
	recorder := NewRecorder(audits, logger, nil)
	t.Cleanup(recorder.Close)

	provider := &mockProvider{
		classification: &Classification{
			PredictedCategory: domain.CategoryBilling,
			Confidence:        confidence,
			ModelInfo:         domain.ModelInfo{Provider: "mock", Model: "mock-1", PromptVersion: "v1", LatencyMs: 3},
		},
		draft: &Draft{
			Reply:     "We have refunded the duplicate charge.",
			Citations: []string{"art-1"},
			ModelInfo: domain.ModelInfo{Provider: "mock", Model: "mock-1", PromptVersion: "v1", LatencyMs: 4},
		},
	}

	f := &triageFixture{
		tickets:     tickets,
		suggestions: suggestions,
		settings:    settings,
		articles:    articles,
		audits:      audits,
		recorder:    recorder,
		provider:    provider,
	}
	f.service = NewService(Dependencies{
		TicketRepo:     tickets,
		SuggestionRepo: suggestions,
		SettingsRepo:   settings,
		Knowledge:      kb.NewService(articles, logger),
		Provider:       provider,
		Recorder:       recorder,
		Locker:         NewMemoryLocker(),
		Logger:         logger,
	})
	return f
}

// drain flushes recorded audit entries so assertions see them.
func (f *triageFixture) drain() {
	f.recorder.Close()
}

func containsAction(actions []domain.AuditAction, want domain.AuditAction) bool {
	for _, a := range actions {
		if a == want {
			return true
		}
	}
	return false
}

func TestTriageAutoClosesOnHighConfidence(t *testing.T) {
	t.Parallel()
	f := newTriageFixture(t, 0.95)

	result, err := f.service.Triage(context.Background(), "ticket-1")
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if !result.Decision.AutoClosed {
		t.Fatalf("expected auto-close at confidence 0.95, got %+v", result.Decision)
	}

	ticket := f.tickets.get("ticket-1")
	if ticket.Status != domain.TicketStatusResolved {
		t.Errorf("ticket status = %q, want %q", ticket.Status, domain.TicketStatusResolved)
	}
	if ticket.Category != domain.CategoryBilling {
		t.Errorf("ticket category = %q, want %q", ticket.Category, domain.CategoryBilling)
	}
	if ticket.ResolvedAt == nil {
		t.Error("expected resolved_at to be set")
	}
	if ticket.SuggestionID == nil || *ticket.SuggestionID != result.SuggestionID {
		t.Errorf("ticket suggestion id = %v, want %q", ticket.SuggestionID, result.SuggestionID)
	}
	if len(f.tickets.replies) != 1 {
		t.Fatalf("expected one system reply, got %d", len(f.tickets.replies))
	}
	if f.tickets.replies[0].AuthorID != nil {
		t.Error("system reply should have no author")
	}
	if f.tickets.replies[0].Content != f.provider.draft.Reply {
		t.Errorf("system reply = %q, want draft content", f.tickets.replies[0].Content)
	}

	f.drain()
	actions := f.audits.actions()
	want := []domain.AuditAction{
		domain.AuditTicketCreated,
		domain.AuditAgentClassified,
		domain.AuditKBRetrieved,
		domain.AuditDraftGenerated,
		domain.AuditDecisionMade,
		domain.AuditAutoClosed,
	}
	if len(actions) != len(want) {
		t.Fatalf("audit actions = %v, want %v", actions, want)
	}
	for i := range want {
		if actions[i] != want[i] {
			t.Fatalf("audit actions = %v, want %v", actions, want)
		}
	}
	for _, e := range f.audits.entries {
		if e.TraceID != result.TraceID {
			t.Errorf("audit entry %q trace = %q, want %q", e.Action, e.TraceID, result.TraceID)
		}
	}
}

func TestTriageAssignsToHumanOnLowConfidence(t *testing.T) {
	t.Parallel()
	f := newTriageFixture(t, 0.42)

	result, err := f.service.Triage(context.Background(), "ticket-1")
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if result.Decision.AutoClosed {
		t.Fatal("expected human handoff at confidence 0.42")
	}

	ticket := f.tickets.get("ticket-1")
	if ticket.Status != domain.TicketStatusWaitingHuman {
		t.Errorf("ticket status = %q, want %q", ticket.Status, domain.TicketStatusWaitingHuman)
	}
	if len(f.tickets.replies) != 0 {
		t.Errorf("no reply expected on handoff, got %d", len(f.tickets.replies))
	}

	f.drain()
	actions := f.audits.actions()
	if !containsAction(actions, domain.AuditAssignedToHuman) {
		t.Errorf("audit actions %v missing %q", actions, domain.AuditAssignedToHuman)
	}
	if containsAction(actions, domain.AuditAutoClosed) {
		t.Errorf("audit actions %v must not contain %q", actions, domain.AuditAutoClosed)
	}
}

func TestTriageAssignsToHumanWhenAutoCloseDisabled(t *testing.T) {
	t.Parallel()
	f := newTriageFixture(t, 0.99)
	f.settings.settings.AutoCloseEnabled = false

	result, err := f.service.Triage(context.Background(), "ticket-1")
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if result.Decision.AutoClosed {
		t.Fatal("auto-close disabled must route to human regardless of confidence")
	}
	if got := f.tickets.get("ticket-1").Status; got != domain.TicketStatusWaitingHuman {
		t.Errorf("ticket status = %q, want %q", got, domain.TicketStatusWaitingHuman)
	}
}

func TestTriageRecoversFromRetrievalFailure(t *testing.T) {
	t.Parallel()
	f := newTriageFixture(t, 0.95)
	f.articles.searchErr = errors.New("search index unavailable")

	result, err := f.service.Triage(context.Background(), "ticket-1")
	if err != nil {
		t.Fatalf("retrieval failure must not abort triage, got %v", err)
	}
	if len(result.Articles) != 0 {
		t.Errorf("expected empty article list, got %d", len(result.Articles))
	}
	if sug, _ := f.suggestions.GetByID(context.Background(), result.SuggestionID); len(sug.ArticleIDs) != 0 {
		t.Errorf("suggestion article ids = %v, want none", sug.ArticleIDs)
	}

	f.drain()
	var retrieved *domain.AuditLogEntry
	for i := range f.audits.entries {
		if f.audits.entries[i].Action == domain.AuditKBRetrieved {
			retrieved = &f.audits.entries[i]
		}
	}
	if retrieved == nil {
		t.Fatal("expected a retrieval audit entry even on failure")
	}
	if recovered, _ := retrieved.Meta["recovered"].(bool); !recovered {
		t.Errorf("retrieval entry meta = %v, want recovered=true", retrieved.Meta)
	}
}

func TestTriageClassifyFailureLeavesTicketUntouched(t *testing.T) {
	t.Parallel()
	f := newTriageFixture(t, 0.95)
	f.provider.classifyErr = errors.New("model unavailable")

	_, err := f.service.Triage(context.Background(), "ticket-1")
	if err == nil {
		t.Fatal("expected classification failure to surface")
	}

	ticket := f.tickets.get("ticket-1")
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("ticket status = %q, want pre-triage %q", ticket.Status, domain.TicketStatusOpen)
	}
	if ticket.SuggestionID != nil {
		t.Error("no suggestion must be linked after a fatal failure")
	}
	if f.suggestions.count() != 0 {
		t.Errorf("suggestion count = %d, want 0", f.suggestions.count())
	}

	f.drain()
	if !containsAction(f.audits.actions(), domain.AuditTriageFailed) {
		t.Errorf("audit actions %v missing %q", f.audits.actions(), domain.AuditTriageFailed)
	}
}

func TestTriageDraftFailureIsFatal(t *testing.T) {
	t.Parallel()
	f := newTriageFixture(t, 0.95)
	f.provider.draftErr = errors.New("model unavailable")

	_, err := f.service.Triage(context.Background(), "ticket-1")
	if err == nil {
		t.Fatal("expected draft failure to surface")
	}
	if got := f.tickets.get("ticket-1").Status; got != domain.TicketStatusOpen {
		t.Errorf("ticket status = %q, want %q", got, domain.TicketStatusOpen)
	}
	if f.suggestions.count() != 0 {
		t.Errorf("suggestion count = %d, want 0", f.suggestions.count())
	}
}

func TestTriageTicketNotFound(t *testing.T) {
	t.Parallel()
	f := newTriageFixture(t, 0.95)

	_, err := f.service.Triage(context.Background(), "no-such-ticket")
	if !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("Triage() error = %v, want ErrTicketNotFound", err)
	}
	if f.suggestions.count() != 0 {
		t.Errorf("suggestion count = %d, want 0", f.suggestions.count())
	}
}

func TestTriageRejectsConcurrentRun(t *testing.T) {
	t.Parallel()
	f := newTriageFixture(t, 0.95)

	locker := NewMemoryLocker()
	f.service.locker = locker
	release, acquired, err := locker.Acquire(context.Background(), "ticket-1")
	if err != nil || !acquired {
		t.Fatalf("setup acquire failed: acquired=%v err=%v", acquired, err)
	}
	defer release()

	if _, err := f.service.Triage(context.Background(), "ticket-1"); !errors.Is(err, ErrTriageInProgress) {
		t.Fatalf("Triage() error = %v, want ErrTriageInProgress", err)
	}
}

func TestTriageTwiceAppendsSecondSuggestion(t *testing.T) {
	t.Parallel()
	f := newTriageFixture(t, 0.42)

	first, err := f.service.Triage(context.Background(), "ticket-1")
	if err != nil {
		t.Fatalf("first Triage() error = %v", err)
	}

	// waiting_human has no outgoing transition back through triage, so the
	// orchestrator simply records a fresh suggestion for the same ticket.
	second, err := f.service.Triage(context.Background(), "ticket-1")
	if err != nil {
		t.Fatalf("second Triage() error = %v", err)
	}

	if first.TraceID == second.TraceID {
		t.Error("each run must carry a distinct trace id")
	}
	if first.SuggestionID == second.SuggestionID {
		t.Error("re-triage must append a new suggestion")
	}
	if f.suggestions.count() != 2 {
		t.Errorf("suggestion count = %d, want 2", f.suggestions.count())
	}
	if got := f.tickets.get("ticket-1").SuggestionID; got == nil || *got != second.SuggestionID {
		t.Errorf("ticket points at %v, want latest suggestion %q", got, second.SuggestionID)
	}
}

func TestTriageCompensatesSuggestionOnTicketUpdateFailure(t *testing.T) {
	t.Parallel()
	f := newTriageFixture(t, 0.95)
	f.tickets.failUpdate = true

	_, err := f.service.Triage(context.Background(), "ticket-1")
	if err == nil {
		t.Fatal("expected ticket update failure to surface")
	}
	if f.suggestions.count() != 0 {
		t.Errorf("suggestion count = %d, want 0 after compensation", f.suggestions.count())
	}
	if len(f.suggestions.deleted) != 1 {
		t.Errorf("deleted suggestions = %v, want exactly one", f.suggestions.deleted)
	}
}

func TestTriageSettingsOutageDisablesAutoClose(t *testing.T) {
	t.Parallel()
	f := newTriageFixture(t, 0.99)
	f.settings.err = errors.New("settings store down")

	result, err := f.service.Triage(context.Background(), "ticket-1")
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if result.Decision.AutoClosed {
		t.Fatal("settings outage must fail safe to human handoff")
	}
	if got := f.tickets.get("ticket-1").Status; got != domain.TicketStatusWaitingHuman {
		t.Errorf("ticket status = %q, want %q", got, domain.TicketStatusWaitingHuman)
	}
}
