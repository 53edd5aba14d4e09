package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockProvider scripts availability and draft outcomes.
type mockProvider struct {
	name      string
	available bool
	resp      *DraftResponse
	err       error

	checks int
	drafts int
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) IsAvailable(ctx context.Context) bool {
	m.checks++
	return m.available
}

func (m *mockProvider) Draft(ctx context.Context, req DraftRequest) (*DraftResponse, error) {
	m.drafts++
	return m.resp, m.err
}

func TestDrafter_Disabled(t *testing.T) {
	d := NewDrafter(nil, 1)

	if d.Enabled() {
		t.Error("nil provider must report disabled")
	}
	resp, warnings := d.Draft(context.Background(), DraftRequest{SectionTitle: "Intro"})
	if resp != nil || warnings != nil {
		t.Errorf("disabled drafter must be silent, got %v / %v", resp, warnings)
	}
}

func TestDrafter_UnavailableProviderWarns(t *testing.T) {
	provider := &mockProvider{name: "openai", available: false}
	d := NewDrafter(provider, 100)

	resp, warnings := d.Draft(context.Background(), DraftRequest{SectionTitle: "Intro"})
	if resp != nil {
		t.Errorf("expected no draft, got %v", resp)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "unavailable") {
		t.Errorf("expected unavailability warning, got %v", warnings)
	}

	// Availability is checked once, not per section.
	d.Draft(context.Background(), DraftRequest{SectionTitle: "Policy Basis"})
	if provider.checks != 1 {
		t.Errorf("expected 1 availability check, got %d", provider.checks)
	}
}

func TestDrafter_FailureBecomesWarning(t *testing.T) {
	provider := &mockProvider{
		name:      "openai",
		available: true,
		err:       errors.New("CITATION LEAK: model cited disallowed ref: E9"),
	}
	d := NewDrafter(provider, 100)

	resp, warnings := d.Draft(context.Background(), DraftRequest{SectionTitle: "Policy Basis"})
	if resp != nil {
		t.Errorf("expected no draft on failure, got %v", resp)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "CITATION LEAK") {
		t.Errorf("expected the failure surfaced as a warning, got %v", warnings)
	}
}

func TestDrafter_Success(t *testing.T) {
	provider := &mockProvider{
		name:      "openai",
		available: true,
		resp: &DraftResponse{
			Text:       "The plan covers 20 visits [E1].",
			CitedRefs:  []string{"E1"},
			Model:      "gpt-4o-mini",
			TokensUsed: 120,
		},
	}
	d := NewDrafter(provider, 100)

	resp, warnings := d.Draft(context.Background(), DraftRequest{SectionTitle: "Policy Basis"})
	if warnings != nil {
		t.Errorf("unexpected warnings %v", warnings)
	}
	if resp == nil || resp.Text == "" || resp.TokensUsed != 120 {
		t.Errorf("unexpected response %+v", resp)
	}
	if provider.drafts != 1 {
		t.Errorf("expected 1 draft call, got %d", provider.drafts)
	}
}

func TestDrafter_EmptyDraftWarns(t *testing.T) {
	provider := &mockProvider{name: "ollama", available: true, resp: &DraftResponse{}}
	d := NewDrafter(provider, 100)

	resp, warnings := d.Draft(context.Background(), DraftRequest{SectionTitle: "Intro"})
	if resp != nil {
		t.Errorf("expected nil response for empty draft, got %v", resp)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "empty draft") {
		t.Errorf("expected empty-draft warning, got %v", warnings)
	}
}
