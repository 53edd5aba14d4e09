package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkarels/appealsmith/internal/llm"
	"github.com/pkarels/appealsmith/internal/model"
	"github.com/pkarels/appealsmith/internal/retrieval"
	"github.com/pkarels/appealsmith/internal/textindex"
)

// stubSearcher returns the same items for every non-empty query.
type stubSearcher struct {
	items []model.RetrievedItem
}

func (s *stubSearcher) Search(ctx context.Context, query string, filters textindex.Filters, topK int) ([]model.RetrievedItem, error) {
	var out []model.RetrievedItem
	for _, item := range s.items {
		if filters.DocType == "" || item.Metadata.DocType == filters.DocType {
			out = append(out, item)
		}
	}
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func policyItem() model.RetrievedItem {
	return model.RetrievedItem{
		DocumentID: "policy-1",
		ChunkIndex: 0,
		Score:      0.8,
		Text:       "Outpatient physical therapy is limited to 20 visits per calendar year.",
		Start:      100,
		End:        170,
		Metadata:   model.Metadata{DocType: model.DocTypePolicy},
	}
}

func recordItem() model.RetrievedItem {
	return model.RetrievedItem{
		DocumentID: "record-1",
		ChunkIndex: 2,
		Score:      0.6,
		Text:       "Progress note: patient improving with therapy, continued treatment indicated.",
		Metadata:   model.Metadata{DocType: model.DocTypeMedicalRecord},
	}
}

func testCase() model.CaseRecord {
	return model.CaseRecord{
		ID:           "case-1",
		PayerName:    "Aetna",
		Category:     "physical therapy",
		ServiceCodes: []string{"97110"},
		ReferenceID:  "REF-2041",
		MemberID:     "M-8812",
		PatientName:  "Jordan Ellis",
		ProviderName: "Dr. Reyes",
		DenialReason: "not medically necessary",
		OwnerKey:     "owner-1",
	}
}

func TestAssembleLetter_SectionsAndRoles(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	letter := AssembleLetter(testCase(), []model.RetrievedItem{policyItem(), recordItem()}, now)

	require.NotEmpty(t, letter.Sections)
	assert.Equal(t, model.RoleHeader, letter.Sections[0].Role)
	assert.Equal(t, model.RoleClosing, letter.Sections[len(letter.Sections)-1].Role)

	header := letter.Sections[0].Content
	assert.Contains(t, header, "Aetna")
	assert.Contains(t, header, "REF-2041")
	assert.Contains(t, header, "M-8812")
	assert.Contains(t, header, "March 14, 2026")

	byID := map[string]model.Section{}
	for _, s := range letter.Sections {
		byID[s.ID] = s
	}

	require.Contains(t, byID, sectionPolicy)
	require.Len(t, byID[sectionPolicy].Citations, 1)
	assert.Equal(t, "policy-1", byID[sectionPolicy].Citations[0].DocumentID)
	assert.Equal(t, model.CitationKnowledgeChunk, byID[sectionPolicy].Citations[0].Kind)
	assert.Equal(t, 100, byID[sectionPolicy].Citations[0].Start)

	require.Contains(t, byID, sectionNecessity)
	require.Len(t, byID[sectionNecessity].Citations, 1)
	assert.Equal(t, "record-1", byID[sectionNecessity].Citations[0].DocumentID)

	// No precedent evidence: no precedent section.
	assert.NotContains(t, byID, sectionPrecedent)
}

func TestAssembleLetter_PrecedentSectionOnlyWithEvidence(t *testing.T) {
	precedent := model.RetrievedItem{
		DocumentID: "prec-1",
		Text:       "The appeal was overturned on external review.",
		Metadata:   model.Metadata{DocType: model.DocTypePrecedent},
	}
	letter := AssembleLetter(testCase(), []model.RetrievedItem{precedent}, time.Now())

	found := false
	for _, s := range letter.Sections {
		if s.ID == sectionPrecedent {
			found = true
			assert.Len(t, s.Citations, 1)
		}
	}
	assert.True(t, found, "expected precedent section when precedent evidence exists")
}

func TestComposer_Compose_EndToEnd(t *testing.T) {
	searcher := &stubSearcher{items: []model.RetrievedItem{policyItem(), recordItem()}}
	aggregator := retrieval.NewAggregator(searcher, 5, 15)
	composer := NewComposer(aggregator, nil, true)

	report, err := composer.Compose(context.Background(), testCase())
	require.NoError(t, err)

	assert.NotEmpty(t, report.Evidence)
	assert.False(t, report.ComposedAt.IsZero())
	assert.Nil(t, report.Draft, "drafting disabled without a drafter")

	// The intro states the 97110 procedure code; no citation snippet covers
	// it, so verification must have flagged it.
	var intro model.Section
	for _, s := range report.Letter.Sections {
		if s.ID == sectionIntro {
			intro = s
		}
	}
	assert.Contains(t, intro.Content, "[NEEDS EVIDENCE:")
	assert.NotEmpty(t, report.EvidenceGaps)
	assert.Greater(t, report.Grounding.SentencesChecked, 0)
	assert.Greater(t, report.Grounding.MarkersInserted, 0)
}

func TestComposer_Compose_Deterministic(t *testing.T) {
	searcher := &stubSearcher{items: []model.RetrievedItem{policyItem(), recordItem()}}
	composer := NewComposer(retrieval.NewAggregator(searcher, 5, 15), nil, true)
	composer.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }

	first, err := composer.Compose(context.Background(), testCase())
	require.NoError(t, err)
	second, err := composer.Compose(context.Background(), testCase())
	require.NoError(t, err)

	assert.Equal(t, first.Letter, second.Letter)
	assert.Equal(t, first.EvidenceGaps, second.EvidenceGaps)
	assert.Equal(t, first.Grounding, second.Grounding)
}

// draftingProvider drafts fixed prose citing E1.
type draftingProvider struct{}

func (draftingProvider) Name() string                         { return "mock" }
func (draftingProvider) IsAvailable(ctx context.Context) bool { return true }
func (draftingProvider) Draft(ctx context.Context, req llm.DraftRequest) (*llm.DraftResponse, error) {
	return &llm.DraftResponse{
		Text:       "The policy allows 20 visits per calendar year [E1].",
		CitedRefs:  []string{"E1"},
		Model:      "mock-1",
		TokensUsed: 42,
	}, nil
}

func TestComposer_Compose_WithDrafter(t *testing.T) {
	searcher := &stubSearcher{items: []model.RetrievedItem{policyItem()}}
	drafter := llm.NewDrafter(draftingProvider{}, 100)
	composer := NewComposer(retrieval.NewAggregator(searcher, 5, 15), drafter, true)

	report, err := composer.Compose(context.Background(), testCase())
	require.NoError(t, err)

	require.NotNil(t, report.Draft)
	assert.True(t, report.Draft.Enabled)
	assert.Equal(t, "mock", report.Draft.Provider)
	assert.Equal(t, "mock-1", report.Draft.Model)
	assert.Greater(t, report.Draft.TokensUsed, 0)

	var policy model.Section
	for _, s := range report.Letter.Sections {
		if s.ID == sectionPolicy {
			policy = s
		}
	}
	assert.NotContains(t, policy.Content, "[E1]", "refs must be stripped from prose")
	assert.Contains(t, policy.Content, "20 visits")
	// The drafted claim is covered by the attached policy citation.
	assert.NotContains(t, policy.Content, "NEEDS EVIDENCE")

	// Header and closing keep template prose.
	assert.Contains(t, report.Letter.Sections[0].Content, "Aetna")
}

func TestRenderMarkdown(t *testing.T) {
	searcher := &stubSearcher{items: []model.RetrievedItem{policyItem()}}
	composer := NewComposer(retrieval.NewAggregator(searcher, 5, 15), nil, true)

	report, err := composer.Compose(context.Background(), testCase())
	require.NoError(t, err)

	md := RenderMarkdown(report, true)
	assert.True(t, strings.HasPrefix(md, "# Appeal Letter: Aetna"))
	assert.Contains(t, md, "## Introduction")
	assert.Contains(t, md, "## Closing")
	assert.Contains(t, md, "## Outstanding Evidence")
	assert.Contains(t, md, "Grounding:")

	noFooter := RenderMarkdown(report, false)
	assert.NotContains(t, noFooter, "Composed ")
}

func TestRenderJSON_RoundTrips(t *testing.T) {
	searcher := &stubSearcher{items: []model.RetrievedItem{policyItem()}}
	composer := NewComposer(retrieval.NewAggregator(searcher, 5, 15), nil, true)

	report, err := composer.Compose(context.Background(), testCase())
	require.NoError(t, err)

	data, err := RenderJSON(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"letter"`)
	assert.Contains(t, string(data), `"grounding"`)
}
