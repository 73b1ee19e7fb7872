package templates

import (
	"strings"
	"testing"

	"application-builder/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func completeJob() *models.JobResponse {
	return &models.JobResponse{
		ID:       "job-42",
		Title:    "Backend Engineer",
		Company:  "Acme Robotics",
		Category: "Technology",
		Skills:   []string{"Go", "PostgreSQL", "Kubernetes", "gRPC"},
	}
}

func portfolioItems() []models.PortfolioItem {
	return []models.PortfolioItem{
		{ID: "1", Title: "Inventory Service", Technologies: []string{"Go", "Redis"}, RelevanceScore: 0.72},
		{ID: "2", Title: "Fleet Telemetry Pipeline", Technologies: []string{"Kafka", "Go"}, RelevanceScore: 0.91},
		{ID: "3", Title: "Portfolio Site", Technologies: []string{"React"}, RelevanceScore: 0.91},
	}
}

// ==========================
// Catalog
// ==========================

func TestCatalog_Find(t *testing.T) {
	tmpl, err := Find("technical-focused")
	require.NoError(t, err)
	assert.Equal(t, "Technical Focus", tmpl.Name)

	_, err = Find("does-not-exist")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	all := All()
	require.Len(t, all, 4)
	all[0].ID = "mutated"
	assert.Equal(t, "professional-standard", All()[0].ID)
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name     string
		job      *models.JobResponse
		expected string
	}{
		{name: "technology category", job: completeJob(), expected: "technical-focused"},
		{name: "design role", job: &models.JobResponse{Category: "Design", Skills: []string{"Figma"}}, expected: "creative-passionate"},
		{name: "research by skill", job: &models.JobResponse{Category: "Lab", Skills: []string{"Research", "Science"}}, expected: "academic-research"},
		{name: "no match falls back", job: &models.JobResponse{Category: "Hospitality"}, expected: DefaultTemplateID},
		{name: "nil job falls back", job: nil, expected: DefaultTemplateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Recommend(tt.job).ID)
		})
	}
}

// ==========================
// Interpolation
// ==========================

func TestPopulate_ResolvesEveryKnownToken(t *testing.T) {
	for _, tmpl := range All() {
		t.Run(tmpl.ID, func(t *testing.T) {
			out := Populate(tmpl.Template, completeJob(), portfolioItems(), "Jordan Lee")

			assert.Empty(t, UnresolvedTokens(out))
			assert.Contains(t, out, "Backend Engineer")
			assert.Contains(t, out, "Jordan Lee")
			assert.GreaterOrEqual(t, len(strings.TrimSpace(out)), 100)
		})
	}
}

func TestPopulate_TechnicalFocusedContent(t *testing.T) {
	tmpl, err := Find("technical-focused")
	require.NoError(t, err)

	out := Populate(tmpl.Template, completeJob(), portfolioItems(), "Jordan Lee")

	assert.Contains(t, out, "Acme Robotics")
	assert.Contains(t, out, "Go, PostgreSQL, Kubernetes")
	assert.NotContains(t, out, "gRPC", "only the first three skills are listed")
	assert.Contains(t, out, "Fleet Telemetry Pipeline", "highest score wins, first on ties")
	assert.Contains(t, out, "Kafka, Go")
}

func TestPopulate_LeavesUnknownTokens(t *testing.T) {
	out := Populate("Hi {{userName}}, see {{ unknownThing }} and {{jobTitle}}{{}}", completeJob(), nil, "Sam")
	assert.Equal(t, "Hi Sam, see {{ unknownThing }} and Backend Engineer{{}}", out)
}

func TestPopulate_FallbacksWhenContextMissing(t *testing.T) {
	out := Populate("{{jobTitle}}|{{companyName}}|{{skills}}|{{primarySkill}}|{{userName}}|{{topProject}}|{{topProjectTech}}",
		&models.JobResponse{}, nil, "   ")

	assert.Equal(t, "the position|your company|relevant technologies|software development|Applicant|my recent projects|modern tools", out)
}

func TestPopulate_ToleratesWhitespaceInsideBraces(t *testing.T) {
	out := Populate("{{ jobTitle }}", completeJob(), nil, "")
	assert.Equal(t, "Backend Engineer", out)
}

func TestPopulate_Deterministic(t *testing.T) {
	tmpl, _ := Find("professional-standard")
	a := Populate(tmpl.Template, completeJob(), portfolioItems(), "Jordan")
	b := Populate(tmpl.Template, completeJob(), portfolioItems(), "Jordan")
	assert.Equal(t, a, b)
}
