// Package templates holds the cover-letter template catalog and the
// placeholder interpolation that turns a template into a draft letter.
package templates

import (
	"errors"
	"strings"

	"application-builder/internal/models"
)

var ErrTemplateNotFound = errors.New("TEMPLATE_NOT_FOUND")

// DefaultTemplateID is recommended when no template's tags match the job.
const DefaultTemplateID = "professional-standard"

var catalog = []models.CoverLetterTemplate{
	{
		ID:          "professional-standard",
		Name:        "Professional Standard",
		Description: "A balanced, formal letter that suits most roles.",
		Tags:        []string{"general", "business", "operations", "finance"},
		Template: `Dear Hiring Manager,

I am writing to apply for the {{jobTitle}} position at {{companyName}}. My background in {{skills}} has prepared me to contribute from day one, and {{motivation}}.

In my recent work on {{topProject}} I {{achievement}}, using {{topProjectTech}} along the way.

{{closing}}

Sincerely,
{{userName}}`,
	},
	{
		ID:          "technical-focused",
		Name:        "Technical Focus",
		Description: "Leads with hands-on engineering work and the stack behind it.",
		Tags:        []string{"technology", "engineering", "software", "data", "go", "python", "javascript"},
		Template: `Dear {{companyName}} Engineering Team,

I am excited to apply for the {{jobTitle}} role. Most of my recent work has been in {{primarySkill}}, and I am comfortable across {{skills}}.

The project I am proudest of is {{topProject}}, built with {{topProjectTech}}. On it I {{achievement}}. I enjoy the kind of problems a {{jobCategory}} team solves, and {{motivation}}.

{{closing}}

Best regards,
{{userName}}`,
	},
	{
		ID:          "creative-passionate",
		Name:        "Creative & Passionate",
		Description: "A warmer voice for design, marketing and media roles.",
		Tags:        []string{"design", "marketing", "media", "content", "creative"},
		Template: `Hello {{companyName}} team!

When I saw the opening for a {{jobTitle}}, I knew I had to reach out. Work in {{jobCategory}} is where I do my best thinking, and {{motivation}}.

{{topProject}} is a good example of how I work: I {{achievement}}, mixing {{topProjectTech}} with a lot of iteration.

{{closing}}

Warmly,
{{userName}}`,
	},
	{
		ID:          "academic-research",
		Name:        "Academic & Research",
		Description: "Emphasises methodology and research outcomes.",
		Tags:        []string{"research", "education", "science", "academic", "healthcare"},
		Template: `Dear Search Committee,

Please accept this letter as my application for the {{jobTitle}} position with {{companyName}}. My studies have centred on {{skills}}, with a particular focus on {{primarySkill}}.

Through {{topProject}} I {{achievement}}, applying {{topProjectTech}} to a well-defined research question. I believe {{motivation}}.

{{closing}}

Respectfully,
{{userName}}`,
	},
}

// All returns the catalog in display order. The slice is a copy.
func All() []models.CoverLetterTemplate {
	out := make([]models.CoverLetterTemplate, len(catalog))
	copy(out, catalog)
	return out
}

func Find(id string) (models.CoverLetterTemplate, error) {
	for _, t := range catalog {
		if t.ID == id {
			return t, nil
		}
	}
	return models.CoverLetterTemplate{}, ErrTemplateNotFound
}

// Recommend picks the template whose tags best match the job's category and
// skills. Ties keep catalog order; no match falls back to DefaultTemplateID.
func Recommend(job *models.JobResponse) models.CoverLetterTemplate {
	best, _ := Find(DefaultTemplateID)
	if job == nil {
		return best
	}

	terms := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(job.Category)) {
		terms[word] = true
	}
	for _, skill := range job.Skills {
		terms[strings.ToLower(strings.TrimSpace(skill))] = true
	}

	bestScore := 0
	for _, t := range catalog {
		score := 0
		for _, tag := range t.Tags {
			if terms[tag] {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = t, score
		}
	}
	return best
}
