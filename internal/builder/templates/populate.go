package templates

import (
	"regexp"
	"strings"

	"application-builder/internal/models"
)

// Known placeholder names. Anything else between braces is left as written.
const (
	TokenJobTitle       = "jobTitle"
	TokenCompanyName    = "companyName"
	TokenJobCategory    = "jobCategory"
	TokenSkills         = "skills"
	TokenPrimarySkill   = "primarySkill"
	TokenUserName       = "userName"
	TokenTopProject     = "topProject"
	TokenTopProjectTech = "topProjectTech"
	TokenAchievement    = "achievement"
	TokenMotivation     = "motivation"
	TokenClosing        = "closing"
)

// Vocabulary lists every token Populate substitutes.
var Vocabulary = []string{
	TokenJobTitle, TokenCompanyName, TokenJobCategory, TokenSkills, TokenPrimarySkill,
	TokenUserName, TokenTopProject, TokenTopProjectTech,
	TokenAchievement, TokenMotivation, TokenClosing,
}

const maxListedSkills = 3

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z][A-Za-z0-9_]*)\s*\}\}`)

var fillers = map[string]string{
	TokenAchievement: "took a feature from first sketch to production and measured the result",
	TokenMotivation:  "I am eager to keep growing alongside a team that values craft and curiosity",
	TokenClosing:     "Thank you for considering my application. I would welcome the chance to discuss how I can contribute.",
}

// Populate renders template for the given job, portfolio and applicant.
// It never fails: missing context falls back to neutral wording.
func Populate(template string, job *models.JobResponse, items []models.PortfolioItem, userName string) string {
	values := contextValues(job, items, userName)
	return tokenPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := tokenPattern.FindStringSubmatch(match)[1]
		if v, ok := values[name]; ok {
			return v
		}
		return match
	})
}

// UnresolvedTokens returns known tokens still present in text, in order of
// appearance.
func UnresolvedTokens(text string) []string {
	known := map[string]bool{}
	for _, name := range Vocabulary {
		known[name] = true
	}
	var out []string
	for _, m := range tokenPattern.FindAllStringSubmatch(text, -1) {
		if known[m[1]] {
			out = append(out, m[1])
		}
	}
	return out
}

func contextValues(job *models.JobResponse, items []models.PortfolioItem, userName string) map[string]string {
	if job == nil {
		job = &models.JobResponse{}
	}

	skills := nonEmpty(job.Skills)
	listed := skills
	if len(listed) > maxListedSkills {
		listed = listed[:maxListedSkills]
	}

	values := map[string]string{
		TokenJobTitle:       orDefault(job.Title, "the position"),
		TokenCompanyName:    orDefault(job.Company, "your company"),
		TokenJobCategory:    orDefault(job.Category, "this field"),
		TokenSkills:         orDefault(strings.Join(listed, ", "), "relevant technologies"),
		TokenPrimarySkill:   "software development",
		TokenUserName:       orDefault(userName, "Applicant"),
		TokenTopProject:     "my recent projects",
		TokenTopProjectTech: "modern tools",
	}
	if len(skills) > 0 {
		values[TokenPrimarySkill] = skills[0]
	}
	if top, ok := topItem(items); ok {
		values[TokenTopProject] = orDefault(top.Title, values[TokenTopProject])
		values[TokenTopProjectTech] = orDefault(strings.Join(nonEmpty(top.Technologies), ", "), values[TokenTopProjectTech])
	}
	for k, v := range fillers {
		values[k] = v
	}
	return values
}

// topItem returns the highest scoring item; the first wins ties.
func topItem(items []models.PortfolioItem) (models.PortfolioItem, bool) {
	if len(items) == 0 {
		return models.PortfolioItem{}, false
	}
	top := items[0]
	for _, it := range items[1:] {
		if it.RelevanceScore > top.RelevanceScore {
			top = it
		}
	}
	return top, true
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
