package assist

import "fmt"

// Mode selects the kind of suggestion the model is asked for.
type Mode string

const (
	ModeRewrite    Mode = "rewrite"
	ModeImprove    Mode = "improve"
	ModeSimilar    Mode = "similar"
	ModeWeaknesses Mode = "weaknesses"
	ModeExpansion  Mode = "expansion"
	ModeMonetize   Mode = "monetize"
	ModeAudience   Mode = "audience"
	ModeIdeas      Mode = "ideas"
	// ModeRefresh re-runs the previous mode; callers must supply it.
	ModeRefresh Mode = "refresh"
)

// ValidMode reports whether m is a concrete prompt mode (refresh excluded,
// it resolves to the caller's last mode before prompting).
func ValidMode(m Mode) bool {
	switch m {
	case ModeRewrite, ModeImprove, ModeSimilar, ModeWeaknesses,
		ModeExpansion, ModeMonetize, ModeAudience, ModeIdeas:
		return true
	}
	return false
}

// ProjectInput is the slice of the project the prompt is built from.
type ProjectInput struct {
	Title       string
	Description string
}

// BuildPrompt renders the chat prompt for one project and profession.
// Every mode instructs the model to answer with a single JSON object so the
// response can be extracted and returned verbatim to the client.
func BuildPrompt(p ProjectInput, profession string, mode Mode) string {
	switch mode {
	case ModeRewrite:
		return fmt.Sprintf(`The user is a **%s**. They have an unclear project titled **%s**.
Generate a professional and clear **title** and **description**.

**Return JSON:**
{
  "project": %q,
  "newTitle": "More Descriptive Project Name",
  "newDescription": "A short but clear description that conveys the purpose of the project."
}`, profession, p.Title, p.Title)
	case ModeImprove:
		return listPrompt(p, profession, "improvements",
			"Suggest 3 key improvements related to UI, features, or functionality.")
	case ModeSimilar:
		return listPrompt(p, profession, "similarProjects",
			"Suggest 3 closely related real-world project ideas that align with the project's industry, function, or purpose. Include a short description explaining why each is similar.")
	case ModeWeaknesses:
		return listPrompt(p, profession, "weaknesses",
			"Identify 3 realistic weaknesses or risks of the project and explain each briefly.")
	case ModeExpansion:
		return listPrompt(p, profession, "expansions",
			"Suggest 3 ways the project could be expanded with new capabilities or markets.")
	case ModeMonetize:
		return listPrompt(p, profession, "monetization",
			"Suggest 3 realistic monetization strategies. Each must be a viable business model and describe exactly how revenue is generated.")
	case ModeAudience:
		return listPrompt(p, profession, "audienceAnalysis",
			"Identify the most relevant target audiences based on the title and description. Do NOT generate generic audiences; each must have a descriptive title and a detailed explanation of their needs.")
	case ModeIdeas:
		return listPrompt(p, profession, "ideas",
			"Suggest 3 follow-up project ideas that build on the skills demonstrated by this project.")
	}
	return ""
}

func listPrompt(p ProjectInput, profession, field, instruction string) string {
	return fmt.Sprintf(`The user is a **%s**. They have a project titled **%s**.
Project description: %s
%s

**Return ONLY JSON in the following format:**
{
  "project": %q,
  %q: [
    { "title": "Item 1", "description": "Brief explanation." },
    { "title": "Item 2", "description": "Brief explanation." },
    { "title": "Item 3", "description": "Brief explanation." }
  ]
}`, profession, p.Title, p.Description, instruction, p.Title, field)
}
