package mailer

import "fmt"

// Job templates handled by the email worker.
const (
	TemplateWelcome = "welcome"
)

// EmailJob is the message published to the email queue by the API and
// consumed by cmd/email_worker.
type EmailJob struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data,omitempty"`
}

// Render produces subject/text bodies for a job. Kept deliberately plain;
// the platform only sends a welcome note today.
func (j *EmailJob) Render() (subject, text string, err error) {
	switch j.Template {
	case TemplateWelcome:
		name, _ := j.Data["username"].(string)
		if name == "" {
			name = "there"
		}
		subject = "Welcome to Craftfolio"
		text = fmt.Sprintf("Hi %s,\n\nYour Craftfolio account is ready. Set up your profile and publish your first project.\n\n— The Craftfolio team", name)
		return subject, text, nil
	default:
		return "", "", fmt.Errorf("unknown email template %q", j.Template)
	}
}
