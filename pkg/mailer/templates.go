package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// Minimal HTML templates rendered by the email worker. Keyed by EmailJob.Template.
var templates = map[string]*template.Template{
	"password_reset_otp": template.Must(template.New("password_reset_otp").Parse(`
<p>Hi{{if .Username}} {{.Username}}{{end}},</p>
<p>Your password reset code is:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px;">{{.OTP}}</p>
<p>The code expires in {{.ExpiresIn}}. If you did not request a reset, you can ignore this email.</p>
`)),
	"account_deleted": template.Must(template.New("account_deleted").Parse(`
<p>Hi{{if .Username}} {{.Username}}{{end}},</p>
<p>Your account and all of your blog posts have been deleted.</p>
`)),
}

// RenderHTML renders the named template with data.
func RenderHTML(name string, data map[string]any) (string, error) {
	t, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SubjectFor returns the subject line for a templated job, falling back to
// the job's own subject.
func SubjectFor(job EmailJob) string {
	if job.Subject != "" {
		return job.Subject
	}
	switch job.Template {
	case "password_reset_otp":
		return "Password Reset OTP"
	case "account_deleted":
		return "Account deleted"
	default:
		return "Notification"
	}
}
