package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Text is the plain-text body; Template optionally names one of the
// templates in templates.go, rendered by the worker with Data.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	Template string         `json:"template,omitempty"` // e.g. "password_reset_otp"
	Data     map[string]any `json:"data,omitempty"`
}
