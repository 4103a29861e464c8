package smtp

import (
	"fmt"
	"html/template"
	"strings"
)

// Branded layout shared by every portal email. Content is injected as a
// pre-rendered fragment built with proper escaping below.
var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Subject}}</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0;">
  <div style="max-width: 600px; margin: 20px auto; background-color: #ffffff; border-radius: 8px; overflow: hidden;">
    <div style="background-color: #005b41; color: #ffffff; padding: 20px; text-align: center;">
      <h1 style="margin: 0; font-size: 24px;">Barangay Sta. Monica Portal</h1>
    </div>
    <div style="padding: 20px;">{{.Content}}</div>
    <div style="background-color: #f4f4f4; color: #888888; padding: 12px; text-align: center; font-size: 12px;">
      Barangay Sta. Monica, Quezon City &middot; This is an automated message, please do not reply.
    </div>
  </div>
</body>
</html>`))

type emailData struct {
	Subject string
	Content template.HTML
}

func render(subject string, content template.HTML) string {
	var b strings.Builder
	// The layout template cannot fail on this data shape.
	_ = layout.Execute(&b, emailData{Subject: subject, Content: content})
	return b.String()
}

// OTPEmail renders the passcode delivery message.
func OTPEmail(code string) (subject, text, html string) {
	subject = "OTP for Registration - Barangay Sta. Monica's of Quezon City Portal"
	text = fmt.Sprintf("Your OTP code is: %s. It will expire in 5 minutes.", code)
	content := template.HTML(fmt.Sprintf(
		"<p>Your OTP code is: <strong>%s</strong>. It will expire in 5 minutes.</p>",
		template.HTMLEscapeString(code)))
	return subject, text, render(subject, content)
}

// VerifiedEmail renders the post-verification confirmation message.
func VerifiedEmail() (subject, text, html string) {
	subject = "OTP Verification Successful - Barangay Sta. Monica's of Quezon City Portal"
	text = "Your OTP was successfully verified. Please proceed to the next step to complete registration."
	content := template.HTML("<p>Your OTP was successfully verified. Please proceed to the next step to complete registration.</p>")
	return subject, text, render(subject, content)
}

// WelcomeEmail renders the greeting sent after the account is created.
func WelcomeEmail(username string) (subject, text, html string) {
	subject = "Welcome to Sta. Monica's of Quezon City Portal"
	text = fmt.Sprintf(
		"Maligayang Araw, %s! Your registration with Sta. Monica's Portal was successful. We're excited to have you join our community.",
		username)
	content := template.HTML(fmt.Sprintf(
		"<p>Maligayang Araw, %s! Your registration with Sta. Monica's Portal was successful. We're excited to have you join our community. Explore essential features para sa ating online transactions!</p>",
		template.HTMLEscapeString(username)))
	return subject, text, render(subject, content)
}
