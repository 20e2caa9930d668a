package mailer

import (
	"fmt"
	"html"
	"time"
)

var subjects = map[string]string{
	"EMAIL_VERIFICATION": "Verify your email address",
	"PASSWORD_RESET":     "Reset your password",
	"LOGIN_OTP":          "Your login code",
}

// OTPEmail builds the message carrying a one-time code of the given purpose.
func OTPEmail(to, code, purpose string, ttl time.Duration) Email {
	subject, ok := subjects[purpose]
	if !ok {
		subject = "Your verification code"
	}
	minutes := int(ttl.Minutes())

	return Email{
		To:      []string{to},
		Subject: subject,
		Body:    fmt.Sprintf("Your code is %s. It expires in %d minute(s).", code, minutes),
		HTMLBody: fmt.Sprintf("<p>Your code is <strong>%s</strong>.</p><p>It expires in %d minute(s).</p>",
			html.EscapeString(code), minutes),
	}
}
