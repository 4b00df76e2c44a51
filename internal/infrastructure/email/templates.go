package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/zabotech/ops-system/internal/core/ports"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #1a73e8; color: #fff; padding: 24px; text-align: center;">
    <h1 style="margin: 0;">Welcome to Zabotech, {{.Name}}!</h1>
  </div>
  <div style="padding: 24px;">
    <p>Hi {{.Name}},</p>
    <p>Your subscription for <strong>{{.Company}}</strong> is now active. We are glad to have you on board.</p>
    <table style="width: 100%; border-collapse: collapse; margin: 16px 0;">
      {{if .RenewalDate}}<tr>
        <td style="padding: 8px; border-bottom: 1px solid #eee;">Renewal date</td>
        <td style="padding: 8px; border-bottom: 1px solid #eee;"><strong>{{.RenewalDate}}</strong></td>
      </tr>{{end}}
      {{if .Amount}}<tr>
        <td style="padding: 8px; border-bottom: 1px solid #eee;">Subscription amount</td>
        <td style="padding: 8px; border-bottom: 1px solid #eee;"><strong>{{.Amount}}</strong></td>
      </tr>{{end}}
    </table>
    <p>If you have any questions, just reply to this email.</p>
    <p>— The Zabotech team</p>
  </div>
</body>
</html>`))

var resetTmpl = template.Must(template.New("reset").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
  <div style="background-color: #1a73e8; color: #fff; padding: 24px; text-align: center;">
    <h1 style="margin: 0;">Password recovery</h1>
  </div>
  <div style="padding: 24px;">
    <p>Hi {{.Name}},</p>
    <p>We received a request to reset your password. Click the button below to choose a new one.
       The link is valid for 10 minutes and can be used only once.</p>
    <p style="text-align: center; margin: 32px 0;">
      <a href="{{.ResetLink}}" style="background-color: #1a73e8; color: #fff; padding: 12px 32px; text-decoration: none; border-radius: 4px;">Reset password</a>
    </p>
    <p>If you did not request this, you can safely ignore this email.</p>
    <p>— The Zabotech team</p>
  </div>
</body>
</html>`))

type welcomeVars struct {
	Name        string
	Company     string
	RenewalDate string
	Amount      string
}

func renderWelcome(data ports.WelcomeEmailData) (string, error) {
	vars := welcomeVars{Name: data.Name, Company: data.Company}
	if data.SubscriptionRenewalDate != nil {
		vars.RenewalDate = data.SubscriptionRenewalDate.Format("January 2, 2006")
	}
	if data.SubscriptionAmount != nil {
		vars.Amount = fmt.Sprintf("$%.2f", *data.SubscriptionAmount)
	}

	var buf bytes.Buffer
	if err := welcomeTmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render welcome template: %w", err)
	}
	return buf.String(), nil
}

func renderReset(data ports.ResetEmailData) (string, error) {
	var buf bytes.Buffer
	if err := resetTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render reset template: %w", err)
	}
	return buf.String(), nil
}
