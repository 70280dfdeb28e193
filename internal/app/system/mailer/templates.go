// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// DecisionEmailData holds data for approval decision email templates.
type DecisionEmailData struct {
	SiteName     string
	StudentName  string
	ArtifactName string // "profile picture" or "signature"
	Approved     bool
	Reason       string // set when disapproved
	PortalLink   string
}

// BuildDecisionEmail creates a notification email for an approval decision.
func BuildDecisionEmail(data DecisionEmailData) Email {
	verdict := "approved"
	if !data.Approved {
		verdict = "disapproved"
	}
	return Email{
		To:       "", // Set by caller
		Subject:  fmt.Sprintf("Your %s has been %s", data.ArtifactName, verdict),
		TextBody: buildDecisionText(data),
		HTMLBody: buildDecisionHTML(data),
	}
}

func buildDecisionText(data DecisionEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hello %s,\n\n", data.StudentName))
	if data.Approved {
		buf.WriteString(fmt.Sprintf("Your %s has been approved.\n\n", data.ArtifactName))
		buf.WriteString("Your profile is now locked for editing. Contact an officer if any details need to change.\n")
	} else {
		buf.WriteString(fmt.Sprintf("Your %s has been disapproved.\n\n", data.ArtifactName))
		buf.WriteString(fmt.Sprintf("Reason: %s\n\n", data.Reason))
		buf.WriteString("Please sign in and upload a replacement.\n")
	}
	if data.PortalLink != "" {
		buf.WriteString("\n" + data.PortalLink + "\n")
	}
	return buf.String()
}

func buildDecisionHTML(data DecisionEmailData) string {
	tmpl := template.Must(template.New("decision").Parse(decisionHTMLTemplate))
	var buf bytes.Buffer
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}

const decisionHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Review Decision</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <!-- Header -->
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>

          <!-- Content -->
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151; line-height: 1.5;">
                Hello {{.StudentName}},
              </p>

              {{if .Approved}}
              <div style="background-color: #ecfdf5; border-radius: 8px; padding: 20px; text-align: center; margin-bottom: 24px;">
                <span style="font-size: 18px; font-weight: 600; color: #047857;">Your {{.ArtifactName}} has been approved.</span>
              </div>
              <p style="margin: 0 0 24px; font-size: 14px; color: #6b7280;">
                Your profile is now locked for editing. Contact an officer if any details need to change.
              </p>
              {{else}}
              <div style="background-color: #fef2f2; border-radius: 8px; padding: 20px; text-align: center; margin-bottom: 24px;">
                <span style="font-size: 18px; font-weight: 600; color: #b91c1c;">Your {{.ArtifactName}} has been disapproved.</span>
              </div>
              <p style="margin: 0 0 24px; font-size: 14px; color: #374151;">
                Reason: {{.Reason}}
              </p>
              <p style="margin: 0 0 24px; font-size: 14px; color: #6b7280;">
                Please sign in and upload a replacement.
              </p>
              {{end}}

              {{if .PortalLink}}
              <table role="presentation" width="100%" cellspacing="0" cellpadding="0">
                <tr>
                  <td align="center">
                    <a href="{{.PortalLink}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">
                      Open Portal
                    </a>
                  </td>
                </tr>
              </table>
              {{end}}
            </td>
          </tr>

          <!-- Footer -->
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                You are receiving this email because you have a profile on {{.SiteName}}.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
