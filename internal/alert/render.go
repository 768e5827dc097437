package alert

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	texttemplate "text/template"

	"github.com/brightloop/pulse/internal/domain"
)

// Kind distinguishes the two email templates the dispatcher can send.
type Kind string

const (
	KindDown     Kind = "down"
	KindRecovery Kind = "recovery"
)

// fields carries the values shared by the plain-text and HTML
// renderings of one alert email (§4.5 rendering: monitor name,
// representative URL, status label, UTC timestamp).
type fields struct {
	MonitorName       string
	RepresentativeURL string
	StatusLabel       string
	TimestampUTC      string
	Verb              string
	Accent            string
}

func buildFields(kind Kind, m domain.Monitor, status domain.Status, at time.Time) fields {
	verb := "is unreachable"
	accent := "#e74c3c"
	if kind == KindRecovery {
		verb = "has recovered"
		accent = "#2ecc71"
	}
	return fields{
		MonitorName:       m.Name,
		RepresentativeURL: m.RepresentativeURL(),
		StatusLabel:       strings.ToUpper(string(status)),
		TimestampUTC:      at.UTC().Format(time.RFC1123),
		Verb:              verb,
		Accent:            accent,
	}
}

// Subject builds the email subject line for a given alert kind.
func Subject(kind Kind, m domain.Monitor) string {
	switch kind {
	case KindRecovery:
		return fmt.Sprintf("[RECOVERED] %s is back up", m.Name)
	default:
		return fmt.Sprintf("[ALERT] %s is down", m.Name)
	}
}

var textTmpl = texttemplate.Must(texttemplate.New("alert.txt").Parse(
	`Monitor: {{.MonitorName}}
Target: {{.RepresentativeURL}}
Status: {{.StatusLabel}}
Time (UTC): {{.TimestampUTC}}

{{.MonitorName}} {{.Verb}}.
`))

var htmlTmpl = template.Must(template.New("alert.html").Parse(
	`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f8f9fb; margin: 0; color: #333;">
  <div style="max-width: 560px; margin: 30px auto; background: #fff; border-radius: 10px; box-shadow: 0 3px 10px rgba(0,0,0,0.1); overflow: hidden;">
    <div style="background: {{.Accent}}; color: #fff; padding: 18px 24px;">
      <h1 style="margin: 0; font-size: 1.3em;">{{.MonitorName}}</h1>
    </div>
    <div style="padding: 20px 24px;">
      <p><strong>{{.MonitorName}}</strong> {{.Verb}}.</p>
      <table style="width: 100%; border-collapse: collapse; margin-top: 10px;">
        <tr><td style="padding: 6px 0; color: #777;">Target</td><td style="padding: 6px 0;">{{.RepresentativeURL}}</td></tr>
        <tr><td style="padding: 6px 0; color: #777;">Status</td><td style="padding: 6px 0;">{{.StatusLabel}}</td></tr>
        <tr><td style="padding: 6px 0; color: #777;">Time (UTC)</td><td style="padding: 6px 0;">{{.TimestampUTC}}</td></tr>
      </table>
    </div>
    <div style="background: #f4f4f8; color: #777; text-align: center; padding: 12px; font-size: 0.85em;">
      Pulse monitoring
    </div>
  </div>
</body>
</html>`))

// RenderText builds the plain-text body.
func RenderText(kind Kind, m domain.Monitor, status domain.Status, at time.Time) (string, error) {
	var buf bytes.Buffer
	if err := textTmpl.Execute(&buf, buildFields(kind, m, status, at)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderHTML builds the HTML body: inline CSS, no external assets, a
// small branded card matching the plain body's field set.
func RenderHTML(kind Kind, m domain.Monitor, status domain.Status, at time.Time) (string, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, buildFields(kind, m, status, at)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
