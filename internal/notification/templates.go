// internal/notification/templates.go

package notification

import (
	"bytes"
	"html/template"
)

const baseEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Title}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #FF69B4; color: white; padding: 24px; text-align: center; border-radius: 10px 10px 0 0; }
        .content { background: white; padding: 24px; border: 1px solid #e0e0e0; border-radius: 0 0 10px 10px; }
        .footer { text-align: center; margin-top: 20px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header"><h1>{{.Title}}</h1></div>
    <div class="content">
        {{range .Paragraphs}}<p>{{.}}</p>
        {{end}}
    </div>
    <div class="footer"><p>This is an automated message, please do not reply.</p></div>
</body>
</html>`

var emailLayout = template.Must(template.New("email").Parse(baseEmailTemplate))

type emailView struct {
	Title      string
	Paragraphs []string
}

// renderEmail builds the HTML and plain text bodies for a notice
func renderEmail(title string, paragraphs ...string) (html string, text string, err error) {
	var buf bytes.Buffer
	if err := emailLayout.Execute(&buf, emailView{Title: title, Paragraphs: paragraphs}); err != nil {
		return "", "", err
	}

	var plain bytes.Buffer
	for i, p := range paragraphs {
		if i > 0 {
			plain.WriteString("\n\n")
		}
		plain.WriteString(p)
	}
	return buf.String(), plain.String(), nil
}
