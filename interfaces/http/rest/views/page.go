package views

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/page.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

// FormValues carries submitted input back into the forms after a failed submit.
// Passwords are never echoed.
type FormValues struct {
	SignupName    string
	SignupEmail   string
	LoginEmail    string
	QuestionTitle string
	QuestionBody  string
	AnswerText    string
	TicketSubject string
	TicketMessage string
}

// PageData is everything the page template needs
type PageData struct {
	View   PageView
	Notice string
	Error  string
	Forms  FormValues
}

// RenderPage writes the full HTML page. The page is rendered into a buffer
// first so a template failure never leaves a half-written response.
func RenderPage(w io.Writer, data PageData) error {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
