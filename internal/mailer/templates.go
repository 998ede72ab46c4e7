package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"agencysite/internal/model"
)

//go:embed templates/*
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.txt"))

// RenderApplication returns the notification subject and body for an
// application.
func RenderApplication(app model.Application) (subject, body string, err error) {
	subject, err = render("application_subject.txt", app)
	if err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	body, err = render("application.txt", app)
	if err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return strings.TrimSpace(subject), body, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
