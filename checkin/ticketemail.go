package checkin

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	textTemplate "text/template"
	"time"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/International-Combat-Archery-Alliance/event-checkin/events"
)

//go:embed templates
var templates embed.FS

var templateFuncs = map[string]any{
	"formatTime": func(t time.Time) string { return t.Format("15:04 02/01/2006") },
}

func SendTicketEmail(ctx context.Context, emailSender email.Sender, fromAddress string, toAddress string, ticket Ticket, event events.Event) error {
	data := map[string]any{
		"Event":  event,
		"Ticket": ticket,
	}

	htmlBody, err := makeHtmlBody(data)
	if err != nil {
		return err
	}

	textOnlyBody, err := makeTextOnlyBody(data)
	if err != nil {
		return err
	}

	err = emailSender.SendEmail(ctx, email.Email{
		FromAddress: fromAddress,
		ToAddresses: []string{toAddress},
		Subject:     fmt.Sprintf("Your check-in ticket - %q", event.Name),
		HTMLBody:    htmlBody,
		TextBody:    textOnlyBody,
	})
	if err != nil {
		return NewFailedToSendEmailError(fmt.Sprintf("Failed to send ticket to %q", toAddress), err)
	}

	return nil
}

func makeHtmlBody(data map[string]any) (string, error) {
	tmpl, err := template.New("ticket.tmpl").Funcs(templateFuncs).ParseFS(templates, "templates/ticket.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to parse email template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}

	return buf.String(), nil
}

func makeTextOnlyBody(data map[string]any) (string, error) {
	tmpl, err := textTemplate.New("ticket-textonly.tmpl").Funcs(templateFuncs).ParseFS(templates, "templates/ticket-textonly.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to parse email template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, data)
	if err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}

	return buf.String(), nil
}
