package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/International-Combat-Archery-Alliance/email/awsses"
	"github.com/International-Combat-Archery-Alliance/event-checkin/api"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

var _ email.Sender = &EmailLogger{}

// EmailLogger is an email.Sender for local dev that logs the email instead of sending it.
type EmailLogger struct {
	logger *slog.Logger
}

func (el *EmailLogger) SendEmail(ctx context.Context, e email.Email) error {
	el.logger.InfoContext(ctx, "email that would be sent",
		slog.Any("to", e.ToAddresses),
		slog.String("subject", e.Subject),
		slog.String("body", e.TextBody),
	)

	return nil
}

func createProdAWSEmailSender(ctx context.Context) (*awsses.AWSSESSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get aws config: %w", err)
	}

	sesClient := sesv2.NewFromConfig(cfg)
	return awsses.NewAWSSESSender(sesClient), nil
}

func createEmailSender(ctx context.Context, logger *slog.Logger, env api.Environment) (email.Sender, error) {
	if env == api.LOCAL {
		return &EmailLogger{logger: logger}, nil
	}

	return createProdAWSEmailSender(ctx)
}
