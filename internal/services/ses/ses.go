// Package ses sends event confirmation emails via AWS SES
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"fillout-webhook/internal/models"
	"fillout-webhook/internal/utils"
)

// SendEmailAPI is the part of the SES client the notifier needs.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Service handles SES email operations
type Service struct {
	client    SendEmailAPI
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// EventConfirmationParams contains data for the event confirmation email
type EventConfirmationParams struct {
	SchoolName  string
	Title       string
	Description string
	EventDate   string
	GoalTrees   int
	EventID     string
}

// NewService creates a new SES service
func NewService(ctx context.Context, fromEmail, region string) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(ses.NewFromConfig(cfg), fromEmail), nil
}

// NewWithClient creates a service over an existing client.
func NewWithClient(client SendEmailAPI, fromEmail string) *Service {
	return &Service{client: client, fromEmail: fromEmail}
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	messageID := aws.ToString(result.MessageId)
	utils.GetLogger().Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", messageID),
	)

	return &SendEmailResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}

// NotifyEventCreated emails the school contact about a newly recorded event.
// Schools without a contact email are skipped.
func (s *Service) NotifyEventCreated(ctx context.Context, school *models.School, event *models.Event) error {
	if school == nil || event == nil || school.ContactEmail == nil || *school.ContactEmail == "" {
		utils.GetLogger().Debug("No contact email, skipping event confirmation")
		return nil
	}

	params := BuildEventConfirmationParams(school, event)

	htmlBody, err := renderEventConfirmationHTML(params)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	_, err = s.SendEmail(ctx, EmailParams{
		To:       *school.ContactEmail,
		Subject:  fmt.Sprintf("Your event is booked: %s", params.Title),
		HTMLBody: htmlBody,
		TextBody: renderEventConfirmationText(params),
	})
	return err
}

// BuildEventConfirmationParams creates email params from stored rows
func BuildEventConfirmationParams(school *models.School, event *models.Event) EventConfirmationParams {
	params := EventConfirmationParams{
		Title:       event.Title,
		Description: event.Description,
		GoalTrees:   event.GoalTrees,
		EventID:     event.ID.String(),
		EventDate:   "to be scheduled",
	}
	if school.Name != nil {
		params.SchoolName = *school.Name
	}
	if event.EventDate != nil && *event.EventDate != "" {
		params.EventDate = *event.EventDate
	}
	return params
}

var eventConfirmationTemplate = template.Must(template.New("event_confirmation").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2f855a; color: white; padding: 24px; border-radius: 10px 10px 0 0; text-align: center; }
        .content { background: #f9f9f9; padding: 24px; border-radius: 0 0 10px 10px; }
        .detail-label { font-size: 12px; color: #999; }
        .detail-value { font-weight: bold; margin-bottom: 10px; }
        .footer { text-align: center; margin-top: 24px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Title}}</h1>
        <p>Thanks, {{.SchoolName}}! We have your event on file.</p>
    </div>
    <div class="content">
        <div class="detail-label">Event</div>
        <div class="detail-value">{{.Description}}</div>
        <div class="detail-label">Date</div>
        <div class="detail-value">{{.EventDate}}</div>
        <div class="detail-label">Tree goal</div>
        <div class="detail-value">{{.GoalTrees}}</div>
    </div>
    <div class="footer">
        <p>Reference {{.EventID}}</p>
    </div>
</body>
</html>`))

// renderEventConfirmationHTML renders the HTML email template
func renderEventConfirmationHTML(params EventConfirmationParams) (string, error) {
	var buf bytes.Buffer
	if err := eventConfirmationTemplate.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderEventConfirmationText renders plain text version
func renderEventConfirmationText(params EventConfirmationParams) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Hi %s,\n\n", params.SchoolName)
	fmt.Fprintf(&buf, "We have recorded your event: %s\n\n", params.Description)
	fmt.Fprintf(&buf, "   Date: %s\n", params.EventDate)
	fmt.Fprintf(&buf, "   Tree goal: %d\n", params.GoalTrees)
	fmt.Fprintf(&buf, "   Reference: %s\n\n", params.EventID)
	buf.WriteString("Thank you for planting with us!\n")

	return buf.String()
}
