// internal/common/aws/ses.go
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESService is the subset of the SES client used for shortlist e-mails.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// LoadConfig resolves credentials from the default chain for region.
func LoadConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return cfg, nil
}

func NewSESClient(cfg aws.Config) *ses.Client {
	return ses.NewFromConfig(cfg)
}

// Email is a plain text plus HTML message to a single recipient.
type Email struct {
	From     string
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// SendEmailInput builds the SES request for e. The HTML part is omitted when empty.
func (e Email) SendEmailInput() *ses.SendEmailInput {
	body := &types.Body{
		Text: &types.Content{Data: aws.String(e.TextBody), Charset: aws.String("UTF-8")},
	}
	if e.HTMLBody != "" {
		body.Html = &types.Content{Data: aws.String(e.HTMLBody), Charset: aws.String("UTF-8")}
	}

	return &ses.SendEmailInput{
		Source:      aws.String(e.From),
		Destination: &types.Destination{ToAddresses: []string{e.To}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(e.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	}
}

// SendEmail delivers e and returns the SES message ID.
func SendEmail(ctx context.Context, svc SESService, e Email) (string, error) {
	out, err := svc.SendEmail(ctx, e.SendEmailInput())
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
