package mailer

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

type Message struct {
	To       string
	From     string
	FromName string
	Subject  string
	HTML     string
	// Tags are sent as "category" message tags
	Tags []string
}

type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SES sends HTML mail through Amazon SES.
type SES struct {
	api sesAPI
}

func NewSES(client *sesv2.Client) *SES {
	return &SES{api: client}
}

func (s *SES) Send(ctx context.Context, msg Message) error {
	from := (&mail.Address{Name: msg.FromName, Address: msg.From}).String()

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(msg.Subject), Charset: aws.String("UTF-8")},
				Body: &sestypes.Body{
					Html: &sestypes.Content{Data: aws.String(msg.HTML), Charset: aws.String("UTF-8")},
				},
			},
		},
	}

	for _, tag := range msg.Tags {
		input.EmailTags = append(input.EmailTags, sestypes.MessageTag{
			Name:  aws.String("category"),
			Value: aws.String(tag),
		})
	}

	if _, err := s.api.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	return nil
}
