package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSend(t *testing.T) {
	api := &fakeSES{}
	s := &SES{api: api}

	err := s.Send(context.Background(), Message{
		To:       "new.user@example.com",
		From:     "enquiries@example.com",
		FromName: "Digital Marketplace Admin",
		Subject:  "Your invitation",
		HTML:     "<p>Hello</p>",
		Tags:     []string{"user-invite"},
	})
	if err != nil {
		t.Fatal(err)
	}

	in := api.input
	if got := aws.ToString(in.FromEmailAddress); got != `"Digital Marketplace Admin" <enquiries@example.com>` {
		t.Errorf("FromEmailAddress = %q", got)
	}
	if got := in.Destination.ToAddresses; len(got) != 1 || got[0] != "new.user@example.com" {
		t.Errorf("ToAddresses = %v", got)
	}
	if got := aws.ToString(in.Content.Simple.Body.Html.Data); got != "<p>Hello</p>" {
		t.Errorf("html body = %q", got)
	}
	if len(in.EmailTags) != 1 || aws.ToString(in.EmailTags[0].Value) != "user-invite" {
		t.Errorf("EmailTags = %+v", in.EmailTags)
	}
}

func TestSendError(t *testing.T) {
	sendErr := errors.New("MessageRejected")
	s := &SES{api: &fakeSES{err: sendErr}}

	if err := s.Send(context.Background(), Message{To: "a@example.com"}); !errors.Is(err, sendErr) {
		t.Errorf("Send() error = %v, want %v", err, sendErr)
	}
}
