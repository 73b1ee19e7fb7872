// Package aws wraps the SES and SNS clients used for applicant and
// employer notifications.
package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func LoadConfig(ctx context.Context, region string) (sdkaws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return sdkaws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return cfg, nil
}

func NewSES(cfg sdkaws.Config) *ses.Client { return ses.NewFromConfig(cfg) }

func NewSNS(cfg sdkaws.Config) *sns.Client { return sns.NewFromConfig(cfg) }

type EmailSender struct {
	api  SESAPI
	from string
}

func NewEmailSender(api SESAPI, from string) *EmailSender {
	return &EmailSender{api: api, from: from}
}

// Send delivers a plain text email and returns the SES message id.
func (s *EmailSender) Send(ctx context.Context, to, subject, body string) (string, error) {
	out, err := s.api.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{ToAddresses: []string{to}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: sdkaws.String(subject), Charset: sdkaws.String("UTF-8")},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: sdkaws.String(body), Charset: sdkaws.String("UTF-8")},
			},
		},
		Source: sdkaws.String(s.from),
	})
	if err != nil {
		return "", fmt.Errorf("ses send email: %w", err)
	}
	return sdkaws.ToString(out.MessageId), nil
}

type SMSSender struct {
	api      SNSAPI
	senderID string
}

func NewSMSSender(api SNSAPI, senderID string) *SMSSender {
	return &SMSSender{api: api, senderID: senderID}
}

// Send publishes a transactional SMS and returns the SNS message id.
func (s *SMSSender) Send(ctx context.Context, phone, message string) (string, error) {
	attrs := map[string]snstypes.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {DataType: sdkaws.String("String"), StringValue: sdkaws.String("Transactional")},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = snstypes.MessageAttributeValue{
			DataType: sdkaws.String("String"), StringValue: sdkaws.String(s.senderID),
		}
	}

	out, err := s.api.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       sdkaws.String(phone),
		Message:           sdkaws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", fmt.Errorf("sns publish: %w", err)
	}
	return sdkaws.ToString(out.MessageId), nil
}
