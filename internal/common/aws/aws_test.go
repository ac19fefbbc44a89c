// internal/common/aws/aws_test.go
package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	got *ses.SendEmailInput
	err error
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.got = params
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

type mockSNS struct {
	got *sns.PublishInput
	err error
}

func (m *mockSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.got = params
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
}

func TestEmail_SendEmailInput(t *testing.T) {
	in := Email{From: "matches@pawmatch.local", To: "sam@example.com", Subject: "Hi", TextBody: "text"}.SendEmailInput()

	assert.Equal(t, "matches@pawmatch.local", aws.ToString(in.Source))
	assert.Equal(t, []string{"sam@example.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Hi", aws.ToString(in.Message.Subject.Data))
	assert.Equal(t, "text", aws.ToString(in.Message.Body.Text.Data))
	assert.Nil(t, in.Message.Body.Html)

	withHTML := Email{TextBody: "t", HTMLBody: "<p>t</p>"}.SendEmailInput()
	require.NotNil(t, withHTML.Message.Body.Html)
	assert.Equal(t, "<p>t</p>", aws.ToString(withHTML.Message.Body.Html.Data))
}

func TestSendEmail(t *testing.T) {
	svc := &mockSES{}
	id, err := SendEmail(context.Background(), svc, Email{To: "a@b.io"})
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)
	assert.NotNil(t, svc.got)

	_, err = SendEmail(context.Background(), &mockSES{err: errors.New("throttled")}, Email{})
	assert.EqualError(t, err, "throttled")
}

func TestPublishEvent(t *testing.T) {
	svc := &mockSNS{}
	payload := map[string]interface{}{"userId": "u-1", "matchIds": []string{"a", "b"}}

	id, err := PublishEvent(context.Background(), svc, "arn:aws:sns:us-east-1:1:matches", payload, map[string]string{"eventType": "matches.shown"})
	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)

	assert.Equal(t, "arn:aws:sns:us-east-1:1:matches", aws.ToString(svc.got.TopicArn))
	assert.Equal(t, "matches.shown", aws.ToString(svc.got.MessageAttributes["eventType"].StringValue))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(svc.got.Message)), &decoded))
	assert.Equal(t, "u-1", decoded["userId"])
}

func TestPublishInput_Unmarshalable(t *testing.T) {
	_, err := PublishInput("arn", map[string]interface{}{"bad": make(chan int)}, nil)
	assert.Error(t, err)
}
