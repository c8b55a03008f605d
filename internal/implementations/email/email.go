package email

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"waterreminder/internal/core/domain/alert"
	"waterreminder/internal/core/domain/reminder"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

type SES interface {
	SendTemplatedEmail(
		ctx context.Context,
		params *ses.SendTemplatedEmailInput,
		optFns ...func(*ses.Options),
	) (*ses.SendTemplatedEmailOutput, error)
}

// AlertSender mails alert notifications with a link that acknowledges the alert.
// A sent email cannot be taken back, so Cancel does nothing.
type AlertSender struct {
	ses SES
	// This address must be verified with Amazon SES.
	sender    string
	recipient string
	template  string
	baseURL   url.URL
}

func NewAlertSender(
	awsConfig aws.Config,
	sender string,
	recipient string,
	template string,
	baseURL url.URL,
) *AlertSender {
	return newAlertSender(ses.NewFromConfig(awsConfig), sender, recipient, template, baseURL)
}

func newAlertSender(
	client SES,
	sender string,
	recipient string,
	template string,
	baseURL url.URL,
) *AlertSender {
	return &AlertSender{
		ses:       client,
		sender:    sender,
		recipient: recipient,
		template:  template,
		baseURL:   baseURL,
	}
}

type alertTemplateParams struct {
	Title          string `json:"title"`
	Text           string `json:"text"`
	Time           string `json:"time"`
	ActionLabel    string `json:"action_label"`
	AcknowledgeUrl string `json:"acknowledge_url"`
}

func (s *AlertSender) AcknowledgeURL(reminderID reminder.ID) string {
	return s.baseURL.JoinPath("alert", strconv.FormatInt(int64(reminderID), 10), "acknowledge").String()
}

func (s *AlertSender) Notify(ctx context.Context, notification alert.Notification) error {
	templateParamsBytes, err := json.Marshal(
		alertTemplateParams{
			Title:          notification.Title,
			Text:           notification.Text,
			Time:           notification.Time.String(),
			ActionLabel:    notification.ActionLabel,
			AcknowledgeUrl: s.AcknowledgeURL(notification.ReminderID),
		},
	)
	if err != nil {
		return err
	}
	templateParams := string(templateParamsBytes)

	_, err = s.ses.SendTemplatedEmail(
		ctx,
		&ses.SendTemplatedEmailInput{
			Source: &s.sender,
			Destination: &types.Destination{
				CcAddresses: []string{},
				ToAddresses: []string{s.recipient},
			},
			Template:     &s.template,
			TemplateData: &templateParams,
		},
	)
	return err
}

func (s *AlertSender) Cancel(ctx context.Context, reminderID reminder.ID) error {
	return nil
}
