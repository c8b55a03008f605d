package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"waterreminder/internal/core/domain/alert"
	"waterreminder/internal/core/domain/reminder"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/suite"
)

type fakeSES struct {
	sent []*ses.SendTemplatedEmailInput
	err  error
}

func (f *fakeSES) SendTemplatedEmail(
	ctx context.Context,
	params *ses.SendTemplatedEmailInput,
	optFns ...func(*ses.Options),
) (*ses.SendTemplatedEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &ses.SendTemplatedEmailOutput{}, nil
}

type testSuite struct {
	suite.Suite
	ses    *fakeSES
	sender *AlertSender
}

func (suite *testSuite) SetupTest() {
	suite.ses = &fakeSES{}
	baseURL, err := url.Parse("https://water.example.com/api")
	suite.Require().Nil(err)
	suite.sender = newAlertSender(
		suite.ses,
		"reminder@example.com",
		"me@example.com",
		"WaterReminderAlert",
		*baseURL,
	)
}

func TestAlertSender(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) notification() alert.Notification {
	return alert.NewNotification(alert.Alert{
		ReminderID: reminder.ID(42),
		Time:       reminder.TimeOfDay{Hour: 14, Minute: 30},
	})
}

func (s *testSuite) TestNotify() {
	assert := s.Require()

	// Exercise ---
	err := s.sender.Notify(context.Background(), s.notification())

	// Verify ---
	assert.Nil(err)
	assert.Len(s.ses.sent, 1)
	sent := s.ses.sent[0]
	assert.Equal("reminder@example.com", *sent.Source)
	assert.Equal([]string{"me@example.com"}, sent.Destination.ToAddresses)
	assert.Equal("WaterReminderAlert", *sent.Template)

	var params alertTemplateParams
	assert.Nil(json.Unmarshal([]byte(*sent.TemplateData), &params))
	assert.Equal("14:30", params.Time)
	assert.Equal(alert.ActionLabel, params.ActionLabel)
	assert.Equal("https://water.example.com/api/alert/42/acknowledge", params.AcknowledgeUrl)
}

func (s *testSuite) TestNotifyError() {
	assert := s.Require()

	// Setup ---
	s.ses.err = errors.New("ses is down")

	// Exercise ---
	err := s.sender.Notify(context.Background(), s.notification())

	// Verify ---
	assert.ErrorIs(err, s.ses.err)
}

func (s *testSuite) TestCancelIsNoop() {
	assert := s.Require()

	// Exercise ---
	err := s.sender.Cancel(context.Background(), reminder.ID(42))

	// Verify ---
	assert.Nil(err)
	assert.Len(s.ses.sent, 0)
}
