package telegramnotifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
	"waterreminder/internal/core/domain/alert"
	"waterreminder/internal/core/domain/logging"
	"waterreminder/internal/core/domain/reminder"
	acknowledgealert "waterreminder/internal/core/services/acknowledge_alert"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/suite"
)

const (
	CHAT_ID     = int64(100)
	MESSAGE_ID  = 77
	REMINDER_ID = reminder.ID(42)
)

type recordedRequest struct {
	method string
	fields map[string]string
}

type mockClient struct {
	lock      sync.Mutex
	requests  []recordedRequest
	responses map[string]string
}

func newMockClient() *mockClient {
	return &mockClient{
		responses: map[string]string{
			"sendMessage": fmt.Sprintf(
				`{"ok":true,"result":{"message_id":%d,"date":0,"chat":{"id":%d,"type":"private"}}}`,
				MESSAGE_ID,
				CHAT_ID,
			),
			"deleteMessage":       `{"ok":true,"result":true}`,
			"answerCallbackQuery": `{"ok":true,"result":true}`,
		},
	}
}

func (m *mockClient) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	if err := req.Body.Close(); err != nil {
		return nil, err
	}

	method := req.URL.Path[strings.LastIndex(req.URL.Path, "/")+1:]
	fields, err := parseMultipart(req.Header.Get("Content-Type"), body)
	if err != nil {
		return nil, err
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	m.requests = append(m.requests, recordedRequest{method: method, fields: fields})

	response, ok := m.responses[method]
	if !ok {
		response = `{"ok":true,"result":{}}`
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(response)),
		Header:     make(http.Header),
	}, nil
}

func (m *mockClient) requestsTo(method string) []recordedRequest {
	m.lock.Lock()
	defer m.lock.Unlock()
	var result []recordedRequest
	for _, r := range m.requests {
		if r.method == method {
			result = append(result, r)
		}
	}
	return result
}

func parseMultipart(contentType string, body []byte) (map[string]string, error) {
	fields := make(map[string]string)
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return fields, nil
	}
	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return fields, nil
		}
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(part)
		if err != nil {
			return nil, err
		}
		fields[part.FormName()] = string(data)
	}
}

type stubAcknowledgeService struct {
	lock   sync.Mutex
	inputs []acknowledgealert.Input
	err    error
}

func (s *stubAcknowledgeService) Run(
	ctx context.Context,
	input acknowledgealert.Input,
) (result acknowledgealert.Result, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.inputs = append(s.inputs, input)
	if s.err != nil {
		return result, s.err
	}
	result.WasSounding = true
	return result, nil
}

type testSuite struct {
	suite.Suite
	logger   *logging.FakeLogger
	client   *mockClient
	bot      *bot.Bot
	notifier *Notifier
}

func (suite *testSuite) SetupTest() {
	suite.logger = logging.NewFakeLogger()
	suite.client = newMockClient()
	b, err := bot.New(
		"test-token",
		bot.WithSkipGetMe(),
		bot.WithHTTPClient(time.Second, suite.client),
	)
	suite.Require().Nil(err)
	suite.bot = b
	suite.notifier = New(suite.logger, b, CHAT_ID)
}

func TestTelegramNotifier(t *testing.T) {
	suite.Run(t, new(testSuite))
}

func (s *testSuite) notification() alert.Notification {
	return alert.NewNotification(alert.Alert{
		ReminderID: REMINDER_ID,
		Time:       reminder.TimeOfDay{Hour: 8, Minute: 0},
	})
}

func (s *testSuite) TestNotifySendsMessageWithButton() {
	assert := s.Require()

	// Exercise ---
	err := s.notifier.Notify(context.Background(), s.notification())

	// Verify ---
	assert.Nil(err)
	sent := s.client.requestsTo("sendMessage")
	assert.Len(sent, 1)
	assert.Equal(fmt.Sprint(CHAT_ID), sent[0].fields["chat_id"])
	assert.Contains(sent[0].fields["text"], "08:00")
	assert.Contains(sent[0].fields["reply_markup"], `"callback_data":"ack:42"`)
	assert.Contains(sent[0].fields["reply_markup"], alert.ActionLabel)
}

func (s *testSuite) TestCancelDeletesSentMessage() {
	assert := s.Require()

	// Setup ---
	assert.Nil(s.notifier.Notify(context.Background(), s.notification()))

	// Exercise ---
	err := s.notifier.Cancel(context.Background(), REMINDER_ID)

	// Verify ---
	assert.Nil(err)
	deleted := s.client.requestsTo("deleteMessage")
	assert.Len(deleted, 1)
	assert.Equal(fmt.Sprint(MESSAGE_ID), deleted[0].fields["message_id"])
	assert.Equal(fmt.Sprint(CHAT_ID), deleted[0].fields["chat_id"])
}

func (s *testSuite) TestCancelIsIdempotent() {
	assert := s.Require()

	// Setup ---
	assert.Nil(s.notifier.Notify(context.Background(), s.notification()))
	assert.Nil(s.notifier.Cancel(context.Background(), REMINDER_ID))

	// Exercise ---
	err := s.notifier.Cancel(context.Background(), REMINDER_ID)

	// Verify ---
	assert.Nil(err)
	assert.Len(s.client.requestsTo("deleteMessage"), 1)
}

func (s *testSuite) TestCancelUnknownReminder() {
	assert := s.Require()

	// Exercise ---
	err := s.notifier.Cancel(context.Background(), reminder.ID(7))

	// Verify ---
	assert.Nil(err)
	assert.Len(s.client.requestsTo("deleteMessage"), 0)
}

func (s *testSuite) TestParseCallbackData() {
	cases := []struct {
		id         string
		data       string
		expectedID reminder.ID
		isValid    bool
	}{
		{id: "valid", data: "ack:42", expectedID: 42, isValid: true},
		{id: "round-trip", data: CallbackData(1000), expectedID: 1000, isValid: true},
		{id: "other-prefix", data: "s:42", isValid: false},
		{id: "no-id", data: "ack:", isValid: false},
		{id: "not-a-number", data: "ack:abc", isValid: false},
	}

	for _, testcase := range cases {
		s.Run(testcase.id, func() {
			assert := s.Require()

			// Exercise ---
			id, err := ParseCallbackData(testcase.data)

			// Verify ---
			if testcase.isValid {
				assert.Nil(err)
				assert.Equal(testcase.expectedID, id)
			} else {
				assert.NotNil(err)
			}
		})
	}
}

func (s *testSuite) callbackUpdate(data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "callback-1",
			From: models.User{ID: CHAT_ID},
			Data: data,
		},
	}
}

func (s *testSuite) TestCallbackAcknowledgesAlert() {
	assert := s.Require()

	// Setup ---
	service := &stubAcknowledgeService{}
	handler := NewCallbackHandler(s.logger, service)

	// Exercise ---
	handler.Handle(context.Background(), s.bot, s.callbackUpdate("ack:42"))

	// Verify ---
	assert.Equal([]acknowledgealert.Input{{ReminderID: REMINDER_ID}}, service.inputs)
	answered := s.client.requestsTo("answerCallbackQuery")
	assert.Len(answered, 1)
	assert.Equal("callback-1", answered[0].fields["callback_query_id"])
	assert.Equal("Enjoy your water!", answered[0].fields["text"])
}

func (s *testSuite) TestCallbackServiceError() {
	assert := s.Require()

	// Setup ---
	service := &stubAcknowledgeService{err: errors.New("test error")}
	handler := NewCallbackHandler(s.logger, service)

	// Exercise ---
	handler.Handle(context.Background(), s.bot, s.callbackUpdate("ack:42"))

	// Verify ---
	answered := s.client.requestsTo("answerCallbackQuery")
	assert.Len(answered, 1)
	assert.Equal("Could not acknowledge the reminder.", answered[0].fields["text"])
	assert.Equal(1, s.logger.CountLevel(logging.ERROR))
}

func (s *testSuite) TestCallbackInvalidData() {
	assert := s.Require()

	// Setup ---
	service := &stubAcknowledgeService{}
	handler := NewCallbackHandler(s.logger, service)

	// Exercise ---
	handler.Handle(context.Background(), s.bot, s.callbackUpdate("ack:nope"))

	// Verify ---
	assert.Len(service.inputs, 0)
	assert.Len(s.client.requestsTo("answerCallbackQuery"), 1)
}

func (s *testSuite) TestCallbackWithoutQuery() {
	assert := s.Require()

	// Setup ---
	service := &stubAcknowledgeService{}
	handler := NewCallbackHandler(s.logger, service)

	// Exercise ---
	handler.Handle(context.Background(), s.bot, &models.Update{})

	// Verify ---
	assert.Len(service.inputs, 0)
	assert.Len(s.client.requestsTo("answerCallbackQuery"), 0)
	assert.Equal(1, s.logger.CountLevel(logging.WARNING))
}
