package sender

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/accountable/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/accountable/internal/lib/smtp"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *MockTransport) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

type MockSMTPClient struct {
	mock.Mock
}

func (m *MockSMTPClient) Mail(from string) error {
	return m.Called(from).Error(0)
}

func (m *MockSMTPClient) Rcpt(to string) error {
	return m.Called(to).Error(0)
}

func (m *MockSMTPClient) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.WriteCloser), args.Error(1)
}

func (m *MockSMTPClient) Close() error {
	return m.Called().Error(0)
}

func (m *MockSMTPClient) Quit() error {
	return m.Called().Error(0)
}

type MockSMTPWriter struct {
	mock.Mock
}

func (m *MockSMTPWriter) Write(p []byte) (n int, err error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSMTPWriter) Close() error {
	return m.Called().Error(0)
}

type MockRelay struct {
	mock.Mock
}

func (m *MockRelay) Send(ctx context.Context, to []string, subject, text string) error {
	return m.Called(to, subject, text).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

const noticeJSON = `{"task_id":"t1","title":"Write report","email":"ann@example.com",` +
	`"scheduled_at":"2026-03-01T09:00:00Z","deadline":"2026-03-01T09:30:00Z"}`

func expectDelivery(t *MockTransport, contains string) *MockSMTPWriter {
	mockClient := new(MockSMTPClient)
	mockWriter := new(MockSMTPWriter)

	t.On("GetSMTPUser").Return("bot@example.com")
	t.On("Connect").Return(mockClient, nil).Once()
	mockClient.On("Mail", "bot@example.com").Return(nil).Once()
	mockClient.On("Rcpt", "ann@example.com").Return(nil).Once()
	mockClient.On("Data").Return(mockWriter, nil).Once()
	mockWriter.On("Write", mock.MatchedBy(func(p []byte) bool {
		return strings.Contains(string(p), contains)
	})).Return(100, nil).Once()
	mockWriter.On("Close").Return(nil).Once()
	mockClient.On("Quit").Return(nil).Once()
	mockClient.On("Close").Return(nil).Once()
	return mockWriter
}

func TestSenderService_SendTaskUpcoming(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		setupMocks    func(*MockTransport)
		expectedError bool
		errorMessage  string
	}{
		{
			name: "success",
			body: []byte(noticeJSON),
			setupMocks: func(t *MockTransport) {
				expectDelivery(t, "Subject: Upcoming accountability call: Write report")
			},
		},
		{
			name:          "invalid JSON",
			body:          []byte(`invalid json`),
			setupMocks:    func(_ *MockTransport) {},
			expectedError: true,
			errorMessage:  "error unmarshalling message",
		},
		{
			name:          "no recipient",
			body:          []byte(`{"task_id":"t1","title":"x"}`),
			setupMocks:    func(_ *MockTransport) {},
			expectedError: true,
			errorMessage:  "no recipient",
		},
		{
			name: "SMTP connection error",
			body: []byte(noticeJSON),
			setupMocks: func(t *MockTransport) {
				t.On("GetSMTPUser").Return("bot@example.com")
				t.On("Connect").Return(nil, errors.New("connection error")).Once()
			},
			expectedError: true,
			errorMessage:  "connection error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := new(MockTransport)
			service := NewSenderService(newNoopLogger(), transport)
			tt.setupMocks(transport)

			err := service.SendTaskUpcoming(tt.body)
			if tt.expectedError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMessage)
			} else {
				assert.NoError(t, err)
			}
			transport.AssertExpectations(t)
		})
	}
}

func TestSenderService_SendTaskMissed(t *testing.T) {
	transport := new(MockTransport)
	writer := expectDelivery(transport, "Subject: Task missed: Write report")
	service := NewSenderService(newNoopLogger(), transport)

	assert.NoError(t, service.SendTaskMissed([]byte(noticeJSON)))
	transport.AssertExpectations(t)
	writer.AssertExpectations(t)
}

func TestSenderService_RcptError(t *testing.T) {
	transport := new(MockTransport)
	client := new(MockSMTPClient)
	transport.On("GetSMTPUser").Return("bot@example.com")
	transport.On("Connect").Return(client, nil).Once()
	client.On("Mail", "bot@example.com").Return(nil).Once()
	client.On("Rcpt", "ann@example.com").Return(errors.New("mailbox unavailable")).Once()
	client.On("Close").Return(nil).Once()

	service := NewSenderService(newNoopLogger(), transport)
	err := service.SendTaskMissed([]byte(noticeJSON))
	assert.ErrorContains(t, err, "mailbox unavailable")
	client.AssertExpectations(t)
}

func TestSenderService_Handlers(t *testing.T) {
	service := NewSenderService(newNoopLogger(), new(MockTransport))
	h := service.Handlers()
	assert.Len(t, h, 2)
	assert.Contains(t, h, rabbitmq.QueueTaskUpcoming)
	assert.Contains(t, h, rabbitmq.QueueTaskMissed)
}

func TestSenderService_Relay(t *testing.T) {
	transport := new(MockTransport)
	relay := new(MockRelay)
	relay.On("Send", []string{"ann@example.com"}, "Task missed: Write report",
		mock.MatchedBy(func(text string) bool { return strings.Contains(text, "marked as missed") })).
		Return(nil).Once()
	relay.On("Send", []string{"ann@example.com"}, "Upcoming accountability call: Write report", mock.Anything).
		Return(errors.New("rate limited")).Once()

	service := NewSenderService(newNoopLogger(), transport).WithRelay(relay)

	assert.NoError(t, service.SendTaskMissed([]byte(noticeJSON)))
	assert.ErrorContains(t, service.SendTaskUpcoming([]byte(noticeJSON)), "rate limited")
	relay.AssertExpectations(t)
	transport.AssertNotCalled(t, "Connect")
}
