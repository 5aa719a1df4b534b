package notify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	templates []Template
	err       error
}

func (r *recordingSender) SendMail(_ context.Context, tmpl Template, _ Recipient, _ map[string]any) error {
	r.templates = append(r.templates, tmpl)
	return r.err
}

type fakePublisher struct {
	userID  string
	payload []byte
}

func (f *fakePublisher) Publish(userID string, payload []byte) {
	f.userID = userID
	f.payload = payload
}

type fakeGmail struct {
	raws []string
}

func (f *fakeGmail) Send(_ context.Context, raw string) error {
	f.raws = append(f.raws, raw)
	return nil
}

func TestRender_UsesRecipientNameAndPayload(t *testing.T) {
	subject, body, err := Render(TemplateRequestAccepted, Recipient{Name: "Mona"}, map[string]any{
		"request_id":     int64(12),
		"payment_due_at": "2026-11-03 09:00 UTC",
	})

	require.NoError(t, err)
	assert.Equal(t, "Your mentorship request #12 was accepted", subject)
	assert.Contains(t, body, "Hi Mona")
	assert.Contains(t, body, "before 2026-11-03 09:00 UTC")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, err := Render(Template("nope"), Recipient{}, nil)
	assert.Error(t, err)
}

func TestMulti_SendsToAllAndJoinsErrors(t *testing.T) {
	ok := &recordingSender{}
	failing := &recordingSender{err: errors.New("smtp down")}

	err := Multi{ok, nil, failing}.SendMail(context.Background(), TemplateRequestRejected, Recipient{}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Equal(t, []Template{TemplateRequestRejected}, ok.templates)
	assert.Equal(t, []Template{TemplateRequestRejected}, failing.templates)
}

func TestPushSender_PublishesToRecipient(t *testing.T) {
	publisher := &fakePublisher{}
	sender := NewPushSender(publisher)
	sender.now = func() time.Time { return time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC) }

	err := sender.SendMail(context.Background(), TemplateRequestCancelled, Recipient{UserID: 42}, map[string]any{"request_id": 3})

	require.NoError(t, err)
	assert.Equal(t, "42", publisher.userID)
	var event PushEvent
	require.NoError(t, json.Unmarshal(publisher.payload, &event))
	assert.Equal(t, "notification", event.Type)
	assert.Equal(t, TemplateRequestCancelled, event.Template)
	assert.Equal(t, "2026-11-02T09:00:00Z", event.Timestamp)
}

func TestLogSender_RendersWithoutError(t *testing.T) {
	sender := NewLogSender(zap.NewNop())
	assert.NoError(t, sender.SendMail(context.Background(), TemplatePlanBooked, Recipient{UserID: 1}, map[string]any{"session_count": 4}))
}

func TestGmailSender_EncodesMessage(t *testing.T) {
	api := &fakeGmail{}
	sender := &GmailSender{api: api, from: "noreply@linkup.test"}

	err := sender.SendMail(context.Background(), TemplatePaymentConfirmed, Recipient{UserID: 5, Email: "trainee@linkup.test", Name: "Omar"}, map[string]any{
		"request_id": 9,
		"amount":     "120.00",
	})

	require.NoError(t, err)
	require.Len(t, api.raws, 1)
	decoded, err := base64.URLEncoding.DecodeString(api.raws[0])
	require.NoError(t, err)
	raw := string(decoded)
	assert.True(t, strings.HasPrefix(raw, "From: noreply@linkup.test\r\nTo: trainee@linkup.test\r\n"))
	assert.Contains(t, raw, "Subject: Payment received for request #9")
	assert.Contains(t, raw, "Payment of 120.00 was received")
}

func TestGmailSender_RequiresEmail(t *testing.T) {
	sender := &GmailSender{api: &fakeGmail{}}
	assert.Error(t, sender.SendMail(context.Background(), TemplatePaymentConfirmed, Recipient{UserID: 5}, nil))
}

func TestNewSender_FallsBackToLogWithoutCredentials(t *testing.T) {
	publisher := &fakePublisher{}
	sender, err := NewSender(context.Background(), zap.NewNop(), "", "", publisher)
	require.NoError(t, err)

	multi, ok := sender.(Multi)
	require.True(t, ok)
	require.Len(t, multi, 2)
	assert.IsType(t, &PushSender{}, multi[0])
	assert.IsType(t, &LogSender{}, multi[1])
}
