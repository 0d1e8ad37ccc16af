package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"taskverse/internal/models"
)

type fakeMailer struct {
	msgs []*gomail.Message
	err  error
}

func (f *fakeMailer) DialAndSend(m ...*gomail.Message) error {
	f.msgs = append(f.msgs, m...)
	return f.err
}

func TestEmailServiceReminder(t *testing.T) {
	mailer := &fakeMailer{}
	svc := &emailService{dialer: mailer, from: "bot@example.com"}
	due := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	err := EmailNotifier{Emails: svc}.NotifyReminder(context.Background(),
		&models.User{Email: "a@example.com"},
		models.Task{Title: "Pay <rent>", Priority: models.PriorityHigh, DueDate: &due})
	require.NoError(t, err)
	require.Len(t, mailer.msgs, 1)
	assert.Equal(t, []string{"a@example.com"}, mailer.msgs[0].GetHeader("To"))
	assert.Equal(t, []string{"Reminder: Pay <rent>"}, mailer.msgs[0].GetHeader("Subject"))

	mailer.err = errors.New("smtp down")
	err = svc.SendWelcomeEmail("b@example.com", "")
	assert.ErrorContains(t, err, "welcome")
}

func TestEmailNotifierSkipsMissingAddress(t *testing.T) {
	mailer := &fakeMailer{}
	n := EmailNotifier{Emails: &emailService{dialer: mailer}}
	require.NoError(t, n.NotifyReminder(context.Background(), &models.User{}, models.Task{}))
	assert.Empty(t, mailer.msgs)
}

// fakeBotAPI answers getMe and records sendMessage calls.
type fakeBotAPI struct {
	mu    sync.Mutex
	sends []string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Task","username":"taskverse_bot"}}`))
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		f.mu.Lock()
		f.sends = append(f.sends, r.Form.Get("chat_id")+":"+r.Form.Get("text"))
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		_, _ = w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
	}
}

func TestTelegramNotifier(t *testing.T) {
	api := &fakeBotAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	tg, err := NewTelegramServiceWithEndpoint("123:abc", srv.URL+"/bot%s/%s", false)
	require.NoError(t, err)
	assert.Equal(t, "telegram", tg.Name())

	task := models.Task{Title: "Stand-up", Priority: models.PriorityMedium}
	require.NoError(t, tg.NotifyReminder(context.Background(), &models.User{TelegramChatID: 42, NotifyTelegram: true}, task))
	require.NoError(t, tg.NotifyReminder(context.Background(), &models.User{TelegramChatID: 42, NotifyTelegram: false}, task))
	require.NoError(t, tg.NotifyReminder(context.Background(), &models.User{NotifyTelegram: true}, task))

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.sends, 1)
	assert.True(t, strings.HasPrefix(api.sends[0], "42:"))
	assert.Contains(t, api.sends[0], "Stand-up")
}
