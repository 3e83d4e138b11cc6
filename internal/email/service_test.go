package email

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/admin-security/internal/model"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

func TestSendAccountExpiryAlert(t *testing.T) {
	d := &recordingDialer{}
	svc := &smtpService{dialer: d, from: "noreply@example.com"}
	expires := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	err := svc.SendAccountExpiryAlert(context.Background(), &model.Account{
		ID: 7, Login: "jdoe", Email: "jdoe@example.com", ExpiresAt: &expires,
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"jdoe@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"noreply@example.com"}, m.GetHeader("From"))

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "jdoe")
}

func TestSendAccountExpiryAlertErrors(t *testing.T) {
	svc := &smtpService{dialer: &recordingDialer{err: errors.New("smtp down")}, from: "noreply@example.com"}

	err := svc.SendAccountExpiryAlert(context.Background(), &model.Account{ID: 1, Email: "a@example.com"})
	assert.Error(t, err)

	err = svc.SendAccountExpiryAlert(context.Background(), &model.Account{ID: 2})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = svc.SendAccountExpiryAlert(ctx, &model.Account{ID: 3, Email: "c@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}
