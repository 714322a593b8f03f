package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
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

func TestSendWelcome(t *testing.T) {
	d := &recordingDialer{}
	svc := &smtpService{from: "no-reply@aesthiq.app", dialer: d, logger: zerolog.Nop()}

	require.NoError(t, svc.SendWelcome(context.Background(), "ana@glow.test", "Ana", "Glow Spa"))
	require.Len(t, d.sent, 1)

	assert.Equal(t, []string{"ana@glow.test"}, d.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Welcome to Aesthiq"}, d.sent[0].GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := d.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Glow Spa")
}

func TestSendPropagatesDialError(t *testing.T) {
	svc := &smtpService{from: "x@y.z", dialer: &recordingDialer{err: errors.New("refused")}, logger: zerolog.Nop()}
	err := svc.SendOnboarding(context.Background(), "owner@glow.test", "Glow Spa", "https://app/register")
	assert.ErrorContains(t, err, "refused")
}

func TestNoopService(t *testing.T) {
	var buf bytes.Buffer
	svc := NewNoopService(zerolog.New(&buf))
	require.NoError(t, svc.SendWelcome(context.Background(), "a@b.c", "A", "Org"))
	assert.Contains(t, buf.String(), "skipping welcome email")
}
