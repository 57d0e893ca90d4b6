package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elysion/internal/dto"
	"elysion/internal/metrics"
	"elysion/internal/pass"
	"elysion/internal/site"
)

type stubPublisher struct {
	msgs [][]byte
	err  error
}

func (p *stubPublisher) Publish(message []byte, _ int) error {
	p.msgs = append(p.msgs, message)
	return p.err
}

func newTestService(t *testing.T, pub *stubPublisher) *service {
	t.Helper()
	content, err := site.Default()
	require.NoError(t, err)
	log := zerolog.Nop()

	s := &service{
		store:   pass.NewStore("TEST", 0, 0),
		content: content,
		log:     &log,
		qrSize:  pass.DefaultQRSize,
		now:     time.Now,
	}
	if pub != nil {
		s.pub = pub
	}
	return s
}

func coupleForm() *dto.RegistrationForm {
	f := dto.NewRegistrationForm()
	f.Name, f.College, f.Department, f.Year = "Asha", "CEM", "CSE", "3"
	f.Email, f.Phone = "asha@example.com", "9876543210"
	f.IsIeeeMember = "yes"
	f.WorkshopPreference = []string{"game"}
	f.TicketType = "couple"
	f.PartnerName, f.PartnerCollege, f.PartnerDepartment, f.PartnerYear = "Ravi", "CEM", "EEE", "2"
	f.PartnerEmail, f.PartnerPhone = "ravi@example.com", "9123456780"
	return &f
}

func TestConfirmAnnouncesOnce(t *testing.T) {
	pub := &stubPublisher{}
	s := newTestService(t, pub)
	token := pass.NewToken()

	d, errs, err := s.submit(context.Background(), token, coupleForm())
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, pass.StatePending, d.State)

	d, err = s.confirm(token)
	require.NoError(t, err)
	assert.Equal(t, pass.StateConfirmed, d.State)

	_, err = s.confirm(token)
	require.NoError(t, err)
	require.Len(t, pub.msgs, 1)

	var msg dto.PassIssuedMessage
	require.NoError(t, json.Unmarshal(pub.msgs[0], &msg))
	assert.Equal(t, d.Pass.ID, msg.PassID)
	assert.Equal(t, []string{"asha@example.com", "ravi@example.com"}, msg.Recipients)
	assert.Equal(t, 1000, msg.Total)
	assert.Equal(t, d.Pass.Payload, msg.Payload)
}

func TestPublishFailureStillConfirms(t *testing.T) {
	pub := &stubPublisher{err: errors.New("broker down")}
	s := newTestService(t, pub)
	token := pass.NewToken()

	_, _, err := s.submit(context.Background(), token, coupleForm())
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.NotificationFailures)
	d, err := s.confirm(token)
	require.NoError(t, err)
	assert.Equal(t, pass.StateConfirmed, d.State)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.NotificationFailures))
}

func TestConfirmWithoutPublisher(t *testing.T) {
	s := newTestService(t, nil)
	token := pass.NewToken()

	_, err := s.confirm(token)
	assert.ErrorIs(t, err, pass.ErrNothingPending)

	_, _, err = s.submit(context.Background(), token, coupleForm())
	require.NoError(t, err)
	d, err := s.confirm(token)
	require.NoError(t, err)
	assert.Equal(t, pass.StateConfirmed, d.State)
}

func TestRejectedSubmitKeepsHeldPass(t *testing.T) {
	s := newTestService(t, nil)
	token := pass.NewToken()

	held, _, err := s.submit(context.Background(), token, coupleForm())
	require.NoError(t, err)

	bad := coupleForm()
	bad.PartnerName = ""
	d, errs, err := s.submit(context.Background(), token, bad)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"partnerName": "Partner name is required for couple entry"}, errs)
	assert.Equal(t, held.Pass.ID, d.Pass.ID)
}

func TestDeskView(t *testing.T) {
	s := newTestService(t, nil)
	token := pass.NewToken()

	v := s.deskView(token, pass.Desk{})
	assert.Equal(t, dto.DeskResponse{Desk: token, State: "empty"}, v)

	d, _, err := s.submit(context.Background(), token, coupleForm())
	require.NoError(t, err)
	v = s.deskView(token, d)
	assert.Equal(t, "pending", v.State)
	assert.Equal(t, pendingReminder, v.Reminder)
	assert.Empty(t, v.Payload)
	assert.Nil(t, v.IssuedAt)

	d, err = s.confirm(token)
	require.NoError(t, err)
	v = s.deskView(token, d)
	assert.Equal(t, confirmedReminder, v.Reminder)
	assert.Equal(t, d.Pass.Payload, v.Payload)
	assert.False(t, v.Verified)
	require.NotNil(t, v.IssuedAt)
	assert.Equal(t, d.ConfirmedAt, *v.IssuedAt)
}

func TestPageCountdownAndForm(t *testing.T) {
	s := newTestService(t, nil)
	s.now = func() time.Time { return s.content.Event.Starts.Add(-26 * time.Hour) }

	data := s.page("tok", pass.Desk{}, nil)
	assert.Equal(t, site.TimeLeft{Days: 1, Hours: 2}, data.Countdown)
	assert.Equal(t, "single", data.Form.TicketType)
	assert.Equal(t, 600, data.Quote.Total)
	assert.Empty(t, data.QRURL)

	token := pass.NewToken()
	_, _, err := s.submit(context.Background(), token, coupleForm())
	require.NoError(t, err)
	d, err := s.confirm(token)
	require.NoError(t, err)

	data = s.page(token, d, nil)
	assert.Equal(t, "couple", data.Form.TicketType)
	assert.Equal(t, "Ravi", data.Form.PartnerName)
	assert.Equal(t, qrURL(token), data.QRURL)
	assert.Equal(t, d.Pass.ID, data.PassID)
}
