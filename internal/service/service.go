package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"elysion/internal/dto"
	"elysion/internal/fee"
	"elysion/internal/metrics"
	"elysion/internal/pass"
	"elysion/internal/rabbit"
	"elysion/internal/site"
	"elysion/pkg/validator"
)

const (
	pendingReminder   = "Please complete the UPI payment using the shown fee. After payment, confirm to generate your entry QR."
	confirmedReminder = "Payment is self-confirmed. The organisers check it before entry; this QR is not proof of payment."
)

type Service interface {
	Index(ctx *ginext.Context)
	Register(ctx *ginext.Context)
	ConfirmPayment(ctx *ginext.Context)

	Quote(ctx *ginext.Context)
	CreateDesk(ctx *ginext.Context)
	GetDesk(ctx *ginext.Context)
	SubmitDesk(ctx *ginext.Context)
	ConfirmDesk(ctx *ginext.Context)
	DeskQR(ctx *ginext.Context)
	Health(ctx *ginext.Context)
}

type service struct {
	store   *pass.Store
	content *site.Content
	log     *zerolog.Logger
	pub     rabbit.Publisher
	qrSize  int
	now     func() time.Time
}

// NewService wires the handlers. pub may be nil, in which case confirmed
// passes are not announced anywhere.
func NewService(store *pass.Store, content *site.Content, logger *zerolog.Logger, pub rabbit.Publisher, qrSize int) Service {
	return &service{
		store:   store,
		content: content,
		log:     logger,
		pub:     pub,
		qrSize:  qrSize,
		now:     time.Now,
	}
}

// submit validates the form and, when it is clean, holds a new pass on the
// desk. A form with errors leaves the desk untouched.
func (s *service) submit(ctx context.Context, token string, form *dto.RegistrationForm) (pass.Desk, map[string]string, error) {
	if errs := form.Check(ctx); len(errs) > 0 {
		metrics.Rejections.Inc()
		return s.store.Desk(token), errs, nil
	}

	sub := form.Submission()
	p, err := pass.Issue(s.store.Prefix(), sub)
	if err != nil {
		return pass.Desk{}, nil, err
	}
	d := s.store.Submit(token, p)

	metrics.Submissions.WithLabelValues(string(sub.Ticket.Type())).Inc()
	s.log.Info().
		Str("desk", token).
		Str("pass_id", p.ID).
		Str("ticket", string(sub.Ticket.Type())).
		Msg("registration held pending payment")
	return d, nil, nil
}

func (s *service) confirm(token string) (pass.Desk, error) {
	d, promoted, err := s.store.Confirm(token)
	if err != nil {
		return d, err
	}
	if !promoted {
		return d, nil
	}

	metrics.Confirmations.WithLabelValues(string(d.Pass.Submission.Ticket.Type())).Inc()
	s.log.Info().
		Str("desk", token).
		Str("pass_id", d.Pass.ID).
		Msg("payment self-confirmed, pass issued")
	s.announce(*d.Pass, d.ConfirmedAt)
	return d, nil
}

// announce hands a confirmed pass to the mail worker. Failures are logged;
// the visitor still gets the QR.
func (s *service) announce(p pass.Pass, at time.Time) {
	if s.pub == nil {
		return
	}
	raw, err := json.Marshal(dto.PassIssuedMessage{
		PassID:     p.ID,
		Name:       p.Submission.Registrant.Name,
		Recipients: p.Recipients(),
		Payload:    p.Payload,
		Total:      fee.ForSubmission(p.Submission).Total,
		IssuedAt:   at,
	})
	if err == nil {
		err = s.pub.Publish(raw, 0)
	}
	if err != nil {
		metrics.NotificationFailures.Inc()
		s.log.Error().Err(err).Str("pass_id", p.ID).Msg("failed to announce confirmed pass")
	}
}

func (s *service) deskView(token string, d pass.Desk) dto.DeskResponse {
	resp := dto.DeskResponse{Desk: token, State: d.State.String()}
	if d.Pass == nil {
		return resp
	}

	q := fee.ForSubmission(d.Pass.Submission)
	resp.PassID = d.Pass.ID
	resp.Quote = &q
	resp.Reminder = pendingReminder
	if confirmed, err := d.Confirmed(); err == nil {
		at := d.ConfirmedAt
		resp.Payload = confirmed.Payload
		resp.QRURL = qrURL(token)
		resp.IssuedAt = &at
		resp.Reminder = confirmedReminder
	}
	return resp
}

func qrURL(token string) string {
	return "/v1/desks/" + token + "/qr.png"
}

func (s *service) Quote(ctx *ginext.Context) {
	var req dto.QuoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}
	if verr := validator.Validate(ctx, req); verr != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, fmt.Sprintf("%v", verr))
		return
	}
	dto.SuccessResponse(ctx, req.Quote())
}

func (s *service) CreateDesk(ctx *ginext.Context) {
	token := pass.NewToken()
	dto.SuccessCreatedResponse(ctx, s.deskView(token, pass.Desk{}))
}

func (s *service) GetDesk(ctx *ginext.Context) {
	token, ok := deskToken(ctx)
	if !ok {
		return
	}
	dto.SuccessResponse(ctx, s.deskView(token, s.store.Desk(token)))
}

func (s *service) SubmitDesk(ctx *ginext.Context) {
	token, ok := deskToken(ctx)
	if !ok {
		return
	}

	var form dto.RegistrationForm
	if err := ctx.ShouldBindJSON(&form); err != nil {
		s.log.Error().Err(err).Msg("failed to parse registration request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, "Invalid JSON format")
		return
	}

	d, errs, err := s.submit(ctx.Request.Context(), token, &form)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to hold registration")
		dto.InternalServerError(ctx)
		return
	}
	if len(errs) > 0 {
		dto.ValidationError(ctx, errs)
		return
	}
	dto.SuccessResponse(ctx, s.deskView(token, d))
}

func (s *service) ConfirmDesk(ctx *ginext.Context) {
	token, ok := deskToken(ctx)
	if !ok {
		return
	}

	d, err := s.confirm(token)
	if errors.Is(err, pass.ErrNothingPending) {
		dto.NothingPendingError(ctx)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("failed to confirm desk")
		dto.InternalServerError(ctx)
		return
	}
	dto.SuccessResponse(ctx, s.deskView(token, d))
}

func (s *service) DeskQR(ctx *ginext.Context) {
	token, ok := deskToken(ctx)
	if !ok {
		return
	}

	p, err := s.store.Desk(token).Confirmed()
	if err != nil {
		dto.PassNotFoundError(ctx)
		return
	}
	png, err := pass.QR(p.Payload, s.qrSize)
	if err != nil {
		s.log.Error().Err(err).Str("pass_id", p.ID).Msg("failed to render QR")
		dto.InternalServerError(ctx)
		return
	}
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "image/png", png)
}

func (s *service) Health(ctx *ginext.Context) {
	dto.SuccessResponse(ctx, map[string]int{"desks": s.store.Len()})
}

func deskToken(ctx *ginext.Context) (string, bool) {
	token, err := pass.ParseToken(ctx.Param("desk"))
	if err != nil {
		dto.FieldBadFormatError(ctx, "desk")
		return "", false
	}
	return token, true
}
