package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"elysion/internal/dto"
	"elysion/internal/mailer"
	"elysion/internal/metrics"
	"elysion/internal/pass"
	"elysion/internal/rabbit"
)

type PassSender interface {
	SendPass(p mailer.PassMail) error
}

// Reader mails every confirmed pass announced on the queue.
type Reader struct {
	RMQ       rabbit.Consumer
	mail      PassSender
	eventName string
	qrSize    int
	log       *zerolog.Logger
	done      chan struct{}
	cancel    context.CancelFunc
}

func NewReader(rmq rabbit.Consumer, mail PassSender, eventName string, qrSize int, log *zerolog.Logger) *Reader {
	return &Reader{
		RMQ:       rmq,
		mail:      mail,
		eventName: eventName,
		qrSize:    qrSize,
		log:       log,
		done:      make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.log.Info().Msg("pass mail reader started")

	go func() {
		defer close(r.done)

		if err := r.RMQ.Consume(r.Handle); err != nil {
			r.log.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		r.log.Info().Msg("pass mail reader stopped by context")
	}()
}

// Handle processes one message. Malformed messages and mail failures are
// logged and dropped so they do not cycle through the queue forever.
func (r *Reader) Handle(body []byte) error {
	var msg dto.PassIssuedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		r.log.Error().Err(err).Msgf("failed to unmarshal message: %s", string(body))
		return nil
	}

	r.log.Info().
		Str("pass_id", msg.PassID).
		Int("recipients", len(msg.Recipients)).
		Msg("received confirmed pass")

	qr, err := pass.QR(msg.Payload, r.qrSize)
	if err != nil {
		r.log.Error().Err(err).Str("pass_id", msg.PassID).Msg("failed to render pass QR")
		return nil
	}

	err = r.mail.SendPass(mailer.PassMail{
		EventName:  r.eventName,
		PassID:     msg.PassID,
		Name:       msg.Name,
		Recipients: msg.Recipients,
		Payload:    msg.Payload,
		Total:      msg.Total,
		QR:         qr,
	})
	switch {
	case errors.Is(err, mailer.ErrNotConfigured):
		r.log.Warn().Str("pass_id", msg.PassID).Msg("mailer not configured, pass not sent")
	case err != nil:
		metrics.NotificationFailures.Inc()
		r.log.Warn().Err(err).Str("pass_id", msg.PassID).Msg("failed to send pass email")
	default:
		r.log.Info().Str("pass_id", msg.PassID).Msg("pass email sent successfully")
	}
	return nil
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
