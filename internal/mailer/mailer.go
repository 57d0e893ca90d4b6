package mailer

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"elysion/internal/fee"
)

var ErrNotConfigured = errors.New("mailer is not configured")

type Config struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Mailer struct {
	cfg  Config
	log  *zerolog.Logger
	send sendFunc
}

func New(cfg Config, log *zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

// PassMail is what a participant receives once their pass is confirmed.
type PassMail struct {
	EventName  string
	PassID     string
	Name       string
	Recipients []string
	Payload    string
	Total      int
	QR         []byte
}

// SendPass mails the pass with its QR attached.
func (m *Mailer) SendPass(p PassMail) error {
	if m.cfg.Host == "" || m.cfg.From == "" {
		return ErrNotConfigured
	}
	if len(p.Recipients) == 0 {
		return fmt.Errorf("pass %s has no recipients", p.PassID)
	}

	msg, err := Compose(m.cfg.From, p)
	if err != nil {
		return fmt.Errorf("compose pass email: %w", err)
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	if err := m.send(addr, auth, m.cfg.From, p.Recipients, msg); err != nil {
		m.log.Warn().Err(err).Str("pass_id", p.PassID).Msg("failed to send pass email")
		return fmt.Errorf("send email: %w", err)
	}

	m.log.Info().Str("pass_id", p.PassID).Strs("to", p.Recipients).Msg("pass email sent")
	return nil
}

// Compose builds a multipart message: a plain text body and, when present,
// the QR as a PNG attachment.
func Compose(from string, p PassMail) ([]byte, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	text := fmt.Sprintf(
		"Hello %s,\r\n\r\nYour entry pass for %s is ready.\r\n\r\nPass ID: %s\r\nFee: %s\r\n\r\n"+
			"Show the attached QR at the gate together with your college ID card.\r\n"+
			"Entry is valid only after the organisers have checked your payment.\r\n",
		p.Name, p.EventName, p.PassID, fee.Rupees(p.Total),
	)
	part, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=UTF-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write([]byte(text)); err != nil {
		return nil, err
	}

	if len(p.QR) > 0 {
		part, err = w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"image/png"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", p.PassID+".png")},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(wrap(base64.StdEncoding.EncodeToString(p.QR), 76)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(p.Recipients, ", "))
	fmt.Fprintf(&msg, "Subject: Your %s entry pass %s\r\n", p.EventName, p.PassID)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", w.Boundary())
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

func wrap(s string, width int) []byte {
	var b bytes.Buffer
	for len(s) > width {
		b.WriteString(s[:width])
		b.WriteString("\r\n")
		s = s[width:]
	}
	b.WriteString(s)
	b.WriteString("\r\n")
	return b.Bytes()
}
