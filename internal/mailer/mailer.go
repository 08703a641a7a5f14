// Package mailer sends reservation confirmation emails over SMTP.
package mailer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/rs/zerolog"
)

// Mailer sends confirmation mail with the reservation QR attached.
// Addr is host:port, host alone is derived for PLAIN auth.
type Mailer struct {
	Addr string
	From string
	Pass string
	log  zerolog.Logger
}

func New(addr, from, pass string, log zerolog.Logger) *Mailer {
	return &Mailer{Addr: addr, From: from, Pass: pass, log: log}
}

// Enabled reports whether SMTP credentials were configured. The
// consumer skips mail delivery entirely when they were not.
func (m *Mailer) Enabled() bool { return m.Addr != "" && m.From != "" }

// SendConfirmation emails the guest their reservation details with the
// check-in QR inline as a PNG attachment.
func (m *Mailer) SendConfirmation(to, userName, eventTitle, eventDate, eventTime, location string, qrPNG []byte) error {
	subject := fmt.Sprintf("Reservation confirmed: %s", eventTitle)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour spot for %s is confirmed.\n\nDate: %s\nTime: %s\nLocation: %s\n\nShow the attached QR code at the entrance to check in.\n",
		userName, eventTitle, eventDate, eventTime, location)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.From)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", w.Boundary())

	text, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return fmt.Errorf("mail text part: %w", err)
	}
	if _, err := text.Write([]byte(body)); err != nil {
		return fmt.Errorf("mail text part: %w", err)
	}

	if len(qrPNG) > 0 {
		img, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"image/png"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {`attachment; filename="checkin-qr.png"`},
		})
		if err != nil {
			return fmt.Errorf("mail qr part: %w", err)
		}
		enc := base64.StdEncoding.EncodeToString(qrPNG)
		// RFC 2045 line length limit.
		for len(enc) > 76 {
			fmt.Fprintf(img, "%s\r\n", enc[:76])
			enc = enc[76:]
		}
		fmt.Fprintf(img, "%s\r\n", enc)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("mail finalize: %w", err)
	}

	host := m.Addr
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	auth := smtp.PlainAuth("", m.From, m.Pass, host)

	if err := smtp.SendMail(m.Addr, auth, m.From, []string{to}, buf.Bytes()); err != nil {
		m.log.Warn().Err(err).Str("to", to).Msg("failed to send confirmation email")
		return fmt.Errorf("send email: %w", err)
	}
	m.log.Info().Str("to", to).Str("event", eventTitle).Msg("confirmation email sent")
	return nil
}
