package pkg

import (
	cryptoRand "crypto/rand"
	"crypto/tls"
	"fmt"
	"math/big"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer 发送 HTML 邮件
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer gomail 实现
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	d.TLSConfig = &tls.Config{ServerName: m.cfg.Host}
	return d.DialAndSend(msg)
}

func ApprovalCodeHTML(name, code string, ttl time.Duration) string {
	return fmt.Sprintf(`<p>Hi %s,</p><p>Your account approval code is <b style="font-size:18px;">%s</b>.</p><p>It expires in %d minutes.</p>`,
		name, code, int(ttl.Minutes()))
}

// RandDigits n 位数字验证码
func RandDigits(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		x, err := cryptoRand.Int(cryptoRand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + x.Int64()))
	}
	return b.String(), nil
}
