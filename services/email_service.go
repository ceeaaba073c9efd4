package services

import (
	"fmt"
	"time"

	"github.com/VladFokin1/Bank-REST/config"
	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	return nil
}

// SendTransferNotification отправляет уведомление о переводе между картами
func (s *EmailService) SendTransferNotification(to string, amount decimal.Decimal) error {
	subject := "Уведомление о переводе"
	body := fmt.Sprintf(`
		<h2>Перевод между вашими картами выполнен</h2>
		<p>Сумма: %s</p>
		<p>Дата: %s</p>
	`, amount.StringFixed(2), time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(to, subject, body)
}
