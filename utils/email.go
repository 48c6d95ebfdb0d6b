package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"os"
	"strings"
	"time"
)

const (
	DefaultEmailJSEndpoint   = "https://api.emailjs.com/api/v1.0/email/send"
	DefaultEmailJSTemplateID = "template_order_confirmation"
)

// OrderConfirmation carries the order confirmation template parameters.
type OrderConfirmation struct {
	ToEmail         string
	CustomerName    string
	OrderID         string
	OrderTotal      string
	TreesPlanted    int
	PandasSupported string
	Items           string
}

func (o OrderConfirmation) TemplateParams() map[string]any {
	return map[string]any{
		"to_email":         o.ToEmail,
		"customer_name":    o.CustomerName,
		"order_id":         o.OrderID,
		"order_total":      o.OrderTotal,
		"trees_planted":    o.TreesPlanted,
		"pandas_supported": o.PandasSupported,
		"items":            o.Items,
	}
}

// Mailer delivers transactional email.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, msg OrderConfirmation) error
}

// EmailJSMailer sends through the EmailJS REST API using a stored template.
type EmailJSMailer struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	Endpoint   string
	Client     *http.Client
}

func NewEmailJSMailer(serviceID, templateID, publicKey string) *EmailJSMailer {
	if templateID == "" {
		templateID = DefaultEmailJSTemplateID
	}
	return &EmailJSMailer{
		ServiceID:  serviceID,
		TemplateID: templateID,
		PublicKey:  publicKey,
		Endpoint:   DefaultEmailJSEndpoint,
		Client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (m *EmailJSMailer) SendOrderConfirmation(ctx context.Context, msg OrderConfirmation) error {
	if m.ServiceID == "" || m.PublicKey == "" {
		return fmt.Errorf("EmailJS not configured")
	}

	payload, err := json.Marshal(map[string]any{
		"service_id":      m.ServiceID,
		"template_id":     m.TemplateID,
		"user_id":         m.PublicKey,
		"template_params": msg.TemplateParams(),
	})
	if err != nil {
		return fmt.Errorf("encode email request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

type EmailConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

func (c *EmailConfig) Configured() bool {
	return c.Host != "" && c.Port != "" && c.From != ""
}

// SMTPMailer renders the confirmation as HTML and sends it over SMTP.
type SMTPMailer struct {
	Config *EmailConfig
}

func (m *SMTPMailer) SendOrderConfirmation(_ context.Context, msg OrderConfirmation) error {
	subject := fmt.Sprintf("Order Confirmed - %s", msg.OrderID)
	body := fmt.Sprintf(`<h2>Order Confirmed!</h2>
<p>Hi %s,</p>
<p>Your order <strong>%s</strong> has been placed successfully.</p>
<p>Order total: <strong>%s</strong></p>
<p>Items: %s</p>
<p>Your purchase plants <strong>%d</strong> trees and supports <strong>%s</strong> pandas.</p>
<p>The EcoFloss Team</p>`, strings.Split(msg.CustomerName, " ")[0], msg.OrderID, msg.OrderTotal, msg.Items, msg.TreesPlanted, msg.PandasSupported)
	return SendEmail(m.Config, msg.ToEmail, subject, body)
}

func SendEmail(config *EmailConfig, to, subject, htmlBody string) error {
	if !config.Configured() {
		return fmt.Errorf("SMTP not configured")
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		config.From, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}
