package email

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReceipt() *ReceiptEmail {
	return &ReceiptEmail{
		StoreName: "BrewPOS Cafe",
		ReceiptNo: "000042",
		Timestamp: "Mar 05, 2026 09:15 AM",
		Items: []ReceiptLine{
			{Label: "Latte (Iced) x2", Amount: "240.00"},
			{Label: "+ Extra shot", Amount: "60.00", Indent: true},
		},
		Totals: []ReceiptLine{
			{Label: "Subtotal", Amount: "300.00"},
		},
		Total:  "₱ 300.00",
		Footer: []string{"Thank you!"},
	}
}

func TestEmailService_Configured(t *testing.T) {
	assert.False(t, NewEmailService(EmailConfig{}).Configured())
	assert.False(t, NewEmailService(EmailConfig{SMTPHost: "smtp.example.com"}).Configured())
	assert.True(t, NewEmailService(EmailConfig{SMTPHost: "smtp.example.com", FromEmail: "pos@example.com"}).Configured())
}

func TestEmailService_SendReceiptEmail(t *testing.T) {
	s := NewEmailService(EmailConfig{
		SMTPHost:  "smtp.example.com",
		SMTPPort:  2525,
		FromName:  "BrewPOS Cafe",
		FromEmail: "pos@example.com",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	s.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	require.NoError(t, s.SendReceiptEmail("guest@example.com", testReceipt()))

	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Nil(t, gotAuth, "no credentials means no auth")
	assert.Equal(t, "pos@example.com", gotFrom)
	assert.Equal(t, []string{"guest@example.com"}, gotTo)

	body := string(gotMsg)
	assert.Contains(t, body, "Subject: Your receipt #000042 - BrewPOS Cafe\r\n")
	assert.Contains(t, body, "Latte (Iced) x2")
	assert.Contains(t, body, "240.00")
	assert.Contains(t, body, "₱ 300.00")
	assert.Contains(t, body, "Thank you!")
}

func TestEmailService_SendReceiptEmail_SMTPError(t *testing.T) {
	s := NewEmailService(EmailConfig{SMTPHost: "smtp.example.com", FromEmail: "pos@example.com"})
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := s.SendReceiptEmail("guest@example.com", testReceipt())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email")
}
