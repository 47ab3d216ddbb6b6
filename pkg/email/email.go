package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// ReceiptLine is one row of an emailed receipt.
type ReceiptLine struct {
	Label  string
	Amount string
	Indent bool
}

// ReceiptEmail is the data rendered into the receipt email. Amounts are
// preformatted by the caller.
type ReceiptEmail struct {
	StoreName string
	ReceiptNo string
	Timestamp string
	Items     []ReceiptLine
	Totals    []ReceiptLine
	Total     string
	Footer    []string
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// Configured reports whether an SMTP host and sender are set.
func (s *EmailService) Configured() bool {
	return s.config.SMTPHost != "" && s.config.FromEmail != ""
}

// SendReceiptEmail emails a copy of a receipt.
func (s *EmailService) SendReceiptEmail(toEmail string, receipt *ReceiptEmail) error {
	htmlContent, err := renderReceipt(receipt)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Your receipt #%s - %s", receipt.ReceiptNo, receipt.StoreName)
	message := s.buildHTMLEmail(toEmail, subject, htmlContent)

	return s.sendEmail(toEmail, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// buildHTMLEmail builds an HTML email message
func (s *EmailService) buildHTMLEmail(to, subject, htmlBody string) []byte {
	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		to,
		subject,
	)

	return []byte(headers + htmlBody)
}

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptTemplate))

func renderReceipt(receipt *ReceiptEmail) (string, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, receipt); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// receiptTemplate is the HTML template for receipt emails
const receiptTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Receipt #{{.ReceiptNo}}</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Courier New', Courier, monospace; background-color: #f4f1ea;">
    <table role="presentation" style="width: 100%; border-collapse: collapse;">
        <tr>
            <td style="padding: 32px 0;">
                <table role="presentation" style="max-width: 420px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; padding: 24px;">
                    <tr>
                        <td style="text-align: center; padding-bottom: 12px;">
                            <h1 style="margin: 0; font-size: 22px; color: #3b2a1a;">{{.StoreName}}</h1>
                            <p style="margin: 4px 0 0 0; font-size: 13px; color: #6b5b4b;">Receipt #{{.ReceiptNo}}</p>
                            <p style="margin: 2px 0 0 0; font-size: 13px; color: #6b5b4b;">{{.Timestamp}}</p>
                        </td>
                    </tr>
                    <tr>
                        <td style="border-top: 1px dashed #c8bba8; padding: 12px 0;">
                            <table role="presentation" style="width: 100%; font-size: 14px; color: #2d2d2d;">
                                {{range .Items}}
                                <tr>
                                    <td style="padding: 2px 0;{{if .Indent}} padding-left: 16px; color: #6b5b4b;{{end}}">{{.Label}}</td>
                                    <td style="padding: 2px 0; text-align: right;">{{.Amount}}</td>
                                </tr>
                                {{end}}
                            </table>
                        </td>
                    </tr>
                    <tr>
                        <td style="border-top: 1px dashed #c8bba8; padding: 12px 0;">
                            <table role="presentation" style="width: 100%; font-size: 14px; color: #2d2d2d;">
                                {{range .Totals}}
                                <tr>
                                    <td style="padding: 2px 0;">{{.Label}}</td>
                                    <td style="padding: 2px 0; text-align: right;">{{.Amount}}</td>
                                </tr>
                                {{end}}
                                <tr>
                                    <td style="padding: 8px 0 0 0; font-weight: bold; font-size: 16px;">TOTAL</td>
                                    <td style="padding: 8px 0 0 0; font-weight: bold; font-size: 16px; text-align: right;">{{.Total}}</td>
                                </tr>
                            </table>
                        </td>
                    </tr>
                    {{if .Footer}}
                    <tr>
                        <td style="border-top: 1px dashed #c8bba8; padding-top: 12px; text-align: center; font-size: 13px; color: #6b5b4b;">
                            {{range .Footer}}<p style="margin: 2px 0;">{{.}}</p>{{end}}
                        </td>
                    </tr>
                    {{end}}
                </table>
            </td>
        </tr>
    </table>
</body>
</html>
`
