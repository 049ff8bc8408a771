package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/warmup/interfaces"
	"github.com/customeros/warmup/internal/enum"
	"github.com/customeros/warmup/internal/tracing"
	"github.com/customeros/warmup/internal/utils"
)

// Client sends a single message over SMTP and closes the connection on
// every exit path; it is never pooled or reused across sends.
type Client struct{}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) Send(ctx context.Context, from interfaces.MailboxCredentials, msg interfaces.OutboundMessage) (*interfaces.SendResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "smtp.Client.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if err := c.validate(from, msg); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	validation := mailvalidate.ValidateEmailSyntax(from.Address)
	if !validation.IsValid {
		err := fmt.Errorf("from address %q is not syntactically valid", from.Address)
		tracing.TraceErr(span, err)
		return nil, err
	}

	messageID := utils.GenerateMessageID(validation.Domain)

	buffer := c.buildMessage(from, msg, messageID)

	if err := c.sendToServer(ctx, from, msg.To, buffer); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return &interfaces.SendResult{
		MessageID:  messageID,
		Recipients: []string{msg.To},
	}, nil
}

func (c *Client) validate(from interfaces.MailboxCredentials, msg interfaces.OutboundMessage) error {
	if from.Address == "" {
		return errors.New("from address is required")
	}
	if msg.To == "" {
		return errors.New("recipient address is required")
	}
	if msg.Subject == "" {
		return errors.New("subject is required")
	}
	if msg.Body == "" {
		return errors.New("body is required")
	}
	return nil
}

func (c *Client) buildMessage(from interfaces.MailboxCredentials, msg interfaces.OutboundMessage, messageID string) *bytes.Buffer {
	buffer := bytes.NewBuffer(nil)

	headers := map[string]string{
		"From":         fmt.Sprintf("%q <%s>", from.DisplayName, from.Address),
		"To":           msg.To,
		"Subject":      msg.Subject,
		"Message-ID":   messageID,
		"MIME-Version": "1.0",
		"Content-Type": "text/plain; charset=UTF-8",
	}
	if msg.InReplyTo != "" {
		headers["In-Reply-To"] = msg.InReplyTo
		headers["References"] = msg.InReplyTo
	}

	for k, v := range headers {
		buffer.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	buffer.WriteString("\r\n")
	buffer.WriteString(msg.Body)

	return buffer
}

func (c *Client) sendToServer(ctx context.Context, from interfaces.MailboxCredentials, to string, buffer *bytes.Buffer) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "smtp.Client.sendToServer")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	addr := fmt.Sprintf("%s:%d", from.SMTPHost, from.SMTPPort)
	auth := smtp.PlainAuth("", from.SMTPUsername, from.SMTPPassword, from.SMTPHost)
	recipients := []string{to}

	if from.SMTPSecurity == enum.EmailSecurityStartTLS.String() {
		return c.sendWithSTARTTLS(ctx, addr, from.SMTPHost, auth, from.Address, recipients, buffer)
	}
	if from.SMTPSecurity == enum.EmailSecurityTLS.String() || from.SMTPSecurity == enum.EmailSecuritySSL.String() {
		return c.sendWithExplicitTLS(ctx, addr, from.SMTPHost, auth, from.Address, recipients, buffer)
	}

	if err := smtp.SendMail(addr, auth, from.Address, recipients, buffer.Bytes()); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (c *Client) sendWithSTARTTLS(ctx context.Context, addr, host string, auth smtp.Auth, from string, recipients []string, buffer *bytes.Buffer) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	return c.deliver(client, auth, from, recipients, buffer)
}

func (c *Client) sendWithExplicitTLS(ctx context.Context, addr, host string, auth smtp.Auth, from string, recipients []string, buffer *bytes.Buffer) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	return c.deliver(client, auth, from, recipients, buffer)
}

func (c *Client) deliver(client *smtp.Client, auth smtp.Auth, from string, recipients []string, buffer *bytes.Buffer) error {
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL command failed: %w", err)
	}
	for _, recipient := range recipients {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("SMTP RCPT command failed for %s: %w", recipient, err)
		}
	}

	dataWriter, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA command failed: %w", err)
	}
	if _, err = dataWriter.Write(buffer.Bytes()); err != nil {
		return fmt.Errorf("failed to write email data: %w", err)
	}
	if err = dataWriter.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
