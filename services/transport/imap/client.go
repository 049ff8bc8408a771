package imap

import (
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/client"

	"github.com/customeros/warmup/interfaces"
)

const dialTimeout = 30 * time.Second

// connectMailbox dials, optionally negotiates TLS, and logs in. The
// caller owns the returned client and must call disconnectClient when
// done with it.
func connectMailbox(mailbox interfaces.MailboxCredentials) (*client.Client, error) {
	addr := fmt.Sprintf("%s:%d", mailbox.IMAPHost, mailbox.IMAPPort)
	dialer := &net.Dialer{Timeout: dialTimeout, KeepAlive: dialTimeout}

	var c *client.Client
	var err error
	if mailbox.IMAPSecurity == "none" {
		c, err = client.DialWithDialer(dialer, addr)
	} else {
		c, err = client.DialWithDialerTLS(dialer, addr, &tls.Config{ServerName: mailbox.IMAPHost})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c.Timeout = dialTimeout
	if err := c.Login(mailbox.IMAPUsername, mailbox.IMAPPassword); err != nil {
		_ = c.Logout()
		return nil, fmt.Errorf("failed to login as %s: %w", mailbox.IMAPUsername, err)
	}
	c.Timeout = 0

	return c, nil
}

// disconnectClient logs out with a bounded timeout; it never blocks the
// caller beyond that bound.
func disconnectClient(c *client.Client) {
	if c == nil {
		return
	}
	done := make(chan error, 1)
	go func() { done <- c.Logout() }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}
