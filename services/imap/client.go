package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/fresh/internal/tracing"
)

// connect dials and logs in to the configured server.
func (s *Service) connect(ctx context.Context) (*client.Client, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ImapService.connect")
	defer span.Finish()
	tracing.TagComponentMailbox(span)
	span.SetTag("server", s.config.Host)
	span.SetTag("port", s.config.Port)
	span.SetTag("tls", s.config.TLS)

	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	var c *client.Client
	var err error
	if s.config.TLS {
		c, err = client.DialWithDialerTLS(dialer, serverAddr, &tls.Config{ServerName: s.config.Host})
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "connecting to %s", serverAddr)
	}

	c.Timeout = 30 * time.Second
	if err := c.Login(s.config.Username, s.config.Password); err != nil {
		_ = c.Logout()
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "logging in as %s", s.config.Username)
	}
	c.Timeout = 60 * time.Second

	s.log.Debugf("connected to %s as %s", serverAddr, s.config.Username)
	return c, nil
}

// getClient reuses the open connection while it answers NOOP.
func (s *Service) getClient(ctx context.Context) (*client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		if err := s.client.Noop(); err == nil {
			return s.client, nil
		}
		s.log.Debug("imap connection is broken, reconnecting")
		s.client = nil
	}

	c, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	s.client = c
	return c, nil
}

// Close logs out, giving the server five seconds to answer.
func (s *Service) Close() error {
	s.mu.Lock()
	c := s.client
	s.client = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}

	c.Timeout = 5 * time.Second
	done := make(chan error, 1)
	go func() {
		done <- c.Logout()
	}()

	select {
	case err := <-done:
		if err != nil {
			return errors.Wrap(err, "imap logout")
		}
		return nil
	case <-time.After(5 * time.Second):
		s.log.Warn("imap logout timed out")
		return nil
	}
}
