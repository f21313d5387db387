// Package smtpserver is an optional transport that classifies mail in
// transit: it accepts messages over SMTP, runs the triage pipeline on the
// body and relays the message upstream with X-Email-* result headers.
// Classification never blocks delivery.
package smtpserver

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/core"
	"github.com/mailtriage/email-analyzer/internal/textproc"
)

const (
	categoryHeader   = "X-Email-Category"
	intentHeader     = "X-Email-Intent"
	confidenceHeader = "X-Email-Confidence"
	errorHeader      = "X-Email-Analysis-Error"
)

// TaggingFilter annotates relayed mail with triage headers.
type TaggingFilter struct {
	svc        *core.TriageService
	logger     *zap.Logger
	listenAddr string
	relayAddr  string
	relayPort  int
	server     *smtp.Server
}

// NewTaggingFilter creates a new SMTP tagging filter.
func NewTaggingFilter(
	svc *core.TriageService,
	logger *zap.Logger,
	listenAddr string,
	relayAddr string,
	relayPort int,
) *TaggingFilter {
	return &TaggingFilter{
		svc:        svc,
		logger:     logger,
		listenAddr: listenAddr,
		relayAddr:  relayAddr,
		relayPort:  relayPort,
	}
}

// Start starts the SMTP server in a background goroutine.
func (f *TaggingFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})
	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP tagging filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP server.
func (f *TaggingFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// relay forwards the annotated message to the upstream MTA.
func (f *TaggingFilter) relay(sender string, recipients []string, data []byte) error {
	addr := fmt.Sprintf("%s:%d", f.relayAddr, f.relayPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	client := smtp.NewClient(conn)
	defer client.Close()

	if err := client.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := client.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt, nil); err != nil {
			f.logger.Warn("RCPT TO failed",
				zap.String("recipient", rcpt),
				zap.Error(err))
			continue
		}
		accepted = true
	}
	if !accepted {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := client.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

// smtpBackend implements the go-smtp Backend interface.
type smtpBackend struct {
	filter *TaggingFilter
}

func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface.
type smtpSession struct {
	filter     *TaggingFilter
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message body and relays the message with result
// headers prepended. A pipeline failure turns into an error header, never
// a rejection.
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse message", zap.Error(err))
		return err
	}

	body, err := extractPlainText(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract message text", zap.Error(err))
		return err
	}

	var result *core.ClassificationResult
	var analysisErr error

	content := textproc.Clean(body)
	if content == "" {
		analysisErr = fmt.Errorf("message has no usable text content")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		result, analysisErr = s.filter.svc.Classify(ctx, content)
	}

	if analysisErr != nil {
		s.filter.logger.Error("Failed to classify message",
			zap.String("sender", s.sender),
			zap.Error(analysisErr))
		result = &core.ClassificationResult{
			Category:   core.CategoryUnproductive,
			Confidence: 0.0,
			Metadata:   core.ResultMetadata{Intent: core.IntentOther},
		}
	}

	var annotated bytes.Buffer
	fmt.Fprintf(&annotated, "%s: %s\r\n", categoryHeader, result.Category)
	fmt.Fprintf(&annotated, "%s: %s\r\n", intentHeader, result.Metadata.Intent)
	fmt.Fprintf(&annotated, "%s: %.4f\r\n", confidenceHeader, result.Confidence)
	if analysisErr != nil {
		fmt.Fprintf(&annotated, "%s: %s\r\n", errorHeader, analysisErr.Error())
	}
	for key, values := range msg.Header {
		for _, value := range values {
			fmt.Fprintf(&annotated, "%s: %s\r\n", key, value)
		}
	}
	annotated.WriteString("\r\n")
	annotated.Write(messageBody(rawData, msg))

	if err := s.filter.relay(s.sender, s.recipients, annotated.Bytes()); err != nil {
		s.filter.logger.Error("Failed to relay message",
			zap.String("sender", s.sender),
			zap.Error(err))
		return err
	}

	s.filter.logger.Info("Tagged message",
		zap.String("sender", s.sender),
		zap.String("category", string(result.Category)),
		zap.String("intent", result.Metadata.Intent),
		zap.Float64("confidence", result.Confidence))

	return nil
}

func (s *smtpSession) Logout() error {
	return nil
}

// messageBody returns the raw body bytes, preserving MIME structure and
// attachments as received.
func messageBody(rawData []byte, msg *mail.Message) []byte {
	if idx := bytes.Index(rawData, []byte("\r\n\r\n")); idx != -1 {
		return rawData[idx+4:]
	}
	if idx := bytes.Index(rawData, []byte("\n\n")); idx != -1 {
		return rawData[idx+2:]
	}
	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return nil
	}
	return body
}
