package factory

import (
	"go.uber.org/zap"

	"github.com/mailtriage/email-analyzer/internal/adapters/httpserver"
	"github.com/mailtriage/email-analyzer/internal/adapters/smtpserver"
	"github.com/mailtriage/email-analyzer/internal/batch"
	"github.com/mailtriage/email-analyzer/internal/config"
	"github.com/mailtriage/email-analyzer/internal/core"
	"github.com/mailtriage/email-analyzer/internal/ports"
	"github.com/mailtriage/email-analyzer/internal/textproc"
)

// TransportFactory creates the transports that feed the triage pipeline
type TransportFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	svc     *core.TriageService
	orch    *batch.Orchestrator
	decoder *textproc.Decoder
}

// NewTransportFactory creates a new transport factory
func NewTransportFactory(
	cfg *config.Config,
	logger *zap.Logger,
	svc *core.TriageService,
	orch *batch.Orchestrator,
	decoder *textproc.Decoder,
) *TransportFactory {
	return &TransportFactory{
		cfg:     cfg,
		logger:  logger,
		svc:     svc,
		orch:    orch,
		decoder: decoder,
	}
}

// CreateTransports creates the HTTP transport and, when enabled, the SMTP
// tagging transport.
func (f *TransportFactory) CreateTransports() ([]ports.Transport, error) {
	serverCfg := f.cfg.GetServer()
	transports := []ports.Transport{
		httpserver.NewServer(f.svc, f.orch, f.decoder, f.logger, serverCfg.ListenAddress),
	}

	smtpCfg := f.cfg.GetSMTP()
	if smtpCfg.Enabled {
		transports = append(transports, smtpserver.NewTaggingFilter(
			f.svc,
			f.logger,
			smtpCfg.ListenAddress,
			smtpCfg.RelayAddress,
			smtpCfg.RelayPort,
		))
	}

	return transports, nil
}
