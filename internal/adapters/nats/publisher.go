package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Tom-Shanks/FireSight-AI/internal/core/domain"
)

const (
	detectionStream  = "FIRE_DETECTIONS"
	simulationStream = "SIMULATIONS"

	// subjectDetectionPrefix is completed per detection source,
	// e.g. fires.detections.viirs_snpp.
	subjectDetectionPrefix = "fires.detections."
	// SubjectSimulations carries completed spread simulation summaries.
	SubjectSimulations = "fires.simulations.done"
)

// Publisher implements ports.EventPublisher over NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the streams exist.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	p := &Publisher{conn: conn, js: js}
	if err := p.ensureStreams(); err != nil {
		conn.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureStreams() error {
	streams := []*nats.StreamConfig{
		{
			Name:     detectionStream,
			Subjects: []string{"fires.detections.>"},
			MaxAge:   72 * time.Hour,
			Storage:  nats.FileStorage,
		},
		{
			Name:     simulationStream,
			Subjects: []string{"fires.simulations.>"},
			MaxAge:   24 * time.Hour,
			Storage:  nats.FileStorage,
		},
	}
	for _, cfg := range streams {
		if _, err := p.js.AddStream(cfg); err != nil {
			if _, uerr := p.js.UpdateStream(cfg); uerr != nil {
				return fmt.Errorf("ensure stream %s: %w", cfg.Name, uerr)
			}
		}
	}
	return nil
}

// PublishDetection publishes a fire detection event on a per-source subject.
func (p *Publisher) PublishDetection(ctx context.Context, d *domain.FireDetection) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal detection: %w", err)
	}
	subject := subjectDetectionPrefix + subjectToken(d.Source)
	if _, err := p.js.Publish(subject, payload, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish detection: %w", err)
	}
	slog.Debug("published detection event", "subject", subject, "id", d.ID)
	return nil
}

// subjectToken lowercases a source name and strips characters that are not
// valid in a NATS subject token.
func subjectToken(source string) string {
	if source == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(source) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// PublishSimulationDone publishes a simulation completion summary.
func (p *Publisher) PublishSimulationDone(ctx context.Context, summary []byte) error {
	if _, err := p.js.Publish(SubjectSimulations, summary, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish simulation: %w", err)
	}
	return nil
}

// Close drains and closes the underlying connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// RawConn opens a plain NATS connection for subscribers that do not
// need JetStream, such as the websocket relay.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
