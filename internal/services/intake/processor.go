package intake

import (
	"context"

	"go.uber.org/zap"

	"fillout-webhook/internal/models"
	"fillout-webhook/internal/normalizer"
	"fillout-webhook/internal/services/store"
	"fillout-webhook/internal/utils"
)

// Archiver stores a copy of a raw webhook body.
type Archiver interface {
	Archive(ctx context.Context, requestID string, body []byte) (string, error)
}

// Notifier tells the school that its event was recorded.
type Notifier interface {
	NotifyEventCreated(ctx context.Context, school *models.School, event *models.Event) error
}

// Result is the outcome of one processed submission.
type Result struct {
	School *models.School `json:"school"`
	Event  *models.Event  `json:"event"`
}

// Processor runs normalize, school upsert and event creation in sequence.
// Any failure aborts the remaining steps.
type Processor struct {
	normalizer *normalizer.Normalizer
	schools    *SchoolUpserter
	events     *EventCreator
	archiver   Archiver
	notifier   Notifier
	log        *zap.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithArchiver archives every raw body before it is parsed. Archive failures
// are logged and do not fail the submission.
func WithArchiver(a Archiver) Option {
	return func(p *Processor) { p.archiver = a }
}

// WithNotifier sends a confirmation after the event is created. Notification
// failures are logged and do not fail the submission.
func WithNotifier(n Notifier) Option {
	return func(p *Processor) { p.notifier = n }
}

// NewProcessor wires the pipeline over s.
func NewProcessor(n *normalizer.Normalizer, s store.Store, variant models.EventVariant, opts ...Option) *Processor {
	p := &Processor{
		normalizer: n,
		schools:    NewSchoolUpserter(s),
		events:     NewEventCreator(s, variant),
		log:        utils.GetLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process handles one webhook body. It returns an error wrapping
// models.ErrInvalidPayload for unreadable bodies and a
// *models.PersistenceError for failed writes.
func (p *Processor) Process(ctx context.Context, requestID string, body []byte) (*Result, error) {
	log := p.log.With(zap.String("request_id", requestID))
	log.Debug("Received webhook body", zap.ByteString("body", body))

	if p.archiver != nil {
		if key, err := p.archiver.Archive(ctx, requestID, body); err != nil {
			log.Warn("Failed to archive webhook body", zap.Error(err))
		} else {
			log.Debug("Archived webhook body", zap.String("key", key))
		}
	}

	normalized, err := p.normalizer.Normalize(body)
	if err != nil {
		return nil, err
	}
	log.Debug("Normalized form",
		zap.String("shape", normalized.Shape),
		zap.Int("fields", len(normalized.Form)),
	)

	school, err := p.schools.Upsert(ctx, normalized.Form)
	if err != nil {
		return nil, err
	}

	event, err := p.events.Create(ctx, normalized.Form, school.ID)
	if err != nil {
		return nil, err
	}

	log.Info("Form submission stored",
		zap.String("school_id", school.ID.String()),
		zap.String("event_id", event.ID.String()),
	)

	if p.notifier != nil {
		if err := p.notifier.NotifyEventCreated(ctx, school, event); err != nil {
			log.Warn("Failed to send event confirmation", zap.Error(err))
		}
	}

	return &Result{School: school, Event: event}, nil
}
