package app

import (
	"context"

	"github.com/rs/zerolog"

	"quiz-delivery/internal/domain"
	"quiz-delivery/internal/engine"
	"quiz-delivery/internal/ledger"
	"quiz-delivery/internal/report"
)

// DocumentRepository loads quiz documents (from cache/backing store).
type DocumentRepository interface {
	GetDocument(ctx context.Context, docID string) (domain.Document, error)
}

// DeliveryService contains the delivery use cases: resolve a document and
// run one state-machine session per connection over it.
type DeliveryService struct {
	documents DocumentRepository
	attempts  ledger.Ledger
	reporter  *report.Reporter
	log       zerolog.Logger
}

func NewDeliveryService(documents DocumentRepository, attempts ledger.Ledger, reporter *report.Reporter, log zerolog.Logger) *DeliveryService {
	return &DeliveryService{
		documents: documents,
		attempts:  attempts,
		reporter:  reporter,
		log:       log,
	}
}

// GetDocument resolves a document by ID; connections cannot open unknown
// documents.
func (s *DeliveryService) GetDocument(ctx context.Context, docID string) (domain.Document, error) {
	return s.documents.GetDocument(ctx, docID)
}

// OpenSession builds a fresh session engine over the document. Self-generated
// events (ticks, auto-advance, expiry) flow through emit into whatever loop
// the caller serializes events on. The caller owns the engine's lifecycle and
// must call Stop when the connection ends.
func (s *DeliveryService) OpenSession(ctx context.Context, docID string, emit func(engine.Event)) (*engine.Engine, error) {
	doc, err := s.documents.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	eng := engine.New(doc, engine.Deps{
		Ledger:   s.attempts,
		Reporter: s.reporter,
		Emit:     emit,
		Log:      s.log,
	})
	return eng, nil
}
