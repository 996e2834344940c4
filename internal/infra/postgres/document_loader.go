package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-delivery/internal/domain"
)

// DocumentLoader loads quiz document JSONB from Postgres.
type DocumentLoader struct {
	pool *pgxpool.Pool
}

func NewDocumentLoader(pool *pgxpool.Pool) *DocumentLoader {
	return &DocumentLoader{pool: pool}
}

func (l *DocumentLoader) LoadDocument(ctx context.Context, docID string) (domain.Document, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM quiz_documents WHERE id=$1`, docID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("load document: %w", err)
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domain.Document{}, fmt.Errorf("unmarshal document: %w", err)
	}
	if doc.ID == "" {
		doc.ID = docID
	}
	return doc, nil
}
