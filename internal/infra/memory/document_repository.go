package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-delivery/internal/domain"
)

// DocumentLoader fetches quiz documents from a backing store (e.g., Postgres).
type DocumentLoader interface {
	LoadDocument(ctx context.Context, docID string) (domain.Document, error)
}

// DocumentRepository caches documents with TTL to avoid repeated DB hits.
// Documents are immutable for the lifetime of a session, so serving a
// slightly stale copy is always safe.
type DocumentRepository struct {
	loader DocumentLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedDocument
}

type cachedDocument struct {
	doc       domain.Document
	expiresAt time.Time
}

func NewDocumentRepository(loader DocumentLoader, ttl time.Duration) *DocumentRepository {
	return &DocumentRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedDocument),
	}
}

func (r *DocumentRepository) GetDocument(ctx context.Context, docID string) (domain.Document, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[docID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.doc, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(docID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[docID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.doc, nil
		}
		r.mu.RUnlock()

		doc, err := r.loader.LoadDocument(ctx, docID)
		if err != nil {
			return domain.Document{}, err
		}

		r.mu.Lock()
		r.cache[docID] = cachedDocument{
			doc:       doc,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return doc, nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	return result.(domain.Document), nil
}

// StaticDocumentLoader serves documents from a fixed in-memory map. Tests and
// demo deployments use it in place of a database-backed loader.
type StaticDocumentLoader struct {
	docs map[string]domain.Document
}

func NewStaticDocumentLoader(docs map[string]domain.Document) *StaticDocumentLoader {
	return &StaticDocumentLoader{docs: docs}
}

func (l *StaticDocumentLoader) LoadDocument(_ context.Context, docID string) (domain.Document, error) {
	if doc, ok := l.docs[docID]; ok {
		return doc, nil
	}
	return domain.Document{}, domain.ErrDocumentNotFound
}

func (r *DocumentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter so entries loaded together do not expire together
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
