package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-delivery/internal/domain"
)

// DocumentLoader fetches quiz documents from a backing store (e.g., Postgres).
type DocumentLoader interface {
	LoadDocument(ctx context.Context, docID string) (domain.Document, error)
}

// DocumentRepository caches whole documents as JSON in Redis and falls back
// to a loader on cache miss. The runtime renders question text, images and
// settings on every frame, so the full document is cached, not a digest.
// Documents are stored as: SET doc:{docID} {json} EX ttl
type DocumentRepository struct {
	client *redis.Client
	loader DocumentLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewDocumentRepository(client *redis.Client, loader DocumentLoader, ttl time.Duration) *DocumentRepository {
	return &DocumentRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *DocumentRepository) GetDocument(ctx context.Context, docID string) (domain.Document, error) {
	key := r.documentKey(docID)

	if doc, ok := r.fromCache(ctx, key); ok {
		return doc, nil
	}

	result, err, _ := r.sf.Do(docID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if doc, ok := r.fromCache(ctx, key); ok {
			return doc, nil
		}

		doc, err := r.loader.LoadDocument(ctx, docID)
		if err != nil {
			return domain.Document{}, err
		}

		if raw, err := json.Marshal(doc); err == nil {
			// Cache write failures are not load failures.
			_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		}
		return doc, nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	return result.(domain.Document), nil
}

func (r *DocumentRepository) fromCache(ctx context.Context, key string) (domain.Document, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Document{}, false
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		// A corrupt entry is treated as a miss and overwritten on reload.
		return domain.Document{}, false
	}
	return doc, true
}

func (r *DocumentRepository) documentKey(docID string) string {
	return "doc:" + docID
}

func (r *DocumentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
