package realtime

import (
	"context"
	"errors"
	"sort"
	"strings"
)

var ErrKeyNotFound = errors.New("realtime key not found")

type (
	// Store is the keyed realtime document store the core mirrors exchange
	// state into. Paths are slash-separated: the first segment is the
	// collection, the second the document key, any further segments address a
	// nested field. The relational database stays authoritative; callers
	// treat every write here as best-effort.
	Store interface {
		Set(ctx context.Context, path string, value any) error
		// Update applies a multi-path write. A nil value deletes the path,
		// mirroring the update semantics of realtime databases.
		Update(ctx context.Context, updates map[string]any) error
		Delete(ctx context.Context, path string) error
		Get(ctx context.Context, path string, out any) error
		Increment(ctx context.Context, path string, delta int64) error
	}
)

// ChatKey derives the deterministic conversation key both participants
// compute independently: the two user ids sorted lexicographically, joined by
// "_", suffixed with the exchange id.
func ChatKey(userID1, userID2, exchangeID string) string {
	ids := []string{userID1, userID2}
	sort.Strings(ids)
	key := strings.Join(ids, "_")
	if exchangeID != "" {
		key += "_exchange_" + exchangeID
	}
	return key
}
