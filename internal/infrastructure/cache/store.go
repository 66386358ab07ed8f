package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"time"
)

// ViewStore holds serialized views. Implementations must be safe for
// concurrent use.
type ViewStore interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LocalDropper is implemented by stores with a process-local tier that can be
// cleared without touching shared state.
type LocalDropper interface {
	DropLocal(key string)
}

var errShortEnvelope = errors.New("cache: stored view is too short")

// Stored views carry the generation they were fetched under so a value
// written by an outdated fetch is never served.
func encodeEnvelope(gen uint64, data []byte) []byte {
	buf := make([]byte, 8+len(data))
	binary.BigEndian.PutUint64(buf, gen)
	copy(buf[8:], data)
	return buf
}

func decodeEnvelope(raw []byte) (uint64, []byte, error) {
	if len(raw) < 8 {
		return 0, nil, errShortEnvelope
	}
	return binary.BigEndian.Uint64(raw), raw[8:], nil
}
