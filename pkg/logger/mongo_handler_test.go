package logger

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeWriter struct {
	mu   sync.Mutex
	docs []LogDocument
}

func (f *fakeWriter) InsertMany(_ context.Context, documents []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range documents {
		f.docs = append(f.docs, d.(LogDocument))
	}
	return &mongo.InsertManyResult{}, nil
}

func TestMongoHandlerFlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	h := newMongoHandler(w, slog.LevelInfo)

	log := slog.New(h).With("request_id", "rid-1", "subject_id", 9)
	log.Debug("dropped by level")
	log.Info("purchase recorded", "item_id", "A")
	log.WithGroup("bill").Warn("line rejected", "item_id", "B")

	h.Close()
	h.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.docs, 2)

	assert.Equal(t, "purchase recorded", w.docs[0].Msg)
	assert.Equal(t, "rid-1", w.docs[0].RequestID)
	assert.Equal(t, "9", w.docs[0].SubjectID)
	assert.Equal(t, "A", w.docs[0].Attrs["item_id"])

	assert.Equal(t, "WARN", w.docs[1].Level)
	assert.Equal(t, "B", w.docs[1].Attrs["bill.item_id"])
}

func TestFanoutAndWithCtx(t *testing.T) {
	w := &fakeWriter{}
	h := newMongoHandler(w, slog.LevelInfo)
	Configure("test", h)
	t.Cleanup(func() { Configure("local") })

	ctx := InjectLogger(context.Background(), L.With("request_id", "rid-2"))
	WithCtx(ctx).Warn("stock low")
	assert.Same(t, L, WithCtx(context.Background()))

	h.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	require.Len(t, w.docs, 1)
	assert.Equal(t, "rid-2", w.docs[0].RequestID)
}
