package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
	"github.com/fleetops/rider-dispatch/internal/core/ports"
)

const (
	presenceCollection = "presence_events"
	countersCollection = "counters"
	presenceCounterID  = "presence_sequence"
)

// PresenceRepository implements the append-only presence ledger on MongoDB.
// Each insert draws a monotonically increasing sequence number from the
// counters collection, giving a total insertion order independent of the
// event timestamps.
type PresenceRepository struct {
	client   *mongo.Client
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewPresenceRepository(client *mongo.Client, db *mongo.Database) *PresenceRepository {
	return &PresenceRepository{
		client:   client,
		col:      db.Collection(presenceCollection),
		counters: db.Collection(countersCollection),
	}
}

type mongoPresenceEvent struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	RiderID    string             `bson:"rider_id"`
	Status     string             `bson:"status"`
	RecordedAt time.Time          `bson:"recorded_at"`
	Sequence   int64              `bson:"sequence"`
}

func (me mongoPresenceEvent) toDomain() domain.PresenceEvent {
	return domain.PresenceEvent{
		ID:         me.ID.Hex(),
		RiderID:    me.RiderID,
		Status:     domain.Status(me.Status),
		RecordedAt: me.RecordedAt.UTC(),
		Sequence:   me.Sequence,
	}
}

// Append inserts one event. Existing rows are never touched.
func (r *PresenceRepository) Append(ctx context.Context, riderID string, status domain.Status, at time.Time) (*domain.PresenceEvent, error) {
	seq, err := r.nextSequence(ctx)
	if err != nil {
		return nil, err
	}

	doc := mongoPresenceEvent{
		RiderID:    riderID,
		Status:     string(status),
		RecordedAt: at.UTC(),
		Sequence:   seq,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert presence event: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	event := doc.toDomain()
	return &event, nil
}

// nextSequence atomically increments the shared presence counter.
func (r *PresenceRepository) nextSequence(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": presenceCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next presence sequence: %w", err)
	}
	return counter.Seq, nil
}

// EventsFor streams matching events from a snapshot-isolated session, so the
// reduction downstream never sees a partially applied set of concurrent
// appends.
func (r *PresenceRepository) EventsFor(ctx context.Context, riderIDs []string, since time.Time) (ports.EventCursor, error) {
	filter := bson.M{"rider_id": bson.M{"$in": riderIDs}}
	if !since.IsZero() {
		filter["recorded_at"] = bson.M{"$gte": since.UTC()}
	}

	session, err := r.client.StartSession(options.Session().SetSnapshot(true))
	if err != nil {
		return nil, fmt.Errorf("start snapshot session: %w", err)
	}

	sctx := mongo.NewSessionContext(ctx, session)
	cur, err := r.col.Find(sctx, filter, options.Find().SetSort(bson.D{
		{Key: "rider_id", Value: 1},
		{Key: "recorded_at", Value: 1},
		{Key: "sequence", Value: 1},
	}))
	if err != nil {
		session.EndSession(ctx)
		return nil, fmt.Errorf("find presence events: %w", err)
	}

	return &eventCursor{cur: cur, session: session}, nil
}

func (r *PresenceRepository) DeleteByRider(ctx context.Context, riderID string) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{"rider_id": riderID}); err != nil {
		return fmt.Errorf("delete presence events: %w", err)
	}
	return nil
}

// EnsureIndexes creates the (rider_id, recorded_at) lookup index.
func (r *PresenceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "rider_id", Value: 1}, {Key: "recorded_at", Value: -1}},
	})
	return err
}

// eventCursor adapts a mongo cursor (plus its snapshot session) to
// ports.EventCursor.
type eventCursor struct {
	cur     *mongo.Cursor
	session mongo.Session
	current domain.PresenceEvent
	err     error
}

func (c *eventCursor) Next(ctx context.Context) bool {
	if !c.cur.Next(ctx) {
		return false
	}
	var me mongoPresenceEvent
	if err := c.cur.Decode(&me); err != nil {
		c.err = err
		return false
	}
	c.current = me.toDomain()
	return true
}

func (c *eventCursor) Event() domain.PresenceEvent {
	return c.current
}

func (c *eventCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	return c.cur.Err()
}

func (c *eventCursor) Close(ctx context.Context) error {
	err := c.cur.Close(ctx)
	c.session.EndSession(ctx)
	return err
}
