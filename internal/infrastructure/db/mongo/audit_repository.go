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
)

const auditCollection = "impersonation_logs"

// AuditRepository persists impersonation records. Rows are append-only.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(auditCollection)}
}

type mongoAuditRecord struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ActorID    string             `bson:"actor_id"`
	TargetID   string             `bson:"target_id"`
	TargetRole string             `bson:"target_role"`
	RecordedAt time.Time          `bson:"recorded_at"`
}

func (r *AuditRepository) Insert(ctx context.Context, record *domain.ImpersonationRecord) error {
	doc := mongoAuditRecord{
		ActorID:    record.ActorID,
		TargetID:   record.TargetID,
		TargetRole: string(record.TargetRole),
		RecordedAt: record.RecordedAt.UTC(),
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert impersonation record: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		record.ID = oid.Hex()
	}
	return nil
}

func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]domain.ImpersonationRecord, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("list impersonation records: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var records []domain.ImpersonationRecord
	for cur.Next(ctx) {
		var doc mongoAuditRecord
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode impersonation record: %w", err)
		}
		records = append(records, domain.ImpersonationRecord{
			ID:         doc.ID.Hex(),
			ActorID:    doc.ActorID,
			TargetID:   doc.TargetID,
			TargetRole: domain.Role(doc.TargetRole),
			RecordedAt: doc.RecordedAt.UTC(),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate impersonation records: %w", err)
	}
	return records, nil
}
