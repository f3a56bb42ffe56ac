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

const shiftsCollection = "shifts"

// ShiftRepository persists scheduled rider shifts.
type ShiftRepository struct {
	col *mongo.Collection
}

func NewShiftRepository(db *mongo.Database) *ShiftRepository {
	return &ShiftRepository{col: db.Collection(shiftsCollection)}
}

type mongoShift struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	RiderID   string             `bson:"rider_id"`
	StartTime time.Time          `bson:"start_time"`
	EndTime   time.Time          `bson:"end_time"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (ms mongoShift) toDomain() domain.Shift {
	return domain.Shift{
		ID:        ms.ID.Hex(),
		RiderID:   ms.RiderID,
		StartTime: ms.StartTime.UTC(),
		EndTime:   ms.EndTime.UTC(),
		CreatedAt: ms.CreatedAt.UTC(),
	}
}

func (r *ShiftRepository) Create(ctx context.Context, shift *domain.Shift) (*domain.Shift, error) {
	doc := mongoShift{
		RiderID:   shift.RiderID,
		StartTime: shift.StartTime.UTC(),
		EndTime:   shift.EndTime.UTC(),
		CreatedAt: shift.CreatedAt.UTC(),
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert shift: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	created := doc.toDomain()
	return &created, nil
}

func (r *ShiftRepository) ListByRiders(ctx context.Context, riderIDs []string) ([]domain.Shift, error) {
	cur, err := r.col.Find(ctx,
		bson.M{"rider_id": bson.M{"$in": riderIDs}},
		options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var shifts []domain.Shift
	for cur.Next(ctx) {
		var doc mongoShift
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode shift: %w", err)
		}
		shifts = append(shifts, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate shifts: %w", err)
	}
	return shifts, nil
}

func (r *ShiftRepository) DeleteByRider(ctx context.Context, riderID string) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{"rider_id": riderID}); err != nil {
		return fmt.Errorf("delete shifts: %w", err)
	}
	return nil
}
