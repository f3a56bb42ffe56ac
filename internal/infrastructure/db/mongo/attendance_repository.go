package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fleetops/rider-dispatch/internal/core/domain"
)

const attendanceCollection = "attendance"

// AttendanceRepository keeps one document per rider per day, upserted on the
// (rider_id, date) pair.
type AttendanceRepository struct {
	col *mongo.Collection
}

func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{col: db.Collection(attendanceCollection)}
}

type mongoAttendance struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	RiderID string             `bson:"rider_id"`
	Date    string             `bson:"date"`
	Status  string             `bson:"status"`
}

func (r *AttendanceRepository) Upsert(ctx context.Context, riderID, date string, status domain.AttendanceStatus) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"rider_id": riderID, "date": date},
		bson.M{"$set": bson.M{"status": string(status)}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

func (r *AttendanceRepository) FindByRiderAndDate(ctx context.Context, riderID, date string) (*domain.Attendance, error) {
	var doc mongoAttendance
	err := r.col.FindOne(ctx, bson.M{"rider_id": riderID, "date": date}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find attendance: %w", err)
	}
	return &domain.Attendance{
		ID:      doc.ID.Hex(),
		RiderID: doc.RiderID,
		Date:    doc.Date,
		Status:  domain.AttendanceStatus(doc.Status),
	}, nil
}

func (r *AttendanceRepository) CountAbsent(ctx context.Context, riderIDs []string, date string) (int64, error) {
	if len(riderIDs) == 0 {
		return 0, nil
	}
	count, err := r.col.CountDocuments(ctx, bson.M{
		"rider_id": bson.M{"$in": riderIDs},
		"date":     date,
		"status": bson.M{"$in": []string{
			string(domain.AttendanceAbsent),
			string(domain.AttendanceOffDay),
		}},
	})
	if err != nil {
		return 0, fmt.Errorf("count absent: %w", err)
	}
	return count, nil
}

func (r *AttendanceRepository) DeleteByRider(ctx context.Context, riderID string) error {
	if _, err := r.col.DeleteMany(ctx, bson.M{"rider_id": riderID}); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique (rider_id, date) index backing the upsert.
func (r *AttendanceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "rider_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
