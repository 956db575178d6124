package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	DoctorsCollection      = "doctors"
	NursesCollection       = "nurses"
	PatientsCollection     = "patients"
	AppointmentsCollection = "appointments"
)

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the stores rely on. The unique email
// indexes are what settles concurrent registrations.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		DoctorsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "resetPasswordToken", Value: 1}}, Options: options.Index().SetSparse(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "specialization", Value: 1}}},
		},
		NursesCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		AppointmentsCollection: {
			{Keys: bson.D{{Key: "doctorId", Value: 1}, {Key: "appointmentDate", Value: 1}}},
		},
	}
	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
