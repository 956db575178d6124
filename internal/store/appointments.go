package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/hospital-staff-api/internal/models"
)

type MongoAppointmentStore struct {
	coll *mongo.Collection
}

func NewAppointmentStore(db *mongo.Database) *MongoAppointmentStore {
	return &MongoAppointmentStore{coll: db.Collection(AppointmentsCollection)}
}

func (s *MongoAppointmentStore) ListByDoctor(ctx context.Context, doctorID primitive.ObjectID) ([]models.Appointment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "appointmentDate", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"doctorId": doctorID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return appointments, nil
}

func (s *MongoAppointmentStore) Upcoming(ctx context.Context, doctorID primitive.ObjectID, from time.Time) ([]models.AppointmentDetail, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"doctorId":        doctorID,
			"appointmentDate": bson.M{"$gte": from.UTC()},
			"status":          models.AppointmentConfirmed,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "appointmentDate", Value: 1}}}},
		lookupOne(PatientsCollection, "patientId", "patient"),
		unwindOptional("$patient"),
		lookupOne(NursesCollection, "nurseId", "nurse"),
		unwindOptional("$nurse"),
		{{Key: "$project", Value: bson.M{
			"doctorId":          1,
			"appointmentDate":   1,
			"status":            1,
			"patient._id":       1,
			"patient.firstName": 1,
			"patient.lastName":  1,
			"patient.phone":     1,
			"patient.email":     1,
			"nurse._id":         1,
			"nurse.firstName":   1,
			"nurse.lastName":    1,
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate upcoming appointments: %w", err)
	}
	defer cursor.Close(ctx)

	details := make([]models.AppointmentDetail, 0)
	if err := cursor.All(ctx, &details); err != nil {
		return nil, fmt.Errorf("decode upcoming appointments: %w", err)
	}
	return details, nil
}

func (s *MongoAppointmentStore) Participants(ctx context.Context, doctorID primitive.ObjectID) ([]models.Person, []models.Person, error) {
	patients, err := s.distinctPeople(ctx, doctorID, "patientId", PatientsCollection, true)
	if err != nil {
		return nil, nil, err
	}
	nurses, err := s.distinctPeople(ctx, doctorID, "nurseId", NursesCollection, false)
	if err != nil {
		return nil, nil, err
	}
	return patients, nurses, nil
}

func (s *MongoAppointmentStore) distinctPeople(ctx context.Context, doctorID primitive.ObjectID, field, from string, withEmail bool) ([]models.Person, error) {
	project := bson.M{"firstName": 1, "lastName": 1}
	if withEmail {
		project["email"] = 1
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"doctorId": doctorID, field: bson.M{"$ne": nil}}}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field}}},
		lookupOne(from, "_id", "person"),
		{{Key: "$unwind", Value: "$person"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$person"}}},
		{{Key: "$project", Value: project}},
		{{Key: "$sort", Value: bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", from, err)
	}
	defer cursor.Close(ctx)

	people := make([]models.Person, 0)
	if err := cursor.All(ctx, &people); err != nil {
		return nil, fmt.Errorf("decode %s: %w", from, err)
	}
	return people, nil
}

func lookupOne(from, localField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         from,
		"localField":   localField,
		"foreignField": "_id",
		"as":           as,
	}}}
}

func unwindOptional(path string) bson.D {
	return bson.D{{Key: "$unwind", Value: bson.M{"path": path, "preserveNullAndEmptyArrays": true}}}
}
