package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestAppointmentStoreUpcoming(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("joins patient and nurse", func(mt *mtest.T) {
		doctorID := primitive.NewObjectID()
		when := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Millisecond)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "doctorId", Value: doctorID},
			{Key: "appointmentDate", Value: when},
			{Key: "status", Value: "confirmed"},
			{Key: "patient", Value: bson.D{{Key: "firstName", Value: "Pat"}, {Key: "phone", Value: "555"}}},
			{Key: "nurse", Value: bson.D{{Key: "firstName", Value: "Nina"}}},
		}))

		s := &MongoAppointmentStore{coll: mt.Coll}
		got, err := s.Upcoming(context.Background(), doctorID, time.Now())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Pat", got[0].Patient.FirstName)
		assert.Equal(t, "555", got[0].Patient.Phone)
		assert.Equal(t, "Nina", got[0].Nurse.FirstName)
		assert.True(t, when.Equal(got[0].AppointmentDate))
	})
}

func TestAppointmentStoreParticipants(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("patients then nurses", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "firstName", Value: "Pat"}, {Key: "email", Value: "p@x.com"}},
			),
			mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "firstName", Value: "Nina"}},
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "firstName", Value: "Noa"}},
			),
		)

		s := &MongoAppointmentStore{coll: mt.Coll}
		patients, nurses, err := s.Participants(context.Background(), primitive.NewObjectID())
		require.NoError(t, err)
		assert.Len(t, patients, 1)
		assert.Equal(t, "p@x.com", patients[0].Email)
		assert.Len(t, nurses, 2)
	})
}

func TestAppointmentStoreListByDoctor(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("lists", func(mt *mtest.T) {
		doctorID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "doctorId", Value: doctorID}, {Key: "status", Value: "pending"}},
		))

		s := &MongoAppointmentStore{coll: mt.Coll}
		got, err := s.ListByDoctor(context.Background(), doctorID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, doctorID, got[0].DoctorID)
	})
}
