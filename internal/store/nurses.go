package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/hospital-staff-api/internal/models"
)

type MongoNurseStore struct {
	coll *mongo.Collection
}

func NewNurseStore(db *mongo.Database) *MongoNurseStore {
	return &MongoNurseStore{coll: db.Collection(NursesCollection)}
}

func (s *MongoNurseStore) Create(ctx context.Context, n *models.Nurse) error {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	n.CreatedAt, n.UpdatedAt = now, now

	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("insert nurse: %w", translate(err))
	}
	return nil
}

func (s *MongoNurseStore) FindByEmail(ctx context.Context, email string) (*models.Nurse, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoNurseStore) findOne(ctx context.Context, filter bson.M) (*models.Nurse, error) {
	var n models.Nurse
	if err := s.coll.FindOne(ctx, filter).Decode(&n); err != nil {
		return nil, translate(err)
	}
	return &n, nil
}
