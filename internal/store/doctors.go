package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/hospital-staff-api/internal/models"
)

type MongoDoctorStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewDoctorStore(db *mongo.Database) *MongoDoctorStore {
	return &MongoDoctorStore{coll: db.Collection(DoctorsCollection), now: time.Now}
}

func (s *MongoDoctorStore) Create(ctx context.Context, d *models.Doctor) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	now := s.now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now

	if _, err := s.coll.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("insert doctor: %w", translate(err))
	}
	return nil
}

func (s *MongoDoctorStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoDoctorStore) FindByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoDoctorStore) findOne(ctx context.Context, filter bson.M) (*models.Doctor, error) {
	var d models.Doctor
	if err := s.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *MongoDoctorStore) List(ctx context.Context, f DoctorFilter, skip, limit int64) ([]models.Doctor, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"password": 0, "resetPasswordToken": 0, "resetPasswordExpires": 0})
	if skip > 0 {
		opts.SetSkip(skip)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.coll.Find(ctx, doctorFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("find doctors: %w", err)
	}
	defer cursor.Close(ctx)

	doctors := make([]models.Doctor, 0)
	if err := cursor.All(ctx, &doctors); err != nil {
		return nil, fmt.Errorf("decode doctors: %w", err)
	}
	return doctors, nil
}

func doctorFilter(f DoctorFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Specialization != "" {
		filter["specialization"] = f.Specialization
	}
	if f.City != "" {
		filter["city"] = f.City
	}

	var or bson.A
	if f.FirstName != "" {
		or = append(or, bson.M{"firstName": containsIgnoreCase(f.FirstName)})
	}
	if f.LastName != "" {
		or = append(or, bson.M{"lastName": containsIgnoreCase(f.LastName)})
	}
	if len(or) > 0 {
		filter["$or"] = or
	}
	return filter
}

func containsIgnoreCase(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func (s *MongoDoctorStore) Update(ctx context.Context, id primitive.ObjectID, u models.DoctorUpdate) (*models.Doctor, error) {
	set := doctorSet(u)
	set["updatedAt"] = s.now().UTC()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d models.Doctor
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&d)
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func doctorSet(u models.DoctorUpdate) bson.M {
	set := bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}
	put("firstName", u.FirstName)
	put("lastName", u.LastName)
	put("email", u.Email)
	put("password", u.Password)
	put("role", u.Role)
	put("status", u.Status)
	put("adresse", u.Adresse)
	put("city", u.City)
	put("phone", u.Phone)
	put("specialization", u.Specialization)
	put("avatar", u.Avatar)
	if u.Schedule != nil {
		set["schedule"] = *u.Schedule
	}
	return set
}

func (s *MongoDoctorStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoDoctorStore) SetResetToken(ctx context.Context, id primitive.ObjectID, hash string, expires time.Time) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"resetPasswordToken":   hash,
		"resetPasswordExpires": expires.UTC(),
		"updatedAt":            s.now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func resetTokenFilter(hash string, now time.Time) bson.M {
	return bson.M{
		"resetPasswordToken":   hash,
		"resetPasswordExpires": bson.M{"$gt": now.UTC()},
	}
}

func (s *MongoDoctorStore) CheckResetToken(ctx context.Context, hash string, now time.Time) error {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	if err := s.coll.FindOne(ctx, resetTokenFilter(hash, now), opts).Err(); err != nil {
		return translate(err)
	}
	return nil
}

func (s *MongoDoctorStore) ConsumeResetToken(ctx context.Context, hash string, now time.Time, passwordHash string) error {
	filter := resetTokenFilter(hash, now)
	update := bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": s.now().UTC()},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
	}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
