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

	"github.com/linguameet/linguameet-api/internal/core/domain"
	"github.com/linguameet/linguameet-api/internal/core/ports"
)

const usersCollection = "users"

// UserRepository implements ports.UserRepository on MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID               primitive.ObjectID   `bson:"_id,omitempty"`
	Email            string               `bson:"email"`
	FullName         string               `bson:"full_name"`
	PasswordHash     string               `bson:"password_hash"`
	ProfilePic       string               `bson:"profile_pic"`
	IsOnboarded      bool                 `bson:"is_onboarded"`
	Bio              string               `bson:"bio"`
	NativeLanguage   string               `bson:"native_language"`
	LearningLanguage string               `bson:"learning_language"`
	Location         string               `bson:"location"`
	Friends          []primitive.ObjectID `bson:"friends"`
	CreatedAt        time.Time            `bson:"created_at"`
	UpdatedAt        time.Time            `bson:"updated_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	friends := make([]string, 0, len(mu.Friends))
	for _, f := range mu.Friends {
		friends = append(friends, f.Hex())
	}
	return &domain.User{
		ID:               mu.ID.Hex(),
		Email:            mu.Email,
		FullName:         mu.FullName,
		PasswordHash:     mu.PasswordHash,
		ProfilePic:       mu.ProfilePic,
		IsOnboarded:      mu.IsOnboarded,
		Bio:              mu.Bio,
		NativeLanguage:   mu.NativeLanguage,
		LearningLanguage: mu.LearningLanguage,
		Location:         mu.Location,
		Friends:          friends,
		CreatedAt:        mu.CreatedAt,
		UpdatedAt:        mu.UpdatedAt,
	}
}

// userID parses a hex ObjectID. Malformed ids behave as missing users.
func userID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrUserNotFound
	}
	return oid, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoUser{
		Email:        user.Email,
		FullName:     user.FullName,
		PasswordHash: user.PasswordHash,
		ProfilePic:   user.ProfilePic,
		Friends:      []primitive.ObjectID{},
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrEmailExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	created.Friends = []string{}
	return &created, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := userID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return mu.toDomain(), nil
}

// UpdateProfile applies the onboarding fields, sets is_onboarded, and
// returns the updated document.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, update ports.ProfileUpdate) (*domain.User, error) {
	oid, err := userID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"full_name":         update.FullName,
		"bio":               update.Bio,
		"native_language":   update.NativeLanguage,
		"learning_language": update.LearningLanguage,
		"location":          update.Location,
		"is_onboarded":      true,
		"updated_at":        time.Now().UTC(),
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mu mongoUser
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return mu.toDomain(), nil
}

// AddFriend adds friendID to the user's friend set via $addToSet, which
// keeps the operation idempotent and can never self-insert because the
// service layer rejects self-requests before any write.
func (r *UserRepository) AddFriend(ctx context.Context, id, friendID string) error {
	oid, err := userID(id)
	if err != nil {
		return err
	}
	fid, err := userID(friendID)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$addToSet": bson.M{"friends": fid},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("add friend: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return []*domain.User{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return decodeUsers(ctx, cur)
}

// FindRecommended returns onboarded users excluding selfID and excludeIDs,
// in natural store order.
func (r *UserRepository) FindRecommended(ctx context.Context, selfID string, excludeIDs []string) ([]*domain.User, error) {
	self, err := userID(selfID)
	if err != nil {
		return nil, err
	}
	excluded := make([]primitive.ObjectID, 0, len(excludeIDs))
	for _, id := range excludeIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		excluded = append(excluded, oid)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$and": bson.A{
		bson.M{"_id": bson.M{"$ne": self}},
		bson.M{"_id": bson.M{"$nin": excluded}},
		bson.M{"is_onboarded": true},
	}}

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find recommended: %w", err)
	}
	return decodeUsers(ctx, cur)
}

func decodeUsers(ctx context.Context, cur *mongo.Cursor) ([]*domain.User, error) {
	defer cur.Close(ctx)

	users := []*domain.User{}
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// EnsureIndexes creates the unique email index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "is_onboarded", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
