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
)

const friendRequestsCollection = "friend_requests"

// FriendRequestRepository implements ports.FriendRequestRepository on MongoDB.
type FriendRequestRepository struct {
	coll *mongo.Collection
}

func NewFriendRequestRepository(db *mongo.Database) *FriendRequestRepository {
	return &FriendRequestRepository{coll: db.Collection(friendRequestsCollection)}
}

type mongoFriendRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Sender    primitive.ObjectID `bson:"sender"`
	Recipient primitive.ObjectID `bson:"recipient"`
	Status    string             `bson:"status"`
	PairKey   string             `bson:"pair_key"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (mr *mongoFriendRequest) toDomain() *domain.FriendRequest {
	return &domain.FriendRequest{
		ID:        mr.ID.Hex(),
		Sender:    mr.Sender.Hex(),
		Recipient: mr.Recipient.Hex(),
		Status:    domain.RequestStatus(mr.Status),
		PairKey:   mr.PairKey,
		CreatedAt: mr.CreatedAt,
		UpdatedAt: mr.UpdatedAt,
	}
}

func requestID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrRequestNotFound
	}
	return oid, nil
}

// Create inserts a pending request. The unique partial index on
// (pair_key, status=pending) turns a lost race into ErrDuplicateRequest.
func (r *FriendRequestRepository) Create(ctx context.Context, req *domain.FriendRequest) (*domain.FriendRequest, error) {
	sender, err := userID(req.Sender)
	if err != nil {
		return nil, err
	}
	recipient, err := userID(req.Recipient)
	if err != nil {
		return nil, err
	}

	doc := mongoFriendRequest{
		Sender:    sender,
		Recipient: recipient,
		Status:    string(req.Status),
		PairKey:   req.PairKey,
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateRequest
		}
		return nil, fmt.Errorf("insert friend request: %w", err)
	}

	created := *req
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *FriendRequestRepository) FindByID(ctx context.Context, id string) (*domain.FriendRequest, error) {
	oid, err := requestID(id)
	if err != nil {
		return nil, err
	}

	var mr mongoFriendRequest
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find friend request: %w", err)
	}
	return mr.toDomain(), nil
}

// FindPendingBetween looks up a pending request between the unordered pair
// {a, b}. The pair_key normalization covers both directions in one query.
func (r *FriendRequestRepository) FindPendingBetween(ctx context.Context, a, b string) (*domain.FriendRequest, error) {
	oa, err := userID(a)
	if err != nil {
		return nil, err
	}
	ob, err := userID(b)
	if err != nil {
		return nil, err
	}

	filter := bson.M{
		"pair_key": domain.PairKeyFor(oa.Hex(), ob.Hex()),
		"status":   string(domain.StatusPending),
	}

	var mr mongoFriendRequest
	if err := r.coll.FindOne(ctx, filter).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find pending request: %w", err)
	}
	return mr.toDomain(), nil
}

func (r *FriendRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) error {
	oid, err := requestID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *FriendRequestRepository) FindByRecipientAndStatus(ctx context.Context, recipient string, status domain.RequestStatus) ([]*domain.FriendRequest, error) {
	oid, err := userID(recipient)
	if err != nil {
		return nil, err
	}
	return r.findAll(ctx, bson.M{"recipient": oid, "status": string(status)})
}

func (r *FriendRequestRepository) FindBySenderAndStatus(ctx context.Context, sender string, status domain.RequestStatus) ([]*domain.FriendRequest, error) {
	oid, err := userID(sender)
	if err != nil {
		return nil, err
	}
	return r.findAll(ctx, bson.M{"sender": oid, "status": string(status)})
}

func (r *FriendRequestRepository) findAll(ctx context.Context, filter bson.M) ([]*domain.FriendRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find friend requests: %w", err)
	}
	defer cur.Close(ctx)

	requests := []*domain.FriendRequest{}
	for cur.Next(ctx) {
		var mr mongoFriendRequest
		if err := cur.Decode(&mr); err != nil {
			return nil, fmt.Errorf("decode friend request: %w", err)
		}
		requests = append(requests, mr.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate friend requests: %w", err)
	}
	return requests, nil
}

// EnsureIndexes creates lookup indexes plus the unique partial index that
// enforces at most one pending request per unordered pair.
func (r *FriendRequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "pair_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": string(domain.StatusPending)}),
		},
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
