// repositories/wholesale_repository.go
package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/config"
	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrRequestNotFound  = errors.New("wholesale request not found")
	ErrDuplicatePending = errors.New("a pending wholesale request already exists")
	ErrAlreadyProcessed = errors.New("wholesale request already processed")
)

// WholesaleRepository persists account-upgrade requests.
type WholesaleRepository struct {
	requests *mongo.Collection
	users    *mongo.Collection
}

func NewWholesaleRepository(db *mongo.Client) *WholesaleRepository {
	return &WholesaleRepository{
		requests: config.GetCollection(db, "wholesale_requests"),
		users:    config.GetCollection(db, "users"),
	}
}

// Insert stores a new pending request. The partial unique index on
// (userId, status=pending) backs up the explicit pre-check against a racing
// second submission.
func (r *WholesaleRepository) Insert(ctx context.Context, req models.WholesaleRequest) error {
	count, err := r.requests.CountDocuments(ctx, bson.M{
		"userId": req.UserID,
		"status": models.WholesaleStatusPending,
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicatePending
	}

	_, err = r.requests.InsertOne(ctx, req)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicatePending
	}
	return err
}

// LatestByUser returns the user's most recent request, or nil if none.
func (r *WholesaleRepository) LatestByUser(ctx context.Context, userID primitive.ObjectID) (*models.WholesaleRequest, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var req models.WholesaleRequest
	err := r.requests.FindOne(ctx, bson.M{"userId": userID}, opts).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

// ByID looks up a request by its UUID.
func (r *WholesaleRepository) ByID(ctx context.Context, id string) (*models.WholesaleRequest, error) {
	var req models.WholesaleRequest
	err := r.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// PendingPage returns one page of the admin review queue together with the
// total pending count, newest first, enriched with the requester's contact
// details.
func (r *WholesaleRepository) PendingPage(ctx context.Context, status string, page, limit int64) ([]models.WholesaleQueueEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := bson.M{"status": status}

	total, err := r.requests.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := r.requests.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var requests []models.WholesaleRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, 0, err
	}

	entries := make([]models.WholesaleQueueEntry, 0, len(requests))
	for _, req := range requests {
		entry := models.WholesaleQueueEntry{Request: req}

		var user models.User
		if err := r.users.FindOne(ctx, bson.M{"_id": req.UserID}).Decode(&user); err == nil {
			entry.Email = user.Email
			entry.FullName = user.FullName
			entry.Phone = user.Phone
		}

		entries = append(entries, entry)
	}

	return entries, total, nil
}

// MarkDecision transitions a pending request to approved or rejected. The
// filter insists on status=pending, so a second decision on the same
// request reports ErrAlreadyProcessed instead of silently rewriting it.
func (r *WholesaleRepository) MarkDecision(ctx context.Context, id, status, reason string, adminID primitive.ObjectID) (*models.WholesaleRequest, error) {
	update := bson.M{"$set": bson.M{
		"status":      status,
		"reviewedBy":  adminID,
		"processedAt": time.Now(),
	}}
	if status == models.WholesaleStatusRejected {
		update["$set"].(bson.M)["rejectionReason"] = reason
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req models.WholesaleRequest
	err := r.requests.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.WholesaleStatusPending},
		update, opts).Decode(&req)
	if err == nil {
		return &req, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// Either the id is unknown or the request was already decided
	count, countErr := r.requests.CountDocuments(ctx, bson.M{"_id": id})
	if countErr != nil {
		return nil, countErr
	}
	if count > 0 {
		return nil, ErrAlreadyProcessed
	}
	return nil, ErrRequestNotFound
}

// Delete removes a request entirely.
func (r *WholesaleRepository) Delete(ctx context.Context, id string) (*models.WholesaleRequest, error) {
	var req models.WholesaleRequest
	err := r.requests.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// GrantWholesaleAccess flips the user's account to the wholesale tier.
func (r *WholesaleRepository) GrantWholesaleAccess(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{
		"accountType":     models.AccountTypeWholesale,
		"wholesaleAccess": true,
		"updatedAt":       time.Now(),
	}})
	return err
}

// ApprovedCustomers lists accounts holding wholesale access.
func (r *WholesaleRepository) ApprovedCustomers(ctx context.Context) ([]models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{"wholesaleAccess": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	for i := range users {
		users[i].Password = ""
	}
	return users, nil
}
