// repositories/guest_cart_repository.go
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
)

// Abandoned guest carts expire on their own.
const guestCartTTL = 30 * 24 * time.Hour

const guestCartKeyPrefix = "guest_cart:"

var ErrGuestCartUnavailable = errors.New("guest cart storage unavailable")

// GuestCartRepository keeps anonymous carts in Redis, one JSON blob per
// guest id. It is the server-side twin of the storefront's local-storage
// cart: single writer per guest, last writer wins.
type GuestCartRepository struct {
	client *redis.Client
}

func NewGuestCartRepository(client *redis.Client) *GuestCartRepository {
	return &GuestCartRepository{client: client}
}

func guestCartKey(guestID string) string {
	return guestCartKeyPrefix + guestID
}

// Items returns the guest's cart, empty if none exists.
func (r *GuestCartRepository) Items(ctx context.Context, guestID string) ([]models.GuestCartItem, error) {
	if r.client == nil {
		return nil, ErrGuestCartUnavailable
	}

	raw, err := r.client.Get(ctx, guestCartKey(guestID)).Result()
	if err == redis.Nil {
		return []models.GuestCartItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.GuestCartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Replace overwrites the guest's cart with the given items.
func (r *GuestCartRepository) Replace(ctx context.Context, guestID string, items []models.GuestCartItem) error {
	if r.client == nil {
		return ErrGuestCartUnavailable
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, guestCartKey(guestID), raw, guestCartTTL).Err()
}

// Clear removes the guest's cart key entirely.
func (r *GuestCartRepository) Clear(ctx context.Context, guestID string) error {
	if r.client == nil {
		return ErrGuestCartUnavailable
	}
	return r.client.Del(ctx, guestCartKey(guestID)).Err()
}

// AddItem appends an item, summing quantity when the product is already in
// the cart.
func (r *GuestCartRepository) AddItem(ctx context.Context, guestID string, item models.GuestCartItem) ([]models.GuestCartItem, error) {
	items, err := r.Items(ctx, guestID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			items[i].UpdatedAt = time.Now()
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	if err := r.Replace(ctx, guestID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateItem sets the quantity of an existing line.
func (r *GuestCartRepository) UpdateItem(ctx context.Context, guestID, itemID string, quantity int) ([]models.GuestCartItem, error) {
	items, err := r.Items(ctx, guestID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
			items[i].UpdatedAt = time.Now()
			found = true
			break
		}
	}
	if !found {
		return nil, ErrCartItemNotFound
	}

	if err := r.Replace(ctx, guestID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveItem deletes a line from the guest cart.
func (r *GuestCartRepository) RemoveItem(ctx context.Context, guestID, itemID string) ([]models.GuestCartItem, error) {
	items, err := r.Items(ctx, guestID)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	found := false
	for _, it := range items {
		if it.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return nil, ErrCartItemNotFound
	}

	if err := r.Replace(ctx, guestID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}
