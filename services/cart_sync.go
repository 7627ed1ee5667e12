// services/cart_sync.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartStore is the account cart as the merge algorithm sees it. The Mongo
// repository satisfies it; tests use in-memory fakes.
type CartStore interface {
	Items(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error)
	SetQuantity(ctx context.Context, itemID primitive.ObjectID, quantity int) error
	Add(ctx context.Context, item models.CartItem) error
}

// GuestCartStore is the anonymous cart as the merge algorithm sees it.
type GuestCartStore interface {
	Items(ctx context.Context, guestID string) ([]models.GuestCartItem, error)
	Replace(ctx context.Context, guestID string, items []models.GuestCartItem) error
	Clear(ctx context.Context, guestID string) error
}

// CartSyncService reconciles a guest cart with an account cart when a
// session starts, and hands the account cart back to the guest store when
// it ends.
type CartSyncService struct {
	Carts  CartStore
	Guests GuestCartStore
	Logger *log.Logger
}

func NewCartSyncService(carts CartStore, guests GuestCartStore) *CartSyncService {
	return &CartSyncService{
		Carts:  carts,
		Guests: guests,
		Logger: log.Default(),
	}
}

// MergeOnLogin folds the guest cart into the user's account cart.
//
// Items are processed strictly one at a time so two adds for the same
// product cannot race into duplicate rows. A matching product (direct id or
// the denormalized snapshot id) has its quantities summed; anything else is
// appended. Per-item failures are logged and skipped. The guest cart key is
// cleared only when at least one item landed, so a merge where everything
// failed loses nothing.
//
// A failure to read either cart aborts the whole merge with the guest cart
// untouched; the caller reports it as a non-fatal warning, never as a login
// failure.
func (s *CartSyncService) MergeOnLogin(ctx context.Context, userID primitive.ObjectID, guestID string) (models.CartMergeSummary, error) {
	summary := models.CartMergeSummary{}

	guestItems, err := s.Guests.Items(ctx, guestID)
	if err != nil {
		summary.Skipped = true
		return summary, fmt.Errorf("failed to read guest cart: %w", err)
	}
	if len(guestItems) == 0 {
		// Nothing to merge; drop the empty key
		if err := s.Guests.Clear(ctx, guestID); err != nil {
			s.Logger.Printf("Failed to clear empty guest cart %s: %v", guestID, err)
		}
		return summary, nil
	}

	serverItems, err := s.Carts.Items(ctx, userID)
	if err != nil {
		summary.Skipped = true
		return summary, fmt.Errorf("failed to read account cart: %w", err)
	}

	for _, guest := range guestItems {
		if err := s.mergeItem(ctx, userID, serverItems, guest); err != nil {
			s.Logger.Printf("Cart merge: item %s (product %s) failed: %v", guest.ID, guest.ProductID, err)
			summary.Failed++
			summary.Failures = append(summary.Failures, guest.ProductID)
			continue
		}
		if findServerItem(serverItems, guest.ProductID) != nil {
			summary.Merged++
		} else {
			summary.Added++
		}
	}

	// Never silently delete a cart nothing was salvaged from
	if summary.Merged+summary.Added > 0 {
		if err := s.Guests.Clear(ctx, guestID); err != nil {
			s.Logger.Printf("Failed to clear merged guest cart %s: %v", guestID, err)
		}
	}

	return summary, nil
}

func (s *CartSyncService) mergeItem(ctx context.Context, userID primitive.ObjectID, serverItems []models.CartItem, guest models.GuestCartItem) error {
	if match := findServerItem(serverItems, guest.ProductID); match != nil {
		return s.Carts.SetQuantity(ctx, match.ID, match.Quantity+guest.Quantity)
	}

	productID, err := primitive.ObjectIDFromHex(guest.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product id %q: %w", guest.ProductID, err)
	}

	return s.Carts.Add(ctx, models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  guest.Quantity,
		Price:     guest.Price,
		Product:   guest.Product,
	})
}

// findServerItem matches a guest product against the account cart, either
// by the product id itself or by the id inside the denormalized snapshot.
func findServerItem(items []models.CartItem, productID string) *models.CartItem {
	for i := range items {
		if items[i].ProductID.Hex() == productID {
			return &items[i]
		}
		if items[i].Product != nil && items[i].Product.ID == productID {
			return &items[i]
		}
	}
	return nil
}

// WriteBackOnLogout copies the account cart into the guest store so the
// shopper keeps their basket after the session ends.
func (s *CartSyncService) WriteBackOnLogout(ctx context.Context, userID primitive.ObjectID, guestID string) error {
	items, err := s.Carts.Items(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read account cart: %w", err)
	}

	guestItems := make([]models.GuestCartItem, 0, len(items))
	now := time.Now()
	for _, it := range items {
		guestItems = append(guestItems, models.GuestCartItem{
			ID:        uuid.NewString(),
			ProductID: it.ProductID.Hex(),
			Quantity:  it.Quantity,
			Price:     it.Price,
			Product:   it.Product,
			CreatedAt: it.CreatedAt,
			UpdatedAt: now,
		})
	}

	return s.Guests.Replace(ctx, guestID, guestItems)
}
