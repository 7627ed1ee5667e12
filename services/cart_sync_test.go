package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Rameztikp/Almotamad-Pharma-Store2-sub000/models"
)

type fakeCartStore struct {
	items []models.CartItem

	addErr map[string]error // keyed by product hex
	setErr map[string]error // keyed by item hex

	calls []string // operation order, "add:<product>" / "set:<item>"
}

func (f *fakeCartStore) Items(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	out := make([]models.CartItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeCartStore) SetQuantity(ctx context.Context, itemID primitive.ObjectID, quantity int) error {
	f.calls = append(f.calls, "set:"+itemID.Hex())
	if err := f.setErr[itemID.Hex()]; err != nil {
		return err
	}
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].Quantity = quantity
			return nil
		}
	}
	return errors.New("no such item")
}

func (f *fakeCartStore) Add(ctx context.Context, item models.CartItem) error {
	f.calls = append(f.calls, "add:"+item.ProductID.Hex())
	if err := f.addErr[item.ProductID.Hex()]; err != nil {
		return err
	}
	item.ID = primitive.NewObjectID()
	f.items = append(f.items, item)
	return nil
}

type failingCartStore struct{}

func (failingCartStore) Items(ctx context.Context, userID primitive.ObjectID) ([]models.CartItem, error) {
	return nil, errors.New("cart service down")
}
func (failingCartStore) SetQuantity(ctx context.Context, itemID primitive.ObjectID, quantity int) error {
	return errors.New("cart service down")
}
func (failingCartStore) Add(ctx context.Context, item models.CartItem) error {
	return errors.New("cart service down")
}

type fakeGuestStore struct {
	items   map[string][]models.GuestCartItem
	itemErr error
	cleared []string
}

func newFakeGuestStore() *fakeGuestStore {
	return &fakeGuestStore{items: make(map[string][]models.GuestCartItem)}
}

func (f *fakeGuestStore) Items(ctx context.Context, guestID string) ([]models.GuestCartItem, error) {
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	return f.items[guestID], nil
}

func (f *fakeGuestStore) Replace(ctx context.Context, guestID string, items []models.GuestCartItem) error {
	f.items[guestID] = items
	return nil
}

func (f *fakeGuestStore) Clear(ctx context.Context, guestID string) error {
	f.cleared = append(f.cleared, guestID)
	delete(f.items, guestID)
	return nil
}

func guestItem(productID string, qty int) models.GuestCartItem {
	return models.GuestCartItem{
		ID:        primitive.NewObjectID().Hex(),
		ProductID: productID,
		Quantity:  qty,
		Price:     10,
	}
}

func TestMergeSumsQuantitiesOnProductMatch(t *testing.T) {
	productID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	carts := &fakeCartStore{items: []models.CartItem{{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  2,
	}}}
	guests := newFakeGuestStore()
	guests.items["g1"] = []models.GuestCartItem{guestItem(productID.Hex(), 3)}

	svc := NewCartSyncService(carts, guests)
	summary, err := svc.MergeOnLogin(context.Background(), userID, "g1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.Merged != 1 || summary.Added != 0 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := carts.items[0].Quantity; got != 5 {
		t.Fatalf("quantity = %d, want 5", got)
	}
	if len(carts.items) != 1 {
		t.Fatalf("expected no duplicate row, got %d rows", len(carts.items))
	}
	if len(guests.cleared) != 1 {
		t.Fatal("guest cart should have been cleared")
	}
}

func TestMergeMatchesOnSnapshotID(t *testing.T) {
	// The server row carries a different direct id but its product snapshot
	// points at the same catalog product.
	userID := primitive.NewObjectID()
	snapshotID := primitive.NewObjectID().Hex()

	carts := &fakeCartStore{items: []models.CartItem{{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ProductID: primitive.NewObjectID(),
		Quantity:  1,
		Product:   &models.ProductSnapshot{ID: snapshotID},
	}}}
	guests := newFakeGuestStore()
	guests.items["g1"] = []models.GuestCartItem{guestItem(snapshotID, 4)}

	svc := NewCartSyncService(carts, guests)
	summary, err := svc.MergeOnLogin(context.Background(), userID, "g1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.Merged != 1 {
		t.Fatalf("expected snapshot id match, summary: %+v", summary)
	}
	if got := carts.items[0].Quantity; got != 5 {
		t.Fatalf("quantity = %d, want 5", got)
	}
}

func TestMergeAppendsUnknownProducts(t *testing.T) {
	userID := primitive.NewObjectID()
	newProduct := primitive.NewObjectID()

	carts := &fakeCartStore{}
	guests := newFakeGuestStore()
	guests.items["g1"] = []models.GuestCartItem{guestItem(newProduct.Hex(), 2)}

	svc := NewCartSyncService(carts, guests)
	summary, err := svc.MergeOnLogin(context.Background(), userID, "g1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.Added != 1 || summary.Merged != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(carts.items) != 1 || carts.items[0].ProductID != newProduct {
		t.Fatalf("expected appended row for %s", newProduct.Hex())
	}
}

func TestMergeContinuesPastFailingItems(t *testing.T) {
	userID := primitive.NewObjectID()
	bad := primitive.NewObjectID()
	good := primitive.NewObjectID()

	carts := &fakeCartStore{addErr: map[string]error{
		bad.Hex(): errors.New("write failed"),
	}}
	guests := newFakeGuestStore()
	guests.items["g1"] = []models.GuestCartItem{
		guestItem(bad.Hex(), 1),
		guestItem(good.Hex(), 2),
	}

	svc := NewCartSyncService(carts, guests)
	summary, err := svc.MergeOnLogin(context.Background(), userID, "g1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.Failed != 1 || summary.Added != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Failures) != 1 || summary.Failures[0] != bad.Hex() {
		t.Fatalf("failures = %v", summary.Failures)
	}
	// Something landed, so the guest cart is still cleared
	if len(guests.cleared) != 1 {
		t.Fatal("guest cart should have been cleared after partial success")
	}
}

func TestMergeKeepsGuestCartWhenNothingLands(t *testing.T) {
	userID := primitive.NewObjectID()
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()

	carts := &fakeCartStore{addErr: map[string]error{
		p1.Hex(): errors.New("write failed"),
		p2.Hex(): errors.New("write failed"),
	}}
	guests := newFakeGuestStore()
	guests.items["g1"] = []models.GuestCartItem{
		guestItem(p1.Hex(), 1),
		guestItem(p2.Hex(), 1),
	}

	svc := NewCartSyncService(carts, guests)
	summary, err := svc.MergeOnLogin(context.Background(), userID, "g1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.Failed != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(guests.cleared) != 0 {
		t.Fatal("guest cart must survive a merge where nothing landed")
	}
	if len(guests.items["g1"]) != 2 {
		t.Fatal("guest items must be untouched")
	}
}

func TestMergeAbortsWhenAccountCartUnreadable(t *testing.T) {
	userID := primitive.NewObjectID()
	guests := newFakeGuestStore()
	guests.items["g1"] = []models.GuestCartItem{guestItem(primitive.NewObjectID().Hex(), 1)}

	svc := NewCartSyncService(failingCartStore{}, guests)
	summary, err := svc.MergeOnLogin(context.Background(), userID, "g1")
	if err == nil {
		t.Fatal("expected an error when the account cart cannot be read")
	}

	if !summary.Skipped {
		t.Fatalf("summary should report skipped: %+v", summary)
	}
	if len(guests.cleared) != 0 || len(guests.items["g1"]) != 1 {
		t.Fatal("guest cart must be untouched when the merge aborts")
	}
}

func TestMergeProcessesItemsInOrder(t *testing.T) {
	userID := primitive.NewObjectID()
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()
	p3 := primitive.NewObjectID()

	carts := &fakeCartStore{}
	guests := newFakeGuestStore()
	guests.items["g1"] = []models.GuestCartItem{
		guestItem(p1.Hex(), 1),
		guestItem(p2.Hex(), 1),
		guestItem(p3.Hex(), 1),
	}

	svc := NewCartSyncService(carts, guests)
	if _, err := svc.MergeOnLogin(context.Background(), userID, "g1"); err != nil {
		t.Fatal(err)
	}

	want := []string{"add:" + p1.Hex(), "add:" + p2.Hex(), "add:" + p3.Hex()}
	if len(carts.calls) != len(want) {
		t.Fatalf("calls = %v", carts.calls)
	}
	for i := range want {
		if carts.calls[i] != want[i] {
			t.Fatalf("call %d = %s, want %s", i, carts.calls[i], want[i])
		}
	}
}

func TestMergeInvalidProductIDCountsAsFailure(t *testing.T) {
	userID := primitive.NewObjectID()

	carts := &fakeCartStore{}
	guests := newFakeGuestStore()
	guests.items["g1"] = []models.GuestCartItem{guestItem("not-an-object-id", 1)}

	svc := NewCartSyncService(carts, guests)
	summary, err := svc.MergeOnLogin(context.Background(), userID, "g1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.Failed != 1 || summary.Added != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(guests.cleared) != 0 {
		t.Fatal("guest cart should be kept when its only item failed")
	}
}

func TestMergeEmptyGuestCartIsNoOp(t *testing.T) {
	userID := primitive.NewObjectID()
	carts := &fakeCartStore{}
	guests := newFakeGuestStore()

	svc := NewCartSyncService(carts, guests)
	summary, err := svc.MergeOnLogin(context.Background(), userID, "g1")
	if err != nil {
		t.Fatal(err)
	}

	if summary.Merged != 0 || summary.Added != 0 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(carts.calls) != 0 {
		t.Fatal("no cart writes expected for an empty guest cart")
	}
}

func TestWriteBackOnLogout(t *testing.T) {
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()

	carts := &fakeCartStore{items: []models.CartItem{{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  3,
		Price:     25,
	}}}
	guests := newFakeGuestStore()

	svc := NewCartSyncService(carts, guests)
	if err := svc.WriteBackOnLogout(context.Background(), userID, "g1"); err != nil {
		t.Fatal(err)
	}

	got := guests.items["g1"]
	if len(got) != 1 {
		t.Fatalf("expected 1 guest item, got %d", len(got))
	}
	if got[0].ProductID != productID.Hex() || got[0].Quantity != 3 || got[0].Price != 25 {
		t.Fatalf("unexpected guest item: %+v", got[0])
	}
	if got[0].ID == "" {
		t.Fatal("guest item should get a fresh id")
	}
}
