package cart

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"

	pkgerrors "github.com/minhngocdo/herbamart-storefront/pkg/errors"
	"github.com/minhngocdo/herbamart-storefront/pkg/logger"
	"github.com/minhngocdo/herbamart-storefront/pkg/metrics"
)

const (
	signInMessage     = "please sign in to manage your cart"
	loadFailedMessage = "could not load your cart, please try again"
	saveFailedMessage = "could not save your cart, please try again"
	emptyLineMessage  = "this item cannot be added to the cart"
)

var errMissingStorage = pkgerrors.New(pkgerrors.CodeInternal, "cart storage required")

// Store mediates every read and write of the per-user cart. It is injected
// at the application root, never package-level state.
//
// Mutations are serialized per user by an explicit single-writer lock, so two
// back-to-back operations on the same cart cannot both read the same
// pre-mutation snapshot. The in-memory sequence is only replaced after the
// persisted mapping has been written: on a persistence failure the memory copy
// stays untouched and the caller gets a transient error notice instead of an
// error value. Mutations never fail with an error.
type Store struct {
	storage Storage
	logg    *logger.Logger
	m       *metrics.CartMetrics

	mu    sync.Mutex
	users map[string]*userCart

	// Advisory flags for the UI: busy disables duplicate submissions,
	// loading drives suspense states. Neither blocks an operation.
	busy    atomic.Int32
	loading atomic.Int32
}

type userCart struct {
	mu     sync.Mutex
	loaded bool
	items  []Item
}

func NewStore(storage Storage, logg *logger.Logger, m *metrics.CartMetrics) (*Store, error) {
	if storage == nil {
		return nil, errMissingStorage
	}
	return &Store{
		storage: storage,
		logg:    logg,
		m:       m,
		users:   map[string]*userCart{},
	}, nil
}

// Busy reports whether any mutation is in flight.
func (s *Store) Busy() bool {
	return s.busy.Load() > 0
}

// Loading reports whether a cart load is in flight.
func (s *Store) Loading() bool {
	return s.loading.Load() > 0
}

// Items returns the current in-memory sequence for the user without touching
// the persisted mapping.
func (s *Store) Items(userID string) []Item {
	if userID == "" {
		return nil
	}
	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()
	return slices.Clone(u.items)
}

// Load replaces the in-memory sequence with the persisted one for the user.
// An absent entry yields an empty cart. Anonymous callers get an empty view
// with no side effects.
func (s *Store) Load(ctx context.Context, userID string) View {
	if userID == "" {
		return View{Items: []Item{}}
	}

	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	s.loading.Add(1)
	defer s.loading.Add(-1)

	carts, err := s.storage.Load(ctx)
	if err != nil {
		s.logError(ctx, userID, "cart.load", err)
		s.m.IncMutation("load", "failure")
		return s.viewLocked(u, Notice{Level: NoticeError, Message: loadFailedMessage})
	}

	u.items = slices.Clone(carts[userID])
	if u.items == nil {
		u.items = []Item{}
	}
	u.loaded = true
	s.m.IncMutation("load", "success")
	return s.viewLocked(u)
}

// AddItem merges into an existing (id, option) line by incrementing its
// quantity by one, or appends a fresh line with quantity one. Whatever
// quantity the caller put on the incoming item is ignored.
func (s *Store) AddItem(ctx context.Context, userID string, incoming Item) View {
	if incoming.ProductID == "" {
		return s.mutate(ctx, userID, "add_item", func(items []Item) ([]Item, *Notice) {
			return items, &Notice{Level: NoticeError, Message: emptyLineMessage}
		})
	}
	return s.mutate(ctx, userID, "add_item", func(items []Item) ([]Item, *Notice) {
		for i := range items {
			if items[i].key() == incoming.key() {
				items[i].Quantity++
				return items, nil
			}
		}
		incoming.Quantity = 1
		return append(items, incoming), nil
	})
}

// RemoveItem drops the exactly matching (id, option) line.
func (s *Store) RemoveItem(ctx context.Context, userID, productID, option string) View {
	target := lineKey{productID: productID, option: option}
	return s.mutate(ctx, userID, "remove_item", func(items []Item) ([]Item, *Notice) {
		return slices.DeleteFunc(items, func(item Item) bool {
			return item.key() == target
		}), nil
	})
}

// UpdateQuantity sets the line quantity, clamped to a floor of one. Removal
// happens only through RemoveItem, never through a zero or negative quantity.
func (s *Store) UpdateQuantity(ctx context.Context, userID, productID, option string, quantity int) View {
	if quantity < 1 {
		quantity = 1
	}
	target := lineKey{productID: productID, option: option}
	return s.mutate(ctx, userID, "update_quantity", func(items []Item) ([]Item, *Notice) {
		for i := range items {
			if items[i].key() == target {
				items[i].Quantity = quantity
				break
			}
		}
		return items, nil
	})
}

// Clear replaces the sequence with an empty one. Clearing an already empty
// cart is a successful no-op.
func (s *Store) Clear(ctx context.Context, userID string) View {
	return s.mutate(ctx, userID, "clear", func([]Item) ([]Item, *Notice) {
		return []Item{}, nil
	})
}

// mutate runs the read-compute-persist-mirror cycle under the user's writer
// lock. fn receives a private copy of the current sequence and returns the
// next one, or a notice to veto the mutation.
func (s *Store) mutate(ctx context.Context, userID, op string, fn func(items []Item) ([]Item, *Notice)) View {
	if userID == "" {
		s.m.IncMutation(op, "not_signed_in")
		return View{Items: []Item{}, Notices: []Notice{{Level: NoticeInfo, Message: signInMessage}}}
	}

	u := s.user(userID)
	u.mu.Lock()
	defer u.mu.Unlock()

	s.busy.Add(1)
	defer s.busy.Add(-1)

	// First touch seeds memory from the persisted mapping so a mutation
	// issued before any explicit Load cannot clobber a persisted cart.
	carts, err := s.storage.Load(ctx)
	if err != nil {
		s.logError(ctx, userID, "cart."+op, err)
		s.m.IncMutation(op, "failure")
		return s.viewLocked(u, Notice{Level: NoticeError, Message: loadFailedMessage})
	}
	if !u.loaded {
		u.items = slices.Clone(carts[userID])
		u.loaded = true
	}

	next, veto := fn(slices.Clone(u.items))
	if veto != nil {
		s.m.IncMutation(op, "rejected")
		return s.viewLocked(u, *veto)
	}
	if next == nil {
		next = []Item{}
	}

	carts[userID] = next
	if err := s.storage.Save(ctx, carts); err != nil {
		s.logError(ctx, userID, "cart."+op, err)
		s.m.IncMutation(op, "failure")
		// All-or-nothing: memory keeps the pre-mutation sequence.
		return s.viewLocked(u, Notice{Level: NoticeError, Message: saveFailedMessage})
	}

	u.items = next
	s.m.IncMutation(op, "success")
	return s.viewLocked(u)
}

func (s *Store) user(userID string) *userCart {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		u = &userCart{}
		s.users[userID] = u
	}
	return u
}

func (s *Store) viewLocked(u *userCart, notices ...Notice) View {
	items := slices.Clone(u.items)
	if items == nil {
		items = []Item{}
	}
	return View{
		Items:   items,
		Loading: s.Loading(),
		Busy:    s.Busy(),
		Notices: notices,
	}
}

func (s *Store) logError(ctx context.Context, userID, op string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"user_id": userID, "op": op})
	s.logg.Error(ctx, "cart.persistence_error", err)
}
