// Package memory is an in-process repository backend. It enforces the same
// uniqueness rules as the SQL schema and is used for local runs without a
// database ("memory://") and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/vaughan-dsouza/storekeeper/internal/common"
	"github.com/vaughan-dsouza/storekeeper/internal/dbx"
	"github.com/vaughan-dsouza/storekeeper/internal/models"
	"github.com/vaughan-dsouza/storekeeper/internal/repositories/items"
	"github.com/vaughan-dsouza/storekeeper/internal/repositories/stores"
	"github.com/vaughan-dsouza/storekeeper/internal/repositories/users"
)

type state struct {
	stores map[string]models.Store
	users  map[string]models.User
	emails map[string]string                 // email -> user id
	items  map[string]map[string]models.Item // store id -> sku -> item
	nextID int64
}

func newState() *state {
	return &state{
		stores: map[string]models.Store{},
		users:  map[string]models.User{},
		emails: map[string]string{},
		items:  map[string]map[string]models.Item{},
	}
}

// journal collects the undo steps of one Tx. Only writes made with the
// Tx's context are recorded, so a rollback never touches other requests' data.
type journal struct {
	undo []func(*state)
}

type journalKey struct{}

// record registers how to reverse a write. Callers hold m.mu.
func record(ctx context.Context, undo func(*state)) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.undo = append(j.undo, undo)
	}
}

// Manager implements repositories.Manager. The DBTX arguments are ignored.
type Manager struct {
	mu   sync.Mutex
	txMu sync.Mutex
	data *state
}

func NewManager() *Manager {
	return &Manager{data: newState()}
}

func (m *Manager) Users(dbx.DBTX) users.Repository   { return &userRepo{m: m} }
func (m *Manager) Stores(dbx.DBTX) stores.Repository { return &storeRepo{m: m} }
func (m *Manager) Items(dbx.DBTX) items.Repository   { return &itemRepo{m: m} }

// Tx serializes units of work and reverses the writes made through its
// context when fn fails.
func (m *Manager) Tx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j), nil); err != nil {
		m.mu.Lock()
		for i := len(j.undo) - 1; i >= 0; i-- {
			j.undo[i](m.data)
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

type storeRepo struct{ m *Manager }

func (r *storeRepo) Create(ctx context.Context, store *models.Store) (*models.Store, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.data.stores[store.ID]; ok {
		return nil, common.ErrConflict
	}
	store.CreatedAt = now()
	r.m.data.stores[store.ID] = *store
	id := store.ID
	record(ctx, func(s *state) { delete(s.stores, id) })
	return store, nil
}

func (r *storeRepo) Get(ctx context.Context, id string) (*models.Store, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	s, ok := r.m.data.stores[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &s, nil
}

type userRepo struct{ m *Manager }

func (r *userRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.data.emails[user.Email]; ok {
		return nil, common.ErrConflict
	}
	if _, ok := r.m.data.users[user.ID]; ok {
		return nil, common.ErrConflict
	}
	user.CreatedAt = now()
	r.m.data.users[user.ID] = *user
	r.m.data.emails[user.Email] = user.ID
	id, email := user.ID, user.Email
	record(ctx, func(s *state) {
		delete(s.users, id)
		delete(s.emails, email)
	})
	return user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	id, ok := r.m.data.emails[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := r.m.data.users[id]
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.data.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

type itemRepo struct{ m *Manager }

func (r *itemRepo) List(ctx context.Context, storeID string) ([]models.Item, error) {
	out := r.collect(storeID, func(models.Item) bool { return true })
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastUpdated.Equal(out[j].LastUpdated) {
			return out[i].LastUpdated.After(out[j].LastUpdated)
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

func (r *itemRepo) ListLowStock(ctx context.Context, storeID string) ([]models.Item, error) {
	out := r.collect(storeID, func(it models.Item) bool { return it.LowStock() })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

func (r *itemRepo) collect(storeID string, keep func(models.Item) bool) []models.Item {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	out := []models.Item{}
	for _, it := range r.m.data.items[storeID] {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func (r *itemRepo) Get(ctx context.Context, storeID, sku string) (*models.Item, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	it, ok := r.m.data.items[storeID][sku]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &it, nil
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	bySKU, ok := r.m.data.items[item.StoreID]
	if !ok {
		bySKU = map[string]models.Item{}
		r.m.data.items[item.StoreID] = bySKU
	}
	if _, taken := bySKU[item.SKU]; taken {
		return nil, common.ErrConflict
	}
	r.m.data.nextID++
	item.ID = r.m.data.nextID
	bySKU[item.SKU] = *item
	storeID, sku := item.StoreID, item.SKU
	record(ctx, func(s *state) { delete(s.items[storeID], sku) })
	return item, nil
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	cur, ok := r.m.data.items[item.StoreID][item.SKU]
	if !ok {
		return nil, common.ErrNotFound
	}
	item.ID = cur.ID
	r.m.data.items[item.StoreID][item.SKU] = *item
	record(ctx, func(s *state) { s.items[cur.StoreID][cur.SKU] = cur })
	return item, nil
}

func (r *itemRepo) Delete(ctx context.Context, storeID, sku string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	cur, ok := r.m.data.items[storeID][sku]
	if !ok {
		return common.ErrNotFound
	}
	delete(r.m.data.items[storeID], sku)
	record(ctx, func(s *state) {
		if s.items[storeID] == nil {
			s.items[storeID] = map[string]models.Item{}
		}
		s.items[storeID][sku] = cur
	})
	return nil
}
