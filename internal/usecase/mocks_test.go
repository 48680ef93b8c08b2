// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-store-consultant/internal/domain"
	"telegram-store-consultant/internal/domain/model"
	"telegram-store-consultant/internal/domain/ports/adapter"
	"telegram-store-consultant/internal/domain/ports/repository"
)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// ---- catalog ----

type memCatalogRepo struct {
	products []*model.Product
}

func newMemCatalogRepo(products ...*model.Product) *memCatalogRepo {
	return &memCatalogRepo{products: products}
}

func (m *memCatalogRepo) ListProducts(ctx context.Context, qx any) ([]*model.Product, error) {
	out := make([]*model.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *memCatalogRepo) FindByName(ctx context.Context, qx any, name string) (*model.Product, error) {
	for _, p := range m.products {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memCatalogRepo) FindByID(ctx context.Context, qx any, id int64) (*model.Product, error) {
	for _, p := range m.products {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- profiles ----

type memProfileRepo struct {
	mu      sync.Mutex
	store   map[int64]*model.CustomerProfile
	saveErr error
	saves   int
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{store: make(map[int64]*model.CustomerProfile)}
}

func (m *memProfileRepo) Find(ctx context.Context, qx any, userID int64) (*model.CustomerProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProfileRepo) Save(ctx context.Context, qx any, p *model.CustomerProfile) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.UserID] = &cp
	m.saves++
	return nil
}

// ---- orders ----

type memOrderRepo struct {
	mu      sync.Mutex
	groups  []*model.OrderGroup
	saveErr error
}

func newMemOrderRepo() *memOrderRepo { return &memOrderRepo{} }

func (m *memOrderRepo) SaveGroup(ctx context.Context, qx any, g *model.OrderGroup) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	m.groups = append(m.groups, &cp)
	return nil
}

func (m *memOrderRepo) FindGroup(ctx context.Context, qx any, groupID string) (*model.OrderGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.groups {
		if g.ID == groupID {
			cp := *g
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memOrderRepo) ListByUser(ctx context.Context, qx any, userID int64) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Order
	for _, g := range m.groups {
		for i := range g.Orders {
			if g.Orders[i].UserID == userID {
				cp := g.Orders[i]
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

// ---- carts ----

type memCartStore struct {
	mu    sync.Mutex
	store map[int64]*model.Cart
}

func newMemCartStore() *memCartStore {
	return &memCartStore{store: make(map[int64]*model.Cart)}
}

func (m *memCartStore) Get(ctx context.Context, userID int64) (*model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.store[userID]
	if !ok {
		return model.NewCart(userID), nil
	}
	cp := *c
	cp.Items = append([]model.CartItem(nil), c.Items...)
	return &cp, nil
}

func (m *memCartStore) Save(ctx context.Context, cart *model.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *cart
	cp.Items = append([]model.CartItem(nil), cart.Items...)
	m.store[cart.UserID] = &cp
	return nil
}

func (m *memCartStore) Clear(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, userID)
	return nil
}

func (m *memCartStore) ListIdle(ctx context.Context, idleFor time.Duration, limit int) ([]*model.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-idleFor)
	var out []*model.Cart
	for _, c := range m.store {
		if c.IsEmpty() || !c.RemindedAt.IsZero() || c.UpdatedAt.After(cutoff) {
			continue
		}
		cp := *c
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ---- sessions ----

type memSessionStore struct {
	mu    sync.Mutex
	store map[int64]*model.ConsultantSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{store: make(map[int64]*model.ConsultantSession)}
}

func (m *memSessionStore) Get(ctx context.Context, userID int64) (*model.ConsultantSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *memSessionStore) Save(ctx context.Context, s *model.ConsultantSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[s.UserID] = s
	return nil
}

func (m *memSessionStore) Delete(ctx context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, userID)
	return nil
}

// ---- tx ----

type fakeTxManager struct {
	beginErr error
}

func (f *fakeTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}
	return fn(ctx, nil)
}

// ---- locker ----

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLocker() *fakeLocker { return &fakeLocker{held: make(map[string]bool)} }

func (l *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return "", domain.ErrTurnInProgress
	}
	l.held[key] = true
	return "tok", nil
}

func (l *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

// ---- AI ----

// scriptedAI pops pre-seeded replies per call kind and records the last
// prompt of each kind for assertions.
type scriptedAI struct {
	mu sync.Mutex

	chatReplies []string
	jsonReplies []string
	toolResults []adapter.ChatResult

	chatErr  error
	jsonErr  error
	toolsErr error

	lastChatMessages []adapter.Message
	lastJSONMessages []adapter.Message
	lastToolMessages []adapter.Message
	lastToolDefs     []adapter.ToolDef
}

func (f *scriptedAI) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastChatMessages = messages
	if f.chatErr != nil {
		return "", f.chatErr
	}
	if len(f.chatReplies) == 0 {
		return "ок", nil
	}
	r := f.chatReplies[0]
	f.chatReplies = f.chatReplies[1:]
	return r, nil
}

func (f *scriptedAI) ChatWithTools(ctx context.Context, model string, messages []adapter.Message, tools []adapter.ToolDef) (adapter.ChatResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastToolMessages = messages
	f.lastToolDefs = tools
	if f.toolsErr != nil {
		return adapter.ChatResult{}, f.toolsErr
	}
	if len(f.toolResults) == 0 {
		return adapter.ChatResult{Content: "ок"}, nil
	}
	r := f.toolResults[0]
	f.toolResults = f.toolResults[1:]
	return r, nil
}

func (f *scriptedAI) ChatJSON(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastJSONMessages = messages
	if f.jsonErr != nil {
		return "", f.jsonErr
	}
	if len(f.jsonReplies) == 0 {
		return `{"exact":[],"alternatives":[]}`, nil
	}
	r := f.jsonReplies[0]
	f.jsonReplies = f.jsonReplies[1:]
	return r, nil
}

func (f *scriptedAI) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	total := 0
	for _, m := range messages {
		total += len(m.Content)/4 + 4
	}
	return total, nil
}

// ---- sample catalog ----

func sampleJacket() *model.Product {
	return &model.Product{
		ID: 1, Name: "Куртка осенняя", Price: 100,
		Description: "Тёплая куртка на осень",
		Category:    "Одежда", Subcategory: "Куртки",
		Colors:     []model.Color{{ID: 1, Name: "Чёрный"}, {ID: 2, Name: "Синий"}},
		Sizes:      []model.Size{{ID: 1, Value: "42"}, {ID: 2, Value: "44"}},
		Photos:     []string{"photo-jacket-1"},
		Attributes: map[string]string{"Материал": "полиэстер"},
	}
}

func sampleSweater() *model.Product {
	return &model.Product{
		ID: 2, Name: "Свитер шерстяной", Price: 80,
		Category: "Одежда", Subcategory: "Свитеры",
		Sizes: []model.Size{{ID: 3, Value: "42"}, {ID: 4, Value: "46"}},
	}
}

func sampleScarf() *model.Product {
	return &model.Product{
		ID: 3, Name: "Шарф", Price: 20,
		Category: "Аксессуары", Subcategory: "Шарфы",
	}
}
