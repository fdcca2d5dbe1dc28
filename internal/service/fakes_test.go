package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pequemaths/pequemaths-api/internal/auth"
	"github.com/pequemaths/pequemaths-api/internal/domain"
	"github.com/pequemaths/pequemaths-api/internal/events"
	"github.com/pequemaths/pequemaths-api/internal/repository"
)

// memoryProfiles is an in-memory ProfileRepository that counts calls.
type memoryProfiles struct {
	mu       sync.Mutex
	records  map[string]*domain.UserProfile
	getErr   error
	mergeErr error

	gets, creates, merges, roleUpdates int
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{records: map[string]*domain.UserProfile{}}
}

func (m *memoryProfiles) put(p *domain.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[p.UID] = p
}

func (m *memoryProfiles) CreateIfAbsent(_ context.Context, p *domain.UserProfile) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if _, ok := m.records[p.UID]; ok {
		return false, nil
	}
	cp := *p
	m.records[p.UID] = &cp
	return true, nil
}

func (m *memoryProfiles) GetByID(_ context.Context, uid string) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.records[uid]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memoryProfiles) UpdateRole(_ context.Context, uid string, role domain.Role, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roleUpdates++
	p, ok := m.records[uid]
	if !ok {
		return repository.ErrProfileNotFound
	}
	p.Role = role
	p.UpdatedAt = &at
	return nil
}

func (m *memoryProfiles) MergeFields(_ context.Context, uid string, name, picture *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merges++
	if m.mergeErr != nil {
		return m.mergeErr
	}
	p, ok := m.records[uid]
	if !ok {
		p = &domain.UserProfile{UID: uid}
		m.records[uid] = p
	}
	p.Name = name
	p.Picture = picture
	return nil
}

func (m *memoryProfiles) List(context.Context) ([]*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.UserProfile, 0, len(m.records))
	for _, p := range m.records {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })
	return out, nil
}

// fakeIdentity is an in-memory IdentityProvider.
type fakeIdentity struct {
	mu        sync.Mutex
	tokens    map[string]*domain.IDTokenClaims
	accounts  map[string]*domain.Account
	manager   *auth.SessionTokenManager
	revoked   map[string]bool
	updateErr error

	updates []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{
		tokens:   map[string]*domain.IDTokenClaims{},
		accounts: map[string]*domain.Account{},
		manager:  auth.NewSessionTokenManager("test-secret"),
		revoked:  map[string]bool{},
	}
}

func (f *fakeIdentity) VerifyIDToken(_ context.Context, raw string) (*domain.IDTokenClaims, error) {
	claims, ok := f.tokens[raw]
	if !ok {
		return nil, auth.ErrInvalidIDToken
	}
	return claims, nil
}

func (f *fakeIdentity) EnsureUser(_ context.Context, claims *domain.IDTokenClaims) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[claims.UID]; ok {
		return a, nil
	}
	a := &domain.Account{UID: claims.UID, Email: claims.Email, DisplayName: claims.Name, PhotoURL: claims.Picture}
	f.accounts[claims.UID] = a
	return a, nil
}

func (f *fakeIdentity) GetUser(_ context.Context, uid string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[uid]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return a, nil
}

func (f *fakeIdentity) UpdateUser(_ context.Context, uid string, update domain.AccountUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, uid)
	if f.updateErr != nil {
		return f.updateErr
	}
	a, ok := f.accounts[uid]
	if !ok {
		return repository.ErrAccountNotFound
	}
	if update.DisplayName != nil {
		a.DisplayName = *update.DisplayName
	}
	if update.PhotoURL != nil {
		a.PhotoURL = *update.PhotoURL
	}
	return nil
}

func (f *fakeIdentity) CreateSessionCookie(claims *domain.IDTokenClaims, ttl time.Duration) (*domain.Session, error) {
	return f.manager.Mint(claims, ttl)
}

func (f *fakeIdentity) VerifySessionCookie(_ context.Context, cookie string) (*auth.SessionClaims, error) {
	claims, err := f.manager.Parse(cookie)
	if err != nil {
		return nil, err
	}
	if f.revoked[claims.ID] {
		return nil, ErrSessionRevoked
	}
	return claims, nil
}

func (f *fakeIdentity) RevokeSession(_ context.Context, claims *auth.SessionClaims) error {
	f.revoked[claims.ID] = true
	return nil
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

var errStoreDown = errors.New("store unavailable")

func testLogger() *zap.Logger { return zap.NewNop() }
