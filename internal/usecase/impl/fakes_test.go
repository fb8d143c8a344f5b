package impl

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"evault/internal/domain/entity"
	domainerrors "evault/internal/domain/errors"
	"evault/internal/domain/repository"
	"evault/internal/domain/service"
)

// fakeStore is an in-memory SessionStore with real TTL semantics driven by a
// controllable clock offset, so tests can expire keys without sleeping.
type fakeStore struct {
	mu     sync.Mutex
	values map[string]fakeEntry
	skew   time.Duration
	putErr error
	getErr error
}

type fakeEntry struct {
	value    string
	fields   map[string]string
	deadline time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]fakeEntry{}}
}

func (s *fakeStore) now() time.Time { return time.Now().Add(s.skew) }

// advance moves the fake clock forward, expiring anything whose TTL lapsed.
func (s *fakeStore) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skew += d
}

func (s *fakeStore) live(entry fakeEntry, ok bool) bool {
	return ok && entry.deadline.After(s.now())
}

func (s *fakeStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = fakeEntry{value: value, deadline: s.now().Add(ttl)}

	return nil
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.values[key]
	if !s.live(entry, ok) {
		return "", service.ErrKeyExpired
	}

	return entry.value, nil
}

func (s *fakeStore) GetDelete(_ context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.values[key]
	if !s.live(entry, ok) {
		return "", service.ErrKeyExpired
	}
	delete(s.values, key)

	return entry.value, nil
}

func (s *fakeStore) Renew(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.values[key]
	if !s.live(entry, ok) {
		return service.ErrKeyExpired
	}
	entry.deadline = s.now().Add(ttl)
	s.values[key] = entry

	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return 0, nil
	}
	delete(s.values, key)

	return 1, nil
}

func (s *fakeStore) PutSession(_ context.Context, key string, session *entity.UserSession, ttl time.Duration) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = fakeEntry{fields: session.ToFields(), deadline: s.now().Add(ttl)}

	return nil
}

func (s *fakeStore) GetSession(_ context.Context, key string) (*entity.UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.values[key]
	if !s.live(entry, ok) || entry.fields == nil {
		return nil, service.ErrKeyExpired
	}

	return entity.SessionFromFields(entry.fields)
}

// stubIdentity answers the provider boundary with canned values.
type stubIdentity struct {
	token      *entity.GitHubToken
	user       *entity.GitHubUser
	email      *string
	repos      []*service.RemoteRepository
	repository *service.RemoteRepository

	exchangeErr error
	profileErr  error
	fetchErr    error

	exchangedCode string
}

func (s *stubIdentity) ExchangeCode(_ context.Context, code string) (*entity.GitHubToken, error) {
	s.exchangedCode = code
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}

	return s.token, nil
}

func (s *stubIdentity) FetchProfile(_ context.Context, _ *entity.GitHubToken) (*entity.GitHubUser, *string, error) {
	if s.profileErr != nil {
		return nil, nil, s.profileErr
	}

	return s.user, s.email, nil
}

func (s *stubIdentity) FetchUserRepositories(_ context.Context, _ *entity.GitHubToken) ([]*service.RemoteRepository, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}

	return s.repos, nil
}

func (s *stubIdentity) FetchRepository(_ context.Context, _ *entity.GitHubToken, owner, name string) (*service.RemoteRepository, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if s.repository != nil {
		return s.repository, nil
	}

	return nil, fmt.Errorf("no such repository %s/%s", owner, name)
}

// fakeUserRepo records upserts in memory.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*entity.User{}}
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user, nil
}

func (r *fakeUserRepo) Upsert(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user

	return nil
}

// fakeVaultRepo enforces id uniqueness like the real store's constraint.
type fakeVaultRepo struct {
	mu       sync.Mutex
	vaults   map[int64]*entity.Vault
	versions map[int64][]*entity.VaultVersion
	envs     map[int64][]*entity.VaultEnv
}

func newFakeVaultRepo() *fakeVaultRepo {
	return &fakeVaultRepo{
		vaults:   map[int64]*entity.Vault{},
		versions: map[int64][]*entity.VaultVersion{},
		envs:     map[int64][]*entity.VaultEnv{},
	}
}

func (r *fakeVaultRepo) FindByID(_ context.Context, id int64) (*entity.Vault, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vault, ok := r.vaults[id]
	if !ok {
		return nil, repository.ErrVaultNotFound
	}

	return vault, nil
}

func (r *fakeVaultRepo) Create(_ context.Context, vault *entity.Vault) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.vaults[vault.ID]; ok {
		return domainerrors.ErrVaultExists
	}
	r.vaults[vault.ID] = vault

	return nil
}

func (r *fakeVaultRepo) ListVersions(_ context.Context, vaultID int64) ([]*entity.VaultVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.versions[vaultID], nil
}

func (r *fakeVaultRepo) ListEnvs(_ context.Context, vaultID int64, stage string) ([]*entity.VaultEnv, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stage == "" {
		return r.envs[vaultID], nil
	}

	var filtered []*entity.VaultEnv
	for _, env := range r.envs[vaultID] {
		if env.Stage == stage {
			filtered = append(filtered, env)
		}
	}

	return filtered, nil
}

// seqTokens mints deterministic tokens so tests can assert on exact values.
type seqTokens struct {
	mu sync.Mutex
	n  int
}

func (t *seqTokens) next(prefix string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.n++

	return fmt.Sprintf("%s-%03d", prefix, t.n)
}

func (t *seqTokens) URLSafe(int) (string, error) { return t.next("tok"), nil }
func (t *seqTokens) Hex(int) (string, error)     { return t.next("hex"), nil }

// testURLBuilder emits authorize URLs shaped like the real builder's, enough
// for the broker to round-trip the state through the stored record.
type testURLBuilder struct{}

func (testURLBuilder) AuthorizeURL(state, sessionID string, deviceType entity.DeviceType) string {
	redirect := "https://evault.test/auth/github?" + url.Values{
		"session_id":  {sessionID},
		"device_type": {string(deviceType)},
	}.Encode()

	return "https://github.com/login/oauth/authorize?" + url.Values{
		"client_id":    {"test-client"},
		"redirect_uri": {redirect},
		"scope":        {"repo read:user"},
		"state":        {state},
	}.Encode()
}
