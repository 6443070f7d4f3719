// Package memory is a process-local credential store for development and tests.
// It keeps the same uniqueness and delete semantics as the postgres adapter.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/rolbazli/internal/domain/repository"
	"github.com/dropDatabas3/rolbazli/internal/security/password"
	"github.com/dropDatabas3/rolbazli/internal/store"
)

func init() {
	store.RegisterAdapter(adapter{})
}

type adapter struct{}

func (adapter) Name() string { return "memory" }

func (adapter) Open(_ context.Context, cfg store.Config) (repository.Store, error) {
	return New(cfg.Hash), nil
}

type userRecord struct {
	user repository.User
	hash string
}

// Store implements repository.Store in memory.
type Store struct {
	mu sync.RWMutex

	params password.Params
	decoy  *password.Decoy
	now    func() time.Time

	users   map[string]*userRecord // by id
	byEmail map[string]string      // lower(email) -> id
	roles   map[string]*repository.Role
	byName  map[string]string              // name -> id
	members map[string]map[string]struct{} // user id -> role ids
}

// New returns an empty store hashing passwords with p.
func New(p password.Params) *Store {
	if p == (password.Params{}) {
		p = password.Default
	}
	return &Store{
		params:  p,
		decoy:   password.NewDecoy(p),
		now:     func() time.Time { return time.Now().UTC() },
		users:   make(map[string]*userRecord),
		byEmail: make(map[string]string),
		roles:   make(map[string]*repository.Role),
		byName:  make(map[string]string),
		members: make(map[string]map[string]struct{}),
	}
}

func (s *Store) Driver() string                 { return "memory" }
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
func (s *Store) Close() error                   { return nil }

func (s *Store) Users() repository.UserRepository             { return userRepo{s} }
func (s *Store) Roles() repository.RoleRepository             { return roleRepo{s} }
func (s *Store) Memberships() repository.MembershipRepository { return membershipRepo{s} }

// ─── Users ───

type userRepo struct{ s *Store }

func (r userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.s.users[id].user
	return &u, nil
}

func (r userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := rec.user
	return &u, nil
}

func (r userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := strings.ToLower(strings.TrimSpace(in.Email))
	if key == "" {
		return nil, repository.ErrInvalidInput
	}
	// hash outside the lock, argon2id is slow on purpose
	hash, err := password.Hash(r.s.params, in.Password)
	if err != nil {
		return nil, repository.ErrInvalidInput
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.byEmail[key]; taken {
		return nil, repository.ErrConflict
	}
	u := repository.User{
		ID:          uuid.NewString(),
		Email:       strings.TrimSpace(in.Email),
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		CreatedAt:   r.s.now(),
	}
	r.s.users[u.ID] = &userRecord{user: u, hash: hash}
	r.s.byEmail[key] = u.ID
	return &u, nil
}

func (r userRepo) CheckPassword(ctx context.Context, userID, plain string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	rec, ok := r.s.users[userID]
	var hash string
	if ok {
		hash = rec.hash
	}
	r.s.mu.RUnlock()
	if !ok {
		return false, repository.ErrNotFound
	}
	return password.Verify(plain, hash), nil
}

func (r userRepo) CheckDecoyPassword(_ context.Context, plain string) {
	r.s.decoy.Verify(plain)
}

func (r userRepo) List(ctx context.Context) ([]repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	out := make([]repository.User, 0, len(r.s.users))
	for _, rec := range r.s.users {
		out = append(out, rec.user)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Email) < strings.ToLower(out[j].Email) })
	return out, nil
}

func (r userRepo) RecordLoginFailure(ctx context.Context, userID string) error {
	return r.updateCounter(ctx, userID, func(n int) int { return n + 1 })
}

func (r userRepo) ResetLoginFailures(ctx context.Context, userID string) error {
	return r.updateCounter(ctx, userID, func(int) int { return 0 })
}

func (r userRepo) updateCounter(ctx context.Context, userID string, f func(int) int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec, ok := r.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.user.AccessFailedCount = f(rec.user.AccessFailedCount)
	return nil
}

// ─── Roles ───

type roleRepo struct{ s *Store }

func (r roleRepo) GetByID(ctx context.Context, id string) (*repository.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *role
	return &cp, nil
}

func (r roleRepo) GetByName(ctx context.Context, name string) (*repository.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byName[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r.s.roles[id]
	return &cp, nil
}

func (r roleRepo) Exists(ctx context.Context, name string) (bool, error) {
	_, err := r.GetByName(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case repository.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

func (r roleRepo) Create(ctx context.Context, name string) (*repository.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, repository.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, taken := r.s.byName[name]; taken {
		return nil, repository.ErrConflict
	}
	role := &repository.Role{ID: uuid.NewString(), Name: name, CreatedAt: r.s.now()}
	r.s.roles[role.ID] = role
	r.s.byName[name] = role.ID
	cp := *role
	return &cp, nil
}

func (r roleRepo) Rename(ctx context.Context, id, newName string) (*repository.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if newName == "" {
		return nil, repository.ErrInvalidInput
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if other, taken := r.s.byName[newName]; taken && other != id {
		return nil, repository.ErrConflict
	}
	delete(r.s.byName, role.Name)
	role.Name = newName
	r.s.byName[newName] = id
	cp := *role
	return &cp, nil
}

func (r roleRepo) Delete(ctx context.Context, id string, cascade bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	role, ok := r.s.roles[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !cascade && r.s.countLocked(id) > 0 {
		return repository.ErrRoleInUse
	}
	for _, held := range r.s.members {
		delete(held, id)
	}
	delete(r.s.byName, role.Name)
	delete(r.s.roles, id)
	return nil
}

func (r roleRepo) List(ctx context.Context) ([]repository.Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	out := make([]repository.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		out = append(out, *role)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r roleRepo) CountMembers(ctx context.Context, roleID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.countLocked(roleID), nil
}

func (s *Store) countLocked(roleID string) int {
	n := 0
	for _, held := range s.members {
		if _, ok := held[roleID]; ok {
			n++
		}
	}
	return n
}

// ─── Memberships ───

type membershipRepo struct{ s *Store }

func (r membershipRepo) RolesForUser(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	held := r.s.members[userID]
	out := make([]string, 0, len(held))
	for roleID := range held {
		if role, ok := r.s.roles[roleID]; ok {
			out = append(out, role.Name)
		}
	}
	r.s.mu.RUnlock()
	sort.Strings(out)
	return out, nil
}

func (r membershipRepo) AddUserToRole(ctx context.Context, userID, roleName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return repository.ErrNotFound
	}
	roleID, ok := r.s.byName[roleName]
	if !ok {
		return repository.ErrNotFound
	}
	held := r.s.members[userID]
	if held == nil {
		held = make(map[string]struct{})
		r.s.members[userID] = held
	}
	held[roleID] = struct{}{}
	return nil
}

func (r membershipRepo) RemoveUserFromRole(ctx context.Context, userID, roleName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	roleID, ok := r.s.byName[roleName]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.s.members[userID], roleID)
	return nil
}
