package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/julianstephens/dragonlog/internal/errors"
	"github.com/julianstephens/dragonlog/internal/models"
)

// cheapHasher keeps tests fast
var cheapHasher = Hasher{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 16, SaltLength: 8}

type memUsers struct {
	users  map[string]models.UserProfile
	hashes map[string]string
	err    error
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]models.UserProfile{}, hashes: map[string]string{}}
}

func (m *memUsers) CreateUser(_ context.Context, user models.UserProfile, hash string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.users[user.ID]; ok {
		return apperrors.ErrUserExists
	}
	m.users[user.ID] = user
	m.hashes[user.ID] = hash
	return nil
}

func (m *memUsers) GetCredentials(_ context.Context, id string) (models.UserProfile, string, error) {
	if m.err != nil {
		return models.UserProfile{}, "", m.err
	}
	user, ok := m.users[id]
	if !ok {
		return models.UserProfile{}, "", apperrors.ErrNotFound
	}
	return user, m.hashes[id], nil
}

func TestHasher(t *testing.T) {
	hash, err := cheapHasher.Hash("dragon-egg")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if strings.Count(hash, "$") != 1 {
		t.Errorf("hash %q is not salt$hash", hash)
	}

	ok, err := cheapHasher.Verify(hash, "dragon-egg")
	if err != nil || !ok {
		t.Errorf("Verify(correct) = %v, %v", ok, err)
	}
	ok, err = cheapHasher.Verify(hash, "dragon-egG")
	if err != nil || ok {
		t.Errorf("Verify(wrong) = %v, %v", ok, err)
	}

	other, _ := cheapHasher.Hash("dragon-egg")
	if other == hash {
		t.Error("two hashes of the same password share a salt")
	}

	if _, err := cheapHasher.Verify("no-separator", "x"); !errors.Is(err, ErrHashFormat) {
		t.Errorf("Verify(malformed) error = %v, want ErrHashFormat", err)
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := newMemUsers()
	fixed := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	a := New(store, WithHasher(cheapHasher), WithClock(func() time.Time { return fixed }))

	user, err := a.Register(ctx, RegisterRequest{ID: " alice ", Password: "secret1", GoalDays: 21, Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID != "alice" || user.GoalDays != 21 || !user.CreatedAt.Equal(fixed) {
		t.Errorf("unexpected profile: %+v", user)
	}
	if store.hashes["alice"] == "secret1" {
		t.Error("password stored in plain text")
	}

	got, err := a.Authenticate(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if got.ID != "alice" {
		t.Errorf("Authenticate() returned %s", got.ID)
	}
}

func TestAuthenticate_Errors(t *testing.T) {
	ctx := context.Background()
	store := newMemUsers()
	a := New(store, WithHasher(cheapHasher))
	if _, err := a.Register(ctx, RegisterRequest{ID: "alice", Password: "secret1", GoalDays: 30}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		id       string
		password string
		storeErr error
		want     error
	}{
		{name: "wrong password", id: "alice", password: "nope", want: apperrors.ErrInvalidCredentials},
		{name: "unknown user", id: "bob", password: "secret1", want: apperrors.ErrInvalidCredentials},
		{name: "empty id", id: "", password: "secret1", want: apperrors.ErrInvalidCredentials},
		{name: "backend down", id: "alice", password: "secret1", storeErr: apperrors.Unavailable("get user", errors.New("connection refused")), want: apperrors.ErrBackendUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store.err = tt.storeErr
			defer func() { store.err = nil }()

			_, err := a.Authenticate(ctx, tt.id, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("Authenticate() error = %v, want %v", err, tt.want)
			}
			if tt.want == apperrors.ErrBackendUnavailable && errors.Is(err, apperrors.ErrInvalidCredentials) {
				t.Error("backend failure reported as invalid credentials")
			}
		})
	}
}

func TestAuthenticate_CorruptHash(t *testing.T) {
	store := newMemUsers()
	store.users["alice"] = models.UserProfile{ID: "alice", GoalDays: 30}
	store.hashes["alice"] = "garbage"

	_, err := New(store, WithHasher(cheapHasher)).Authenticate(context.Background(), "alice", "secret1")
	if !errors.Is(err, apperrors.ErrInvalidCredentials) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegister_Errors(t *testing.T) {
	ctx := context.Background()
	store := newMemUsers()
	a := New(store, WithHasher(cheapHasher))
	if _, err := a.Register(ctx, RegisterRequest{ID: "alice", Password: "secret1", GoalDays: 30}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{name: "taken id", req: RegisterRequest{ID: "alice", Password: "secret1", GoalDays: 30}, want: apperrors.ErrUserExists},
		{name: "short password", req: RegisterRequest{ID: "bob", Password: "123", GoalDays: 30}, want: apperrors.ErrInvalidInput},
		{name: "zero goal", req: RegisterRequest{ID: "bob", Password: "secret1", GoalDays: 0}, want: apperrors.ErrInvalidInput},
		{name: "bad id", req: RegisterRequest{ID: "bob smith", Password: "secret1", GoalDays: 30}, want: apperrors.ErrInvalidInput},
		{name: "bad email", req: RegisterRequest{ID: "bob", Password: "secret1", GoalDays: 30, Email: "not-an-email"}, want: apperrors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Register(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Register() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNilStore(t *testing.T) {
	a := New(nil)
	if _, err := a.Authenticate(context.Background(), "alice", "x"); !errors.Is(err, apperrors.ErrBackendUnavailable) {
		t.Errorf("Authenticate() error = %v, want ErrBackendUnavailable", err)
	}
	if _, err := a.Register(context.Background(), RegisterRequest{}); !errors.Is(err, apperrors.ErrBackendUnavailable) {
		t.Errorf("Register() error = %v, want ErrBackendUnavailable", err)
	}
}
