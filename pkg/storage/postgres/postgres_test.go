package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	pgmodule "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vorlage-dev/vorlage/pkg/api"
	"github.com/vorlage-dev/vorlage/pkg/storage"
)

func init() {
	// Configure testcontainers to use podman.
	// Detect the podman socket from `podman machine inspect`.
	if os.Getenv("DOCKER_HOST") == "" {
		out, err := exec.Command("podman", "machine", "inspect", "--format", "{{.ConnectionInfo.PodmanSocket.Path}}").Output()
		if err == nil {
			sock := strings.TrimSpace(string(out))
			if sock != "" {
				os.Setenv("DOCKER_HOST", "unix://"+sock)
			}
		}
	}
	// Ryuk needs privileged mode with podman.
	if os.Getenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_CONTAINER_PRIVILEGED", "true")
	}
}

// setupTestDB starts a PostgreSQL container and returns a connected Store.
// Tests are skipped if a container runtime is not available.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("SKIP_INTEGRATION=true, skipping PostgreSQL integration tests")
	}

	// Verify podman is running.
	if _, err := exec.LookPath("podman"); err != nil {
		t.Skip("podman not found, skipping integration tests")
	}

	ctx := context.Background()

	container, err := pgmodule.Run(ctx,
		"postgres:16-alpine",
		pgmodule.WithDatabase("vorlage_test"),
		pgmodule.WithUsername("test"),
		pgmodule.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Skipf("skipping: could not start PostgreSQL container (is podman running?): %v", err)
	}

	t.Cleanup(func() {
		container.Terminate(context.Background())
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("getting connection string: %v", err)
	}

	store, err := New(ctx, Config{
		DSN:            connStr,
		MaxConns:       5,
		MinConns:       1,
		MigrateOnStart: true,
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// makeTestUser inserts a user with a unique email and username.
func makeTestUser(t *testing.T, store *Store) api.User {
	t.Helper()

	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	user, err := store.CreateUser(context.Background(), api.User{
		ID:       uuid.New(),
		Email:    "user_" + suffix + "@example.com",
		Username: "u" + uuid.NewString()[:12], // username column caps at 16 chars
		Password: []byte("hash"),
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestPostgres_CreateAndGetUser(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := makeTestUser(t, store)
	if user.CreatedAt.IsZero() {
		t.Error("CreatedAt not set on insert")
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.Email != user.Email {
		t.Errorf("Email = %q, want %q", byID.Email, user.Email)
	}

	byEmail, err := store.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("ID = %v, want %v", byEmail.ID, user.ID)
	}
}

func TestPostgres_UniqueConstraints(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := makeTestUser(t, store)

	_, err := store.CreateUser(ctx, api.User{
		ID: uuid.New(), Email: user.Email, Username: "x" + uuid.NewString()[:12], Password: []byte("hash"),
	})
	if !errors.Is(err, storage.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}

	_, err = store.CreateUser(ctx, api.User{
		ID: uuid.New(), Email: "other_" + user.Email, Username: user.Username, Password: []byte("hash"),
	})
	if !errors.Is(err, storage.ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestPostgres_UsernameLengthBound(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	// The column itself bounds the username, so out-of-band writes cannot
	// exceed what the validation layer allows.
	_, err := store.CreateUser(ctx, api.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("long_%d@example.com", time.Now().UnixNano()),
		Username: strings.Repeat("x", 17),
		Password: []byte("hash"),
	})
	if err == nil {
		t.Fatal("CreateUser accepted a 17-character username")
	}
}

func TestPostgres_UpdateUserPartial(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := makeTestUser(t, store)

	username := "renamed" + fmt.Sprintf("%d", time.Now().UnixNano()%100000)
	updated, err := store.UpdateUser(ctx, user.ID, storage.UserUpdate{Username: &username})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if updated.Username != username {
		t.Errorf("Username = %q, want %q", updated.Username, username)
	}
	if updated.Email != user.Email {
		t.Errorf("Email changed on partial update: %q", updated.Email)
	}

	_, err = store.UpdateUser(ctx, uuid.New(), storage.UserUpdate{Username: &username})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestPostgres_DeleteUserCascades(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := makeTestUser(t, store)

	sess, err := store.CreateSession(ctx, user.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	key, err := store.CreateAPIKey(ctx, user.ID)
	if err != nil {
		t.Fatalf("CreateAPIKey failed: %v", err)
	}
	post, err := store.CreatePost(ctx, api.Post{UserID: user.ID, Title: "first", Content: "hello"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}

	if err := store.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := store.ResolveSession(ctx, sess.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("session survived user delete: %v", err)
	}
	if _, err := store.ResolveAPIKey(ctx, key.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("api key survived user delete: %v", err)
	}
	if _, err := store.GetPost(ctx, post.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("post survived user delete: %v", err)
	}
}

func TestPostgres_RevokeThenResolve(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	user := makeTestUser(t, store)

	sess, err := store.CreateSession(ctx, user.ID)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	owner, err := store.ResolveSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("ResolveSession failed: %v", err)
	}
	if owner != user.ID {
		t.Errorf("owner = %v, want %v", owner, user.ID)
	}

	if err := store.RevokeSession(ctx, sess.ID); err != nil {
		t.Fatalf("RevokeSession failed: %v", err)
	}
	if _, err := store.ResolveSession(ctx, sess.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("revoked session still resolves: %v", err)
	}
	// Revoking again is not an error.
	if err := store.RevokeSession(ctx, sess.ID); err != nil {
		t.Errorf("second revoke should be a no-op: %v", err)
	}
}

func TestPostgres_APIKeysOwnerScoped(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	alice := makeTestUser(t, store)
	bob := makeTestUser(t, store)

	key, err := store.CreateAPIKey(ctx, alice.ID)
	if err != nil {
		t.Fatalf("CreateAPIKey failed: %v", err)
	}

	if _, err := store.GetAPIKey(ctx, key.ID, bob.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("foreign key readable: %v", err)
	}
	if err := store.DeleteAPIKey(ctx, key.ID, bob.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("foreign key deletable: %v", err)
	}

	keys, err := store.ListAPIKeys(ctx, alice.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListAPIKeys failed: %v", err)
	}
	if len(keys) != 1 || keys[0].ID != key.ID {
		t.Errorf("keys = %v, want [%v]", keys, key.ID)
	}

	if err := store.DeleteAPIKey(ctx, key.ID, alice.ID); err != nil {
		t.Fatalf("DeleteAPIKey failed: %v", err)
	}
	if err := store.DeleteAPIKey(ctx, key.ID, alice.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestPostgres_PostsCRUD(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	alice := makeTestUser(t, store)
	bob := makeTestUser(t, store)

	post, err := store.CreatePost(ctx, api.Post{UserID: alice.ID, Title: "first", Content: "hello"})
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.ID == uuid.Nil {
		t.Error("post id not assigned")
	}

	title := "stolen"
	if _, err := store.UpdatePost(ctx, post.ID, bob.ID, storage.PostUpdate{Title: &title}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("foreign post updatable: %v", err)
	}

	content := "updated body"
	updated, err := store.UpdatePost(ctx, post.ID, alice.ID, storage.PostUpdate{Content: &content})
	if err != nil {
		t.Fatalf("UpdatePost failed: %v", err)
	}
	if updated.Title != "first" || updated.Content != content {
		t.Errorf("partial update: title=%q content=%q", updated.Title, updated.Content)
	}

	mine, err := store.ListUserPosts(ctx, alice.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListUserPosts failed: %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("len(mine) = %d, want 1", len(mine))
	}

	if err := store.DeletePost(ctx, post.ID, alice.ID); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if _, err := store.GetPost(ctx, post.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPostgres_HealthCheck(t *testing.T) {
	store := setupTestDB(t)
	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}
