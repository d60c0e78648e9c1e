package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/sakif/github-profiles/internal/apperror"
	"github.com/sakif/github-profiles/internal/model"
	"github.com/sakif/github-profiles/internal/repository"
)

// newTestDB returns a fresh in-memory database that is closed when the test ends.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testUser(id int64, login, name, userType string) model.User {
	return model.User{
		ID:         id,
		Name:       name,
		Login:      login,
		AvatarURL:  "https://avatars.githubusercontent.com/u/" + login,
		Type:       userType,
		ProfileURL: "https://github.com/" + login,
	}
}

// seedUsers replaces the table with users and fails the test on error.
func seedUsers(t *testing.T, db *DB, users ...model.User) {
	t.Helper()
	n, err := db.ReplaceAll(context.Background(), users)
	if err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if n != len(users) {
		t.Fatalf("ReplaceAll() = %d, want %d", n, len(users))
	}
}

func count(t *testing.T, db *DB) int {
	t.Helper()
	n, err := db.Count(context.Background(), "")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	return n
}

// =========================================================================
// OPEN TESTS
// =========================================================================

func TestNew_FreshDatabaseHasEmptyUsersTable(t *testing.T) {
	db := newTestDB(t)

	if n := count(t, db); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}

func TestNew_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "site.db")

	db, err := New(path)
	if err != nil {
		t.Fatalf("New(%q) error = %v", path, err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

// =========================================================================
// REPLACE TESTS
// =========================================================================

func TestReplaceAll_EmptyLeavesTableUntouched(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db,
		testUser(1, "mojombo", "Tom", "User"),
		testUser(2, "defunkt", "Chris", "User"),
	)

	n, err := db.ReplaceAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("ReplaceAll(nil) error = %v", err)
	}
	if n != 0 {
		t.Errorf("ReplaceAll(nil) = %d, want 0", n)
	}
	if got := count(t, db); got != 2 {
		t.Errorf("Count() after empty load = %d, want 2", got)
	}
}

func TestReplaceAll_ReplacesPriorRows(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db,
		testUser(1, "mojombo", "Tom", "User"),
		testUser(2, "defunkt", "Chris", "User"),
	)

	seedUsers(t, db, testUser(44, "github", "GitHub", "Organization"))

	if got := count(t, db); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
	if _, err := db.GetByID(context.Background(), 1); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID(1) error = %v, want ErrNotFound", err)
	}
	u, err := db.GetByID(context.Background(), 44)
	if err != nil {
		t.Fatalf("GetByID(44) error = %v", err)
	}
	if u.Login != "github" {
		t.Errorf("Login = %q, want %q", u.Login, "github")
	}
}

func TestReplaceAll_DuplicateIDRollsBack(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db, testUser(1, "mojombo", "Tom", "User"))

	_, err := db.ReplaceAll(context.Background(), []model.User{
		testUser(7, "a", "A", "User"),
		testUser(7, "b", "B", "User"),
	})
	if err == nil {
		t.Fatal("ReplaceAll() should fail on a duplicate user_id")
	}

	// The drop happened inside the failed transaction, so the old row is back.
	u, err := db.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID(1) after rollback error = %v", err)
	}
	if u.Login != "mojombo" {
		t.Errorf("Login = %q, want %q", u.Login, "mojombo")
	}
}

// =========================================================================
// LOOKUP TESTS
// =========================================================================

func TestGetByID(t *testing.T) {
	db := newTestDB(t)
	want := testUser(3, "pjhyett", "PJ Hyett", "User")
	seedUsers(t, db, want)

	got, err := db.GetByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if *got != want {
		t.Errorf("GetByID() = %+v, want %+v", *got, want)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), 999)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetByLogin(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db,
		testUser(1, "mojombo", "Tom", "User"),
		testUser(2, "defunkt", "Chris", "User"),
	)

	got, err := db.GetByLogin(context.Background(), "defunkt")
	if err != nil {
		t.Fatalf("GetByLogin() error = %v", err)
	}
	if got.ID != 2 {
		t.Errorf("ID = %d, want 2", got.ID)
	}

	if _, err := db.GetByLogin(context.Background(), "nobody"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByLogin(nobody) error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestList_FiltersByTypeAndOrders(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db,
		testUser(1, "zed", "Zed", "User"),
		testUser(2, "amy", "Amy", "User"),
		testUser(3, "acme", "Acme", "Organization"),
		testUser(4, "bob", "Bob", "User"),
	)

	tests := []struct {
		name    string
		opts    repository.ListOptions
		wantIDs []int64
	}{
		{
			name:    "users ordered by id",
			opts:    repository.ListOptions{UserType: "User", OrderBy: repository.SortByID, Limit: 10},
			wantIDs: []int64{1, 2, 4},
		},
		{
			name:    "users ordered by login",
			opts:    repository.ListOptions{UserType: "User", OrderBy: repository.SortByLogin, Limit: 10},
			wantIDs: []int64{2, 4, 1},
		},
		{
			name:    "organizations only",
			opts:    repository.ListOptions{UserType: "Organization", OrderBy: repository.SortByID, Limit: 10},
			wantIDs: []int64{3},
		},
		{
			name:    "all types, second page of two",
			opts:    repository.ListOptions{OrderBy: repository.SortByID, Limit: 2, Offset: 2},
			wantIDs: []int64{3, 4},
		},
		{
			name:    "unknown sort column falls back to id",
			opts:    repository.ListOptions{OrderBy: "avatar; DROP TABLE users", Limit: 10},
			wantIDs: []int64{1, 2, 3, 4},
		},
		{
			name:    "page past the end is empty",
			opts:    repository.ListOptions{UserType: "User", Limit: 10, Offset: 10},
			wantIDs: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := db.List(context.Background(), tt.opts)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(users) != len(tt.wantIDs) {
				t.Fatalf("List() returned %d users, want %d", len(users), len(tt.wantIDs))
			}
			for i, u := range users {
				if u.ID != tt.wantIDs[i] {
					t.Errorf("users[%d].ID = %d, want %d", i, u.ID, tt.wantIDs[i])
				}
			}
		})
	}
}

func TestList_RejectsNegativeOffset(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db, testUser(1, "zed", "Zed", "User"))

	users, err := db.List(context.Background(), repository.ListOptions{Limit: 10, Offset: -16})
	if err == nil {
		t.Fatalf("List() = %v, want error for negative offset", users)
	}
}

func TestCount_ByType(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db,
		testUser(1, "zed", "Zed", "User"),
		testUser(3, "acme", "Acme", "Organization"),
	)

	n, err := db.Count(context.Background(), "Organization")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count(Organization) = %d, want 1", n)
	}
}
