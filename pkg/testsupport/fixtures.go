// Package testsupport provides shared fixtures for the test suites: an
// in-memory sqlite database mapped with bun and a pair of sample entities,
// one with the full capability set and one deliberately without soft delete.
package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-repository-kit/repository"
)

// User is the primary fixture entity. It implements the SoftDeletable and
// Timestamped capabilities.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk"`
	Name      string    `bun:"name"`
	Email     string    `bun:"email"`
	Deleted   bool      `bun:"is_deleted"`
	CreatedAt time.Time `bun:"created_at,nullzero"`
	UpdatedAt time.Time `bun:"updated_at,nullzero"`
}

func (u *User) IsDeleted() bool          { return u.Deleted }
func (u *User) SetDeleted(v bool)        { u.Deleted = v }
func (u *User) SetCreatedAt(t time.Time) { u.CreatedAt = t }
func (u *User) SetUpdatedAt(t time.Time) { u.UpdatedAt = t }

// UserHandlers returns the model handlers for the User fixture.
func UserHandlers() repository.ModelHandlers[*User] {
	return repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID:     func(u *User) any { return u.ID },
		IDColumn:  "id",
	}
}

// Note is a fixture entity without the soft-delete capability, used to
// exercise the capability checks. IDs are caller-minted UUIDs; the
// repository never generates identity.
type Note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID   string `bun:"id,pk"`
	Body string `bun:"body"`
}

// NewNote mints a note with a fresh UUID identity.
func NewNote(body string) *Note {
	return &Note{ID: uuid.NewString(), Body: body}
}

// NoteHandlers returns the model handlers for the Note fixture.
func NoteHandlers() repository.ModelHandlers[*Note] {
	return repository.ModelHandlers[*Note]{
		NewRecord: func() *Note { return &Note{} },
		GetID:     func(n *Note) any { return n.ID },
		IDColumn:  "id",
	}
}

// NewDB opens an in-memory sqlite database, maps it with bun and creates the
// fixture tables. The handle is closed when the test finishes.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// The pool must stay on one connection or each statement would see its
	// own empty in-memory database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []any{(*User)(nil), (*Note)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table for %T: %v", model, err)
		}
	}
	return db
}

// SeedUsers inserts n users with sequential IDs starting at 1.
func SeedUsers(t testing.TB, db *bun.DB, n int) []*User {
	t.Helper()

	users := make([]*User, n)
	for i := range users {
		users[i] = &User{
			ID:    int64(i + 1),
			Name:  fmt.Sprintf("user-%02d", i+1),
			Email: fmt.Sprintf("user-%02d@example.com", i+1),
		}
	}
	if _, err := db.NewInsert().Model(&users).Exec(context.Background()); err != nil {
		t.Fatalf("seed users: %v", err)
	}
	return users
}
