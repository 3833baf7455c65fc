package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// adapters builds a fresh store per subtest so the memory and SQLite
// implementations share one behavioral suite.
func adapters(t *testing.T) map[string]func(t *testing.T) DB {
	t.Helper()
	return map[string]func(t *testing.T) DB{
		"memory": func(t *testing.T) DB { return NewMemoryDB() },
		"sqlite": func(t *testing.T) DB {
			s, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.close() })
			return s
		},
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	for name, newDB := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)

			u, err := db.CreateUser("Alice", "alice@example.com", "hash1")
			require.NoError(t, err)
			require.NotZero(t, u.ID)
			require.False(t, u.IsAdmin)

			_, err = db.CreateUser("Other Alice", "alice@example.com", "hash2")
			require.ErrorIs(t, err, ErrDuplicateEmail)

			// the losing insert must not leave a row behind
			users, err := db.ListUsers()
			require.NoError(t, err)
			require.Len(t, users, 1)
		})
	}
}

func TestGetUser_Missing(t *testing.T) {
	for name, newDB := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)

			u, err := db.GetUserByEmail("nobody@example.com")
			require.NoError(t, err)
			require.Nil(t, u)

			u, err = db.GetUserByID(999)
			require.NoError(t, err)
			require.Nil(t, u)
		})
	}
}

func TestGetUser_RoundTrip(t *testing.T) {
	for name, newDB := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)

			created, err := db.CreateUser("Bob", "bob@example.com", "bobhash")
			require.NoError(t, err)

			byEmail, err := db.GetUserByEmail("bob@example.com")
			require.NoError(t, err)
			require.NotNil(t, byEmail)
			require.Equal(t, created.ID, byEmail.ID)
			require.Equal(t, "bobhash", byEmail.Password)

			byID, err := db.GetUserByID(created.ID)
			require.NoError(t, err)
			require.NotNil(t, byID)
			require.Equal(t, "bob@example.com", byID.Email)
		})
	}
}

func TestBootstrapAdmin_Idempotent(t *testing.T) {
	for name, newDB := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)

			require.NoError(t, db.BootstrapAdmin(adminName, adminEmail, "adminhash"))
			require.NoError(t, db.BootstrapAdmin(adminName, adminEmail, "otherhash"))

			users, err := db.ListUsers()
			require.NoError(t, err)
			require.Len(t, users, 1)
			require.True(t, users[0].IsAdmin)
			require.Equal(t, "adminhash", users[0].Password, "second bootstrap must not overwrite")
		})
	}
}

func TestFavorites_DuplicatePair(t *testing.T) {
	for name, newDB := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)
			u, err := db.CreateUser("Cara", "cara@example.com", "h")
			require.NoError(t, err)

			err = db.AddFavorite(u.ID, 603, "The Matrix", ptr("/matrix.jpg"), ptr(8.7), ptr("1999"))
			require.NoError(t, err)

			err = db.AddFavorite(u.ID, 603, "The Matrix", nil, nil, nil)
			require.ErrorIs(t, err, ErrAlreadyFavorited)

			favs, err := db.ListFavorites(u.ID)
			require.NoError(t, err)
			require.Len(t, favs, 1)
		})
	}
}

func TestFavorites_RemoveIdempotent(t *testing.T) {
	for name, newDB := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)
			u, err := db.CreateUser("Dan", "dan@example.com", "h")
			require.NoError(t, err)

			// removing something never added is not an error
			require.NoError(t, db.RemoveFavorite(u.ID, 42))

			require.NoError(t, db.AddFavorite(u.ID, 42, "Answer", nil, nil, nil))
			require.NoError(t, db.RemoveFavorite(u.ID, 42))
			require.NoError(t, db.RemoveFavorite(u.ID, 42))

			favs, err := db.ListFavorites(u.ID)
			require.NoError(t, err)
			require.Empty(t, favs)
		})
	}
}

func TestFavorites_NewestFirst(t *testing.T) {
	for name, newDB := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)
			u, err := db.CreateUser("Eve", "eve@example.com", "h")
			require.NoError(t, err)

			require.NoError(t, db.AddFavorite(u.ID, 1, "A", nil, nil, nil))
			require.NoError(t, db.AddFavorite(u.ID, 2, "B", nil, nil, nil))
			require.NoError(t, db.AddFavorite(u.ID, 3, "C", nil, nil, nil))

			favs, err := db.ListFavorites(u.ID)
			require.NoError(t, err)
			require.Len(t, favs, 3)
			require.Equal(t, "C", favs[0].MovieTitle)
			require.Equal(t, "B", favs[1].MovieTitle)
			require.Equal(t, "A", favs[2].MovieTitle)
		})
	}
}

func TestFavorites_IsFavorited(t *testing.T) {
	for name, newDB := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)
			u, err := db.CreateUser("Fay", "fay@example.com", "h")
			require.NoError(t, err)

			ok, err := db.IsFavorited(u.ID, 77)
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, db.AddFavorite(u.ID, 77, "Stalker", nil, nil, nil))

			ok, err = db.IsFavorited(u.ID, 77)
			require.NoError(t, err)
			require.True(t, ok)

			// another user's list is untouched
			other, err := db.CreateUser("Gil", "gil@example.com", "h")
			require.NoError(t, err)
			ok, err = db.IsFavorited(other.ID, 77)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestListUsers_NewestFirst(t *testing.T) {
	for name, newDB := range adapters(t) {
		t.Run(name, func(t *testing.T) {
			db := newDB(t)

			_, err := db.CreateUser("First", "first@example.com", "h")
			require.NoError(t, err)
			_, err = db.CreateUser("Second", "second@example.com", "h")
			require.NoError(t, err)

			users, err := db.ListUsers()
			require.NoError(t, err)
			require.Len(t, users, 2)
			require.Equal(t, "second@example.com", users[0].Email)
			require.Equal(t, "first@example.com", users[1].Email)
		})
	}
}
