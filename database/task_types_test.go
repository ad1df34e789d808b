package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskTypeRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewTaskTypeRepository()

	createType := func(t *testing.T, name string) string {
		t.Helper()
		tt, err := repo.Create(db, CreateTaskType{
			UserID: "user-1",
			Name:   name,
		})
		require.NoError(t, err)
		return tt.ID
	}

	deepWork := createType(t, "Deep Work")
	meetings := createType(t, "Meetings")
	admin := createType(t, "Admin")

	t.Run("SetDefault leaves exactly one default", func(t *testing.T) {
		err := repo.SetDefault(db, "user-1", deepWork)
		require.NoError(t, err)

		err = repo.SetDefault(db, "user-1", meetings)
		require.NoError(t, err)

		list, err := repo.FindByUserID(db, "user-1")
		require.NoError(t, err)

		defaults := 0
		for _, tt := range list {
			if tt.IsDefault {
				defaults++
				assert.Equal(t, meetings, tt.ID)
			}
		}
		assert.Equal(t, 1, defaults)
	})

	t.Run("SetDefault of unknown type returns ErrNotFound", func(t *testing.T) {
		err := repo.SetDefault(db, "user-1", "no-such-type")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Reorder assigns display order by position", func(t *testing.T) {
		err := repo.Reorder(db, "user-1", []string{admin, deepWork, meetings})
		require.NoError(t, err)

		list, err := repo.FindByUserID(db, "user-1")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, admin, list[0].ID)
		assert.Equal(t, deepWork, list[1].ID)
		assert.Equal(t, meetings, list[2].ID)
	})

	t.Run("Reorder ignores ids of other users", func(t *testing.T) {
		other, err := repo.Create(db, CreateTaskType{UserID: "user-2", Name: "Other"})
		require.NoError(t, err)

		err = repo.Reorder(db, "user-1", []string{other.ID})
		require.NoError(t, err)

		reloaded, err := repo.FindByID(db, other.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, reloaded.DisplayOrder)
	})

	t.Run("Delete is hard", func(t *testing.T) {
		scrap := createType(t, "Scrap")

		err := repo.Delete(db, scrap)
		require.NoError(t, err)

		var count int
		err = db.QueryRow(`SELECT COUNT(*) FROM task_types WHERE id = ?`, scrap).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}
