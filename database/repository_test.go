package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempo/models"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "tempo-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := New(dbPath)
	require.NoError(t, err)

	err = db.Migrate()
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.RemoveAll(tmpDir)
	}

	return db, cleanup
}

func TestUserRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository()

	t.Run("Create and find round-trip", func(t *testing.T) {
		user, err := repo.Create(db, CreateUser{
			Email: "alice@example.com",
			Name:  "Alice",
		})
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "UTC", user.Timezone)

		found, err := repo.FindByID(db, user.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, user.ID, found.ID)

		byEmail, err := repo.FindByEmail(db, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, user.ID, byEmail.ID)
	})

	t.Run("FindByID returns nil for unknown id", func(t *testing.T) {
		found, err := repo.FindByID(db, "no-such-user")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Duplicate email is rejected", func(t *testing.T) {
		_, err := repo.Create(db, CreateUser{Email: "dup@example.com"})
		require.NoError(t, err)

		_, err = repo.Create(db, CreateUser{Email: "dup@example.com"})
		assert.Error(t, err)
	})

	t.Run("Partial update touches only named fields", func(t *testing.T) {
		user, err := repo.Create(db, CreateUser{
			Email: "bob@example.com",
			Name:  "Bob",
		})
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		newName := "Robert"
		updated, err := repo.Update(db, user.ID, UpdateUser{Name: &newName})
		require.NoError(t, err)
		assert.Equal(t, "Robert", updated.Name)
		assert.Equal(t, "bob@example.com", updated.Email)
		assert.True(t, updated.UpdatedAt.After(user.UpdatedAt))
	})

	t.Run("Update of missing user returns ErrNotFound", func(t *testing.T) {
		name := "Nobody"
		_, err := repo.Update(db, "no-such-user", UpdateUser{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Soft delete hides the row but keeps it on disk", func(t *testing.T) {
		user, err := repo.Create(db, CreateUser{Email: "gone@example.com"})
		require.NoError(t, err)

		err = repo.Delete(db, user.ID)
		require.NoError(t, err)

		found, err := repo.FindByID(db, user.ID)
		require.NoError(t, err)
		assert.Nil(t, found)

		// Row must still exist with the flag set
		var deleted int
		err = db.QueryRow(`SELECT deleted FROM users WHERE id = ?`, user.ID).Scan(&deleted)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		err = repo.Delete(db, user.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Upsert mirrors backend identity", func(t *testing.T) {
		identity := models.User{
			ID:    "backend-user-1",
			Email: "remote@example.com",
			Name:  "Remote",
		}

		user, err := repo.Upsert(db, &identity)
		require.NoError(t, err)
		assert.Equal(t, "backend-user-1", user.ID)
		assert.Equal(t, "remote@example.com", user.Email)

		identity.Name = "Renamed"
		user, err = repo.Upsert(db, &identity)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", user.Name)
	})

	t.Run("Upsert resurrects a soft-deleted user", func(t *testing.T) {
		identity := models.User{
			ID:    "backend-user-2",
			Email: "returning@example.com",
		}

		_, err := repo.Upsert(db, &identity)
		require.NoError(t, err)

		err = repo.Delete(db, identity.ID)
		require.NoError(t, err)

		// The backend re-asserting the identity clears the flag
		user, err := repo.Upsert(db, &identity)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "returning@example.com", user.Email)

		found, err := repo.FindByID(db, identity.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
	})
}

func TestWorkspaceAndProjectRepositories(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	workspaces := NewWorkspaceRepository()
	projects := NewProjectRepository()
	members := NewWorkspaceMemberRepository()

	workspace, err := workspaces.Create(db, CreateWorkspace{
		OwnerID: "owner-1",
		Name:    "Acme",
	})
	require.NoError(t, err)

	t.Run("Find workspaces by owner", func(t *testing.T) {
		list, err := workspaces.FindByOwnerID(db, "owner-1")
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, workspace.ID, list[0].ID)

		count, err := workspaces.CountByOwner(db, "owner-1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Member uniqueness per workspace", func(t *testing.T) {
		_, err := members.Create(db, CreateWorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      "owner-1",
		})
		require.NoError(t, err)

		_, err = members.Create(db, CreateWorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      "owner-1",
		})
		assert.Error(t, err)
	})

	t.Run("Member defaults to member role", func(t *testing.T) {
		member, err := members.Create(db, CreateWorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      "user-2",
		})
		require.NoError(t, err)
		assert.Equal(t, "member", member.Role)
	})

	t.Run("Soft-deleted project is excluded from listings and counts", func(t *testing.T) {
		project, err := projects.Create(db, CreateProject{
			WorkspaceID: workspace.ID,
			UserID:      "owner-1",
			Name:        "Website",
		})
		require.NoError(t, err)

		err = projects.Delete(db, project.ID)
		require.NoError(t, err)

		list, err := projects.FindByWorkspaceID(db, workspace.ID)
		require.NoError(t, err)
		assert.Empty(t, list)

		count, err := projects.CountByWorkspace(db, workspace.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}

func TestDailySummaryRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewDailySummaryRepository()

	t.Run("Upsert inserts then accumulates deltas", func(t *testing.T) {
		summary, err := repo.Upsert(db, "user-1", "2026-08-30", 600, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, 600, summary.TotalSeconds)
		assert.Equal(t, 1, summary.TasksCompleted)
		assert.Equal(t, 10, summary.Points)

		summary, err = repo.Upsert(db, "user-1", "2026-08-30", 300, 0, 5)
		require.NoError(t, err)
		assert.Equal(t, 900, summary.TotalSeconds)
		assert.Equal(t, 1, summary.TasksCompleted)
		assert.Equal(t, 15, summary.Points)
	})

	t.Run("One row per user and date", func(t *testing.T) {
		_, err := repo.Create(db, CreateDailySummary{UserID: "user-2", Date: "2026-08-30"})
		require.NoError(t, err)

		_, err = repo.Create(db, CreateDailySummary{UserID: "user-2", Date: "2026-08-30"})
		assert.Error(t, err)
	})

	t.Run("Range query is ordered by date", func(t *testing.T) {
		for _, date := range []string{"2026-08-12", "2026-08-10", "2026-08-11"} {
			_, err := repo.Upsert(db, "user-3", date, 60, 0, 1)
			require.NoError(t, err)
		}

		list, err := repo.FindByUserRange(db, "user-3", "2026-08-10", "2026-08-12")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "2026-08-10", list[0].Date)
		assert.Equal(t, "2026-08-12", list[2].Date)
	})
}

func TestPointsLedgerRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewPointsLedgerRepository()

	t.Run("Total sums signed entries", func(t *testing.T) {
		_, err := repo.Create(db, CreatePointsEntry{UserID: "user-1", Points: 10, Reason: "time tracked"})
		require.NoError(t, err)
		_, err = repo.Create(db, CreatePointsEntry{UserID: "user-1", Points: -3, Reason: "correction"})
		require.NoError(t, err)

		total, err := repo.TotalByUser(db, "user-1")
		require.NoError(t, err)
		assert.Equal(t, 7, total)
	})

	t.Run("Total is zero for unknown user", func(t *testing.T) {
		total, err := repo.TotalByUser(db, "no-such-user")
		require.NoError(t, err)
		assert.Equal(t, 0, total)
	})
}

func TestScheduledEventRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewScheduledEventRepository()

	day := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	second, err := repo.Create(db, CreateScheduledEvent{
		UserID:     "user-1",
		ExternalID: "cal-evt-2",
		Title:      "Standup",
		StartsAt:   day.Add(10 * time.Hour),
		EndsAt:     day.Add(10*time.Hour + 15*time.Minute),
	})
	require.NoError(t, err)

	first, err := repo.Create(db, CreateScheduledEvent{
		UserID:     "user-1",
		ExternalID: "cal-evt-1",
		Title:      "Planning",
		StartsAt:   day.Add(9 * time.Hour),
		EndsAt:     day.Add(10 * time.Hour),
	})
	require.NoError(t, err)

	t.Run("Range query is ordered by start time", func(t *testing.T) {
		events, err := repo.FindByUserID(db, "user-1", day, day.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, first.ID, events[0].ID)
		assert.Equal(t, second.ID, events[1].ID)
	})

	t.Run("Events outside the range are excluded", func(t *testing.T) {
		events, err := repo.FindByUserID(db, "user-1", day.AddDate(0, 0, 1), day.AddDate(0, 0, 2))
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("Lookup by external calendar id", func(t *testing.T) {
		event, err := repo.FindByExternalID(db, "cal-evt-1")
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, "Planning", event.Title)
		assert.Nil(t, event.TaskID)
	})
}

func TestSubscriptionRepository(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	roles := NewRoleRepository()
	subs := NewSubscriptionRepository()

	free, err := roles.Create(db, CreateRole{Name: "free"})
	require.NoError(t, err)
	pro, err := roles.Create(db, CreateRole{Name: "pro", PriceCents: 900})
	require.NoError(t, err)

	t.Run("One active subscription per user", func(t *testing.T) {
		_, err := subs.Create(db, CreateSubscription{
			UserID:    "user-1",
			RoleID:    free.ID,
			StartedAt: time.Now().UTC(),
		})
		require.NoError(t, err)

		_, err = subs.Create(db, CreateSubscription{
			UserID:    "user-1",
			RoleID:    pro.ID,
			StartedAt: time.Now().UTC(),
		})
		assert.Error(t, err)
	})

	t.Run("ChangeRole records history", func(t *testing.T) {
		sub, err := subs.ChangeRole(db, "user-1", pro.ID, 900)
		require.NoError(t, err)
		assert.Equal(t, pro.ID, sub.RoleID)

		history, err := subs.History(db, "user-1", 10)
		require.NoError(t, err)
		require.NotEmpty(t, history)
		assert.Equal(t, pro.ID, history[0].RoleID)
		require.NotNil(t, history[0].PreviousRoleID)
		assert.Equal(t, free.ID, *history[0].PreviousRoleID)
	})
}
