package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tempo/models"
)

func TestValidator_CustomTags(t *testing.T) {
	v := New()

	type statusPayload struct {
		Status string `json:"status" validate:"taskstatus"`
	}
	type prefsPayload struct {
		Theme      string `json:"theme" validate:"theme"`
		Timezone   string `json:"timezone" validate:"timezone"`
		DateFormat string `json:"date_format" validate:"dateformat"`
	}
	type datePayload struct {
		Date string `json:"date" validate:"summarydate"`
	}

	t.Run("Valid task statuses pass", func(t *testing.T) {
		for _, status := range []string{"BACKLOG", "TODO", "IN_PROGRESS", "DONE", "CANCELLED"} {
			assert.NoError(t, v.Validate(statusPayload{Status: status}), status)
		}
	})

	t.Run("Unknown task status fails", func(t *testing.T) {
		err := v.Validate(statusPayload{Status: "SOMEDAY"})
		require.Error(t, err)

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		require.Len(t, verrs, 1)
		assert.Equal(t, "status", verrs[0].Field)
		assert.Equal(t, "taskstatus", verrs[0].Tag)
	})

	t.Run("Preference tags accept known values", func(t *testing.T) {
		err := v.Validate(prefsPayload{
			Theme:      "dark",
			Timezone:   "Europe/Berlin",
			DateFormat: "YYYY-MM-DD",
		})
		assert.NoError(t, err)
	})

	t.Run("Bad timezone fails", func(t *testing.T) {
		err := v.Validate(prefsPayload{
			Theme:      "light",
			Timezone:   "Mars/Olympus",
			DateFormat: "DD-MM-YY",
		})
		assert.Error(t, err)
	})

	t.Run("Summary date format", func(t *testing.T) {
		assert.NoError(t, v.Validate(datePayload{Date: "2026-08-30"}))
		assert.Error(t, v.Validate(datePayload{Date: "30-08-2026"}))
		assert.Error(t, v.Validate(datePayload{Date: "2026-8-30"}))
	})

	t.Run("Preference update requests exercise the tags", func(t *testing.T) {
		theme := "dark"
		tz := "Europe/Berlin"
		format := "YYYY-MM-DD"
		assert.NoError(t, v.Validate(models.UpdatePreferencesRequest{
			Theme:      &theme,
			Timezone:   &tz,
			DateFormat: &format,
		}))

		badTheme := "sepia"
		err := v.Validate(models.UpdatePreferencesRequest{Theme: &badTheme})
		require.Error(t, err)

		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "theme", verrs[0].Field)
	})

	t.Run("Summary range requests exercise summarydate", func(t *testing.T) {
		assert.NoError(t, v.Validate(models.SummaryRangeRequest{
			From: "2026-08-01",
			To:   "2026-08-31",
		}))
		assert.Error(t, v.Validate(models.SummaryRangeRequest{
			From: "01-08-2026",
			To:   "2026-08-31",
		}))
	})

	t.Run("Error messages use JSON field names", func(t *testing.T) {
		type loginPayload struct {
			Email string `json:"email" validate:"required,email"`
		}

		err := v.Validate(loginPayload{Email: "nope"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email")
	})
}
