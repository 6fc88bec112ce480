package services

import (
	"strings"
	"testing"

	"github.com/hopehands/volunteer-backend/internal/hubspot"
	"github.com/hopehands/volunteer-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRows(t *testing.T) {
	t.Run("spreadsheet-style headers are normalized", func(t *testing.T) {
		csv := "First Name,Last Name,Email,Phone Number,Preferred Volunteer Role,Availability,How did you hear about us?\n" +
			"Jane,Doe,jane@example.com,555-1234,Events,Weekends,friend\n"

		rows, summary := parseRows(strings.NewReader(csv))

		require.Len(t, rows, 1)
		assert.Equal(t, 1, summary.Parsed)
		assert.Equal(t, importRow{
			FirstName:      "Jane",
			LastName:       "Doe",
			Email:          "jane@example.com",
			PhoneNumber:    "555-1234",
			PreferredRole:  "Events",
			Availability:   "Weekends",
			ReferralSource: "friend",
		}, rows[0])
	})

	t.Run("rows without an email are skipped", func(t *testing.T) {
		csv := "first_name,email\nJane,jane@example.com\nNoEmail,\nBob,bob@example.com\n"

		rows, summary := parseRows(strings.NewReader(csv))

		require.Len(t, rows, 2)
		assert.Equal(t, 3, summary.Parsed)
		assert.Equal(t, 1, summary.Skipped)
		require.Len(t, summary.SkipReasons, 1)
		assert.Contains(t, summary.SkipReasons[0], "missing email")
	})

	t.Run("a single name column is split", func(t *testing.T) {
		csv := "name,email\nJane Anne Doe,jane@example.com\nCher,cher@example.com\n"

		rows, _ := parseRows(strings.NewReader(csv))

		require.Len(t, rows, 2)
		assert.Equal(t, "Jane", rows[0].FirstName)
		assert.Equal(t, "Anne Doe", rows[0].LastName)
		assert.Equal(t, "Cher", rows[1].FirstName)
		assert.Empty(t, rows[1].LastName)
	})

	t.Run("missing columns default to empty strings", func(t *testing.T) {
		csv := "email\njane@example.com\n"

		rows, _ := parseRows(strings.NewReader(csv))

		require.Len(t, rows, 1)
		assert.Empty(t, rows[0].FirstName)
		assert.Empty(t, rows[0].PhoneNumber)
	})

	t.Run("UTF-8 BOM is stripped", func(t *testing.T) {
		csv := "\xEF\xBB\xBFemail,first_name\njane@example.com,Jane\n"

		rows, _ := parseRows(strings.NewReader(csv))

		require.Len(t, rows, 1)
		assert.Equal(t, "jane@example.com", rows[0].Email)
	})

	t.Run("empty input yields an all-zero summary", func(t *testing.T) {
		rows, summary := parseRows(strings.NewReader(""))

		assert.Empty(t, rows)
		assert.Zero(t, summary.Parsed)
		assert.Zero(t, summary.Skipped)
	})

	t.Run("emails are lowercased", func(t *testing.T) {
		csv := "email\nJANE@Example.com\n"

		rows, _ := parseRows(strings.NewReader(csv))

		require.Len(t, rows, 1)
		assert.Equal(t, "jane@example.com", rows[0].Email)
	})
}

func TestImportRun(t *testing.T) {
	t.Run("valid rows are inserted approved and synced", func(t *testing.T) {
		db := setupTestDB(t)
		syncer := &fakeSyncer{}
		svc := NewImportService(db, syncer)

		csv := "first_name,last_name,email\nJane,Doe,jane@example.com\nBob,Ray,bob@example.com\n"
		summary, err := svc.Run(strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Parsed)
		assert.Equal(t, 2, summary.Inserted)
		assert.Equal(t, 2, summary.Synced)
		assert.Zero(t, summary.Skipped)

		var volunteers []models.Volunteer
		require.NoError(t, db.Find(&volunteers).Error)
		require.Len(t, volunteers, 2)
		for _, v := range volunteers {
			assert.Equal(t, models.StatusApproved, v.Status)
			require.NotNil(t, v.HubspotID)
		}

		require.Len(t, syncer.batchCalls, 1)
		assert.Equal(t, "lead", syncer.batchCalls[0][0].Lifecycle)
	})

	t.Run("duplicate emails are skipped, not failed", func(t *testing.T) {
		db := setupTestDB(t)
		syncer := &fakeSyncer{}
		volunteerSvc := NewVolunteerService(db, syncer)
		svc := NewImportService(db, syncer)

		existing := validSignup()
		existing.Email = "taken@example.com"
		_, err := volunteerSvc.Signup(existing)
		require.NoError(t, err)

		// 4 rows: one missing email, one already in the store, one repeated
		// within the file.
		csv := "first_name,email\n" +
			"NoEmail,\n" +
			"Taken,taken@example.com\n" +
			"Jane,jane@example.com\n" +
			"JaneAgain,jane@example.com\n"

		summary, err := svc.Run(strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 4, summary.Parsed)
		assert.Equal(t, 1, summary.Inserted)
		assert.Equal(t, 3, summary.Skipped)
		assert.Equal(t, 1, summary.Synced)

		var count int64
		require.NoError(t, db.Model(&models.Volunteer{}).Where("email = ?", "jane@example.com").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("a deleted volunteer's email can be imported again", func(t *testing.T) {
		db := setupTestDB(t)
		syncer := &fakeSyncer{}
		volunteerSvc := NewVolunteerService(db, syncer)
		svc := NewImportService(db, syncer)

		created, err := volunteerSvc.Signup(validSignup())
		require.NoError(t, err)
		require.NoError(t, volunteerSvc.Delete(created.ID))

		summary, err := svc.Run(strings.NewReader("email\njane@example.com\n"))

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Inserted)
		assert.Zero(t, summary.Skipped)
	})

	t.Run("partial batch acceptance leaves unmatched rows local-only", func(t *testing.T) {
		db := setupTestDB(t)
		syncer := &fakeSyncer{
			batchResults: []hubspot.BatchResult{{ID: "ext-100", Email: "jane@example.com"}},
		}
		svc := NewImportService(db, syncer)

		csv := "email\njane@example.com\nbob@example.com\n"
		summary, err := svc.Run(strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 2, summary.Inserted)
		assert.Equal(t, 1, summary.Synced)

		var jane, bob models.Volunteer
		require.NoError(t, db.First(&jane, "email = ?", "jane@example.com").Error)
		require.NoError(t, db.First(&bob, "email = ?", "bob@example.com").Error)

		require.NotNil(t, jane.HubspotID)
		assert.Equal(t, "ext-100", *jane.HubspotID)
		assert.Nil(t, bob.HubspotID)
		assert.Equal(t, models.StatusApproved, bob.Status)
	})

	t.Run("batch failure still returns a 2xx-style summary", func(t *testing.T) {
		db := setupTestDB(t)
		syncer := &fakeSyncer{failBatch: true}
		svc := NewImportService(db, syncer)

		csv := "email\njane@example.com\n"
		summary, err := svc.Run(strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Inserted)
		assert.Zero(t, summary.Synced)

		var jane models.Volunteer
		require.NoError(t, db.First(&jane, "email = ?", "jane@example.com").Error)
		assert.Equal(t, models.StatusApproved, jane.Status)
		assert.Nil(t, jane.HubspotID)
	})

	t.Run("empty file returns all-zero counts without error", func(t *testing.T) {
		db := setupTestDB(t)
		syncer := &fakeSyncer{}
		svc := NewImportService(db, syncer)

		summary, err := svc.Run(strings.NewReader(""))

		require.NoError(t, err)
		assert.Zero(t, summary.Parsed)
		assert.Zero(t, summary.Inserted)
		assert.Zero(t, summary.Synced)
		assert.Zero(t, summary.Skipped)
		assert.Empty(t, syncer.batchCalls)
	})

	t.Run("file with only skipped rows makes no remote call", func(t *testing.T) {
		db := setupTestDB(t)
		syncer := &fakeSyncer{}
		svc := NewImportService(db, syncer)

		csv := "first_name,email\nNoEmail,\n"
		summary, err := svc.Run(strings.NewReader(csv))

		require.NoError(t, err)
		assert.Equal(t, 1, summary.Parsed)
		assert.Zero(t, summary.Inserted)
		assert.Equal(t, 1, summary.Skipped)
		assert.Empty(t, syncer.batchCalls)
	})
}
