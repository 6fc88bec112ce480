package services

import (
	"errors"
	"testing"

	"github.com/hopehands/volunteer-backend/internal/hubspot"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with the service tables.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE volunteers (
			id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE,
			phone_number TEXT NOT NULL DEFAULT '',
			preferred_role TEXT NOT NULL DEFAULT '',
			availability TEXT NOT NULL DEFAULT '',
			referral_source TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			hubspot_id TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'admin',
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE refresh_tokens (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			token_hash TEXT NOT NULL UNIQUE,
			expires_at DATETIME NOT NULL,
			revoked INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	return db
}

// fakeSyncer records sync calls and can be told to fail.
type fakeSyncer struct {
	createCalls  []hubspot.ContactProperties
	batchCalls   [][]hubspot.ContactProperties
	updateCalls  []string
	archiveCalls []string

	nextID       string
	batchResults []hubspot.BatchResult
	failCreate   bool
	failBatch    bool
	failUpdate   bool
	failArchive  bool
}

var errRemote = errors.New("remote call failed")

func (f *fakeSyncer) CreateContact(props hubspot.ContactProperties) (string, error) {
	f.createCalls = append(f.createCalls, props)
	if f.failCreate {
		return "", errRemote
	}
	if f.nextID == "" {
		return "ext-001", nil
	}
	return f.nextID, nil
}

func (f *fakeSyncer) BatchCreateContacts(props []hubspot.ContactProperties) ([]hubspot.BatchResult, error) {
	f.batchCalls = append(f.batchCalls, props)
	if f.failBatch {
		return nil, errRemote
	}
	if f.batchResults != nil {
		return f.batchResults, nil
	}
	results := make([]hubspot.BatchResult, len(props))
	for i, p := range props {
		results[i] = hubspot.BatchResult{ID: "ext-batch-" + p.Email, Email: p.Email}
	}
	return results, nil
}

func (f *fakeSyncer) UpdateContact(contactID string, props hubspot.ContactProperties) error {
	f.updateCalls = append(f.updateCalls, contactID)
	if f.failUpdate {
		return errRemote
	}
	return nil
}

func (f *fakeSyncer) ArchiveContact(contactID string) error {
	f.archiveCalls = append(f.archiveCalls, contactID)
	if f.failArchive {
		return errRemote
	}
	return nil
}
