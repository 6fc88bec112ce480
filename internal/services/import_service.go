package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hopehands/volunteer-backend/internal/dto"
	"github.com/hopehands/volunteer-backend/internal/hubspot"
	"github.com/hopehands/volunteer-backend/internal/models"
	"gorm.io/gorm"
)

// ImportService turns a CSV of pre-vetted volunteers into approved local
// records and mirrors them to HubSpot in one batch call. The operation is
// best effort throughout: bad rows are skipped, duplicate emails are skipped,
// and a remote failure leaves local-only approved records behind.
type ImportService struct {
	db     *gorm.DB
	syncer ContactSyncer
}

func NewImportService(db *gorm.DB, syncer ContactSyncer) *ImportService {
	return &ImportService{db: db, syncer: syncer}
}

// importRow is one validated CSV row. Absent columns default to empty strings;
// only the email is mandatory.
type importRow struct {
	FirstName      string
	LastName       string
	Email          string
	PhoneNumber    string
	PreferredRole  string
	Availability   string
	ReferralSource string
}

// Run processes the uploaded file end to end and returns the summary counts.
// An empty file is not an error; it yields an all-zero summary.
func (s *ImportService) Run(file io.Reader) (*dto.ImportSummary, error) {
	rows, summary := parseRows(file)

	// Drop rows whose email already exists, either earlier in the file or in
	// the store. Duplicates count as skipped, not failed.
	rows = s.dropDuplicates(rows, summary)

	if len(rows) == 0 {
		return summary, nil
	}

	volunteers := make([]models.Volunteer, len(rows))
	for i, row := range rows {
		volunteers[i] = models.Volunteer{
			ID:             uuid.New(),
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			Email:          row.Email,
			PhoneNumber:    row.PhoneNumber,
			PreferredRole:  row.PreferredRole,
			Availability:   row.Availability,
			ReferralSource: row.ReferralSource,
			Status:         models.StatusApproved,
		}
	}

	if err := s.db.Create(&volunteers).Error; err != nil {
		return nil, fmt.Errorf("failed to insert volunteers: %w", err)
	}
	summary.Inserted = len(volunteers)

	props := make([]hubspot.ContactProperties, len(rows))
	for i, row := range rows {
		props[i] = hubspot.ContactProperties{
			Email:          row.Email,
			FirstName:      row.FirstName,
			LastName:       row.LastName,
			Phone:          row.PhoneNumber,
			Lifecycle:      "lead",
			PreferredRole:  row.PreferredRole,
			Availability:   row.Availability,
			ReferralSource: row.ReferralSource,
		}
	}

	results, err := s.syncer.BatchCreateContacts(props)
	if err != nil {
		// Local records stay approved with no external id; reconciliation is
		// an administrative concern, not an automatic retry.
		slog.Error("hubspot batch create failed",
			"action", "import_sync", "rows", len(props), "error", err)
		return summary, nil
	}

	for _, r := range results {
		if r.ID == "" || r.Email == "" {
			continue
		}
		result := s.db.Model(&models.Volunteer{}).
			Where("email = ?", strings.ToLower(r.Email)).
			Update("hubspot_id", r.ID)
		if result.Error != nil {
			slog.Error("failed to store hubspot id from batch",
				"action", "import_sync", "email", r.Email, "error", result.Error)
			continue
		}
		if result.RowsAffected > 0 {
			summary.Synced++
		}
	}

	return summary, nil
}

func (s *ImportService) dropDuplicates(rows []importRow, summary *dto.ImportSummary) []importRow {
	if len(rows) == 0 {
		return rows
	}

	emails := make([]string, len(rows))
	for i, row := range rows {
		emails[i] = row.Email
	}

	var existing []string
	if err := s.db.Model(&models.Volunteer{}).
		Where("email IN ?", emails).
		Pluck("email", &existing).Error; err != nil {
		slog.Error("duplicate email lookup failed", "action", "import", "error", err)
		existing = nil
	}

	taken := make(map[string]bool, len(existing))
	for _, e := range existing {
		taken[e] = true
	}

	kept := rows[:0]
	for _, row := range rows {
		if taken[row.Email] {
			summary.Skipped++
			summary.SkipReasons = append(summary.SkipReasons,
				fmt.Sprintf("skipping %s: email already exists", row.Email))
			continue
		}
		taken[row.Email] = true
		kept = append(kept, row)
	}
	return kept
}

// parseRows reads the CSV into validated rows. Headers are normalized to
// lowercase snake_case with any '?' stripped, so "Preferred Volunteer Role"
// and "How did you hear about us?" match the expected columns. Rows without
// an email are skipped and recorded.
func parseRows(file io.Reader) ([]importRow, *dto.ImportSummary) {
	summary := &dto.ImportSummary{}

	reader := csv.NewReader(stripBOM(file))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		// Empty or unreadable file: nothing to import.
		return nil, summary
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}

	get := func(record []string, keys ...string) string {
		for _, key := range keys {
			if i, ok := index[key]; ok && i < len(record) {
				if v := strings.TrimSpace(record[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	var rows []importRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary.Skipped++
			summary.SkipReasons = append(summary.SkipReasons,
				fmt.Sprintf("skipping malformed row: %v", err))
			continue
		}
		summary.Parsed++

		email := strings.ToLower(get(record, "email"))
		if email == "" {
			summary.Skipped++
			summary.SkipReasons = append(summary.SkipReasons,
				fmt.Sprintf("skipping row %d: missing email", summary.Parsed))
			continue
		}

		row := importRow{
			FirstName:      get(record, "first_name"),
			LastName:       get(record, "last_name"),
			Email:          email,
			PhoneNumber:    get(record, "phone_number", "phone"),
			PreferredRole:  get(record, "preferred_volunteer_role", "preferred_role"),
			Availability:   get(record, "availability"),
			ReferralSource: get(record, "how_did_you_hear_about_us", "referral_source"),
		}

		// A single "name" column is split into first and last.
		if row.FirstName == "" && row.LastName == "" {
			if name := get(record, "name"); name != "" {
				parts := strings.SplitN(name, " ", 2)
				row.FirstName = parts[0]
				if len(parts) > 1 {
					row.LastName = parts[1]
				}
			}
		}

		rows = append(rows, row)
	}

	return rows, summary
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	h = strings.ReplaceAll(h, " ", "_")
	return strings.ReplaceAll(h, "?", "")
}

// stripBOM removes a leading UTF-8 byte order mark, which spreadsheet exports
// often prepend.
func stripBOM(r io.Reader) io.Reader {
	buf := make([]byte, 3)
	n, _ := io.ReadFull(r, buf)
	if n == 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF {
		return r
	}
	return io.MultiReader(strings.NewReader(string(buf[:n])), r)
}
