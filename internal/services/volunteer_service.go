package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hopehands/volunteer-backend/internal/dto"
	"github.com/hopehands/volunteer-backend/internal/hubspot"
	"github.com/hopehands/volunteer-backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrVolunteerNotFound = errors.New("volunteer not found")
	ErrNotPending        = errors.New("volunteer is not in a pending state")
	ErrEmailExists       = errors.New("a volunteer with this email already exists")
)

// ValidationError carries field-level detail for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// ContactSyncer is the boundary to the external CRM. The local database is
// the source of truth; sync failures are the caller's decision to swallow.
type ContactSyncer interface {
	CreateContact(props hubspot.ContactProperties) (string, error)
	BatchCreateContacts(props []hubspot.ContactProperties) ([]hubspot.BatchResult, error)
	UpdateContact(contactID string, props hubspot.ContactProperties) error
	ArchiveContact(contactID string) error
}

var validate = validator.New()

type VolunteerService struct {
	db     *gorm.DB
	syncer ContactSyncer
}

func NewVolunteerService(db *gorm.DB, syncer ContactSyncer) *VolunteerService {
	return &VolunteerService{db: db, syncer: syncer}
}

// Signup creates a pending volunteer from the public form. No sync happens
// until the application is approved.
func (s *VolunteerService) Signup(req *dto.SignupRequest) (*dto.VolunteerResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, asValidationError(err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.Volunteer
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailExists
	}

	volunteer := models.Volunteer{
		ID:             uuid.New(),
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		Email:          email,
		PhoneNumber:    strings.TrimSpace(req.PhoneNumber),
		PreferredRole:  strings.TrimSpace(req.PreferredRole),
		Availability:   strings.TrimSpace(req.Availability),
		ReferralSource: strings.TrimSpace(req.ReferralSource),
		Status:         models.StatusPending,
	}

	if err := s.db.Create(&volunteer).Error; err != nil {
		return nil, fmt.Errorf("failed to create volunteer: %w", err)
	}

	return mapVolunteerToResponse(&volunteer), nil
}

func (s *VolunteerService) List() (*dto.VolunteerListResponse, error) {
	var volunteers []models.Volunteer
	if err := s.db.Order("created_at DESC").Find(&volunteers).Error; err != nil {
		return nil, err
	}

	resp := &dto.VolunteerListResponse{
		Volunteers: make([]dto.VolunteerResponse, len(volunteers)),
		Total:      int64(len(volunteers)),
	}
	for i, v := range volunteers {
		resp.Volunteers[i] = *mapVolunteerToResponse(&v)
	}
	return resp, nil
}

func (s *VolunteerService) Get(id uuid.UUID) (*dto.VolunteerResponse, error) {
	volunteer, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return mapVolunteerToResponse(volunteer), nil
}

// Approve transitions a pending volunteer to approved and creates the contact
// in HubSpot. The status change is a compare-and-swap gated on the current
// status, so concurrent approvals resolve to exactly one transition and at
// most one remote create. A failed remote create leaves the volunteer
// approved with a null hubspot_id; the local store wins.
func (s *VolunteerService) Approve(id uuid.UUID) (*dto.VolunteerResponse, error) {
	if err := s.transition(id, models.StatusApproved); err != nil {
		return nil, err
	}

	volunteer, err := s.find(id)
	if err != nil {
		return nil, err
	}

	contactID, err := s.syncer.CreateContact(contactProperties(volunteer, "lead"))
	if err != nil {
		slog.Error("hubspot contact create failed",
			"action", "approve_sync", "volunteer_id", id, "error", err)
		return mapVolunteerToResponse(volunteer), nil
	}

	if err := s.db.Model(volunteer).Update("hubspot_id", contactID).Error; err != nil {
		return nil, fmt.Errorf("failed to store hubspot id: %w", err)
	}
	volunteer.HubspotID = &contactID

	return mapVolunteerToResponse(volunteer), nil
}

// Reject transitions a pending volunteer to rejected. No remote call.
func (s *VolunteerService) Reject(id uuid.UUID) (*dto.VolunteerResponse, error) {
	if err := s.transition(id, models.StatusRejected); err != nil {
		return nil, err
	}

	volunteer, err := s.find(id)
	if err != nil {
		return nil, err
	}
	return mapVolunteerToResponse(volunteer), nil
}

// transition flips status from pending to the target in a single guarded
// UPDATE. Zero affected rows means the record is missing or already past
// pending; the two are told apart with a follow-up lookup.
func (s *VolunteerService) transition(id uuid.UUID, target string) error {
	result := s.db.Model(&models.Volunteer{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Update("status", target)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.find(id); err != nil {
			return err
		}
		return ErrNotPending
	}
	return nil
}

// Update applies a partial field update. If the volunteer has already been
// synced, the same changes are pushed remotely; a failed push is logged and
// does not undo the local update.
func (s *VolunteerService) Update(id uuid.UUID, req *dto.UpdateVolunteerRequest) (*dto.VolunteerResponse, error) {
	updates := map[string]interface{}{}

	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if err := validate.Var(email, "required,email"); err != nil {
			return nil, &ValidationError{Fields: map[string]string{"email": "must be a valid email address"}}
		}
		var other models.Volunteer
		if err := s.db.Where("email = ? AND id <> ?", email, id).First(&other).Error; err == nil {
			return nil, ErrEmailExists
		}
		updates["email"] = email
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.PreferredRole != nil {
		updates["preferred_role"] = strings.TrimSpace(*req.PreferredRole)
	}
	if req.Availability != nil {
		updates["availability"] = strings.TrimSpace(*req.Availability)
	}
	if req.ReferralSource != nil {
		updates["referral_source"] = strings.TrimSpace(*req.ReferralSource)
	}

	if len(updates) > 0 {
		result := s.db.Model(&models.Volunteer{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, ErrVolunteerNotFound
		}
	}

	volunteer, err := s.find(id)
	if err != nil {
		return nil, err
	}

	if volunteer.HubspotID != nil {
		if err := s.syncer.UpdateContact(*volunteer.HubspotID, contactProperties(volunteer, "")); err != nil {
			slog.Error("hubspot contact update failed",
				"action", "update_sync", "volunteer_id", id, "hubspot_id", *volunteer.HubspotID, "error", err)
		}
	}

	return mapVolunteerToResponse(volunteer), nil
}

// Delete archives the remote contact first, then removes the local record
// outright, freeing the email for a future application. The archive is
// attempted before the delete so a crash cannot leave a contact in the CRM
// with no local owner; an archive failure is logged and does not block the
// delete.
func (s *VolunteerService) Delete(id uuid.UUID) error {
	volunteer, err := s.find(id)
	if err != nil {
		return err
	}

	if volunteer.HubspotID != nil {
		if err := s.syncer.ArchiveContact(*volunteer.HubspotID); err != nil {
			slog.Error("hubspot contact archive failed",
				"action", "delete_sync", "volunteer_id", id, "hubspot_id", *volunteer.HubspotID, "error", err)
		}
	}

	return s.db.Delete(volunteer).Error
}

// RoleCounts groups all volunteers by preferred role, most popular first.
func (s *VolunteerService) RoleCounts() ([]dto.RoleCount, error) {
	var counts []dto.RoleCount
	err := s.db.Model(&models.Volunteer{}).
		Select("preferred_role, COUNT(*) as count").
		Group("preferred_role").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *VolunteerService) find(id uuid.UUID) (*models.Volunteer, error) {
	var volunteer models.Volunteer
	if err := s.db.First(&volunteer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVolunteerNotFound
		}
		return nil, err
	}
	return &volunteer, nil
}

func contactProperties(v *models.Volunteer, lifecycle string) hubspot.ContactProperties {
	return hubspot.ContactProperties{
		Email:          v.Email,
		FirstName:      v.FirstName,
		LastName:       v.LastName,
		Phone:          v.PhoneNumber,
		Lifecycle:      lifecycle,
		PreferredRole:  v.PreferredRole,
		Availability:   v.Availability,
		ReferralSource: v.ReferralSource,
	}
}

func mapVolunteerToResponse(v *models.Volunteer) *dto.VolunteerResponse {
	return &dto.VolunteerResponse{
		ID:             v.ID,
		FirstName:      v.FirstName,
		LastName:       v.LastName,
		Email:          v.Email,
		PhoneNumber:    v.PhoneNumber,
		PreferredRole:  v.PreferredRole,
		Availability:   v.Availability,
		ReferralSource: v.ReferralSource,
		Status:         v.Status,
		HubspotID:      v.HubspotID,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func asValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fieldName(fe.Field())] = "this field is required"
		case "email":
			fields[fieldName(fe.Field())] = "must be a valid email address"
		case "max":
			fields[fieldName(fe.Field())] = "value is too long"
		default:
			fields[fieldName(fe.Field())] = "invalid value"
		}
	}
	return &ValidationError{Fields: fields}
}

// fieldName converts a struct field name to its snake_case JSON form.
func fieldName(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
