package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/infrastructure/models"
)

// ApplicationRepository implements application data operations
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Upsert writes the owner's application as a single INSERT ... ON
// CONFLICT statement against the unique user_id column. A fresh insert
// and a Draft overwrite both land with status Under Review; a row in any
// other status filters out of the DO UPDATE and surfaces as
// ErrAlreadySubmitted. Two concurrent submits for the same owner can
// therefore never produce two rows or a silent overwrite.
func (r *ApplicationRepository) Upsert(ctx context.Context, app *entities.Application) error {
	now := time.Now()
	m := toApplicationModel(app)
	m.Status = string(entities.StatusUnderReview)
	m.UpdatedAt = now
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}

	assignments := applicationAssignments(m, now)
	assignments["status"] = string(entities.StatusUnderReview)

	result := r.db.WithContext(ctx).Clauses(draftOnlyConflict(assignments)).Create(m)
	if result.Error != nil {
		// A constraint violation that escapes the upsert path still
		// means the owner already has a row.
		if isDuplicateKey(result.Error) {
			return domainerrors.ErrAlreadySubmitted
		}
		return result.Error
	}
	// Conflict hit but the existing row was past Draft: the DO UPDATE
	// WHERE filtered it out and nothing was written.
	if result.RowsAffected == 0 {
		return domainerrors.ErrAlreadySubmitted
	}

	// The DO UPDATE path keeps the existing row's id, so the persisted
	// identity is read back rather than taken from the candidate row.
	persisted, err := r.persistedRow(ctx, m.UserID)
	if err != nil {
		return err
	}
	app.ID = persisted.ID
	app.CreatedAt = persisted.CreatedAt
	app.Status = entities.StatusUnderReview
	app.UpdatedAt = now
	return nil
}

// SaveDraft inserts or overwrites the owner's Draft in place, through
// the same conflict-guarded statement as Upsert so a submitted
// application can never be silently reverted to Draft content.
func (r *ApplicationRepository) SaveDraft(ctx context.Context, app *entities.Application) error {
	now := time.Now()
	m := toApplicationModel(app)
	m.Status = string(entities.StatusDraft)
	m.UpdatedAt = now
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}

	result := r.db.WithContext(ctx).Clauses(draftOnlyConflict(applicationAssignments(m, now))).Create(m)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return domainerrors.ErrAlreadySubmitted
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAlreadySubmitted
	}

	persisted, err := r.persistedRow(ctx, m.UserID)
	if err != nil {
		return err
	}
	app.ID = persisted.ID
	app.CreatedAt = persisted.CreatedAt
	app.Status = entities.StatusDraft
	app.UpdatedAt = now
	return nil
}

// persistedRow reads back the id and creation time the store actually
// holds for the owner after an upsert landed.
func (r *ApplicationRepository) persistedRow(ctx context.Context, userID uuid.UUID) (*models.Application, error) {
	var m models.Application
	if err := r.db.WithContext(ctx).Select("id", "created_at").
		Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateResumeKey stores the resume object key on the owner's row if
// one exists. No row yet is fine; the upload simply precedes the draft.
func (r *ApplicationRepository) UpdateResumeKey(ctx context.Context, userID uuid.UUID, key string) error {
	return r.db.WithContext(ctx).Model(&models.Application{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"resume_key": key,
			"updated_at": time.Now(),
		}).Error
}

// draftOnlyConflict is the shared ON CONFLICT (user_id) DO UPDATE ...
// WHERE status = 'Draft' clause backing both Upsert and SaveDraft.
func draftOnlyConflict(assignments map[string]interface{}) clause.OnConflict {
	return clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(assignments),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: "application", Name: "status"},
				Value:  string(entities.StatusDraft),
			},
		}},
	}
}

func applicationAssignments(m *models.Application, now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"phone_number":               m.PhoneNumber,
		"address":                    m.Address,
		"citizenship":                m.Citizenship,
		"is_student":                 m.IsStudent,
		"school":                     m.School,
		"study_level":                m.StudyLevel,
		"graduation_year":            m.GraduationYear,
		"major":                      m.Major,
		"attended_mlh":               m.AttendedMLH,
		"technical_skills":           m.TechnicalSkills,
		"programming_languages":      m.ProgrammingLanguages,
		"hackathon_experience":       m.HackathonExperience,
		"hackathon_experience_desc":  m.HackathonExperienceDesc,
		"has_team":                   m.HasTeam,
		"needs_teammates":            m.NeedsTeammates,
		"desired_teammate_skills":    m.DesiredTeammateSkills,
		"goals":                      m.Goals,
		"heard_from":                 m.HeardFrom,
		"needs_sponsorship":          m.NeedsSponsorship,
		"accessibility_needs":        m.AccessibilityNeeds,
		"accessibility_desc":         m.AccessibilityDesc,
		"dietary_restrictions":       m.DietaryRestrictions,
		"dietary_desc":               m.DietaryDesc,
		"emergency_contact_name":     m.EmergencyContactName,
		"emergency_contact_phone":    m.EmergencyContactPhone,
		"emergency_contact_relation": m.EmergencyContactRelation,
		"tshirt_size":                m.TshirtSize,
		"ethnicity":                  m.Ethnicity,
		"underrepresented":           m.Underrepresented,
		"mlh_code_of_conduct":        m.MLHCodeOfConduct,
		"mlh_data_sharing":           m.MLHDataSharing,
		"mlh_communications":         m.MLHCommunications,
		"info_accurate":              m.InfoAccurate,
		"understands_admission":      m.UnderstandsAdmission,
		"updated_at":                 now,
	}
}

// GetByID gets an application by id
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Application, error) {
	var m models.Application
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toApplicationEntity(&m), nil
}

// GetByUserID gets the owner's application
func (r *ApplicationRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Application, error) {
	var m models.Application
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toApplicationEntity(&m), nil
}

// UpdateStatusFrom applies a conditional status update. The status
// check and the write are one statement, so two admins racing on the
// same application cannot both win.
func (r *ApplicationRepository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from []entities.ApplicationStatus, to entities.ApplicationStatus) error {
	states := make([]string, 0, len(from))
	for _, s := range from {
		states = append(states, string(s))
	}

	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status IN ?", id, states).
		Updates(map[string]interface{}{
			"status":     string(to),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidTransition
	}
	return nil
}

type applicationRowScan struct {
	ID          uuid.UUID
	DisplayName string
	Email       string
	School      *string
	Status      string
	SubmittedAt time.Time
}

// List returns the admin console projection. Search is matched
// case-insensitively against applicant name, email and school; the
// status filter is exact; both combine with AND. Without an explicit
// status filter Drafts are excluded, since they are not part of the
// admin's working set.
func (r *ApplicationRepository) List(ctx context.Context, filter entities.ApplicationFilter, limit, offset int) ([]*entities.ApplicationRow, int64, error) {
	query := r.db.WithContext(ctx).Table("application").
		Joins("JOIN profile ON profile.id = application.user_id")

	if filter.Status != "" {
		query = query.Where("application.status = ?", string(filter.Status))
	} else {
		query = query.Where("application.status <> ?", string(entities.StatusDraft))
	}

	if filter.Search != "" {
		term := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(profile.display_name) LIKE ? OR LOWER(profile.email) LIKE ? OR LOWER(application.school) LIKE ?",
			term, term, term,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.
		Select("application.id AS id, profile.display_name AS display_name, profile.email AS email, application.school AS school, application.status AS status, application.updated_at AS submitted_at").
		Order("application.updated_at DESC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var scans []applicationRowScan
	if err := query.Scan(&scans).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]*entities.ApplicationRow, 0, len(scans))
	for _, s := range scans {
		row := &entities.ApplicationRow{
			ID:          s.ID,
			DisplayName: s.DisplayName,
			Email:       s.Email,
			Status:      entities.ApplicationStatus(s.Status),
			SubmittedAt: s.SubmittedAt,
		}
		if s.School != nil {
			row.School = *s.School
		}
		rows = append(rows, row)
	}
	return rows, total, nil
}

// CountByStatus counts applications grouped by lifecycle state
func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[entities.ApplicationStatus]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	result := make(map[entities.ApplicationStatus]int64, len(counts))
	for _, c := range counts {
		result[entities.ApplicationStatus(c.Status)] = c.Count
	}
	return result, nil
}

func toApplicationModel(app *entities.Application) *models.Application {
	return &models.Application{
		ID:                       app.ID,
		UserID:                   app.UserID,
		Status:                   string(app.Status),
		PhoneNumber:              app.PhoneNumber,
		Address:                  app.Address,
		Citizenship:              app.Citizenship,
		IsStudent:                app.IsStudent,
		School:                   app.School.Ptr(),
		StudyLevel:               app.StudyLevel.Ptr(),
		GraduationYear:           app.GraduationYear.Ptr(),
		Major:                    app.Major.Ptr(),
		AttendedMLH:              app.AttendedMLH,
		TechnicalSkills:          marshalStrings(app.TechnicalSkills),
		ProgrammingLanguages:     marshalStrings(app.ProgrammingLanguages),
		HackathonExperience:      app.HackathonExperience,
		HackathonExperienceDesc:  app.HackathonExperienceDesc.Ptr(),
		HasTeam:                  app.HasTeam,
		NeedsTeammates:           app.NeedsTeammates,
		DesiredTeammateSkills:    app.DesiredTeammateSkills.Ptr(),
		Goals:                    app.Goals,
		HeardFrom:                app.HeardFrom,
		NeedsSponsorship:         app.NeedsSponsorship,
		AccessibilityNeeds:       app.AccessibilityNeeds,
		AccessibilityDesc:        app.AccessibilityDesc.Ptr(),
		DietaryRestrictions:      app.DietaryRestrictions,
		DietaryDesc:              app.DietaryDesc.Ptr(),
		EmergencyContactName:     app.EmergencyContactName,
		EmergencyContactPhone:    app.EmergencyContactPhone,
		EmergencyContactRelation: app.EmergencyContactRelation,
		TshirtSize:               app.TshirtSize,
		Ethnicity:                marshalStrings(app.Ethnicity),
		Underrepresented:         app.Underrepresented,
		MLHCodeOfConduct:         app.MLHCodeOfConduct,
		MLHDataSharing:           app.MLHDataSharing,
		MLHCommunications:        app.MLHCommunications,
		InfoAccurate:             app.InfoAccurate,
		UnderstandsAdmission:     app.UnderstandsAdmission,
		ResumeKey:                app.ResumeKey.Ptr(),
		CreatedAt:                app.CreatedAt,
		UpdatedAt:                app.UpdatedAt,
	}
}

func toApplicationEntity(m *models.Application) *entities.Application {
	return &entities.Application{
		ID:                       m.ID,
		UserID:                   m.UserID,
		Status:                   entities.ApplicationStatus(m.Status),
		PhoneNumber:              m.PhoneNumber,
		Address:                  m.Address,
		Citizenship:              m.Citizenship,
		IsStudent:                m.IsStudent,
		School:                   null.StringFromPtr(m.School),
		StudyLevel:               null.StringFromPtr(m.StudyLevel),
		GraduationYear:           null.Int64FromPtr(m.GraduationYear),
		Major:                    null.StringFromPtr(m.Major),
		AttendedMLH:              m.AttendedMLH,
		TechnicalSkills:          unmarshalStrings(m.TechnicalSkills),
		ProgrammingLanguages:     unmarshalStrings(m.ProgrammingLanguages),
		HackathonExperience:      m.HackathonExperience,
		HackathonExperienceDesc:  null.StringFromPtr(m.HackathonExperienceDesc),
		HasTeam:                  m.HasTeam,
		NeedsTeammates:           m.NeedsTeammates,
		DesiredTeammateSkills:    null.StringFromPtr(m.DesiredTeammateSkills),
		Goals:                    m.Goals,
		HeardFrom:                m.HeardFrom,
		NeedsSponsorship:         m.NeedsSponsorship,
		AccessibilityNeeds:       m.AccessibilityNeeds,
		AccessibilityDesc:        null.StringFromPtr(m.AccessibilityDesc),
		DietaryRestrictions:      m.DietaryRestrictions,
		DietaryDesc:              null.StringFromPtr(m.DietaryDesc),
		EmergencyContactName:     m.EmergencyContactName,
		EmergencyContactPhone:    m.EmergencyContactPhone,
		EmergencyContactRelation: m.EmergencyContactRelation,
		TshirtSize:               m.TshirtSize,
		Ethnicity:                unmarshalStrings(m.Ethnicity),
		Underrepresented:         m.Underrepresented,
		MLHCodeOfConduct:         m.MLHCodeOfConduct,
		MLHDataSharing:           m.MLHDataSharing,
		MLHCommunications:        m.MLHCommunications,
		InfoAccurate:             m.InfoAccurate,
		UnderstandsAdmission:     m.UnderstandsAdmission,
		ResumeKey:                null.StringFromPtr(m.ResumeKey),
		CreatedAt:                m.CreatedAt,
		UpdatedAt:                m.UpdatedAt,
	}
}
