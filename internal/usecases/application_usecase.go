package usecases

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"hack-portal.backend/internal/domain/entities"
	domainerrors "hack-portal.backend/internal/domain/errors"
	"hack-portal.backend/internal/domain/repositories"
)

// ApplicationUsecase owns the application lifecycle state machine:
// Draft -> Under Review -> Accepted/Rejected, with admin-only reversals
// back to Under Review.
type ApplicationUsecase struct {
	appRepo repositories.ApplicationRepository
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(appRepo repositories.ApplicationRepository) *ApplicationUsecase {
	return &ApplicationUsecase{appRepo: appRepo}
}

// Submit upserts the owner's application into Under Review. The caller
// must own ownerID. An existing row past Draft fails with
// ErrAlreadySubmitted and writes nothing; the unique owner constraint
// makes two concurrent submits resolve to exactly one winner. The
// mandatory agreements are re-validated here regardless of what the
// client already checked.
func (u *ApplicationUsecase) Submit(ctx context.Context, ownerID uuid.UUID, actor *entities.Session, input *entities.SubmitApplicationInput) (*entities.Application, error) {
	if actor.Anonymous() || actor.Identity.ID != ownerID {
		return nil, domainerrors.ErrForbidden
	}
	if err := validateAgreements(input); err != nil {
		return nil, err
	}

	app := applicationFromInput(ownerID, input)
	if err := u.appRepo.Upsert(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// SaveDraft stores form progress without submitting. Permitted only
// while the application is absent or still a Draft.
func (u *ApplicationUsecase) SaveDraft(ctx context.Context, ownerID uuid.UUID, actor *entities.Session, input *entities.SubmitApplicationInput) (*entities.Application, error) {
	if actor.Anonymous() || actor.Identity.ID != ownerID {
		return nil, domainerrors.ErrForbidden
	}

	app := applicationFromInput(ownerID, input)
	app.Status = entities.StatusDraft
	if err := u.appRepo.SaveDraft(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// GetOwn returns the caller's application
func (u *ApplicationUsecase) GetOwn(ctx context.Context, actor *entities.Session) (*entities.Application, error) {
	if actor.Anonymous() {
		return nil, domainerrors.ErrUnauthorized
	}
	return u.appRepo.GetByUserID(ctx, actor.Identity.ID)
}

// AttachResume records an uploaded resume key on the owner's
// application, if one exists yet.
func (u *ApplicationUsecase) AttachResume(ctx context.Context, actor *entities.Session, key string) error {
	if actor.Anonymous() {
		return domainerrors.ErrUnauthorized
	}
	return u.appRepo.UpdateResumeKey(ctx, actor.Identity.ID, key)
}

// Transition applies an admin status change. The status precondition
// and the write are one conditional statement in the store, so two
// admins racing on the same record cannot both win.
func (u *ApplicationUsecase) Transition(ctx context.Context, id uuid.UUID, to entities.ApplicationStatus, actor *entities.Session) (*entities.Application, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.ErrForbidden
	}

	from, err := validSources(to)
	if err != nil {
		return nil, err
	}

	if err := u.appRepo.UpdateStatusFrom(ctx, id, from, to); err != nil {
		if errors.Is(err, domainerrors.ErrInvalidTransition) {
			// Zero rows: distinguish a missing record from a record
			// whose status does not permit this transition.
			if _, getErr := u.appRepo.GetByID(ctx, id); errors.Is(getErr, domainerrors.ErrNotFound) {
				return nil, domainerrors.ErrNotFound
			}
			return nil, domainerrors.ErrInvalidTransition
		}
		return nil, err
	}
	return u.appRepo.GetByID(ctx, id)
}

// BulkTransition applies a status change across a batch. Validity is
// judged per record: one invalid record never aborts the others, and
// every failure is reported with a per-id reason.
func (u *ApplicationUsecase) BulkTransition(ctx context.Context, ids []uuid.UUID, to entities.ApplicationStatus, actor *entities.Session) (*entities.BulkTransitionResult, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.ErrForbidden
	}
	if _, err := validSources(to); err != nil {
		return nil, err
	}

	result := &entities.BulkTransitionResult{
		Succeeded: make([]uuid.UUID, 0, len(ids)),
		Failed:    make(map[uuid.UUID]string),
	}
	for _, id := range ids {
		_, err := u.Transition(ctx, id, to, actor)
		switch {
		case err == nil:
			result.Succeeded = append(result.Succeeded, id)
		case errors.Is(err, domainerrors.ErrNotFound):
			result.Failed[id] = "NotFound"
		case errors.Is(err, domainerrors.ErrInvalidTransition):
			result.Failed[id] = "InvalidTransition"
		default:
			result.Failed[id] = "StoreError"
		}
	}
	return result, nil
}

// validSources returns the statuses a record may hold for a transition
// into "to". Under Review is reachable only as an admin reversal from a
// decided state; Draft is never an admin target.
func validSources(to entities.ApplicationStatus) ([]entities.ApplicationStatus, error) {
	switch to {
	case entities.StatusAccepted, entities.StatusRejected:
		return []entities.ApplicationStatus{entities.StatusUnderReview}, nil
	case entities.StatusUnderReview:
		return []entities.ApplicationStatus{entities.StatusAccepted, entities.StatusRejected}, nil
	default:
		return nil, domainerrors.ErrInvalidTransition
	}
}

// validateAgreements enforces the mandatory checkboxes server side.
// mlh_communications is the one optional agreement.
func validateAgreements(input *entities.SubmitApplicationInput) error {
	if !input.MLHCodeOfConduct {
		return domainerrors.Validation("you must agree to the MLH Code of Conduct")
	}
	if !input.MLHDataSharing {
		return domainerrors.Validation("you must agree to the MLH data sharing agreement")
	}
	if !input.InfoAccurate {
		return domainerrors.Validation("you must certify that the information provided is accurate")
	}
	if !input.UnderstandsAdmission {
		return domainerrors.Validation("you must acknowledge that registration does not guarantee admission")
	}
	return nil
}

func applicationFromInput(ownerID uuid.UUID, input *entities.SubmitApplicationInput) *entities.Application {
	return &entities.Application{
		UserID:                   ownerID,
		PhoneNumber:              input.PhoneNumber,
		Address:                  input.Address,
		Citizenship:              input.Citizenship,
		IsStudent:                input.IsStudent,
		School:                   null.NewString(input.School, input.School != ""),
		StudyLevel:               null.NewString(input.StudyLevel, input.StudyLevel != ""),
		GraduationYear:           null.NewInt64(int64(input.GraduationYear), input.GraduationYear != 0),
		Major:                    null.NewString(input.Major, input.Major != ""),
		AttendedMLH:              input.AttendedMLH,
		TechnicalSkills:          input.TechnicalSkills,
		ProgrammingLanguages:     input.ProgrammingLanguages,
		HackathonExperience:      input.HackathonExperience,
		HackathonExperienceDesc:  null.NewString(input.HackathonExperienceDesc, input.HackathonExperienceDesc != ""),
		HasTeam:                  input.HasTeam,
		NeedsTeammates:           input.NeedsTeammates,
		DesiredTeammateSkills:    null.NewString(input.DesiredTeammateSkills, input.DesiredTeammateSkills != ""),
		Goals:                    input.Goals,
		HeardFrom:                input.HeardFrom,
		NeedsSponsorship:         input.NeedsSponsorship,
		AccessibilityNeeds:       input.AccessibilityNeeds,
		AccessibilityDesc:        null.NewString(input.AccessibilityDesc, input.AccessibilityDesc != ""),
		DietaryRestrictions:      input.DietaryRestrictions,
		DietaryDesc:              null.NewString(input.DietaryDesc, input.DietaryDesc != ""),
		EmergencyContactName:     input.EmergencyContactName,
		EmergencyContactPhone:    input.EmergencyContactPhone,
		EmergencyContactRelation: input.EmergencyContactRelation,
		TshirtSize:               input.TshirtSize,
		Ethnicity:                input.Ethnicity,
		Underrepresented:         input.Underrepresented,
		MLHCodeOfConduct:         input.MLHCodeOfConduct,
		MLHDataSharing:           input.MLHDataSharing,
		MLHCommunications:        input.MLHCommunications,
		InfoAccurate:             input.InfoAccurate,
		UnderstandsAdmission:     input.UnderstandsAdmission,
	}
}
