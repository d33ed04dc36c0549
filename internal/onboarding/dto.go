package onboarding

import (
	"time"

	"github.com/b4platform/b4-backend/pkg/db/models"
	"github.com/b4platform/b4-backend/pkg/enums"
)

// Check areas for the co-builder path. The wizard walks them in this order.
const (
	AreaPromise    = "promise"
	AreaPractice   = "practice"
	AreaTraining   = "training"
	AreaConsulting = "consulting"
)

// Experience categories for the entrepreneur path.
const (
	CategoryProject  = "project"
	CategoryProduct  = "product"
	CategoryTeam     = "team"
	CategoryBusiness = "business"
	CategoryBoard    = "board"
)

// ChoosePathRequest selects the wizard path.
type ChoosePathRequest struct {
	PrimaryRole string `json:"primary_role" validate:"required,oneof=entrepreneur cobuilder"`
}

// CheckInput is the three-way answer for one natural-role validation area.
type CheckInput struct {
	Area   string            `json:"area" validate:"required,oneof=promise practice training consulting"`
	Answer enums.CheckAnswer `json:"answer" validate:"required,oneof=yes no needs_help"`
	Detail string            `json:"detail" validate:"omitempty,max=2000"`
}

// CategoryInput is one entrepreneur experience category delta.
type CategoryInput struct {
	Category    string `json:"category" validate:"required,oneof=project product team business board"`
	Has         bool   `json:"has"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Count       int    `json:"count" validate:"gte=0"`
	NeedsHelp   bool   `json:"needs_help"`
}

// SaveStepRequest carries the delta a wizard step persists. Any combination
// of fields may be present; the step number comes from the URL.
type SaveStepRequest struct {
	Description     *string        `json:"description" validate:"omitempty,max=5000"`
	Check           *CheckInput    `json:"check"`
	Entrepreneurial *CategoryInput `json:"entrepreneurial"`
}

// StateDTO is the transport shape of the per-user wizard state.
type StateDTO struct {
	PrimaryRole         *enums.PrimaryRole  `json:"primary_role"`
	CurrentStep         int                 `json:"current_step"`
	OnboardingCompleted bool                `json:"onboarding_completed"`
	JourneyStatus       enums.JourneyStatus `json:"journey_status"`
	UserStatus          *enums.UserStatus   `json:"user_status,omitempty"`
	BoostType           *enums.BoostType    `json:"boost_type,omitempty"`
	ScaleType           *enums.ScaleType    `json:"scale_type,omitempty"`
	SubmittedAt         *time.Time          `json:"submitted_at,omitempty"`
}

// CheckDTO folds the stored check/needs_help booleans back into the
// three-way answer the client submitted.
type CheckDTO struct {
	Answer enums.CheckAnswer `json:"answer"`
	Detail string            `json:"detail,omitempty"`
}

// NaturalRoleDTO is the co-builder assessment.
type NaturalRoleDTO struct {
	Description string   `json:"description"`
	Promise     CheckDTO `json:"promise"`
	Practice    CheckDTO `json:"practice"`
	Training    CheckDTO `json:"training"`
	Consulting  CheckDTO `json:"consulting"`
	IsReady     bool     `json:"is_ready"`
}

// CategoryDTO is one entrepreneur experience category.
type CategoryDTO struct {
	Has         bool   `json:"has"`
	Description string `json:"description,omitempty"`
	Count       int    `json:"count"`
	NeedsHelp   bool   `json:"needs_help"`
}

// EntrepreneurialDTO is the entrepreneur assessment.
type EntrepreneurialDTO struct {
	Project  CategoryDTO `json:"project"`
	Product  CategoryDTO `json:"product"`
	Team     CategoryDTO `json:"team"`
	Business CategoryDTO `json:"business"`
	Board    CategoryDTO `json:"board"`
}

// WizardDTO bundles state with whichever assessment records exist.
type WizardDTO struct {
	State           StateDTO            `json:"state"`
	NaturalRole     *NaturalRoleDTO     `json:"natural_role,omitempty"`
	Entrepreneurial *EntrepreneurialDTO `json:"entrepreneurial,omitempty"`
}

func stateDTO(state *models.OnboardingState) StateDTO {
	return StateDTO{
		PrimaryRole:         state.PrimaryRole,
		CurrentStep:         state.CurrentStep,
		OnboardingCompleted: state.OnboardingCompleted,
		JourneyStatus:       state.JourneyStatus,
		UserStatus:          state.UserStatus,
		BoostType:           state.BoostType,
		ScaleType:           state.ScaleType,
		SubmittedAt:         state.SubmittedAt,
	}
}

func checkDTO(checked, needsHelp bool, detail *string) CheckDTO {
	dto := CheckDTO{Answer: enums.CheckAnswerNo}
	if checked {
		dto.Answer = enums.CheckAnswerYes
	}
	if needsHelp {
		dto.Answer = enums.CheckAnswerNeedsHelp
	}
	if detail != nil {
		dto.Detail = *detail
	}
	return dto
}

func naturalRoleDTO(role *models.NaturalRole) *NaturalRoleDTO {
	if role == nil {
		return nil
	}
	return &NaturalRoleDTO{
		Description: role.Description,
		Promise:     checkDTO(role.PromiseCheck, role.PromiseNeedsHelp, role.PromiseDetail),
		Practice:    checkDTO(role.PracticeCheck, role.PracticeNeedsHelp, role.PracticeDetail),
		Training:    checkDTO(role.TrainingCheck, role.TrainingNeedsHelp, role.TrainingDetail),
		Consulting:  checkDTO(role.ConsultingCheck, role.ConsultingNeedsHelp, role.ConsultingDetail),
		IsReady:     role.IsReady,
	}
}

func categoryDTO(has bool, description *string, count int, needsHelp bool) CategoryDTO {
	dto := CategoryDTO{Has: has, Count: count, NeedsHelp: needsHelp}
	if description != nil {
		dto.Description = *description
	}
	return dto
}

func entrepreneurialDTO(record *models.EntrepreneurialOnboarding) *EntrepreneurialDTO {
	if record == nil {
		return nil
	}
	return &EntrepreneurialDTO{
		Project:  categoryDTO(record.HasProject, record.ProjectDescription, record.ProjectCount, record.ProjectNeedsHelp),
		Product:  categoryDTO(record.HasProduct, record.ProductDescription, record.ProductCount, record.ProductNeedsHelp),
		Team:     categoryDTO(record.HasTeam, record.TeamDescription, record.TeamCount, record.TeamNeedsHelp),
		Business: categoryDTO(record.HasBusiness, record.BusinessDescription, record.BusinessCount, record.BusinessNeedsHelp),
		Board:    categoryDTO(record.HasBoard, record.BoardDescription, record.BoardCount, record.BoardNeedsHelp),
	}
}
