package validation

import (
	"regexp"
	"strings"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"
)

const (
	maxIDLength        = 128
	maxMetaKeys        = 32
	maxQuizItems       = 200
	
)

var (
	contentIDPattern      = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)
	idempotencyKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateViewRequest validates a content view notification
func (v *Validator) ValidateViewRequest(req dto.ViewRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.Type) == "" {
		errors = append(errors, domain.NewMissingFieldError("type"))
	} else if !domain.ContentKind(req.Type).Valid() {
		errors = append(errors, domain.NewInvalidFormatError("type", req.Type))
	}
	errors = append(errors, validateID("id", req.ID)...)
	if len(req.Meta) > maxMetaKeys {
		errors = append(errors, domain.NewOutOfRangeError("meta", len(req.Meta), 0, maxMetaKeys))
	}
	return errors
}

// ValidateEventRequest validates a client event
func (v *Validator) ValidateEventRequest(req dto.EventRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.Action) == "" {
		errors = append(errors, domain.NewMissingFieldError("action"))
	} else if !domain.EventAction(req.Action).Valid() {
		errors = append(errors, domain.NewInvalidFormatError("action", req.Action))
	}
	switch domain.TargetType(req.TargetType) {
	case domain.TargetNone:
		if req.TargetID != "" {
			errors = append(errors, domain.NewMissingFieldError("targetType"))
		}
	case domain.TargetCase, domain.TargetPaper, domain.TargetQuiz:
		errors = append(errors, validateID("targetId", req.TargetID)...)
	default:
		errors = append(errors, domain.NewInvalidFormatError("targetType", req.TargetType))
	}
	if len(req.Meta) > maxMetaKeys {
		errors = append(errors, domain.NewOutOfRangeError("meta", len(req.Meta), 0, maxMetaKeys))
	}
	return errors
}

// ValidateSubmitQuizRequest checks the request shape. Counter consistency is checked by the quiz service.
func (v *Validator) ValidateSubmitQuizRequest(req dto.SubmitQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(req.Items) > maxQuizItems {
		errors = append(errors, domain.NewOutOfRangeError("items", len(req.Items), 0, maxQuizItems))
	}
	if req.IdempotencyKey != "" && !idempotencyKeyPattern.MatchString(req.IdempotencyKey) {
		errors = append(errors, domain.NewInvalidFormatError("idempotencyKey", req.IdempotencyKey))
	}
	for _, it := range req.Items {
		if it.CaseID != "" && !isValidContentID(it.CaseID) {
			errors = append(errors, domain.NewInvalidFormatError("items.caseId", it.CaseID))
			break
		}
	}
	return errors
}

// ValidateSessionID validates the X-Session-ID header value
func (v *Validator) ValidateSessionID(sessionID string) domain.ValidationErrors {
	return validateID("X-Session-ID", sessionID)
}

// ValidateClinicalImportRequest rejects an empty upload
func (v *Validator) ValidateClinicalImportRequest(req dto.ClinicalImportRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if len(req.Rows) == 0 {
		errors = append(errors, domain.NewMissingFieldError("rows"))
	}
	return errors
}

// ValidateExportFormat validates the format query parameter
func (v *Validator) ValidateExportFormat(format string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	switch format {
	case "", "json", "csv":
	default:
		errors = append(errors, domain.NewInvalidFormatError("format", format))
	}
	return errors
}

func validateID(field, id string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError(field))
	} else if !isValidContentID(id) {
		errors = append(errors, domain.NewInvalidFormatError(field, id))
	}
	return errors
}

// isValidContentID allows ULIDs and the slug-style IDs used by the content catalog
func isValidContentID(s string) bool {
	if len(s) == 0 || len(s) > maxIDLength {
		return false
	}
	return contentIDPattern.MatchString(s)
}
