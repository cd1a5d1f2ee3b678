package validation

import (
	"strings"
	"testing"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestValidateViewRequest(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateViewRequest(dto.ViewRequest{Type: "case", ID: "01HZX3J8QW7V2T6N8K4R5M9P0A"}))
	assert.Empty(t, v.ValidateViewRequest(dto.ViewRequest{Type: "paper", ID: "stemi-equivalents_2023"}))

	errs := v.ValidateViewRequest(dto.ViewRequest{})
	if assert.Len(t, errs, 2) {
		assert.Equal(t, domain.CodeMissingField, errs[0].Code)
		assert.Equal(t, "type", errs[0].Field)
		assert.Equal(t, "id", errs[1].Field)
	}

	errs = v.ValidateViewRequest(dto.ViewRequest{Type: "video", ID: "has space"})
	if assert.Len(t, errs, 2) {
		assert.Equal(t, domain.CodeInvalidFormat, errs[0].Code)
		assert.Equal(t, domain.CodeInvalidFormat, errs[1].Code)
	}

	errs = v.ValidateViewRequest(dto.ViewRequest{Type: "case", ID: strings.Repeat("a", 129)})
	assert.Len(t, errs, 1)
}

func TestValidateEventRequest(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateEventRequest(dto.EventRequest{Action: "start_quiz"}))
	assert.Empty(t, v.ValidateEventRequest(dto.EventRequest{Action: "submit_case_answer", TargetType: "case", TargetID: "c1"}))

	errs := v.ValidateEventRequest(dto.EventRequest{Action: "login", TargetID: "orphan"})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "targetType", errs[0].Field)
	}

	meta := map[string]interface{}{}
	for i := 0; i < 33; i++ {
		meta[strings.Repeat("k", i+1)] = i
	}
	errs = v.ValidateEventRequest(dto.EventRequest{Action: "start_quiz", Meta: meta})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, domain.CodeOutOfRange, errs[0].Code)
	}
}

func TestValidateSubmitQuizRequest(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateSubmitQuizRequest(dto.SubmitQuizRequest{IdempotencyKey: "01HZX3J8QW7V2T6N8K4R5M9P0A"}))

	errs := v.ValidateSubmitQuizRequest(dto.SubmitQuizRequest{IdempotencyKey: "short"})
	assert.Len(t, errs, 1)

	items := make([]dto.QuizItemRequest, 201)
	errs = v.ValidateSubmitQuizRequest(dto.SubmitQuizRequest{Items: items})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "items", errs[0].Field)
	}

	errs = v.ValidateSubmitQuizRequest(dto.SubmitQuizRequest{Items: []dto.QuizItemRequest{{CaseID: "a/b"}}})
	if assert.Len(t, errs, 1) {
		assert.Equal(t, "items.caseId", errs[0].Field)
	}
}

func TestValidateExportFormat(t *testing.T) {
	v := NewValidator()
	for _, f := range []string{"", "json", "csv"} {
		assert.Empty(t, v.ValidateExportFormat(f), f)
	}
	assert.Len(t, v.ValidateExportFormat("xlsx"), 1)
}

func TestValidateClinicalImportRequest(t *testing.T) {
	v := NewValidator()
	assert.Len(t, v.ValidateClinicalImportRequest(dto.ClinicalImportRequest{}), 1)
	assert.Empty(t, v.ValidateClinicalImportRequest(dto.ClinicalImportRequest{Rows: []domain.ClinicalRow{{}}}))
}
