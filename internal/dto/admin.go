package dto

import "ecg-academy/internal/domain"

// ClinicalImportRequest carries raw tabular rows.
// @Description Clinical outcome rows
type ClinicalImportRequest struct {
	Rows []domain.ClinicalRow `json:"rows"`
}

// ClinicalImportResponse is a partial-success result: valid rows are stored, invalid rows are reported.
type ClinicalImportResponse struct {
	Count  int      `json:"count"`
	Errors []string `json:"errors"`
}

// LinkedExportResponse holds the exposure-linkage table.
// When there are no clinical events NoData is set and CSV carries the message instead of a table.
type LinkedExportResponse struct {
	NoData   bool   `json:"noData"`
	RowCount int    `json:"rowCount"`
	CSV      string `json:"csv"`
}

type CollectionExportResponse struct {
	Collection string                   `json:"collection"`
	Count      int                      `json:"count"`
	Records    []map[string]interface{} `json:"records"`
}

// AdminUserStatRow is one line of the admin leaderboard.
type AdminUserStatRow struct {
	UID            string  `json:"uid"`
	EmployeeID     string  `json:"employeeId"`
	Email          string  `json:"email"`
	LoginCount     int64   `json:"loginCount"`
	TotalAttempts  int64   `json:"totalAttempts"`
	TotalCorrect   int64   `json:"totalCorrect"`
	Accuracy       int64   `json:"accuracy"` // rounded percent
	TotalPoints    int64   `json:"totalPoints"`
	LastActivityAt *string `json:"lastActivityAt"`
}

// DailyActivity is one UTC day of the admin activity chart.
type DailyActivity struct {
	Date          string `json:"date"`
	Views         int64  `json:"views"`
	Quizzes       int64  `json:"quizzes"`
	Logins        int64  `json:"logins"`
	Correct       int64  `json:"correct"`
	TotalAnswered int64  `json:"totalAnswered"`
	Accuracy      int64  `json:"accuracy"`
}
