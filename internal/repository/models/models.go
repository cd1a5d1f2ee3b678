package models

import (
	"database/sql"
	"time"
)

// Oracle returns column names in upper case, so every db tag is upper case.

type User struct {
	UserID      string         `db:"USER_ID"`
	EmployeeID  sql.NullString `db:"EMPLOYEE_ID"`
	Email       sql.NullString `db:"EMAIL"`
	Role        sql.NullString `db:"ROLE"`
	CreatedAt   time.Time      `db:"CREATED_AT"`
	LastLoginAt sql.NullTime   `db:"LAST_LOGIN_AT"`
}

type Event struct {
	ID         string         `db:"ID"`
	UserID     string         `db:"USER_ID"`
	EmployeeID sql.NullString `db:"EMPLOYEE_ID"`
	CreatedAt  time.Time      `db:"CREATED_AT"`
	Action     string         `db:"ACTION"`
	TargetType sql.NullString `db:"TARGET_TYPE"`
	TargetID   sql.NullString `db:"TARGET_ID"`
	Meta       JSONMap        `db:"META"`
}

type QuizAttempt struct {
	ID             string         `db:"ID"`
	UserID         string         `db:"USER_ID"`
	EmployeeID     sql.NullString `db:"EMPLOYEE_ID"`
	CreatedAt      time.Time      `db:"CREATED_AT"`
	CategoryFilter sql.NullString `db:"CATEGORY_FILTER"`
	Total          int            `db:"TOTAL"`
	Correct        int            `db:"CORRECT"`
	PointsEarned   int64          `db:"POINTS_EARNED"`
	Items          AttemptItems   `db:"ITEMS"`
}

type UserStats struct {
	UserID        string       `db:"USER_ID"`
	TotalAttempts int64        `db:"TOTAL_ATTEMPTS"`
	TotalAnswered int64        `db:"TOTAL_ANSWERED"`
	TotalCorrect  int64        `db:"TOTAL_CORRECT"`
	UpdatedAt     sql.NullTime `db:"UPDATED_AT"`
}

type CaseStats struct {
	CaseID        string       `db:"CASE_ID"`
	TotalAnswered int64        `db:"TOTAL_ANSWERED"`
	TotalCorrect  int64        `db:"TOTAL_CORRECT"`
	UpdatedAt     sql.NullTime `db:"UPDATED_AT"`
}

type PointsStats struct {
	UserID        string       `db:"USER_ID"`
	TotalPoints   int64        `db:"TOTAL_POINTS"`
	ContentPoints int64        `db:"CONTENT_POINTS"`
	QuizPoints    int64        `db:"QUIZ_POINTS"`
	LoginPoints   int64        `db:"LOGIN_POINTS"`
	BonusPoints   int64        `db:"BONUS_POINTS"`
	UpdatedAt     sql.NullTime `db:"UPDATED_AT"`
}

type ContentStatus struct {
	UserID    string       `db:"USER_ID"`
	UpdatedAt sql.NullTime `db:"UPDATED_AT"`
}

// ContentRead is one member of a user's read set.
type ContentRead struct {
	UserID    string `db:"USER_ID"`
	ListName  string `db:"LIST_NAME"`
	ContentID string `db:"CONTENT_ID"`
}

type ClinicalEvent struct {
	ID                      string         `db:"ID"`
	PatientEncounterID      string         `db:"PATIENT_ENCOUNTER_ID"`
	AttendingEmployeeID     string         `db:"ATTENDING_EMPLOYEE_ID"`
	ShiftDateTime           time.Time      `db:"SHIFT_DATE_TIME"`
	ECGTime                 sql.NullTime   `db:"ECG_TIME"`
	DoorTime                sql.NullTime   `db:"DOOR_TIME"`
	ActivationTime          sql.NullTime   `db:"ACTIVATION_TIME"`
	CathStartTime           sql.NullTime   `db:"CATH_START_TIME"`
	IsTrueOMI               int            `db:"IS_TRUE_OMI"`
	IsCulpritOcclusion      int            `db:"IS_CULPRIT_OCCLUSION"`
	Adjudicator             sql.NullString `db:"ADJUDICATOR"`
	AdjudicatedAt           sql.NullTime   `db:"ADJUDICATED_AT"`
	Activated               int            `db:"ACTIVATED"`
	ActivationAppropriate   int            `db:"ACTIVATION_APPROPRIATE"`
	DoorToActivationMinutes sql.NullInt64  `db:"DOOR_TO_ACTIVATION_MINUTES"`
	ECGToActivationMinutes  sql.NullInt64  `db:"ECG_TO_ACTIVATION_MINUTES"`
	CreatedAt               time.Time      `db:"CREATED_AT"`
	UpdatedAt               time.Time      `db:"UPDATED_AT"`
}

type Case struct {
	ID        string         `db:"ID"`
	Title     string         `db:"TITLE"`
	Category  sql.NullString `db:"CATEGORY"`
	Status    string         `db:"STATUS"`
	CreatedAt time.Time      `db:"CREATED_AT"`
	UpdatedAt time.Time      `db:"UPDATED_AT"`
}

type Paper struct {
	ID        string         `db:"ID"`
	Title     string         `db:"TITLE"`
	Authors   sql.NullString `db:"AUTHORS"`
	Journal   sql.NullString `db:"JOURNAL"`
	PubYear   sql.NullInt64  `db:"PUB_YEAR"`
	Tags      StringSlice    `db:"TAGS"`
	Status    string         `db:"STATUS"`
	CreatedAt time.Time      `db:"CREATED_AT"`
	UpdatedAt time.Time      `db:"UPDATED_AT"`
}
