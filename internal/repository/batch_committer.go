package repository

import (
	"context"
	"fmt"
	"time"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/repository/models"
	"ecg-academy/internal/util"

	"github.com/jmoiron/sqlx"
)

// OracleStore implements domain.Store. Commit runs the whole batch in one transaction.
type OracleStore struct {
	db    *sqlx.DB
	tm    TransactionManager
	clock domain.Clock
}

var _ domain.Store = (*OracleStore)(nil)

func NewOracleStore(db *sqlx.DB, clock domain.Clock) *OracleStore {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &OracleStore{db: db, tm: NewTransactionManagerAdapter(db), clock: clock}
}

func (s *OracleStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type counterTable struct {
	table   string
	key     string
	columns map[string]string
}

var counterTables = map[string]counterTable{
	domain.CollectionUserStats: {
		table: "user_stats",
		key:   "user_id",
		columns: map[string]string{
			domain.FieldTotalAttempts: "total_attempts",
			domain.FieldTotalAnswered: "total_answered",
			domain.FieldTotalCorrect:  "total_correct",
		},
	},
	domain.CollectionCaseStats: {
		table: "case_stats",
		key:   "case_id",
		columns: map[string]string{
			domain.FieldTotalAnswered: "total_answered",
			domain.FieldTotalCorrect:  "total_correct",
		},
	},
	domain.CollectionPointsStats: {
		table: "points_stats",
		key:   "user_id",
		columns: map[string]string{
			domain.FieldTotalPoints:      "total_points",
			domain.BucketContent.Field(): "content_points",
			domain.BucketQuiz.Field():    "quiz_points",
			domain.BucketLogin.Field():   "login_points",
			domain.BucketBonus.Field():   "bonus_points",
		},
	},
}

type keyedTable struct {
	table string
	key   string
}

// deleteTables lists the rows removed for a document delete, children first.
var deleteTables = map[string][]keyedTable{
	domain.CollectionUsers:         {{"users", "user_id"}},
	domain.CollectionEvents:        {{"events", "id"}},
	domain.CollectionAttempts:      {{"quiz_attempts", "id"}},
	domain.CollectionClinical:      {{"clinical_events", "id"}},
	domain.CollectionUserStats:     {{"user_stats", "user_id"}},
	domain.CollectionCaseStats:     {{"case_stats", "case_id"}},
	domain.CollectionPointsStats:   {{"points_stats", "user_id"}},
	domain.CollectionContentStatus: {{"user_content_reads", "user_id"}, {"user_content_status", "user_id"}},
	domain.CollectionCases:         {{"cases", "id"}},
	domain.CollectionPapers:        {{"papers", "id"}},
}

var readLists = map[string]bool{
	domain.FieldCasesRead:        true,
	domain.FieldPapersRead:       true,
	domain.FieldQuizzesCompleted: true,
}

// Commit applies every mutation inside one transaction. Any failure rolls back the whole batch.
func (s *OracleStore) Commit(ctx context.Context, batch *domain.Batch) error {
	if err := batch.Validate(); err != nil {
		return err
	}
	now := s.clock.Now().UTC()

	return s.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, s.db)
		for i, m := range batch.Mutations() {
			if err := s.apply(txCtx, exec, m, now); err != nil {
				return fmt.Errorf("mutation %d (%s %s/%s): %w", i, m.Kind, m.Collection, m.Key, err)
			}
		}
		return nil
	})
}

func (s *OracleStore) apply(ctx context.Context, exec DBTX, m domain.Mutation, now time.Time) error {
	switch m.Kind {
	case domain.MutationCreate:
		m.Doc.StampServerTime(now)
		query, args, err := insertStatement(m.Collection, m.Key, m.Doc)
		if err != nil {
			return err
		}
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrAlreadyExists
			}
			return err
		}
	case domain.MutationIncrement:
		ct, ok := counterTables[m.Collection]
		if !ok {
			return fmt.Errorf("%w: %s has no counters", domain.ErrUnknownField, m.Collection)
		}
		col, ok := ct.columns[m.Field]
		if !ok {
			return domain.ErrUnknownField
		}
		query := fmt.Sprintf(`MERGE INTO %s t USING (SELECT :1 AS k FROM dual) s ON (t.%s = s.k)
WHEN MATCHED THEN UPDATE SET t.%s = t.%s + :2, t.updated_at = :3
WHEN NOT MATCHED THEN INSERT (%s, %s, updated_at) VALUES (s.k, :4, :5)`,
			ct.table, ct.key, col, col, ct.key, col)
		if _, err := exec.ExecContext(ctx, query, m.Key, m.Delta, now, m.Delta, now); err != nil {
			return err
		}
	case domain.MutationArrayUnion:
		if m.Collection != domain.CollectionContentStatus {
			return fmt.Errorf("%w: %s has no set fields", domain.ErrUnknownField, m.Collection)
		}
		if !readLists[m.Field] {
			return domain.ErrUnknownField
		}
		if _, err := exec.ExecContext(ctx, upsertContentStatusSQL, m.Key, now, now); err != nil {
			return err
		}
		for _, v := range m.Values {
			if _, err := exec.ExecContext(ctx, addContentReadSQL, m.Key, m.Field, v, now); err != nil {
				return err
			}
		}
	case domain.MutationDelete:
		tables, ok := deleteTables[m.Collection]
		if !ok {
			return domain.ErrUnknownCollection
		}
		for _, t := range tables {
			query := fmt.Sprintf("DELETE FROM %s WHERE %s = :1", t.table, t.key)
			if _, err := exec.ExecContext(ctx, query, m.Key); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported mutation kind %d", m.Kind)
	}
	return nil
}

const upsertContentStatusSQL = `MERGE INTO user_content_status t USING (SELECT :1 AS user_id FROM dual) s ON (t.user_id = s.user_id)
WHEN MATCHED THEN UPDATE SET t.updated_at = :2
WHEN NOT MATCHED THEN INSERT (user_id, updated_at) VALUES (s.user_id, :3)`

// addContentReadSQL is an add-if-absent; existing members are left untouched.
const addContentReadSQL = `MERGE INTO user_content_reads t
USING (SELECT :1 AS user_id, :2 AS list_name, :3 AS content_id FROM dual) s
ON (t.user_id = s.user_id AND t.list_name = s.list_name AND t.content_id = s.content_id)
WHEN NOT MATCHED THEN INSERT (user_id, list_name, content_id, added_at) VALUES (s.user_id, s.list_name, s.content_id, :4)`

func insertStatement(collection, key string, doc domain.ServerStamped) (string, []interface{}, error) {
	switch d := doc.(type) {
	case *domain.User:
		if collection == domain.CollectionUsers {
			return "INSERT INTO users (user_id, employee_id, email, role, created_at, last_login_at) VALUES (" + binds(1, 6) + ")",
				[]interface{}{key, util.StringToNullString(d.EmployeeID), util.StringToNullString(d.Email),
					util.StringToNullString(d.Role), d.CreatedAt, util.TimePtrToNullTime(d.LastLoginAt)}, nil
		}
	case *domain.Event:
		if collection == domain.CollectionEvents {
			return "INSERT INTO events (id, user_id, employee_id, created_at, action, target_type, target_id, meta) VALUES (" + binds(1, 8) + ")",
				[]interface{}{key, d.UID, util.StringToNullString(d.EmployeeID), d.CreatedAt, string(d.Action),
					util.StringToNullString(string(d.TargetType)), util.StringToNullString(d.TargetID), models.JSONMap(d.Meta)}, nil
		}
	case *domain.QuizAttempt:
		if collection == domain.CollectionAttempts {
			return "INSERT INTO quiz_attempts (id, user_id, employee_id, created_at, category_filter, total, correct, points_earned, items) VALUES (" + binds(1, 9) + ")",
				[]interface{}{key, d.UID, util.StringToNullString(d.EmployeeID), d.CreatedAt, util.StringToNullString(d.CategoryFilter),
					d.Total, d.Correct, d.PointsEarned, fromDomainItems(d.Items)}, nil
		}
	case *domain.ClinicalEvent:
		if collection == domain.CollectionClinical {
			var adjudicator string
			if d.OutcomeAdjudication.Adjudicator != nil {
				adjudicator = *d.OutcomeAdjudication.Adjudicator
			}
			return `INSERT INTO clinical_events (id, patient_encounter_id, attending_employee_id, shift_date_time, ecg_time, door_time,
activation_time, cath_start_time, is_true_omi, is_culprit_occlusion, adjudicator, adjudicated_at, activated,
activation_appropriate, door_to_activation_minutes, ecg_to_activation_minutes, created_at, updated_at) VALUES (` + binds(1, 18) + ")",
				[]interface{}{key, d.PatientEncounterID, d.AttendingEmployeeID, d.ShiftDateTime.UTC(),
					util.TimePtrToNullTime(d.ECGTime), util.TimePtrToNullTime(d.DoorTime),
					util.TimePtrToNullTime(d.ActivationTime), util.TimePtrToNullTime(d.CathStartTime),
					util.BoolToNumber(d.OutcomeAdjudication.IsTrueOMI), util.BoolToNumber(d.OutcomeAdjudication.IsCulpritOcclusion),
					util.StringToNullString(adjudicator), util.TimePtrToNullTime(d.OutcomeAdjudication.AdjudicatedAt),
					util.BoolToNumber(d.Activation.Activated), util.BoolToNumber(d.Activation.ActivationAppropriate),
					util.Int64PtrToNullInt64(d.TimingDerived.DoorToActivationMinutes), util.Int64PtrToNullInt64(d.TimingDerived.ECGToActivationMinutes),
					d.CreatedAt, d.UpdatedAt}, nil
		}
	case *domain.Case:
		if collection == domain.CollectionCases {
			return "INSERT INTO cases (id, title, category, status, created_at, updated_at) VALUES (" + binds(1, 6) + ")",
				[]interface{}{key, d.Title, util.StringToNullString(d.Category), string(d.Status), d.CreatedAt, d.UpdatedAt}, nil
		}
	case *domain.Paper:
		if collection == domain.CollectionPapers {
			var year interface{}
			if d.Year > 0 {
				year = d.Year
			}
			return "INSERT INTO papers (id, title, authors, journal, pub_year, tags, status, created_at, updated_at) VALUES (" + binds(1, 9) + ")",
				[]interface{}{key, d.Title, util.StringToNullString(d.Authors), util.StringToNullString(d.Journal), year,
					models.StringSlice(d.Tags), string(d.Status), d.CreatedAt, d.UpdatedAt}, nil
		}
	}
	return "", nil, fmt.Errorf("document %T cannot be created in %s", doc, collection)
}
