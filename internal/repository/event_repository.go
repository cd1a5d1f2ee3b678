package repository

import (
	"context"
	"fmt"
	"strings"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/repository/models"
)

const eventColumns = "id, user_id, employee_id, created_at, action, target_type, target_id, meta"

// buildEventQuery renders an EventQuery as Oracle SQL with positional binds.
func buildEventQuery(q domain.EventQuery) (string, []interface{}, error) {
	if len(q.Values) > domain.MaxInValues {
		return "", nil, domain.ErrTooManyFilterValues
	}

	var (
		where []string
		args  []interface{}
	)
	if len(q.Values) > 0 {
		column := "employee_id"
		if q.Field == domain.EventFieldUID {
			column = "user_id"
		}
		where = append(where, fmt.Sprintf("%s IN (%s)", column, binds(len(args)+1, len(q.Values))))
		for _, v := range q.Values {
			args = append(args, v)
		}
	}
	if q.Since != nil {
		args = append(args, q.Since.UTC())
		where = append(where, fmt.Sprintf("created_at >= :%d", len(args)))
	}
	if q.Action != "" {
		args = append(args, string(q.Action))
		where = append(where, fmt.Sprintf("action = :%d", len(args)))
	}

	query := "SELECT " + eventColumns + " FROM events"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if q.Order == domain.SortDescending {
		query += " ORDER BY created_at DESC, id DESC"
	} else {
		query += " ORDER BY created_at ASC, id ASC"
	}
	return query, args, nil
}

func (s *OracleStore) QueryEvents(ctx context.Context, q domain.EventQuery) ([]domain.Event, error) {
	query, args, err := buildEventQuery(q)
	if err != nil {
		return nil, err
	}
	var rows []models.Event
	if err := GetExecutor(ctx, s.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	out := make([]domain.Event, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainEvent(&rows[i]))
	}
	return out, nil
}
