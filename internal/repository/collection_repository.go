package repository

import (
	"context"

	"ecg-academy/internal/domain"
)

// ListDocuments reads a whole collection through its typed reader and returns generic documents.
func (s *OracleStore) ListDocuments(ctx context.Context, collection string) ([]domain.KeyedDocument, error) {
	var out []domain.KeyedDocument
	add := func(id string, doc domain.Document) {
		out = append(out, domain.KeyedDocument{ID: id, Fields: doc})
	}

	switch collection {
	case domain.CollectionUsers:
		rows, err := s.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			add(rows[i].UID, rows[i].ToDocument())
		}
	case domain.CollectionEvents:
		rows, err := s.QueryEvents(ctx, domain.EventQuery{})
		if err != nil {
			return nil, err
		}
		for i := range rows {
			add(rows[i].ID, rows[i].ToDocument())
		}
	case domain.CollectionAttempts:
		rows, err := s.listAttempts(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			add(rows[i].ID, rows[i].ToDocument())
		}
	case domain.CollectionClinical:
		rows, err := s.ListClinicalEvents(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			add(rows[i].ID, rows[i].ToDocument())
		}
	case domain.CollectionUserStats:
		rows, err := s.ListUserStats(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			add(rows[i].UID, rows[i].ToDocument())
		}
	case domain.CollectionCaseStats:
		rows, err := s.listCaseStats(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			add(rows[i].CaseID, rows[i].ToDocument())
		}
	case domain.CollectionPointsStats:
		rows, err := s.ListPointsStats(ctx)
		if err != nil {
			return nil, err
		}
		for i := range rows {
			add(rows[i].UID, rows[i].ToDocument())
		}
	case domain.CollectionCases:
		rows, err := s.ListCases(ctx, "")
		if err != nil {
			return nil, err
		}
		for i := range rows {
			add(rows[i].ID, rows[i].ToDocument())
		}
	case domain.CollectionPapers:
		rows, err := s.ListPapers(ctx, "")
		if err != nil {
			return nil, err
		}
		for i := range rows {
			add(rows[i].ID, rows[i].ToDocument())
		}
	default:
		return nil, domain.ErrUnknownCollection
	}
	return out, nil
}
