package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"ecg-academy/internal/domain"
	"ecg-academy/internal/dto"

	"go.uber.org/zap"
)

// IDColumn is the record key prepended to every exported document.
const IDColumn = "_id"

// CollectionExportService dumps whole allow-listed collections for offline analysis.
type CollectionExportService interface {
	ExportJSON(ctx context.Context, collection string) (*dto.CollectionExportResponse, error)
	ExportCSV(ctx context.Context, collection string) (string, error)
}

type collectionExportServiceImpl struct {
	store  domain.CollectionReader
	logger *zap.Logger
}

func NewCollectionExportService(store domain.CollectionReader, logger *zap.Logger) CollectionExportService {
	return &collectionExportServiceImpl{store: store, logger: logger}
}

func (s *collectionExportServiceImpl) ExportJSON(ctx context.Context, collection string) (*dto.CollectionExportResponse, error) {
	records, err := s.records(ctx, collection)
	if err != nil {
		return nil, err
	}
	return &dto.CollectionExportResponse{Collection: collection, Count: len(records), Records: records}, nil
}

func (s *collectionExportServiceImpl) ExportCSV(ctx context.Context, collection string) (string, error) {
	records, err := s.records(ctx, collection)
	if err != nil {
		return "", err
	}
	out, err := FlattenToCSV(records)
	if err != nil {
		return "", domain.NewInternalError("failed to render collection csv", err)
	}
	return out, nil
}

func (s *collectionExportServiceImpl) records(ctx context.Context, collection string) ([]map[string]interface{}, error) {
	if !domain.IsExportable(collection) {
		return nil, domain.NewInvalidInputError("Invalid collection").WithContext("collection", collection)
	}
	docs, err := s.store.ListDocuments(ctx, collection)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownCollection) {
			return nil, domain.NewInvalidInputError("Invalid collection").WithContext("collection", collection)
		}
		return nil, domain.NewInternalError(fmt.Sprintf("failed to read %s", collection), err)
	}

	records := make([]map[string]interface{}, 0, len(docs))
	for _, doc := range docs {
		rec := map[string]interface{}{IDColumn: doc.ID}
		for k, v := range doc.Fields {
			rec[k] = serializeTimestamps(v)
		}
		records = append(records, rec)
	}
	s.logger.Info("exported collection", zap.String("collection", collection), zap.Int("count", len(records)))
	return records, nil
}

// serializeTimestamps replaces every time value with its ISO string, descending into maps and slices.
func serializeTimestamps(v interface{}) interface{} {
	switch t := v.(type) {
	case time.Time:
		return isoTime(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return isoTime(*t)
	case domain.Document:
		return serializeMap(t)
	case map[string]interface{}:
		return serializeMap(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = serializeTimestamps(item)
		}
		return out
	default:
		return v
	}
}

func serializeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, item := range m {
		out[k] = serializeTimestamps(item)
	}
	return out
}

// FlattenToCSV renders records as CSV. Nested objects become dotted columns, arrays are
// JSON encoded into one cell, and the header is the sorted union of keys with _id first.
func FlattenToCSV(records []map[string]interface{}) (string, error) {
	flat := make([]map[string]string, 0, len(records))
	keys := make(map[string]bool)
	for _, rec := range records {
		row := make(map[string]string)
		if err := flattenInto(row, "", rec); err != nil {
			return "", err
		}
		for k := range row {
			keys[k] = true
		}
		flat = append(flat, row)
	}

	header := make([]string, 0, len(keys))
	for k := range keys {
		if k != IDColumn {
			header = append(header, k)
		}
	}
	sort.Strings(header)
	header = append([]string{IDColumn}, header...)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return "", err
	}
	for _, row := range flat {
		line := make([]string, len(header))
		for i, k := range header {
			line[i] = row[k]
		}
		if err := w.Write(line); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func flattenInto(row map[string]string, prefix string, m map[string]interface{}) error {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]interface{}:
			if err := flattenInto(row, key, t); err != nil {
				return err
			}
		case domain.Document:
			if err := flattenInto(row, key, t); err != nil {
				return err
			}
		case nil:
			row[key] = ""
		case string:
			row[key] = t
		case []interface{}, []string:
			b, err := json.Marshal(t)
			if err != nil {
				return fmt.Errorf("column %s: %w", key, err)
			}
			row[key] = string(b)
		default:
			row[key] = fmt.Sprint(t)
		}
	}
	return nil
}
