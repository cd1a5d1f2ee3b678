package domain

import (
	"context"
	"time"
)

// Document is the generic field map of a stored record, used by collection export.
// Timestamp fields hold time.Time values.
type Document map[string]interface{}

// KeyedDocument pairs a document with its key.
type KeyedDocument struct {
	ID     string
	Fields Document
}

// ExportableCollections is the allow-list for generic collection export.
var ExportableCollections = []string{
	CollectionUsers,
	CollectionEvents,
	CollectionAttempts,
	CollectionClinical,
	CollectionUserStats,
	CollectionCaseStats,
	CollectionPointsStats,
	CollectionCases,
	CollectionPapers,
}

// IsExportable reports whether name is on the export allow-list.
func IsExportable(name string) bool {
	for _, c := range ExportableCollections {
		if c == name {
			return true
		}
	}
	return false
}

// CollectionReader fetches every document of a collection.
// Unknown collections return ErrUnknownCollection.
type CollectionReader interface {
	ListDocuments(ctx context.Context, collection string) ([]KeyedDocument, error)
}

func (e *Event) ToDocument() Document {
	var targetType, targetID interface{}
	if e.TargetType != TargetNone {
		targetType = string(e.TargetType)
	}
	if e.TargetID != "" {
		targetID = e.TargetID
	}
	meta := e.Meta
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return Document{
		"uid":        e.UID,
		"employeeId": e.EmployeeID,
		"createdAt":  e.CreatedAt,
		"action":     string(e.Action),
		"targetType": targetType,
		"targetId":   targetID,
		"meta":       map[string]interface{}(meta),
	}
}

// Store is the full persistence port: atomic batch writes plus every read model.
type Store interface {
	BatchCommitter
	EventReader
	ContentStatusReader
	PointsReader
	StatsReader
	AttemptReader
	ClinicalReader
	CatalogReader
	UserRepository
	CollectionReader
	Ping(ctx context.Context) error
}

// Since returns a pointer for EventQuery.Since.
func Since(t time.Time) *time.Time {
	return &t
}
