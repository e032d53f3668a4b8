// Package store persists documents.
package store

import (
	"context"
	"sync"

	"demandas/internal/document/models"
	"demandas/internal/form/retification"
	id "demandas/pkg/domain"
	"demandas/pkg/platform/sentinel"
)

// InMemoryStore keeps documents in process memory.
type InMemoryStore struct {
	mu        sync.RWMutex
	documents map[id.DocumentID]models.Document
}

// NewInMemory builds an empty store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{documents: make(map[id.DocumentID]models.Document)}
}

// Create stores a new document.
func (s *InMemoryStore) Create(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[doc.ID]; ok {
		return sentinel.ErrConflict
	}
	s.documents[doc.ID] = clone(*doc)
	return nil
}

// Update replaces a document. The stored version must be exactly one below
// the new one.
func (s *InMemoryStore) Update(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.documents[doc.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != doc.Version-1 {
		return sentinel.ErrConflict
	}
	s.documents[doc.ID] = clone(*doc)
	return nil
}

// FindByID returns a copy of the document.
func (s *InMemoryStore) FindByID(_ context.Context, docID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := clone(doc)
	return &out, nil
}

func clone(doc models.Document) models.Document {
	doc.Content.Form = doc.Content.Form.Clone()
	doc.Content.Retifications = append([]retification.Record{}, doc.Content.Retifications...)
	return doc
}
