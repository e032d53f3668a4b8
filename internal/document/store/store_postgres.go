package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"demandas/internal/document/models"
	id "demandas/pkg/domain"
	"demandas/pkg/platform/sentinel"
	txcontext "demandas/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists documents with their content as JSONB. Writes join
// the transaction carried by the context, if any.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres builds a store over db.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new document.
func (s *PostgresStore) Create(ctx context.Context, doc *models.Document) error {
	payload, err := json.Marshal(doc.Content)
	if err != nil {
		return fmt.Errorf("marshal document content: %w", err)
	}
	query := `
		INSERT INTO documents (
			id, demanda_id, document_type, subject, number, payload,
			version, created_by, updated_by, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(doc.ID),
		uuid.UUID(doc.DemandaID),
		doc.DocumentType,
		doc.Subject,
		doc.Number,
		payload,
		doc.Version,
		nullableUUID(uuid.UUID(doc.CreatedBy)),
		nullableUUID(uuid.UUID(doc.UpdatedBy)),
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Update writes a new revision. It only succeeds when the stored version is
// the one the revision was based on.
func (s *PostgresStore) Update(ctx context.Context, doc *models.Document) error {
	payload, err := json.Marshal(doc.Content)
	if err != nil {
		return fmt.Errorf("marshal document content: %w", err)
	}
	query := `
		UPDATE documents
		SET demanda_id = $2, document_type = $3, subject = $4, number = $5,
			payload = $6, version = $7, updated_by = $8, updated_at = $9
		WHERE id = $1 AND version = $7 - 1
	`
	res, err := txcontext.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(doc.ID),
		uuid.UUID(doc.DemandaID),
		doc.DocumentType,
		doc.Subject,
		doc.Number,
		payload,
		doc.Version,
		nullableUUID(uuid.UUID(doc.UpdatedBy)),
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := s.FindByID(ctx, doc.ID); err != nil {
		return err
	}
	return sentinel.ErrConflict
}

// FindByID loads a document.
func (s *PostgresStore) FindByID(ctx context.Context, docID id.DocumentID) (*models.Document, error) {
	query := `
		SELECT id, demanda_id, document_type, subject, number, payload,
			version, created_by, updated_by, created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	var (
		doc                  models.Document
		docUUID, demandaUUID uuid.UUID
		createdBy, updatedBy uuid.NullUUID
		payload              []byte
	)
	err := txcontext.Executor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(docID)).Scan(
		&docUUID, &demandaUUID, &doc.DocumentType, &doc.Subject, &doc.Number, &payload,
		&doc.Version, &createdBy, &updatedBy, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	if err := json.Unmarshal(payload, &doc.Content); err != nil {
		return nil, fmt.Errorf("unmarshal document content: %w", err)
	}
	doc.ID = id.DocumentID(docUUID)
	doc.DemandaID = id.DemandaID(demandaUUID)
	doc.CreatedBy = id.AnalystID(createdBy.UUID)
	doc.UpdatedBy = id.AnalystID(updatedBy.UUID)
	return &doc, nil
}

func nullableUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}
