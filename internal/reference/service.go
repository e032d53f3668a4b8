package reference

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"demandas/internal/form/models"
	dErrors "demandas/pkg/domain-errors"
)

// Service answers catalog queries.
type Service struct {
	catalog *Catalog
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New builds a Service over catalog. A nil catalog means the static seed.
func New(catalog *Catalog, opts ...Option) *Service {
	if catalog == nil {
		catalog = StaticCatalog()
	}
	s := &Service{catalog: catalog, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DocumentTypes lists every document type.
func (s *Service) DocumentTypes(_ context.Context) []DocumentType {
	return slices.Clone(s.catalog.DocumentTypes)
}

// Subjects lists the subjects allowed for docType.
func (s *Service) Subjects(_ context.Context, docType string) ([]string, error) {
	for _, dt := range s.catalog.DocumentTypes {
		if dt.Name == docType {
			return slices.Clone(dt.Subjects), nil
		}
	}
	return nil, dErrors.New(dErrors.CodeNotFound, "document type not found")
}

// Pool returns the candidates of a lookup field. Addressing is not a flat
// pool; use Addressing instead.
func (s *Service) Pool(_ context.Context, name string) ([]models.SearchableValue, error) {
	switch name {
	case PoolRecipients:
		out := make([]models.SearchableValue, len(s.catalog.Recipients))
		for i, r := range s.catalog.Recipients {
			out[i] = r.SearchableValue
		}
		return out, nil
	case PoolAuthorities:
		return slices.Clone(s.catalog.Authorities), nil
	case PoolCourts:
		return slices.Clone(s.catalog.Courts), nil
	case PoolAnalysts:
		return slices.Clone(s.catalog.Analysts), nil
	case PoolMediaTypes:
		return slices.Clone(s.catalog.MediaTypes), nil
	case PoolIdentifierTypes:
		return slices.Clone(s.catalog.IdentifierTypes), nil
	default:
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown pool: "+name)
	}
}

// Addressing returns the addressing options of a recipient. Free-text
// recipients and recipients without structured addressing have none.
func (s *Service) Addressing(_ context.Context, recipient *models.SearchableValue) []models.SearchableValue {
	if recipient == nil || recipient.IsFreeText() {
		return []models.SearchableValue{}
	}
	for _, r := range s.catalog.Recipients {
		if r.ID == recipient.ID {
			return slices.Clone(r.Addressing)
		}
	}
	return []models.SearchableValue{}
}

// PoolNames lists the flat pools in a stable order.
func PoolNames() []string {
	return []string{PoolRecipients, PoolAuthorities, PoolCourts, PoolAnalysts, PoolMediaTypes, PoolIdentifierTypes}
}

// Bootstrap assembles document types and every flat pool concurrently.
func (s *Service) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	out := &Bootstrap{Pools: make(map[string][]models.SearchableValue)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range PoolNames() {
		g.Go(func() error {
			pool, err := s.Pool(gctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			out.Pools[name] = pool
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		types := s.DocumentTypes(gctx)
		mu.Lock()
		out.DocumentTypes = types
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "reference bootstrap failed", "error", err)
		return nil, err
	}
	return out, nil
}
