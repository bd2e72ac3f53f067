package memory

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zatekoja/medlibrary/internal/catalog"
	"github.com/zatekoja/medlibrary/internal/domain/entities"
	"github.com/zatekoja/medlibrary/internal/domain/repositories"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
	"github.com/zatekoja/medlibrary/internal/query"
	apperrors "github.com/zatekoja/medlibrary/pkg/errors"
)

// ProcedureAdapter implements ProcedureRepository over the loaded catalog
type ProcedureAdapter struct {
	catalog *catalog.Catalog
	metrics *observability.Metrics
}

// NewProcedureAdapter creates a new procedure adapter. metrics may be nil.
func NewProcedureAdapter(c *catalog.Catalog, metrics *observability.Metrics) repositories.ProcedureRepository {
	return &ProcedureAdapter{catalog: c, metrics: metrics}
}

// Stores lists the procedure stores with their record counts
func (a *ProcedureAdapter) Stores(ctx context.Context) ([]repositories.StoreSummary, error) {
	stores := a.catalog.Stores()
	out := make([]repositories.StoreSummary, 0, len(stores))
	for _, s := range stores {
		out = append(out, repositories.StoreSummary{Name: s.Name(), Count: s.Len()})
	}
	return out, nil
}

// GetByID retrieves a procedure by its procedureId
func (a *ProcedureAdapter) GetByID(ctx context.Context, store entities.StoreName, id string) (*entities.ProcedureEntry, error) {
	s, err := a.store(store)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "ProcedureAdapter.GetByID")
	defer span.End()
	span.SetAttributes(attribute.String("library.store", string(store)), attribute.String("procedure.id", id))

	entry, ok := s.FindByProcedureID(id)
	if !ok {
		observability.RecordQueryMetric(ctx, a.metrics, string(store), "get", 0)
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("procedure %s not found in %s", id, store))
	}
	observability.RecordQueryMetric(ctx, a.metrics, string(store), "get", 1)
	return entry, nil
}

// GetByIDs retrieves the procedures that exist among ids, skipping unknown ones
func (a *ProcedureAdapter) GetByIDs(ctx context.Context, store entities.StoreName, ids []string) ([]*entities.ProcedureEntry, error) {
	s, err := a.store(store)
	if err != nil {
		return nil, err
	}

	out := make([]*entities.ProcedureEntry, 0, len(ids))
	for _, id := range ids {
		if entry, ok := s.FindByProcedureID(id); ok {
			out = append(out, entry)
		}
	}
	observability.RecordQueryMetric(ctx, a.metrics, string(store), "get_many", len(out))
	return out, nil
}

// List retrieves procedures matching every non-empty criterion of filter
func (a *ProcedureAdapter) List(ctx context.Context, store entities.StoreName, filter repositories.ProcedureFilter) ([]*entities.ProcedureEntry, error) {
	s, err := a.store(store)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "ProcedureAdapter.List")
	defer span.End()
	span.SetAttributes(attribute.String("library.store", string(store)))

	out := s.Match(query.Criteria{
		Category:   entities.Category(filter.Category),
		Complexity: entities.Complexity(filter.Complexity),
		Specialty:  filter.Specialty,
		BodyRegion: filter.BodyRegion,
		Setting:    entities.Setting(filter.Setting),
		Anesthesia: entities.Anesthesia(filter.Anesthesia),
		Group:      filter.Group,
	})
	observability.RecordQueryMetric(ctx, a.metrics, string(store), "list", len(out))
	return out, nil
}

// Search performs case-insensitive substring search over the store's text fields
func (a *ProcedureAdapter) Search(ctx context.Context, store entities.StoreName, q string) ([]*entities.ProcedureEntry, error) {
	s, err := a.store(store)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "ProcedureAdapter.Search")
	defer span.End()
	span.SetAttributes(attribute.String("library.store", string(store)), attribute.String("search.query", q))

	out := s.Search(q)
	observability.RecordQueryMetric(ctx, a.metrics, string(store), "search", len(out))
	return out, nil
}

func (a *ProcedureAdapter) store(name entities.StoreName) (*query.ProcedureStore, error) {
	s, ok := a.catalog.Procedures(name)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("procedure store %s not found", name))
	}
	return s, nil
}
