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

const contentStore = "content"

// ContentAdapter implements ContentRepository over the loaded catalog
type ContentAdapter struct {
	store   *query.ContentStore
	metrics *observability.Metrics
}

// NewContentAdapter creates a new content adapter. metrics may be nil.
func NewContentAdapter(c *catalog.Catalog, metrics *observability.Metrics) repositories.ContentRepository {
	return &ContentAdapter{store: c.Content(), metrics: metrics}
}

// GetByID retrieves an article by ID
func (a *ContentAdapter) GetByID(ctx context.Context, id string) (*entities.EducationalContent, error) {
	article, ok := a.store.FindByID(id)
	if !ok {
		observability.RecordQueryMetric(ctx, a.metrics, contentStore, "get", 0)
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("content %s not found", id))
	}
	observability.RecordQueryMetric(ctx, a.metrics, contentStore, "get", 1)
	return article, nil
}

// GetByIDs retrieves the articles that exist among ids, skipping unknown ones
func (a *ContentAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.EducationalContent, error) {
	out := make([]*entities.EducationalContent, 0, len(ids))
	for _, id := range ids {
		if article, ok := a.store.FindByID(id); ok {
			out = append(out, article)
		}
	}
	observability.RecordQueryMetric(ctx, a.metrics, contentStore, "get_many", len(out))
	return out, nil
}

// GetLevel retrieves one reading level of an article
func (a *ContentAdapter) GetLevel(ctx context.Context, id string, level int) (*entities.LevelContent, error) {
	if level < entities.MinLevel || level > entities.MaxLevel {
		return nil, apperrors.NewValidationError(fmt.Sprintf("level must be between %d and %d", entities.MinLevel, entities.MaxLevel))
	}
	if _, err := a.GetByID(ctx, id); err != nil {
		return nil, err
	}
	lc, ok := a.store.Level(id, level)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("content %s has no level %d", id, level))
	}
	return lc, nil
}

// CrossReferences resolves the links of an article. Dangling links keep a nil target.
func (a *ContentAdapter) CrossReferences(ctx context.Context, id string) ([]entities.ResolvedReference, error) {
	ctx, span := observability.StartSpan(ctx, "ContentAdapter.CrossReferences")
	defer span.End()
	span.SetAttributes(attribute.String("content.id", id))

	refs, ok := a.store.CrossReferences(id)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("content %s not found", id))
	}
	observability.RecordQueryMetric(ctx, a.metrics, contentStore, "cross_references", len(refs))
	return refs, nil
}

// List retrieves articles matching every non-empty criterion of filter
func (a *ContentAdapter) List(ctx context.Context, filter repositories.ContentFilter) ([]*entities.EducationalContent, error) {
	out := a.store.Match(query.ContentCriteria{
		Tag:               filter.Tag,
		Type:              entities.ContentType(filter.Type),
		ClinicalRelevance: entities.ClinicalRelevance(filter.ClinicalRelevance),
		Status:            entities.ContentStatus(filter.Status),
	})
	observability.RecordQueryMetric(ctx, a.metrics, contentStore, "list", len(out))
	return out, nil
}

// Search performs case-insensitive substring search over names and keywords
func (a *ContentAdapter) Search(ctx context.Context, q string) ([]*entities.EducationalContent, error) {
	ctx, span := observability.StartSpan(ctx, "ContentAdapter.Search")
	defer span.End()
	span.SetAttributes(attribute.String("search.query", q))

	out := a.store.Search(q)
	observability.RecordQueryMetric(ctx, a.metrics, contentStore, "search", len(out))
	return out, nil
}
