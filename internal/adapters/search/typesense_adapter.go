package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
	tsclient "github.com/zatekoja/medlibrary/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
)

var complexityRank = map[entities.Complexity]int32{
	entities.ComplexityMinimal:  1,
	entities.ComplexityLow:      2,
	entities.ComplexityModerate: 3,
	entities.ComplexityHigh:     4,
	entities.ComplexityVeryHigh: 5,
}

// TypesenseAdapter publishes the catalog to Typesense for product-wide search.
// The in-process query layer does not depend on it.
type TypesenseAdapter struct {
	client  *tsclient.Client
	metrics *observability.Metrics
}

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client, metrics *observability.Metrics) *TypesenseAdapter {
	return &TypesenseAdapter{client: client, metrics: metrics}
}

// InitSchema ensures both collections exist
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	return a.client.InitSchema(ctx)
}

// Reset drops both collections so the next InitSchema recreates them.
// A collection that does not exist is not an error.
func (a *TypesenseAdapter) Reset(ctx context.Context) {
	logger := observability.LoggerFromContext(ctx)
	for _, name := range []string{tsclient.ProceduresCollection, tsclient.ContentCollection} {
		if _, err := a.client.Client().Collection(name).Delete(ctx); err != nil {
			logger.Warn().Err(err).Str("collection", name).Msg("failed to delete collection")
		}
	}
}

// IndexProcedures upserts every entry of one store and returns the number indexed
func (a *TypesenseAdapter) IndexProcedures(ctx context.Context, store entities.StoreName, entries []*entities.ProcedureEntry) (int, error) {
	start := time.Now()
	defer func() { observability.RecordExportMetric(ctx, a.metrics, "typesense", time.Since(start)) }()

	for i, entry := range entries {
		if err := a.client.UpsertDocument(ctx, tsclient.ProceduresCollection, buildProcedureDocument(store, entry)); err != nil {
			return i, fmt.Errorf("failed to index procedure %s: %w", entry.ProcedureID, err)
		}
	}
	return len(entries), nil
}

// IndexContent upserts every article and returns the number indexed
func (a *TypesenseAdapter) IndexContent(ctx context.Context, articles []*entities.EducationalContent) (int, error) {
	start := time.Now()
	defer func() { observability.RecordExportMetric(ctx, a.metrics, "typesense", time.Since(start)) }()

	for i, article := range articles {
		if err := a.client.UpsertDocument(ctx, tsclient.ContentCollection, buildContentDocument(article)); err != nil {
			return i, fmt.Errorf("failed to index content %s: %w", article.ID, err)
		}
	}
	return len(articles), nil
}

// SearchProcedures runs a query against the indexed procedures and returns
// matching procedure ids. An empty store searches every store.
func (a *TypesenseAdapter) SearchProcedures(ctx context.Context, q string, store entities.StoreName, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	if q == "" {
		q = "*"
	}
	params := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String("name_en,name_es,description_en,specialties"),
		PerPage: pointer.Int(limit),
	}
	if store != "" {
		params.FilterBy = pointer.String("store:=" + string(store))
	}

	result, err := a.client.Client().Collection(tsclient.ProceduresCollection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search procedures: %w", err)
	}

	ids := []string{}
	if result.Hits == nil {
		return ids, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["procedure_id"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ProcedureDocumentID is the Typesense id of an entry. Procedure ids are
// only unique within a store, so the store is part of the key.
func ProcedureDocumentID(store entities.StoreName, procedureID string) string {
	return string(store) + ":" + procedureID
}

func buildProcedureDocument(store entities.StoreName, p *entities.ProcedureEntry) map[string]interface{} {
	doc := map[string]interface{}{
		"id":              ProcedureDocumentID(store, p.ProcedureID),
		"procedure_id":    p.ProcedureID,
		"store":           string(store),
		"name_en":         p.Name.En,
		"name_es":         p.Name.Es,
		"description_en":  p.Description.En,
		"category":        string(p.Category),
		"complexity":      string(p.Complexity),
		"complexity_rank": complexityRank[p.Complexity],
		"specialties":     nonNil(p.Specialties),
		"body_regions":    nonNil(p.BodyRegions),
		"settings":        stringsOf(p.Settings),
		"anesthesia":      stringsOf(p.Anesthesia),
	}
	if p.Description.Es != "" {
		doc["description_es"] = p.Description.Es
	}
	if p.Coding != nil && len(p.Coding.CPT) > 0 {
		doc["cpt"] = p.Coding.CPT
	}
	return doc
}

func buildContentDocument(c *entities.EducationalContent) map[string]interface{} {
	levels := c.LevelNumbers()
	doc := map[string]interface{}{
		"id":         c.ID,
		"type":       string(c.Type),
		"name":       c.Name,
		"status":     string(c.Status),
		"levels":     levels,
		"updated_at": c.UpdatedAt.Unix(),
		"tags":       buildContentTags(c),
	}
	if c.NameEs != "" {
		doc["name_es"] = c.NameEs
	}
	if len(c.AlternateNames) > 0 {
		doc["alternate_names"] = c.AlternateNames
	}
	if c.Tags.ClinicalRelevance != "" {
		doc["clinical_relevance"] = string(c.Tags.ClinicalRelevance)
	}
	if len(levels) > 0 {
		doc["summary"] = c.Levels[levels[0]].Summary
	}
	return doc
}

// buildContentTags lowercases and de-duplicates the tag values, keeping first occurrence order
func buildContentTags(c *entities.EducationalContent) []string {
	seen := map[string]struct{}{}
	tags := []string{}
	for _, v := range c.Tags.TagValues() {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		tags = append(tags, v)
	}
	return tags
}

func stringsOf[S ~string](values []S) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
