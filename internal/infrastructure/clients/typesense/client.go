package typesense

import (
	"context"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
	"github.com/zatekoja/medlibrary/pkg/config"
	"github.com/zatekoja/medlibrary/pkg/retry"
)

const (
	ProceduresCollection = "reference_procedures"
	ContentCollection    = "library_content"
)

// Client represents a Typesense client
type Client struct {
	client *typesense.Client
}

// NewClient creates a new Typesense client with exponential backoff retry
func NewClient(ctx context.Context, cfg *config.TypesenseConfig) (*Client, error) {
	client := typesense.NewClient(
		typesense.WithServer(cfg.URL),
		typesense.WithAPIKey(cfg.APIKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)

	logger := observability.GetLogger()
	err := retry.DoWithLog(ctx, retry.DefaultConfig(), "Typesense",
		func() error {
			healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_, err := client.Health(healthCtx, 2*time.Second)
			return err
		},
		retry.ZerologFunc(logger, "typesense"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Typesense after retries: %w", err)
	}

	logger.Info().Str("url", cfg.URL).Msg("connected to Typesense")
	return &Client{client: client}, nil
}

// Client returns the underlying Typesense client
func (c *Client) Client() *typesense.Client {
	return c.client
}

// InitSchema ensures the procedure and content collections exist
func (c *Client) InitSchema(ctx context.Context) error {
	collections, err := c.client.Collections().Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve collections: %w", err)
	}

	existing := make(map[string]bool, len(collections))
	for _, col := range collections {
		existing[col.Name] = true
	}

	logger := observability.GetLogger()
	for _, schema := range []*api.CollectionSchema{ProceduresSchema(), ContentSchema()} {
		if existing[schema.Name] {
			logger.Debug().Str("collection", schema.Name).Msg("Typesense collection already exists")
			continue
		}
		if _, err := c.client.Collections().Create(ctx, schema); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", schema.Name, err)
		}
		logger.Info().Str("collection", schema.Name).Msg("created Typesense collection")
	}
	return nil
}

// ProceduresSchema describes the procedure collection. Documents from all
// stores share it and are told apart by the store facet.
func ProceduresSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: ProceduresCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "procedure_id", Type: "string"},
			{Name: "store", Type: "string", Facet: pointer.True()},
			{Name: "name_en", Type: "string"},
			{Name: "name_es", Type: "string"},
			{Name: "description_en", Type: "string"},
			{Name: "description_es", Type: "string", Optional: pointer.True()},
			{Name: "category", Type: "string", Facet: pointer.True()},
			{Name: "complexity", Type: "string", Facet: pointer.True()},
			{Name: "complexity_rank", Type: "int32"},
			{Name: "specialties", Type: "string[]", Facet: pointer.True()},
			{Name: "body_regions", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "settings", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "anesthesia", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "cpt", Type: "string[]", Optional: pointer.True()},
		},
		DefaultSortingField: pointer.String("complexity_rank"),
	}
}

// ContentSchema describes the article collection
func ContentSchema() *api.CollectionSchema {
	return &api.CollectionSchema{
		Name: ContentCollection,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "type", Type: "string", Facet: pointer.True()},
			{Name: "name", Type: "string"},
			{Name: "name_es", Type: "string", Optional: pointer.True()},
			{Name: "alternate_names", Type: "string[]", Optional: pointer.True()},
			{Name: "summary", Type: "string", Optional: pointer.True()},
			{Name: "tags", Type: "string[]", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "clinical_relevance", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "status", Type: "string", Facet: pointer.True()},
			{Name: "levels", Type: "int32[]"},
			{Name: "updated_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("updated_at"),
	}
}

// UpsertDocument indexes one document in the named collection
func (c *Client) UpsertDocument(ctx context.Context, collection string, document map[string]interface{}) error {
	_, err := c.client.Collection(collection).Documents().Upsert(ctx, document)
	return err
}
