package repositories

import (
	"context"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
)

// ContentRepository defines read access to the educational articles
type ContentRepository interface {
	// GetByID retrieves an article by ID
	GetByID(ctx context.Context, id string) (*entities.EducationalContent, error)

	// GetByIDs retrieves the articles that exist among the given ids, in id order
	GetByIDs(ctx context.Context, ids []string) ([]*entities.EducationalContent, error)

	// GetLevel retrieves one reading level of an article
	GetLevel(ctx context.Context, id string, level int) (*entities.LevelContent, error)

	// CrossReferences resolves the links of an article. Dangling links are returned with a nil target.
	CrossReferences(ctx context.Context, id string) ([]entities.ResolvedReference, error)

	// List retrieves articles matching every non-empty filter criterion
	List(ctx context.Context, filter ContentFilter) ([]*entities.EducationalContent, error)

	// Search performs case-insensitive substring search over names and keywords
	Search(ctx context.Context, query string) ([]*entities.EducationalContent, error)
}

// ContentFilter defines filters for listing articles
type ContentFilter struct {
	Tag               string
	Type              string
	ClinicalRelevance string
	Status            string
}

// IsEmpty reports whether no criterion is set
func (f ContentFilter) IsEmpty() bool {
	return f == ContentFilter{}
}
