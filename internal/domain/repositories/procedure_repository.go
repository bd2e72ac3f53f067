package repositories

import (
	"context"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
)

// ProcedureRepository defines read access to the procedure reference tables.
// Every call addresses exactly one store; stores are never merged.
type ProcedureRepository interface {
	// Stores lists the available stores with their record counts
	Stores(ctx context.Context) ([]StoreSummary, error)

	// GetByID retrieves a procedure by its procedureId
	GetByID(ctx context.Context, store entities.StoreName, id string) (*entities.ProcedureEntry, error)

	// GetByIDs retrieves the procedures that exist among the given ids, in id order
	GetByIDs(ctx context.Context, store entities.StoreName, ids []string) ([]*entities.ProcedureEntry, error)

	// List retrieves procedures matching every non-empty filter criterion
	List(ctx context.Context, store entities.StoreName, filter ProcedureFilter) ([]*entities.ProcedureEntry, error)

	// Search performs case-insensitive substring search over the store's text fields
	Search(ctx context.Context, store entities.StoreName, query string) ([]*entities.ProcedureEntry, error)
}

// ProcedureFilter defines filters for listing procedures.
// Empty fields are ignored; the rest are combined with AND.
type ProcedureFilter struct {
	Category   string
	Complexity string
	Specialty  string
	BodyRegion string
	Setting    string
	Anesthesia string
	Group      string
}

// IsEmpty reports whether no criterion is set
func (f ProcedureFilter) IsEmpty() bool {
	return f == ProcedureFilter{}
}

// StoreSummary describes one procedure store
type StoreSummary struct {
	Name  entities.StoreName `json:"name"`
	Count int                `json:"count"`
}
