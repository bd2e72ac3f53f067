package loaders

import (
	"context"
	"fmt"
	"net/http"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
	"github.com/zatekoja/medlibrary/internal/domain/repositories"
	apperrors "github.com/zatekoja/medlibrary/pkg/errors"
)

type ctxKey string

const loadersKey ctxKey = "dataloaders"

// Loaders contains the per-request dataloaders
type Loaders struct {
	ContentLoader *dataloader.Loader[string, *entities.EducationalContent]
}

// NewLoaders creates a new instance of Loaders. Loaders cache per instance,
// so create one per request.
func NewLoaders(contentRepo repositories.ContentRepository) *Loaders {
	return &Loaders{
		ContentLoader: dataloader.NewBatchedLoader(func(ctx context.Context, keys []string) []*dataloader.Result[*entities.EducationalContent] {
			results := make([]*dataloader.Result[*entities.EducationalContent], len(keys))
			articles, err := contentRepo.GetByIDs(ctx, keys)

			articleMap := make(map[string]*entities.EducationalContent)
			if err == nil {
				for _, a := range articles {
					if _, seen := articleMap[a.ID]; !seen {
						articleMap[a.ID] = a
					}
				}
			}

			for i, key := range keys {
				if err != nil {
					results[i] = &dataloader.Result[*entities.EducationalContent]{Error: err}
				} else if a, ok := articleMap[key]; ok {
					results[i] = &dataloader.Result[*entities.EducationalContent]{Data: a}
				} else {
					results[i] = &dataloader.Result[*entities.EducationalContent]{Error: apperrors.NewNotFoundError(fmt.Sprintf("content %s not found", key))}
				}
			}
			return results
		}),
	}
}

// For returns the loaders for a given context, or nil when none are attached
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey).(*Loaders)
	return l
}

// WithLoaders returns a new context with the loaders attached
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey, loaders)
}

// Middleware attaches fresh loaders to every request
func Middleware(contentRepo repositories.ContentRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLoaders(r.Context(), NewLoaders(contentRepo))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ResolveReferences loads every reference target in one batch. A missing
// target leaves the resolved entry dangling; any other failure is returned.
func (l *Loaders) ResolveReferences(ctx context.Context, refs []entities.CrossReference) ([]entities.ResolvedReference, error) {
	thunks := make([]dataloader.Thunk[*entities.EducationalContent], len(refs))
	for i, ref := range refs {
		thunks[i] = l.ContentLoader.Load(ctx, ref.TargetID)
	}

	out := make([]entities.ResolvedReference, len(refs))
	for i, ref := range refs {
		target, err := thunks[i]()
		if err != nil && !apperrors.IsNotFound(err) {
			return nil, err
		}
		out[i] = entities.ResolvedReference{CrossReference: ref, Target: target}
	}
	return out, nil
}
