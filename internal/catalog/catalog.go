// Package catalog loads the embedded procedure tables and educational
// articles and exposes them as read-only query stores.
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
	"github.com/zatekoja/medlibrary/internal/query"
)

//go:embed data
var embedded embed.FS

const (
	proceduresDir = "procedures"
	contentDir    = "content"
)

// Catalog is the loaded library. It is immutable and safe for concurrent use.
type Catalog struct {
	content    *query.ContentStore
	procedures map[entities.StoreName]*query.ProcedureStore
}

type procedureTable struct {
	Store      entities.StoreName         `json:"store"`
	Procedures []*entities.ProcedureEntry `json:"procedures"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	data, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(data)
})

// Default returns the catalog built from the embedded data. It is loaded
// on first use and shared by every caller for the life of the process.
func Default() (*Catalog, error) {
	return defaultCatalog()
}

// Load parses procedure tables from procedures/<store>.json and articles
// from content/*.yaml in fsys. A missing table yields an empty store.
func Load(fsys fs.FS) (*Catalog, error) {
	logger := observability.GetLogger()

	c := &Catalog{
		procedures: make(map[entities.StoreName]*query.ProcedureStore, len(entities.StoreNames)),
	}

	for _, name := range entities.StoreNames {
		entries, err := loadProcedureTable(fsys, name)
		if err != nil {
			return nil, err
		}
		c.procedures[name] = query.NewProcedureStore(name, entries)
		logger.Debug().Str("store", string(name)).Int("count", len(entries)).Msg("loaded procedure table")
	}

	articles, err := loadContent(fsys)
	if err != nil {
		return nil, err
	}
	c.content = query.NewContentStore(articles)

	logger.Info().
		Int("articles", len(articles)).
		Int("procedures", c.ProcedureCount()).
		Msg("catalog loaded")

	return c, nil
}

func loadProcedureTable(fsys fs.FS, name entities.StoreName) ([]*entities.ProcedureEntry, error) {
	file := path.Join(proceduresDir, string(name)+".json")
	f, err := fsys.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		observability.GetLogger().Warn().Str("store", string(name)).Msg("procedure table missing, store is empty")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()

	var table procedureTable
	if err := dec.Decode(&table); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", file, err)
	}
	if table.Store != name {
		return nil, fmt.Errorf("%s declares store %q, expected %q", file, table.Store, name)
	}
	return table.Procedures, nil
}

func loadContent(fsys fs.FS) ([]*entities.EducationalContent, error) {
	files, err := fs.Glob(fsys, path.Join(contentDir, "*.yaml"))
	if err != nil {
		return nil, err
	}

	articles := make([]*entities.EducationalContent, 0, len(files))
	for _, file := range files {
		article, err := decodeArticle(fsys, file)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func decodeArticle(fsys fs.FS, file string) (*entities.EducationalContent, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", file, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var article entities.EducationalContent
	if err := dec.Decode(&article); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", file, err)
	}
	return &article, nil
}

// Content returns the article store
func (c *Catalog) Content() *query.ContentStore {
	return c.content
}

// Procedures returns the named procedure store
func (c *Catalog) Procedures(name entities.StoreName) (*query.ProcedureStore, bool) {
	s, ok := c.procedures[name]
	return s, ok
}

// Stores returns every procedure store in display order
func (c *Catalog) Stores() []*query.ProcedureStore {
	out := make([]*query.ProcedureStore, 0, len(entities.StoreNames))
	for _, name := range entities.StoreNames {
		out = append(out, c.procedures[name])
	}
	return out
}

// ProcedureCount returns the number of procedure entries across all stores
func (c *Catalog) ProcedureCount() int {
	total := 0
	for _, s := range c.procedures {
		total += s.Len()
	}
	return total
}
