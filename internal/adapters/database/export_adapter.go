package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/goccy/go-json"
	"github.com/lib/pq"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
	"github.com/zatekoja/medlibrary/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medlibrary/pkg/errors"
)

const (
	ProceduresTable = "reference_procedures"
	ContentTable    = "library_content"

	exportBatchSize = 100
)

// Schema creates the export tables. Statements are idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS reference_procedures (
		store         TEXT NOT NULL,
		procedure_id  TEXT NOT NULL,
		name_en       TEXT NOT NULL,
		name_es       TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL,
		complexity    TEXT NOT NULL,
		specialties   TEXT[] NOT NULL DEFAULT '{}',
		body_regions  TEXT[] NOT NULL DEFAULT '{}',
		settings      TEXT[] NOT NULL DEFAULT '{}',
		anesthesia    TEXT[] NOT NULL DEFAULT '{}',
		document      JSONB NOT NULL,
		exported_at   TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (store, procedure_id)
	)`,
	`CREATE TABLE IF NOT EXISTS library_content (
		id                 TEXT PRIMARY KEY,
		type               TEXT NOT NULL,
		name               TEXT NOT NULL,
		name_es            TEXT NOT NULL DEFAULT '',
		status             TEXT NOT NULL,
		clinical_relevance TEXT NOT NULL DEFAULT '',
		tags               TEXT[] NOT NULL DEFAULT '{}',
		levels             INTEGER[] NOT NULL DEFAULT '{}',
		version            INTEGER NOT NULL,
		document           JSONB NOT NULL,
		exported_at        TIMESTAMPTZ NOT NULL
	)`,
}

// ExportAdapter mirrors the embedded catalog into PostgreSQL so that
// reporting jobs can join against it. The catalog remains the source of truth.
type ExportAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
	now     func() time.Time
}

// NewExportAdapter creates a new export adapter
func NewExportAdapter(client *postgres.Client, metrics *observability.Metrics) *ExportAdapter {
	return &ExportAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
		now:     time.Now,
	}
}

// EnsureSchema creates the export tables if they do not exist
func (a *ExportAdapter) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := a.client.DB().ExecContext(ctx, stmt); err != nil {
			return apperrors.NewInternalError("failed to create export schema", err)
		}
	}
	return nil
}

// ExportProcedures upserts every entry of one store and removes rows for
// procedures that no longer exist in it. The whole store is written in one transaction.
func (a *ExportAdapter) ExportProcedures(ctx context.Context, store entities.StoreName, entries []*entities.ProcedureEntry) (int, error) {
	start := a.now()
	exportedAt := start.UTC()

	records := make([]interface{}, 0, len(entries))
	ids := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		record, err := procedureRecord(store, entry, exportedAt)
		if err != nil {
			return 0, err
		}
		records = append(records, record)
		ids = append(ids, entry.ProcedureID)
	}

	conflict := goqu.DoUpdate("store, procedure_id", goqu.Record{
		"name_en":      goqu.I("EXCLUDED.name_en"),
		"name_es":      goqu.I("EXCLUDED.name_es"),
		"category":     goqu.I("EXCLUDED.category"),
		"complexity":   goqu.I("EXCLUDED.complexity"),
		"specialties":  goqu.I("EXCLUDED.specialties"),
		"body_regions": goqu.I("EXCLUDED.body_regions"),
		"settings":     goqu.I("EXCLUDED.settings"),
		"anesthesia":   goqu.I("EXCLUDED.anesthesia"),
		"document":     goqu.I("EXCLUDED.document"),
		"exported_at":  goqu.I("EXCLUDED.exported_at"),
	})

	prune := a.db.Delete(ProceduresTable).Prepared(true).Where(goqu.Ex{"store": string(store)})
	if len(ids) > 0 {
		prune = prune.Where(goqu.C("procedure_id").NotIn(ids...))
	}

	err := a.inTx(ctx, func(tx *sql.Tx) error {
		if err := a.upsertBatches(ctx, tx, ProceduresTable, records, conflict); err != nil {
			return err
		}
		return execDataset(ctx, tx, prune)
	})
	if err != nil {
		return 0, apperrors.NewInternalError(fmt.Sprintf("failed to export %s procedures", store), err)
	}

	observability.RecordExportMetric(ctx, a.metrics, "postgres", a.now().Sub(start))
	return len(entries), nil
}

// ExportContent upserts every article and removes rows for deleted articles
func (a *ExportAdapter) ExportContent(ctx context.Context, articles []*entities.EducationalContent) (int, error) {
	start := a.now()
	exportedAt := start.UTC()

	records := make([]interface{}, 0, len(articles))
	ids := make([]interface{}, 0, len(articles))
	for _, article := range articles {
		record, err := contentRecord(article, exportedAt)
		if err != nil {
			return 0, err
		}
		records = append(records, record)
		ids = append(ids, article.ID)
	}

	conflict := goqu.DoUpdate("id", goqu.Record{
		"type":               goqu.I("EXCLUDED.type"),
		"name":               goqu.I("EXCLUDED.name"),
		"name_es":            goqu.I("EXCLUDED.name_es"),
		"status":             goqu.I("EXCLUDED.status"),
		"clinical_relevance": goqu.I("EXCLUDED.clinical_relevance"),
		"tags":               goqu.I("EXCLUDED.tags"),
		"levels":             goqu.I("EXCLUDED.levels"),
		"version":            goqu.I("EXCLUDED.version"),
		"document":           goqu.I("EXCLUDED.document"),
		"exported_at":        goqu.I("EXCLUDED.exported_at"),
	})

	prune := a.db.Delete(ContentTable).Prepared(true)
	if len(ids) > 0 {
		prune = prune.Where(goqu.C("id").NotIn(ids...))
	}

	err := a.inTx(ctx, func(tx *sql.Tx) error {
		if err := a.upsertBatches(ctx, tx, ContentTable, records, conflict); err != nil {
			return err
		}
		return execDataset(ctx, tx, prune)
	})
	if err != nil {
		return 0, apperrors.NewInternalError("failed to export content", err)
	}

	observability.RecordExportMetric(ctx, a.metrics, "postgres", a.now().Sub(start))
	return len(articles), nil
}

// ExportedCount returns the number of procedure rows for a store
func (a *ExportAdapter) ExportedCount(ctx context.Context, store entities.StoreName) (int, error) {
	query, args, err := a.db.From(ProceduresTable).Prepared(true).
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"store": string(store)}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count exported procedures", err)
	}
	return count, nil
}

func (a *ExportAdapter) upsertBatches(ctx context.Context, tx *sql.Tx, table string, records []interface{}, conflict exp.ConflictExpression) error {
	for start := 0; start < len(records); start += exportBatchSize {
		end := min(start+exportBatchSize, len(records))
		ds := a.db.Insert(table).Prepared(true).Rows(records[start:end]...).OnConflict(conflict)
		if err := execDataset(ctx, tx, ds); err != nil {
			return err
		}
	}
	return nil
}

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

func execDataset(ctx context.Context, tx *sql.Tx, ds sqlBuilder) error {
	query, args, err := ds.ToSQL()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

func (a *ExportAdapter) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			observability.LoggerFromContext(ctx).Warn().Err(rbErr).Msg("rollback failed")
		}
		return err
	}
	return tx.Commit()
}

func procedureRecord(store entities.StoreName, p *entities.ProcedureEntry, exportedAt time.Time) (goqu.Record, error) {
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to encode procedure %s", p.ProcedureID), err)
	}
	return goqu.Record{
		"store":        string(store),
		"procedure_id": p.ProcedureID,
		"name_en":      p.Name.En,
		"name_es":      p.Name.Es,
		"category":     string(p.Category),
		"complexity":   string(p.Complexity),
		"specialties":  pq.Array(nonNil(p.Specialties)),
		"body_regions": pq.Array(nonNil(p.BodyRegions)),
		"settings":     pq.Array(stringsOf(p.Settings)),
		"anesthesia":   pq.Array(stringsOf(p.Anesthesia)),
		"document":     string(doc),
		"exported_at":  exportedAt,
	}, nil
}

func contentRecord(c *entities.EducationalContent, exportedAt time.Time) (goqu.Record, error) {
	doc, err := json.Marshal(c)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to encode content %s", c.ID), err)
	}
	levels := make([]int64, 0, len(c.Levels))
	for _, n := range c.LevelNumbers() {
		levels = append(levels, int64(n))
	}
	return goqu.Record{
		"id":                 c.ID,
		"type":               string(c.Type),
		"name":               c.Name,
		"name_es":            c.NameEs,
		"status":             string(c.Status),
		"clinical_relevance": string(c.Tags.ClinicalRelevance),
		"tags":               pq.Array(nonNil(c.Tags.TagValues())),
		"levels":             pq.Array(levels),
		"version":            c.Version,
		"document":           string(doc),
		"exported_at":        exportedAt,
	}, nil
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
