package mcp

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
	"github.com/zatekoja/medlibrary/internal/domain/repositories"
	"github.com/zatekoja/medlibrary/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/medlibrary/pkg/errors"
)

const (
	ServerName = "Medical Library MCP"
	Version    = "0.1.0"
)

type IDRequest struct {
	ID string `json:"id"`
}

type SearchContentRequest struct {
	Query string `json:"query"`
}

type ListContentRequest struct {
	Tag       string `json:"tag"`
	Type      string `json:"type"`
	Relevance string `json:"relevance"`
	Status    string `json:"status"`
}

type ContentLevelRequest struct {
	ID    string `json:"id"`
	Level int    `json:"level"`
}

type GetProcedureRequest struct {
	Store string `json:"store"`
	ID    string `json:"id"`
	Lang  string `json:"lang"`
}

type ListProceduresRequest struct {
	Store      string `json:"store"`
	Category   string `json:"category"`
	Complexity string `json:"complexity"`
	Specialty  string `json:"specialty"`
	BodyRegion string `json:"bodyRegion"`
	Setting    string `json:"setting"`
	Anesthesia string `json:"anesthesia"`
	Group      string `json:"group"`
	Lang       string `json:"lang"`
}

type SearchProceduresRequest struct {
	Store string `json:"store"`
	Query string `json:"query"`
	Lang  string `json:"lang"`
}

type ListStoresRequest struct{}

// Tools exposes the library queries as MCP tool handlers
type Tools struct {
	content    repositories.ContentRepository
	procedures repositories.ProcedureRepository
}

// NewTools creates the tool handlers
func NewTools(content repositories.ContentRepository, procedures repositories.ProcedureRepository) *Tools {
	return &Tools{content: content, procedures: procedures}
}

// NewServer creates an MCP server with every library tool registered
func NewServer(content repositories.ContentRepository, procedures repositories.ProcedureRepository) *server.MCPServer {
	s := server.NewMCPServer(
		ServerName,
		Version,
		server.WithToolCapabilities(false),
	)
	t := NewTools(content, procedures)

	s.AddTool(mcp.NewTool("list_stores",
		mcp.WithDescription("List the procedure reference stores and how many procedures each holds"),
	), mcp.NewTypedToolHandler(t.ListStores))

	s.AddTool(mcp.NewTool("get_content",
		mcp.WithDescription("Get an educational article with all of its reading levels"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Article id, e.g. 'concept-brca'")),
	), mcp.NewTypedToolHandler(t.GetContent))

	s.AddTool(mcp.NewTool("search_content",
		mcp.WithDescription("Case-insensitive substring search over article names, alternate names and keywords. An empty query returns every article."),
		mcp.WithString("query", mcp.Description("Text to search for")),
	), mcp.NewTypedToolHandler(t.SearchContent))

	s.AddTool(mcp.NewTool("list_content",
		mcp.WithDescription("List articles filtered by tag, type, clinical relevance and status. Empty filters are ignored."),
		mcp.WithString("tag", mcp.Description("System, topic or keyword, matched case-insensitively")),
		mcp.WithString("type", mcp.Description("structure, system, pathway, process, condition, concept or topic")),
		mcp.WithString("relevance", mcp.Description("low, medium, high or critical")),
		mcp.WithString("status", mcp.Description("draft, review or published")),
	), mcp.NewTypedToolHandler(t.ListContent))

	s.AddTool(mcp.NewTool("content_level",
		mcp.WithDescription("Get one reading level of an article, from 1 (simplest) to 5 (most advanced)"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Article id")),
		mcp.WithNumber("level", mcp.Required(), mcp.Description("Reading level between 1 and 5")),
	), mcp.NewTypedToolHandler(t.ContentLevel))

	s.AddTool(mcp.NewTool("cross_references",
		mcp.WithDescription("List the articles an article links to. Links to articles that do not exist are reported as dangling."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Article id")),
	), mcp.NewTypedToolHandler(t.CrossReferences))

	s.AddTool(mcp.NewTool("get_procedure",
		mcp.WithDescription("Get one procedure from a reference store"),
		mcp.WithString("store", mcp.Required(), mcp.Description(storeDescription())),
		mcp.WithString("id", mcp.Required(), mcp.Description("Procedure id, e.g. 'emerg-intubation'")),
		mcp.WithString("lang", mcp.Description("'en' or 'es' for a single-language view; omit for both")),
	), mcp.NewTypedToolHandler(t.GetProcedure))

	s.AddTool(mcp.NewTool("list_procedures",
		mcp.WithDescription("List procedures of one store. Every non-empty filter must match."),
		mcp.WithString("store", mcp.Required(), mcp.Description(storeDescription())),
		mcp.WithString("category", mcp.Description("diagnostic, therapeutic, surgical, screening or preventive")),
		mcp.WithString("complexity", mcp.Description("minimal, low, moderate, high or very-high")),
		mcp.WithString("specialty", mcp.Description("Substring of a specialty")),
		mcp.WithString("bodyRegion", mcp.Description("Substring of a body region")),
		mcp.WithString("setting", mcp.Description("Care setting, e.g. 'emergency-department'")),
		mcp.WithString("anesthesia", mcp.Description("Anesthesia type, e.g. 'sedation'")),
		mcp.WithString("group", mcp.Description("Emergency group: airway, vascular, trauma or resuscitation")),
		mcp.WithString("lang", mcp.Description("'en' or 'es' for single-language views")),
	), mcp.NewTypedToolHandler(t.ListProcedures))

	s.AddTool(mcp.NewTool("search_procedures",
		mcp.WithDescription("Case-insensitive substring search over one store's names, descriptions and specialties"),
		mcp.WithString("store", mcp.Required(), mcp.Description(storeDescription())),
		mcp.WithString("query", mcp.Description("Text to search for; empty returns the whole store")),
		mcp.WithString("lang", mcp.Description("'en' or 'es' for single-language views")),
	), mcp.NewTypedToolHandler(t.SearchProcedures))

	return s
}

func (t *Tools) ListStores(ctx context.Context, request mcp.CallToolRequest, args ListStoresRequest) (*mcp.CallToolResult, error) {
	stores, err := t.procedures.Stores(ctx)
	return respond(ctx, "list_stores", stores, err)
}

func (t *Tools) GetContent(ctx context.Context, request mcp.CallToolRequest, args IDRequest) (*mcp.CallToolResult, error) {
	if args.ID == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	article, err := t.content.GetByID(ctx, args.ID)
	return respond(ctx, "get_content", article, err)
}

func (t *Tools) SearchContent(ctx context.Context, request mcp.CallToolRequest, args SearchContentRequest) (*mcp.CallToolResult, error) {
	articles, err := t.content.Search(ctx, args.Query)
	return respond(ctx, "search_content", summarize(articles), err)
}

func (t *Tools) ListContent(ctx context.Context, request mcp.CallToolRequest, args ListContentRequest) (*mcp.CallToolResult, error) {
	articles, err := t.content.List(ctx, repositories.ContentFilter{
		Tag:               args.Tag,
		Type:              args.Type,
		ClinicalRelevance: args.Relevance,
		Status:            args.Status,
	})
	return respond(ctx, "list_content", summarize(articles), err)
}

func (t *Tools) ContentLevel(ctx context.Context, request mcp.CallToolRequest, args ContentLevelRequest) (*mcp.CallToolResult, error) {
	if args.ID == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	level, err := t.content.GetLevel(ctx, args.ID, args.Level)
	return respond(ctx, "content_level", level, err)
}

func (t *Tools) CrossReferences(ctx context.Context, request mcp.CallToolRequest, args IDRequest) (*mcp.CallToolResult, error) {
	if args.ID == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	refs, err := t.content.CrossReferences(ctx, args.ID)
	if err != nil {
		return respond(ctx, "cross_references", nil, err)
	}

	out := make([]referenceSummary, 0, len(refs))
	for _, ref := range refs {
		s := referenceSummary{
			TargetID:     ref.TargetID,
			Relationship: ref.Relationship,
			Label:        ref.Label,
			Dangling:     ref.Dangling(),
		}
		if ref.Target != nil {
			s.TargetName = ref.Target.Name
		}
		out = append(out, s)
	}
	return respond(ctx, "cross_references", out, nil)
}

func (t *Tools) GetProcedure(ctx context.Context, request mcp.CallToolRequest, args GetProcedureRequest) (*mcp.CallToolResult, error) {
	if args.Store == "" || args.ID == "" {
		return mcp.NewToolResultError("store and id are required"), nil
	}
	entry, err := t.procedures.GetByID(ctx, entities.StoreName(args.Store), args.ID)
	if err != nil || args.Lang == "" {
		return respond(ctx, "get_procedure", entry, err)
	}
	return respond(ctx, "get_procedure", entry.Localize(entities.ParseLocale(args.Lang)), nil)
}

func (t *Tools) ListProcedures(ctx context.Context, request mcp.CallToolRequest, args ListProceduresRequest) (*mcp.CallToolResult, error) {
	if args.Store == "" {
		return mcp.NewToolResultError("store is required"), nil
	}
	entries, err := t.procedures.List(ctx, entities.StoreName(args.Store), repositories.ProcedureFilter{
		Category:   args.Category,
		Complexity: args.Complexity,
		Specialty:  args.Specialty,
		BodyRegion: args.BodyRegion,
		Setting:    args.Setting,
		Anesthesia: args.Anesthesia,
		Group:      args.Group,
	})
	return respond(ctx, "list_procedures", procedureViews(entries, args.Lang), err)
}

func (t *Tools) SearchProcedures(ctx context.Context, request mcp.CallToolRequest, args SearchProceduresRequest) (*mcp.CallToolResult, error) {
	if args.Store == "" {
		return mcp.NewToolResultError("store is required"), nil
	}
	entries, err := t.procedures.Search(ctx, entities.StoreName(args.Store), args.Query)
	return respond(ctx, "search_procedures", procedureViews(entries, args.Lang), err)
}

// contentSummary keeps search results small; get_content returns the full article
type contentSummary struct {
	ID                string                     `json:"id"`
	Type              entities.ContentType       `json:"type"`
	Name              string                     `json:"name"`
	NameEs            string                     `json:"nameEs,omitempty"`
	Levels            []int                      `json:"levels"`
	ClinicalRelevance entities.ClinicalRelevance `json:"clinicalRelevance,omitempty"`
	Status            entities.ContentStatus     `json:"status"`
}

type referenceSummary struct {
	TargetID     string                `json:"targetId"`
	TargetName   string                `json:"targetName,omitempty"`
	Relationship entities.Relationship `json:"relationship"`
	Label        string                `json:"label,omitempty"`
	Dangling     bool                  `json:"dangling"`
}

func summarize(articles []*entities.EducationalContent) []contentSummary {
	out := make([]contentSummary, 0, len(articles))
	for _, a := range articles {
		out = append(out, contentSummary{
			ID:                a.ID,
			Type:              a.Type,
			Name:              a.Name,
			NameEs:            a.NameEs,
			Levels:            a.LevelNumbers(),
			ClinicalRelevance: a.Tags.ClinicalRelevance,
			Status:            a.Status,
		})
	}
	return out
}

// procedureViews returns the bilingual entries, or single-language views when lang is set
func procedureViews(entries []*entities.ProcedureEntry, lang string) interface{} {
	if lang == "" {
		return entries
	}
	locale := entities.ParseLocale(lang)
	out := make([]*entities.LocalizedProcedure, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Localize(locale))
	}
	return out
}

func respond(ctx context.Context, tool string, payload interface{}, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrorTypeInternal {
			observability.LoggerFromContext(ctx).Error().Err(err).Str("tool", tool).Msg("tool call failed")
		}
		return mcp.NewToolResultError(apperrors.MessageOf(err)), nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func storeDescription() string {
	return fmt.Sprintf("Procedure store: %v", entities.StoreNames)
}
