package handlers

import (
	"net/http"

	"github.com/zatekoja/medlibrary/internal/api/loaders"
	"github.com/zatekoja/medlibrary/internal/domain/entities"
	"github.com/zatekoja/medlibrary/internal/domain/repositories"
)

// ContentHandler handles educational content requests
type ContentHandler struct {
	repo repositories.ContentRepository
}

// NewContentHandler creates a new content handler
func NewContentHandler(repo repositories.ContentRepository) *ContentHandler {
	return &ContentHandler{repo: repo}
}

// ListContent handles GET /api/content
func (h *ContentHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.ContentFilter{
		Tag:               q.Get("tag"),
		Type:              q.Get("type"),
		ClinicalRelevance: q.Get("relevance"),
		Status:            q.Get("status"),
	}

	articles, err := h.repo.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, listResponse("content", articles))
}

// SearchContent handles GET /api/content/search
func (h *ContentHandler) SearchContent(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	articles, err := h.repo.Search(r.Context(), q)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	resp := listResponse("content", articles)
	resp["query"] = q
	respondWithJSON(w, http.StatusOK, resp)
}

// GetContent handles GET /api/content/{id}
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "content ID is required")
		return
	}

	article, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, article)
}

// GetContentLevel handles GET /api/content/{id}/levels/{level}
func (h *ContentHandler) GetContentLevel(w http.ResponseWriter, r *http.Request) {
	level, err := parseLevel(r.PathValue("level"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	lc, err := h.repo.GetLevel(r.Context(), r.PathValue("id"), level)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, lc)
}

// GetCrossReferences handles GET /api/content/{id}/cross-references.
// Targets are batched through the request's dataloader when one is attached.
func (h *ContentHandler) GetCrossReferences(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var (
		resolved []entities.ResolvedReference
		err      error
	)
	if l := loaders.For(r.Context()); l != nil {
		var article *entities.EducationalContent
		article, err = h.repo.GetByID(r.Context(), id)
		if err == nil {
			resolved, err = l.ResolveReferences(r.Context(), article.CrossReferences)
		}
	} else {
		resolved, err = h.repo.CrossReferences(r.Context(), id)
	}
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":              id,
		"crossReferences": crossReferenceViews(resolved),
		"count":           len(resolved),
	})
}

type crossReferenceView struct {
	entities.CrossReference
	Dangling     bool                 `json:"dangling"`
	TargetName   string               `json:"targetName,omitempty"`
	ResolvedType entities.ContentType `json:"resolvedType,omitempty"`
}

func crossReferenceViews(refs []entities.ResolvedReference) []crossReferenceView {
	out := make([]crossReferenceView, 0, len(refs))
	for _, ref := range refs {
		v := crossReferenceView{CrossReference: ref.CrossReference, Dangling: ref.Dangling()}
		if ref.Target != nil {
			v.TargetName = ref.Target.Name
			v.ResolvedType = ref.Target.Type
		}
		out = append(out, v)
	}
	return out
}
