package handlers

import (
	"net/http"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
	"github.com/zatekoja/medlibrary/internal/domain/repositories"
)

// ProcedureHandler handles procedure-related requests
type ProcedureHandler struct {
	repo repositories.ProcedureRepository
}

// NewProcedureHandler creates a new procedure handler
func NewProcedureHandler(repo repositories.ProcedureRepository) *ProcedureHandler {
	return &ProcedureHandler{repo: repo}
}

// ListStores handles GET /api/stores
func (h *ProcedureHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.repo.Stores(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, listResponse("stores", stores))
}

// ListProcedures handles GET /api/procedures/{store}
func (h *ProcedureHandler) ListProcedures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.ProcedureFilter{
		Category:   q.Get("category"),
		Complexity: q.Get("complexity"),
		Specialty:  q.Get("specialty"),
		BodyRegion: q.Get("bodyRegion"),
		Setting:    q.Get("setting"),
		Anesthesia: q.Get("anesthesia"),
		Group:      q.Get("group"),
	}

	procedures, err := h.repo.List(r.Context(), storeFrom(r), filter)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	h.respondWithProcedures(w, r, procedures, nil)
}

// SearchProcedures handles GET /api/procedures/{store}/search
func (h *ProcedureHandler) SearchProcedures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	procedures, err := h.repo.Search(r.Context(), storeFrom(r), q)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	h.respondWithProcedures(w, r, procedures, map[string]interface{}{"query": q})
}

// GetProcedure handles GET /api/procedures/{store}/{id}
func (h *ProcedureHandler) GetProcedure(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "procedure ID is required")
		return
	}

	procedure, err := h.repo.GetByID(r.Context(), storeFrom(r), id)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	if r.URL.Query().Has("lang") {
		respondWithJSON(w, http.StatusOK, procedure.Localize(localeFrom(r)))
		return
	}
	respondWithJSON(w, http.StatusOK, procedure)
}

// respondWithProcedures writes bilingual entries, or single-language views when ?lang= is set
func (h *ProcedureHandler) respondWithProcedures(w http.ResponseWriter, r *http.Request, procedures []*entities.ProcedureEntry, extra map[string]interface{}) {
	var resp map[string]interface{}
	if r.URL.Query().Has("lang") {
		locale := localeFrom(r)
		views := make([]*entities.LocalizedProcedure, 0, len(procedures))
		for _, p := range procedures {
			views = append(views, p.Localize(locale))
		}
		resp = listResponse("procedures", views)
	} else {
		resp = listResponse("procedures", procedures)
	}
	resp["store"] = storeFrom(r)
	for k, v := range extra {
		resp[k] = v
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func storeFrom(r *http.Request) entities.StoreName {
	return entities.StoreName(r.PathValue("store"))
}
