package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/medlibrary/internal/api/handlers"
	"github.com/zatekoja/medlibrary/internal/api/loaders"
	"github.com/zatekoja/medlibrary/internal/domain/entities"
	"github.com/zatekoja/medlibrary/internal/domain/repositories"
	apperrors "github.com/zatekoja/medlibrary/pkg/errors"
)

type mockContentRepository struct {
	mock.Mock
}

func (m *mockContentRepository) GetByID(ctx context.Context, id string) (*entities.EducationalContent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EducationalContent), args.Error(1)
}

func (m *mockContentRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.EducationalContent, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.EducationalContent), args.Error(1)
}

func (m *mockContentRepository) GetLevel(ctx context.Context, id string, level int) (*entities.LevelContent, error) {
	args := m.Called(ctx, id, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LevelContent), args.Error(1)
}

func (m *mockContentRepository) CrossReferences(ctx context.Context, id string) ([]entities.ResolvedReference, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ResolvedReference), args.Error(1)
}

func (m *mockContentRepository) List(ctx context.Context, filter repositories.ContentFilter) ([]*entities.EducationalContent, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entities.EducationalContent), args.Error(1)
}

func (m *mockContentRepository) Search(ctx context.Context, q string) ([]*entities.EducationalContent, error) {
	args := m.Called(ctx, q)
	return args.Get(0).([]*entities.EducationalContent), args.Error(1)
}

type mockProcedureRepository struct {
	mock.Mock
}

func (m *mockProcedureRepository) Stores(ctx context.Context) ([]repositories.StoreSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).([]repositories.StoreSummary), args.Error(1)
}

func (m *mockProcedureRepository) GetByID(ctx context.Context, store entities.StoreName, id string) (*entities.ProcedureEntry, error) {
	args := m.Called(ctx, store, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ProcedureEntry), args.Error(1)
}

func (m *mockProcedureRepository) GetByIDs(ctx context.Context, store entities.StoreName, ids []string) ([]*entities.ProcedureEntry, error) {
	args := m.Called(ctx, store, ids)
	return args.Get(0).([]*entities.ProcedureEntry), args.Error(1)
}

func (m *mockProcedureRepository) List(ctx context.Context, store entities.StoreName, filter repositories.ProcedureFilter) ([]*entities.ProcedureEntry, error) {
	args := m.Called(ctx, store, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ProcedureEntry), args.Error(1)
}

func (m *mockProcedureRepository) Search(ctx context.Context, store entities.StoreName, q string) ([]*entities.ProcedureEntry, error) {
	args := m.Called(ctx, store, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ProcedureEntry), args.Error(1)
}

// serve routes the request through a mux so PathValue is populated
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

var brca = &entities.EducationalContent{
	ID:   "concept-brca",
	Type: entities.ContentTypeConcept,
	Name: "BRCA1/2 and Hereditary Breast-Ovarian Cancer",
	CrossReferences: []entities.CrossReference{
		{TargetID: "concept-dna-repair", Relationship: entities.RelationshipRelated},
		{TargetID: "concept-lynch-syndrome", Relationship: entities.RelationshipSibling},
	},
}

func TestContentHandler_ListContent(t *testing.T) {
	repo := new(mockContentRepository)
	repo.On("List", mock.Anything, repositories.ContentFilter{Tag: "genetics", ClinicalRelevance: "high"}).
		Return([]*entities.EducationalContent{brca}, nil)

	h := handlers.NewContentHandler(repo)
	w := serve("GET /api/content", h.ListContent, httptest.NewRequest(http.MethodGet, "/api/content?tag=genetics&relevance=high", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	repo.AssertExpectations(t)
}

func TestContentHandler_SearchContent_EmptyQuery(t *testing.T) {
	repo := new(mockContentRepository)
	repo.On("Search", mock.Anything, "").Return([]*entities.EducationalContent{brca}, nil)

	h := handlers.NewContentHandler(repo)
	w := serve("GET /api/content/search", h.SearchContent, httptest.NewRequest(http.MethodGet, "/api/content/search", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, "", body["query"])
}

func TestContentHandler_GetContent(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := new(mockContentRepository)
		repo.On("GetByID", mock.Anything, "concept-brca").Return(brca, nil)

		h := handlers.NewContentHandler(repo)
		w := serve("GET /api/content/{id}", h.GetContent, httptest.NewRequest(http.MethodGet, "/api/content/concept-brca", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "concept-brca", decode(t, w)["id"])
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mockContentRepository)
		repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("content missing not found"))

		h := handlers.NewContentHandler(repo)
		w := serve("GET /api/content/{id}", h.GetContent, httptest.NewRequest(http.MethodGet, "/api/content/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "content missing not found", decode(t, w)["error"])
	})

	t.Run("internal errors are not leaked", func(t *testing.T) {
		repo := new(mockContentRepository)
		repo.On("GetByID", mock.Anything, "concept-brca").Return(nil, errors.New("disk on fire"))

		h := handlers.NewContentHandler(repo)
		w := serve("GET /api/content/{id}", h.GetContent, httptest.NewRequest(http.MethodGet, "/api/content/concept-brca", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal error", decode(t, w)["error"])
	})
}

func TestContentHandler_GetContentLevel(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		setup      func(*mockContentRepository)
		wantStatus int
	}{
		{
			name: "authored level",
			path: "/api/content/concept-brca/levels/3",
			setup: func(m *mockContentRepository) {
				m.On("GetLevel", mock.Anything, "concept-brca", 3).Return(&entities.LevelContent{Level: 3, Summary: "s"}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "non-numeric level",
			path:       "/api/content/concept-brca/levels/three",
			setup:      func(m *mockContentRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "level out of range",
			path: "/api/content/concept-brca/levels/9",
			setup: func(m *mockContentRepository) {
				m.On("GetLevel", mock.Anything, "concept-brca", 9).Return(nil, apperrors.NewValidationError("level must be between 1 and 5"))
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "level not authored",
			path: "/api/content/concept-dna-repair/levels/1",
			setup: func(m *mockContentRepository) {
				m.On("GetLevel", mock.Anything, "concept-dna-repair", 1).Return(nil, apperrors.NewNotFoundError("content concept-dna-repair has no level 1"))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockContentRepository)
			tt.setup(repo)

			h := handlers.NewContentHandler(repo)
			w := serve("GET /api/content/{id}/levels/{level}", h.GetContentLevel, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			repo.AssertExpectations(t)
		})
	}
}

func TestContentHandler_GetCrossReferences(t *testing.T) {
	dna := &entities.EducationalContent{ID: "concept-dna-repair", Name: "DNA Repair", Type: entities.ContentTypeProcess}

	t.Run("with dataloader", func(t *testing.T) {
		repo := new(mockContentRepository)
		repo.On("GetByID", mock.Anything, "concept-brca").Return(brca, nil)
		repo.On("GetByIDs", mock.Anything, []string{"concept-dna-repair", "concept-lynch-syndrome"}).
			Return([]*entities.EducationalContent{dna}, nil).Once()

		h := handlers.NewContentHandler(repo)
		req := httptest.NewRequest(http.MethodGet, "/api/content/concept-brca/cross-references", nil)
		req = req.WithContext(loaders.WithLoaders(req.Context(), loaders.NewLoaders(repo)))
		w := serve("GET /api/content/{id}/cross-references", h.GetCrossReferences, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		refs := body["crossReferences"].([]interface{})
		require.Len(t, refs, 2)

		first := refs[0].(map[string]interface{})
		assert.Equal(t, false, first["dangling"])
		assert.Equal(t, "DNA Repair", first["targetName"])
		assert.Equal(t, "process", first["resolvedType"])

		second := refs[1].(map[string]interface{})
		assert.Equal(t, true, second["dangling"])
		assert.Equal(t, "concept-lynch-syndrome", second["targetId"])
		repo.AssertExpectations(t)
	})

	t.Run("without dataloader", func(t *testing.T) {
		repo := new(mockContentRepository)
		repo.On("CrossReferences", mock.Anything, "concept-brca").Return([]entities.ResolvedReference{
			{CrossReference: brca.CrossReferences[0], Target: dna},
		}, nil)

		h := handlers.NewContentHandler(repo)
		w := serve("GET /api/content/{id}/cross-references", h.GetCrossReferences,
			httptest.NewRequest(http.MethodGet, "/api/content/concept-brca/cross-references", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode(t, w)["count"])
	})

	t.Run("unknown article", func(t *testing.T) {
		repo := new(mockContentRepository)
		repo.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.NewNotFoundError("content missing not found"))

		h := handlers.NewContentHandler(repo)
		req := httptest.NewRequest(http.MethodGet, "/api/content/missing/cross-references", nil)
		req = req.WithContext(loaders.WithLoaders(req.Context(), loaders.NewLoaders(repo)))
		w := serve("GET /api/content/{id}/cross-references", h.GetCrossReferences, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

var cabg = &entities.ProcedureEntry{
	ProcedureID: "surg-cabg",
	Name:        entities.LocalizedText{En: "Coronary Artery Bypass Graft", Es: "Bypass Coronario"},
	Category:    entities.CategorySurgical,
	Complexity:  entities.ComplexityVeryHigh,
	Description: entities.LocalizedText{En: "Bypass of blocked arteries"},
}

func TestProcedureHandler_ListStores(t *testing.T) {
	repo := new(mockProcedureRepository)
	repo.On("Stores", mock.Anything).Return([]repositories.StoreSummary{
		{Name: entities.StoreGeneral, Count: 125},
		{Name: entities.StoreSurgical, Count: 16},
	}, nil)

	h := handlers.NewProcedureHandler(repo)
	w := serve("GET /api/stores", h.ListStores, httptest.NewRequest(http.MethodGet, "/api/stores", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])
	first := body["stores"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "general", first["name"])
	assert.Equal(t, float64(125), first["count"])
}

func TestProcedureHandler_ListProcedures(t *testing.T) {
	t.Run("passes every filter", func(t *testing.T) {
		repo := new(mockProcedureRepository)
		want := repositories.ProcedureFilter{Complexity: "very-high", Specialty: "cardio", Group: "airway"}
		repo.On("List", mock.Anything, entities.StoreSurgical, want).Return([]*entities.ProcedureEntry{cabg}, nil)

		h := handlers.NewProcedureHandler(repo)
		w := serve("GET /api/procedures/{store}", h.ListProcedures,
			httptest.NewRequest(http.MethodGet, "/api/procedures/surgical?complexity=very-high&specialty=cardio&group=airway", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "surgical", body["store"])
		assert.Equal(t, float64(1), body["count"])
		repo.AssertExpectations(t)
	})

	t.Run("unknown store", func(t *testing.T) {
		repo := new(mockProcedureRepository)
		repo.On("List", mock.Anything, entities.StoreName("dental"), repositories.ProcedureFilter{}).
			Return(nil, apperrors.NewNotFoundError("procedure store dental not found"))

		h := handlers.NewProcedureHandler(repo)
		w := serve("GET /api/procedures/{store}", h.ListProcedures, httptest.NewRequest(http.MethodGet, "/api/procedures/dental", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "procedure store dental not found", decode(t, w)["error"])
	})
}

func TestProcedureHandler_SearchProcedures_Localized(t *testing.T) {
	repo := new(mockProcedureRepository)
	repo.On("Search", mock.Anything, entities.StoreSurgical, "bypass").Return([]*entities.ProcedureEntry{cabg}, nil)

	h := handlers.NewProcedureHandler(repo)
	w := serve("GET /api/procedures/{store}/search", h.SearchProcedures,
		httptest.NewRequest(http.MethodGet, "/api/procedures/surgical/search?q=bypass&lang=es", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "bypass", body["query"])
	first := body["procedures"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Bypass Coronario", first["name"])
	assert.Equal(t, "es", first["locale"])
	// no Spanish description authored, English is served instead
	assert.Equal(t, "Bypass of blocked arteries", first["description"])
}

func TestProcedureHandler_GetProcedure(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "bilingual record",
			path:       "/api/procedures/surgical/surg-cabg",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				name := body["name"].(map[string]interface{})
				assert.Equal(t, "Coronary Artery Bypass Graft", name["en"])
				assert.Equal(t, "Bypass Coronario", name["es"])
			},
		},
		{
			name:       "spanish view",
			path:       "/api/procedures/surgical/surg-cabg?lang=es-MX",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Bypass Coronario", body["name"])
			},
		},
		{
			name:       "unknown id",
			path:       "/api/procedures/surgical/surg-cabg",
			err:        apperrors.NewNotFoundError("procedure surg-cabg not found in surgical"),
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Contains(t, body["error"], "not found")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockProcedureRepository)
			if tt.err != nil {
				repo.On("GetByID", mock.Anything, entities.StoreSurgical, "surg-cabg").Return(nil, tt.err)
			} else {
				repo.On("GetByID", mock.Anything, entities.StoreSurgical, "surg-cabg").Return(cabg, nil)
			}

			h := handlers.NewProcedureHandler(repo)
			w := serve("GET /api/procedures/{store}/{id}", h.GetProcedure, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			tt.check(t, decode(t, w))
		})
	}
}
