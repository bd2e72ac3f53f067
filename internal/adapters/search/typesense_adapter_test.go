package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
)

func TestBuildProcedureDocument(t *testing.T) {
	entry := &entities.ProcedureEntry{
		ProcedureID: "surg-cabg",
		Name:        entities.LocalizedText{En: "Coronary Artery Bypass Graft", Es: "Bypass Coronario"},
		Category:    entities.CategorySurgical,
		Complexity:  entities.ComplexityVeryHigh,
		Specialties: []string{"cardiothoracic-surgery"},
		Settings:    []entities.Setting{entities.SettingOperatingRoom},
		Anesthesia:  []entities.Anesthesia{entities.AnesthesiaGeneral},
		Coding:      &entities.Coding{ICD10PCS: "021", CPT: []string{"33533"}},
		Description: entities.LocalizedText{En: "Bypass of blocked coronary arteries"},
	}

	doc := buildProcedureDocument(entities.StoreSurgical, entry)

	assert.Equal(t, "surgical:surg-cabg", doc["id"])
	assert.Equal(t, "surg-cabg", doc["procedure_id"])
	assert.Equal(t, "surgical", doc["store"])
	assert.Equal(t, int32(5), doc["complexity_rank"])
	assert.Equal(t, []string{"operating-room"}, doc["settings"])
	assert.Equal(t, []string{"general"}, doc["anesthesia"])
	assert.Equal(t, []string{}, doc["body_regions"])
	assert.Equal(t, []string{"33533"}, doc["cpt"])
	assert.NotContains(t, doc, "description_es")
}

func TestBuildContentDocument(t *testing.T) {
	article := &entities.EducationalContent{
		ID:     "concept-brca",
		Type:   entities.ContentTypeConcept,
		Name:   "BRCA1/2 and Hereditary Breast-Ovarian Cancer",
		Status: entities.ContentStatusPublished,
		Levels: map[int]entities.LevelContent{
			3: {Level: 3, Summary: "advanced"},
			1: {Level: 1, Summary: "simple"},
		},
		Tags: entities.ContentTags{
			Topics:            []string{"Genetics", "oncology"},
			Keywords:          []string{"genetics", " BRCA1 ", ""},
			ClinicalRelevance: entities.ClinicalRelevanceHigh,
		},
		UpdatedAt: time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
	}

	doc := buildContentDocument(article)

	assert.Equal(t, []int{1, 3}, doc["levels"])
	assert.Equal(t, "simple", doc["summary"])
	assert.Equal(t, []string{"genetics", "oncology", "brca1"}, doc["tags"])
	assert.Equal(t, "high", doc["clinical_relevance"])
	assert.Equal(t, article.UpdatedAt.Unix(), doc["updated_at"])
	assert.NotContains(t, doc, "name_es")
}

func TestProcedureDocumentID(t *testing.T) {
	assert.Equal(t, "interventional-radiology:ir-tips", ProcedureDocumentID(entities.StoreInterventionalRadiology, "ir-tips"))
}
