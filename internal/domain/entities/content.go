package entities

import (
	"sort"
	"time"
)

// ContentType tags what kind of subject an article covers
type ContentType string

const (
	ContentTypeStructure ContentType = "structure"
	ContentTypeSystem    ContentType = "system"
	ContentTypePathway   ContentType = "pathway"
	ContentTypeProcess   ContentType = "process"
	ContentTypeCondition ContentType = "condition"
	ContentTypeConcept   ContentType = "concept"
	ContentTypeTopic     ContentType = "topic"
)

// ContentStatus is the publication state of an article
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusReview    ContentStatus = "review"
	ContentStatusPublished ContentStatus = "published"
)

// Relationship describes how a cross-referenced article relates to its source
type Relationship string

const (
	RelationshipParent  Relationship = "parent"
	RelationshipChild   Relationship = "child"
	RelationshipSibling Relationship = "sibling"
	RelationshipRelated Relationship = "related"
	RelationshipSeeAlso Relationship = "see-also"
)

// ClinicalRelevance grades how clinically important an article is
type ClinicalRelevance string

const (
	ClinicalRelevanceLow      ClinicalRelevance = "low"
	ClinicalRelevanceMedium   ClinicalRelevance = "medium"
	ClinicalRelevanceHigh     ClinicalRelevance = "high"
	ClinicalRelevanceCritical ClinicalRelevance = "critical"
)

const (
	// MinLevel is the simplest reading level
	MinLevel = 1
	// MaxLevel is the most advanced reading level
	MaxLevel = 5
)

// KeyTerm is a glossary entry attached to a reading level
type KeyTerm struct {
	Term          string `json:"term" yaml:"term"`
	Definition    string `json:"definition" yaml:"definition"`
	Pronunciation string `json:"pronunciation,omitempty" yaml:"pronunciation,omitempty"`
}

// LevelContent is the article text written for one reading level
type LevelContent struct {
	Level         int       `json:"level" yaml:"level"`
	Summary       string    `json:"summary" yaml:"summary"`
	Explanation   string    `json:"explanation" yaml:"explanation"`
	KeyTerms      []KeyTerm `json:"keyTerms" yaml:"keyTerms"`
	Analogies     []string  `json:"analogies,omitempty" yaml:"analogies,omitempty"`
	Examples      []string  `json:"examples,omitempty" yaml:"examples,omitempty"`
	ClinicalNotes string    `json:"clinicalNotes,omitempty" yaml:"clinicalNotes,omitempty"`

	PatientCounselingPoints []string `json:"patientCounselingPoints,omitempty" yaml:"patientCounselingPoints,omitempty"`
}

// MediaReference points at an illustration. No binary media is stored.
type MediaReference struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Type        string `json:"type" yaml:"type"`
	Filename    string `json:"filename" yaml:"filename"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Citation is a bibliographic source for an article
type Citation struct {
	ID      string   `json:"id" yaml:"id" validate:"required"`
	Type    string   `json:"type" yaml:"type"`
	Title   string   `json:"title" yaml:"title" validate:"required"`
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Source  string   `json:"source,omitempty" yaml:"source,omitempty"`
	Year    int      `json:"year,omitempty" yaml:"year,omitempty"`
	URL     string   `json:"url,omitempty" yaml:"url,omitempty"`
	DOI     string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMID    string   `json:"pmid,omitempty" yaml:"pmid,omitempty"`
}

// CrossReference links to another article by id. The target is resolved
// lazily and may not exist.
type CrossReference struct {
	TargetID     string       `json:"targetId" yaml:"targetId" validate:"required"`
	TargetType   ContentType  `json:"targetType,omitempty" yaml:"targetType,omitempty"`
	Relationship Relationship `json:"relationship" yaml:"relationship" validate:"required,oneof=parent child sibling related see-also"`
	Label        string       `json:"label" yaml:"label"`
}

// ExamRelevance flags which licensing exams an article supports
type ExamRelevance struct {
	USMLE bool     `json:"usmle,omitempty" yaml:"usmle,omitempty"`
	NBME  bool     `json:"nbme,omitempty" yaml:"nbme,omitempty"`
	Shelf []string `json:"shelf,omitempty" yaml:"shelf,omitempty"`
}

// ContentTags is the classification metadata of an article
type ContentTags struct {
	Systems           []string          `json:"systems" yaml:"systems"`
	Topics            []string          `json:"topics" yaml:"topics"`
	Keywords          []string          `json:"keywords" yaml:"keywords"`
	ClinicalRelevance ClinicalRelevance `json:"clinicalRelevance" yaml:"clinicalRelevance" validate:"omitempty,oneof=low medium high critical"`
	ExamRelevance     ExamRelevance     `json:"examRelevance" yaml:"examRelevance"`
}

// EducationalContent is a multi-level educational article.
// Articles are loaded once and shared by every caller; treat them as read-only.
type EducationalContent struct {
	ID              string               `json:"id" yaml:"id" validate:"required"`
	Type            ContentType          `json:"type" yaml:"type" validate:"required,oneof=structure system pathway process condition concept topic"`
	Name            string               `json:"name" yaml:"name" validate:"required"`
	NameEs          string               `json:"nameEs,omitempty" yaml:"nameEs,omitempty"`
	AlternateNames  []string             `json:"alternateNames" yaml:"alternateNames"`
	Levels          map[int]LevelContent `json:"levels" yaml:"levels" validate:"required,min=1"`
	Media           []MediaReference     `json:"media" yaml:"media" validate:"dive"`
	Citations       []Citation           `json:"citations" yaml:"citations" validate:"dive"`
	CrossReferences []CrossReference     `json:"crossReferences" yaml:"crossReferences" validate:"dive"`
	Tags            ContentTags          `json:"tags" yaml:"tags"`
	CreatedAt       time.Time            `json:"createdAt" yaml:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt" yaml:"updatedAt"`
	Version         int                  `json:"version" yaml:"version" validate:"gte=1"`
	Status          ContentStatus        `json:"status" yaml:"status" validate:"required,oneof=draft review published"`
	Contributors    []string             `json:"contributors,omitempty" yaml:"contributors,omitempty"`
}

// LevelNumbers returns the authored reading levels in ascending order
func (c *EducationalContent) LevelNumbers() []int {
	levels := make([]int, 0, len(c.Levels))
	for n := range c.Levels {
		levels = append(levels, n)
	}
	sort.Ints(levels)
	return levels
}

// TagValues returns systems, topics and keywords as one list
func (t ContentTags) TagValues() []string {
	values := make([]string, 0, len(t.Systems)+len(t.Topics)+len(t.Keywords))
	values = append(values, t.Systems...)
	values = append(values, t.Topics...)
	values = append(values, t.Keywords...)
	return values
}

// ResolvedReference pairs a cross-reference with its target article.
// Target is nil when the reference dangles.
type ResolvedReference struct {
	CrossReference
	Target *EducationalContent `json:"target,omitempty"`
}

// Dangling reports whether the referenced article does not exist
func (r ResolvedReference) Dangling() bool {
	return r.Target == nil
}
