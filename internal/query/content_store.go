package query

import (
	"github.com/zatekoja/medlibrary/internal/domain/entities"
)

type contentField = Field[*entities.EducationalContent]

var contentSearchFields = []contentField{
	Text(func(c *entities.EducationalContent) string { return c.Name }),
	Text(func(c *entities.EducationalContent) string { return c.NameEs }),
	List(func(c *entities.EducationalContent) []string { return c.AlternateNames }),
	List(func(c *entities.EducationalContent) []string { return c.Tags.Keywords }),
}

// ContentStore answers queries against the educational articles.
// Returned articles are shared by every caller and must not be modified.
type ContentStore struct {
	coll *Collection[*entities.EducationalContent]
}

// NewContentStore creates a new content store
func NewContentStore(articles []*entities.EducationalContent) *ContentStore {
	return &ContentStore{
		coll: NewCollection(articles, func(c *entities.EducationalContent) string {
			return c.ID
		}),
	}
}

// Len returns the number of articles
func (s *ContentStore) Len() int {
	return s.coll.Len()
}

// All returns every article in store order
func (s *ContentStore) All() []*entities.EducationalContent {
	return s.coll.All()
}

// FindByID returns the first article with the given id
func (s *ContentStore) FindByID(id string) (*entities.EducationalContent, bool) {
	return s.coll.Find(id)
}

// FilterByTag returns articles whose systems, topics or keywords contain tag, ignoring case
func (s *ContentStore) FilterByTag(tag string) []*entities.EducationalContent {
	return s.coll.Filter(tagIs(tag))
}

// FilterByType returns articles of the given type
func (s *ContentStore) FilterByType(t entities.ContentType) []*entities.EducationalContent {
	return s.coll.Filter(typeIs(t))
}

// FilterByClinicalRelevance returns articles with the given clinical relevance
func (s *ContentStore) FilterByClinicalRelevance(r entities.ClinicalRelevance) []*entities.EducationalContent {
	return s.coll.Filter(relevanceIs(r))
}

// FilterByStatus returns articles in the given publication state
func (s *ContentStore) FilterByStatus(status entities.ContentStatus) []*entities.EducationalContent {
	return s.coll.Filter(statusIs(status))
}

// Match returns articles satisfying every non-empty criterion
func (s *ContentStore) Match(c ContentCriteria) []*entities.EducationalContent {
	var preds []Predicate[*entities.EducationalContent]
	if c.Tag != "" {
		preds = append(preds, tagIs(c.Tag))
	}
	if c.Type != "" {
		preds = append(preds, typeIs(c.Type))
	}
	if c.ClinicalRelevance != "" {
		preds = append(preds, relevanceIs(c.ClinicalRelevance))
	}
	if c.Status != "" {
		preds = append(preds, statusIs(c.Status))
	}
	return s.coll.Filter(And(preds...))
}

// ContentCriteria combines article filters with AND
type ContentCriteria struct {
	Tag               string
	Type              entities.ContentType
	ClinicalRelevance entities.ClinicalRelevance
	Status            entities.ContentStatus
}

// Search returns articles where q is a substring of a name, alternate name or keyword
func (s *ContentStore) Search(q string) []*entities.EducationalContent {
	return s.coll.Search(q, contentSearchFields...)
}

// Level returns one reading level of an article. It reports false when
// either the article or the level is absent.
func (s *ContentStore) Level(id string, level int) (*entities.LevelContent, bool) {
	article, ok := s.coll.Find(id)
	if !ok {
		return nil, false
	}
	lc, ok := article.Levels[level]
	if !ok {
		return nil, false
	}
	return &lc, true
}

// CrossReferences resolves the links of an article against the store.
// Dangling links keep a nil Target. It reports false only when the
// source article is absent.
func (s *ContentStore) CrossReferences(id string) ([]entities.ResolvedReference, bool) {
	article, ok := s.coll.Find(id)
	if !ok {
		return nil, false
	}
	return s.Resolve(article.CrossReferences), true
}

// Resolve looks up the target of each reference
func (s *ContentStore) Resolve(refs []entities.CrossReference) []entities.ResolvedReference {
	out := make([]entities.ResolvedReference, 0, len(refs))
	for _, ref := range refs {
		target, _ := s.coll.Find(ref.TargetID)
		out = append(out, entities.ResolvedReference{CrossReference: ref, Target: target})
	}
	return out
}

// Related returns the existing articles an article links to with the given relationship
func (s *ContentStore) Related(id string, rel entities.Relationship) []*entities.EducationalContent {
	out := make([]*entities.EducationalContent, 0)
	refs, ok := s.CrossReferences(id)
	if !ok {
		return out
	}
	for _, ref := range refs {
		if ref.Relationship == rel && ref.Target != nil {
			out = append(out, ref.Target)
		}
	}
	return out
}

func tagIs(tag string) Predicate[*entities.EducationalContent] {
	return AnyEqualFold(func(c *entities.EducationalContent) []string {
		return c.Tags.TagValues()
	}, tag)
}

func typeIs(t entities.ContentType) Predicate[*entities.EducationalContent] {
	return Equals(func(c *entities.EducationalContent) entities.ContentType { return c.Type }, t)
}

func relevanceIs(r entities.ClinicalRelevance) Predicate[*entities.EducationalContent] {
	return Equals(func(c *entities.EducationalContent) entities.ClinicalRelevance {
		return c.Tags.ClinicalRelevance
	}, r)
}

func statusIs(status entities.ContentStatus) Predicate[*entities.EducationalContent] {
	return Equals(func(c *entities.EducationalContent) entities.ContentStatus { return c.Status }, status)
}
