package query

import (
	"slices"
	"strings"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
)

type procedureField = Field[*entities.ProcedureEntry]

var (
	fieldNameEn = Text(func(p *entities.ProcedureEntry) string { return p.Name.En })
	fieldNameEs = Text(func(p *entities.ProcedureEntry) string { return p.Name.Es })
	fieldDescEn = Text(func(p *entities.ProcedureEntry) string { return p.Description.En })
	fieldExplEn = Text(func(p *entities.ProcedureEntry) string { return p.PatientExplanation.En })
	fieldID     = Text(func(p *entities.ProcedureEntry) string { return p.ProcedureID })
	fieldSpecs  = List(specialtiesOf)
)

// searchFields is the fixed set of text fields each store searches
var searchFields = map[entities.StoreName][]procedureField{
	entities.StoreGeneral:                 {fieldNameEn, fieldNameEs, fieldDescEn, fieldExplEn, fieldID},
	entities.StoreEmergency:               {fieldNameEn, fieldNameEs, fieldDescEn, fieldSpecs},
	entities.StoreEndoscopic:              {fieldNameEn, fieldNameEs, fieldDescEn, fieldSpecs},
	entities.StoreInterventionalRadiology: {fieldNameEn, fieldNameEs, fieldDescEn, fieldSpecs, fieldExplEn},
	entities.StoreSurgical:                {fieldNameEn, fieldNameEs, fieldDescEn, fieldSpecs},
}

// EmergencyGroups maps emergency clinical groups to procedureId keywords
var EmergencyGroups = map[string][]string{
	"airway":        {"intubation", "cricothyrotomy", "tracheostomy"},
	"vascular":      {"central-line", "io-access"},
	"trauma":        {"chest-tube", "thoracotomy", "dpl"},
	"resuscitation": {"cpr", "defibrillation", "pericardiocentesis", "cardioversion"},
}

func specialtiesOf(p *entities.ProcedureEntry) []string { return p.Specialties }

func bodyRegionsOf(p *entities.ProcedureEntry) []string { return p.BodyRegions }

// ProcedureStore answers queries against one procedure reference table.
// Returned entries are shared by every caller and must not be modified.
type ProcedureStore struct {
	name   entities.StoreName
	coll   *Collection[*entities.ProcedureEntry]
	fields []procedureField
	groups map[string][]string
}

// NewProcedureStore creates a new procedure store
func NewProcedureStore(name entities.StoreName, entries []*entities.ProcedureEntry) *ProcedureStore {
	fields, ok := searchFields[name]
	if !ok {
		fields = []procedureField{fieldNameEn, fieldNameEs, fieldDescEn, fieldSpecs}
	}
	var groups map[string][]string
	if name == entities.StoreEmergency {
		groups = EmergencyGroups
	}
	return &ProcedureStore{
		name: name,
		coll: NewCollection(entries, func(p *entities.ProcedureEntry) string {
			return p.ProcedureID
		}),
		fields: fields,
		groups: groups,
	}
}

// Name returns the store name
func (s *ProcedureStore) Name() entities.StoreName {
	return s.name
}

// Len returns the number of entries
func (s *ProcedureStore) Len() int {
	return s.coll.Len()
}

// All returns every entry in store order
func (s *ProcedureStore) All() []*entities.ProcedureEntry {
	return s.coll.All()
}

// FindByProcedureID returns the first entry with the given id
func (s *ProcedureStore) FindByProcedureID(id string) (*entities.ProcedureEntry, bool) {
	return s.coll.Find(id)
}

// FilterByComplexity returns entries with exactly the given complexity
func (s *ProcedureStore) FilterByComplexity(level entities.Complexity) []*entities.ProcedureEntry {
	return s.coll.Filter(s.complexityIs(level))
}

// FilterByCategory returns entries with exactly the given category
func (s *ProcedureStore) FilterByCategory(category entities.Category) []*entities.ProcedureEntry {
	return s.coll.Filter(s.categoryIs(category))
}

// FilterBySpecialty returns entries with a specialty containing text, ignoring case
func (s *ProcedureStore) FilterBySpecialty(text string) []*entities.ProcedureEntry {
	return s.coll.Filter(AnyContains(specialtiesOf, text))
}

// FilterByBodyRegion returns entries with a body region containing text, ignoring case
func (s *ProcedureStore) FilterByBodyRegion(text string) []*entities.ProcedureEntry {
	return s.coll.Filter(AnyContains(bodyRegionsOf, text))
}

// FilterBySetting returns entries performed in the given setting
func (s *ProcedureStore) FilterBySetting(setting entities.Setting) []*entities.ProcedureEntry {
	return s.coll.Filter(s.settingIs(setting))
}

// FilterByAnesthesia returns entries that may use the given anesthesia
func (s *ProcedureStore) FilterByAnesthesia(anesthesia entities.Anesthesia) []*entities.ProcedureEntry {
	return s.coll.Filter(s.anesthesiaIs(anesthesia))
}

// FilterByGroup returns entries in a clinical group. Only the emergency
// store defines groups; an unknown group yields no entries.
func (s *ProcedureStore) FilterByGroup(group string) []*entities.ProcedureEntry {
	return s.coll.Filter(s.groupIs(group))
}

// Groups returns the clinical group names the store defines, sorted
func (s *ProcedureStore) Groups() []string {
	names := make([]string, 0, len(s.groups))
	for name := range s.groups {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Search returns entries where q is a substring of any searched field, ignoring case
func (s *ProcedureStore) Search(q string) []*entities.ProcedureEntry {
	return s.coll.Search(q, s.fields...)
}

// Match returns entries satisfying every criterion. Zero-valued criteria are ignored.
func (s *ProcedureStore) Match(c Criteria) []*entities.ProcedureEntry {
	preds := make([]Predicate[*entities.ProcedureEntry], 0, 7)
	if c.Category != "" {
		preds = append(preds, s.categoryIs(c.Category))
	}
	if c.Complexity != "" {
		preds = append(preds, s.complexityIs(c.Complexity))
	}
	if c.Specialty != "" {
		preds = append(preds, AnyContains(specialtiesOf, c.Specialty))
	}
	if c.BodyRegion != "" {
		preds = append(preds, AnyContains(bodyRegionsOf, c.BodyRegion))
	}
	if c.Setting != "" {
		preds = append(preds, s.settingIs(c.Setting))
	}
	if c.Anesthesia != "" {
		preds = append(preds, s.anesthesiaIs(c.Anesthesia))
	}
	if c.Group != "" {
		preds = append(preds, s.groupIs(c.Group))
	}
	return s.coll.Filter(And(preds...))
}

// Criteria combines procedure filters with AND
type Criteria struct {
	Category   entities.Category
	Complexity entities.Complexity
	Specialty  string
	BodyRegion string
	Setting    entities.Setting
	Anesthesia entities.Anesthesia
	Group      string
}

func (s *ProcedureStore) complexityIs(level entities.Complexity) Predicate[*entities.ProcedureEntry] {
	return Equals(func(p *entities.ProcedureEntry) entities.Complexity { return p.Complexity }, level)
}

func (s *ProcedureStore) categoryIs(category entities.Category) Predicate[*entities.ProcedureEntry] {
	return Equals(func(p *entities.ProcedureEntry) entities.Category { return p.Category }, category)
}

func (s *ProcedureStore) settingIs(setting entities.Setting) Predicate[*entities.ProcedureEntry] {
	return func(p *entities.ProcedureEntry) bool {
		return slices.Contains(p.Settings, setting)
	}
}

func (s *ProcedureStore) anesthesiaIs(anesthesia entities.Anesthesia) Predicate[*entities.ProcedureEntry] {
	return func(p *entities.ProcedureEntry) bool {
		return slices.Contains(p.Anesthesia, anesthesia)
	}
}

func (s *ProcedureStore) groupIs(group string) Predicate[*entities.ProcedureEntry] {
	keywords := s.groups[strings.ToLower(group)]
	return func(p *entities.ProcedureEntry) bool {
		for _, keyword := range keywords {
			if strings.Contains(p.ProcedureID, keyword) {
				return true
			}
		}
		return false
	}
}
