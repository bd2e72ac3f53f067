package catalog

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zatekoja/medlibrary/internal/domain/entities"
)

// Severity grades a validation finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding
type Issue struct {
	Severity Severity `json:"severity"`
	Store    string   `json:"store"`
	ID       string   `json:"id"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	loc := i.Store + "/" + i.ID
	if i.Field != "" {
		loc += "." + i.Field
	}
	return fmt.Sprintf("%s %s: %s", i.Severity, loc, i.Message)
}

// Report collects validation findings
type Report struct {
	Issues []Issue `json:"issues"`
}

// Errors returns findings of error severity
func (r *Report) Errors() []Issue {
	return r.bySeverity(SeverityError)
}

// Warnings returns findings of warning severity
func (r *Report) Warnings() []Issue {
	return r.bySeverity(SeverityWarning)
}

// HasErrors reports whether any finding is an error
func (r *Report) HasErrors() bool {
	return len(r.Errors()) > 0
}

func (r *Report) bySeverity(s Severity) []Issue {
	out := make([]Issue, 0)
	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}

func (r *Report) add(s Severity, store, id, field, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{
		Severity: s,
		Store:    store,
		ID:       id,
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
	})
}

const contentStoreName = "content"

var placeholderPattern = regexp.MustCompile(`(?i)\b(todo|fixme|tbd|placeholder|lorem ipsum)\b`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the catalog against the authoring rules. It never
// modifies the catalog, and the stores serve data whether or not it passes.
func Validate(c *Catalog) *Report {
	r := &Report{Issues: make([]Issue, 0)}
	for _, s := range c.Stores() {
		validateProcedures(r, string(s.Name()), s.All())
	}
	validateContent(r, c)
	return r
}

func validateProcedures(r *Report, store string, entries []*entities.ProcedureEntry) {
	seen := make(map[string]int, len(entries))
	for i, p := range entries {
		structIssues(r, store, p.ProcedureID, p)

		if first, dup := seen[p.ProcedureID]; dup {
			r.add(SeverityError, store, p.ProcedureID, "procedureId",
				"duplicate id at position %d, first defined at %d; lookups return the first", i, first)
		} else {
			seen[p.ProcedureID] = i
		}

		if p.Name.En == "" {
			r.add(SeverityError, store, p.ProcedureID, "name.en", "missing English name")
		}
		if p.Name.Es == "" {
			r.add(SeverityWarning, store, p.ProcedureID, "name.es", "missing Spanish name")
		}
		if p.Description.En == "" {
			r.add(SeverityError, store, p.ProcedureID, "description.en", "missing English description")
		}

		lists := p.BilingualLists()
		for _, field := range slices.Sorted(maps.Keys(lists)) {
			for n, item := range lists[field] {
				if !item.IsZero() && !item.Complete() {
					r.add(SeverityWarning, store, p.ProcedureID, fmt.Sprintf("%s[%d]", field, n),
						"bilingual item has only one language")
				}
			}
		}

		for _, f := range []struct{ field, text string }{
			{"description.en", p.Description.En},
			{"patientExplanation.en", p.PatientExplanation.En},
			{"whatToExpect.en", p.WhatToExpect.En},
		} {
			if placeholderPattern.MatchString(f.text) {
				r.add(SeverityWarning, store, p.ProcedureID, f.field, "contains placeholder text")
			}
		}
	}
}

func validateContent(r *Report, c *Catalog) {
	articles := c.Content().All()
	seen := make(map[string]int, len(articles))
	for i, a := range articles {
		structIssues(r, contentStoreName, a.ID, a)

		if first, dup := seen[a.ID]; dup {
			r.add(SeverityError, contentStoreName, a.ID, "id",
				"duplicate id at position %d, first defined at %d; lookups return the first", i, first)
		} else {
			seen[a.ID] = i
		}

		if a.NameEs == "" {
			r.add(SeverityWarning, contentStoreName, a.ID, "nameEs", "missing Spanish name")
		}

		validateLevels(r, a)

		for _, ref := range c.Content().Resolve(a.CrossReferences) {
			switch {
			case ref.TargetID == a.ID:
				r.add(SeverityWarning, contentStoreName, a.ID, "crossReferences", "references itself")
			case ref.Dangling():
				r.add(SeverityWarning, contentStoreName, a.ID, "crossReferences",
					"target %q does not exist", ref.TargetID)
			case ref.TargetType != "" && ref.TargetType != ref.Target.Type:
				r.add(SeverityWarning, contentStoreName, a.ID, "crossReferences",
					"target %q has type %q, reference says %q", ref.TargetID, ref.Target.Type, ref.TargetType)
			}
		}
	}
}

func validateLevels(r *Report, a *entities.EducationalContent) {
	missing := make([]string, 0)
	for n := entities.MinLevel; n <= entities.MaxLevel; n++ {
		if _, ok := a.Levels[n]; !ok {
			missing = append(missing, fmt.Sprint(n))
		}
	}
	if len(missing) > 0 {
		r.add(SeverityWarning, contentStoreName, a.ID, "levels", "missing levels %s", strings.Join(missing, ", "))
	}

	for _, n := range a.LevelNumbers() {
		lc := a.Levels[n]
		field := fmt.Sprintf("levels[%d]", n)

		if n < entities.MinLevel || n > entities.MaxLevel {
			r.add(SeverityError, contentStoreName, a.ID, field, "level must be between %d and %d", entities.MinLevel, entities.MaxLevel)
			continue
		}
		if lc.Level != n {
			r.add(SeverityError, contentStoreName, a.ID, field, "declares level %d", lc.Level)
		}
		if strings.TrimSpace(lc.Summary) == "" {
			r.add(SeverityError, contentStoreName, a.ID, field+".summary", "empty summary")
		}
		if strings.TrimSpace(lc.Explanation) == "" {
			r.add(SeverityError, contentStoreName, a.ID, field+".explanation", "empty explanation")
		}
		for k, term := range lc.KeyTerms {
			if term.Term == "" || term.Definition == "" {
				r.add(SeverityError, contentStoreName, a.ID, fmt.Sprintf("%s.keyTerms[%d]", field, k), "key term needs a term and a definition")
			}
		}
		if placeholderPattern.MatchString(lc.Summary) || placeholderPattern.MatchString(lc.Explanation) {
			r.add(SeverityWarning, contentStoreName, a.ID, field, "contains placeholder text")
		}
	}
}

func structIssues(r *Report, store, id string, v any) {
	err := validate.Struct(v)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		r.add(SeverityError, store, id, "", "%v", err)
		return
	}
	for _, fe := range verrs {
		field := fe.Namespace()
		if dot := strings.IndexByte(field, '.'); dot >= 0 {
			field = field[dot+1:]
		}
		msg := "failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		r.add(SeverityError, store, id, field, "%s (value %v)", msg, fe.Value())
	}
}
