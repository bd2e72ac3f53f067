package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	id   string
	name string
	tags []string
}

func recordID(r record) string { return r.id }

func recordIDs(records []record) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.id)
	}
	return ids
}

func fixture() *Collection[record] {
	return NewCollection([]record{
		{id: "a", name: "Alpha Ray", tags: []string{"Cardiology"}},
		{id: "b", name: "Beta", tags: []string{"pericardium", "chest"}},
		{id: "a", name: "Duplicate Alpha", tags: nil},
		{id: "c", name: "Straße", tags: []string{"neurology"}},
	}, recordID)
}

func TestCollectionFind_FirstMatchWins(t *testing.T) {
	c := fixture()

	got, ok := c.Find("a")
	require.True(t, ok)
	assert.Equal(t, "Alpha Ray", got.name)

	_, ok = c.Find("does-not-exist")
	assert.False(t, ok)
}

func TestCollectionFilter_PreservesOrderAndNeverNil(t *testing.T) {
	c := fixture()

	got := c.Filter(func(r record) bool { return r.id != "b" })
	if diff := cmp.Diff([]string{"a", "a", "c"}, recordIDs(got)); diff != "" {
		t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
	}

	none := c.Filter(func(record) bool { return false })
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCollectionSearch(t *testing.T) {
	c := fixture()
	name := Text(func(r record) string { return r.name })
	tags := List(func(r record) []string { return r.tags })

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{name: "lower case", query: "alpha", want: []string{"a", "a"}},
		{name: "upper case", query: "ALPHA", want: []string{"a", "a"}},
		{name: "list field", query: "card", want: []string{"a", "b"}},
		{name: "unicode lower", query: "STRAßE", want: []string{"c"}},
		{name: "no full case folding", query: "strasse", want: []string{}},
		{name: "empty matches all", query: "", want: []string{"a", "b", "a", "c"}},
		{name: "no match", query: "zeta", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Search(tt.query, name, tags)
			if diff := cmp.Diff(tt.want, recordIDs(got)); diff != "" {
				t.Errorf("Search(%q) mismatch (-want +got):\n%s", tt.query, diff)
			}
		})
	}
}

func TestCollectionAll_ReturnsCopy(t *testing.T) {
	c := fixture()

	all := c.All()
	all[0] = record{id: "mutated"}

	got, ok := c.Find("a")
	require.True(t, ok)
	assert.Equal(t, "Alpha Ray", got.name)
	assert.Equal(t, 4, c.Len())
}

func TestPredicates(t *testing.T) {
	tags := func(r record) []string { return r.tags }
	r := record{id: "x", tags: []string{"Cardiothoracic-Surgery", "chest"}}

	assert.True(t, AnyContains(tags, "CARDIO")(r))
	assert.False(t, AnyContains(tags, "neuro")(r))
	assert.True(t, AnyEqualFold(tags, "CHEST")(r))
	assert.False(t, AnyEqualFold(tags, "ches")(r))
	assert.True(t, Equals(recordID, "x")(r))
	assert.True(t, And[record]()(r))
	assert.False(t, And(Equals(recordID, "x"), AnyEqualFold(tags, "abdomen"))(r))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("Hereditary BRCA1", "brca"))
	assert.True(t, ContainsFold("Cirugía", "CIRUGÍA"))
	assert.False(t, ContainsFold("brca", "brca2"))
	assert.False(t, ContainsFold("Straße", "ss"))
	assert.True(t, ContainsFold("STRAẞE", "straße"))
}
