package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/medlibrary/internal/adapters/memory"
	"github.com/zatekoja/medlibrary/internal/catalog"
)

func newTestTools(t *testing.T) *Tools {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewTools(memory.NewContentAdapter(c, nil), memory.NewProcedureAdapter(c, nil))
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestNewServer(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	s := NewServer(memory.NewContentAdapter(c, nil), memory.NewProcedureAdapter(c, nil))
	assert.NotNil(t, s)
}

func TestTools_ListStores(t *testing.T) {
	result, err := newTestTools(t).ListStores(context.Background(), mcp.CallToolRequest{}, ListStoresRequest{})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	var stores []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &stores))
	require.Len(t, stores, 5)
	assert.Equal(t, "general", stores[0]["name"])
}

func TestTools_GetContent(t *testing.T) {
	tools := newTestTools(t)

	result, err := tools.GetContent(context.Background(), mcp.CallToolRequest{}, IDRequest{ID: "concept-brca"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), `"id":"concept-brca"`)

	result, err = tools.GetContent(context.Background(), mcp.CallToolRequest{}, IDRequest{ID: "concept-unknown"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not found")

	result, err = tools.GetContent(context.Background(), mcp.CallToolRequest{}, IDRequest{})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestTools_SearchContent_EmptyQueryReturnsEverything(t *testing.T) {
	result, err := newTestTools(t).SearchContent(context.Background(), mcp.CallToolRequest{}, SearchContentRequest{})
	require.NoError(t, err)

	var summaries []contentSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &summaries))
	assert.Len(t, summaries, 4)
}

func TestTools_ContentLevel(t *testing.T) {
	tools := newTestTools(t)

	tests := []struct {
		name    string
		args    ContentLevelRequest
		wantErr bool
	}{
		{"authored", ContentLevelRequest{ID: "concept-brca", Level: 5}, false},
		{"out of range", ContentLevelRequest{ID: "concept-brca", Level: 0}, true},
		{"not authored", ContentLevelRequest{ID: "concept-dna-repair", Level: 5}, true},
		{"missing id", ContentLevelRequest{Level: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tools.ContentLevel(context.Background(), mcp.CallToolRequest{}, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantErr, result.IsError)
		})
	}
}

func TestTools_CrossReferences(t *testing.T) {
	result, err := newTestTools(t).CrossReferences(context.Background(), mcp.CallToolRequest{}, IDRequest{ID: "concept-brca"})
	require.NoError(t, err)

	var refs []referenceSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &refs))
	require.Len(t, refs, 4)

	var dangling []string
	for _, r := range refs {
		if r.Dangling {
			dangling = append(dangling, r.TargetID)
		} else {
			assert.NotEmpty(t, r.TargetName)
		}
	}
	assert.Equal(t, []string{"concept-lynch-syndrome"}, dangling)
}

func TestTools_Procedures(t *testing.T) {
	tools := newTestTools(t)
	ctx := context.Background()

	t.Run("get localized", func(t *testing.T) {
		result, err := tools.GetProcedure(ctx, mcp.CallToolRequest{}, GetProcedureRequest{Store: "emergency", ID: "emerg-intubation", Lang: "es"})
		require.NoError(t, err)
		assert.False(t, result.IsError)

		var view map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &view))
		assert.Equal(t, "es", view["locale"])
		assert.IsType(t, "", view["name"])
	})

	t.Run("unknown store", func(t *testing.T) {
		result, err := tools.ListProcedures(ctx, mcp.CallToolRequest{}, ListProceduresRequest{Store: "dental"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("group filter", func(t *testing.T) {
		result, err := tools.ListProcedures(ctx, mcp.CallToolRequest{}, ListProceduresRequest{Store: "emergency", Group: "airway"})
		require.NoError(t, err)

		var entries []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &entries))
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e["procedureId"].(string))
		}
		assert.Equal(t, []string{"emerg-intubation", "emerg-cricothyrotomy", "emerg-tracheostomy"}, ids)
	})

	t.Run("search whole store", func(t *testing.T) {
		result, err := tools.SearchProcedures(ctx, mcp.CallToolRequest{}, SearchProceduresRequest{Store: "surgical"})
		require.NoError(t, err)

		var entries []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &entries))
		assert.Len(t, entries, 16)
	})

	t.Run("store required", func(t *testing.T) {
		result, err := tools.SearchProcedures(ctx, mcp.CallToolRequest{}, SearchProceduresRequest{Query: "x"})
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}
