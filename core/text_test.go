package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_TextContent(t *testing.T) {
	doc := &Document{
		Text:     "  Heart ",
		RichText: "Pumps blood",
		Notes:    "",
		Links:    []string{"https://a", "", "https://b"},
		Attributes: []Attribute{
			{Name: "organ", Value: "yes"},
			{Name: "empty", Value: " "},
		},
	}

	assert.Equal(t,
		"Title: Heart Description: Pumps blood Links: https://a, https://b Attributes: organ: yes",
		doc.TextContent())
	assert.Empty(t, (&Document{}).TextContent())
}

func TestDocument_QueryText(t *testing.T) {
	doc := &Document{Text: " Heart ", RichText: "Pumps blood", Notes: "see valves"}
	assert.Equal(t, "Heart\nsee valves\nPumps blood", doc.QueryText())

	assert.Empty(t, (&Document{Text: "   "}).QueryText())
}

func TestDocument_DisplayNodeID(t *testing.T) {
	assert.Equal(t, "n-1", (&Document{Id: 4, NodeID: "n-1"}).DisplayNodeID())
	assert.Equal(t, "4", (&Document{Id: 4}).DisplayNodeID())
}

func TestNormalizeRef(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{name: "nil", in: nil},
		{name: "id", in: ID(42), want: "id:42", ok: true},
		{name: "int", in: 7, want: "7", ok: true},
		{name: "negative int", in: -1},
		{name: "integral float", in: float64(12), want: "12", ok: true},
		{name: "fractional float", in: 1.5},
		{name: "json number", in: json.Number("99"), want: "99", ok: true},
		{name: "plain string", in: " node-a ", want: "node-a", ok: true},
		{name: "blank string", in: "   "},
		{name: "object id wrapper", in: `ObjectId("65a1f0")`, want: "65a1f0", ok: true},
		{name: "broken wrapper", in: `ObjectId("65a1f0"`},
		{name: "oid map", in: map[string]any{"$oid": "65a1f0"}, want: "65a1f0", ok: true},
		{name: "nodeid map", in: map[string]any{"nodeid": "n-3"}, want: "n-3", ok: true},
		{name: "unknown map", in: map[string]any{"ref": "x"}},
		{name: "stringified object", in: `{"$oid": "65a1f0"}`, want: "65a1f0", ok: true},
		{name: "bad json object", in: `{"$oid": }`},
		{name: "unsupported type", in: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeRef(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreRef(t *testing.T) {
	ref := StoreRef(42)
	assert.Equal(t, "id:42", ref)

	id, ok := ParseStoreRef(ref)
	require.True(t, ok)
	assert.Equal(t, ID(42), id)

	for _, bad := range []string{"42", "id:", "id:x", "nodeid:42"} {
		_, ok := ParseStoreRef(bad)
		assert.False(t, ok, bad)
	}
}

func TestNormalizeRefs(t *testing.T) {
	assert.Nil(t, NormalizeRefs(nil))
	assert.Equal(t, []string{"a"}, NormalizeRefs("a"))
	assert.Equal(t, []string{"a", "3"}, NormalizeRefs([]any{"a", nil, 3, map[string]any{}}))
	assert.Equal(t, []string{"x", "y"}, NormalizeRefs([]string{"x", "", "y"}))
}
