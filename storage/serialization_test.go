package storage

import (
	"testing"
	"time"

	"github.com/poiesic/grag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Invalid(t *testing.T) {
	_, err := UnmarshalID(nil)
	assert.ErrorIs(t, err, ErrTruncatedData)

	// a continuation byte with nothing after it
	_, err = UnmarshalID([]byte{0x80})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &core.Document{
		Id:          core.ID(7),
		NodeID:      "heart",
		SourceID:    "65a1",
		Text:        "Heart",
		RichText:    "Pumps blood ❤",
		Notes:       "see valves",
		Links:       []string{"https://example.org/heart"},
		Attributes:  []core.Attribute{{Name: "system", Value: "circulatory"}},
		Category:    "organ",
		Vector:      []float32{0.1, 0.2, 0.3},
		ParentID:    "body",
		ChildrenIDs: []string{"valve", "12"},
		LinkedIDs:   []string{"lung"},
		InsertedAt:  now,
		UpdatedAt:   now,
	}

	data := MarshalDocument(doc)

	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.True(t, doc.InsertedAt.Equal(decoded.InsertedAt))
	assert.Equal(t, time.UTC, decoded.InsertedAt.Location())
	decoded.InsertedAt, decoded.UpdatedAt = doc.InsertedAt, doc.UpdatedAt
	assert.Equal(t, doc, decoded)
}

func TestUnmarshalDocument_EmptyCollectionsAreNil(t *testing.T) {
	decoded, err := UnmarshalDocument(MarshalDocument(&core.Document{Id: 1, NodeID: "bare"}))
	require.NoError(t, err)
	assert.Equal(t, "bare", decoded.NodeID)
	assert.Nil(t, decoded.Links)
	assert.Nil(t, decoded.Attributes)
	assert.Nil(t, decoded.Vector)
	assert.Nil(t, decoded.ChildrenIDs)
	assert.Nil(t, decoded.LinkedIDs)
	assert.True(t, decoded.InsertedAt.IsZero())
}

func TestUnmarshalDocument_Invalid(t *testing.T) {
	valid := MarshalDocument(&core.Document{Id: 3, NodeID: "heart", Text: "Heart", Vector: []float32{1, 2}})
	for _, data := range [][]byte{{}, {0xFF, 0xFF}, valid[:len(valid)/2]} {
		_, err := UnmarshalDocument(data)
		assert.ErrorIs(t, err, ErrSerializationFailed)
	}
}

func TestMarshalUnmarshalAnswer(t *testing.T) {
	answer := &core.Answer{
		Id:         core.AnswerID("q1", "model"),
		RunID:      "run",
		QuestionID: "q1",
		Question:   "What pumps blood?",
		Model:      "model",
		Completed:  true,
		Results: []*core.SearchResult{{
			NodeID: "heart",
			Score:  0.9,
			GraphContext: core.GraphContext{
				SeedNode:  "heart",
				Neighbors: []core.NeighborSummary{{NodeID: "valve", Relations: []string{core.RelationHierarchy}}},
			},
		}},
	}

	decoded, err := UnmarshalAnswer(MarshalAnswer(answer))
	require.NoError(t, err)
	assert.Equal(t, answer.Id, decoded.Id)
	assert.True(t, decoded.Completed)
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, "valve", decoded.Results[0].GraphContext.Neighbors[0].NodeID)

	_, err = UnmarshalAnswer([]byte{0x80})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
