package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)
			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestID_StringRoundTrip(t *testing.T) {
	id := ID(18446744073709551615)
	parsed, ok := ParseID(id.String())
	if !ok || parsed != id {
		t.Errorf("ParseID(%q) = %d, %v", id.String(), parsed, ok)
	}

	if _, ok := ParseID("node-7"); ok {
		t.Errorf("ParseID accepted a non-numeric id")
	}
}

func TestAnswerID(t *testing.T) {
	if AnswerID("q1", "grag") != AnswerID("q1", "grag") {
		t.Errorf("AnswerID is not deterministic")
	}
	if AnswerID("q1", "grag") == AnswerID("q1", "flat") {
		t.Errorf("AnswerID ignores the model")
	}
}
