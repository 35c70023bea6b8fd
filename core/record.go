// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DocumentFromRecord converts a loosely typed exported record into a Document.
//
// Field names follow the export format of the node corpus: "nodeid", "text",
// "richText", "notes", "links", "attributes", "category", "embedding",
// "parentID", "children" and "linkedNodes". The "_id" (or "id") field becomes
// the SourceID, and doubles as the external id when "nodeid" is missing.
// Structural references go through NormalizeRef. Numbers should be decoded with json.Decoder.UseNumber.
func DocumentFromRecord(rec map[string]any) (*Document, error) {
	doc := &Document{
		Text:     stringField(rec, "text"),
		RichText: stringField(rec, "richText", "rich_text"),
		Notes:    stringField(rec, "notes"),
		Category: stringField(rec, "category"),
	}

	for _, key := range []string{"_id", "id"} {
		if ref, ok := NormalizeRef(rec[key]); ok {
			doc.SourceID = ref
			break
		}
	}
	doc.NodeID = strings.TrimSpace(stringField(rec, "nodeid", "external_id"))
	if doc.NodeID == "" {
		doc.NodeID = doc.SourceID
	}

	for _, link := range listField(rec, "links") {
		if s, ok := link.(string); ok && s != "" {
			doc.Links = append(doc.Links, s)
		}
	}

	for _, item := range listField(rec, "attributes") {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := obj["name"].(string)
		value, _ := obj["value"].(string)
		if name == "" {
			continue
		}
		doc.Attributes = append(doc.Attributes, Attribute{Name: name, Value: value})
	}

	if raw, ok := rec["embedding"]; ok && raw != nil {
		vector, err := vectorField(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: node %s: %w", ErrInvalidDocument, doc.NodeID, err)
		}
		doc.Vector = vector
	}

	if ref, ok := NormalizeRef(firstPresent(rec, "parentID", "parent_id")); ok {
		doc.ParentID = ref
	}
	doc.ChildrenIDs = NormalizeRefs(firstPresent(rec, "children", "children_ids"))
	doc.LinkedIDs = NormalizeRefs(firstPresent(rec, "linkedNodes", "linked_ids"))

	if err := ValidateDocument(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func firstPresent(rec map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := rec[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringField(rec map[string]any, keys ...string) string {
	s, _ := firstPresent(rec, keys...).(string)
	return s
}

func listField(rec map[string]any, key string) []any {
	switch v := rec[key].(type) {
	case []any:
		return v
	case nil:
		return nil
	default:
		return []any{v}
	}
}

func vectorField(raw any) ([]float32, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("embedding is %T, not a list", raw)
	}
	vector := make([]float32, len(items))
	for i, item := range items {
		var f float64
		switch v := item.(type) {
		case json.Number:
			parsed, err := strconv.ParseFloat(string(v), 64)
			if err != nil {
				return nil, fmt.Errorf("embedding[%d]: %w", i, err)
			}
			f = parsed
		case float64:
			f = v
		default:
			return nil, fmt.Errorf("embedding[%d] is %T, not a number", i, item)
		}
		vector[i] = float32(f)
	}
	return vector, nil
}
