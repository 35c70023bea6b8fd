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

package storage

import (
	"fmt"

	"github.com/poiesic/grag/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) == 0 {
		return 0, ErrTruncatedData
	}
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

// MarshalDocument serializes a Document to bytes.
func MarshalDocument(doc *core.Document) []byte {
	buf := make([]byte, core.DocumentMUS.Size(*doc))
	core.DocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a Document from bytes.
// Empty collections decode as nil and timestamps come back in UTC.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	doc, _, err := core.DocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: document: %w", ErrSerializationFailed, err)
	}
	doc.Links = nilIfEmpty(doc.Links)
	doc.Attributes = nilIfEmpty(doc.Attributes)
	doc.Vector = nilIfEmpty(doc.Vector)
	doc.ChildrenIDs = nilIfEmpty(doc.ChildrenIDs)
	doc.LinkedIDs = nilIfEmpty(doc.LinkedIDs)
	doc.InsertedAt = doc.InsertedAt.UTC()
	doc.UpdatedAt = doc.UpdatedAt.UTC()
	return &doc, nil
}

// MarshalAnswer serializes an Answer to bytes.
func MarshalAnswer(answer *core.Answer) []byte {
	buf := make([]byte, core.AnswerMUS.Size(*answer))
	core.AnswerMUS.Marshal(*answer, buf)
	return buf
}

// UnmarshalAnswer deserializes an Answer from bytes.
func UnmarshalAnswer(data []byte) (*core.Answer, error) {
	answer, _, err := core.AnswerMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: answer: %w", ErrSerializationFailed, err)
	}
	answer.InsertedAt = answer.InsertedAt.UTC()
	return &answer, nil
}

func nilIfEmpty[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	return items
}
