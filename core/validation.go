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
	"fmt"
	"math"
	"strings"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - NodeID must not be blank
//   - Vector, when present, must only hold finite values
//
// NOT validated:
//   - Payload text (documents without text are stored but cannot seed find-similar)
//   - Structural references (unresolved references are dropped at index build)
//   - ID (0 is valid until the store assigns one)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if strings.TrimSpace(doc.NodeID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyNodeID)
	}

	if err := ValidateVector(doc.Vector); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return nil
}

// ValidateVector rejects vectors holding NaN or infinite components.
// An empty vector is valid.
func ValidateVector(v []float32) error {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ErrInvalidVector
		}
	}
	return nil
}

// ValidateAnswer validates an Answer according to domain rules.
func ValidateAnswer(answer *Answer) error {
	if answer == nil {
		return fmt.Errorf("%w: answer is nil", ErrInvalidAnswer)
	}

	if answer.QuestionID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAnswer, ErrEmptyQuestionID)
	}

	if answer.Model == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAnswer, ErrEmptyModel)
	}

	return nil
}
