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

import "errors"

// Domain validation errors
var (
	// ErrInvalidArgument indicates a caller supplied an unusable argument.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidAnswer indicates an Answer failed validation.
	ErrInvalidAnswer = errors.New("invalid answer")

	// ErrEmptyNodeID indicates the NodeID field is empty.
	ErrEmptyNodeID = errors.New("node id cannot be empty")

	// ErrEmptyQuestionID indicates the QuestionID field is empty.
	ErrEmptyQuestionID = errors.New("question id cannot be empty")

	// ErrEmptyModel indicates the Model field is empty.
	ErrEmptyModel = errors.New("model cannot be empty")

	// ErrInvalidVector indicates an embedding contains NaN or infinite values.
	ErrInvalidVector = errors.New("vector contains non-finite values")
)
