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

package reembed

import (
	"fmt"
	"math"

	"github.com/poiesic/grag/core"
)

// NormalizeVector returns a unit-length copy of v.
// Vectors with non-finite components or zero magnitude are rejected, since
// they cannot take part in cosine ranking.
func NormalizeVector(v []float32) ([]float32, error) {
	if err := core.ValidateVector(v); err != nil {
		return nil, err
	}

	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return nil, ErrZeroVector
	}

	magnitude := math.Sqrt(sumSquares)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / magnitude)
	}
	return out, nil
}

// normalizeAll normalizes every vector of a batch, naming the failing document.
func normalizeAll(docs []*core.Document, vectors [][]float32) error {
	for i, v := range vectors {
		normalized, err := NormalizeVector(v)
		if err != nil {
			return fmt.Errorf("document %s: %w", docs[i].DisplayNodeID(), err)
		}
		docs[i].Vector = normalized
	}
	return nil
}
