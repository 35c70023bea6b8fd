package core

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

//go:generate go run ../cmd/musgen

// ID is a unique identifier for stored entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// String renders the ID in its canonical decimal form.
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// storeRefPrefix marks a reference that names a store-assigned ID.
const storeRefPrefix = "id:"

// StoreRef renders id as a typed reference. Plain decimal strings are
// external node ids; only typed references resolve to store IDs.
func StoreRef(id ID) string {
	return storeRefPrefix + id.String()
}

// ParseStoreRef extracts the ID from a reference built by StoreRef.
func ParseStoreRef(ref string) (ID, bool) {
	rest, ok := strings.CutPrefix(ref, storeRefPrefix)
	if !ok {
		return 0, false
	}
	return ParseID(rest)
}

// ParseID parses a canonical decimal ID.
func ParseID(s string) (ID, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return ID(v), true
}

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Relation labels carried by graph edges.
const (
	RelationHierarchy = "hierarchy"
	RelationLink      = "link"
)

// Attribute is a single name/value pair attached to a document.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Document is a single retrievable node of the corpus.
// SourceID is the identifier the record carried in its source export (the
// Mongo "_id"). Structural references (ParentID, ChildrenIDs, LinkedIDs) name
// a SourceID, an external NodeID or a StoreRef; they are resolved to graph
// edges when the index is built.
type Document struct {
	Id          ID          `json:"id"`
	NodeID      string      `json:"nodeid"`
	SourceID    string      `json:"source_id,omitempty"`
	Text        string      `json:"text,omitempty"`
	RichText    string      `json:"rich_text,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	Links       []string    `json:"links,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty"`
	Category    string      `json:"category,omitempty"`
	Vector      []float32   `json:"embedding,omitempty"`
	ParentID    string      `json:"parent_id,omitempty"`
	ChildrenIDs []string    `json:"children_ids,omitempty"`
	LinkedIDs   []string    `json:"linked_ids,omitempty"`
	InsertedAt  time.Time   `json:"inserted_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// HasEmbedding reports whether the document carries an embedding vector.
func (d *Document) HasEmbedding() bool {
	return len(d.Vector) > 0
}

// NeighborSummary describes one graph neighbor of a result node.
type NeighborSummary struct {
	NodeID    string   `json:"nodeid" yaml:"nodeid"`
	Relations []string `json:"relations" yaml:"relations"`
}

// GraphContext records which seed expansion produced a result's score.
type GraphContext struct {
	SeedNode        string            `json:"seed_node" yaml:"seed_node"`
	HopDistance     int               `json:"hop_distance" yaml:"hop_distance"`
	SubgraphScore   float32           `json:"subgraph_score" yaml:"subgraph_score"`
	LocalSimilarity float32           `json:"local_similarity" yaml:"local_similarity"`
	Neighbors       []NeighborSummary `json:"neighbors,omitempty" yaml:"neighbors,omitempty"`
}

// SearchResult is a single ranked retrieval result.
type SearchResult struct {
	NodeID       string       `json:"nodeid" yaml:"nodeid"`
	Id           ID           `json:"id" yaml:"id"`
	Text         string       `json:"text" yaml:"text"`
	RichText     string       `json:"rich_text" yaml:"rich_text"`
	Notes        string       `json:"notes" yaml:"notes"`
	Links        []string     `json:"links" yaml:"links"`
	Attributes   []Attribute  `json:"attributes" yaml:"attributes"`
	Score        float32      `json:"score" yaml:"score"`
	GraphContext GraphContext `json:"graph_context" yaml:"graph_context"`
}

// SimilarityMatch is a document returned by flat vector search.
type SimilarityMatch struct {
	Document *Document
	Score    float32
}

// IndexStats describes the currently published graph index.
type IndexStats struct {
	Nodes        int       `json:"nodes" yaml:"nodes"`
	Edges        int       `json:"edges" yaml:"edges"`
	EmbeddingDim int       `json:"embedding_dim" yaml:"embedding_dim"`
	LastBuiltAt  time.Time `json:"last_built_at" yaml:"last_built_at"`
}

// SearchStats merges document store counts with index stats.
type SearchStats struct {
	TotalDocuments     int       `json:"total_documents" yaml:"total_documents"`
	IndexedDocuments   int       `json:"indexed_documents" yaml:"indexed_documents"`
	UnindexedDocuments int       `json:"unindexed_documents" yaml:"unindexed_documents"`
	EmbeddingModel     string    `json:"embedding_model" yaml:"embedding_model"`
	IndexedEdges       int       `json:"indexed_edges" yaml:"indexed_edges"`
	EmbeddingDim       int       `json:"embedding_dim" yaml:"embedding_dim"`
	LastBuiltAt        time.Time `json:"last_built_at" yaml:"last_built_at"`
}

// Answer is a stored retrieval run for one question and one model.
type Answer struct {
	Id         ID              `json:"id"`
	RunID      string          `json:"run_id"`
	QuestionID string          `json:"question_id"`
	Question   string          `json:"question"`
	Model      string          `json:"model"`
	Results    []*SearchResult `json:"results"`
	Completed  bool            `json:"completed"`
	InsertedAt time.Time       `json:"inserted_at"`
}

// AnswerID derives the content ID of an answer from its question and model.
func AnswerID(questionID, model string) ID {
	return IDFromContent("(" + model + "," + questionID + ")")
}
