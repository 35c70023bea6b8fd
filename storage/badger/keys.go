package badger

import (
	"encoding/binary"

	"github.com/poiesic/grag/core"
)

// Key prefixes for different data types
const (
	documentRecordPrefix = "docrec:"
	documentNodeIDPrefix = "docnid:"
	documentIDSeq        = "docseq"
	answerRecordPrefix   = "ansrec:"
)

// modelSeparator terminates the model name inside answer keys.
const modelSeparator = 0x00

// makeDocumentKey generates a key for a document by ID.
// Format: prefix + 8-byte BigEndian ID, so iteration follows insertion order.
func makeDocumentKey(id core.ID) []byte {
	buf := make([]byte, len(documentRecordPrefix)+8)
	offset := copy(buf, documentRecordPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeNodeIDKey generates the lookup key for a document's external node id.
func makeNodeIDKey(nodeID string) []byte {
	return []byte(documentNodeIDPrefix + nodeID)
}

// makeAnswerKey generates a composite key for an answer.
// Format: prefix:model 0x00 answerID
func makeAnswerKey(model string, id core.ID) []byte {
	prefix := makeAnswerModelPrefix(model)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeAnswerModelPrefix generates the partial key shared by all answers of a model.
func makeAnswerModelPrefix(model string) []byte {
	buf := make([]byte, 0, len(answerRecordPrefix)+len(model)+1)
	buf = append(buf, answerRecordPrefix...)
	buf = append(buf, model...)
	return append(buf, modelSeparator)
}

// modelFromAnswerKey extracts the model name from an answer key.
func modelFromAnswerKey(key []byte) (string, bool) {
	if len(key) < len(answerRecordPrefix)+9 {
		return "", false
	}
	rest := key[len(answerRecordPrefix) : len(key)-8]
	if len(rest) == 0 || rest[len(rest)-1] != modelSeparator {
		return "", false
	}
	return string(rest[:len(rest)-1]), true
}
