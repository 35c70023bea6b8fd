package badger

import (
	"context"
	"testing"

	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerRepository(t *testing.T) {
	docRepo, answerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		answerRepo.Close()
		docRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	exists, err := answerRepo.AnswerExists(ctx, "q1", "grag")
	require.NoError(t, err)
	assert.False(t, exists)

	stored, err := answerRepo.AddAnswer(ctx, &core.Answer{
		QuestionID: "q1",
		Question:   "what pumps blood?",
		Model:      "grag",
		Results:    []*core.SearchResult{{NodeID: "heart", Score: 0.9}},
	})
	require.NoError(t, err)
	assert.Equal(t, core.AnswerID("q1", "grag"), stored.Id)
	assert.False(t, stored.InsertedAt.IsZero())

	_, err = answerRepo.AddAnswer(ctx, &core.Answer{QuestionID: "q2", Model: "grag"})
	require.NoError(t, err)
	_, err = answerRepo.AddAnswer(ctx, &core.Answer{QuestionID: "q1", Model: "grag:v2"})
	require.NoError(t, err)

	exists, err = answerRepo.AnswerExists(ctx, "q1", "grag")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := answerRepo.GetAnswer(ctx, "q1", "grag")
	require.NoError(t, err)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "heart", got.Results[0].NodeID)

	answers, err := answerRepo.GetAnswers(ctx, "grag")
	require.NoError(t, err)
	assert.Len(t, answers, 2)

	count, err := answerRepo.CountAnswers(ctx, "grag:v2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stats, err := answerRepo.ModelStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"grag": 2, "grag:v2": 1}, stats)

	removed, err := answerRepo.DeleteAnswers(ctx, "grag")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = answerRepo.GetAnswer(ctx, "q1", "grag")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	count, err = answerRepo.CountAnswers(ctx, "grag:v2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddAnswer_Validation(t *testing.T) {
	_, answerRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	_, err = answerRepo.AddAnswer(context.Background(), &core.Answer{Model: "grag"})
	assert.ErrorIs(t, err, core.ErrInvalidAnswer)
}

func TestAnswerKeys(t *testing.T) {
	key := makeAnswerKey("m:1", 42)
	model, ok := modelFromAnswerKey(key)
	assert.True(t, ok)
	assert.Equal(t, "m:1", model)

	_, ok = modelFromAnswerKey([]byte(answerRecordPrefix))
	assert.False(t, ok)
}
