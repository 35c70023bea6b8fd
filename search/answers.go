package search

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
)

// Question is one entry of a recorded batch run.
type Question struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"question" yaml:"question"`
}

// RecordSummary reports what a recorded batch run did.
type RecordSummary struct {
	RunID    string `json:"run_id" yaml:"run_id"`
	Recorded int    `json:"recorded" yaml:"recorded"`
	Skipped  int    `json:"skipped" yaml:"skipped"`
	Failed   int    `json:"failed" yaml:"failed"`
}

// RecordBatch searches every question not yet answered for model and stores
// the results as answers tagged with runID. An empty runID gets a fresh UUID.
// Failed queries are stored as incomplete answers and retried by later runs.
func (m *Manager) RecordBatch(
	ctx context.Context,
	answers storage.AnswerRepository,
	runID, model string,
	questions []Question,
	topK int,
	threshold float64,
) (RecordSummary, error) {
	if answers == nil {
		return RecordSummary{}, ErrAnswerRepositoryRequired
	}
	if model == "" {
		return RecordSummary{}, core.ErrEmptyModel
	}
	if runID == "" {
		runID = uuid.NewString()
	}
	summary := RecordSummary{RunID: runID}

	var pending []Question
	for _, q := range questions {
		previous, err := answers.GetAnswer(ctx, q.ID, model)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			// not answered yet
		case err != nil:
			return summary, err
		case previous.Completed:
			summary.Skipped++
			continue
		}
		pending = append(pending, q)
	}
	if len(pending) == 0 {
		return summary, nil
	}

	queries := make([]string, len(pending))
	for i, q := range pending {
		queries[i] = q.Text
	}
	batch, err := m.BatchSearch(ctx, queries, topK, threshold)
	if err != nil {
		return summary, err
	}

	for i, item := range batch {
		answer := &core.Answer{
			RunID:      runID,
			QuestionID: pending[i].ID,
			Question:   pending[i].Text,
			Model:      model,
			Results:    item.Results,
			Completed:  item.Err == nil,
		}
		if _, err := answers.AddAnswer(ctx, answer); err != nil {
			m.logger.Error("error storing answer", "question_id", answer.QuestionID, "model", model, "err", err)
			return summary, err
		}
		if item.Err != nil {
			summary.Failed++
			continue
		}
		summary.Recorded++
	}

	m.logger.Info("recorded batch run",
		"run_id", runID,
		"model", model,
		"recorded", summary.Recorded,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
	return summary, nil
}
