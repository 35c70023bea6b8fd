package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
)

// AnswerRepository implements storage.AnswerRepository for BadgerDB.
// Answers use content-based IDs derived from question id and model.
type AnswerRepository struct {
	backend *Backend
}

var _ storage.AnswerRepository = (*AnswerRepository)(nil)

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(backend *Backend) *AnswerRepository {
	return &AnswerRepository{backend: backend}
}

// Close is a no-op; the backend owns the database handle.
func (r *AnswerRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *AnswerRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddAnswer stores an answer under its content ID.
func (r *AnswerRepository) AddAnswer(ctx context.Context, answer *core.Answer) (*core.Answer, error) {
	if err := core.ValidateAnswer(answer); err != nil {
		return nil, err
	}

	answer.Id = core.AnswerID(answer.QuestionID, answer.Model)
	if answer.InsertedAt.IsZero() {
		answer.InsertedAt = time.Now().UTC().Truncate(time.Microsecond)
	}

	value := storage.MarshalAnswer(answer)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeAnswerKey(answer.Model, answer.Id), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return answer, nil
}

// AnswerExists reports whether a question was already answered by a model.
func (r *AnswerRepository) AnswerExists(ctx context.Context, questionID, model string) (bool, error) {
	_, err := r.GetAnswer(ctx, questionID, model)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetAnswer retrieves the answer for a question and model.
func (r *AnswerRepository) GetAnswer(ctx context.Context, questionID, model string) (*core.Answer, error) {
	key := makeAnswerKey(model, core.AnswerID(questionID, model))

	var answer *core.Answer
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			answer, unmarshalErr = storage.UnmarshalAnswer(val)
			return unmarshalErr
		})
	}, false)
	return answer, err
}

// GetAnswers returns all answers recorded for a model, ordered by ID.
func (r *AnswerRepository) GetAnswers(ctx context.Context, model string) ([]*core.Answer, error) {
	var answers []*core.Answer
	err := r.backend.scanPrefix(ctx, makeAnswerModelPrefix(model), func(_, val []byte) error {
		answer, err := storage.UnmarshalAnswer(val)
		if err != nil {
			return err
		}
		answers = append(answers, answer)
		return nil
	})
	return answers, err
}

// CountAnswers returns the number of answers recorded for a model.
func (r *AnswerRepository) CountAnswers(ctx context.Context, model string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeAnswerModelPrefix(model)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// ModelStats returns the number of stored answers per model.
func (r *AnswerRepository) ModelStats(ctx context.Context) (map[string]int, error) {
	stats := make(map[string]int)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(answerRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if model, ok := modelFromAnswerKey(iter.Item().Key()); ok {
				stats[model]++
			}
		}
		return nil
	}, false)
	return stats, err
}

// DeleteAnswers removes all answers recorded for a model.
func (r *AnswerRepository) DeleteAnswers(ctx context.Context, model string) (int, error) {
	var keys [][]byte
	err := r.backend.scanPrefix(ctx, makeAnswerModelPrefix(model), func(key, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}
