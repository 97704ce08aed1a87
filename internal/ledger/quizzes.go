package ledger

import (
	"context"
	"slices"
	"strings"
)

// CreateQuiz validates in and stores it as the newest quiz of userID.
// Questions without an id get one.
func (s *Store) CreateQuiz(ctx context.Context, userID string, in QuizInput) (Quiz, error) {
	if err := in.Validate(); err != nil {
		return Quiz{}, err
	}
	return s.UpsertQuiz(ctx, userID, Quiz{
		Title:            in.Title,
		Subject:          in.Subject,
		Description:      in.Description,
		Difficulty:       in.Difficulty,
		TimeLimitMinutes: in.TimeLimitMinutes,
		IsPublic:         in.IsPublic,
		Tags:             in.Tags,
		Questions:        in.Questions,
	})
}

// UpsertQuiz inserts q as the newest quiz, or replaces the quiz with the
// same id in place.
func (s *Store) UpsertQuiz(ctx context.Context, userID string, q Quiz) (Quiz, error) {
	if err := q.Input().Validate(); err != nil {
		return Quiz{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return Quiz{}, err
	}

	q.UserID = userID
	q.Title = strings.TrimSpace(q.Title)
	q.Subject = strings.TrimSpace(q.Subject)
	q.Tags = normalizeTags(q.Tags)
	q = cloneQuiz(q)
	for i := range q.Questions {
		if q.Questions[i].ID == "" {
			q.Questions[i].ID = s.newID()
		}
	}

	prev := c.quizzes
	idx := indexQuiz(prev, q.ID)
	if idx < 0 {
		if q.ID == "" {
			q.ID = s.newID()
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = s.now()
		}
		c.quizzes = append([]Quiz{q}, prev...)
	} else {
		q.CreatedAt = prev[idx].CreatedAt
		c.quizzes = slices.Clone(prev)
		c.quizzes[idx] = q
	}

	if err := s.write(ctx, Key(QuizzesKeyPrefix, userID), c.quizzes); err != nil {
		c.quizzes = prev
		return Quiz{}, err
	}
	return cloneQuiz(q), nil
}

// RemoveQuiz deletes the quiz with id.
func (s *Store) RemoveQuiz(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	idx := indexQuiz(c.quizzes, id)
	if idx < 0 {
		return ErrNotFound
	}

	prev := c.quizzes
	c.quizzes = slices.Delete(slices.Clone(prev), idx, idx+1)
	if err := s.write(ctx, Key(QuizzesKeyPrefix, userID), c.quizzes); err != nil {
		c.quizzes = prev
		return err
	}
	return nil
}

// Quiz returns the quiz with id.
func (s *Store) Quiz(ctx context.Context, userID, id string) (Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.get(ctx, userID)
	if err != nil {
		return Quiz{}, err
	}
	idx := indexQuiz(c.quizzes, id)
	if idx < 0 {
		return Quiz{}, ErrNotFound
	}
	return cloneQuiz(c.quizzes[idx]), nil
}

// Input returns the editable fields of q.
func (q Quiz) Input() QuizInput {
	return QuizInput{
		Title:            q.Title,
		Subject:          q.Subject,
		Description:      q.Description,
		Difficulty:       q.Difficulty,
		TimeLimitMinutes: q.TimeLimitMinutes,
		IsPublic:         q.IsPublic,
		Tags:             q.Tags,
		Questions:        q.Questions,
	}
}

func indexQuiz(qs []Quiz, id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(qs, func(q Quiz) bool { return q.ID == id })
}
