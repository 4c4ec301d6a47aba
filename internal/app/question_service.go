package app

import (
	"context"
	"sort"

	"coding-relay-console/internal/domain"
)

// QuestionRepository loads question sets (from cache/backing store).
type QuestionRepository interface {
	QuestionsByDifficulty(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error)
	// Invalidate drops the cached set so the next read hits the question bank.
	Invalidate(ctx context.Context, difficulty domain.Difficulty) error
}

// QuestionService backs the question browser and solution viewer.
type QuestionService struct {
	questions QuestionRepository
}

func NewQuestionService(questions QuestionRepository) *QuestionService {
	return &QuestionService{questions: questions}
}

// ByDifficulty returns the question set sorted by id.
func (s *QuestionService) ByDifficulty(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	if !difficulty.Valid() {
		return nil, domain.Invalid("difficulty", "select easy, medium or hard")
	}
	questions, err := s.questions.QuestionsByDifficulty(ctx, difficulty)
	if err != nil {
		return nil, err
	}
	out := append([]domain.Question(nil), questions...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Reload drops the cached set for difficulty and fetches it again.
func (s *QuestionService) Reload(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	if !difficulty.Valid() {
		return nil, domain.Invalid("difficulty", "select easy, medium or hard")
	}
	if err := s.questions.Invalidate(ctx, difficulty); err != nil {
		return nil, err
	}
	return s.ByDifficulty(ctx, difficulty)
}

// Question returns one question with its test cases.
func (s *QuestionService) Question(ctx context.Context, difficulty domain.Difficulty, id int) (domain.Question, error) {
	questions, err := s.ByDifficulty(ctx, difficulty)
	if err != nil {
		return domain.Question{}, err
	}
	for _, q := range questions {
		if q.ID == id {
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}
