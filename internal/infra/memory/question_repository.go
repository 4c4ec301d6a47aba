package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"coding-relay-console/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a question set from the remote question bank.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error)
}

// QuestionRepository caches question sets with a TTL so that browsing the
// solution viewer does not hit the question bank on every selection.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[domain.Difficulty]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[domain.Difficulty]cachedQuestions),
	}
}

func (r *QuestionRepository) QuestionsByDifficulty(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	if questions, ok := r.lookup(difficulty); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(string(difficulty), func() (interface{}, error) {
		if questions, ok := r.lookup(difficulty); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadQuestions(ctx, difficulty)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[difficulty] = cachedQuestions{
			questions: questions,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

// Invalidate drops a cached question set.
func (r *QuestionRepository) Invalidate(_ context.Context, difficulty domain.Difficulty) error {
	r.mu.Lock()
	delete(r.cache, difficulty)
	r.mu.Unlock()
	return nil
}

func (r *QuestionRepository) lookup(difficulty domain.Difficulty) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[difficulty]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.questions, true
}

// StaticQuestionLoader serves question sets from a map (tests and offline demos).
type StaticQuestionLoader struct {
	sets map[domain.Difficulty][]domain.Question
}

func NewStaticQuestionLoader(sets map[domain.Difficulty][]domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{sets: sets}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, difficulty domain.Difficulty) ([]domain.Question, error) {
	return l.sets[difficulty], nil
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter spreads expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
