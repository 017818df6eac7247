package quiz

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryStore struct {
	mu       sync.RWMutex
	quizzes  map[string]Quiz
	attempts map[string]Attempt // by attempt ID
	catNames map[string]string  // categoryID -> name, for list joins
	seq      int64
}

// NewInMemoryStore backs tests and throwaway dev runs. The mutex gives it
// the same serialization the SQL store gets from its transaction.
func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes:  map[string]Quiz{},
		attempts: map[string]Attempt{},
		catNames: map[string]string{},
	}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = m.tick()
	}
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) UpdateQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.quizzes[q.ID]
	if !ok || cur.BusinessID != q.BusinessID {
		return ErrQuizNotFound
	}
	q.CreatedAt = cur.CreatedAt
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) DeleteQuiz(_ context.Context, id, businessID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok || q.BusinessID != businessID {
		return ErrQuizNotFound
	}
	delete(m.quizzes, id)
	return nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	return q, nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, opts ListOpts) ([]Summary, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := []Summary{}
	for _, q := range m.quizzes {
		if q.BusinessID != opts.BusinessID {
			continue
		}
		if opts.CategoryID != "" && q.CategoryID != opts.CategoryID {
			continue
		}
		if opts.ActiveOnly && !q.Status {
			continue
		}
		if opts.Q != "" && !strings.Contains(strings.ToLower(q.Title), strings.ToLower(opts.Q)) {
			continue
		}
		name := m.catNames[q.CategoryID]
		if name == "" {
			name = "N/A"
		}
		all = append(all, Summary{Quiz: q, CategoryName: name, TotalQuestions: len(q.Questions)})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].SortOrder != all[j].SortOrder {
			return all[i].SortOrder < all[j].SortOrder
		}
		return all[i].CreatedAt > all[j].CreatedAt
	})
	total := len(all)
	return page(all, opts.Limit, opts.Offset), total, nil
}

func (m *memoryStore) LatestAttemptIDs(_ context.Context, userID string, quizIDs []string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := map[string]bool{}
	for _, id := range quizIDs {
		want[id] = true
	}
	out := map[string]string{}
	for _, a := range m.attempts {
		if a.UserID == userID && want[a.QuizID] {
			out[a.QuizID] = a.ID
		}
	}
	return out, nil
}

func (m *memoryStore) SubmitQuestions(_ context.Context, a Attempt) (Attempt, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, cur := range m.attempts {
		if cur.UserID == a.UserID && cur.QuizID == a.QuizID {
			cur.Questions = append(cur.Questions, a.Questions...)
			m.attempts[id] = cur
			return cur, false, nil
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = m.tick()
	m.attempts[a.ID] = a
	return a, true, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *memoryStore) FindAttempt(_ context.Context, userID, quizID string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.attempts {
		if a.UserID == userID && a.QuizID == quizID {
			return a, nil
		}
	}
	return Attempt{}, ErrAttemptNotFound
}

func (m *memoryStore) DeleteAttempt(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok || a.UserID != userID {
		return ErrAttemptNotFound
	}
	delete(m.attempts, id)
	return nil
}

func (m *memoryStore) ListAttempts(_ context.Context, userID string, limit, offset int) ([]Attempt, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := []Attempt{}
	for _, a := range m.attempts {
		if a.UserID == userID {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt > all[j].CreatedAt })
	total := len(all)
	return page(all, limit, offset), total, nil
}

// SetCategoryName seeds the category join used by ListQuizzes.
func (m *memoryStore) SetCategoryName(id, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catNames[id] = name
}

func (m *memoryStore) tick() int64 {
	m.seq++
	return time.Now().Unix()*1000 + m.seq
}

func page[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end]
}
