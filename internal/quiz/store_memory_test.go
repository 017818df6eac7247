package quiz

import (
	"context"
	"errors"
	"testing"
)

func seedQuiz(t *testing.T, s Store, id, businessID, title string) Quiz {
	t.Helper()
	q := Quiz{
		ID:         id,
		BusinessID: businessID,
		CategoryID: "cat-1",
		Title:      title,
		Status:     true,
		Questions: []Question{
			{Title: "Q1", Type: 1, Options: []Option{
				{Label: "a", Answer: true},
				{Label: "b"},
			}},
		},
	}
	if err := s.PutQuiz(context.Background(), q); err != nil {
		t.Fatalf("PutQuiz: %v", err)
	}
	return q
}

func answered(title, chosen string) Question {
	return Question{Title: title, Type: 1, Options: []Option{
		{Label: "a", Answer: chosen == "a"},
		{Label: "b", Answer: chosen == "b"},
	}}
}

func TestSubmitCreateThenAppend(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	seedQuiz(t, s, "quiz-1", "biz", "Quiz One")

	first, created, err := s.SubmitQuestions(ctx, Attempt{
		UserID: "u1", QuizID: "quiz-1", QuizTitle: "Quiz One",
		Questions: []Question{answered("Q1", "a")},
	})
	if err != nil || !created {
		t.Fatalf("first submit: created=%v err=%v, want fresh attempt", created, err)
	}
	if first.ID == "" {
		t.Fatal("attempt got no id")
	}

	second, created, err := s.SubmitQuestions(ctx, Attempt{
		UserID: "u1", QuizID: "quiz-1",
		Questions: []Question{answered("Q2", "b")},
	})
	if err != nil || created {
		t.Fatalf("second submit: created=%v err=%v, want append", created, err)
	}
	if second.ID != first.ID {
		t.Fatalf("append produced a new attempt %s, want %s", second.ID, first.ID)
	}
	if len(second.Questions) != 2 {
		t.Fatalf("questions = %d, want concatenation of both submissions", len(second.Questions))
	}
	// Call order is preserved, duplicates and all.
	if second.Questions[0].Title != "Q1" || second.Questions[1].Title != "Q2" {
		t.Fatalf("question order = %q,%q", second.Questions[0].Title, second.Questions[1].Title)
	}
}

func TestSubmitAppendsDuplicateTitles(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	seedQuiz(t, s, "quiz-1", "biz", "Quiz One")

	for i := 0; i < 2; i++ {
		if _, _, err := s.SubmitQuestions(ctx, Attempt{
			UserID: "u1", QuizID: "quiz-1",
			Questions: []Question{answered("Q1", "a")},
		}); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	a, err := s.FindAttempt(ctx, "u1", "quiz-1")
	if err != nil {
		t.Fatalf("FindAttempt: %v", err)
	}
	if len(a.Questions) != 2 {
		t.Fatalf("questions = %d, want duplicate entries kept", len(a.Questions))
	}
}

func TestRetakeThenFreshSubmit(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	seedQuiz(t, s, "quiz-1", "biz", "Quiz One")

	a, _, err := s.SubmitQuestions(ctx, Attempt{
		UserID: "u1", QuizID: "quiz-1",
		Questions: []Question{answered("Q1", "a"), answered("Q2", "b")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := s.DeleteAttempt(ctx, a.ID, "u1"); err != nil {
		t.Fatalf("DeleteAttempt: %v", err)
	}
	if _, err := s.GetAttempt(ctx, a.ID); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("GetAttempt after retake = %v, want ErrAttemptNotFound", err)
	}

	fresh, created, err := s.SubmitQuestions(ctx, Attempt{
		UserID: "u1", QuizID: "quiz-1",
		Questions: []Question{answered("Q3", "a")},
	})
	if err != nil || !created {
		t.Fatalf("resubmit: created=%v err=%v, want fresh attempt", created, err)
	}
	if fresh.ID == a.ID {
		t.Fatal("resubmit reused the deleted attempt id")
	}
	if len(fresh.Questions) != 1 || fresh.Questions[0].Title != "Q3" {
		t.Fatalf("fresh attempt carries residue: %+v", fresh.Questions)
	}
}

func TestDeleteAttemptOwnership(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	seedQuiz(t, s, "quiz-1", "biz", "Quiz One")

	a, _, err := s.SubmitQuestions(ctx, Attempt{
		UserID: "u1", QuizID: "quiz-1",
		Questions: []Question{answered("Q1", "a")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := s.DeleteAttempt(ctx, a.ID, "someone-else"); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("cross-user delete = %v, want ErrAttemptNotFound", err)
	}
	if _, err := s.GetAttempt(ctx, a.ID); err != nil {
		t.Fatalf("attempt vanished after failed delete: %v", err)
	}
}

func TestListQuizzesFilters(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	seedQuiz(t, s, "quiz-1", "biz", "Go Basics")
	seedQuiz(t, s, "quiz-2", "biz", "Advanced Go")
	seedQuiz(t, s, "quiz-3", "other-biz", "Go Basics")

	inactive := seedQuiz(t, s, "quiz-4", "biz", "Draft Quiz")
	inactive.Status = false
	if err := s.UpdateQuiz(ctx, inactive); err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}

	all, total, err := s.ListQuizzes(ctx, ListOpts{BusinessID: "biz", Limit: 10})
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Fatalf("business scope: total=%d len=%d, want 3", total, len(all))
	}

	active, total, err := s.ListQuizzes(ctx, ListOpts{BusinessID: "biz", ActiveOnly: true, Limit: 10})
	if err != nil {
		t.Fatalf("ListQuizzes active: %v", err)
	}
	if total != 2 {
		t.Fatalf("active only: total=%d, want 2", total)
	}
	for _, sum := range active {
		if !sum.Status {
			t.Fatalf("inactive quiz %s leaked into active list", sum.ID)
		}
	}

	hits, _, err := s.ListQuizzes(ctx, ListOpts{BusinessID: "biz", Q: "advanced", Limit: 10})
	if err != nil {
		t.Fatalf("ListQuizzes search: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "quiz-2" {
		t.Fatalf("search = %+v, want quiz-2 only", hits)
	}
}

func TestListQuizzesCategoryJoin(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	seedQuiz(t, s, "quiz-1", "biz", "Go Basics")

	got, _, err := s.ListQuizzes(ctx, ListOpts{BusinessID: "biz", Limit: 10})
	if err != nil {
		t.Fatalf("ListQuizzes: %v", err)
	}
	if got[0].CategoryName != "N/A" {
		t.Fatalf("unseeded category name = %q, want N/A", got[0].CategoryName)
	}
	if got[0].TotalQuestions != 1 {
		t.Fatalf("total questions = %d, want 1", got[0].TotalQuestions)
	}

	s.(*memoryStore).SetCategoryName("cat-1", "General")
	got, _, _ = s.ListQuizzes(ctx, ListOpts{BusinessID: "biz", Limit: 10})
	if got[0].CategoryName != "General" {
		t.Fatalf("category name = %q, want General", got[0].CategoryName)
	}
}

func TestLatestAttemptIDs(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	seedQuiz(t, s, "quiz-1", "biz", "One")
	seedQuiz(t, s, "quiz-2", "biz", "Two")

	a, _, err := s.SubmitQuestions(ctx, Attempt{
		UserID: "u1", QuizID: "quiz-1",
		Questions: []Question{answered("Q1", "a")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	ids, err := s.LatestAttemptIDs(ctx, "u1", []string{"quiz-1", "quiz-2"})
	if err != nil {
		t.Fatalf("LatestAttemptIDs: %v", err)
	}
	if ids["quiz-1"] != a.ID {
		t.Fatalf("quiz-1 attempt id = %q, want %q", ids["quiz-1"], a.ID)
	}
	if _, ok := ids["quiz-2"]; ok {
		t.Fatal("quiz-2 has no attempt but appeared in the map")
	}
}

func TestDeleteQuizScopedToBusiness(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	seedQuiz(t, s, "quiz-1", "biz", "One")

	if err := s.DeleteQuiz(ctx, "quiz-1", "other-biz"); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("cross-business delete = %v, want ErrQuizNotFound", err)
	}
	if err := s.DeleteQuiz(ctx, "quiz-1", "biz"); err != nil {
		t.Fatalf("DeleteQuiz: %v", err)
	}
	if _, err := s.GetQuiz(ctx, "quiz-1"); !errors.Is(err, ErrQuizNotFound) {
		t.Fatalf("GetQuiz after delete = %v, want ErrQuizNotFound", err)
	}
}
