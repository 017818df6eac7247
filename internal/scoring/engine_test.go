package scoring

import (
	"testing"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

func mcq(title string, labels []string, correct string, chosen string) quiz.Question {
	q := quiz.Question{Title: title, Type: 1}
	for i, l := range labels {
		q.Options = append(q.Options, quiz.Option{
			Label:     l,
			SortOrder: i + 1,
			Answer:    l == correct || l == chosen,
		})
	}
	return q
}

func sampleQuiz() quiz.Quiz {
	return quiz.Quiz{
		ID:    "quiz-1",
		Title: "Capitals",
		Questions: []quiz.Question{
			mcq("Capital of France?", []string{"Paris", "Lyon", "Nice"}, "Paris", ""),
			mcq("Capital of Japan?", []string{"Osaka", "Tokyo", "Kyoto"}, "Tokyo", ""),
			mcq("Capital of Peru?", []string{"Lima", "Cusco", "Arequipa"}, "Lima", ""),
		},
	}
}

func TestScoreEmptyAttempt(t *testing.T) {
	q := sampleQuiz()
	s := Score(q, quiz.Attempt{})

	if s.TotalQuestions != 3 || s.Correct != 0 || s.Incorrect != 0 || s.Skipped != 3 {
		t.Fatalf("tally = %+v, want 3 total / 3 skipped", s.Tally)
	}
	if s.Percent != 0 {
		t.Fatalf("percent = %d, want 0", s.Percent)
	}
	if len(s.Questions) != 3 {
		t.Fatalf("got %d question results, want 3", len(s.Questions))
	}
	for _, qr := range s.Questions {
		if qr.Status != StatusSkipped {
			t.Errorf("%q status = %q, want skipped", qr.QuestionTitle, qr.Status)
		}
	}
}

func TestScoreAllCorrect(t *testing.T) {
	q := sampleQuiz()
	a := quiz.Attempt{Questions: []quiz.Question{
		mcq("Capital of France?", []string{"Paris", "Lyon", "Nice"}, "", "Paris"),
		mcq("Capital of Japan?", []string{"Osaka", "Tokyo", "Kyoto"}, "", "Tokyo"),
		mcq("Capital of Peru?", []string{"Lima", "Cusco", "Arequipa"}, "", "Lima"),
	}}
	s := Score(q, a)
	if s.Correct != 3 || s.Percent != 100 {
		t.Fatalf("correct=%d percent=%d, want 3/100", s.Correct, s.Percent)
	}
}

func TestScoreRounding(t *testing.T) {
	q := sampleQuiz()
	a := quiz.Attempt{Questions: []quiz.Question{
		mcq("Capital of France?", []string{"Paris", "Lyon", "Nice"}, "", "Paris"),
	}}
	s := Score(q, a)
	// 1/3 rounds to 33, not truncates to 33.33... and not ceils to 34.
	if s.Percent != 33 {
		t.Fatalf("percent = %d, want 33", s.Percent)
	}
	if s.Correct != 1 || s.Skipped != 2 {
		t.Fatalf("tally = %+v, want 1 correct / 2 skipped", s.Tally)
	}

	// 2/3 rounds up to 67.
	a.Questions = append(a.Questions, mcq("Capital of Japan?", []string{"Osaka", "Tokyo", "Kyoto"}, "", "Tokyo"))
	if s := Score(q, a); s.Percent != 67 {
		t.Fatalf("percent = %d, want 67", s.Percent)
	}
}

func TestScoreMixed(t *testing.T) {
	q := quiz.Quiz{Questions: []quiz.Question{
		mcq("Q1", []string{"a", "b"}, "a", ""),
		mcq("Q2", []string{"c", "d"}, "c", ""),
	}}
	a := quiz.Attempt{Questions: []quiz.Question{
		mcq("Q1", []string{"a", "b"}, "", "a"),
		mcq("Q2", []string{"c", "d"}, "", "d"),
	}}

	s := Score(q, a)
	if s.TotalQuestions != 2 || s.Correct != 1 || s.Incorrect != 1 || s.Skipped != 0 {
		t.Fatalf("tally = %+v, want total=2 correct=1 incorrect=1", s.Tally)
	}
	if s.Percent != 50 {
		t.Fatalf("percent = %d, want 50", s.Percent)
	}
	if s.Questions[0].ChosenLabel != "a" || s.Questions[0].CorrectLabel != "a" {
		t.Fatalf("Q1 chosen/correct = %q/%q", s.Questions[0].ChosenLabel, s.Questions[0].CorrectLabel)
	}
	if s.Questions[1].Status != StatusIncorrect || s.Questions[1].ChosenLabel != "d" {
		t.Fatalf("Q2 = %+v, want incorrect via d", s.Questions[1])
	}
}

func TestScoreUnknownTitleIsSkipped(t *testing.T) {
	q := sampleQuiz()
	a := quiz.Attempt{Questions: []quiz.Question{
		mcq("Capital of Mars?", []string{"Paris"}, "", "Paris"),
	}}
	s := Score(q, a)
	if s.Correct != 0 || s.Skipped != 3 {
		t.Fatalf("tally = %+v, want all skipped", s.Tally)
	}
}

func TestScoreEmptyQuiz(t *testing.T) {
	s := Score(quiz.Quiz{}, quiz.Attempt{})
	if s.TotalQuestions != 0 || s.Percent != 0 {
		t.Fatalf("got %+v, want zeroes", s)
	}
}

func TestReviewOptionGranularCounts(t *testing.T) {
	q := quiz.Quiz{Questions: []quiz.Question{
		{Title: "Pick primes", Options: []quiz.Option{
			{Label: "2", Answer: true},
			{Label: "3", Answer: true},
			{Label: "4", Answer: false},
		}},
	}}
	a := quiz.Attempt{Questions: []quiz.Question{
		{Title: "Pick primes", Time: "30s", Options: []quiz.Option{
			{Label: "2", Answer: true},  // right pick
			{Label: "3", Answer: false}, // missed
			{Label: "4", Answer: true},  // wrong pick
		}},
	}}

	rs := Review(q, a)
	if rs.Summary.TotalQuestions != 1 {
		t.Fatalf("total = %d, want 1", rs.Summary.TotalQuestions)
	}
	if rs.Summary.Correct != 1 || rs.Summary.Incorrect != 1 || rs.Summary.Skipped != 0 {
		t.Fatalf("summary = %+v, want correct=1 incorrect=1", rs.Summary)
	}

	qr := rs.Review[0]
	if qr.QuestionTime != "30s" {
		t.Fatalf("question_time = %q, want 30s", qr.QuestionTime)
	}
	want := []OptionReview{
		{Title: "2", IsUserChoice: true, IsAdminChoice: true, IsCorrect: true},
		{Title: "3", IsUserChoice: false, IsAdminChoice: true, IsCorrect: false},
		{Title: "4", IsUserChoice: true, IsAdminChoice: false, IsCorrect: false},
	}
	for i, w := range want {
		got := qr.Options[i]
		if got.Title != w.Title || got.IsUserChoice != w.IsUserChoice ||
			got.IsAdminChoice != w.IsAdminChoice || got.IsCorrect != w.IsCorrect {
			t.Errorf("option %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestReviewUnansweredQuestionCountsSkipped(t *testing.T) {
	q := sampleQuiz()
	a := quiz.Attempt{Questions: []quiz.Question{
		mcq("Capital of France?", []string{"Paris", "Lyon", "Nice"}, "", ""),
	}}
	rs := Review(q, a)
	if rs.Summary.Skipped != 1 || rs.Summary.Correct != 0 || rs.Summary.Incorrect != 0 {
		t.Fatalf("summary = %+v, want skipped=1 only", rs.Summary)
	}
	if len(rs.Review[0].Options) != 3 {
		t.Fatalf("options kept = %d, want 3", len(rs.Review[0].Options))
	}
}

func TestReviewUnknownTitle(t *testing.T) {
	q := sampleQuiz()
	a := quiz.Attempt{Questions: []quiz.Question{
		{Title: "Not in quiz", Options: []quiz.Option{{Label: "x", Answer: true}}},
	}}
	rs := Review(q, a)
	if rs.Summary.Skipped != 1 {
		t.Fatalf("skipped = %d, want 1", rs.Summary.Skipped)
	}
	if len(rs.Review) != 1 || len(rs.Review[0].Options) != 0 {
		t.Fatalf("review = %+v, want one entry with no options", rs.Review)
	}
}

func TestReviewWalksAttemptNotQuiz(t *testing.T) {
	q := sampleQuiz()
	a := quiz.Attempt{Questions: []quiz.Question{
		mcq("Capital of Japan?", []string{"Osaka", "Tokyo", "Kyoto"}, "", "Tokyo"),
	}}
	rs := Review(q, a)
	if rs.Summary.TotalQuestions != 1 || len(rs.Review) != 1 {
		t.Fatalf("review covers %d questions, want only the submitted one", len(rs.Review))
	}
}

func TestPrepareSubmissionBackfill(t *testing.T) {
	q := quiz.Quiz{Questions: []quiz.Question{
		{Title: "Q1", SortOrder: 5, Type: 2, Time: "45s", Options: []quiz.Option{
			{Label: "a", SortOrder: 1, Answer: true},
			{Label: "b", SortOrder: 2, Answer: false},
		}},
	}}
	// Client sends the user's picks in Answer and omits metadata.
	submitted := []quiz.Question{
		{Title: "Q1", Options: []quiz.Option{
			{Label: "a", Answer: false},
			{Label: "b", Answer: true},
		}},
	}

	got := PrepareSubmission(q, submitted)
	if len(got) != 1 {
		t.Fatalf("got %d questions, want 1", len(got))
	}
	g := got[0]
	if g.SortOrder != 5 || g.Type != 2 || g.Time != "45s" {
		t.Fatalf("metadata not backfilled: %+v", g)
	}
	// The user's selections survive untouched; the authoritative key lands
	// in the denormalized Correct flag.
	if g.Options[0].Answer || !g.Options[1].Answer {
		t.Fatalf("answer flags = %v/%v, want false/true", g.Options[0].Answer, g.Options[1].Answer)
	}
	if !g.Options[0].Correct || g.Options[1].Correct {
		t.Fatalf("correct flags = %v/%v, want true/false", g.Options[0].Correct, g.Options[1].Correct)
	}
}

func TestPrepareSubmissionUnknownQuestionPassesThrough(t *testing.T) {
	q := sampleQuiz()
	submitted := []quiz.Question{
		{Title: "Made up", Options: []quiz.Option{{Label: "x", Answer: true}}},
	}
	got := PrepareSubmission(q, submitted)
	if got[0].Title != "Made up" {
		t.Fatalf("question dropped: %+v", got)
	}
	if !got[0].Options[0].Answer {
		t.Fatalf("unmatched option lost the user's selection")
	}
	if got[0].Options[0].Correct {
		t.Fatalf("unmatched option marked correct, want false")
	}
}
