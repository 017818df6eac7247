// Package scoring compares a user's persisted attempt against the
// authoritative quiz document. It is pure computation: the two operations,
// question-granular Score and option-granular Review, take already-loaded
// documents and do no I/O.
//
// Questions are joined by exact title string and options by exact label.
// That is the legacy contract carried over from the existing clients:
// a renamed or duplicated title silently fails the join and counts as
// skipped, so authoring tools must keep titles unique within a quiz.
package scoring

import (
	"math"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

const (
	StatusCorrect   = "correct"
	StatusIncorrect = "incorrect"
	StatusSkipped   = "skipped"
)

// Tally is the aggregate count block shared by both summaries.
type Tally struct {
	TotalQuestions int `json:"totalQuestions"`
	Correct        int `json:"correct"`
	Incorrect      int `json:"incorrect"`
	Skipped        int `json:"skipped"`
}

// OptionFact is one option as exposed in a score breakdown: the label plus
// the ground-truth correctness flag. It never reflects the user's claim.
type OptionFact struct {
	Label     string `json:"option_label"`
	SortOrder int    `json:"sort_order"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionResult struct {
	QuestionTitle string       `json:"question_title"`
	Status        string       `json:"status"` // correct|incorrect|skipped
	ChosenLabel   string       `json:"chosen_label,omitempty"`
	CorrectLabel  string       `json:"correct_label,omitempty"`
	Options       []OptionFact `json:"options"`
}

// ScoreSummary is the question-granular result of Score.
type ScoreSummary struct {
	Tally
	Percent   int              `json:"score"`
	Questions []QuestionResult `json:"questions"`
}

type OptionReview struct {
	Title         string `json:"title"`
	SortOrder     int    `json:"sort_order"`
	IsUserChoice  bool   `json:"is_user_choice"`
	IsAdminChoice bool   `json:"is_admin_choice"`
	IsCorrect     bool   `json:"is_correct"`
}

type QuestionReview struct {
	QuestionTitle string         `json:"question_title"`
	QuestionTime  string         `json:"question_time"`
	Options       []OptionReview `json:"options"`
}

// ReviewSummary is the option-granular result of Review. Its counts are not
// comparable to ScoreSummary's: here correct/incorrect count user-selected
// options, not questions.
type ReviewSummary struct {
	Summary Tally            `json:"summary"`
	Review  []QuestionReview `json:"review"`
}

// PrepareSubmission normalizes questions a user submits before they are
// persisted. Each submitted question is matched to the authoritative one by
// title; when found, missing sort/type/time fields are backfilled and every
// option gets a denormalized Correct flag copied from the authoritative key
// by label. The user's own Answer flags are kept exactly as submitted.
// Unmatched questions pass through untouched with Correct left false.
func PrepareSubmission(q quiz.Quiz, submitted []quiz.Question) []quiz.Question {
	out := make([]quiz.Question, len(submitted))
	for i, sq := range submitted {
		aq, ok := findQuestion(q.Questions, sq.Title)
		if !ok {
			out[i] = clearCorrect(sq)
			continue
		}
		if sq.SortOrder == 0 {
			sq.SortOrder = aq.SortOrder
		}
		if sq.Type == 0 {
			sq.Type = aq.Type
		}
		if sq.Time == "" {
			sq.Time = aq.Time
		}
		opts := make([]quiz.Option, len(sq.Options))
		for j, so := range sq.Options {
			if ao, ok := findOption(aq.Options, so.Label); ok {
				so.Correct = ao.Answer
			} else {
				so.Correct = false
			}
			opts[j] = so
		}
		sq.Options = opts
		out[i] = sq
	}
	return out
}

func clearCorrect(q quiz.Question) quiz.Question {
	opts := make([]quiz.Option, len(q.Options))
	for i, o := range q.Options {
		o.Correct = false
		opts[i] = o
	}
	q.Options = opts
	return q
}

// Score grades an attempt question by question against the quiz's single
// canonical correct option. The quiz's question list is the source of truth
// for totals: an attempt with fewer recorded answers is scored against the
// full quiz, the missing questions counting as skipped.
func Score(q quiz.Quiz, a quiz.Attempt) ScoreSummary {
	s := ScoreSummary{
		Tally:     Tally{TotalQuestions: len(q.Questions)},
		Questions: make([]QuestionResult, 0, len(q.Questions)),
	}

	for _, aq := range q.Questions {
		res := QuestionResult{
			QuestionTitle: aq.Title,
			Options:       optionFacts(aq.Options),
		}
		// First option flagged correct wins when several are (single-choice
		// contract; multi-correct quizzes belong to Review).
		if co, ok := firstAnswered(aq.Options); ok {
			res.CorrectLabel = co.Label
		}

		uq, ok := findQuestion(a.Questions, aq.Title)
		if !ok {
			res.Status = StatusSkipped
			s.Skipped++
			s.Questions = append(s.Questions, res)
			continue
		}
		uo, picked := firstAnswered(uq.Options)
		switch {
		case !picked:
			res.Status = StatusSkipped
			s.Skipped++
		case res.CorrectLabel != "" && uo.Label == res.CorrectLabel:
			res.Status = StatusCorrect
			res.ChosenLabel = uo.Label
			s.Correct++
		default:
			res.Status = StatusIncorrect
			res.ChosenLabel = uo.Label
			s.Incorrect++
		}
		s.Questions = append(s.Questions, res)
	}

	s.Percent = percent(s.Correct, s.TotalQuestions)
	return s
}

// Review annotates every submitted option with whether the admin also marked
// it, supporting multi-select schemes. Unlike Score it walks the attempt's
// own question list, so questions the user never submitted do not appear.
//
// The counts are option-granular: each user-selected option bumps correct or
// incorrect on its own. A question with no authoritative match, or with no
// selection at all, bumps skipped, so a fully unanswered question shows up
// in skipped while contributing nothing to correct/incorrect.
func Review(q quiz.Quiz, a quiz.Attempt) ReviewSummary {
	rs := ReviewSummary{
		Summary: Tally{TotalQuestions: len(a.Questions)},
		Review:  make([]QuestionReview, 0, len(a.Questions)),
	}

	for _, uq := range a.Questions {
		qr := QuestionReview{
			QuestionTitle: uq.Title,
			QuestionTime:  uq.Time,
			Options:       []OptionReview{},
		}
		aq, ok := findQuestion(q.Questions, uq.Title)
		if !ok {
			rs.Summary.Skipped++
			rs.Review = append(rs.Review, qr)
			continue
		}
		for _, uo := range uq.Options {
			or := OptionReview{
				Title:        uo.Label,
				SortOrder:    uo.SortOrder,
				IsUserChoice: uo.Answer,
			}
			if ao, ok := findOption(aq.Options, uo.Label); ok {
				or.IsAdminChoice = ao.Answer
			}
			or.IsCorrect = or.IsUserChoice && or.IsAdminChoice
			if or.IsCorrect {
				rs.Summary.Correct++
			} else if or.IsUserChoice {
				rs.Summary.Incorrect++
			}
			qr.Options = append(qr.Options, or)
		}
		if !uq.Selected() {
			rs.Summary.Skipped++
		}
		rs.Review = append(rs.Review, qr)
	}
	return rs
}

func percent(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

func optionFacts(opts []quiz.Option) []OptionFact {
	out := make([]OptionFact, len(opts))
	for i, o := range opts {
		out[i] = OptionFact{Label: o.Label, SortOrder: o.SortOrder, IsCorrect: o.Answer}
	}
	return out
}

func findQuestion(qs []quiz.Question, title string) (quiz.Question, bool) {
	for _, q := range qs {
		if q.Title == title {
			return q, true
		}
	}
	return quiz.Question{}, false
}

func findOption(opts []quiz.Option, label string) (quiz.Option, bool) {
	for _, o := range opts {
		if o.Label == label {
			return o, true
		}
	}
	return quiz.Option{}, false
}

func firstAnswered(opts []quiz.Option) (quiz.Option, bool) {
	for _, o := range opts {
		if o.Answer {
			return o, true
		}
	}
	return quiz.Option{}, false
}
