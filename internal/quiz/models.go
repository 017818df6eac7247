package quiz

// Option is a single answer choice. Label doubles as the comparison key:
// the engine matches a player's option to the authoritative one by label.
//
// Answer is overloaded the way the stored documents are: on an
// authoritative quiz it marks the correct option, on an attempt it marks
// the option the user selected. Correct only appears on attempts, a copy
// of the authoritative flag captured at submission time.
type Option struct {
	Label     string `json:"option_label" validate:"required"`
	SortOrder int    `json:"option_sort_order"`
	Answer    bool   `json:"answer"`
	Correct   bool   `json:"is_correct,omitempty"`
}

// Question carries its options in declared order. Type is an opaque code
// owned by the frontend (1 = single choice in current clients).
type Question struct {
	Title     string   `json:"question_title" validate:"required"`
	SortOrder int      `json:"question_sort_order"`
	Type      int      `json:"question_type"`
	Time      string   `json:"question_time"`
	Options   []Option `json:"options" validate:"min=1,dive"`
}

// Quiz is the authoritative, admin-authored document.
type Quiz struct {
	ID         string     `json:"id"`
	BusinessID string     `json:"business_id"`
	CategoryID string     `json:"category_id"`
	Title      string     `json:"quiz_title"`
	SortOrder  int        `json:"quiz_sort_order"`
	Time       string     `json:"quiz_time"`
	Image      string     `json:"image"`
	Status     bool       `json:"status"`
	Questions  []Question `json:"question_group"`
	CreatedAt  int64      `json:"created_at,omitempty"`
}

// Summary is a quiz list row with the category joined in.
type Summary struct {
	Quiz
	CategoryName   string `json:"category_name"`
	TotalQuestions int    `json:"total_questions"`
}

// Attempt is a user's answers against one quiz. There is at most one row per
// (user, quiz) pair; repeated submissions append into Questions until the
// user retakes, which deletes the row. Quiz fields are denormalized at
// submission time, and QuizID may be an opaque string.
type Attempt struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	QuizID    string     `json:"quiz_id"`
	QuizTitle string     `json:"quiz_title"`
	SortOrder int        `json:"quiz_sort_order"`
	QuizTime  string     `json:"quiz_time"`
	Questions []Question `json:"question_group"`
	CreatedAt int64      `json:"created_at,omitempty"`
}

// Selected reports whether the user marked any option in q.
func (q Question) Selected() bool {
	for _, o := range q.Options {
		if o.Answer {
			return true
		}
	}
	return false
}

// StripAnswers clears the answer flags so a quiz can be served to players.
func (q Quiz) StripAnswers() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, qs := range q.Questions {
		cq := qs
		cq.Options = make([]Option, len(qs.Options))
		for j, o := range qs.Options {
			o.Answer = false
			cq.Options[j] = o
		}
		out.Questions[i] = cq
	}
	return out
}
