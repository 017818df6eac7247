package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes
		(id,business_id,category_id,quiz_title,quiz_sort_order,quiz_time,image,status,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		q.ID, q.BusinessID, q.CategoryID, q.Title, q.SortOrder, q.Time, q.Image,
		boolToInt(q.Status), string(qj), time.Now().Unix())
	return err
}

func (s *SQLStore) UpdateQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE quizzes
		SET category_id=$1, quiz_title=$2, quiz_sort_order=$3, quiz_time=$4, image=$5, status=$6, questions_json=$7
		WHERE id=$8 AND business_id=$9`,
		q.CategoryID, q.Title, q.SortOrder, q.Time, q.Image, boolToInt(q.Status),
		string(qj), q.ID, q.BusinessID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id, businessID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1 AND business_id=$2`, id, businessID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQuizNotFound
	}
	return nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,business_id,category_id,quiz_title,quiz_sort_order,quiz_time,image,status,questions_json,created_at
		FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *SQLStore) ListQuizzes(ctx context.Context, opts ListOpts) ([]Summary, int, error) {
	where := []string{"q.business_id=$1"}
	args := []any{opts.BusinessID}
	if opts.CategoryID != "" {
		args = append(args, opts.CategoryID)
		where = append(where, "q.category_id=$"+strconv.Itoa(len(args)))
	}
	if opts.Q != "" {
		args = append(args, strings.ToLower(opts.Q))
		where = append(where, "LOWER(q.quiz_title) LIKE '%' || $"+strconv.Itoa(len(args))+" || '%'")
	}
	if opts.ActiveOnly {
		where = append(where, "q.status=1")
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quizzes q WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx, `SELECT q.id,q.business_id,q.category_id,q.quiz_title,q.quiz_sort_order,q.quiz_time,q.image,q.status,q.questions_json,q.created_at,
			COALESCE(c.category_name,'N/A')
		FROM quizzes q LEFT JOIN categories c ON c.id=q.category_id
		WHERE `+cond+`
		ORDER BY q.quiz_sort_order ASC, q.created_at DESC
		LIMIT $`+strconv.Itoa(len(args)-1)+` OFFSET $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sm     Summary
			status int
			qjson  string
		)
		if err := rows.Scan(&sm.ID, &sm.BusinessID, &sm.CategoryID, &sm.Title, &sm.SortOrder,
			&sm.Time, &sm.Image, &status, &qjson, &sm.CreatedAt, &sm.CategoryName); err != nil {
			return nil, 0, err
		}
		sm.Status = status != 0
		if err := json.Unmarshal([]byte(qjson), &sm.Questions); err != nil {
			return nil, 0, err
		}
		sm.TotalQuestions = len(sm.Questions)
		out = append(out, sm)
	}
	return out, total, rows.Err()
}

func (s *SQLStore) LatestAttemptIDs(ctx context.Context, userID string, quizIDs []string) (map[string]string, error) {
	out := map[string]string{}
	if userID == "" || len(quizIDs) == 0 {
		return out, nil
	}
	ph := make([]string, len(quizIDs))
	args := []any{userID}
	for i, id := range quizIDs {
		args = append(args, id)
		ph[i] = "$" + strconv.Itoa(len(args))
	}
	rows, err := s.db.QueryContext(ctx, `SELECT quiz_id,id FROM attempts
		WHERE user_id=$1 AND quiz_id IN (`+strings.Join(ph, ",")+`)
		ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var quizID, id string
		if err := rows.Scan(&quizID, &id); err != nil {
			return nil, err
		}
		if _, ok := out[quizID]; !ok {
			out[quizID] = id
		}
	}
	return out, rows.Err()
}

// SubmitQuestions runs the create-or-append as one transaction. The UNIQUE
// (user_id, quiz_id) index makes the insert race-free: the loser of a
// concurrent insert falls through to the append path.
func (s *SQLStore) SubmitQuestions(ctx context.Context, a Attempt) (Attempt, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, false, err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	qj, err := json.Marshal(a.Questions)
	if err != nil {
		return Attempt{}, false, err
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO attempts
		(id,user_id,quiz_id,quiz_title,quiz_sort_order,quiz_time,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id,quiz_id) DO NOTHING`,
		id, a.UserID, a.QuizID, a.QuizTitle, a.SortOrder, a.QuizTime, string(qj), time.Now().Unix())
	if err != nil {
		return Attempt{}, false, err
	}
	created := false
	if n, _ := res.RowsAffected(); n > 0 {
		created = true
	} else {
		// Append to the existing row. No dedupe by title: resubmitting the
		// same question appends a duplicate entry, as the clients expect.
		var existing string
		if err := tx.QueryRowContext(ctx, `SELECT questions_json FROM attempts WHERE user_id=$1 AND quiz_id=$2`,
			a.UserID, a.QuizID).Scan(&existing); err != nil {
			return Attempt{}, false, err
		}
		var qs []Question
		if err := json.Unmarshal([]byte(existing), &qs); err != nil {
			return Attempt{}, false, err
		}
		qs = append(qs, a.Questions...)
		buf, err := json.Marshal(qs)
		if err != nil {
			return Attempt{}, false, err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE attempts SET questions_json=$1 WHERE user_id=$2 AND quiz_id=$3`,
			string(buf), a.UserID, a.QuizID); err != nil {
			return Attempt{}, false, err
		}
	}
	if err := tx.Commit(); err != nil {
		return Attempt{}, false, err
	}
	out, err := s.FindAttempt(ctx, a.UserID, a.QuizID)
	return out, created, err
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,user_id,quiz_id,quiz_title,quiz_sort_order,quiz_time,questions_json,created_at
		FROM attempts WHERE id=$1`, id)
	return scanAttempt(row)
}

func (s *SQLStore) FindAttempt(ctx context.Context, userID, quizID string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,user_id,quiz_id,quiz_title,quiz_sort_order,quiz_time,questions_json,created_at
		FROM attempts WHERE user_id=$1 AND quiz_id=$2`, userID, quizID)
	return scanAttempt(row)
}

func (s *SQLStore) DeleteAttempt(ctx context.Context, id, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, userID string, limit, offset int) ([]Attempt, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attempts WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id,user_id,quiz_id,quiz_title,quiz_sort_order,quiz_time,questions_json,created_at
		FROM attempts WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	return out, total, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanQuiz(row rowScanner) (Quiz, error) {
	var (
		q      Quiz
		status int
		qjson  string
	)
	if err := row.Scan(&q.ID, &q.BusinessID, &q.CategoryID, &q.Title, &q.SortOrder,
		&q.Time, &q.Image, &status, &qjson, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrQuizNotFound
		}
		return Quiz{}, err
	}
	q.Status = status != 0
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var (
		a     Attempt
		qjson string
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.QuizID, &a.QuizTitle, &a.SortOrder,
		&a.QuizTime, &qjson, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &a.Questions); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
