package repo

import (
	"context"
	"fmt"
	"strings"

	dom "taskward/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepo provides task persistence. Every method takes the owning user id
// and applies it in the query itself; there is no way to reach a task by id
// alone.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetByID(ctx context.Context, userID, id int64) (dom.Task, error)
	List(ctx context.Context, userID int64, f dom.TaskFilter) ([]dom.Task, error)
	Update(ctx context.Context, userID, id int64, patch dom.Task) (dom.Task, error)
	ToggleCompleted(ctx context.Context, userID, id int64) (dom.Task, error)
	Delete(ctx context.Context, userID, id int64) error
}

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

const taskColumns = `id, user_id, content, priority, due_date, completed, created_at, updated_at`

func scanTask(row pgx.Row) (dom.Task, error) {
	var t dom.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Content, &t.Priority, &t.DueDate,
		&t.Completed, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (user_id, content, priority, due_date)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, t.UserID, t.Content, t.Priority, t.DueDate))
}

func (r *PGTaskRepo) GetByID(ctx context.Context, userID, id int64) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	return scanTask(r.db.QueryRow(ctx, query, id, userID))
}

// List returns the user's tasks matching the filter. The WHERE clause always
// starts from the owner predicate; filter predicates are appended with AND.
// Ordering is due_date then id, so a fixed data set always lists the same way.
func (r *PGTaskRepo) List(ctx context.Context, userID int64, f dom.TaskFilter) ([]dom.Task, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	if f.Search != nil {
		args = append(args, "%"+*f.Search+"%")
		where = append(where, fmt.Sprintf("content ILIKE $%d", len(args)))
	}
	if f.Completed != nil {
		args = append(args, *f.Completed)
		where = append(where, fmt.Sprintf("completed = $%d", len(args)))
	}
	if f.Priority != nil {
		args = append(args, *f.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if f.DueDate != nil {
		args = append(args, *f.DueDate)
		where = append(where, fmt.Sprintf("due_date = $%d", len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY due_date ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []dom.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTaskRepo) Update(ctx context.Context, userID, id int64, patch dom.Task) (dom.Task, error) {
	query := `
		UPDATE tasks SET content = $3, priority = $4, due_date = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, id, userID, patch.Content, patch.Priority, patch.DueDate))
}

// ToggleCompleted flips the completed flag in a single scoped statement, so
// concurrent toggles never read a stale value.
func (r *PGTaskRepo) ToggleCompleted(ctx context.Context, userID, id int64) (dom.Task, error) {
	query := `
		UPDATE tasks SET completed = NOT completed, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, id, userID))
}

// Delete removes the task. Zero affected rows (missing or foreign-owned)
// reports pgx.ErrNoRows so callers treat both the same.
func (r *PGTaskRepo) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
