// store/work.go - Users, clients, tasks and subtasks
package store

import (
	"database/sql"
	"errors"
	"time"

	"officeflow/internal/models"
)

func scanUser(rows *sql.Rows) (models.User, error) {
	var u models.User
	err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
	return u, err
}

func (db *DB) CreateUser(u *models.User) error {
	return db.QueryRow(qUserInsert, u.Name, u.Email, u.Role, u.IsActive).Scan(&u.ID, &u.CreatedAt)
}

func (db *DB) GetUser(id int64) (*models.User, error) {
	u := &models.User{}
	err := db.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (db *DB) ListEmployees() ([]models.User, error) {
	rows, err := db.Query(`SELECT `+userCols+` FROM users
		WHERE role = ? AND is_active = 1 ORDER BY name`, models.RoleEmployee)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanUser)
}

func scanClient(rows *sql.Rows) (models.Client, error) {
	var c models.Client
	err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.GSTNumber,
		&c.HourlyRate, &c.IsActive, &c.CreatedAt)
	return c, err
}

func (db *DB) CreateClient(c *models.Client) error {
	return db.QueryRow(qClientInsert, c.Name, c.Email, c.Phone, c.Address, c.GSTNumber,
		c.HourlyRate, c.IsActive).Scan(&c.ID, &c.CreatedAt)
}

func (db *DB) GetClient(id int64) (*models.Client, error) {
	c := &models.Client{}
	err := db.QueryRow(`SELECT `+clientCols+` FROM clients WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.GSTNumber,
			&c.HourlyRate, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrClientNotFound
	}
	return c, err
}

func (db *DB) UpdateClient(c *models.Client) error {
	res, err := db.Exec(qClientUpdate, c.Name, c.Email, c.Phone, c.Address, c.GSTNumber,
		c.HourlyRate, c.IsActive, c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClientNotFound
	}
	return nil
}

func (db *DB) DeleteClient(id int64) error {
	res, err := db.Exec(`DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrClientNotFound
	}
	return nil
}

func (db *DB) ListClients() ([]models.Client, error) {
	rows, err := db.Query(`SELECT ` + clientCols + ` FROM clients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanClient)
}

func (db *DB) ListActiveClients() ([]models.Client, error) {
	rows, err := db.Query(`SELECT ` + clientCols + ` FROM clients WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanClient)
}

// TaskFilter narrows ListTasks; zero values mean no filter.
type TaskFilter struct {
	ClientID *int64
	Status   models.TaskStatus
}

func scanTask(rows *sql.Rows) (models.Task, error) {
	var t models.Task
	err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.ClientID, &t.Status, &t.CreatedBy,
		&t.TotalEstimatedHours, &t.TotalLoggedHours, &t.CreatedAt)
	return t, err
}

func (db *DB) CreateTask(t *models.Task) error {
	if t.Status == "" {
		t.Status = models.TaskPending
	}
	return db.QueryRow(qTaskInsert, t.Title, t.Description, t.ClientID, t.Status, t.CreatedBy,
		t.TotalEstimatedHours, t.TotalLoggedHours).Scan(&t.ID, &t.CreatedAt)
}

func (db *DB) GetTask(id int64) (*models.Task, error) {
	t := &models.Task{}
	err := db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.ClientID, &t.Status, &t.CreatedBy,
			&t.TotalEstimatedHours, &t.TotalLoggedHours, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	return t, err
}

func (db *DB) UpdateTask(t *models.Task) error {
	res, err := db.Exec(qTaskUpdate, t.Title, t.Description, t.ClientID, t.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (db *DB) UpdateTaskDerived(id int64, status models.TaskStatus, totalLogged float64) error {
	_, err := db.Exec(`UPDATE tasks SET status=?, total_logged_hours=? WHERE id=?`, status, totalLogged, id)
	return err
}

func (db *DB) UpdateTaskEstimate(id int64, totalEstimated float64) error {
	_, err := db.Exec(`UPDATE tasks SET total_estimated_hours=? WHERE id=?`, totalEstimated, id)
	return err
}

// DeleteTask removes the task; subtasks (and their logs and queries) cascade.
func (db *DB) DeleteTask(id int64) error {
	res, err := db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (db *DB) ListTasks(f TaskFilter) ([]models.Task, error) {
	q := `SELECT ` + taskCols + ` FROM tasks WHERE 1=1`
	var args []any
	if f.ClientID != nil {
		q += ` AND client_id = ?`
		args = append(args, *f.ClientID)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanTask)
}

// SubtaskFilter narrows ListSubtasks; zero values mean no filter.
type SubtaskFilter struct {
	TaskID     *int64
	AssignedTo *int64
	Status     models.SubtaskStatus
}

func scanSubtask(rows *sql.Rows) (models.Subtask, error) {
	var s models.Subtask
	err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.TaskID, &s.AssignedTo,
		&s.EstimatedHours, &s.LoggedHours, &s.Status, &s.CreatedBy, &s.CreatedAt)
	return s, err
}

func (db *DB) CreateSubtask(s *models.Subtask) error {
	if s.Status == "" {
		s.Status = models.SubtaskPending
	}
	return db.QueryRow(qSubtaskInsert, s.Title, s.Description, s.TaskID, s.AssignedTo,
		s.EstimatedHours, s.LoggedHours, s.Status, s.CreatedBy).Scan(&s.ID, &s.CreatedAt)
}

func (db *DB) GetSubtask(id int64) (*models.Subtask, error) {
	s := &models.Subtask{}
	err := db.QueryRow(`SELECT `+subtaskCols+` FROM subtasks WHERE id = ?`, id).
		Scan(&s.ID, &s.Title, &s.Description, &s.TaskID, &s.AssignedTo,
			&s.EstimatedHours, &s.LoggedHours, &s.Status, &s.CreatedBy, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubtaskNotFound
	}
	return s, err
}

func (db *DB) UpdateSubtask(s *models.Subtask) error {
	res, err := db.Exec(qSubtaskUpdate, s.Title, s.Description, s.AssignedTo,
		s.EstimatedHours, s.Status, s.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

func (db *DB) SetSubtaskStatus(id int64, status models.SubtaskStatus) error {
	_, err := db.Exec(`UPDATE subtasks SET status=? WHERE id=?`, status, id)
	return err
}

func (db *DB) SetSubtaskLoggedHours(id int64, hours float64) error {
	_, err := db.Exec(`UPDATE subtasks SET logged_hours=? WHERE id=?`, hours, id)
	return err
}

func (db *DB) SetSubtaskAssignee(id, userID int64) error {
	_, err := db.Exec(`UPDATE subtasks SET assigned_to=? WHERE id=?`, userID, id)
	return err
}

func (db *DB) DeleteSubtask(id int64) error {
	res, err := db.Exec(`DELETE FROM subtasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSubtaskNotFound
	}
	return nil
}

func (db *DB) ListSubtasks(f SubtaskFilter) ([]models.Subtask, error) {
	q := `SELECT ` + subtaskCols + ` FROM subtasks WHERE 1=1`
	var args []any
	if f.TaskID != nil {
		q += ` AND task_id = ?`
		args = append(args, *f.TaskID)
	}
	if f.AssignedTo != nil {
		q += ` AND assigned_to = ?`
		args = append(args, *f.AssignedTo)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	q += ` ORDER BY created_at DESC`
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanSubtask)
}

// SweepCandidate is one subtask the outstanding sweep may escalate, with the
// end of its most recent stopped log (nil when nothing was ever logged).
type SweepCandidate struct {
	SubtaskID int64
	Status    models.SubtaskStatus
	CreatedAt time.Time
	LastStop  *time.Time
}

func (db *DB) ListSweepCandidates() ([]SweepCandidate, error) {
	rows, err := db.Query(`SELECT s.id, s.status, s.created_at,
			(SELECT end_time FROM time_logs WHERE subtask_id = s.id AND end_time IS NOT NULL
				ORDER BY end_time DESC LIMIT 1)
		FROM subtasks s
		WHERE s.status IN (?, ?)`, models.SubtaskPending, models.SubtaskInProgress)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, func(rows *sql.Rows) (SweepCandidate, error) {
		var c SweepCandidate
		var last sql.NullTime
		err := rows.Scan(&c.SubtaskID, &c.Status, &c.CreatedAt, &last)
		c.LastStop = timePtr(last)
		return c, err
	})
}
