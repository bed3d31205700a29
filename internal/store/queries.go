// store/queries.go - Query (clarification request) persistence
package store

import (
	"database/sql"
	"time"

	"officeflow/internal/models"
)

// QueryFilter narrows ListQueries; zero values mean no filter.
type QueryFilter struct {
	SubtaskID *int64
	RaisedBy  *int64
	Status    models.QueryStatus
	Priority  models.QueryPriority
	NotClosed bool
}

func scanQuery(rows *sql.Rows) (models.Query, error) {
	var q models.Query
	var repliedBy, closedBy sql.NullInt64
	var repliedAt, closedAt sql.NullTime
	err := rows.Scan(&q.ID, &q.SubtaskID, &q.RaisedBy, &q.Message, &q.Type, &q.Priority,
		&q.Status, &q.Reply, &repliedBy, &repliedAt, &closedBy, &closedAt, &q.CreatedAt)
	q.RepliedBy = i64Ptr(repliedBy)
	q.RepliedAt = timePtr(repliedAt)
	q.ClosedBy = i64Ptr(closedBy)
	q.ClosedAt = timePtr(closedAt)
	return q, err
}

func (db *DB) CreateQuery(q *models.Query) error {
	if q.Status == "" {
		q.Status = models.QueryOpen
	}
	err := db.QueryRow(qQueryInsert, q.SubtaskID, q.RaisedBy, q.Message, q.Type,
		q.Priority, q.Status).Scan(&q.ID, &q.CreatedAt)
	if isUniqueViolation(err, "queries") {
		return ErrOpenQueryExists
	}
	return err
}

func (db *DB) GetQuery(id int64) (*models.Query, error) {
	rows, err := db.Query(`SELECT `+queryCols+` FROM queries WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	qs, err := collectRows(rows, scanQuery)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, ErrQueryNotFound
	}
	return &qs[0], nil
}

// OpenQueryForSubtask returns the subtask's single non-closed query, or nil.
func (db *DB) OpenQueryForSubtask(subtaskID int64) (*models.Query, error) {
	rows, err := db.Query(`SELECT `+queryCols+` FROM queries
		WHERE subtask_id = ? AND status != 'CLOSED'`, subtaskID)
	if err != nil {
		return nil, err
	}
	qs, err := collectRows(rows, scanQuery)
	if err != nil || len(qs) == 0 {
		return nil, err
	}
	return &qs[0], nil
}

func (db *DB) MarkQueryReplied(id int64, reply string, by int64, at time.Time) error {
	res, err := db.Exec(`UPDATE queries SET status='REPLIED', reply=?, replied_by=?, replied_at=? WHERE id=?`,
		reply, by, at, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQueryNotFound
	}
	return nil
}

// MarkQueryClosed sets the terminal status; autoReply overwrites the reply
// only when non-empty (reassignment path).
func (db *DB) MarkQueryClosed(id, by int64, at time.Time, autoReply string) error {
	var res sql.Result
	var err error
	if autoReply != "" {
		res, err = db.Exec(`UPDATE queries SET status='CLOSED', closed_by=?, closed_at=?, reply=? WHERE id=?`,
			by, at, autoReply, id)
	} else {
		res, err = db.Exec(`UPDATE queries SET status='CLOSED', closed_by=?, closed_at=? WHERE id=?`,
			by, at, id)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrQueryNotFound
	}
	return nil
}

func (db *DB) ListQueries(f QueryFilter) ([]models.Query, error) {
	q := `SELECT ` + queryCols + ` FROM queries WHERE 1=1`
	var args []any
	if f.SubtaskID != nil {
		q += ` AND subtask_id = ?`
		args = append(args, *f.SubtaskID)
	}
	if f.RaisedBy != nil {
		q += ` AND raised_by = ?`
		args = append(args, *f.RaisedBy)
	}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		q += ` AND priority = ?`
		args = append(args, f.Priority)
	}
	if f.NotClosed {
		q += ` AND status != 'CLOSED'`
	}
	q += ` ORDER BY created_at DESC`
	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	return collectRows(rows, scanQuery)
}

func (db *DB) CountOpenQueries() (int64, error) {
	var n int64
	err := db.QueryRow(`SELECT COUNT(*) FROM queries WHERE status != 'CLOSED'`).Scan(&n)
	return n, err
}
