// handlers/queries.go - Query endpoints
package handlers

import (
	"errors"
	"net/http"

	"officeflow/internal/models"
	"officeflow/internal/store"
)

func (h *Handler) raiseQuery(w http.ResponseWriter, r *http.Request) {
	var in struct {
		SubtaskID int64                `json:"subtask_id"`
		Message   string               `json:"message"`
		Type      models.QueryType     `json:"type"`
		Priority  models.QueryPriority `json:"priority"`
	}
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	q := &models.Query{
		SubtaskID: in.SubtaskID,
		Message:   in.Message,
		Type:      in.Type,
		Priority:  in.Priority,
	}
	result, err := h.Flow.RaiseQuery(principal(r).ID, q)
	if errors.Is(err, store.ErrOpenQueryExists) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":          map[string]string{"code": "open_query_exists", "message": err.Error()},
			"existing_query": result,
		})
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// listQueries scopes to the caller's own queries for employees; HR sees
// everything with optional filters.
func (h *Handler) listQueries(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var f store.QueryFilter

	if p.IsHR() {
		if v, ok := queryInt64(r, "raised_by"); ok {
			f.RaisedBy = &v
		}
	} else {
		f.RaisedBy = &p.ID
	}
	if v, ok := queryInt64(r, "subtask_id"); ok {
		f.SubtaskID = &v
	}
	f.Status = models.QueryStatus(r.URL.Query().Get("status"))
	f.Priority = models.QueryPriority(r.URL.Query().Get("priority"))
	f.NotClosed = r.URL.Query().Get("open") == "true"

	queries, err := h.DB.ListQueries(f)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queries)
}

func (h *Handler) replyQuery(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid query id")
		return
	}

	var in struct {
		Reply string `json:"reply"`
	}
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	q, err := h.Flow.ReplyToQuery(principal(r).ID, id, in.Reply)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) closeQuery(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid query id")
		return
	}

	var in struct {
		Reply string `json:"reply,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := decode(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json", err.Error())
			return
		}
	}

	q, err := h.Flow.CloseQuery(principal(r).ID, id, in.Reply)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) reassignQuery(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid query id")
		return
	}

	var in struct {
		AssignedTo int64 `json:"assigned_to"`
	}
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if in.AssignedTo == 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "assigned_to is required")
		return
	}

	q, err := h.Flow.ReassignQuery(principal(r).ID, id, in.AssignedTo)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}
