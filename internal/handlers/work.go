// handlers/work.go - Users, clients, tasks and subtasks
package handlers

import (
	"net/http"

	"officeflow/internal/models"
	"officeflow/internal/store"
)

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name  string      `json:"name"`
		Email string      `json:"email"`
		Role  models.Role `json:"role"`
	}
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if in.Name == "" || in.Email == "" || (in.Role != models.RoleEmployee && in.Role != models.RoleHR) {
		writeError(w, http.StatusBadRequest, "invalid_input", "name, email and a valid role are required")
		return
	}

	u := &models.User{Name: in.Name, Email: in.Email, Role: in.Role, IsActive: true}
	if err := h.DB.CreateUser(u); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	users, err := h.DB.ListEmployees()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type clientInput struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Address    string  `json:"address"`
	GSTNumber  string  `json:"gst_number"`
	HourlyRate float64 `json:"hourly_rate"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var in clientInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if in.Name == "" || in.HourlyRate < 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "name is required and hourly_rate must not be negative")
		return
	}

	c := &models.Client{
		Name:       in.Name,
		Email:      in.Email,
		Phone:      in.Phone,
		Address:    in.Address,
		GSTNumber:  in.GSTNumber,
		HourlyRate: in.HourlyRate,
		IsActive:   true,
	}
	if err := h.DB.CreateClient(c); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid client id")
		return
	}
	c, err := h.DB.GetClient(id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid client id")
		return
	}
	c, err := h.DB.GetClient(id)
	if err != nil {
		respondError(w, err)
		return
	}

	var in clientInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if in.Name == "" || in.HourlyRate < 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "name is required and hourly_rate must not be negative")
		return
	}

	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.GSTNumber = in.GSTNumber
	c.HourlyRate = in.HourlyRate
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := h.DB.UpdateClient(c); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid client id")
		return
	}
	if err := h.DB.DeleteClient(id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	var (
		clients []models.Client
		err     error
	)
	if r.URL.Query().Get("active") == "true" {
		clients, err = h.DB.ListActiveClients()
	} else {
		clients, err = h.DB.ListClients()
	}
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

type taskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ClientID    int64  `json:"client_id"`
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var in taskInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if in.Title == "" || in.ClientID == 0 {
		writeError(w, http.StatusBadRequest, "invalid_input", "title and client_id are required")
		return
	}
	if _, err := h.DB.GetClient(in.ClientID); err != nil {
		respondError(w, err)
		return
	}

	t := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		ClientID:    in.ClientID,
		Status:      models.TaskPending,
		CreatedBy:   principal(r).ID,
	}
	if err := h.DB.CreateTask(t); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid task id")
		return
	}
	t, err := h.DB.GetTask(id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid task id")
		return
	}
	t, err := h.DB.GetTask(id)
	if err != nil {
		respondError(w, err)
		return
	}

	var in taskInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if in.Title == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "title is required")
		return
	}

	t.Title = in.Title
	t.Description = in.Description
	if in.ClientID != 0 {
		t.ClientID = in.ClientID
	}
	if err := h.DB.UpdateTask(t); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid task id")
		return
	}
	if err := h.DB.DeleteTask(id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	var f store.TaskFilter
	if v, ok := queryInt64(r, "client_id"); ok {
		f.ClientID = &v
	}
	f.Status = models.TaskStatus(r.URL.Query().Get("status"))

	tasks, err := h.DB.ListTasks(f)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

type subtaskInput struct {
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	TaskID         int64                `json:"task_id"`
	AssignedTo     int64                `json:"assigned_to"`
	EstimatedHours float64              `json:"estimated_hours"`
	Status         models.SubtaskStatus `json:"status,omitempty"`
}

func (h *Handler) createSubtask(w http.ResponseWriter, r *http.Request) {
	var in subtaskInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	sub := &models.Subtask{
		Title:          in.Title,
		Description:    in.Description,
		TaskID:         in.TaskID,
		AssignedTo:     in.AssignedTo,
		EstimatedHours: in.EstimatedHours,
		CreatedBy:      principal(r).ID,
	}
	if err := h.Flow.CreateSubtask(sub); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *Handler) updateSubtask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid subtask id")
		return
	}
	sub, err := h.DB.GetSubtask(id)
	if err != nil {
		respondError(w, err)
		return
	}

	var in subtaskInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	if in.Title != "" {
		sub.Title = in.Title
	}
	sub.Description = in.Description
	if in.AssignedTo != 0 {
		sub.AssignedTo = in.AssignedTo
	}
	if in.EstimatedHours > 0 {
		sub.EstimatedHours = in.EstimatedHours
	}
	if in.Status != "" {
		sub.Status = in.Status
	}

	if err := h.Flow.UpdateSubtask(sub); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) deleteSubtask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid subtask id")
		return
	}
	if err := h.Flow.DeleteSubtask(id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getSubtask returns the subtask together with its open query, if any, so
// the detail view can show why work is blocked.
func (h *Handler) getSubtask(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid subtask id")
		return
	}
	sub, err := h.DB.GetSubtask(id)
	if err != nil {
		respondError(w, err)
		return
	}
	open, err := h.DB.OpenQueryForSubtask(id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subtask":    sub,
		"open_query": open,
	})
}

// listSubtasks scopes results to the caller: employees see their own
// assignments, HR sees everything and may filter by assignee.
func (h *Handler) listSubtasks(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var f store.SubtaskFilter
	if v, ok := queryInt64(r, "task_id"); ok {
		f.TaskID = &v
	}
	f.Status = models.SubtaskStatus(r.URL.Query().Get("status"))

	if p.IsHR() {
		if v, ok := queryInt64(r, "assigned_to"); ok {
			f.AssignedTo = &v
		}
	} else {
		f.AssignedTo = &p.ID
	}

	subtasks, err := h.DB.ListSubtasks(f)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subtasks)
}
