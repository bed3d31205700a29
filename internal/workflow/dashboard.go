// workflow/dashboard.go - Role-scoped dashboards
package workflow

import (
	"officeflow/internal/models"
	"officeflow/internal/store"
)

// EmployeeDashboard is the worker's landing view: their subtasks, today's
// logs, the running timer and queries awaiting resolution.
type EmployeeDashboard struct {
	Subtasks       []models.Subtask `json:"subtasks"`
	TodayLogs      []models.TimeLog `json:"today_logs"`
	TodayHours     float64          `json:"today_hours"`
	ActiveTimer    *models.TimeLog  `json:"active_timer,omitempty"`
	ElapsedMinutes int64            `json:"elapsed_minutes,omitempty"`
	OpenQueries    []models.Query   `json:"open_queries"`
}

func (s *Service) EmployeeDashboard(employeeID int64) (*EmployeeDashboard, error) {
	subtasks, err := s.store.ListSubtasks(store.SubtaskFilter{AssignedTo: &employeeID})
	if err != nil {
		return nil, err
	}
	logs, err := s.TodayLogs(employeeID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.ActiveTimer(employeeID)
	if err != nil {
		return nil, err
	}
	queries, err := s.store.ListQueries(store.QueryFilter{RaisedBy: &employeeID, NotClosed: true})
	if err != nil {
		return nil, err
	}

	var todayMinutes int64
	for _, l := range logs {
		todayMinutes += l.Duration
	}
	var elapsed int64
	if active != nil {
		elapsed = roundedMinutes(active.StartTime, s.now())
	}

	return &EmployeeDashboard{
		Subtasks:       subtasks,
		TodayLogs:      logs,
		TodayHours:     round2(float64(todayMinutes) / 60),
		ActiveTimer:    active,
		ElapsedMinutes: elapsed,
		OpenQueries:    queries,
	}, nil
}

// HRDashboard summarizes the work pipeline: review backlog, open queries,
// invoicing volume and money outstanding across clients.
type HRDashboard struct {
	PendingApprovals int64   `json:"pending_approvals"`
	OpenQueries      int64   `json:"open_queries"`
	TotalInvoices    int64   `json:"total_invoices"`
	TodayLoggedHours float64 `json:"today_logged_hours"`
	TotalOutstanding float64 `json:"total_outstanding"`
	ActiveClients    int     `json:"active_clients"`
}

func (s *Service) HRDashboard() (*HRDashboard, error) {
	pending, err := s.store.CountPendingLogs()
	if err != nil {
		return nil, err
	}
	open, err := s.store.CountOpenQueries()
	if err != nil {
		return nil, err
	}
	invoices, err := s.store.CountBillings()
	if err != nil {
		return nil, err
	}
	clients, err := s.store.ListActiveClients()
	if err != nil {
		return nil, err
	}
	report, err := s.AllOutstanding()
	if err != nil {
		return nil, err
	}

	day := s.now()
	todayLogs, err := s.store.ListTimeLogs(store.TimeLogFilter{Day: &day, Stopped: true})
	if err != nil {
		return nil, err
	}
	var todayMinutes int64
	for _, l := range todayLogs {
		todayMinutes += l.Duration
	}

	return &HRDashboard{
		PendingApprovals: pending,
		OpenQueries:      open,
		TotalInvoices:    invoices,
		TodayLoggedHours: round2(float64(todayMinutes) / 60),
		TotalOutstanding: report.TotalOutstanding,
		ActiveClients:    len(clients),
	}, nil
}
