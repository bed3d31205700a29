// handlers/handlers_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"officeflow/internal/gateway"
	"officeflow/internal/models"
	"officeflow/internal/store"
	"officeflow/internal/workflow"
)

// fakeGateway satisfies gateway.PaymentGateway for handler tests.
type fakeGateway struct {
	parseWebhookFn func(payload []byte, signature string) (*gateway.ConfirmedPayment, error)
}

func (f *fakeGateway) CreateCheckoutSession(in gateway.CheckoutInput) (*gateway.CheckoutSession, error) {
	return &gateway.CheckoutSession{SessionID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (f *fakeGateway) CreatePaymentIntent(amount float64, currency string, metadata map[string]string) (*gateway.Intent, error) {
	return &gateway.Intent{IntentID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

func (f *fakeGateway) VerifySession(sessionID string) (*gateway.SessionStatus, error) {
	return &gateway.SessionStatus{PaymentStatus: "unpaid"}, nil
}

func (f *fakeGateway) ParseWebhook(payload []byte, signature string) (*gateway.ConfirmedPayment, error) {
	if f.parseWebhookFn != nil {
		return f.parseWebhookFn(payload, signature)
	}
	return nil, nil
}

type testEnv struct {
	srv      *httptest.Server
	db       *store.DB
	hr       *models.User
	employee *models.User
	client   *models.Client
	task     *models.Task
	subtask  *models.Subtask
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithGateway(t, &fakeGateway{})
}

func newTestEnvWithGateway(t *testing.T, gw gateway.PaymentGateway) *testEnv {
	t.Helper()
	db, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	flow := workflow.New(db, gw, workflow.Options{ClientURL: "https://pay.example"})
	h := New(db, flow)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)

	env := &testEnv{srv: srv, db: db}

	env.hr = &models.User{Name: "Meera", Email: "meera@example.com", Role: models.RoleHR, IsActive: true}
	require.NoError(t, db.CreateUser(env.hr))
	env.employee = &models.User{Name: "Asha", Email: "asha@example.com", Role: models.RoleEmployee, IsActive: true}
	require.NoError(t, db.CreateUser(env.employee))

	env.client = &models.Client{Name: "Acme", HourlyRate: 1200, IsActive: true}
	require.NoError(t, db.CreateClient(env.client))
	env.task = &models.Task{Title: "Quarterly filing", ClientID: env.client.ID,
		Status: models.TaskPending, CreatedBy: env.hr.ID}
	require.NoError(t, db.CreateTask(env.task))
	env.subtask = &models.Subtask{Title: "Collect receipts", TaskID: env.task.ID,
		AssignedTo: env.employee.ID, EstimatedHours: 4, Status: models.SubtaskPending, CreatedBy: env.hr.ID}
	require.NoError(t, db.CreateSubtask(env.subtask))

	return env
}

// do issues a request as the given user; a nil user sends no identity.
func (e *testEnv) do(t *testing.T, user *models.User, method, path string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("X-User-ID", fmt.Sprintf("%d", user.ID))
		req.Header.Set("X-User-Role", string(user.Role))
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestAuthGuards(t *testing.T) {
	env := newTestEnv(t)

	t.Run("no identity", func(t *testing.T) {
		resp := env.do(t, nil, http.MethodGet, "/api/me/dashboard", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bad role header", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/api/me/dashboard", nil)
		require.NoError(t, err)
		req.Header.Set("X-User-ID", "1")
		req.Header.Set("X-User-Role", "ADMIN")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("employee cannot reach HR routes", func(t *testing.T) {
		resp := env.do(t, env.employee, http.MethodGet, "/api/timelogs/pending", nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("HR can", func(t *testing.T) {
		resp := env.do(t, env.hr, http.MethodGet, "/api/timelogs/pending", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("public endpoints need no identity", func(t *testing.T) {
		resp := env.do(t, nil, http.MethodGet, fmt.Sprintf("/api/public/billings/%d", 9999), nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestStartStopFlow(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, env.employee, http.MethodPost,
		fmt.Sprintf("/api/subtasks/%d/start", env.subtask.ID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var started models.TimeLog
	decodeBody(t, resp, &started)
	require.Equal(t, env.employee.ID, started.EmployeeID)

	// Second start reports the blocking timer.
	resp = env.do(t, env.employee, http.MethodPost,
		fmt.Sprintf("/api/subtasks/%d/start", env.subtask.ID), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict struct {
		Error       map[string]string `json:"error"`
		ActiveTimer *models.TimeLog   `json:"active_timer"`
	}
	decodeBody(t, resp, &conflict)
	require.Equal(t, "timer_running", conflict.Error["code"])
	require.NotNil(t, conflict.ActiveTimer)
	require.Equal(t, started.ID, conflict.ActiveTimer.ID)

	resp = env.do(t, env.employee, http.MethodPost,
		fmt.Sprintf("/api/timelogs/%d/stop", started.ID), map[string]string{"remark": "done"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stopped models.TimeLog
	decodeBody(t, resp, &stopped)
	require.NotNil(t, stopped.EndTime)
	require.Equal(t, "done", stopped.Remark)
}

func TestRaiseQueryConflictPayload(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]any{
		"subtask_id": env.subtask.ID,
		"message":    "Which year?",
		"type":       "CLARIFICATION",
		"priority":   "LOW",
	}
	resp := env.do(t, env.employee, http.MethodPost, "/api/queries", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Query
	decodeBody(t, resp, &created)

	resp = env.do(t, env.employee, http.MethodPost, "/api/queries", body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var conflict struct {
		Error         map[string]string `json:"error"`
		ExistingQuery *models.Query     `json:"existing_query"`
	}
	decodeBody(t, resp, &conflict)
	require.Equal(t, "open_query_exists", conflict.Error["code"])
	require.NotNil(t, conflict.ExistingQuery)
	require.Equal(t, created.ID, conflict.ExistingQuery.ID)
}

func TestApprovalEndpointValidation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, env.employee, http.MethodPost,
		fmt.Sprintf("/api/subtasks/%d/start", env.subtask.ID), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var log models.TimeLog
	decodeBody(t, resp, &log)

	// Reviewing a running log is a conflict.
	resp = env.do(t, env.hr, http.MethodPost, fmt.Sprintf("/api/timelogs/%d/approve", log.ID), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.do(t, env.employee, http.MethodPost, fmt.Sprintf("/api/timelogs/%d/stop", log.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Rejection without a reason fails.
	resp = env.do(t, env.hr, http.MethodPost,
		fmt.Sprintf("/api/timelogs/%d/reject", log.ID), map[string]string{"reason": ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, env.hr, http.MethodPost,
		fmt.Sprintf("/api/timelogs/%d/approve", log.ID), map[string]float64{"edited_hours": 1.5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var approved models.TimeLog
	decodeBody(t, resp, &approved)
	require.Equal(t, models.LogApproved, approved.Status)
	require.NotNil(t, approved.EditedHours)
	require.Equal(t, 1800.0, approved.BilledAmount)
}

func TestUnknownFieldRejected(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, env.hr, http.MethodPost, "/api/clients", map[string]any{
		"name": "Beta", "hourly_rate": 900, "surprise": true,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClientCRUD(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, env.hr, http.MethodPost, "/api/clients", map[string]any{
		"name": "Beta", "email": "ap@beta.example", "hourly_rate": 900,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Client
	decodeBody(t, resp, &created)
	require.True(t, created.IsActive)

	resp = env.do(t, env.hr, http.MethodPut, fmt.Sprintf("/api/clients/%d", created.ID), map[string]any{
		"name": "Beta Ltd", "email": "ap@beta.example", "hourly_rate": 950,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Client
	decodeBody(t, resp, &updated)
	require.Equal(t, "Beta Ltd", updated.Name)
	require.Equal(t, 950.0, updated.HourlyRate)

	resp = env.do(t, env.hr, http.MethodGet, "/api/clients", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var clients []models.Client
	decodeBody(t, resp, &clients)
	require.Len(t, clients, 2)

	resp = env.do(t, env.hr, http.MethodDelete, fmt.Sprintf("/api/clients/%d", created.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestWebhookDelivery(t *testing.T) {
	gw := &fakeGateway{}
	env := newTestEnvWithGateway(t, gw)

	t.Run("bad signature", func(t *testing.T) {
		gw.parseWebhookFn = func(payload []byte, signature string) (*gateway.ConfirmedPayment, error) {
			return nil, gateway.ErrInvalidSignature
		}
		resp := env.do(t, nil, http.MethodPost, "/api/webhooks/stripe", map[string]string{"type": "x"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ignorable event", func(t *testing.T) {
		gw.parseWebhookFn = func(payload []byte, signature string) (*gateway.ConfirmedPayment, error) {
			return nil, nil
		}
		resp := env.do(t, nil, http.MethodPost, "/api/webhooks/stripe", map[string]string{"type": "x"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRequestIDEchoed(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, nil, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestListSubtasksScoping(t *testing.T) {
	env := newTestEnv(t)

	other := &models.User{Name: "Ravi", Email: "ravi@example.com", Role: models.RoleEmployee, IsActive: true}
	require.NoError(t, env.db.CreateUser(other))
	theirs := &models.Subtask{Title: "Their work", TaskID: env.task.ID,
		AssignedTo: other.ID, Status: models.SubtaskPending, CreatedBy: env.hr.ID}
	require.NoError(t, env.db.CreateSubtask(theirs))

	resp := env.do(t, env.employee, http.MethodGet, "/api/subtasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []models.Subtask
	decodeBody(t, resp, &mine)
	require.Len(t, mine, 1)
	require.Equal(t, env.subtask.ID, mine[0].ID)

	resp = env.do(t, env.hr, http.MethodGet, "/api/subtasks", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.Subtask
	decodeBody(t, resp, &all)
	require.Len(t, all, 2)
}
