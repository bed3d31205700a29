// workflow/helpers_test.go
package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"officeflow/internal/gateway"
	"officeflow/internal/models"
	"officeflow/internal/store"
)

// fakeGateway implements gateway.PaymentGateway with overridable behavior.
type fakeGateway struct {
	CreateCheckoutSessionFn func(in gateway.CheckoutInput) (*gateway.CheckoutSession, error)
	CreatePaymentIntentFn   func(amount float64, currency string, metadata map[string]string) (*gateway.Intent, error)
	VerifySessionFn         func(sessionID string) (*gateway.SessionStatus, error)
	ParseWebhookFn          func(payload []byte, signature string) (*gateway.ConfirmedPayment, error)

	lastCheckout *gateway.CheckoutInput
}

func (f *fakeGateway) CreateCheckoutSession(in gateway.CheckoutInput) (*gateway.CheckoutSession, error) {
	f.lastCheckout = &in
	if f.CreateCheckoutSessionFn != nil {
		return f.CreateCheckoutSessionFn(in)
	}
	return &gateway.CheckoutSession{SessionID: "cs_test", URL: "https://checkout.example/cs_test"}, nil
}

func (f *fakeGateway) CreatePaymentIntent(amount float64, currency string, metadata map[string]string) (*gateway.Intent, error) {
	if f.CreatePaymentIntentFn != nil {
		return f.CreatePaymentIntentFn(amount, currency, metadata)
	}
	return &gateway.Intent{IntentID: "pi_test", ClientSecret: "pi_test_secret"}, nil
}

func (f *fakeGateway) VerifySession(sessionID string) (*gateway.SessionStatus, error) {
	if f.VerifySessionFn != nil {
		return f.VerifySessionFn(sessionID)
	}
	return &gateway.SessionStatus{PaymentStatus: "paid"}, nil
}

func (f *fakeGateway) ParseWebhook(payload []byte, signature string) (*gateway.ConfirmedPayment, error) {
	if f.ParseWebhookFn != nil {
		return f.ParseWebhookFn(payload, signature)
	}
	return nil, nil
}

// fixture wires a service against an in-memory store with a controllable
// clock and seeded people/work records.
type fixture struct {
	svc   *Service
	db    *store.DB
	gw    *fakeGateway
	clock time.Time

	hr       *models.User
	employee *models.User
	client   *models.Client
	task     *models.Task
	subtask  *models.Subtask
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gw := &fakeGateway{}
	// The clock starts at midday today so rows stamped by the database's
	// CURRENT_TIMESTAMP default stay within a day of service-stamped ones,
	// and short advances never cross a date boundary.
	f := &fixture{
		db:    db,
		gw:    gw,
		clock: time.Now().UTC().Truncate(24 * time.Hour).Add(12 * time.Hour),
	}
	f.svc = New(db, gw, Options{ClientURL: "https://pay.example", Currency: "inr"})
	f.svc.now = func() time.Time { return f.clock }

	f.hr = &models.User{Name: "Meera", Email: "meera@example.com", Role: models.RoleHR, IsActive: true}
	require.NoError(t, db.CreateUser(f.hr))
	f.employee = &models.User{Name: "Asha", Email: "asha@example.com", Role: models.RoleEmployee, IsActive: true}
	require.NoError(t, db.CreateUser(f.employee))

	f.client = &models.Client{Name: "Acme", Email: "billing@acme.example", HourlyRate: 1200, IsActive: true}
	require.NoError(t, db.CreateClient(f.client))

	f.task = &models.Task{Title: "Quarterly filing", ClientID: f.client.ID,
		Status: models.TaskPending, CreatedBy: f.hr.ID}
	require.NoError(t, db.CreateTask(f.task))

	f.subtask = &models.Subtask{Title: "Collect receipts", TaskID: f.task.ID,
		AssignedTo: f.employee.ID, EstimatedHours: 4, CreatedBy: f.hr.ID}
	require.NoError(t, f.svc.CreateSubtask(f.subtask))

	return f
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

// approvedLog runs a full start/stop/approve cycle and returns the log.
func (f *fixture) approvedLog(t *testing.T, hours float64) *models.TimeLog {
	t.Helper()
	log, err := f.svc.StartWork(f.employee.ID, f.subtask.ID)
	require.NoError(t, err)
	f.advance(time.Duration(hours * float64(time.Hour)))
	_, err = f.svc.StopWork(f.employee.ID, log.ID, "done")
	require.NoError(t, err)
	approved, err := f.svc.ApproveTimeLog(f.hr.ID, log.ID, nil)
	require.NoError(t, err)
	return approved
}
