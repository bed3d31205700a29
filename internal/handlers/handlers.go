// handlers/handlers.go - HTTP API surface
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"officeflow/internal/store"
	"officeflow/internal/workflow"
)

// Handler holds dependencies
type Handler struct {
	DB   store.Store
	Flow *workflow.Service
}

// New creates a new Handler
func New(db store.Store, flow *workflow.Service) *Handler {
	return &Handler{DB: db, Flow: flow}
}

// Routes builds the full router: public payment endpoints, the gateway
// webhook, and the authenticated API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/public", func(r chi.Router) {
			r.Get("/billings/{id}", h.publicBillingInfo)
			r.Post("/billings/{id}/checkout", h.createCheckout)
			r.Post("/billings/{id}/intent", h.createIntent)
			r.Get("/checkout/verify", h.verifyCheckout)
		})
		r.Post("/webhooks/stripe", h.stripeWebhook)

		r.Group(func(r chi.Router) {
			r.Use(withPrincipal)

			r.Get("/me/dashboard", h.employeeDashboard)
			r.Get("/subtasks", h.listSubtasks)
			r.Get("/subtasks/{id}", h.getSubtask)
			r.Get("/timelogs", h.listTimeLogs)
			r.Get("/timelogs/active", h.activeTimer)
			r.Post("/subtasks/{id}/start", h.startWork)
			r.Post("/timelogs/{id}/stop", h.stopWork)
			r.Post("/timelogs/{id}/dismiss", h.dismissLog)
			r.Get("/queries", h.listQueries)
			r.Post("/queries", h.raiseQuery)

			r.Group(func(r chi.Router) {
				r.Use(requireHR)

				r.Get("/dashboard", h.hrDashboard)
				r.Post("/users", h.createUser)
				r.Get("/users/employees", h.listEmployees)

				r.Post("/clients", h.createClient)
				r.Get("/clients", h.listClients)
				r.Get("/clients/{id}", h.getClient)
				r.Put("/clients/{id}", h.updateClient)
				r.Delete("/clients/{id}", h.deleteClient)
				r.Get("/clients/{id}/ledger", h.clientLedger)

				r.Post("/tasks", h.createTask)
				r.Get("/tasks", h.listTasks)
				r.Get("/tasks/{id}", h.getTask)
				r.Put("/tasks/{id}", h.updateTask)
				r.Delete("/tasks/{id}", h.deleteTask)

				r.Post("/subtasks", h.createSubtask)
				r.Put("/subtasks/{id}", h.updateSubtask)
				r.Delete("/subtasks/{id}", h.deleteSubtask)

				r.Get("/timelogs/pending", h.pendingLogs)
				r.Post("/timelogs/{id}/approve", h.approveLog)
				r.Post("/timelogs/{id}/reject", h.rejectLog)

				r.Post("/queries/{id}/reply", h.replyQuery)
				r.Post("/queries/{id}/close", h.closeQuery)
				r.Post("/queries/{id}/reassign", h.reassignQuery)

				r.Post("/billings", h.createBilling)
				r.Get("/billings", h.listBillings)
				r.Get("/billings/outstanding", h.outstandingBillings)
				r.Get("/billings/{id}", h.getBilling)

				r.Post("/payments", h.createPayment)
				r.Get("/payments", h.listPayments)

				r.Get("/outstanding", h.allOutstanding)
			})
		})
	})

	return r
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func queryInt64(r *http.Request, key string) (int64, bool) {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return v, err == nil
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": msg},
	})
}
