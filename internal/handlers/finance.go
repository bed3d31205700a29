// handlers/finance.go - Billing, payment, ledger and dashboard endpoints
package handlers

import (
	"io"
	"net/http"
	"time"

	"officeflow/internal/store"
	"officeflow/internal/workflow"
)

func (h *Handler) createBilling(w http.ResponseWriter, r *http.Request) {
	var in workflow.BillingInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	b, err := h.Flow.CreateBilling(principal(r).ID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) getBilling(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid billing id")
		return
	}
	b, err := h.Flow.GetBilling(id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) listBillings(w http.ResponseWriter, r *http.Request) {
	var f store.BillingFilter
	if v, ok := queryInt64(r, "client_id"); ok {
		f.ClientID = &v
	}
	switch r.URL.Query().Get("paid") {
	case "true":
		t := true
		f.IsPaid = &t
	case "false":
		t := false
		f.IsPaid = &t
	}

	billings, err := h.Flow.ListBillings(f)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, billings)
}

func (h *Handler) outstandingBillings(w http.ResponseWriter, r *http.Request) {
	var clientID *int64
	if v, ok := queryInt64(r, "client_id"); ok {
		clientID = &v
	}
	report, err := h.Flow.OutstandingBillings(clientID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var in workflow.ManualPaymentInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	p, err := h.Flow.CreateManualPayment(principal(r).ID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Flow.ListPayments()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) clientLedger(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid client id")
		return
	}

	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "from must be YYYY-MM-DD")
			return
		}
		from = &parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "to must be YYYY-MM-DD")
			return
		}
		to = &parsed
	}

	statement, err := h.Flow.ClientLedger(id, from, to)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statement)
}

func (h *Handler) allOutstanding(w http.ResponseWriter, r *http.Request) {
	report, err := h.Flow.AllOutstanding()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) employeeDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Flow.EmployeeDashboard(principal(r).ID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) hrDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Flow.HRDashboard()
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Public endpoints: the payment page fetches invoice details and opens a
// checkout without authenticating, keyed only by billing id.

func (h *Handler) publicBillingInfo(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid billing id")
		return
	}
	info, err := h.Flow.PublicBillingInfo(id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) createCheckout(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid billing id")
		return
	}
	session, err := h.Flow.CreateCheckoutSession(id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) createIntent(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid billing id")
		return
	}
	intent, err := h.Flow.CreatePaymentIntent(id)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}

func (h *Handler) verifyCheckout(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_input", "session_id is required")
		return
	}
	result, err := h.Flow.VerifyCheckoutSession(sessionID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

const maxWebhookBody = 1 << 16

// stripeWebhook applies gateway event deliveries. The raw body is needed for
// signature verification, so it is read before any decoding.
func (h *Handler) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_body", "could not read request body")
		return
	}

	if err := h.Flow.HandleWebhook(payload, r.Header.Get("Stripe-Signature")); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
