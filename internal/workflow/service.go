// workflow/service.go - Workflow service wiring
package workflow

import (
	"math"
	"sync"
	"time"

	"officeflow/internal/gateway"
	"officeflow/internal/store"
)

// Options configures a Service. Zero values fall back to sensible defaults.
type Options struct {
	// ClientURL is the public base URL of the payment front-end, used to
	// build checkout redirect URLs.
	ClientURL string
	// Currency for online payments, lower-case ISO code.
	Currency string
	// OutstandingThreshold is how long a subtask may sit without activity
	// before the sweep escalates it.
	OutstandingThreshold time.Duration
}

// Service implements the workflow engine: time tracking, queries, approval,
// billing, payments and the client ledger.
type Service struct {
	store     store.Store
	gateway   gateway.PaymentGateway
	clientURL string
	currency  string
	threshold time.Duration

	now func() time.Time

	ledgerLocks *clientLocks
}

func New(st store.Store, gw gateway.PaymentGateway, opts Options) *Service {
	if opts.Currency == "" {
		opts.Currency = "inr"
	}
	if opts.OutstandingThreshold <= 0 {
		opts.OutstandingThreshold = 24 * time.Hour
	}
	return &Service{
		store:       st,
		gateway:     gw,
		clientURL:   opts.ClientURL,
		currency:    opts.Currency,
		threshold:   opts.OutstandingThreshold,
		now:         time.Now,
		ledgerLocks: newClientLocks(),
	}
}

// clientLocks serializes ledger appends per client so the read-modify-write
// of the running balance cannot lose updates.
type clientLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newClientLocks() *clientLocks {
	return &clientLocks{locks: make(map[int64]*sync.Mutex)}
}

func (c *clientLocks) forClient(clientID int64) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[clientID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[clientID] = l
	}
	return l
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
