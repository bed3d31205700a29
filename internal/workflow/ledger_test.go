// workflow/ledger_test.go
package workflow

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"officeflow/internal/models"
)

func TestLedgerBalanceChains(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.postDebit(f.client.ID, "Invoice INV-1", 1000, nil)
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.svc.postCredit(f.client.ID, "Payment received", 400, nil)
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.svc.postDebit(f.client.ID, "Invoice INV-2", 250.50, nil)
	require.NoError(t, err)

	statement, err := f.svc.ClientLedger(f.client.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, statement.Entries, 3)

	require.Equal(t, 1000.0, statement.Entries[0].Balance)
	require.Equal(t, 600.0, statement.Entries[1].Balance)
	require.Equal(t, 850.5, statement.Entries[2].Balance)

	require.Equal(t, 1250.5, statement.Summary.TotalDebit)
	require.Equal(t, 400.0, statement.Summary.TotalCredit)
	require.Equal(t, 850.5, statement.Summary.CurrentBalance)
}

func TestLedgerConcurrentAppends(t *testing.T) {
	f := newFixture(t)

	const n = 20
	errs := make(chan error, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := f.svc.postDebit(f.client.ID, "Invoice", 10, nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	statement, err := f.svc.ClientLedger(f.client.ID, nil, nil)
	require.NoError(t, err)
	require.Len(t, statement.Entries, n)
	require.Equal(t, float64(n*10), statement.Summary.CurrentBalance)

	// Every entry chains off its predecessor.
	prev := 0.0
	for _, e := range statement.Entries {
		require.Equal(t, prev+e.Debit-e.Credit, e.Balance)
		prev = e.Balance
	}
}

func TestAllOutstandingSkipsSettledAndInactive(t *testing.T) {
	f := newFixture(t)

	owing := f.client
	_, err := f.svc.postDebit(owing.ID, "Invoice", 900, nil)
	require.NoError(t, err)

	settled := &models.Client{Name: "Settled Co", HourlyRate: 800, IsActive: true}
	require.NoError(t, f.db.CreateClient(settled))
	_, err = f.svc.postDebit(settled.ID, "Invoice", 300, nil)
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.svc.postCredit(settled.ID, "Payment received", 300, nil)
	require.NoError(t, err)

	inactive := &models.Client{Name: "Gone Ltd", HourlyRate: 500, IsActive: false}
	require.NoError(t, f.db.CreateClient(inactive))
	_, err = f.svc.postDebit(inactive.ID, "Invoice", 700, nil)
	require.NoError(t, err)

	report, err := f.svc.AllOutstanding()
	require.NoError(t, err)
	require.Len(t, report.Clients, 1)
	require.Equal(t, owing.ID, report.Clients[0].Client.ID)
	require.Equal(t, 900.0, report.Clients[0].Balance)
	require.Equal(t, 900.0, report.TotalOutstanding)
}
