// workflow/ledger.go - Client ledger appends and statements
package workflow

import (
	"fmt"
	"time"

	"officeflow/internal/models"
)

// postDebit and postCredit are the only writers of the ledger. Appends for a
// client are serialized, and the new balance is derived from the most recent
// committed entry, so entries always chain:
// balance[i] = balance[i-1] + debit[i] - credit[i].

func (s *Service) postDebit(clientID int64, description string, amount float64, ref *models.LedgerRef) (*models.LedgerEntry, error) {
	return s.postLedger(clientID, description, models.LedgerDebit, amount, 0, ref)
}

func (s *Service) postCredit(clientID int64, description string, amount float64, ref *models.LedgerRef) (*models.LedgerEntry, error) {
	return s.postLedger(clientID, description, models.LedgerCredit, 0, amount, ref)
}

func (s *Service) postLedger(clientID int64, description string, typ models.LedgerType, debit, credit float64, ref *models.LedgerRef) (*models.LedgerEntry, error) {
	lock := s.ledgerLocks.forClient(clientID)
	lock.Lock()
	defer lock.Unlock()

	last, err := s.store.LatestLedgerEntry(clientID)
	if err != nil {
		return nil, fmt.Errorf("read latest ledger entry: %w", err)
	}
	previous := 0.0
	if last != nil {
		previous = last.Balance
	}

	entry := &models.LedgerEntry{
		ClientID:    clientID,
		Date:        s.now(),
		Description: description,
		Type:        typ,
		Debit:       debit,
		Credit:      credit,
		Balance:     round2(previous + debit - credit),
		Reference:   ref,
	}
	if err := s.store.AppendLedgerEntry(entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}
	return entry, nil
}

// ClientStatement is a client's ordered ledger plus totals.
type ClientStatement struct {
	Client  *models.Client       `json:"client"`
	Entries []models.LedgerEntry `json:"entries"`
	Summary models.LedgerSummary `json:"summary"`
}

func (s *Service) ClientLedger(clientID int64, from, to *time.Time) (*ClientStatement, error) {
	client, err := s.store.GetClient(clientID)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.ListLedgerEntries(clientID, from, to)
	if err != nil {
		return nil, err
	}

	var summary models.LedgerSummary
	for _, e := range entries {
		summary.TotalDebit += e.Debit
		summary.TotalCredit += e.Credit
	}
	summary.TotalDebit = round2(summary.TotalDebit)
	summary.TotalCredit = round2(summary.TotalCredit)
	if len(entries) > 0 {
		summary.CurrentBalance = entries[len(entries)-1].Balance
	}

	return &ClientStatement{Client: client, Entries: entries, Summary: summary}, nil
}

// ClientBalance is one row of the all-clients outstanding report.
type ClientBalance struct {
	Client  models.Client `json:"client"`
	Balance float64       `json:"balance"`
}

// OutstandingReport lists active clients whose latest ledger balance is
// positive.
type OutstandingReport struct {
	Clients          []ClientBalance `json:"clients"`
	TotalOutstanding float64         `json:"total_outstanding"`
}

func (s *Service) AllOutstanding() (*OutstandingReport, error) {
	clients, err := s.store.ListActiveClients()
	if err != nil {
		return nil, err
	}

	report := &OutstandingReport{Clients: []ClientBalance{}}
	for _, c := range clients {
		last, err := s.store.LatestLedgerEntry(c.ID)
		if err != nil {
			return nil, err
		}
		if last == nil || last.Balance <= 0 {
			continue
		}
		report.Clients = append(report.Clients, ClientBalance{Client: c, Balance: last.Balance})
		report.TotalOutstanding += last.Balance
	}
	report.TotalOutstanding = round2(report.TotalOutstanding)
	return report, nil
}
