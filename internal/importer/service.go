package importer

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/lettbooks-dev/lettbooks/internal/ledger"
	"github.com/lettbooks-dev/lettbooks/internal/match"
	"github.com/lettbooks-dev/lettbooks/internal/model"
	"github.com/lettbooks-dev/lettbooks/internal/store"
)

// Service turns parsed bank rows into ledger transactions: each row is
// classified, coded when a counterparty matches, and allocated.
type Service struct {
	store   *store.Store
	matcher *match.Matcher
	alloc   *ledger.Allocator
	log     zerolog.Logger
}

// NewService creates an import Service.
func NewService(st *store.Store, m *match.Matcher, alloc *ledger.Allocator, log zerolog.Logger) *Service {
	return &Service{store: st, matcher: m, alloc: alloc, log: log}
}

// Stats summarizes one import run.
type Stats struct {
	Imported int
	Matched  int
	Uncoded  int
}

// Import parses r with p and posts every row in one unit of work. Rows
// whose counterparty matches are coded and fully allocated; the rest stay
// uncoded on the bank account for manual coding.
func (s *Service) Import(p Parser, r io.Reader) (Stats, error) {
	rows, err := p.Parse(r)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	err = s.store.Update(func(tx *store.Tx) error {
		tenants, err := tx.AllTenants()
		if err != nil {
			return err
		}
		landlords, err := tx.AllLandlords()
		if err != nil {
			return err
		}

		for _, row := range rows {
			tr, err := rowToTransaction(row)
			if err != nil {
				return err
			}

			res := s.matcher.Match(tr, tenants, landlords)
			if res.Matched {
				tr.Status = model.StatusCoded
				tr.Category = res.Category
				switch res.Party {
				case match.PartyTenant:
					tr.TenantID = res.PartyID
				case match.PartyLandlord:
					tr.LandlordID = res.PartyID
				}
				stats.Matched++
			} else {
				stats.Uncoded++
			}

			if err := tx.CreateTransaction(&tr); err != nil {
				return err
			}
			if err := s.alloc.Apply(tx, &tr); err != nil {
				return err
			}
			stats.Imported++
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	s.log.Info().
		Int("imported", stats.Imported).
		Int("matched", stats.Matched).
		Int("uncoded", stats.Uncoded).
		Msg("imported bank statement")
	return stats, nil
}

func rowToTransaction(row BankRow) (model.Transaction, error) {
	date, err := time.Parse("2006-01-02", row.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing row date %q: %w", row.Date, err)
	}
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing row amount %q: %w", row.Amount, err)
	}
	return model.Transaction{
		Date:        date,
		Amount:      amount,
		Description: row.Description,
		Reference:   row.Reference,
		Status:      model.StatusUncoded,
	}, nil
}
