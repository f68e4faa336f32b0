// Package match classifies raw bank transactions against tenants and
// landlords: exact reference-code matching first, then partial-ratio fuzzy
// matching over the combined description and reference text.
package match

import (
	"github.com/lettbooks-dev/lettbooks/internal/model"
)

// PartyType identifies which kind of counterparty matched.
type PartyType string

const (
	PartyTenant   PartyType = "tenant"
	PartyLandlord PartyType = "landlord"
)

// Result is the outcome of classifying one transaction.
type Result struct {
	Matched  bool
	Party    PartyType
	PartyID  int64
	Category model.TxCategory
}

// DefaultThreshold is the fuzzy score a candidate must reach to match.
const DefaultThreshold = 85

// Matcher classifies transactions. Candidates are tried in slice order, so
// callers pass tenants and landlords ordered by ID ascending to keep
// first-hit-wins matching reproducible.
type Matcher struct {
	threshold float64
}

// New creates a Matcher with the given fuzzy threshold (0 uses the default).
func New(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Match classifies a transaction. Priority order: exact reference match,
// tenant-name fuzzy match for inflows, then general fuzzy matching over
// tenants and landlords.
func (m *Matcher) Match(tr model.Transaction, tenants []model.Tenant, landlords []model.Landlord) Result {
	text := Normalize(tr.Description + " " + tr.Reference)
	positive := tr.Amount.IsPositive()

	// Exact reference codes beat any fuzzy score.
	if ref := Normalize(tr.Reference); ref != "" {
		for _, tn := range tenants {
			if tn.Reference != "" && ref == Normalize(tn.Reference) {
				return Result{Matched: true, Party: PartyTenant, PartyID: tn.ID, Category: model.CategoryRent}
			}
		}
		for _, ll := range landlords {
			if ll.Reference != "" && ref == Normalize(ll.Reference) {
				return Result{Matched: true, Party: PartyLandlord, PartyID: ll.ID, Category: landlordCategory(positive)}
			}
		}
	}

	// Inflows are most likely rent: try tenant names first.
	if positive {
		for _, tn := range tenants {
			if tn.Name == "" {
				continue
			}
			if PartialRatio(text, Normalize(tn.Name)) >= m.threshold {
				return Result{Matched: true, Party: PartyTenant, PartyID: tn.ID, Category: model.CategoryRent}
			}
		}
	}

	for _, tn := range tenants {
		if m.scores(text, tn.Reference, tn.Name) {
			return Result{Matched: true, Party: PartyTenant, PartyID: tn.ID, Category: tenantCategory(positive)}
		}
	}
	for _, ll := range landlords {
		if m.scores(text, ll.Reference, ll.Name) {
			return Result{Matched: true, Party: PartyLandlord, PartyID: ll.ID, Category: landlordCategory(positive)}
		}
	}

	return Result{}
}

func (m *Matcher) scores(text string, candidates ...string) bool {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if PartialRatio(text, Normalize(c)) >= m.threshold {
			return true
		}
	}
	return false
}

func tenantCategory(positive bool) model.TxCategory {
	if positive {
		return model.CategoryRent
	}
	return model.CategoryFee
}

func landlordCategory(positive bool) model.TxCategory {
	if positive {
		return model.CategoryPayment
	}
	return model.CategoryExpense
}
