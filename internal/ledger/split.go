// Package ledger implements the group ledger engine: expense split
// allocation, balance computation and debt simplification. All
// functions are pure; persistence and orchestration live elsewhere.
package ledger

import "github.com/splitledger/splitledger/internal/money"

// SplitMode selects how an expense total is divided among members.
type SplitMode string

const (
	// SplitEqual divides the total evenly among non-excluded members.
	SplitEqual SplitMode = "equal"
	// SplitUnequal uses caller-supplied per-member amounts.
	SplitUnequal SplitMode = "unequal"
)

// Participant is one member's entry in a split request.
// Amount is only consulted in unequal mode.
type Participant struct {
	Member   string
	Excluded bool
	Amount   money.Amount
}

// Share is one member's allocated portion of an expense.
// Excluded members always carry a zero amount.
type Share struct {
	Member   string
	Amount   money.Amount
	Excluded bool
}

// Allocate divides total among the participants according to mode.
// The returned shares preserve input order and always sum to total
// exactly, to the cent.
//
// Equal mode assigns floor(total/n) to every non-excluded participant
// and the entire remainder to the first non-excluded participant, so a
// 10.00 split three ways yields 3.34, 3.33, 3.33.
//
// Unequal mode validates the supplied amounts instead of computing
// them: negative amounts and sums that do not match the total are
// rejected, never rescaled.
func Allocate(total money.Amount, mode SplitMode, participants []Participant) ([]Share, error) {
	if total <= 0 {
		return nil, Validationf("expense total must be positive, got %s", total)
	}

	eligible := 0
	for _, p := range participants {
		if !p.Excluded {
			eligible++
		}
	}
	if eligible == 0 {
		return nil, Validationf("no participants left to split among")
	}

	shares := make([]Share, 0, len(participants))

	switch mode {
	case SplitEqual:
		base := total / money.Amount(eligible)
		remainder := total - base*money.Amount(eligible)
		first := true
		for _, p := range participants {
			if p.Excluded {
				shares = append(shares, Share{Member: p.Member, Excluded: true})
				continue
			}
			amount := base
			if first {
				amount += remainder
				first = false
			}
			shares = append(shares, Share{Member: p.Member, Amount: amount})
		}

	case SplitUnequal:
		var sum money.Amount
		for _, p := range participants {
			if p.Excluded {
				shares = append(shares, Share{Member: p.Member, Excluded: true})
				continue
			}
			if p.Amount < 0 {
				return nil, Validationf("share for %s must not be negative, got %s", p.Member, p.Amount)
			}
			sum += p.Amount
			shares = append(shares, Share{Member: p.Member, Amount: p.Amount})
		}
		if sum != total {
			return nil, Validationf("shares sum to %s but expense total is %s", sum, total)
		}

	default:
		return nil, Validationf("unknown split mode %q", mode)
	}

	return shares, nil
}
