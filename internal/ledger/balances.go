package ledger

import "github.com/splitledger/splitledger/internal/money"

// Expense carries the minimal expense information the balance fold
// needs: who paid, how much, and how it was shared.
type Expense struct {
	Payer  string
	Amount money.Amount
	Shares []Share
}

// Payment is a settlement transfer between two members. From is the
// member discharging debt, To the member whose claim is reduced.
type Payment struct {
	From   string
	To     string
	Amount money.Amount
}

// ComputeBalances folds the ledger into one net balance per member.
// Positive means the member is owed money, negative means they owe.
//
// Every member in members starts at zero, so members without ledger
// activity still appear in the result. Any ledger record referencing an
// identifier outside members is a DataIntegrityError: membership is
// validated upstream and a stray reference means the ledger and the
// member set have diverged.
//
// The returned balances always sum to zero; a ledger for which they do
// not (shares that don't cover their expense) is rejected rather than
// repaired.
func ComputeBalances(members []string, expenses []Expense, payments []Payment) (map[string]money.Amount, error) {
	balances := make(map[string]money.Amount, len(members))
	for _, m := range members {
		balances[m] = 0
	}

	for _, exp := range expenses {
		if _, ok := balances[exp.Payer]; !ok {
			return nil, Integrityf("expense payer %q is not in the member set", exp.Payer)
		}
		balances[exp.Payer] += exp.Amount

		for _, share := range exp.Shares {
			if _, ok := balances[share.Member]; !ok {
				return nil, Integrityf("expense share references %q, not in the member set", share.Member)
			}
			if share.Excluded && share.Amount != 0 {
				return nil, Integrityf("excluded member %q carries a non-zero share %s", share.Member, share.Amount)
			}
			balances[share.Member] -= share.Amount
		}
	}

	for _, p := range payments {
		if _, ok := balances[p.From]; !ok {
			return nil, Integrityf("payment from %q, not in the member set", p.From)
		}
		if _, ok := balances[p.To]; !ok {
			return nil, Integrityf("payment to %q, not in the member set", p.To)
		}
		balances[p.From] += p.Amount
		balances[p.To] -= p.Amount
	}

	var sum money.Amount
	for _, b := range balances {
		sum += b
	}
	if sum != 0 {
		return nil, Integrityf("balances sum to %s, conservation violated", sum)
	}

	return balances, nil
}
