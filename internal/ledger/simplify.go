package ledger

import (
	"container/heap"

	"github.com/splitledger/splitledger/internal/money"
)

// DebtEdge states that From owes To the given positive amount.
type DebtEdge struct {
	From   string
	To     string
	Amount money.Amount
}

// party is one side of the netting with its outstanding magnitude.
type party struct {
	member    string
	remaining money.Amount
}

// partyHeap orders parties largest-remaining first; ties break on the
// lexically smaller member identifier so the output is reproducible
// regardless of map iteration order.
type partyHeap []party

func (h partyHeap) Len() int { return len(h) }

func (h partyHeap) Less(i, j int) bool {
	if h[i].remaining != h[j].remaining {
		return h[i].remaining > h[j].remaining
	}
	return h[i].member < h[j].member
}

func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *partyHeap) Push(x any) { *h = append(*h, x.(party)) }

func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

// Simplify nets a balance vector down to a minimal list of transfers.
// Members with positive balances are creditors, negative are debtors;
// each step matches the largest outstanding debtor against the largest
// outstanding creditor and emits one edge for the smaller of the two
// magnitudes, which zeroes at least one side. The result is therefore
// bounded by members−1 edges and, given identical input, identical on
// every call.
//
// An input whose creditor and debtor sums differ cannot have come from
// ComputeBalances and is rejected as a DataIntegrityError.
func Simplify(balances map[string]money.Amount) ([]DebtEdge, error) {
	var creditors, debtors partyHeap
	var creditSum, debtSum money.Amount

	for member, balance := range balances {
		switch {
		case balance > 0:
			creditors = append(creditors, party{member, balance})
			creditSum += balance
		case balance < 0:
			debtors = append(debtors, party{member, -balance})
			debtSum += -balance
		}
	}

	if creditSum != debtSum {
		return nil, Integrityf("credits %s and debts %s do not match", creditSum, debtSum)
	}
	if len(creditors) == 0 {
		return nil, nil
	}

	heap.Init(&creditors)
	heap.Init(&debtors)

	edges := make([]DebtEdge, 0, len(balances)-1)
	for len(debtors) > 0 && len(creditors) > 0 {
		debtor := heap.Pop(&debtors).(party)
		creditor := heap.Pop(&creditors).(party)

		amount := debtor.remaining
		if creditor.remaining < amount {
			amount = creditor.remaining
		}

		edges = append(edges, DebtEdge{From: debtor.member, To: creditor.member, Amount: amount})

		if debtor.remaining -= amount; debtor.remaining > 0 {
			heap.Push(&debtors, debtor)
		}
		if creditor.remaining -= amount; creditor.remaining > 0 {
			heap.Push(&creditors, creditor)
		}
	}

	return edges, nil
}
