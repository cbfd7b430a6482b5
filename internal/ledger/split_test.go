package ledger

import (
	"errors"
	"testing"

	"github.com/splitledger/splitledger/internal/money"
)

func participants(members ...string) []Participant {
	out := make([]Participant, len(members))
	for i, m := range members {
		out[i] = Participant{Member: m}
	}
	return out
}

func TestAllocateEqual(t *testing.T) {
	tests := []struct {
		name         string
		total        money.Amount
		participants []Participant
		want         []money.Amount // by participant order
		wantErr      bool
	}{
		{
			name:         "even split, no remainder",
			total:        3000,
			participants: participants("alice", "bob", "carol"),
			want:         []money.Amount{1000, 1000, 1000},
		},
		{
			name:         "remainder goes to first member",
			total:        1000,
			participants: participants("alice", "bob", "carol"),
			want:         []money.Amount{334, 333, 333},
		},
		{
			name:  "excluded member gets zero, remainder to first eligible",
			total: 1000,
			participants: []Participant{
				{Member: "alice", Excluded: true},
				{Member: "bob"},
				{Member: "carol"},
				{Member: "dave"},
			},
			want: []money.Amount{0, 334, 333, 333},
		},
		{
			name:         "single member takes it all",
			total:        999,
			participants: participants("alice"),
			want:         []money.Amount{999},
		},
		{
			name:  "all excluded",
			total: 1000,
			participants: []Participant{
				{Member: "alice", Excluded: true},
				{Member: "bob", Excluded: true},
			},
			wantErr: true,
		},
		{
			name:         "no participants",
			total:        1000,
			participants: nil,
			wantErr:      true,
		},
		{
			name:         "non-positive total",
			total:        0,
			participants: participants("alice"),
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Allocate(tt.total, SplitEqual, tt.participants)
			if tt.wantErr {
				var validation *ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Allocate failed: %v", err)
			}

			if len(shares) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.want))
			}
			var sum money.Amount
			for i, share := range shares {
				if share.Amount != tt.want[i] {
					t.Errorf("share[%d] (%s) = %s, want %s", i, share.Member, share.Amount, tt.want[i])
				}
				if share.Excluded && share.Amount != 0 {
					t.Errorf("excluded share %s has non-zero amount %s", share.Member, share.Amount)
				}
				sum += share.Amount
			}
			if sum != tt.total {
				t.Errorf("shares sum to %s, want exactly %s", sum, tt.total)
			}
		})
	}
}

func TestAllocateUnequal(t *testing.T) {
	tests := []struct {
		name         string
		total        money.Amount
		participants []Participant
		wantErr      bool
	}{
		{
			name:  "amounts match total",
			total: 10000,
			participants: []Participant{
				{Member: "alice", Amount: 4000},
				{Member: "bob", Amount: 6000},
			},
		},
		{
			name:  "mismatched sum rejected",
			total: 10000,
			participants: []Participant{
				{Member: "alice", Amount: 4000},
				{Member: "bob", Amount: 5000},
			},
			wantErr: true,
		},
		{
			name:  "negative amount rejected",
			total: 1000,
			participants: []Participant{
				{Member: "alice", Amount: 2000},
				{Member: "bob", Amount: -1000},
			},
			wantErr: true,
		},
		{
			name:  "excluded members don't count toward the sum",
			total: 5000,
			participants: []Participant{
				{Member: "alice", Amount: 5000},
				{Member: "bob", Excluded: true, Amount: 9999},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Allocate(tt.total, SplitUnequal, tt.participants)
			if tt.wantErr {
				var validation *ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Allocate failed: %v", err)
			}

			var sum money.Amount
			for _, share := range shares {
				sum += share.Amount
			}
			if sum != tt.total {
				t.Errorf("shares sum to %s, want exactly %s", sum, tt.total)
			}
		})
	}
}

func TestAllocateUnknownMode(t *testing.T) {
	_, err := Allocate(1000, SplitMode("percentage"), participants("alice"))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// Exactness property: whatever the total and group size, the shares
// sum to the total with no cent lost or invented.
func TestAllocateEqualExactness(t *testing.T) {
	for n := 1; n <= 9; n++ {
		members := make([]Participant, n)
		for i := range members {
			members[i] = Participant{Member: string(rune('a' + i))}
		}
		for total := money.Amount(1); total <= 500; total++ {
			shares, err := Allocate(total, SplitEqual, members)
			if err != nil {
				t.Fatalf("Allocate(%d, equal, %d members) failed: %v", total, n, err)
			}
			var sum money.Amount
			for _, s := range shares {
				sum += s.Amount
			}
			if sum != total {
				t.Fatalf("total %d over %d members: shares sum to %d", total, n, sum)
			}
		}
	}
}
