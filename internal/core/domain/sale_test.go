package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
)

func saleEntry(name, phone, memo string, at time.Time, qty int, photo string) domain.LedgerEntry {
	return domain.LedgerEntry{
		Barcode:        "8901234567890",
		Direction:      domain.DirectionOut,
		Quantity:       qty,
		RecipientName:  name,
		RecipientPhone: phone,
		RecipientPhoto: photo,
		Memo:           memo,
		CreatedAt:      at,
	}
}

func TestGroupSales_Consolidation(t *testing.T) {
	base := time.Date(2024, 3, 15, 14, 30, 10, 0, time.UTC)

	t.Run("same_minute_same_recipient_one_group", func(t *testing.T) {
		entries := []domain.LedgerEntry{
			saleEntry("Alice", "555-0100", "Total: Rs.250", base, 2, ""),
			saleEntry("Alice", "555-0100", "Total: Rs.250", base.Add(40*time.Second), 1, ""),
		}
		groups := domain.GroupSales(entries)
		require.Len(t, groups, 1)
		assert.Len(t, groups[0].Items, 2)
		assert.Equal(t, 3, groups[0].TotalQuantity)
		assert.True(t, groups[0].MultiItem)
		assert.Equal(t, base, groups[0].SaleDate)
	})

	t.Run("differing_phone_starts_new_group", func(t *testing.T) {
		entries := []domain.LedgerEntry{
			saleEntry("Alice", "555-0100", "Total: Rs.250", base, 2, ""),
			saleEntry("Alice", "555-0100", "Total: Rs.250", base.Add(40*time.Second), 1, ""),
			saleEntry("Alice", "555-0199", "Total: Rs.250", base, 1, ""),
		}
		groups := domain.GroupSales(entries)
		require.Len(t, groups, 2)
		assert.Equal(t, "555-0100", groups[0].RecipientPhone)
		assert.Equal(t, "555-0199", groups[1].RecipientPhone)
		assert.False(t, groups[1].MultiItem)
	})

	t.Run("minute_boundary_splits_groups", func(t *testing.T) {
		entries := []domain.LedgerEntry{
			saleEntry("Bob", "555-0200", "", base, 1, ""),
			saleEntry("Bob", "555-0200", "", base.Add(time.Minute), 1, ""),
		}
		groups := domain.GroupSales(entries)
		assert.Len(t, groups, 2)
	})

	t.Run("in_entries_are_ignored", func(t *testing.T) {
		in := saleEntry("Alice", "555-0100", "", base, 5, "")
		in.Direction = domain.DirectionIn
		groups := domain.GroupSales([]domain.LedgerEntry{in})
		assert.Empty(t, groups)
	})

	t.Run("group_order_is_encounter_order", func(t *testing.T) {
		entries := []domain.LedgerEntry{
			saleEntry("Carol", "555-0300", "", base, 1, ""),
			saleEntry("Alice", "555-0100", "", base, 1, ""),
			saleEntry("Carol", "555-0300", "", base, 1, ""),
		}
		groups := domain.GroupSales(entries)
		require.Len(t, groups, 2)
		assert.Equal(t, "Carol", groups[0].RecipientName)
		assert.Equal(t, "Alice", groups[1].RecipientName)
	})
}

func TestGroupSales_PhotoPrecedence(t *testing.T) {
	base := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

	t.Run("later_persisted_path_wins_over_earlier_candidates", func(t *testing.T) {
		candidates := []string{
			"",
			"data:image/jpeg;base64,/9j/4AAQ",
			"customer_photos/a_20240101_000000.jpg",
			"customer_photos/a_20240102_000000.jpg",
		}
		entries := make([]domain.LedgerEntry, 0, len(candidates))
		for _, p := range candidates {
			entries = append(entries, saleEntry("Alice", "555-0100", "", base, 1, p))
		}
		groups := domain.GroupSales(entries)
		require.Len(t, groups, 1)
		assert.Equal(t, "customer_photos/a_20240102_000000.jpg", groups[0].Photo)
	})

	t.Run("persisted_path_beats_encoded_payload_regardless_of_order", func(t *testing.T) {
		entries := []domain.LedgerEntry{
			saleEntry("Alice", "555-0100", "", base, 1, "customer_photos/a_20240101_000000.jpg"),
			saleEntry("Alice", "555-0100", "", base, 1, "data:image/png;base64,iVBOR"),
		}
		groups := domain.GroupSales(entries)
		require.Len(t, groups, 1)
		assert.Equal(t, "customer_photos/a_20240101_000000.jpg", groups[0].Photo)
	})

	t.Run("encoded_payload_beats_empty", func(t *testing.T) {
		entries := []domain.LedgerEntry{
			saleEntry("Alice", "555-0100", "", base, 1, ""),
			saleEntry("Alice", "555-0100", "", base, 1, "data:image/png;base64,iVBOR"),
		}
		groups := domain.GroupSales(entries)
		require.Len(t, groups, 1)
		assert.Equal(t, "data:image/png;base64,iVBOR", groups[0].Photo)
	})
}

func TestParseMemoTotal(t *testing.T) {
	tests := []struct {
		name string
		memo string
		want string
	}{
		{name: "rupee_marker", memo: "Total: Rs.450.50", want: "450.5"},
		{name: "dollar_marker", memo: "Total: $120", want: "120"},
		{name: "no_marker", memo: "Total: 99.99", want: "99.99"},
		{name: "embedded_in_text", memo: "paid half, Total: Rs.300 remaining", want: "300"},
		{name: "missing_total", memo: "delivered at noon", want: "0"},
		{name: "empty_memo", memo: "", want: "0"},
		{name: "no_digits_after_marker", memo: "Total: pending", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := decimal.NewFromString(tt.want)
			require.NoError(t, err)
			assert.True(t, want.Equal(domain.ParseMemoTotal(tt.memo)),
				"ParseMemoTotal(%q)", tt.memo)
		})
	}
}
