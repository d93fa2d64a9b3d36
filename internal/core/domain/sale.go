// internal/core/domain/sale.go
package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// SaleKey identifies one real-world sale. Line items recorded within the
// same minute for the same recipient and memo text are considered part of
// a single sale.
type SaleKey struct {
	RecipientName  string
	RecipientPhone string
	Memo           string
	Minute         time.Time
}

// KeyOf derives the consolidation key for an OUT ledger entry.
func KeyOf(e *LedgerEntry) SaleKey {
	return SaleKey{
		RecipientName:  e.RecipientName,
		RecipientPhone: e.RecipientPhone,
		Memo:           e.Memo,
		Minute:         e.CreatedAt.Truncate(time.Minute),
	}
}

// SaleGroup is a read-time consolidation of one or more OUT ledger entries
// believed to belong to one sale. It is regenerated on every read and never
// persisted.
type SaleGroup struct {
	RecipientName  string          `json:"recipient_name"`
	RecipientPhone string          `json:"recipient_phone"`
	Memo           string          `json:"memo,omitempty"`
	SaleDate       time.Time       `json:"sale_date"`
	Items          []LedgerEntry   `json:"items"`
	Photo          string          `json:"photo,omitempty"`
	TotalQuantity  int             `json:"total_quantity"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	MultiItem      bool            `json:"multi_item"`
}

// GroupSales consolidates OUT entries, already sorted newest-first, into
// sale groups. Group order is the encounter order of each group's first
// member; members keep their insertion order within a group.
func GroupSales(entries []LedgerEntry) []SaleGroup {
	var groups []SaleGroup
	index := make(map[SaleKey]int, len(entries))

	for _, e := range entries {
		if e.Direction != DirectionOut {
			continue
		}
		key := KeyOf(&e)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, SaleGroup{
				RecipientName:  e.RecipientName,
				RecipientPhone: e.RecipientPhone,
				Memo:           e.Memo,
				SaleDate:       e.CreatedAt,
				TotalAmount:    ParseMemoTotal(e.Memo),
			})
		}
		g := &groups[i]
		g.Items = append(g.Items, e)
		g.TotalQuantity += e.Quantity
		// Stateful replacement, not a post-hoc max: each member's candidate
		// is weighed against the photo selected so far, in member order.
		g.Photo = betterPhoto(g.Photo, e.RecipientPhoto)
	}

	for i := range groups {
		groups[i].MultiItem = len(groups[i].Items) > 1
	}
	return groups
}

// betterPhoto decides whether candidate replaces current. Precedence:
// non-empty over empty, persisted path over raw encoded payload, and
// between two persisted paths the lexicographically larger one (filenames
// embed timestamps, so larger means newer).
func betterPhoto(current, candidate string) string {
	if candidate == "" {
		return current
	}
	if current == "" {
		return candidate
	}
	curData, candData := IsEncodedPayload(current), IsEncodedPayload(candidate)
	switch {
	case curData && !candData:
		return candidate
	case !curData && candData:
		return current
	case !curData && !candData && candidate > current:
		return candidate
	}
	return current
}

// memoTotalPattern matches a "Total: <currency><number>" fragment. The
// currency marker is unconstrained on purpose; amounts this system never
// wrote itself still parse.
var memoTotalPattern = regexp.MustCompile(`Total:\s*[^0-9]*([0-9]+(?:\.[0-9]+)?)`)

// ParseMemoTotal extracts the sale total from free memo text. Absent or
// unparsable totals yield zero; the amount is never recomputed from
// price x quantity.
func ParseMemoTotal(memo string) decimal.Decimal {
	m := memoTotalPattern.FindStringSubmatch(memo)
	if m == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero
	}
	return d
}
