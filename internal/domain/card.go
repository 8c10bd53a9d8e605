package domain

import (
	"fmt"
	"strings"
	"time"
)

// Finish values accepted on a seeking item.
const (
	FinishNonfoil = "nonfoil"
	FinishFoil    = "foil"
	FinishEtched  = "etched"
)

// ValidFinishes returns the set of accepted card finishes.
func ValidFinishes() []string {
	return []string{FinishNonfoil, FinishFoil, FinishEtched}
}

// SeekingItem is one card on a user's seeking list. Items are addressed by
// (user id, set code, row key) where the row key is the composite
// collector-number / language / finish string.
type SeekingItem struct {
	UserID          string `json:"-"`
	ScryfallID      string `json:"id"`
	Name            string `json:"name"`
	SetCode         string `json:"set_code"`
	CollectorNumber string `json:"collector_number"`
	Language        string `json:"language"`
	Finish          string `json:"finish"`
	OracleID        string `json:"oracle_id,omitempty"`
	ImageURI        string `json:"image_uri,omitempty"`

	// Marketplace fields, owned by the stock reconciler. BlueprintID nil
	// means the card has no Cardtrader catalog match; the invariant is that
	// a nil BlueprintID implies Stock=false and LowPriceCents=nil.
	Stock         bool      `json:"cardtrader_stock"`
	LowPriceCents *int64    `json:"cardtrader_low_price_cents,omitempty"`
	BlueprintID   *int64    `json:"cardtrader_blueprint_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RowKey returns the composite key addressing this item within its set-code
// partition: collectorNumber_language_finish.
func (i *SeekingItem) RowKey() string {
	return fmt.Sprintf("%s_%s_%s", i.CollectorNumber, i.Language, i.Finish)
}

// ParseRowKey splits a composite row key back into its three parts. Collector
// numbers never contain underscores, so splitting from the right is safe.
func ParseRowKey(rowKey string) (collectorNumber, language, finish string, err error) {
	parts := strings.Split(rowKey, "_")
	if len(parts) < 3 {
		return "", "", "", fmt.Errorf("malformed row key %q", rowKey)
	}
	finish = parts[len(parts)-1]
	language = parts[len(parts)-2]
	collectorNumber = strings.Join(parts[:len(parts)-2], "_")
	if collectorNumber == "" || language == "" || finish == "" {
		return "", "", "", fmt.Errorf("malformed row key %q", rowKey)
	}
	return collectorNumber, language, finish, nil
}

// MarketplaceState is the stock/price/blueprint triple the reconciler diffs
// against live marketplace data.
type MarketplaceState struct {
	Stock         bool
	LowPriceCents *int64
	BlueprintID   *int64
}

// MarketplaceState returns the item's stored triple.
func (i *SeekingItem) MarketplaceState() MarketplaceState {
	return MarketplaceState{
		Stock:         i.Stock,
		LowPriceCents: i.LowPriceCents,
		BlueprintID:   i.BlueprintID,
	}
}

// Equal reports whether two marketplace states carry the same triple.
func (s MarketplaceState) Equal(other MarketplaceState) bool {
	return s.Stock == other.Stock &&
		int64PtrEqual(s.LowPriceCents, other.LowPriceCents) &&
		int64PtrEqual(s.BlueprintID, other.BlueprintID)
}

// Cleared reports whether the state is the resolver-miss state
// (false, nil, nil).
func (s MarketplaceState) Cleared() bool {
	return !s.Stock && s.LowPriceCents == nil && s.BlueprintID == nil
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// NormalizeStock maps a stored stock flag to a boolean. Legacy rows carry
// string flags ("true"/"false"/"unknown"); anything other than an explicit
// true reads as out of stock.
func NormalizeStock(raw *string) bool {
	if raw == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(*raw), "true")
}

// NormalizePriceCents coerces a stored price to integer cents. Legacy rows
// carry the price as a float in cents; fractional values round to the nearest
// cent.
func NormalizePriceCents(raw *float64) *int64 {
	if raw == nil {
		return nil
	}
	cents := int64(*raw + 0.5)
	return &cents
}
