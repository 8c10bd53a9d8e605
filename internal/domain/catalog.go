package domain

import "time"

// CatalogEntry is one harvested Cardtrader blueprint, keyed by set code and
// display name. The harvest job owns these rows; the resolver only reads them.
type CatalogEntry struct {
	SetCode         string
	Name            string
	CollectorNumber string
	BlueprintID     int64
	HarvestedAt     time.Time
}

// User is a provisioned seeker account, created on first successful Discord
// login.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// CheckState records when a user's seeking list last completed a stock scan.
// A user with no row has never been scanned and sorts before every user that
// has one.
type CheckState struct {
	UserID      string
	LastChecked time.Time
}
