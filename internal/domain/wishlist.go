// internal/domain/wishlist.go
package domain

import (
	"time"
)

// Wishlist aggregates are re-derived from completed contributions on every
// completion rather than incremented, so a drifted counter heals itself.
type Wishlist struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	Title             string    `json:"title"`
	TotalContributed  int64     `json:"total_contributed"`
	ContributorsCount int       `json:"contributors_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type WishlistItem struct {
	ID               string     `json:"id"`
	WishlistID       string     `json:"wishlist_id"`
	Name             string     `json:"name"`
	Price            int64      `json:"price"`
	TotalContributed int64      `json:"total_contributed"`
	IsFunded         bool       `json:"is_funded"`
	FundedAt         *time.Time `json:"funded_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
