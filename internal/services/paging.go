package services

import (
	"fmt"

	"lunchdesk/internal/models"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// MaxPage keeps (page-1)*limit well inside int64 for every store.
	MaxPage = 10000
)

// PageRequest selects one page of a listing. Zero fields fall back to the
// first page and DefaultPageLimit.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) normalize() (PageRequest, error) {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Page < 1 || p.Page > MaxPage {
		return PageRequest{}, ValidationError{Field: "page", Message: fmt.Sprintf("must be between 1 and %d", MaxPage)}
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return PageRequest{}, ValidationError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", MaxPageLimit)}
	}
	return p, nil
}

// Skip is the number of rows before the page.
func (p PageRequest) Skip() int64 {
	return int64(p.Page-1) * int64(p.Limit)
}

// OrderPage is one page of a user's order history plus the full count.
type OrderPage struct {
	Orders []models.Order
	Page   int
	Limit  int
	Total  int64
}
