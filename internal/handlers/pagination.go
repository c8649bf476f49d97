package handlers

import (
	"strconv"

	"lunchdesk/internal/services"
)

type page struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func parsePaginationParams(pageStr, limitStr string) (services.PageRequest, error) {
	req := services.PageRequest{Page: 1, Limit: services.DefaultPageLimit}

	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p < 1 || p > services.MaxPage {
			return services.PageRequest{}, services.ValidationError{Field: "page", Message: "must be between 1 and " + strconv.Itoa(services.MaxPage)}
		}
		req.Page = p
	}

	if limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l < 1 || l > services.MaxPageLimit {
			return services.PageRequest{}, services.ValidationError{Field: "limit", Message: "must be between 1 and " + strconv.Itoa(services.MaxPageLimit)}
		}
		req.Limit = l
	}

	return req, nil
}
