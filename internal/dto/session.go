package dto

import "github.com/noah-isme/coursedesk-api/internal/models"

// SessionSearchResult is one page of session search matches.
type SessionSearchResult struct {
	Sessions   []models.FeedbackSession `json:"sessions"`
	Pagination models.Pagination        `json:"-"`
}
