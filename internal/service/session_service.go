package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coursedesk-api/internal/dto"
	"github.com/noah-isme/coursedesk-api/internal/models"
	appErrors "github.com/noah-isme/coursedesk-api/pkg/errors"
)

type sessionSearcher interface {
	Search(ctx context.Context, key string, page, size int) ([]models.FeedbackSession, int, error)
}

// SessionService backs the sessions search bar.
type SessionService struct {
	repo      sessionSearcher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(repo sessionSearcher, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, validator: validate, logger: logger}
}

// Search finds sessions whose name or course ID contains the search key, ignoring case.
// Clearing a search is done by the client dropping the key, so an empty key is rejected.
func (s *SessionService) Search(ctx context.Context, params models.SessionSearchParams) (*dto.SessionSearchResult, error) {
	params.SearchKey = strings.TrimSpace(params.SearchKey)
	if err := s.validator.Struct(params); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "searchKey is required")
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize <= 0 || params.PageSize > 100 {
		params.PageSize = 20
	}

	sessions, total, err := s.repo.Search(ctx, params.SearchKey, params.Page, params.PageSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to search sessions")
	}
	return &dto.SessionSearchResult{
		Sessions: sessions,
		Pagination: models.Pagination{
			Page:       params.Page,
			PageSize:   params.PageSize,
			TotalCount: total,
		},
	}, nil
}
