package services

import (
	"context"
	"strings"

	"github.com/theleywin/friendlynk/src/models"
)

type searchService struct {
	*base
}

func newSearchService(b *base) Searcher {
	return &searchService{base: b}
}

// Search matches users by username or fullname and posts by content, case
// insensitively. Results come back in storage order.
func (s *searchService) Search(ctx context.Context, query string) ([]models.UserSummary, []models.PostDto, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil, ErrQueryRequired
	}

	users, err := s.repo.Users.Search(ctx, query)
	if err != nil {
		return nil, nil, s.storeError(err, nil, "search users")
	}

	posts, err := s.repo.Posts.Search(ctx, query)
	if err != nil {
		return nil, nil, s.storeError(err, nil, "search posts")
	}

	dtos, err := s.hydrate(ctx, posts)
	if err != nil {
		return nil, nil, err
	}
	return users, dtos, nil
}
