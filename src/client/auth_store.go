package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/models"
)

type RegisterInput struct {
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthStore mirrors the signed-in user and the user lists around them.
// Accessors return copies.
type AuthStore struct {
	client *Client

	mu             sync.RWMutex
	user           *models.User
	users          []models.UserSummary
	followers      []models.UserSummary
	following      []models.UserSummary
	suggestedUsers []models.SuggestedUser
	bookmarks      []models.PostDto
	foundUsers     []models.UserSummary
	foundPosts     []models.PostDto
	lastErr        error
}

func NewAuthStore(client *Client) *AuthStore {
	return &AuthStore{client: client}
}

func (s *AuthStore) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneUser(s.user)
}

// LoggedIn reports whether a login succeeded and no logout followed.
func (s *AuthStore) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

func (s *AuthStore) Users() []models.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.users)
}

func (s *AuthStore) Followers() []models.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.followers)
}

func (s *AuthStore) Following() []models.UserSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.following)
}

func (s *AuthStore) SuggestedUsers() []models.SuggestedUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.suggestedUsers)
}

func (s *AuthStore) Bookmarks() []models.PostDto {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.bookmarks)
}

// SearchResults returns the result of the last successful Search.
func (s *AuthStore) SearchResults() ([]models.UserSummary, []models.PostDto) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSlice(s.foundUsers), clonePosts(s.foundPosts)
}

// LastErr is the error of the most recent action, nil if it succeeded.
func (s *AuthStore) LastErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// finish records err as the outcome of an action and returns it.
func (s *AuthStore) finish(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	return err
}

// Register creates an account and returns the server message. It does not
// log in.
func (s *AuthStore) Register(ctx context.Context, input RegisterInput) (string, error) {
	msg, err := s.client.do(ctx, http.MethodPost, "/register", nil, input, nil)
	return msg, s.finish(err)
}

// Login stores the session cookie in the client and the user in the store.
func (s *AuthStore) Login(ctx context.Context, input LoginInput) error {
	var out struct {
		User *models.User `json:"user"`
	}
	if _, err := s.client.do(ctx, http.MethodPost, "/login", nil, input, &out); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.user = out.User
	s.mu.Unlock()
	return s.finish(nil)
}

// Logout clears the session and everything cached for the user.
func (s *AuthStore) Logout(ctx context.Context) error {
	if _, err := s.client.do(ctx, http.MethodGet, "/logout", nil, nil, nil); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.user = nil
	s.followers, s.following = nil, nil
	s.suggestedUsers, s.bookmarks = nil, nil
	s.foundUsers, s.foundPosts = nil, nil
	s.mu.Unlock()
	return s.finish(nil)
}

func (s *AuthStore) FetchProfile(ctx context.Context) error {
	var out struct {
		User *models.User `json:"user"`
	}
	if _, err := s.client.do(ctx, http.MethodGet, "/profile", nil, nil, &out); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.user = out.User
	s.mu.Unlock()
	return s.finish(nil)
}

func (s *AuthStore) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	var out struct {
		User *models.User `json:"user"`
	}
	if _, err := s.client.do(ctx, http.MethodPut, "/profile", nil, update, &out); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.user = out.User
	s.mu.Unlock()
	return s.finish(nil)
}

// FollowToggle follows or unfollows userID and reports whether the user now
// follows them.
func (s *AuthStore) FollowToggle(ctx context.Context, userID primitive.ObjectID) (bool, error) {
	var out struct {
		Following bool `json:"following"`
	}
	if _, err := s.client.do(ctx, http.MethodPost, "/follow/"+userID.Hex(), nil, nil, &out); err != nil {
		return false, s.finish(err)
	}

	s.mu.Lock()
	if s.user != nil {
		s.user.Following = removeID(s.user.Following, userID)
		if out.Following {
			s.user.Following = append(s.user.Following, userID)
		}
	}
	if out.Following {
		kept := s.suggestedUsers[:0:0]
		for _, u := range s.suggestedUsers {
			if u.Id != userID {
				kept = append(kept, u)
			}
		}
		s.suggestedUsers = kept
	}
	s.mu.Unlock()
	return out.Following, s.finish(nil)
}

func (s *AuthStore) FetchFollowers(ctx context.Context, userID primitive.ObjectID) error {
	var out struct {
		Followers []models.UserSummary `json:"followers"`
	}
	if _, err := s.client.do(ctx, http.MethodGet, "/user/"+userID.Hex()+"/followers", nil, nil, &out); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.followers = out.Followers
	s.mu.Unlock()
	return s.finish(nil)
}

func (s *AuthStore) FetchFollowing(ctx context.Context, userID primitive.ObjectID) error {
	var out struct {
		Following []models.UserSummary `json:"following"`
	}
	if _, err := s.client.do(ctx, http.MethodGet, "/user/"+userID.Hex()+"/following", nil, nil, &out); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.following = out.Following
	s.mu.Unlock()
	return s.finish(nil)
}

// FetchUsers loads one page of the user directory. page starts at 1.
func (s *AuthStore) FetchUsers(ctx context.Context, page, limit int) error {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	var out struct {
		Users []models.UserSummary `json:"users"`
	}
	if _, err := s.client.do(ctx, http.MethodGet, "/users", query, nil, &out); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.users = out.Users
	s.mu.Unlock()
	return s.finish(nil)
}

func (s *AuthStore) FetchSuggestedUsers(ctx context.Context) error {
	var out struct {
		SuggestedUsers []models.SuggestedUser `json:"suggestedUsers"`
	}
	if _, err := s.client.do(ctx, http.MethodGet, "/suggest-users", nil, nil, &out); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.suggestedUsers = out.SuggestedUsers
	s.mu.Unlock()
	return s.finish(nil)
}

// BookmarkToggle bookmarks or unbookmarks postID and reports whether it is
// bookmarked now.
func (s *AuthStore) BookmarkToggle(ctx context.Context, postID primitive.ObjectID) (bool, error) {
	var out struct {
		Bookmarks []primitive.ObjectID `json:"bookmarks"`
	}
	if _, err := s.client.do(ctx, http.MethodPost, "/posts/"+postID.Hex()+"/bookmark", nil, nil, &out); err != nil {
		return false, s.finish(err)
	}
	bookmarked := containsID(out.Bookmarks, postID)

	s.mu.Lock()
	if s.user != nil {
		s.user.Bookmarks = out.Bookmarks
	}
	if !bookmarked {
		kept := s.bookmarks[:0:0]
		for _, p := range s.bookmarks {
			if p.Id != postID {
				kept = append(kept, p)
			}
		}
		s.bookmarks = kept
	}
	s.mu.Unlock()
	return bookmarked, s.finish(nil)
}

func (s *AuthStore) FetchBookmarks(ctx context.Context) error {
	var out struct {
		Bookmarks []models.PostDto `json:"bookmarks"`
	}
	if _, err := s.client.do(ctx, http.MethodGet, "/bookmarks", nil, nil, &out); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.bookmarks = out.Bookmarks
	s.mu.Unlock()
	return s.finish(nil)
}

// Search runs a user and post search. A blank query is rejected by the
// server.
func (s *AuthStore) Search(ctx context.Context, query string) error {
	var out struct {
		Users []models.UserSummary `json:"users"`
		Posts []models.PostDto     `json:"posts"`
	}
	if _, err := s.client.do(ctx, http.MethodGet, "/search", url.Values{"query": {query}}, nil, &out); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.foundUsers, s.foundPosts = out.Users, out.Posts
	s.mu.Unlock()
	return s.finish(nil)
}
