package client

import (
	"context"
	"net/http"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/models"
)

// PostStore mirrors the feed and the signed-in user's own posts.
type PostStore struct {
	client *Client

	mu      sync.RWMutex
	posts   []models.PostDto
	myPosts []models.PostDto
	lastErr error
}

func NewPostStore(client *Client) *PostStore {
	return &PostStore{client: client}
}

func (s *PostStore) Posts() []models.PostDto {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.posts)
}

func (s *PostStore) MyPosts() []models.PostDto {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePosts(s.myPosts)
}

func (s *PostStore) LastErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *PostStore) finish(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	return err
}

// update applies fn to both lists.
func (s *PostStore) update(fn func([]models.PostDto) []models.PostDto) {
	s.mu.Lock()
	s.posts = fn(s.posts)
	s.myPosts = fn(s.myPosts)
	s.mu.Unlock()
}

func (s *PostStore) FetchPosts(ctx context.Context) error {
	var out struct {
		Posts []models.PostDto `json:"posts"`
	}
	if _, err := s.client.do(ctx, http.MethodGet, "/posts", nil, nil, &out); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.posts = out.Posts
	s.mu.Unlock()
	return s.finish(nil)
}

func (s *PostStore) FetchMyPosts(ctx context.Context) error {
	var out struct {
		Posts []models.PostDto `json:"posts"`
	}
	if _, err := s.client.do(ctx, http.MethodGet, "/my-posts", nil, nil, &out); err != nil {
		return s.finish(err)
	}

	s.mu.Lock()
	s.myPosts = out.Posts
	s.mu.Unlock()
	return s.finish(nil)
}

// CreatePost publishes a post and puts it at the top of both lists.
func (s *PostStore) CreatePost(ctx context.Context, content, contentImage string) (*models.PostDto, error) {
	body := map[string]string{"content": content, "contentImage": contentImage}
	var out struct {
		Post models.PostDto `json:"post"`
	}
	if _, err := s.client.do(ctx, http.MethodPost, "/posts", nil, body, &out); err != nil {
		return nil, s.finish(err)
	}

	s.mu.Lock()
	s.posts = append([]models.PostDto{clonePost(out.Post)}, s.posts...)
	s.myPosts = append([]models.PostDto{clonePost(out.Post)}, s.myPosts...)
	s.mu.Unlock()
	return &out.Post, s.finish(nil)
}

// UpdatePost edits a post and replaces the cached copy with the server's.
func (s *PostStore) UpdatePost(ctx context.Context, postID primitive.ObjectID, update models.PostUpdate) error {
	var out struct {
		Post models.PostDto `json:"post"`
	}
	if _, err := s.client.do(ctx, http.MethodPut, "/posts/"+postID.Hex(), nil, update, &out); err != nil {
		return s.finish(err)
	}

	s.update(func(posts []models.PostDto) []models.PostDto {
		for i := range posts {
			if posts[i].Id == postID {
				posts[i] = clonePost(out.Post)
			}
		}
		return posts
	})
	return s.finish(nil)
}

func (s *PostStore) DeletePost(ctx context.Context, postID primitive.ObjectID) error {
	if _, err := s.client.do(ctx, http.MethodDelete, "/posts/"+postID.Hex(), nil, nil, nil); err != nil {
		return s.finish(err)
	}

	s.update(func(posts []models.PostDto) []models.PostDto {
		kept := posts[:0:0]
		for _, p := range posts {
			if p.Id != postID {
				kept = append(kept, p)
			}
		}
		return kept
	})
	return s.finish(nil)
}

// LikeToggle flips userID's like on postID locally before asking the server.
// If the server call fails both lists are restored to their state before the
// call and the error is returned. On success the server's like count is
// returned.
func (s *PostStore) LikeToggle(ctx context.Context, userID, postID primitive.ObjectID) (int, error) {
	s.mu.Lock()
	snapshotPosts, snapshotMine := clonePosts(s.posts), clonePosts(s.myPosts)
	s.mu.Unlock()

	s.update(func(posts []models.PostDto) []models.PostDto {
		out := clonePosts(posts)
		for i := range out {
			if out[i].Id != postID {
				continue
			}
			if containsID(out[i].Likes, userID) {
				out[i].Likes = removeID(out[i].Likes, userID)
			} else {
				out[i].Likes = append(out[i].Likes, userID)
			}
		}
		return out
	})

	var out struct {
		Likes int `json:"likes"`
	}
	if _, err := s.client.do(ctx, http.MethodPost, "/posts/"+postID.Hex()+"/like", nil, nil, &out); err != nil {
		s.mu.Lock()
		s.posts, s.myPosts = snapshotPosts, snapshotMine
		s.mu.Unlock()
		return 0, s.finish(err)
	}
	return out.Likes, s.finish(nil)
}

// AddComment comments on postID and appends the comment to the cached post.
func (s *PostStore) AddComment(ctx context.Context, postID primitive.ObjectID, text string) (*models.CommentDto, error) {
	var out struct {
		Comment models.CommentDto `json:"comment"`
	}
	body := map[string]string{"text": text}
	if _, err := s.client.do(ctx, http.MethodPost, "/posts/"+postID.Hex()+"/comments", nil, body, &out); err != nil {
		return nil, s.finish(err)
	}

	s.update(func(posts []models.PostDto) []models.PostDto {
		for i := range posts {
			if posts[i].Id == postID {
				posts[i].Comments = append(cloneSlice(posts[i].Comments), out.Comment)
			}
		}
		return posts
	})
	return &out.Comment, s.finish(nil)
}

// DeleteComment deletes commentID and drops it from the cached postID.
func (s *PostStore) DeleteComment(ctx context.Context, commentID, postID primitive.ObjectID) error {
	if _, err := s.client.do(ctx, http.MethodDelete, "/comments/"+commentID.Hex(), nil, nil, nil); err != nil {
		return s.finish(err)
	}

	s.update(func(posts []models.PostDto) []models.PostDto {
		for i := range posts {
			if posts[i].Id != postID {
				continue
			}
			kept := posts[i].Comments[:0:0]
			for _, c := range posts[i].Comments {
				if c.Id != commentID {
					kept = append(kept, c)
				}
			}
			posts[i].Comments = kept
		}
		return posts
	})
	return s.finish(nil)
}
