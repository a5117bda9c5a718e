package repotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/models"
	"github.com/theleywin/friendlynk/src/repository"
)

// Run exercises a store implementation. newRepo must return an empty store.
func Run(t *testing.T, newRepo func(t *testing.T) *repository.Repository) {
	tests := []struct {
		name string
		fn   func(t *testing.T, repo *repository.Repository)
	}{
		{"UserUniqueness", testUserUniqueness},
		{"UserPartialUpdate", testUserPartialUpdate},
		{"FollowIsSymmetric", testFollowIsSymmetric},
		{"SuggestOrdersByFollowers", testSuggestOrdersByFollowers},
		{"ListAndSummaries", testListAndSummaries},
		{"SearchIsCaseInsensitiveSubstring", testSearch},
		{"PostsNewestFirst", testPostsNewestFirst},
		{"LikeToggleIsItsOwnInverse", testLikeToggle},
		{"CommentsFollowTheirPost", testComments},
		{"DeletePostCascades", testDeletePostCascades},
		{"BookmarksKeepOrder", testBookmarks},
		{"ConcurrentLikesAllLand", testConcurrentLikes},
		{"ConcurrentFollowTogglesStaySymmetric", testConcurrentFollowToggles},
		{"CommentRacingPostDeleteLeavesNoOrphan", testCommentRacingPostDelete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newRepo(t))
		})
	}
}

// NewUser stores a user with derived email and fullname.
func NewUser(t testing.TB, repo *repository.Repository, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Fullname: username + " Example",
		Email:    username + "@x.com",
		Password: "hash",
	}
	if err := repo.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("Users.Create(%s) error = %v", username, err)
	}
	return user
}

// NewPost stores a post owned by owner.
func NewPost(t testing.TB, repo *repository.Repository, owner primitive.ObjectID, content string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: owner, Content: content}
	if err := repo.Posts.Create(context.Background(), post); err != nil {
		t.Fatalf("Posts.Create() error = %v", err)
	}
	return post
}

func testUserUniqueness(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "alice")

	if alice.Id.IsZero() {
		t.Fatal("Create() left Id empty")
	}
	if alice.Followers == nil || alice.Following == nil || alice.Bookmarks == nil {
		t.Error("Create() left relationship sets nil")
	}

	err := repo.Users.Create(ctx, &models.User{Username: "alice", Email: "other@x.com", Password: "h"})
	if !errors.Is(err, repository.ErrDuplicateUsername) {
		t.Errorf("Create(dup username) error = %v, want %v", err, repository.ErrDuplicateUsername)
	}
	err = repo.Users.Create(ctx, &models.User{Username: "alice2", Email: "alice@x.com", Password: "h"})
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		t.Errorf("Create(dup email) error = %v, want %v", err, repository.ErrDuplicateEmail)
	}

	got, err := repo.Users.FindByEmail(ctx, "alice@x.com")
	if err != nil || got.Id != alice.Id {
		t.Errorf("FindByEmail() = %v, %v", got, err)
	}
	if _, err := repo.Users.FindByEmail(ctx, "nobody@x.com"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("FindByEmail(missing) error = %v, want %v", err, repository.ErrNotFound)
	}
	if _, err := repo.Users.FindByID(ctx, primitive.NewObjectID()); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("FindByID(missing) error = %v, want %v", err, repository.ErrNotFound)
	}
}

func testUserPartialUpdate(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "alice")
	NewUser(t, repo, "bob")

	bio, empty := "hello", ""
	got, err := repo.Users.Update(ctx, alice.Id, models.ProfileUpdate{Bio: &bio, Fullname: &empty})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Bio != "hello" {
		t.Errorf("Bio = %q, want %q", got.Bio, "hello")
	}
	if got.Fullname != alice.Fullname {
		t.Errorf("Fullname = %q, want unchanged %q", got.Fullname, alice.Fullname)
	}

	taken := "bob"
	if _, err := repo.Users.Update(ctx, alice.Id, models.ProfileUpdate{Username: &taken}); !errors.Is(err, repository.ErrDuplicateUsername) {
		t.Errorf("Update(taken username) error = %v, want %v", err, repository.ErrDuplicateUsername)
	}
	if _, err := repo.Users.Update(ctx, primitive.NewObjectID(), models.ProfileUpdate{Bio: &bio}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want %v", err, repository.ErrNotFound)
	}
}

func testFollowIsSymmetric(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "alice")
	bob := NewUser(t, repo, "bob")

	following, err := repo.Users.ToggleFollow(ctx, alice.Id, bob.Id)
	if err != nil || !following {
		t.Fatalf("ToggleFollow() = %v, %v, want true", following, err)
	}

	a, _ := repo.Users.FindByID(ctx, alice.Id)
	b, _ := repo.Users.FindByID(ctx, bob.Id)
	if !a.IsFollowing(bob.Id) {
		t.Error("alice.following does not contain bob")
	}
	if len(b.Followers) != 1 || b.Followers[0] != alice.Id {
		t.Errorf("bob.followers = %v, want [alice]", b.Followers)
	}
	if len(a.Followers) != 0 || len(b.Following) != 0 {
		t.Error("follow leaked into the reverse direction")
	}

	following, err = repo.Users.ToggleFollow(ctx, alice.Id, bob.Id)
	if err != nil || following {
		t.Fatalf("second ToggleFollow() = %v, %v, want false", following, err)
	}

	a, _ = repo.Users.FindByID(ctx, alice.Id)
	b, _ = repo.Users.FindByID(ctx, bob.Id)
	if len(a.Following) != 0 || len(b.Followers) != 0 {
		t.Errorf("after unfollow following = %v followers = %v, want empty", a.Following, b.Followers)
	}
}

func testSuggestOrdersByFollowers(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "alice")
	bob := NewUser(t, repo, "bob")
	carol := NewUser(t, repo, "carol")
	dave := NewUser(t, repo, "dave")

	// carol: 2 followers, dave: 1, bob: 0
	for _, pair := range [][2]primitive.ObjectID{
		{bob.Id, carol.Id},
		{dave.Id, carol.Id},
		{bob.Id, dave.Id},
	} {
		if _, err := repo.Users.ToggleFollow(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("ToggleFollow() error = %v", err)
		}
	}

	got, err := repo.Users.Suggest(ctx, alice.Id, nil, 10)
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	want := []string{"carol", "dave", "bob"}
	if len(got) != len(want) {
		t.Fatalf("Suggest() returned %d users, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Username != name {
			t.Errorf("Suggest()[%d] = %s, want %s", i, got[i].Username, name)
		}
	}
	if got[0].FollowersCount != 2 {
		t.Errorf("FollowersCount = %d, want 2", got[0].FollowersCount)
	}

	got, err = repo.Users.Suggest(ctx, alice.Id, []primitive.ObjectID{carol.Id}, 1)
	if err != nil {
		t.Fatalf("Suggest(skip) error = %v", err)
	}
	if len(got) != 1 || got[0].Username != "dave" {
		t.Errorf("Suggest(skip carol, limit 1) = %v, want [dave]", got)
	}
}

func testListAndSummaries(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	var ids []primitive.ObjectID
	for _, name := range []string{"u1", "u2", "u3"} {
		ids = append(ids, NewUser(t, repo, name).Id)
	}

	page, err := repo.Users.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page) != 1 || page[0].Id != ids[1] {
		t.Errorf("List(skip 1, limit 1) = %v, want [u2]", page)
	}

	missing := primitive.NewObjectID()
	summaries, err := repo.Users.Summaries(ctx, []primitive.ObjectID{ids[0], missing})
	if err != nil {
		t.Fatalf("Summaries() error = %v", err)
	}
	if len(summaries) != 1 || summaries[ids[0]].Username != "u1" {
		t.Errorf("Summaries() = %v, want only u1", summaries)
	}
}

func testSearch(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "Alice")
	NewUser(t, repo, "bob")
	NewPost(t, repo, alice.Id, "Hello World")
	NewPost(t, repo, alice.Id, "100% sure")

	users, err := repo.Users.Search(ctx, "ALI")
	if err != nil {
		t.Fatalf("Users.Search() error = %v", err)
	}
	if len(users) != 1 || users[0].Username != "Alice" {
		t.Errorf("Users.Search(ALI) = %v, want [Alice]", users)
	}

	posts, err := repo.Posts.Search(ctx, "world")
	if err != nil {
		t.Fatalf("Posts.Search() error = %v", err)
	}
	if len(posts) != 1 || posts[0].Content != "Hello World" {
		t.Errorf("Posts.Search(world) = %v", posts)
	}

	// Pattern characters match literally.
	posts, err = repo.Posts.Search(ctx, "0%")
	if err != nil {
		t.Fatalf("Posts.Search() error = %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("Posts.Search(0%%) = %d posts, want 1", len(posts))
	}

	users, err = repo.Users.Search(ctx, "zzz")
	if err != nil || len(users) != 0 {
		t.Errorf("Users.Search(zzz) = %v, %v, want empty", users, err)
	}

	// Case folding is not limited to ASCII.
	NewPost(t, repo, alice.Id, "Visiting the ÉCOLE today")
	posts, err = repo.Posts.Search(ctx, "école")
	if err != nil {
		t.Fatalf("Posts.Search() error = %v", err)
	}
	if len(posts) != 1 || posts[0].Content != "Visiting the ÉCOLE today" {
		t.Errorf("Posts.Search(école) = %v, want the ÉCOLE post", posts)
	}

	fullname := "Zoë Ångström"
	if _, err := repo.Users.Update(ctx, alice.Id, models.ProfileUpdate{Fullname: &fullname}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	users, err = repo.Users.Search(ctx, "ÅNGSTRÖM")
	if err != nil {
		t.Fatalf("Users.Search() error = %v", err)
	}
	if len(users) != 1 || users[0].Id != alice.Id {
		t.Errorf("Users.Search(ÅNGSTRÖM) = %v, want [Alice]", users)
	}
}

func testPostsNewestFirst(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "alice")
	bob := NewUser(t, repo, "bob")
	first := NewPost(t, repo, alice.Id, "first")
	second := NewPost(t, repo, bob.Id, "second")
	third := NewPost(t, repo, alice.Id, "third")

	all, err := repo.Posts.List(ctx, models.PostFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].Id != third.Id || all[1].Id != second.Id || all[2].Id != first.Id {
		t.Errorf("List() order = %v", all)
	}
	if all[0].Likes == nil || all[0].Comments == nil {
		t.Error("List() returned nil likes or comments")
	}

	mine, err := repo.Posts.List(ctx, models.PostFilter{Owner: alice.Id})
	if err != nil {
		t.Fatalf("List(owner) error = %v", err)
	}
	if len(mine) != 2 || mine[0].Id != third.Id {
		t.Errorf("List(owner) = %v", mine)
	}

	content, empty := "edited", ""
	updated, err := repo.Posts.Update(ctx, first.Id, models.PostUpdate{Content: &content, ContentImage: &empty})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Content != "edited" || updated.UserID != alice.Id {
		t.Errorf("Update() = %+v", updated)
	}

	byIDs, err := repo.Posts.FindByIDs(ctx, []primitive.ObjectID{second.Id, primitive.NewObjectID(), first.Id})
	if err != nil {
		t.Fatalf("FindByIDs() error = %v", err)
	}
	if len(byIDs) != 2 || byIDs[0].Id != second.Id || byIDs[1].Id != first.Id {
		t.Errorf("FindByIDs() = %v", byIDs)
	}
}

func testLikeToggle(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "alice")
	bob := NewUser(t, repo, "bob")
	post := NewPost(t, repo, alice.Id, "hello")

	liked, count, err := repo.Posts.ToggleLike(ctx, post.Id, bob.Id)
	if err != nil || !liked || count != 1 {
		t.Fatalf("ToggleLike() = %v, %d, %v, want true, 1", liked, count, err)
	}
	_, count, _ = repo.Posts.ToggleLike(ctx, post.Id, alice.Id)
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	liked, count, err = repo.Posts.ToggleLike(ctx, post.Id, bob.Id)
	if err != nil || liked || count != 1 {
		t.Errorf("ToggleLike() again = %v, %d, %v, want false, 1", liked, count, err)
	}

	got, _ := repo.Posts.FindByID(ctx, post.Id)
	if got.LikedBy(bob.Id) || !got.LikedBy(alice.Id) {
		t.Errorf("likes = %v, want [alice]", got.Likes)
	}

	if _, _, err := repo.Posts.ToggleLike(ctx, primitive.NewObjectID(), bob.Id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("ToggleLike(missing) error = %v, want %v", err, repository.ErrNotFound)
	}
}

func testComments(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "alice")
	post := NewPost(t, repo, alice.Id, "hello")

	c1 := &models.Comment{UserID: alice.Id, Post: post.Id, Text: "one"}
	c2 := &models.Comment{UserID: alice.Id, Post: post.Id, Text: "two"}
	for _, c := range []*models.Comment{c1, c2} {
		if err := repo.Comments.Create(ctx, c); err != nil {
			t.Fatalf("Comments.Create() error = %v", err)
		}
	}

	got, _ := repo.Posts.FindByID(ctx, post.Id)
	if len(got.Comments) != 2 || got.Comments[0] != c1.Id || got.Comments[1] != c2.Id {
		t.Errorf("post.comments = %v, want [c1 c2]", got.Comments)
	}

	orphan := &models.Comment{UserID: alice.Id, Post: primitive.NewObjectID(), Text: "lost"}
	if err := repo.Comments.Create(ctx, orphan); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Create(missing post) error = %v, want %v", err, repository.ErrNotFound)
	}
	if _, err := repo.Comments.FindByID(ctx, orphan.Id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("orphan comment was stored: %v", err)
	}

	if err := repo.Comments.Delete(ctx, c1); err != nil {
		t.Fatalf("Comments.Delete() error = %v", err)
	}
	got, _ = repo.Posts.FindByID(ctx, post.Id)
	if len(got.Comments) != 1 || got.Comments[0] != c2.Id {
		t.Errorf("post.comments after delete = %v, want [c2]", got.Comments)
	}
	if err := repo.Comments.Delete(ctx, c1); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want %v", err, repository.ErrNotFound)
	}
}

func testDeletePostCascades(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "alice")
	bob := NewUser(t, repo, "bob")
	post := NewPost(t, repo, alice.Id, "doomed")
	keep := NewPost(t, repo, alice.Id, "kept")

	comment := &models.Comment{UserID: bob.Id, Post: post.Id, Text: "bye"}
	if err := repo.Comments.Create(ctx, comment); err != nil {
		t.Fatalf("Comments.Create() error = %v", err)
	}
	kept := &models.Comment{UserID: bob.Id, Post: keep.Id, Text: "stay"}
	if err := repo.Comments.Create(ctx, kept); err != nil {
		t.Fatalf("Comments.Create() error = %v", err)
	}
	if _, _, err := repo.Users.ToggleBookmark(ctx, bob.Id, post.Id); err != nil {
		t.Fatalf("ToggleBookmark() error = %v", err)
	}

	if err := repo.Posts.Delete(ctx, post.Id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := repo.Posts.FindByID(ctx, post.Id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("FindByID(deleted) error = %v, want %v", err, repository.ErrNotFound)
	}
	if _, err := repo.Comments.FindByID(ctx, comment.Id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("comment of deleted post still exists: %v", err)
	}
	if _, err := repo.Comments.FindByID(ctx, kept.Id); err != nil {
		t.Errorf("comment of other post was removed: %v", err)
	}
	b, _ := repo.Users.FindByID(ctx, bob.Id)
	if b.HasBookmarked(post.Id) {
		t.Error("bookmark of deleted post survived")
	}
	if err := repo.Posts.Delete(ctx, post.Id); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want %v", err, repository.ErrNotFound)
	}
}

func testBookmarks(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "alice")
	p1 := NewPost(t, repo, alice.Id, "one")
	p2 := NewPost(t, repo, alice.Id, "two")

	for _, p := range []*models.Post{p2, p1} {
		ok, _, err := repo.Users.ToggleBookmark(ctx, alice.Id, p.Id)
		if err != nil || !ok {
			t.Fatalf("ToggleBookmark() = %v, %v, want true", ok, err)
		}
	}

	ok, list, err := repo.Users.ToggleBookmark(ctx, alice.Id, p2.Id)
	if err != nil || ok {
		t.Fatalf("ToggleBookmark(remove) = %v, %v, want false", ok, err)
	}
	if len(list) != 1 || list[0] != p1.Id {
		t.Errorf("bookmarks = %v, want [p1]", list)
	}

	_, list, _ = repo.Users.ToggleBookmark(ctx, alice.Id, p2.Id)
	if len(list) != 2 || list[0] != p1.Id || list[1] != p2.Id {
		t.Errorf("bookmarks = %v, want [p1 p2]", list)
	}
}

func testConcurrentLikes(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	owner := NewUser(t, repo, "owner")
	post := NewPost(t, repo, owner.Id, "popular")

	const n = 12
	likers := make([]*models.User, n)
	for i := range likers {
		likers[i] = NewUser(t, repo, fmt.Sprintf("liker%d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, u := range likers {
		wg.Add(1)
		go func(id primitive.ObjectID) {
			defer wg.Done()
			liked, _, err := repo.Posts.ToggleLike(ctx, post.Id, id)
			if err == nil && !liked {
				err = fmt.Errorf("like by %s reported unliked", id.Hex())
			}
			errs <- err
		}(u.Id)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("ToggleLike() error = %v", err)
		}
	}

	got, err := repo.Posts.FindByID(ctx, post.Id)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if len(got.Likes) != n {
		t.Errorf("likes = %d, want %d", len(got.Likes), n)
	}
	for _, u := range likers {
		if !got.LikedBy(u.Id) {
			t.Errorf("like by %s is missing", u.Username)
		}
	}
}

func testConcurrentFollowToggles(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "alice")
	bob := NewUser(t, repo, "bob")

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		follows   int
		unfollows int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			following, err := repo.Users.ToggleFollow(ctx, alice.Id, bob.Id)
			if errors.Is(err, repository.ErrToggleContention) {
				return
			}
			if err != nil {
				t.Errorf("ToggleFollow() error = %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if following {
				follows++
			} else {
				unfollows++
			}
		}()
	}
	wg.Wait()

	a, err := repo.Users.FindByID(ctx, alice.Id)
	if err != nil {
		t.Fatalf("FindByID(alice) error = %v", err)
	}
	b, err := repo.Users.FindByID(ctx, bob.Id)
	if err != nil {
		t.Fatalf("FindByID(bob) error = %v", err)
	}

	following := a.IsFollowing(bob.Id)
	followed := false
	for _, id := range b.Followers {
		followed = followed || id == alice.Id
	}
	if following != followed {
		t.Errorf("alice.following has bob = %v, bob.followers has alice = %v", following, followed)
	}
	if len(a.Following) > 1 || len(b.Followers) > 1 {
		t.Errorf("following = %v followers = %v, want at most one edge", a.Following, b.Followers)
	}

	// Applied toggles alternate starting from "follow".
	if want := follows > unfollows; following != want {
		t.Errorf("following = %v after %d follows and %d unfollows", following, follows, unfollows)
	}
}

func testCommentRacingPostDelete(t *testing.T, repo *repository.Repository) {
	ctx := context.Background()
	alice := NewUser(t, repo, "alice")
	bob := NewUser(t, repo, "bob")

	for i := 0; i < 5; i++ {
		post := NewPost(t, repo, alice.Id, fmt.Sprintf("short-lived %d", i))
		comment := &models.Comment{UserID: bob.Id, Post: post.Id, Text: "quick"}

		var (
			wg        sync.WaitGroup
			createErr error
			deleteErr error
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			createErr = repo.Comments.Create(ctx, comment)
		}()
		go func() {
			defer wg.Done()
			deleteErr = repo.Posts.Delete(ctx, post.Id)
		}()
		wg.Wait()

		if deleteErr != nil {
			t.Fatalf("Delete() error = %v", deleteErr)
		}
		if createErr != nil && !errors.Is(createErr, repository.ErrNotFound) {
			t.Fatalf("Comments.Create() error = %v", createErr)
		}
		if _, err := repo.Posts.FindByID(ctx, post.Id); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("post %d survived Delete(): %v", i, err)
		}
		if _, err := repo.Comments.FindByID(ctx, comment.Id); !errors.Is(err, repository.ErrNotFound) {
			t.Errorf("round %d left an orphan comment (create error = %v): %v", i, createErr, err)
		}
	}
}
