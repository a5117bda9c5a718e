package services

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/theleywin/friendlynk/src/ecode"
	"github.com/theleywin/friendlynk/src/models"
)

func TestCreatePostAndFeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	post := f.post(t, alice.Id, "hello world")
	if post.User.Username != "alice" || post.Content != "hello world" {
		t.Errorf("CreatePost() = %+v", post)
	}
	if len(post.Likes) != 0 || len(post.Comments) != 0 {
		t.Errorf("new post has likes %v comments %v", post.Likes, post.Comments)
	}

	_, err := f.svc.CreatePost(ctx, alice.Id, CreatePostInput{Content: "   "})
	wantKind(t, err, ecode.Validation)

	later := f.post(t, alice.Id, "second")
	feed, err := f.svc.ListPosts(ctx, models.PostFilter{})
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(feed) != 2 || feed[0].Id != later.Id {
		t.Errorf("ListPosts() first = %v, want newest post", feed)
	}
}

func TestListPostsByOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	f.post(t, alice.Id, "from alice")
	f.post(t, bob.Id, "from bob")

	mine, err := f.svc.ListPosts(ctx, models.PostFilter{Owner: bob.Id})
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(mine) != 1 || mine[0].Content != "from bob" {
		t.Errorf("ListPosts(owner=bob) = %v", mine)
	}
}

// TestLikeToggleTwice checks that two toggles restore the original likes.
func TestLikeToggleTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	post := f.post(t, alice.Id, "hello world")

	liked, count, err := f.svc.LikeToggle(ctx, bob.Id, post.Id)
	if err != nil || !liked || count != 1 {
		t.Fatalf("LikeToggle() = %v, %d, %v, want true, 1", liked, count, err)
	}
	liked, count, err = f.svc.LikeToggle(ctx, bob.Id, post.Id)
	if err != nil || liked || count != 0 {
		t.Fatalf("LikeToggle() again = %v, %d, %v, want false, 0", liked, count, err)
	}

	// Liking your own post is allowed but does not notify anyone.
	if _, _, err := f.svc.LikeToggle(ctx, alice.Id, post.Id); err != nil {
		t.Fatalf("LikeToggle(owner) error = %v", err)
	}

	got := f.events.types()
	if len(got) != 1 || got[0] != models.EventPostLiked {
		t.Errorf("events = %v, want [%s]", got, models.EventPostLiked)
	}

	_, _, err = f.svc.LikeToggle(ctx, bob.Id, primitive.NewObjectID())
	wantKind(t, err, ecode.NotFound)
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	post := f.post(t, alice.Id, "hello world")

	empty := ""
	got, err := f.svc.UpdatePost(ctx, alice.Id, post.Id, models.PostUpdate{Content: &empty})
	if err != nil {
		t.Fatalf("UpdatePost(empty) error = %v", err)
	}
	if got.Content != "hello world" {
		t.Errorf("UpdatePost(empty) content = %q, want unchanged", got.Content)
	}

	edited := "edited"
	got, err = f.svc.UpdatePost(ctx, alice.Id, post.Id, models.PostUpdate{Content: &edited})
	if err != nil {
		t.Fatalf("UpdatePost() error = %v", err)
	}
	if got.Content != "edited" {
		t.Errorf("UpdatePost() content = %q, want %q", got.Content, "edited")
	}

	_, err = f.svc.UpdatePost(ctx, bob.Id, post.Id, models.PostUpdate{Content: &edited})
	wantKind(t, err, ecode.Forbidden)

	_, err = f.svc.UpdatePost(ctx, alice.Id, primitive.NewObjectID(), models.PostUpdate{Content: &edited})
	wantKind(t, err, ecode.NotFound)
}

// TestDeletePostCascades removes comments and bookmark references with the post.
func TestDeletePostCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	post := f.post(t, alice.Id, "hello world")

	comment, err := f.svc.AddComment(ctx, bob.Id, post.Id, "nice")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if _, _, err := f.svc.BookmarkToggle(ctx, bob.Id, post.Id); err != nil {
		t.Fatalf("BookmarkToggle() error = %v", err)
	}

	err = f.svc.DeletePost(ctx, bob.Id, post.Id)
	wantKind(t, err, ecode.Forbidden)

	if err := f.svc.DeletePost(ctx, alice.Id, post.Id); err != nil {
		t.Fatalf("DeletePost() error = %v", err)
	}

	err = f.svc.DeleteComment(ctx, bob.Id, comment.Id)
	wantKind(t, err, ecode.NotFound)

	bookmarks, err := f.svc.Bookmarks(ctx, bob.Id)
	if err != nil {
		t.Fatalf("Bookmarks() error = %v", err)
	}
	if len(bookmarks) != 0 {
		t.Errorf("Bookmarks() after delete = %v, want empty", bookmarks)
	}

	err = f.svc.DeletePost(ctx, alice.Id, post.Id)
	wantKind(t, err, ecode.NotFound)
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	post := f.post(t, alice.Id, "hello world")

	comment, err := f.svc.AddComment(ctx, bob.Id, post.Id, "nice")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if comment.User.Username != "bob" || comment.Post != post.Id || comment.Text != "nice" {
		t.Errorf("AddComment() = %+v", comment)
	}

	feed, _ := f.svc.ListPosts(ctx, models.PostFilter{})
	if len(feed) != 1 || len(feed[0].Comments) != 1 || feed[0].Comments[0].Id != comment.Id {
		t.Fatalf("ListPosts() comments = %v, want [%v]", feed, comment.Id)
	}

	_, err = f.svc.AddComment(ctx, bob.Id, post.Id, " ")
	wantKind(t, err, ecode.Validation)

	_, err = f.svc.AddComment(ctx, bob.Id, primitive.NewObjectID(), "nice")
	wantKind(t, err, ecode.NotFound)

	// The post owner cannot remove someone else's comment.
	err = f.svc.DeleteComment(ctx, alice.Id, comment.Id)
	wantKind(t, err, ecode.Forbidden)

	if err := f.svc.DeleteComment(ctx, bob.Id, comment.Id); err != nil {
		t.Fatalf("DeleteComment() error = %v", err)
	}
	feed, _ = f.svc.ListPosts(ctx, models.PostFilter{})
	if len(feed[0].Comments) != 0 {
		t.Errorf("comments after delete = %v, want empty", feed[0].Comments)
	}

	got := f.events.types()
	if len(got) != 1 || got[0] != models.EventPostCommented {
		t.Errorf("events = %v, want [%s]", got, models.EventPostCommented)
	}
}

func TestBookmarkToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	first := f.post(t, alice.Id, "first")
	second := f.post(t, alice.Id, "second")

	for _, id := range []primitive.ObjectID{second.Id, first.Id} {
		if ok, _, err := f.svc.BookmarkToggle(ctx, alice.Id, id); err != nil || !ok {
			t.Fatalf("BookmarkToggle(%s) = %v, %v, want true", id.Hex(), ok, err)
		}
	}

	posts, err := f.svc.Bookmarks(ctx, alice.Id)
	if err != nil {
		t.Fatalf("Bookmarks() error = %v", err)
	}
	if len(posts) != 2 || posts[0].Id != second.Id || posts[1].Id != first.Id {
		t.Errorf("Bookmarks() = %v, want bookmark order", posts)
	}

	ok, ids, err := f.svc.BookmarkToggle(ctx, alice.Id, second.Id)
	if err != nil || ok {
		t.Fatalf("BookmarkToggle() again = %v, %v, want false", ok, err)
	}
	if len(ids) != 1 || ids[0] != first.Id {
		t.Errorf("bookmarks = %v, want [%v]", ids, first.Id)
	}

	_, _, err = f.svc.BookmarkToggle(ctx, alice.Id, primitive.NewObjectID())
	wantKind(t, err, ecode.NotFound)
}
