package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/theleywin/friendlynk/src/events"
	"github.com/theleywin/friendlynk/src/lib"
	"github.com/theleywin/friendlynk/src/repository/repotest"
	"github.com/theleywin/friendlynk/src/services"
)

const testSecret = "test-secret"

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &lib.Config{
		ClientURL: "http://localhost:5173",
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
	}
	logger := zap.NewNop()
	tokens := lib.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	svc := services.New(repotest.SQLite(t), tokens, events.NewLogPublisher(logger), logger)
	return NewApp(cfg, svc, logger)
}

type response struct {
	status  int
	body    map[string]interface{}
	cookies []*http.Cookie
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "Authorization", Value: token})
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, path, err)
	}
	defer resp.Body.Close()

	out := response{status: resp.StatusCode, cookies: resp.Cookies()}
	if err := json.NewDecoder(resp.Body).Decode(&out.body); err != nil && err != io.EOF {
		t.Fatalf("%s %s decode error = %v", method, path, err)
	}
	return out
}

// signup registers username and returns its session token and id.
func signup(t *testing.T, app *fiber.App, username string) (string, string) {
	t.Helper()
	reg := call(t, app, http.MethodPost, "/api/register", map[string]string{
		"username": username,
		"fullname": username,
		"email":    username + "@x.com",
		"password": "secret123",
	}, "")
	if reg.status != http.StatusCreated {
		t.Fatalf("register %s status = %d, body %v", username, reg.status, reg.body)
	}

	login := call(t, app, http.MethodPost, "/api/login", map[string]string{
		"email":    username + "@x.com",
		"password": "secret123",
	}, "")
	if login.status != http.StatusOK {
		t.Fatalf("login %s status = %d, body %v", username, login.status, login.body)
	}
	for _, c := range login.cookies {
		if c.Name == "Authorization" {
			user := login.body["user"].(map[string]interface{})
			return c.Value, user["_id"].(string)
		}
	}
	t.Fatalf("login %s set no session cookie", username)
	return "", ""
}

func TestPostScenario(t *testing.T) {
	app := newTestApp(t)
	token, _ := signup(t, app, "alice")

	created := call(t, app, http.MethodPost, "/api/posts", map[string]string{"content": "hello world"}, token)
	if created.status != http.StatusCreated || created.body["msg"] != "Post created" {
		t.Fatalf("create post = %d %v", created.status, created.body)
	}

	feed := call(t, app, http.MethodGet, "/api/posts", nil, token)
	if feed.status != http.StatusOK {
		t.Fatalf("GET /api/posts status = %d", feed.status)
	}
	posts := feed.body["posts"].([]interface{})
	if len(posts) != 1 {
		t.Fatalf("posts = %v, want one post", posts)
	}
	post := posts[0].(map[string]interface{})
	if post["content"] != "hello world" {
		t.Errorf("content = %v, want hello world", post["content"])
	}
	if likes := post["likes"].([]interface{}); len(likes) != 0 {
		t.Errorf("likes = %v, want []", likes)
	}
}

func TestLoginCookie(t *testing.T) {
	app := newTestApp(t)
	call(t, app, http.MethodPost, "/api/register", map[string]string{
		"username": "alice", "email": "alice@x.com", "password": "secret123",
	}, "")

	resp := call(t, app, http.MethodPost, "/api/login", map[string]string{
		"email": "alice@x.com", "password": "secret123",
	}, "")
	var cookie *http.Cookie
	for _, c := range resp.cookies {
		if c.Name == "Authorization" {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("login set no Authorization cookie")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteStrictMode {
		t.Errorf("cookie = %+v, want HttpOnly and SameSite=Strict", cookie)
	}
	user := resp.body["user"].(map[string]interface{})
	if _, ok := user["password"]; ok {
		t.Error("login response leaked the password")
	}

	out := call(t, app, http.MethodGet, "/api/logout", nil, cookie.Value)
	if out.status != http.StatusOK {
		t.Fatalf("logout status = %d", out.status)
	}
	for _, c := range out.cookies {
		if c.Name == "Authorization" && c.Value != "" {
			t.Errorf("logout cookie value = %q, want empty", c.Value)
		}
	}
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t)
	signup(t, app, "alice")

	tests := []struct {
		name     string
		body     map[string]string
		wantCode int
	}{
		{"unknown email", map[string]string{"email": "bob@x.com", "password": "x"}, http.StatusNotFound},
		{"wrong password", map[string]string{"email": "alice@x.com", "password": "x"}, http.StatusBadRequest},
		{"missing password", map[string]string{"email": "alice@x.com"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, app, http.MethodPost, "/api/login", tt.body, "")
			if resp.status != tt.wantCode {
				t.Errorf("status = %d, want %d", resp.status, tt.wantCode)
			}
			if resp.body["success"] != false {
				t.Errorf("success = %v, want false", resp.body["success"])
			}
		})
	}
}

func TestProtectRoute(t *testing.T) {
	app := newTestApp(t)
	token, _ := signup(t, app, "alice")

	expired, err := lib.NewTokenManager(testSecret, -time.Minute).Generate(primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	tests := []struct {
		name     string
		token    string
		wantCode string
	}{
		{"missing", "", "unauthorized"},
		{"garbage", "not-a-token", "invalid_token"},
		{"expired", expired, "token_expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, app, http.MethodGet, "/api/profile", nil, tt.token)
			if resp.status != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.status)
			}
			if resp.body["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", resp.body["code"], tt.wantCode)
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Bearer status = %d, want 200", resp.StatusCode)
	}
}

func TestFollowScenario(t *testing.T) {
	app := newTestApp(t)
	alice, aliceID := signup(t, app, "alice")
	_, bobID := signup(t, app, "bob")

	followers := func() []interface{} {
		resp := call(t, app, http.MethodGet, "/api/user/"+bobID+"/followers", nil, alice)
		if resp.status != http.StatusOK {
			t.Fatalf("followers status = %d", resp.status)
		}
		return resp.body["followers"].([]interface{})
	}

	resp := call(t, app, http.MethodPost, "/api/follow/"+bobID, nil, alice)
	if resp.status != http.StatusOK || resp.body["msg"] != "Followed user" {
		t.Fatalf("follow = %d %v", resp.status, resp.body)
	}
	got := followers()
	if len(got) != 1 || got[0].(map[string]interface{})["_id"] != aliceID {
		t.Errorf("followers = %v, want [alice]", got)
	}

	resp = call(t, app, http.MethodPost, "/api/follow/"+bobID, nil, alice)
	if resp.body["msg"] != "Unfollowed user" {
		t.Errorf("second follow msg = %v, want Unfollowed user", resp.body["msg"])
	}
	if got := followers(); len(got) != 0 {
		t.Errorf("followers after unfollow = %v, want empty", got)
	}

	resp = call(t, app, http.MethodPost, "/api/follow/"+aliceID, nil, alice)
	if resp.status != http.StatusBadRequest || resp.body["code"] != "self_follow_not_allowed" {
		t.Errorf("self follow = %d %v", resp.status, resp.body)
	}
}

func TestErrorStatuses(t *testing.T) {
	app := newTestApp(t)
	alice, _ := signup(t, app, "alice")
	bob, _ := signup(t, app, "bob")

	created := call(t, app, http.MethodPost, "/api/posts", map[string]string{"content": "mine"}, alice)
	postID := created.body["post"].(map[string]interface{})["_id"].(string)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		token  string
		want   int
	}{
		{"malformed id", http.MethodPost, "/api/posts/nope/like", nil, alice, http.StatusBadRequest},
		{"unknown post", http.MethodPost, "/api/posts/" + primitive.NewObjectID().Hex() + "/like", nil, alice, http.StatusNotFound},
		{"edit other's post", http.MethodPut, "/api/posts/" + postID, map[string]string{"content": "x"}, bob, http.StatusForbidden},
		{"delete other's post", http.MethodDelete, "/api/posts/" + postID, nil, bob, http.StatusForbidden},
		{"empty post", http.MethodPost, "/api/posts", map[string]string{"content": ""}, alice, http.StatusBadRequest},
		{"empty search", http.MethodGet, "/api/search?query=", nil, alice, http.StatusBadRequest},
		{"duplicate username", http.MethodPost, "/api/register", map[string]string{"username": "alice", "email": "a2@x.com", "password": "p"}, "", http.StatusConflict},
		{"unknown route", http.MethodGet, "/api/nothing", nil, alice, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, app, tt.method, tt.path, tt.body, tt.token)
			if resp.status != tt.want {
				t.Errorf("status = %d, want %d (body %v)", resp.status, tt.want, resp.body)
			}
		})
	}
}

func TestLikeAndComment(t *testing.T) {
	app := newTestApp(t)
	alice, _ := signup(t, app, "alice")
	bob, _ := signup(t, app, "bob")

	created := call(t, app, http.MethodPost, "/api/posts", map[string]string{"content": "hello"}, alice)
	postID := created.body["post"].(map[string]interface{})["_id"].(string)

	like := call(t, app, http.MethodPost, "/api/posts/"+postID+"/like", nil, bob)
	if like.body["likes"] != float64(1) || like.body["msg"] != "Post liked" {
		t.Errorf("like = %v", like.body)
	}

	comment := call(t, app, http.MethodPost, "/api/posts/"+postID+"/comments", map[string]string{"text": "nice"}, bob)
	if comment.status != http.StatusCreated {
		t.Fatalf("comment status = %d, body %v", comment.status, comment.body)
	}
	commentID := comment.body["comment"].(map[string]interface{})["_id"].(string)

	del := call(t, app, http.MethodDelete, "/api/comments/"+commentID, nil, alice)
	if del.status != http.StatusForbidden {
		t.Errorf("delete by post owner status = %d, want 403", del.status)
	}
	del = call(t, app, http.MethodDelete, "/api/comments/"+commentID, nil, bob)
	if del.status != http.StatusOK {
		t.Errorf("delete by author status = %d, want 200", del.status)
	}

	search := call(t, app, http.MethodGet, "/api/search?query=HELL", nil, bob)
	if posts := search.body["posts"].([]interface{}); len(posts) != 1 {
		t.Errorf("search posts = %v, want one", posts)
	}
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	resp := call(t, app, http.MethodGet, "/healthz", nil, "")
	if resp.status != http.StatusOK || resp.body["success"] != true {
		t.Errorf("healthz = %d %v", resp.status, resp.body)
	}
}
