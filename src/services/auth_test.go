package services

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/theleywin/friendlynk/src/ecode"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice")

	stored, err := f.repo.Users.FindByID(ctx, alice.Id)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if stored.Password == "secret123" {
		t.Fatal("password stored in plain text")
	}
	if cost, err := bcrypt.Cost([]byte(stored.Password)); err != nil || cost != passwordCost {
		t.Errorf("bcrypt cost = %d, %v, want %d", cost, err, passwordCost)
	}

	tests := []struct {
		name  string
		input RegisterInput
		want  ecode.Kind
	}{
		{"duplicate username", RegisterInput{Username: "alice", Email: "new@x.com", Password: "p"}, ecode.Conflict},
		{"duplicate email", RegisterInput{Username: "alice2", Email: "alice@x.com", Password: "p"}, ecode.Conflict},
		{"missing username", RegisterInput{Email: "a@x.com", Password: "p"}, ecode.Validation},
		{"missing password", RegisterInput{Username: "zed", Email: "zed@x.com"}, ecode.Validation},
		{"bad email", RegisterInput{Username: "zed", Email: "zed", Password: "p"}, ecode.Validation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tt.input)
			wantKind(t, err, tt.want)
		})
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	user, token, err := f.svc.Login(ctx, LoginInput{Email: "alice@x.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.Id != alice.Id || user.Password != "" {
		t.Errorf("Login() user = %+v", user)
	}

	id, err := f.svc.Authenticate(token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if id != alice.Id {
		t.Errorf("Authenticate() = %v, want %v", id, alice.Id)
	}

	_, _, err = f.svc.Login(ctx, LoginInput{Email: "alice@x.com", Password: "wrong"})
	wantKind(t, err, ecode.InvalidCredential)

	_, _, err = f.svc.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret123"})
	wantKind(t, err, ecode.NotFound)

	_, _, err = f.svc.Login(ctx, LoginInput{Email: "alice@x.com"})
	wantKind(t, err, ecode.Validation)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Authenticate("")
	wantKind(t, err, ecode.Unauthorized)

	_, err = f.svc.Authenticate("abc.def.ghi")
	wantKind(t, err, ecode.InvalidToken)
}
