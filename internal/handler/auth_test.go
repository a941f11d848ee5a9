package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/shop-lottery/internal/cache"
	"github.com/iliyamo/shop-lottery/internal/config"
	"github.com/iliyamo/shop-lottery/internal/repository"
	"github.com/iliyamo/shop-lottery/internal/store"
)

// testBcryptCost keeps password hashing fast in tests.
const testBcryptCost = 4

type authFixture struct {
	handler  *AuthHandler
	users    *repository.UserRepo
	sessions *cache.Manager
	echo     *echo.Echo
}

func newAuthFixture() *authFixture {
	st := store.NewMemoryStore()
	users := repository.NewUserRepo(st)
	tokens := repository.NewTokenRepo(st)
	tickets := repository.NewTicketRepo(st)
	prizes := repository.NewPrizeRepo(st)
	sessions := cache.NewManager(users, tickets, prizes)
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 30,
		BcryptCost:     testBcryptCost,
	}
	return &authFixture{
		handler:  NewAuthHandler(cfg, users, tokens, sessions),
		users:    users,
		sessions: sessions,
		echo:     echo.New(),
	}
}

// postJSON builds an echo context for a JSON POST and the recorder that
// captures the handler's response.
func (f *authFixture) postJSON(body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return f.echo.NewContext(req, rec), rec
}

func (f *authFixture) register(t *testing.T, email, password string) authResp {
	t.Helper()
	c, rec := f.postJSON(`{"email":"` + email + `","password":"` + password + `"}`)
	if err := f.handler.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp authResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAuthFixture()

	resp := f.register(t, "alice@example.com", "secret123")
	if resp.User.ID == "" {
		t.Fatal("register returned empty user id")
	}
	if resp.Access.Token == "" || resp.Refresh.Token == "" {
		t.Fatal("register returned empty tokens")
	}
	if resp.User.Email != "alice@example.com" {
		t.Fatalf("email = %q", resp.User.Email)
	}

	t.Run("duplicate email conflicts", func(t *testing.T) {
		c, rec := f.postJSON(`{"email":"alice@example.com","password":"other"}`)
		if err := f.handler.Register(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("login with correct password", func(t *testing.T) {
		c, rec := f.postJSON(`{"email":"alice@example.com","password":"secret123"}`)
		if err := f.handler.Login(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var got authResp
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatal(err)
		}
		if got.User.ID != resp.User.ID {
			t.Fatalf("login uid %q != register uid %q", got.User.ID, resp.User.ID)
		}
	})

	t.Run("login with wrong password", func(t *testing.T) {
		c, rec := f.postJSON(`{"email":"alice@example.com","password":"nope"}`)
		if err := f.handler.Login(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("login with unknown email", func(t *testing.T) {
		c, rec := f.postJSON(`{"email":"ghost@example.com","password":"whatever"}`)
		if err := f.handler.Login(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRefreshRotation(t *testing.T) {
	f := newAuthFixture()
	first := f.register(t, "bob@example.com", "secret123")

	c, rec := f.postJSON(`{"refresh_token":"` + first.Refresh.Token + `"}`)
	if err := f.handler.Refresh(c); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body.String())
	}
	var second authResp
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatal(err)
	}
	if second.Refresh.Token == first.Refresh.Token {
		t.Fatal("refresh did not rotate the token")
	}
	if second.User.Email != "bob@example.com" {
		t.Fatalf("refreshed email = %q", second.User.Email)
	}

	t.Run("old token is dead after rotation", func(t *testing.T) {
		c, rec := f.postJSON(`{"refresh_token":"` + first.Refresh.Token + `"}`)
		if err := f.handler.Refresh(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("refresh-access does not rotate", func(t *testing.T) {
		c, rec := f.postJSON(`{"refresh_token":"` + second.Refresh.Token + `"}`)
		if err := f.handler.RefreshAccess(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		// The same refresh token must still work afterwards.
		c, rec = f.postJSON(`{"refresh_token":"` + second.Refresh.Token + `"}`)
		if err := f.handler.Refresh(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("refresh after refresh-access = %d", rec.Code)
		}
	})
}

func TestLogout(t *testing.T) {
	f := newAuthFixture()
	resp := f.register(t, "carol@example.com", "secret123")

	t.Run("revokes the presented refresh token", func(t *testing.T) {
		c, rec := f.postJSON(`{"refresh_token":"` + resp.Refresh.Token + `"}`)
		if err := f.handler.Logout(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusNoContent {
			t.Fatalf("logout status = %d, body %s", rec.Code, rec.Body.String())
		}
		c, rec = f.postJSON(`{"refresh_token":"` + resp.Refresh.Token + `"}`)
		if err := f.handler.Refresh(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("refresh after logout = %d, want 401", rec.Code)
		}
	})

	t.Run("bearer-only logout drops the session", func(t *testing.T) {
		login, rec := f.postJSON(`{"email":"carol@example.com","password":"secret123"}`)
		if err := f.handler.Login(login); err != nil {
			t.Fatal(err)
		}
		var fresh authResp
		if err := json.Unmarshal(rec.Body.Bytes(), &fresh); err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+fresh.Access.Token)
		out := httptest.NewRecorder()
		if err := f.handler.Logout(f.echo.NewContext(req, out)); err != nil {
			t.Fatal(err)
		}
		if out.Code != http.StatusNoContent {
			t.Fatalf("bearer logout status = %d", out.Code)
		}
	})

	t.Run("neither header nor body", func(t *testing.T) {
		c, rec := f.postJSON(`{}`)
		if err := f.handler.Logout(c); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}
