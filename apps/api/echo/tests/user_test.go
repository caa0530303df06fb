package tests

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tawaslapp/tawasl/core/user"
	emailsvc "github.com/tawaslapp/tawasl/services/email"
)

func sessionCookie(rec interface{ Result() *http.Response }) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == conf.Server.SessionCookieName {
			return c
		}
	}
	return nil
}

func Test_userApi_register(t *testing.T) {
	setup(t)

	createUser(t, "taken", "taken@test.cd", "secret", true, false)
	createUser(t, "pending", "pending@test.cd", "secret", false, false)

	tests := []httpTest{
		{
			name: "empty payload", body: []byte("{}"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]interface{}{
				"error": "validation failed",
				"details": map[string]string{
					"username": "this field is required",
					"email":    "this field is required",
					"password": "this field is required",
				},
			}),
		},
		{
			name: "email taken", body: []byte(`{"username":"fresh","email":"taken@test.cd","password":"secret"}`),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Email already registered"}),
		},
		{
			name: "username taken", body: []byte(`{"username":"taken","email":"fresh@test.cd","password":"secret"}`),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "Username already taken"}),
		},
		{
			name: "registered", body: []byte(`{"username":"fresh","email":"fresh@test.cd","password":"secret"}`),
			wantCode: http.StatusCreated, wantData: marchallObj(t, map[string]string{"message": "Verification code sent to email."}),
		},
		{
			name: "pending registration refreshed", body: []byte(`{"username":"pending2","email":"pending@test.cd","password":"secret"}`),
			wantCode: http.StatusCreated, wantData: marchallObj(t, map[string]string{"message": "Verification code sent to email."}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/register", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// one code mail per successful registration
	if n := len(emailsvc.SentMessages); n != 2 {
		t.Errorf("SentMessages = %d; want 2", n)
	}

	usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "fresh@test.cd"})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if usr.Verified {
		t.Error("new registration should not be verified")
	}
	if len(usr.VerificationCode) != 6 {
		t.Errorf("VerificationCode = %q; want a 6-digit code", usr.VerificationCode)
	}

	pending, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "pending@test.cd"})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if pending.Username != "pending2" {
		t.Errorf("Username = %q; want refreshed to %q", pending.Username, "pending2")
	}
}

func Test_userApi_verifyEmail(t *testing.T) {
	setup(t)

	now := time.Now().UTC()
	pending := createUser(t, "pending", "pending@test.cd", "secret", false, false)
	pending.VerificationCode = "123456"
	pending.VerificationExpires = now.Add(15 * time.Minute)
	if _, err := usrRepo.UpdateUser(context.Background(), pending); err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}

	expired := createUser(t, "late", "late@test.cd", "secret", false, false)
	expired.VerificationCode = "654321"
	expired.VerificationExpires = now.Add(-1 * time.Minute)
	if _, err := usrRepo.UpdateUser(context.Background(), expired); err != nil {
		t.Fatalf("UpdateUser() failed: %v", err)
	}

	createUser(t, "done", "done@test.cd", "secret", true, false)

	tests := []httpTest{
		{
			name: "unknown email", body: []byte(`{"email":"lol@test.cd","code":"123456"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "User not found"}),
		},
		{
			name: "already verified", body: []byte(`{"email":"done@test.cd","code":"123456"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Already verified"}),
		},
		{
			name: "wrong code", body: []byte(`{"email":"pending@test.cd","code":"000000"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Invalid code"}),
		},
		{
			name: "expired code", body: []byte(`{"email":"late@test.cd","code":"654321"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Verification code expired"}),
		},
		{
			name: "verified", body: []byte(`{"email":"pending@test.cd","code":"123456"}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, map[string]string{"message": "Email verified"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/verify-email", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: "pending@test.cd"})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if !usr.Verified {
		t.Error("user should be verified")
	}
	if usr.VerificationCode != "" {
		t.Error("verification code should be cleared")
	}
}

func Test_userApi_login(t *testing.T) {
	setup(t)

	usr := createUser(t, "awe", "awe@test.cd", "secret", true, false)
	createUser(t, "pending", "pending@test.cd", "secret", false, false)
	createUser(t, "goog", "goog@test.cd", "", true, false) // oauth-only, no local password

	tests := []httpTest{
		{
			name: "unknown email", body: []byte(`{"email":"lol@test.cd","password":"secret"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Invalid credentials"}),
		},
		{
			name: "wrong password", body: []byte(`{"email":"awe@test.cd","password":"lol"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Invalid credentials"}),
		},
		{
			name: "no local password", body: []byte(`{"email":"goog@test.cd","password":"secret"}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "Invalid credentials"}),
		},
		{
			name: "unverified", body: []byte(`{"email":"pending@test.cd","password":"secret"}`),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "Please verify your email before logging in."}),
		},
		{
			name: "logged in", body: []byte(`{"email":"awe@test.cd","password":"secret"}`),
			wantCode: http.StatusOK, wantData: marchallObj(t, usr), extra: "cookie",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/login", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			cookie := sessionCookie(rec)
			if tt.extra == "cookie" {
				if cookie == nil || cookie.Value == "" {
					t.Error("session cookie should be set")
				} else if !cookie.HttpOnly {
					t.Error("session cookie should be HttpOnly")
				}
			} else if cookie != nil {
				t.Error("session cookie should not be set")
			}
		})
	}
}

func Test_userApi_logout(t *testing.T) {
	setup(t)

	req, rec := newRequest(http.MethodPost, "/api/logout")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, map[string]string{"message": "Logged out"}),
	}, rec)

	cookie := sessionCookie(rec)
	if cookie == nil {
		t.Fatal("session cookie should be cleared")
	}
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Error("session cookie should be expired")
	}
}

func Test_userApi_me(t *testing.T) {
	setup(t)

	usr := createUser(t, "awe", "awe@test.cd", "secret", true, false)
	ghost := createUser(t, "ghost", "ghost@test.cd", "secret", true, false)
	ghostToken := getToken(t, ghost)
	if err := usrRepo.DeleteUsersByID(context.Background(), ghost.ID); err != nil {
		t.Fatalf("DeleteUsersByID() failed: %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "deleted user", token: ghostToken, wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "user not authenticated"}),
		},
		{name: "me", token: getToken(t, usr), wantCode: http.StatusOK, wantData: marchallObj(t, usr)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/me", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_googleLogin(t *testing.T) {
	setup(t)

	req, rec := newRequest(http.MethodGet, "/api/auth/google")
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("code = %v; want %v", rec.Code, http.StatusTemporaryRedirect)
	}
	loc := rec.Header().Get("Location")
	if !strings.Contains(loc, "accounts.google.com") || !strings.Contains(loc, "state=") {
		t.Errorf("Location = %q; want a Google consent URL with a state param", loc)
	}

	var state *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "oauthstate" {
			state = c
		}
	}
	if state == nil || state.Value == "" {
		t.Fatal("oauthstate cookie should be set")
	}
	if !strings.Contains(loc, "state="+state.Value) {
		t.Error("redirect state should match the cookie")
	}
}

func Test_userApi_googleCallback_invalidState(t *testing.T) {
	setup(t)

	tests := []httpTest{
		{name: "no state cookie", path: "/api/auth/google/callback?state=lol&code=abc"},
		{name: "state mismatch", path: "/api/auth/google/callback?state=lol&code=abc", extra: "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			if tt.extra != nil {
				req.AddCookie(&http.Cookie{Name: "oauthstate", Value: tt.extra.(string)})
			}
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{
				wantCode: http.StatusBadRequest,
				wantData: marchallObj(t, httpErr{Error: "invalid oauth state"}),
			}, rec)
		})
	}
}
