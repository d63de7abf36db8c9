package handlers_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/ase-portfolio/webapp/internal/app"
	"github.com/ase-portfolio/webapp/internal/config"
	"github.com/ase-portfolio/webapp/internal/db"
	"github.com/ase-portfolio/webapp/internal/models"
	"github.com/ase-portfolio/webapp/internal/security"
)

// captureSender records deliveries; it can be told to fail while still
// recording, mimicking a mail relay that accepts and then bounces.
type captureSender struct {
	mu       sync.Mutex
	fail     bool
	messages []string
}

func (s *captureSender) Send(_ context.Context, recipient, subject, body string) error {
	s.mu.Lock()
	s.messages = append(s.messages, body)
	s.mu.Unlock()
	if s.fail {
		return fmt.Errorf("capture sender: delivery refused for %s", recipient)
	}
	return nil
}

// lastCode extracts the 6-digit code from the most recent delivery.
func (s *captureSender) lastCode(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) == 0 {
		t.Fatalf("no deliveries captured")
	}
	body := s.messages[len(s.messages)-1]
	idx := strings.LastIndex(body, ": ")
	if idx < 0 || len(body[idx+2:]) != 6 {
		t.Fatalf("could not extract code from %q", body)
	}
	return body[idx+2:]
}

// testApp runs the full router over httptest with a cookie-jar client that
// does not follow redirects, so tests can assert Location headers.
type testApp struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	conn   *gorm.DB
	sender *captureSender
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()

	cfg := config.Default()
	cfg.DatabaseDSN = "file:" + filepath.Join(t.TempDir(), "test.db")
	cfg.Session.Secret = "test-secret"
	if mutate != nil {
		mutate(&cfg)
	}

	conn, errOpen := db.Open(cfg.DatabaseDSN)
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	sender := &captureSender{}
	engine, errRouter := app.NewRouter(cfg, conn, sender)
	if errRouter != nil {
		t.Fatalf("build router: %v", errRouter)
	}

	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	jar, errJar := cookiejar.New(nil)
	if errJar != nil {
		t.Fatalf("cookie jar: %v", errJar)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testApp{t: t, srv: srv, client: client, conn: conn, sender: sender}
}

func (a *testApp) get(path string) *http.Response {
	a.t.Helper()
	resp, err := a.client.Get(a.srv.URL + path)
	if err != nil {
		a.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (a *testApp) postForm(path string, form url.Values) *http.Response {
	a.t.Helper()
	resp, err := a.client.PostForm(a.srv.URL+path, form)
	if err != nil {
		a.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

func wantRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

// createUser inserts a user directly into the store.
func createUser(t *testing.T, conn *gorm.DB, username, email, password, role string, active bool) uint64 {
	t.Helper()
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	user := models.User{Username: username, Password: hash, Role: role, Active: active}
	if email != "" {
		user.Email = &email
	}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user %s: %v", username, errCreate)
	}
	return user.ID
}

// login posts credentials and asserts the session was established.
func (a *testApp) login(email, password string) {
	a.t.Helper()
	resp := a.postForm("/login", url.Values{"email": {email}, "password": {password}})
	wantRedirect(a.t, resp, "/private")
}

func (a *testApp) findUser(id uint64) models.User {
	a.t.Helper()
	var user models.User
	if errFind := a.conn.First(&user, id).Error; errFind != nil {
		a.t.Fatalf("find user %d: %v", id, errFind)
	}
	return user
}
