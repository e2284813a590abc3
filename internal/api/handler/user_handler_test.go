package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sirpyerre/useradmin/internal/api/middleware"
	"github.com/sirpyerre/useradmin/internal/core/domain"
	"github.com/sirpyerre/useradmin/internal/core/ports"
)

type stubUserService struct {
	listFn   func(ctx context.Context) ([]*domain.User, error)
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	createFn func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error)
	updateFn func(ctx context.Context, in ports.UpdateUserInput) (*domain.User, error)
	issueFn  func(ctx context.Context, id string) (string, error)
	deleteFn func(ctx context.Context, in ports.DeleteUserInput) (bool, error)
}

func (s *stubUserService) Bootstrap(context.Context, ports.BootstrapInput) (*domain.User, error) {
	return nil, errors.New("not used by handlers")
}

func (s *stubUserService) List(ctx context.Context) ([]*domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) Update(ctx context.Context, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, in)
}

func (s *stubUserService) IssueDeleteToken(ctx context.Context, id string) (string, error) {
	return s.issueFn(ctx, id)
}

func (s *stubUserService) Delete(ctx context.Context, in ports.DeleteUserInput) (bool, error) {
	return s.deleteFn(ctx, in)
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func TestUserHandler_List(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		listFn: func(ctx context.Context) ([]*domain.User, error) {
			return []*domain.User{
				{ID: "u2", Username: "bob", Roles: []string{domain.RoleUser}},
				{ID: "u3", Username: "carol", Email: "c@example.com", Roles: []string{domain.RoleUser}},
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin/users", nil), rec)
	if err := NewUserHandler(stub, zerolog.Nop()).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp listUsersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Total != 2 || resp.Data[0].Username != "bob" || resp.Data[1].Username != "carol" {
		t.Fatalf("unexpected list: %+v", resp)
	}
	if resp.Data[0].Links.Self != "/admin/users/u2" {
		t.Errorf("unexpected self link %q", resp.Data[0].Links.Self)
	}
}

func TestUserHandler_List_EmptyIsArray(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		listFn: func(ctx context.Context) ([]*domain.User, error) { return nil, nil },
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/admin/users", nil), rec)
	if err := NewUserHandler(stub, zerolog.Nop()).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Fatalf("expected empty array, got %s", rec.Body.String())
	}
}

func TestUserHandler_Create_Success(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			if in.Username != "dan" || in.Email != "d@example.com" || in.Password != "pw" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u4", Username: in.Username, Email: in.Email, Roles: []string{domain.RoleUser}}, nil
		},
	}

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest(http.MethodPost, "/admin/users",
		`{"username":" dan ","email":"d@example.com","password":"pw","is_admin":true,"roles":["admin"]}`), rec)
	if err := NewUserHandler(stub, zerolog.Nop()).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != "/admin/users/u4" {
		t.Errorf("unexpected Location %q", loc)
	}
}

func TestUserHandler_Create_ValidationFailsBeforeService(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	c := e.NewContext(jsonRequest(http.MethodPost, "/admin/users", `{"username":"","email":"nope","password":"pw"}`), httptest.NewRecorder())
	if err := NewUserHandler(stub, zerolog.Nop()).Create(c); !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestUserHandler_Get_AdminForbidden(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		getFn: func(ctx context.Context, id string) (*domain.User, error) {
			return nil, domain.ErrForbidden
		},
	}

	c := withID(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder()), "u1")
	if err := NewUserHandler(stub, zerolog.Nop()).Get(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestUserHandler_Update_PasswordOptional(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantPass bool
	}{
		{"omitted", `{"username":"bob","email":"b@example.com"}`, false},
		{"empty", `{"username":"bob","email":"b@example.com","password":""}`, false},
		{"supplied", `{"username":"bob","email":"b@example.com","password":"new"}`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			stub := &stubUserService{
				updateFn: func(ctx context.Context, in ports.UpdateUserInput) (*domain.User, error) {
					if in.ID != "u2" {
						t.Fatalf("expected id from path, got %q", in.ID)
					}
					if (in.Password != nil) != tc.wantPass {
						t.Fatalf("password supplied=%v, want %v", in.Password != nil, tc.wantPass)
					}
					return &domain.User{ID: in.ID, Username: in.Username, Email: in.Email}, nil
				},
			}

			rec := httptest.NewRecorder()
			c := withID(e.NewContext(jsonRequest(http.MethodPut, "/", tc.body), rec), "u2")
			if err := NewUserHandler(stub, zerolog.Nop()).Update(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		})
	}
}

func TestUserHandler_DeleteToken(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		issueFn: func(ctx context.Context, id string) (string, error) {
			return "tok-" + id, nil
		},
	}

	rec := httptest.NewRecorder()
	c := withID(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), "u2")
	if err := NewUserHandler(stub, zerolog.Nop()).DeleteToken(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp deleteTokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "tok-u2" || resp.DeleteURL != "/admin/users/u2/delete" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestUserHandler_Delete_TokenSources(t *testing.T) {
	form := url.Values{"_token": {"from-form"}}.Encode()

	cases := []struct {
		name  string
		req   func() *http.Request
		token string
	}{
		{"form", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
			return r
		}, "from-form"},
		{"json", func() *http.Request {
			return jsonRequest(http.MethodPost, "/", `{"token":"from-json"}`)
		}, "from-json"},
		{"header", func() *http.Request {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.Header.Set(HeaderDeleteToken, "from-header")
			return r
		}, "from-header"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEcho()
			stub := &stubUserService{
				deleteFn: func(ctx context.Context, in ports.DeleteUserInput) (bool, error) {
					if in.ID != "u2" || in.Token != tc.token {
						t.Fatalf("unexpected input: %+v", in)
					}
					return true, nil
				},
			}

			rec := httptest.NewRecorder()
			c := withID(e.NewContext(tc.req(), rec), "u2")
			if err := NewUserHandler(stub, zerolog.Nop()).Delete(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/admin/users" {
				t.Fatalf("expected 303 to /admin/users, got %d %q", rec.Code, rec.Header().Get(echo.HeaderLocation))
			}
		})
	}
}

func TestUserHandler_Delete_MismatchStillRedirects(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, in ports.DeleteUserInput) (bool, error) {
			return false, nil
		},
	}

	rec := httptest.NewRecorder()
	c := withID(e.NewContext(jsonRequest(http.MethodPost, "/", `{"token":"wrong"}`), rec), "u2")
	if err := NewUserHandler(stub, zerolog.Nop()).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
}

func TestUserHandler_Delete_AdminForbidden(t *testing.T) {
	e := newEcho()
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, in ports.DeleteUserInput) (bool, error) {
			return false, domain.ErrForbidden
		},
	}

	rec := httptest.NewRecorder()
	c := withID(e.NewContext(jsonRequest(http.MethodPost, "/", `{"token":"any"}`), rec), "u1")
	if err := NewUserHandler(stub, zerolog.Nop()).Delete(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if rec.Code == http.StatusSeeOther {
		t.Fatal("forbidden delete must not redirect")
	}
}

func TestUserHandler_WritesLogActingAdmin(t *testing.T) {
	var buf bytes.Buffer
	e := newEcho()
	stub := &stubUserService{
		createFn: func(ctx context.Context, in ports.CreateUserInput) (*domain.User, error) {
			return &domain.User{ID: "u4", Username: in.Username}, nil
		},
		deleteFn: func(ctx context.Context, in ports.DeleteUserInput) (bool, error) {
			return true, nil
		},
	}
	h := NewUserHandler(stub, zerolog.New(&buf))

	c := e.NewContext(jsonRequest(http.MethodPost, "/admin/users", `{"username":"dan","password":"pw"}`), httptest.NewRecorder())
	c.Set(middleware.CtxUserID, "u1")
	c.Set(middleware.CtxUsername, "alice")
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}

	c = withID(e.NewContext(jsonRequest(http.MethodPost, "/", `{"token":"ok"}`), httptest.NewRecorder()), "u4")
	c.Set(middleware.CtxUserID, "u1")
	c.Set(middleware.CtxUsername, "alice")
	if err := h.Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d: %q", len(lines), buf.String())
	}
	for i, action := range []string{"create", "delete"} {
		var entry map[string]any
		if err := json.Unmarshal([]byte(lines[i]), &entry); err != nil {
			t.Fatalf("invalid entry %q: %v", lines[i], err)
		}
		if entry["action"] != action || entry["user_id"] != "u4" || entry["actor_id"] != "u1" || entry["actor"] != "alice" {
			t.Errorf("unexpected %s entry: %v", action, entry)
		}
	}
}

func TestUserHandler_TokenMismatchNotLogged(t *testing.T) {
	var buf bytes.Buffer
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, in ports.DeleteUserInput) (bool, error) {
			return false, nil
		},
	}

	c := withID(newEcho().NewContext(jsonRequest(http.MethodPost, "/", `{"token":"bad"}`), httptest.NewRecorder()), "u4")
	if err := NewUserHandler(stub, zerolog.New(&buf)).Delete(c); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no audit entry, got %q", buf.String())
	}
}
