package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"user-api/internal/domain"
	"user-api/internal/repository"
	"user-api/internal/service"
)

const (
	testEmailRegexp    = `^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`
	testPasswordRegexp = `^[A-Za-z][A-Za-z0-9]{7,}$`
)

type mockUserRepo struct {
	mu           sync.Mutex
	usersByID    map[string]domain.User
	usersByEmail map[string]string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[string]domain.User),
		usersByEmail: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByEmail[user.Email]; ok {
		return domain.User{}, repository.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.Created = now
	user.Modified = now
	user.LastLogin = now
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return user, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.usersByEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return m.usersByID[id], nil
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.usersByEmail[email]
	return ok, nil
}

func (m *mockUserRepo) Update(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByID[user.ID]; !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	m.usersByID[user.ID] = user
	return user, nil
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := newMockUserRepo()
	jwtSvc := service.NewJWTService("secret", time.Hour)
	userSvc, err := service.NewUserService(zap.NewNop(), repo, service.NewPasswordHasher(), jwtSvc, testEmailRegexp, testPasswordRegexp)
	if err != nil {
		t.Fatalf("new user service: %v", err)
	}
	h := NewUserHandler(zap.NewNop(), userSvc)
	return NewRouter(zap.NewNop(), h)
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func registerPayload() map[string]any {
	return map[string]any{
		"name":     "Jorge Marquez",
		"email":    "jorge@marquez.org",
		"password": "Hunter22",
		"phones": []map[string]string{
			{"number": "1234567", "citycode": "1", "contrycode": "57"},
		},
	}
}

func TestUserHandlerRegister_Success(t *testing.T) {
	r := setupRouter(t)

	rec := performRequest(r, http.MethodPost, "/api/users/register", registerPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID == "" {
		t.Fatalf("expected generated id")
	}
	if resp.Name != "Jorge Marquez" || resp.Email != "jorge@marquez.org" {
		t.Fatalf("expected echoed name and email, got %+v", resp)
	}
	if !resp.IsActive {
		t.Fatalf("expected isactive true")
	}
	if len(strings.Split(resp.Token, ".")) != 3 {
		t.Fatalf("expected three-segment jwt, got %q", resp.Token)
	}
	if len(resp.Phones) != 1 || resp.Phones[0].CountryCode != "57" {
		t.Fatalf("expected echoed phones, got %+v", resp.Phones)
	}
	if _, err := time.Parse(timeLayout, resp.Created); err != nil {
		t.Fatalf("expected created in %s format, got %q", timeLayout, resp.Created)
	}
	if resp.Created != resp.LastLogin {
		t.Fatalf("expected created == last_login, got %q / %q", resp.Created, resp.LastLogin)
	}
}

func TestUserHandlerRegister_DuplicateEmail(t *testing.T) {
	r := setupRouter(t)

	rec := performRequest(r, http.MethodPost, "/api/users/register", registerPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	rec = performRequest(r, http.MethodPost, "/api/users/register", registerPayload())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Mensaje != "El correo ya registrado" {
		t.Fatalf("unexpected mensaje: %q", resp.Mensaje)
	}
}

func TestUserHandlerRegister_InvalidEmailFormat(t *testing.T) {
	r := setupRouter(t)

	payload := registerPayload()
	payload["email"] = "invalid-email"

	rec := performRequest(r, http.MethodPost, "/api/users/register", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Mensaje != "El formato del correo es invalido" {
		t.Fatalf("unexpected mensaje: %q", resp.Mensaje)
	}
}

func TestUserHandlerRegister_MissingFieldsAggregated(t *testing.T) {
	r := setupRouter(t)

	rec := performRequest(r, http.MethodPost, "/api/users/register", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	expected := "El nombre es obligatorio, El correo es obligatorio, La contraseña es obligatoria"
	if resp.Mensaje != expected {
		t.Fatalf("expected aggregated mensaje %q, got %q", expected, resp.Mensaje)
	}
}

func TestUserHandlerRegister_NullPhones(t *testing.T) {
	r := setupRouter(t)

	payload := registerPayload()
	delete(payload, "phones")

	rec := performRequest(r, http.MethodPost, "/api/users/register", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Mensaje != "La lista de telefonos no puede ser null" {
		t.Fatalf("unexpected mensaje: %q", resp.Mensaje)
	}
}

func TestUserHandlerRegister_EmptyPhonesAllowed(t *testing.T) {
	r := setupRouter(t)

	payload := registerPayload()
	payload["phones"] = []map[string]string{}

	rec := performRequest(r, http.MethodPost, "/api/users/register", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 with empty phones, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUserHandlerRegister_MalformedBody(t *testing.T) {
	r := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users/register", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Mensaje != "Cuerpo de la peticion invalido" {
		t.Fatalf("unexpected mensaje: %q", resp.Mensaje)
	}
}
