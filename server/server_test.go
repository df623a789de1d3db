package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/attendly/go-workforce-server/auth"
	"github.com/attendly/go-workforce-server/cache"
	"github.com/attendly/go-workforce-server/companies"
	fakecompanyrepo "github.com/attendly/go-workforce-server/companies/repofake"
	"github.com/attendly/go-workforce-server/internal/config"
	"github.com/attendly/go-workforce-server/server"
	"github.com/attendly/go-workforce-server/sessions"
	"github.com/attendly/go-workforce-server/tenant"
	"github.com/attendly/go-workforce-server/token"
	"github.com/attendly/go-workforce-server/users"
	fakeuserrepo "github.com/attendly/go-workforce-server/users/repofake"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	testSecret       = "test-secret"
	testCompanyID    = "company-1"
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "Password123"
	testBcryptCost   = 4
)

type testFixture struct {
	userRepo    *fakeuserrepo.FakeUserRepo
	companyRepo *fakecompanyrepo.FakeCompanyRepo
	store       *cache.MemoryStore
	service     *auth.Service
	issuer      *token.Issuer
	ts          *httptest.Server
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	ur := fakeuserrepo.NewFakeUserRepo()
	cr := fakecompanyrepo.NewFakeCompanyRepo()
	store := cache.NewMemoryStore()

	issuer, err := token.New(testSecret, token.WithRefreshSecret("test-refresh-secret"))
	require.NoError(t, err)

	service, err := auth.NewService(
		auth.Repos{Users: ur, Companies: cr},
		issuer,
		sessions.NewStore(store, time.Hour),
		cache.NewUserCache(store, time.Hour),
		auth.WithBcryptCost(testBcryptCost),
	)
	require.NoError(t, err)

	resolver, err := tenant.NewResolver(cr)
	require.NoError(t, err)

	srv, err := server.New(config.New(), zerolog.Nop(), server.Deps{
		Auth:     service,
		Tokens:   issuer,
		Resolver: resolver,
		Cache:    store,
	})
	require.NoError(t, err)

	cr.Upsert(&companies.Company{
		ID:   testCompanyID,
		Name: "Acme Staffing",
		Subscription: &companies.Subscription{
			CompanyID: testCompanyID,
			Status:    companies.SubscriptionActive,
		},
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testFixture{
		userRepo:    ur,
		companyRepo: cr,
		store:       store,
		service:     service,
		issuer:      issuer,
		ts:          ts,
	}
}

func (f *testFixture) createTestUser(t *testing.T, email string, role users.RoleType, companyID string) *users.User {
	t.Helper()

	hash, err := users.HashPassword(testUserPassword, testBcryptCost)
	require.NoError(t, err)

	user := &users.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     "John Doe",
		Role:         role,
		CompanyID:    companyID,
		Active:       true,
	}
	require.NoError(t, f.userRepo.Create(t.Context(), user))
	return user
}

func (f *testFixture) post(t *testing.T, path, bearer string, body any) (*http.Response, envelope) {
	t.Helper()
	return f.do(t, http.MethodPost, path, bearer, body)
}

func (f *testFixture) get(t *testing.T, path, bearer string) (*http.Response, envelope) {
	t.Helper()
	return f.do(t, http.MethodGet, path, bearer, nil)
}

func (f *testFixture) do(t *testing.T, method, path, bearer string, body any) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.ts.URL+path, &buf)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func (f *testFixture) login(t *testing.T, email, password string) auth.LoginResult {
	t.Helper()

	resp, env := f.post(t, "/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result auth.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	return result
}

func TestHealthz(t *testing.T) {
	f := setupTestFixture(t)

	resp, env := f.get(t, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)
}

func TestLoginEndpoint(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, testUserEmail, users.RoleEmployee, testCompanyID)

	t.Run("success", func(t *testing.T) {
		resp, env := f.post(t, "/auth/login", "", map[string]string{
			"email": testUserEmail, "password": testUserPassword,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.True(t, env.Success)
		require.Equal(t, "Login successful", env.Message)

		var result auth.LoginResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		require.NotEmpty(t, result.AccessToken)
		require.NotEmpty(t, result.RefreshToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, env := f.post(t, "/auth/login", "", map[string]string{
			"email": testUserEmail, "password": "WrongPassword1",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.False(t, env.Success)
		require.Equal(t, "Invalid credentials", env.Message)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, _ := f.post(t, "/auth/login", "", map[string]string{"email": testUserEmail})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestRegisterEndpoint(t *testing.T) {
	f := setupTestFixture(t)

	resp, env := f.post(t, "/auth/register", "", map[string]string{
		"email":     "new.hire@example.com",
		"password":  testUserPassword,
		"fullName":  "New Hire",
		"companyId": testCompanyID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, env.Success)

	// Re-registering the same email conflicts.
	resp, _ = f.post(t, "/auth/register", "", map[string]string{
		"email":     "new.hire@example.com",
		"password":  testUserPassword,
		"companyId": testCompanyID,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRefreshRotationOverHTTP(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, testUserEmail, users.RoleEmployee, testCompanyID)

	login := f.login(t, testUserEmail, testUserPassword)

	resp, env := f.post(t, "/auth/refresh", "", map[string]string{"refreshToken": login.RefreshToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	require.NotEqual(t, login.RefreshToken, pair.RefreshToken)

	// Replay of the consumed token is rejected.
	resp, env = f.post(t, "/auth/refresh", "", map[string]string{"refreshToken": login.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid refresh token", env.Message)
}

func TestChangePasswordAndLogout(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, testUserEmail, users.RoleEmployee, testCompanyID)

	login := f.login(t, testUserEmail, testUserPassword)

	resp, _ := f.post(t, "/auth/change-password", login.AccessToken, map[string]string{
		"currentPassword": testUserPassword,
		"newPassword":     "NewPassword456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.post(t, "/auth/logout", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The old refresh token died with the session.
	resp, _ = f.post(t, "/auth/refresh", "", map[string]string{"refreshToken": login.RefreshToken})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	f.login(t, testUserEmail, "NewPassword456")
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	f := setupTestFixture(t)

	for _, path := range []string{"/auth/change-password", "/auth/logout"} {
		resp, env := f.post(t, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		require.False(t, env.Success)
	}

	resp, _ := f.get(t, "/users/me", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.get(t, "/users/me", "garbage-token")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMeEndpoint(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, testUserEmail, users.RoleEmployee, testCompanyID)

	login := f.login(t, testUserEmail, testUserPassword)

	resp, env := f.get(t, "/users/me", login.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got users.User
	require.NoError(t, json.Unmarshal(env.Data, &got))
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, testUserEmail, got.Email)
	require.Empty(t, got.PasswordHash)
}

func TestCurrentCompanyEndpoint(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, testUserEmail, users.RoleEmployee, testCompanyID)

	login := f.login(t, testUserEmail, testUserPassword)

	resp, env := f.get(t, "/companies/current", login.AccessToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tc tenant.Context
	require.NoError(t, json.Unmarshal(env.Data, &tc))
	require.Equal(t, testCompanyID, tc.ID)
	require.Equal(t, "Acme Staffing", tc.Name)
}

func TestSuspendedTenantBlocked(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, testUserEmail, users.RoleEmployee, testCompanyID)

	login := f.login(t, testUserEmail, testUserPassword)

	// Suspend the company after login; the next tenant-scoped request fails.
	f.companyRepo.Upsert(&companies.Company{
		ID:   testCompanyID,
		Name: "Acme Staffing",
		Subscription: &companies.Subscription{
			CompanyID: testCompanyID,
			Status:    companies.SubscriptionPastDue,
		},
	})

	resp, env := f.get(t, "/companies/current", login.AccessToken)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "Company subscription is not active", env.Message)
}

func TestDeactivateUserEndpoint(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, "admin@example.com", users.RoleCompanyAdmin, testCompanyID)
	target := f.createTestUser(t, testUserEmail, users.RoleEmployee, testCompanyID)

	adminLogin := f.login(t, "admin@example.com", testUserPassword)

	t.Run("employee cannot deactivate", func(t *testing.T) {
		f.createTestUser(t, "peer@example.com", users.RoleEmployee, testCompanyID)
		peerLogin := f.login(t, "peer@example.com", testUserPassword)

		resp, _ := f.post(t, fmt.Sprintf("/users/%s/deactivate", target.ID), peerLogin.AccessToken, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("cross-tenant target reads as not found", func(t *testing.T) {
		f.companyRepo.Upsert(&companies.Company{
			ID:           "company-2",
			Name:         "Other Co",
			Subscription: &companies.Subscription{CompanyID: "company-2", Status: companies.SubscriptionActive},
		})
		outsider := f.createTestUser(t, "outsider@example.com", users.RoleEmployee, "company-2")

		resp, _ := f.post(t, fmt.Sprintf("/users/%s/deactivate", outsider.ID), adminLogin.AccessToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("admin deactivates own employee", func(t *testing.T) {
		resp, _ := f.post(t, fmt.Sprintf("/users/%s/deactivate", target.ID), adminLogin.AccessToken, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// The deactivated employee can no longer log in.
		resp, env := f.post(t, "/auth/login", "", map[string]string{
			"email": testUserEmail, "password": testUserPassword,
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "Account is deactivated", env.Message)
	})
}

func TestLoginRateLimit(t *testing.T) {
	t.Setenv("LOGIN_RATE_LIMIT", "3")
	f := setupTestFixture(t)

	body := map[string]string{"email": "nobody@example.com", "password": "WrongPassword1"}
	for i := 0; i < 3; i++ {
		resp, _ := f.post(t, "/auth/login", "", body)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, env := f.post(t, "/auth/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.Equal(t, "Too many requests", env.Message)
}
