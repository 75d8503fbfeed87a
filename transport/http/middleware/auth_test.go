package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"roombook/config"
	"roombook/infras/jwt"
	jwtMocks "roombook/infras/jwt/mocks"
	"roombook/infras/otel/mocks"
	"roombook/permissions"
	"roombook/shared/constant"
	"roombook/transport/http/middleware"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testPermissions = `{
  "endpoints": [
    { "path": "/v1/rooms/{id}", "method": "GET", "skip": true },
    { "path": "/v1/rooms/{id}", "method": "DELETE", "permissions": ["admin"] },
    { "path": "/v1/reports", "method": "GET", "permissions": ["auditor"] }
  ]
}`

func newAuthRouter(t *testing.T, jwtService jwt.JWT) http.Handler {
	t.Helper()

	table, err := permissions.Parse([]byte(testPermissions))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.APIKey = "internal-key"

	mw := middleware.NewAuthRoleMiddleware(jwtService, mocks.NewOtel(), table, cfg)

	echoUser := func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value(constant.ContextKeyUserID).(string)
		w.Header().Set("X-User", userID)
		w.WriteHeader(http.StatusNoContent)
	}

	router := chi.NewRouter()
	router.Use(mw.APIKey, mw.Auth, mw.RBAC)
	router.Get("/v1/rooms/{id}", echoUser)
	router.Delete("/v1/rooms/{id}", echoUser)
	router.Get("/v1/reports", echoUser)

	return router
}

func TestAuthRole(t *testing.T) {
	adminClaims := &jwt.Claims{UserID: "a1", Username: "admin", TokenID: "t1", Type: jwt.AccessToken}

	tests := []struct {
		name       string
		method     string
		path       string
		headers    map[string]string
		setupMock  func(m *jwtMocks.MockJWT)
		wantStatus int
		wantUser   string
	}{
		{
			name:       "public route needs no token",
			method:     http.MethodGet,
			path:       "/v1/rooms/r1",
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "missing authorization header",
			method:     http.MethodDelete,
			path:       "/v1/rooms/r1",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed authorization header",
			method:     http.MethodDelete,
			path:       "/v1/rooms/r1",
			headers:    map[string]string{"Authorization": "Token abc"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "expired token",
			method:  http.MethodDelete,
			path:    "/v1/rooms/r1",
			headers: map[string]string{"Authorization": "Bearer stale"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "stale", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "token without identity",
			method:  http.MethodDelete,
			path:    "/v1/rooms/r1",
			headers: map[string]string{"Authorization": "Bearer empty"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "empty", jwt.AccessToken).Return(&jwt.Claims{TokenID: "t2"}, nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "admin token reaches the handler",
			method:  http.MethodDelete,
			path:    "/v1/rooms/r1",
			headers: map[string]string{"Authorization": "Bearer good"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(adminClaims, nil)
			},
			wantStatus: http.StatusNoContent,
			wantUser:   "a1",
		},
		{
			name:    "admin lacks the route role",
			method:  http.MethodGet,
			path:    "/v1/reports",
			headers: map[string]string{"Authorization": "Bearer good"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(adminClaims, nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "api key bypasses token checks",
			method:     http.MethodGet,
			path:       "/v1/reports",
			headers:    map[string]string{"X-API-Key": "internal-key"},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "wrong api key",
			method:     http.MethodGet,
			path:       "/v1/rooms/r1",
			headers:    map[string]string{"X-API-Key": "guess"},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			jwtService := jwtMocks.NewMockJWT(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(jwtService)
			}

			req := httptest.NewRequestWithContext(context.Background(), tt.method, tt.path, nil)
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			newAuthRouter(t, jwtService).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, rec.Header().Get("X-User"))
		})
	}
}
