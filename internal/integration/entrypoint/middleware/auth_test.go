package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
	"github.com/household-ledger/backend/internal/integration/entrypoint/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	profiles map[string]*entity.IdentityProfile
}

func (v *stubVerifier) Verify(_ context.Context, token string) (*entity.IdentityProfile, error) {
	switch token {
	case "expired":
		return nil, domainerror.NewAuthError(domainerror.ErrCodeExpiredToken, "token has expired", domainerror.ErrExpiredToken)
	}
	if profile, ok := v.profiles[token]; ok {
		return profile, nil
	}
	return nil, domainerror.NewAuthError(domainerror.ErrCodeInvalidToken, "invalid token", domainerror.ErrInvalidToken)
}

type stubUserRepository struct {
	adapter.UserRepository
	users map[string]*entity.User
	err   error
}

func (r *stubUserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	if user, ok := r.users[email]; ok {
		return user, nil
	}
	return nil, domainerror.ErrUserNotFound
}

func newAuthTestRouter(m *AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.GET("/identity", m.Authenticate(), func(c *gin.Context) {
		profile, ok := GetIdentityFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		email, _ := GetUserEmailFromContext(c)
		c.JSON(http.StatusOK, gin.H{"subject": profile.Subject, "email": email})
	})
	r.GET("/account", m.Authenticate(), m.RequireAccount(), func(c *gin.Context) {
		id, ok := GetUserIDFromContext(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id.String()})
	})
	return r
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	verifier := &stubVerifier{profiles: map[string]*entity.IdentityProfile{
		"good": {Subject: "sub-1", Email: " Minji@Example.com "},
	}}
	r := newAuthTestRouter(NewAuthMiddleware(verifier, &stubUserRepository{}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   domainerror.AuthErrorCode
	}{
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeMissingToken},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeInvalidToken},
		{name: "empty token", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeMissingToken},
		{name: "invalid token", header: "Bearer forged", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeInvalidToken},
		{name: "expired token", header: "Bearer expired", wantStatus: http.StatusUnauthorized, wantCode: domainerror.ErrCodeExpiredToken},
		{name: "valid token", header: "Bearer good", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/identity", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, "sub-1", body["subject"])
				assert.Equal(t, "minji@example.com", body["email"])
				return
			}

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.wantCode), resp.Code)
		})
	}
}

func TestAuthMiddleware_RequireAccount(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Email: "minji@example.com"}
	verifier := &stubVerifier{profiles: map[string]*entity.IdentityProfile{
		"minji":    {Subject: "sub-1", Email: "minji@example.com"},
		"newcomer": {Subject: "sub-2", Email: "newcomer@example.com"},
	}}

	serve := func(r *gin.Engine, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/account", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("known account", func(t *testing.T) {
		r := newAuthTestRouter(NewAuthMiddleware(verifier, &stubUserRepository{users: map[string]*entity.User{user.Email: user}}))
		w := serve(r, "minji")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), user.ID.String())
	})

	t.Run("account not initialized", func(t *testing.T) {
		r := newAuthTestRouter(NewAuthMiddleware(verifier, &stubUserRepository{}))
		w := serve(r, "newcomer")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), string(domainerror.ErrCodeUserNotFound))
	})

	t.Run("lookup failure", func(t *testing.T) {
		r := newAuthTestRouter(NewAuthMiddleware(verifier, &stubUserRepository{err: errors.New("connection refused")}))
		w := serve(r, "minji")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
