package firebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pantrysense/v2/internal/domain/user"
	"github.com/pantrysense/v2/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func identityServer(t *testing.T, status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "web-key", r.URL.Query().Get("key"))

		var req passwordRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.ReturnSecureToken)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestSignIn(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"localId":"uid-1","email":"cook@example.com","displayName":"Cook","profilePicture":"https://img/p.png"}`))
	}))
	defer server.Close()

	p := NewProvider(Config{APIKey: "web-key", BaseURL: server.URL}, zaptest.NewLogger(t))
	identity, err := p.SignIn(context.Background(), user.Credentials{Email: "cook@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "/accounts:signInWithPassword", path)
	assert.Equal(t, &user.Identity{UID: "uid-1", Email: "cook@example.com", DisplayName: "Cook", PhotoURL: "https://img/p.png"}, identity)

	_, err = p.SignUp(context.Background(), user.Credentials{Email: "cook@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "/accounts:signUp", path)
}

func TestCall_ErrorReasons(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		target  error
		code    errors.ErrorCode
		message string
	}{
		{"wrong password", 400, `{"error":{"code":400,"message":"INVALID_PASSWORD"}}`, user.ErrInvalidCredentials, "", ""},
		{"unknown email", 400, `{"error":{"code":400,"message":"EMAIL_NOT_FOUND"}}`, user.ErrInvalidCredentials, "", ""},
		{"taken", 400, `{"error":{"code":400,"message":"EMAIL_EXISTS"}}`, user.ErrEmailExists, "", ""},
		{"detail suffix", 400, `{"error":{"code":400,"message":"WEAK_PASSWORD : Password should be at least 6 characters"}}`, nil, errors.CodeAuthFailed, "Password should be at least 6 characters"},
		{"bare code", 400, `{"error":{"code":400,"message":"TOO_MANY_ATTEMPTS_TRY_LATER"}}`, nil, errors.CodeAuthFailed, "Too many attempts try later"},
		{"no json", 502, `bad gateway`, nil, errors.CodeInternal, ""},
		{"missing uid", 200, `{"email":"x@y.z"}`, nil, errors.CodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := identityServer(t, tt.status, tt.body)
			defer server.Close()

			p := NewProvider(Config{APIKey: "web-key", BaseURL: server.URL}, zaptest.NewLogger(t))
			_, err := p.SignIn(context.Background(), user.Credentials{Email: "a@b.co", Password: "secret1"})
			require.Error(t, err)

			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
				return
			}
			assert.Equal(t, tt.code, errors.GetCode(err))
			if tt.message != "" {
				var appErr *errors.AppError
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.message, appErr.Message)
			}
		})
	}
}

func TestCall_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	p := NewProvider(Config{APIKey: "web-key", BaseURL: server.URL}, zaptest.NewLogger(t))
	_, err := p.SignIn(context.Background(), user.Credentials{Email: "a@b.co", Password: "secret1"})
	assert.Equal(t, errors.CodeExternalServiceError, errors.GetCode(err))
	assert.NoError(t, p.SignOut(context.Background(), "uid-1"))
}
