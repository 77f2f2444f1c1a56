package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"phonestore/internal/guard"
	"phonestore/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var body model.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		expectedStatus int
		expectHandler  bool
	}{
		{
			name:           "Preflight request",
			method:         http.MethodOptions,
			expectedStatus: http.StatusNoContent,
			expectHandler:  false,
		},
		{
			name:           "GET request",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
		{
			name:           "PATCH request",
			method:         http.MethodPatch,
			expectedStatus: http.StatusOK,
			expectHandler:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := CORS(testHandler)

			req := httptest.NewRequest(tt.method, "/test", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	logger := zerolog.Nop()
	g := guard.New("/auth/login", "/dashboard")
	valid := signedToken(t, "s3cret", jwt.MapClaims{"id": 42, "correo": "ana@example.com", "rol": "CLIENTE"})
	forged := signedToken(t, "other", jwt.MapClaims{"id": 42, "rol": "ADMIN"})

	tests := []struct {
		name           string
		secret         string
		header         string
		expectedStatus int
		expectHandler  bool
		wantUserID     string
	}{
		{name: "Unverified token", header: "Bearer " + forged, expectedStatus: http.StatusOK, expectHandler: true, wantUserID: "42"},
		{name: "Verified token", secret: "s3cret", header: "Bearer " + valid, expectedStatus: http.StatusOK, expectHandler: true, wantUserID: "42"},
		{name: "Forged token", secret: "s3cret", header: "Bearer " + forged, expectedStatus: http.StatusUnauthorized},
		{name: "Missing header", expectedStatus: http.StatusUnauthorized},
		{name: "Wrong scheme", header: "Basic " + valid, expectedStatus: http.StatusUnauthorized},
		{name: "Garbage token", header: "Bearer not-a-jwt", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				id, ok := guard.IdentityFromContext(r.Context())
				require.True(t, ok)
				assert.Equal(t, tt.wantUserID, id.UserID)
				assert.NotEmpty(t, guard.TokenFromContext(r.Context()))
				w.WriteHeader(http.StatusOK)
			})

			handler := Authenticate(g, guard.NewDecoder(tt.secret), logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/api/cart?page=2", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			if !tt.expectHandler {
				body := decodeError(t, w)
				assert.Equal(t, model.ErrCodeUnauthorised, body.Error)
				assert.Equal(t, "/auth/login", body.Redirect)
				assert.Equal(t, "/api/cart?page=2", body.From)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	logger := zerolog.Nop()
	g := guard.New("/auth/login", "/dashboard")

	tests := []struct {
		name           string
		identity       *guard.Identity
		expectedStatus int
		expectHandler  bool
	}{
		{name: "Admin", identity: &guard.Identity{UserID: "1", Role: "ADMIN"}, expectedStatus: http.StatusOK, expectHandler: true},
		{name: "Admin lower case", identity: &guard.Identity{UserID: "1", Role: "admin"}, expectedStatus: http.StatusOK, expectHandler: true},
		{name: "Customer", identity: &guard.Identity{UserID: "2", Role: "CLIENTE"}, expectedStatus: http.StatusForbidden},
		{name: "No role", identity: &guard.Identity{UserID: "3"}, expectedStatus: http.StatusForbidden},
		{name: "No identity", expectedStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			handler := RequireRole(g, []string{"ADMIN"}, logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/api/purchase-orders/pending", nil)
			if tt.identity != nil {
				req = req.WithContext(guard.WithIdentity(req.Context(), tt.identity))
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectHandler, handlerCalled)
			if !tt.expectHandler {
				body := decodeError(t, w)
				assert.Equal(t, model.ErrCodeForbidden, body.Error)
				assert.Equal(t, "/dashboard", body.Redirect)
			}
		})
	}
}

func TestLogging(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		method         string
		path           string
		handlerStatus  int
		expectedStatus int
	}{
		{
			name:           "Successful request",
			method:         http.MethodGet,
			path:           "/api/phones",
			handlerStatus:  http.StatusOK,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Not found request",
			method:         http.MethodGet,
			path:           "/api/unknown",
			handlerStatus:  http.StatusNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "Server error",
			method:         http.MethodPost,
			path:           "/api/checkout",
			handlerStatus:  http.StatusBadGateway,
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			handler := Logging(logger)(testHandler)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRecovery(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		shouldPanic    bool
		panicValue     interface{}
		expectedStatus int
	}{
		{
			name:           "No panic",
			shouldPanic:    false,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Panic with string",
			shouldPanic:    true,
			panicValue:     "something went wrong",
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "Panic with error",
			shouldPanic:    true,
			panicValue:     assert.AnError,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.shouldPanic {
					panic(tt.panicValue)
				}
				w.WriteHeader(http.StatusOK)
			})

			handler := Recovery(logger)(testHandler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.shouldPanic {
				body := decodeError(t, w)
				assert.Equal(t, model.ErrCodeInternalError, body.Error)
				assert.Equal(t, "internal server error", body.Message)
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	for _, code := range []int{http.StatusOK, http.StatusCreated, http.StatusNotFound, http.StatusInternalServerError} {
		w := httptest.NewRecorder()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		rw.WriteHeader(code)

		assert.Equal(t, code, rw.statusCode)
		assert.Equal(t, code, w.Code)
	}
}
