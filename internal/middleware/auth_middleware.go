package middleware

import (
	"log"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api/dto_models.go to avoid import cycles.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Authenticator resolves the caller's identity into the gin context
// ("userID", "userEmail"). Which implementation runs is decided once at
// startup: Firebase token verification in production, a fixed demo identity
// when auth is disabled. Handlers never check a demo flag themselves.
type Authenticator interface {
	// Required rejects callers without a valid identity.
	Required() gin.HandlerFunc
	// Optional resolves the identity when present and lets anonymous callers
	// through without context values set.
	Optional() gin.HandlerFunc
}

// FirebaseAuthenticator verifies Firebase ID tokens from the Authorization
// header.
type FirebaseAuthenticator struct {
	firebaseAuthClient *auth.Client
}

// NewFirebaseAuthenticator creates a FirebaseAuthenticator. It panics on a nil
// auth client: authenticated routes cannot function without it.
func NewFirebaseAuthenticator(fbAuthClient *auth.Client) *FirebaseAuthenticator {
	if fbAuthClient == nil {
		log.Fatal("Firebase Auth client is not initialized for FirebaseAuthenticator.")
		panic("Firebase Auth client is not initialized for FirebaseAuthenticator")
	}
	return &FirebaseAuthenticator{firebaseAuthClient: fbAuthClient}
}

// Required verifies the bearer token and aborts with 401 when it is missing
// or invalid.
func (m *FirebaseAuthenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.verify(c, true) {
			return
		}
		c.Next()
	}
}

// Optional verifies the bearer token when one is present; anonymous callers
// proceed without identity values in the context.
func (m *FirebaseAuthenticator) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if !m.verify(c, false) {
				return
			}
		}
		c.Next()
	}
}

// verify parses and validates the Authorization header. When strict is false a
// malformed or invalid token is still rejected — only a wholly absent header
// counts as anonymous, and Optional checks that before calling here.
func (m *FirebaseAuthenticator) verify(c *gin.Context, strict bool) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if strict {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header is required"})
			return false
		}
		return true
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authorization header format must be 'Bearer {token}'"})
		return false
	}
	idToken := parts[1]

	token, err := m.firebaseAuthClient.VerifyIDToken(c.Request.Context(), idToken)
	if err != nil {
		log.Printf("FirebaseAuthenticator: error verifying Firebase ID token: %v", err)
		// Generic message to the client; specifics stay server-side.
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired authentication token"})
		return false
	}

	c.Set("userID", token.UID)
	if email, ok := token.Claims["email"].(string); ok {
		c.Set("userEmail", email)
	}
	return true
}

// DemoAuthenticator stamps every request with a fixed demo identity. Selected
// at startup when demo mode is on or AUTH_REQUIRED is disabled.
type DemoAuthenticator struct {
	UserID string
	Email  string
}

// NewDemoAuthenticator creates a DemoAuthenticator with the default demo
// identity.
func NewDemoAuthenticator() *DemoAuthenticator {
	return &DemoAuthenticator{UserID: "demo-user", Email: "demo@pixelforge.local"}
}

// Required stamps the demo identity.
func (m *DemoAuthenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", m.UserID)
		c.Set("userEmail", m.Email)
		c.Next()
	}
}

// Optional behaves like Required: the demo identity is always available.
func (m *DemoAuthenticator) Optional() gin.HandlerFunc {
	return m.Required()
}
