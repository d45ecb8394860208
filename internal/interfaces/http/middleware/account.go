package middleware

import (
	"net/http"
	"strings"

	"github.com/ebayops/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountContextKey is the key used to store account information in gin.Context
const (
	AccountIDKey     = "account_id"
	AccountHeaderKey = "X-Account-ID"
)

// AccountInfo holds the extracted seller account information
type AccountInfo struct {
	ID uuid.UUID `json:"id"`
}

// AccountValidator defines the interface for validating a seller account
type AccountValidator interface {
	ValidateAccount(accountID string) (*AccountInfo, error)
}

// AccountMiddlewareConfig holds configuration for account middleware
type AccountMiddlewareConfig struct {
	// HeaderEnabled enables X-Account-ID header extraction
	HeaderEnabled bool
	// JWTEnabled enables JWT claim extraction (requires JWT middleware to run first)
	JWTEnabled bool
	// SkipPaths are paths that don't require account context (e.g., health check)
	SkipPaths []string
	// Required determines if account context is mandatory
	Required bool
	// Validator is an optional validator to check if the account exists and is active
	Validator AccountValidator
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultAccountConfig returns default account middleware configuration
func DefaultAccountConfig() AccountMiddlewareConfig {
	return AccountMiddlewareConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths:     []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health"},
		Required:      true,
		Validator:     nil,
		Logger:        nil,
	}
}

// AccountMiddleware extracts the seller account from the request.
// Extraction order: JWT claims > X-Account-ID header.
func AccountMiddleware() gin.HandlerFunc {
	return AccountMiddlewareWithConfig(DefaultAccountConfig())
}

// AccountMiddlewareWithConfig returns account middleware with custom configuration
func AccountMiddlewareWithConfig(cfg AccountMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if path should be skipped
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		var accountID string
		var extractionMethod string

		// Priority 1: JWT claims (if JWT middleware has already run)
		if cfg.JWTEnabled {
			if jwtAccountID, exists := c.Get(JWTAccountIDKey); exists {
				if aid, ok := jwtAccountID.(string); ok && aid != "" {
					accountID = aid
					extractionMethod = "jwt"
				}
			}
		}

		// Priority 2: X-Account-ID header
		if accountID == "" && cfg.HeaderEnabled {
			if headerAccountID := c.GetHeader(AccountHeaderKey); headerAccountID != "" {
				accountID = headerAccountID
				extractionMethod = "header"
			}
		}

		// Validate account ID format if present
		if accountID != "" {
			if _, err := uuid.Parse(accountID); err != nil {
				respondUnauthorized(c, "Invalid account ID format")
				return
			}
		}

		// Check if account is required
		if accountID == "" && cfg.Required {
			respondUnauthorized(c, "Account identification required")
			return
		}

		// Optional: Validate account exists and is active
		if accountID != "" && cfg.Validator != nil {
			if _, err := cfg.Validator.ValidateAccount(accountID); err != nil {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Account validation failed",
					zap.String("account_id", accountID),
					zap.Error(err),
				)
				respondUnauthorized(c, "Invalid or inactive account")
				return
			}
		}

		// Set account information in context
		if accountID != "" {
			// Set in gin context for easy access in handlers
			c.Set(AccountIDKey, accountID)

			// Set in request context for service layer access
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithAccountID(ctx, log, accountID)
			c.Request = c.Request.WithContext(ctx)

			// Log extraction method for debugging
			if cfg.Logger != nil {
				cfg.Logger.Debug("Account identified",
					zap.String("account_id", accountID),
					zap.String("method", extractionMethod),
				)
			}
		}

		c.Next()
	}
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetAccountID retrieves the account ID from gin.Context
func GetAccountID(c *gin.Context) string {
	if accountID, exists := c.Get(AccountIDKey); exists {
		if aid, ok := accountID.(string); ok {
			return aid
		}
	}
	return ""
}

// GetAccountUUID retrieves the account ID as UUID from gin.Context
func GetAccountUUID(c *gin.Context) (uuid.UUID, error) {
	accountID := GetAccountID(c)
	if accountID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(accountID)
}

// MustGetAccountID retrieves the account ID from gin.Context or panics if not found
// Use this only in handlers where the account is guaranteed to exist
func MustGetAccountID(c *gin.Context) string {
	accountID := GetAccountID(c)
	if accountID == "" {
		panic("account_id not found in context")
	}
	return accountID
}

// MustGetAccountUUID retrieves the account ID as UUID or panics if not found
func MustGetAccountUUID(c *gin.Context) uuid.UUID {
	accountUUID, err := GetAccountUUID(c)
	if err != nil || accountUUID == uuid.Nil {
		panic("valid account_id not found in context")
	}
	return accountUUID
}

// OptionalAccountMiddleware creates middleware that doesn't require an account
func OptionalAccountMiddleware() gin.HandlerFunc {
	cfg := DefaultAccountConfig()
	cfg.Required = false
	return AccountMiddlewareWithConfig(cfg)
}
