package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vansales/backend/internal/domain/identity"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/infrastructure/auth"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for any login failure. The cause (unknown
// user, wrong password, disabled account) is never disclosed to the caller.
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// dummyHash is a valid bcrypt digest used to equalize timing when the
// username does not exist.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// AuthService handles login, logout and token issuing.
type AuthService struct {
	db        *gorm.DB
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
}

// NewAuthService creates a new AuthService. blacklist may be nil, in which
// case logout is a no-op.
func NewAuthService(db *gorm.DB, jwt *auth.JWTService, blacklist auth.TokenBlacklist) *AuthService {
	return &AuthService{db: db, jwt: jwt, blacklist: blacklist}
}

// LoginRequest carries the credentials for one login attempt.
type LoginRequest struct {
	TenantID uuid.UUID `json:"tenantId" binding:"required"`
	Username string    `json:"username" binding:"required"`
	Password string    `json:"password" binding:"required"`
}

// LoginResponse carries the issued token and the authenticated identity.
type LoginResponse struct {
	Token       string     `json:"token"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	UserID      uuid.UUID  `json:"userId"`
	Username    string     `json:"username"`
	DisplayName string     `json:"displayName"`
	Role        string     `json:"role"`
	BranchID    *uuid.UUID `json:"branchId,omitempty"`
}

// Login verifies the credentials and issues an access token. Authentication
// runs before any tenant context exists, so this is the one query in the
// application layer that addresses the users table directly.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var user identity.User
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND username = ?", req.TenantID, req.Username).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// burn a comparison so unknown users cost the same as bad passwords
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwt.GenerateToken(auth.GenerateTokenInput{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		BranchID: user.BranchID,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:       token,
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		BranchID:    user.BranchID,
	}, nil
}

// Logout invalidates the presented token for its remaining lifetime.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if s.blacklist == nil {
		return nil
	}
	claims, err := s.jwt.ValidateToken(tokenString)
	if err != nil {
		// an invalid or expired token needs no blacklisting
		return nil
	}
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}
	return s.blacklist.AddToBlacklist(ctx, claims.ID, ttl)
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	if len(password) < 8 {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
