package services

import (
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookit/booking-backend/internal/database"
	"github.com/bookit/booking-backend/internal/models"
	"github.com/bookit/booking-backend/internal/utils"
	"github.com/bookit/booking-backend/pkg/apperrors"
	"github.com/bookit/booking-backend/pkg/jwt"
)

// AuthService handles registration, login, and the token lifecycle
type AuthService struct {
	userRepo    *database.UserRepository
	revokedRepo *database.RevokedTokenRepository
	sessionRepo *database.UserSessionRepository
	jwtService  *jwt.Service
	bcryptCost  int
	logger      *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo *database.UserRepository,
	revokedRepo *database.RevokedTokenRepository,
	sessionRepo *database.UserSessionRepository,
	jwtService *jwt.Service,
	bcryptCost int,
	logger *logrus.Logger,
) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &AuthService{
		userRepo:    userRepo,
		revokedRepo: revokedRepo,
		sessionRepo: sessionRepo,
		jwtService:  jwtService,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

// Register creates a new account with the regular user role
func (s *AuthService) Register(req *models.RegisterRequest) (*models.User, error) {
	// 1. Validate the request
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. Hash the password
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	// 3. Persist the account (duplicate email surfaces as a conflict)
	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, s.wrap(err, "failed to register user")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return user, nil
}

// Login verifies credentials and issues an access/refresh token pair.
// The failure message never reveals whether the email or the password
// was wrong.
func (s *AuthService) Login(req *models.LoginRequest, ipAddress, userAgent string) (*models.TokenPairResponse, error) {
	// 1. Look up the account
	user, err := s.userRepo.GetByEmail(normalizeEmail(req.Email))
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, s.wrap(err, "failed to authenticate")
	}

	// 2. Verify the password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	// 3. Issue the token pair
	pair, err := s.issueTokenPair(user)
	if err != nil {
		return nil, err
	}

	// 4. Record the login session (best effort, a failure must not block login)
	s.recordSession(user.ID, ipAddress, userAgent)

	s.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"ip_address": ipAddress,
	}).Info("User logged in")

	return pair, nil
}

// Refresh rotates a refresh token: the old token is revoked and a fresh
// pair is issued with the account's current role
func (s *AuthService) Refresh(refreshToken string) (*models.TokenPairResponse, error) {
	// 1. Validate signature, expiry, and token type
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	// 2. Reject tokens that were already rotated or logged out
	revoked, err := s.revokedRepo.IsRevoked(jti)
	if err != nil {
		return nil, s.wrap(err, "failed to refresh tokens")
	}
	if revoked {
		return nil, apperrors.Unauthorized("refresh token has been revoked")
	}

	// 3. The account must still exist; role changes take effect here
	user, err := s.userRepo.GetByID(claims.UserID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.Unauthorized("user account no longer exists")
		}
		return nil, s.wrap(err, "failed to refresh tokens")
	}

	// 4. Revoke the old token before handing out the new pair
	if err := s.revokedRepo.Revoke(jti, claims.ExpiresAt.Time); err != nil {
		return nil, s.wrap(err, "failed to refresh tokens")
	}

	pair, err := s.issueTokenPair(user)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
	}).Info("Refresh token rotated")

	return pair, nil
}

// Logout revokes the presented access token until its natural expiry.
// Logging out twice with the same token is a no-op.
func (s *AuthService) Logout(accessToken string) error {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return apperrors.Unauthorized("invalid or expired token")
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return apperrors.Unauthorized("invalid or expired token")
	}

	if err := s.revokedRepo.Revoke(jti, claims.ExpiresAt.Time); err != nil {
		return s.wrap(err, "failed to log out")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": claims.UserID,
	}).Info("User logged out")

	return nil
}

// Me returns the account behind the authenticated principal
func (s *AuthService) Me(userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, s.wrap(err, "failed to fetch profile")
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's own account
func (s *AuthService) UpdateProfile(userID uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, s.wrap(err, "failed to update profile")
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = normalizeEmail(*req.Email)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, s.wrap(err, "failed to update profile")
	}

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
	}).Info("Profile updated")

	return user, nil
}

// Sessions lists the caller's login history, most recent first
func (s *AuthService) Sessions(userID uuid.UUID) ([]models.UserSession, error) {
	sessions, err := s.sessionRepo.ListByUserID(userID)
	if err != nil {
		return nil, s.wrap(err, "failed to list sessions")
	}
	return sessions, nil
}

// issueTokenPair generates the access/refresh pair for an account
func (s *AuthService) issueTokenPair(user *models.User) (*models.TokenPairResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal("failed to generate access token", err)
	}

	refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Internal("failed to generate refresh token", err)
	}

	return &models.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtService.AccessTokenTTL().Seconds()),
	}, nil
}

// recordSession stores the login audit row with the parsed device info
func (s *AuthService) recordSession(userID uuid.UUID, ipAddress, userAgent string) {
	device := utils.ParseUserAgent(userAgent)
	if _, err := s.sessionRepo.Create(userID, ipAddress, device.DeviceType, device.OS, device.Browser); err != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("Failed to record login session")
	}
}

// wrap passes typed errors through untouched and hides everything else
// behind an internal error
func (s *AuthService) wrap(err error, message string) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal(message, err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
