package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"corpintranet/portal/internal/domain"
	"corpintranet/portal/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
	ErrGoogleDisabled       = errors.New("google sign-in is not configured")
	ErrGoogleRejected       = errors.New("google account not accepted")
	ErrInvalidToken         = errors.New("invalid or expired token")
)

const tokenIssuer = "intranet-portal"

// Claims is the JWT payload issued at login and read back by the API middleware.
type Claims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Register(ctx context.Context, name, email, password, department string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	LoginWithGoogle(ctx context.Context, idToken string) (token string, user *domain.User, err error)
	ParseToken(token string) (*Claims, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	TokenTTL() time.Duration
}

type authService struct {
	userRepo      repository.UserRepository
	google        GoogleVerifier
	jwtSecret     string
	jwtExpiration time.Duration
	adminEmails   map[string]bool
	logger        *zap.Logger
}

// NewAuthService wires local and Google sign-in. google may be nil to disable Google.
func NewAuthService(
	userRepo repository.UserRepository,
	google GoogleVerifier,
	jwtSecret string,
	jwtExpiration time.Duration,
	adminEmails []string,
	logger *zap.Logger,
) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = 8 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = true
	}
	return &authService{
		userRepo:      userRepo,
		google:        google,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		adminEmails:   admins,
		logger:        logger,
	}
}

func (s *authService) roleFor(email string) domain.Role {
	if s.adminEmails[strings.ToLower(email)] {
		return domain.RoleAdmin
	}
	return domain.RoleEmployee
}

// Register creates a local account.
func (s *authService) Register(ctx context.Context, name, email, password, department string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Provider:     domain.ProviderLocal,
		Role:         s.roleFor(email),
		Department:   department,
	}

	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// The unique index catches a concurrent registration of the same email.
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	user.ID = userID
	user.PasswordHash = ""

	s.logger.Info("user registered", zap.String("user", userID.Hex()), zap.String("role", string(user.Role)))
	return user, nil
}

// Login authenticates local credentials and issues a token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, ErrAuthenticationFailed
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrAuthenticationFailed
		}
		return "", nil, err
	}

	// Google-only accounts have no hash and can never match.
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrAuthenticationFailed
	}

	return s.issue(user)
}

// LoginWithGoogle verifies a Google ID token, creating the account on first sign-in.
func (s *authService) LoginWithGoogle(ctx context.Context, idToken string) (string, *domain.User, error) {
	if s.google == nil {
		return "", nil, ErrGoogleDisabled
	}

	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		s.logger.Warn("google token rejected", zap.Error(err))
		return "", nil, ErrGoogleRejected
	}

	user, err := s.userRepo.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if user.GoogleID == "" {
			if err := s.userRepo.LinkGoogle(ctx, user.ID, identity.Subject); err != nil {
				return "", nil, err
			}
			user.GoogleID = identity.Subject
		}
	case errors.Is(err, repository.ErrNotFound):
		user = &domain.User{
			Name:     identity.Name,
			Email:    identity.Email,
			GoogleID: identity.Subject,
			Provider: domain.ProviderGoogle,
			Role:     s.roleFor(identity.Email),
		}
		if user.Name == "" {
			user.Name = identity.Email
		}
		id, err := s.userRepo.Create(ctx, user)
		if err != nil {
			return "", nil, err
		}
		user.ID = id
		s.logger.Info("user created from google sign-in", zap.String("user", id.Hex()))
	default:
		return "", nil, err
	}

	return s.issue(user)
}

func (s *authService) issue(user *domain.User) (string, *domain.User, error) {
	token, err := s.generateJWT(user)
	if err != nil {
		s.logger.Error("token signing failed", zap.Error(err))
		return "", nil, ErrTokenGeneration
	}
	user.PasswordHash = ""
	return token, user, nil
}

func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
}

// ParseToken validates signature, algorithm and expiry.
func (s *authService) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid || claims.UserID == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) TokenTTL() time.Duration {
	return s.jwtExpiration
}
