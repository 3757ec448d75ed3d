package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/edustack/campusaudit/model"
	"github.com/edustack/campusaudit/params"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleSuperAdmin = "SUPERADMIN"
	RoleStaff      = "STAFF"
)

// Claims are the verified identity attached to admin API requests. Role
// checks read the roles claim of a signed token, never raw request headers.
type Claims struct {
	jwt.RegisteredClaims
	Roles     []string `json:"roles"`
	SessionID string   `json:"sid"`
}

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type LoginResult struct {
	Token     string
	User      *model.AdminUser
	SessionID string
	ExpiresAt time.Time
}

type AuthService struct {
	users  AdminUserRepository
	secret []byte
	issuer string
}

func NewAuthService(users AdminUserRepository, jwtSecret string, issuer string) *AuthService {
	return &AuthService{
		users:  users,
		secret: []byte(jwtSecret),
		issuer: issuer,
	}
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (*LoginResult, error) {
	user, err := s.users.FirstByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.Disabled {
		return nil, ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	expiresAt := time.Now().Add(params.AccessTokenExpiration)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Roles:     splitRoles(user.Roles),
		SessionID: sessionID,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token,
		User:      user,
		SessionID: sessionID,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *AuthService) Verify(tokenString string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// CreateUser registers an admin account with a bcrypt-hashed password. Used
// by the useradd CLI command.
func (s *AuthService) CreateUser(ctx context.Context, username string, password string, roles []string) (*model.AdminUser, error) {
	if _, err := s.users.FirstByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.AdminUser{
		ID:           model.GenerateID(),
		Username:     username,
		PasswordHash: string(passwordHash),
		Roles:        strings.Join(roles, ","),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func splitRoles(joined string) []string {
	var roles []string
	for _, role := range strings.Split(joined, ",") {
		if role = strings.TrimSpace(role); role != "" {
			roles = append(roles, role)
		}
	}
	return roles
}
