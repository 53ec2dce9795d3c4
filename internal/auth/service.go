package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the slice of user storage the auth service needs.
type UserRepository interface {
	GetCredentials(username string) (userID int64, passwordHash string, err error)
	GetAuthUser(userID int64) (*User, error)
	UsernameExists(username string) (bool, error)
	EmailExists(email string) (bool, error)
	CreateUser(dto RegisterDTO, passwordHash string) (int64, error)
}

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(session *Session) error
	GetByToken(token string) (*Session, error)
	Delete(token string) error
	DeleteExpired(now time.Time) error
}

// SessionClaims is the JWT payload of the session cookie. Only the
// server-side session token travels in it; authorization state stays in
// the database.
type SessionClaims struct {
	SessionToken string `json:"sid"`
	jwt.RegisteredClaims
}

// CookieCodec signs and verifies the session cookie value.
type CookieCodec struct {
	secret []byte
}

func NewCookieCodec(secret string) *CookieCodec {
	return &CookieCodec{secret: []byte(secret)}
}

func (c *CookieCodec) Encode(session *Session) (string, error) {
	claims := &SessionClaims{
		SessionToken: session.Token,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(session.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

func (c *CookieCodec) Decode(value string) (string, error) {
	token, err := jwt.ParseWithClaims(value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrSessionExpired
		}
		return "", ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionToken == "" {
		return "", ErrInvalidSession
	}
	return claims.SessionToken, nil
}

// Service performs authentication business logic.
type Service struct {
	users      UserRepository
	sessions   SessionRepository
	codec      *CookieCodec
	sessionTTL time.Duration
	bcryptCost int
	logger     *slog.Logger
}

func NewService(users UserRepository, sessions SessionRepository, codec *CookieCodec, sessionTTL time.Duration, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		codec:      codec,
		sessionTTL: sessionTTL,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Authenticate validates credentials, creates a session row and returns
// the signed cookie value along with the authenticated user.
func (s *Service) Authenticate(dto LoginDTO) (string, *User, error) {
	if err := dto.Validate(); err != nil {
		return "", nil, err
	}

	userID, storedHash, err := s.users.GetCredentials(dto.Username)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	user, err := s.users.GetAuthUser(userID)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	ttl := s.sessionTTL
	if dto.Remember {
		ttl = 30 * 24 * time.Hour
	}

	token, err := GenerateRandomToken()
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	session := &Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(session); err != nil {
		return "", nil, err
	}

	cookie, err := s.codec.Encode(session)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("user logged in", "user_id", userID, "username", dto.Username)
	return cookie, user, nil
}

// Register creates a new account with role "user". Username and email
// uniqueness are checked before the insert so the caller gets a
// field-worthy message instead of a driver error.
func (s *Service) Register(dto RegisterDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	taken, err := s.users.UsernameExists(dto.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	taken, err = s.users.EmailExists(dto.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, err
	}

	userID, err := s.users.CreateUser(dto, hash)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", userID, "username", dto.Username)
	return s.users.GetAuthUser(userID)
}

// ValidateCookie resolves a signed cookie value to the authenticated
// user. Expired sessions are removed as a side effect.
func (s *Service) ValidateCookie(value string) (*User, error) {
	token, err := s.codec.Decode(value)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByToken(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	if session.Expired(time.Now()) {
		if err := s.sessions.Delete(token); err != nil {
			s.logger.Warn("failed to delete expired session", "error", err)
		}
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetAuthUser(session.UserID)
	if err != nil {
		return nil, ErrUserInactive
	}
	return user, nil
}

// Logout revokes the session referenced by the cookie. Unknown or
// malformed cookies are a no-op: logout must always succeed.
func (s *Service) Logout(value string) error {
	token, err := s.codec.Decode(value)
	if err != nil {
		return nil
	}
	return s.sessions.Delete(token)
}

// PurgeExpiredSessions removes sessions past their expiry.
func (s *Service) PurgeExpiredSessions() error {
	return s.sessions.DeleteExpired(time.Now())
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateRandomToken generates a cryptographically secure random token.
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
