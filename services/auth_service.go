package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pitstop-crm/pitstop-api/config"
	"github.com/pitstop-crm/pitstop-api/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrRevokedToken       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user is inactive")
)

// SessionClaims are the JWT claims issued on sign-in. Subject carries the
// profile id; the tenant id is intentionally NOT baked into the token so a
// membership change takes effect on the next request, not the next sign-in.
type SessionClaims struct {
	Email              string `json:"email"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password,omitempty"`
	jwt.RegisteredClaims
}

type sessionEventKind int

const (
	eventSignedIn sessionEventKind = iota
	eventSignedOut
	eventSweep
)

// sessionEvent is one entry on the session registry's queue
type sessionEvent struct {
	kind      sessionEventKind
	jti       string
	subject   string
	expiresAt time.Time
	done      chan struct{}
}

// AuthService is the single owner of session state for the process.
// Sign-in and sign-out never touch the registry inline: they post an event
// onto a queue consumed by one goroutine, so callbacks triggered by a
// session change can call back into the service without reentrancy.
type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	tokenExp  time.Duration

	events chan sessionEvent
	quit   chan struct{}

	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> token expiry, entries dropped once expired
	active  map[string]string    // jti -> subject id
}

// NewAuthService creates an authentication service and starts its session
// registry consumer. Call Close on shutdown.
func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	s := &AuthService{
		db:        db,
		jwtSecret: []byte(cfg.JWTSecret),
		tokenExp:  cfg.JWTExpiry,
		events:    make(chan sessionEvent, 64),
		quit:      make(chan struct{}),
		revoked:   make(map[string]time.Time),
		active:    make(map[string]string),
	}
	go s.run()
	return s
}

// Close stops the session registry consumer
func (s *AuthService) Close() {
	close(s.quit)
}

// run is the single consumer of session events. It is the only writer of
// the revocation set and the active-session registry.
func (s *AuthService) run() {
	sweep := time.NewTicker(time.Hour)
	defer sweep.Stop()

	for {
		select {
		case ev := <-s.events:
			s.apply(ev)
			if ev.done != nil {
				close(ev.done)
			}
		case <-sweep.C:
			s.apply(sessionEvent{kind: eventSweep})
		case <-s.quit:
			return
		}
	}
}

func (s *AuthService) apply(ev sessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.kind {
	case eventSignedIn:
		s.active[ev.jti] = ev.subject
	case eventSignedOut:
		if _, ok := s.active[ev.jti]; ok {
			delete(s.active, ev.jti)
		}
		// revoking an unknown jti is a no-op success: sign-out is idempotent
		s.revoked[ev.jti] = ev.expiresAt
	case eventSweep:
		now := time.Now()
		for jti, exp := range s.revoked {
			if now.After(exp) {
				delete(s.revoked, jti)
			}
		}
	}
}

// post enqueues a session event and waits until the consumer applied it,
// so callers observe a consistent registry on return
func (s *AuthService) post(ev sessionEvent) {
	ev.done = make(chan struct{})
	select {
	case s.events <- ev:
		<-ev.done
	case <-s.quit:
	}
}

// SignIn verifies the credentials and issues a signed session token.
// A failed sign-in performs no state mutation of any kind.
func (s *AuthService) SignIn(email, password string) (string, *models.UserProfile, error) {
	var profile models.UserProfile
	err := s.db.Preload("Tenant").Where("email = ?", email).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		logrus.WithError(err).WithField("email", email).Error("sign-in profile lookup failed")
		return "", nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	if !profile.IsActive() {
		return "", nil, ErrUserInactive
	}

	jti := uuid.NewString()
	now := time.Now()
	expiresAt := now.Add(s.tokenExp)

	claims := SessionClaims{
		Email:              profile.Email,
		Role:               profile.Role,
		MustChangePassword: profile.MustChangePassword,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   profile.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.post(sessionEvent{kind: eventSignedIn, jti: jti, subject: claims.Subject, expiresAt: expiresAt})
	return token, &profile, nil
}

// SignOut revokes the session carried by the token. Signing out an invalid,
// expired or already-revoked token is a no-op: the final state is
// "unauthenticated" either way, without error.
func (s *AuthService) SignOut(token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}

	expiresAt := time.Now().Add(s.tokenExp)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	s.post(sessionEvent{kind: eventSignedOut, jti: claims.ID, subject: claims.Subject, expiresAt: expiresAt})
	return nil
}

// ValidateToken parses and verifies a session token, rejecting revoked ones
func (s *AuthService) ValidateToken(token string) (*SessionClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	_, revoked := s.revoked[claims.ID]
	s.mu.RUnlock()
	if revoked {
		return nil, ErrRevokedToken
	}

	return claims, nil
}

// IsAuthenticated reports whether the token carries a live session
func (s *AuthService) IsAuthenticated(token string) bool {
	_, err := s.ValidateToken(token)
	return err == nil
}

// ActiveSessionCount returns the number of sessions signed in and not yet
// signed out since process start
func (s *AuthService) ActiveSessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active)
}

func (s *AuthService) parse(token string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPassword checks if a password matches a bcrypt hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var authServiceInstance *AuthService

// InitAuthService initializes the global auth service instance
func InitAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	authServiceInstance = NewAuthService(db, cfg)
	return authServiceInstance
}

// GetAuthService returns the initialized auth service instance
func GetAuthService() *AuthService {
	return authServiceInstance
}

// SetAuthService sets the auth service instance (primarily for testing)
func SetAuthService(s *AuthService) {
	authServiceInstance = s
}
