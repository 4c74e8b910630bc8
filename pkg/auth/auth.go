package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Katzler/shapeshifter/pkg/config"
	"github.com/Katzler/shapeshifter/pkg/database"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidKeyFormat   = errors.New("invalid key format")
	ErrInvalidSignature   = errors.New("invalid signature")
	ErrMissingSecret      = errors.New("signing secret not configured")
)

// BcryptCost is the work factor for admin password hashes.
var BcryptCost = 14

var jwtAlgorithm = jwt.SigningMethodHS256

// Claims represents the JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Service issues and checks admin tokens and API keys.
type Service struct {
	db  *gorm.DB
	cfg config.AuthConfig
	log *slog.Logger
}

func New(db *gorm.DB, cfg config.AuthConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, cfg: cfg, log: logger}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a new JWT token for a user
func (s *Service) CreateToken(username string) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", ErrMissingSecret
	}
	ttl := s.cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// VerifyToken verifies a JWT token
func (s *Service) VerifyToken(tokenString string) (*Claims, error) {
	if s.cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Login checks admin credentials and returns a token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	var user database.MasterUser
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return s.CreateToken(user.Username)
}

// EnsureAdminExists creates the configured admin when no admin exists yet.
func (s *Service) EnsureAdminExists(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&database.MasterUser{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := HashPassword(s.cfg.AdminPassword)
	if err != nil {
		return err
	}
	user := database.MasterUser{
		Username:     s.cfg.AdminUsername,
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}
	s.log.Info("default admin user created", slog.String("username", user.Username))
	return nil
}

// GenerateHMACKey creates a signed API key using HMAC-SHA256
func (s *Service) GenerateHMACKey(userID string) string {
	return userID + "." + s.sign(userID)
}

func (s *Service) sign(userID string) string {
	h := hmac.New(sha256.New, []byte(s.cfg.APIMasterSecret))
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMACKey validates an HMAC-signed API key and returns its user id.
func (s *Service) VerifyHMACKey(key string) (string, error) {
	userID, provided, ok := strings.Cut(key, ".")
	if !ok || userID == "" || strings.Contains(provided, ".") {
		return "", ErrInvalidKeyFormat
	}
	if s.cfg.APIMasterSecret == "" {
		return "", ErrMissingSecret
	}

	// Use constant-time comparison to prevent timing attacks
	if !hmac.Equal([]byte(provided), []byte(s.sign(userID))) {
		return "", ErrInvalidSignature
	}
	return userID, nil
}

// ResolveAPIKey verifies key and returns its usage record, creating the
// record the first time a valid key is seen.
func (s *Service) ResolveAPIKey(ctx context.Context, key string) (*database.APIKey, error) {
	userID, err := s.VerifyHMACKey(key)
	if err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var apiKey database.APIKey
	// Attrs only apply on create; the lookup is by key alone.
	if err := db.Where(database.APIKey{Key: key}).Attrs(database.APIKey{
		KeyPreview: KeyPreview(key),
		Name:       userID,
		RateLimit:  s.DefaultRateLimit(),
	}).FirstOrCreate(&apiKey).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	apiKey.LastUsed = &now
	if err := db.Model(&apiKey).Update("last_used", now).Error; err != nil {
		return nil, err
	}
	return &apiKey, nil
}

// DefaultRateLimit is the daily request limit given to new keys.
func (s *Service) DefaultRateLimit() int {
	if s.cfg.DefaultRateLimit > 0 {
		return s.cfg.DefaultRateLimit
	}
	return 10000
}

// KeyPreview masks a key for listings, e.g. "ops...9f3a".
func KeyPreview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}
