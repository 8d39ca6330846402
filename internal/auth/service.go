package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registration is the result of registering a device.
type Registration struct {
	DeviceID    string
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	ExpiresIn   time.Duration
}

// ServiceConfig holds configuration for the auth service.
type ServiceConfig struct {
	JWTService *JWTService
	Logger     zerolog.Logger
}

// Service registers devices and validates their tokens.
type Service struct {
	jwt    *JWTService
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new auth service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		jwt:    cfg.JWTService,
		logger: cfg.Logger,
		now:    time.Now,
	}
}

// RegisterDevice creates a new device ID and issues its token.
func (s *Service) RegisterDevice(_ context.Context) (*Registration, error) {
	deviceID := generateDeviceID()

	token, expiresAt, err := s.jwt.GenerateAccessToken(deviceID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("device_id", deviceID).
		Time("expires_at", expiresAt).
		Msg("device registered")

	return &Registration{
		DeviceID:    deviceID,
		AccessToken: token,
		TokenType:   TokenType,
		ExpiresAt:   expiresAt,
		ExpiresIn:   expiresAt.Sub(s.now()).Round(time.Second),
	}, nil
}

// ValidateAccessToken validates a device token and returns the device ID.
func (s *Service) ValidateAccessToken(tokenString string) (string, error) {
	claims, err := s.jwt.ValidateAccessToken(tokenString)
	if err != nil {
		return "", err
	}
	return claims.DeviceID, nil
}

// generateDeviceID generates a new device ID.
func generateDeviceID() string {
	return "dev_" + uuid.New().String()[:22]
}
