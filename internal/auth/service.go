package auth

import "log/slog"

// Service is the main auth service with dependencies
type Service struct {
	userRepo UserRepository
	tokens   *TokenService
	logger   *slog.Logger
}

func NewService(userRepo UserRepository, tokens *TokenService, logger *slog.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Authenticate validates credentials and returns a token pair.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	userID, storedHash, isActive, err := s.userRepo.GetCredentials(dto.Username)
	if err != nil {
		// Do not leak whether the account exists.
		return AuthTokens{}, ErrInvalidCredentials
	}

	if !VerifyPassword(dto.Password, storedHash) {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if !isActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokenPair(userID, dto.Username)
}

// RefreshTokens validates a refresh token and returns a new pair. The user
// must still exist and be active at refresh time.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}
	if !user.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokenPair(user.ID, user.Username)
}

func (s *Service) issueTokenPair(userID int64, username string) (AuthTokens, error) {
	accessToken, err := s.tokens.GenerateAccessToken(userID, username)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(userID, username)
	if err != nil {
		return AuthTokens{}, err
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.Validate(tokenString)
}

// GetUser loads a user with its effective permission set attached.
func (s *Service) GetUser(userID int64) (*User, error) {
	return s.userRepo.GetUserByID(userID)
}
