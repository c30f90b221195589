package oauth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"skypulse-engine/pkg/logger"
)

// GmailOAuth mints read-only Gmail access tokens for the deal-feed poller
// from a long-lived refresh token. The interactive consent flow lives in
// cmd/utils; the service itself never exchanges authorization codes.
type GmailOAuth struct {
	config       *oauth2.Config
	refreshToken string
	logger       logger.Logger
}

func NewGmailOAuth(clientID, clientSecret, refreshToken string, logger logger.Logger) *GmailOAuth {
	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailReadonlyScope},
	}

	return &GmailOAuth{
		config:       config,
		refreshToken: refreshToken,
		logger:       logger,
	}
}

// GetTokenSource returns a cached token source for the Gmail API. Each
// refresh against Google is logged so a stalled feed poll can be told apart
// from a revoked refresh token.
func (o *GmailOAuth) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	seed := &oauth2.Token{
		RefreshToken: o.refreshToken,
		Expiry:       time.Now(), // Force refresh on first use
	}

	return oauth2.ReuseTokenSource(nil, &loggingTokenSource{
		base:   o.config.TokenSource(ctx, seed),
		logger: o.logger,
	})
}

type loggingTokenSource struct {
	base   oauth2.TokenSource
	logger logger.Logger
	mu     sync.Mutex
}

func (s *loggingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.base.Token()
	if err != nil {
		s.logger.Error("Gmail token refresh failed", "error", err)
		return nil, err
	}

	s.logger.Info("Gmail access token refreshed", "expiresAt", token.Expiry.Format(time.RFC3339))
	return token, nil
}
