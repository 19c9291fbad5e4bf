package gmailclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/jakechorley/referee-designation/internal/config"
	"github.com/jakechorley/referee-designation/pkg/utils"
)

// Client wraps the Gmail API client
type Client struct {
	service *gmail.Service
	userID  string
	sender  string
	// federation signs every offer email
	federation string
	clock      clockwork.Clock

	lastSendTime time.Time
	sendMutex    sync.Mutex
}

// NewClient creates a new Gmail client using an existing OAuth token.
// The token should already carry the gmail.send scope.
func NewClient(ctx context.Context, oauthCfg *config.OAuthClientConfig, token *oauth2.Token, cfg *config.Config) (*Client, error) {
	oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get oauth config: %w", err)
	}

	httpClient := oauthConfig.Client(ctx, token)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return newClient(service, cfg, clockwork.NewRealClock()), nil
}

func newClient(service *gmail.Service, cfg *config.Config, clock clockwork.Clock) *Client {
	userID := cfg.GmailUserID
	if userID == "" {
		userID = "me"
	}
	return &Client{
		service:    service,
		userID:     userID,
		sender:     cfg.GmailSender,
		federation: cfg.Federation,
		clock:      clock,
	}
}
