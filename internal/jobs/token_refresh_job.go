package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cortexcart/cortexcart-api/internal/credentials"
	"github.com/cortexcart/cortexcart-api/internal/service"
)

type TokenRefreshJob struct {
	creds   credentials.Store
	connect service.ConnectService
}

func NewTokenRefreshJob(creds credentials.Store, connect service.ConnectService) *TokenRefreshJob {
	return &TokenRefreshJob{
		creds:   creds,
		connect: connect,
	}
}

// RefreshTokens renews credentials expiring within the next 30 minutes.
// Facebook tokens are long-lived and have no refresh grant, so only the
// refresh-token platforms are handled here.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	expiring, err := c.creds.ListExpiring(ctx, time.Now().Add(30*time.Minute))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, cred := range expiring {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(cred *credentials.Credential) {
			defer wg.Done()
			defer func() { <-semaphore }()

			var err error
			switch cred.Platform {
			case "youtube":
				err = c.connect.RefreshYoutube(ctx, cred)
			case "pinterest":
				err = c.connect.RefreshPinterest(ctx, cred)
			case "x":
				err = c.connect.RefreshX(ctx, cred)
			default:
				return
			}

			if err != nil {
				slog.Info("unable to refresh token", "platform", cred.Platform, "user", cred.UserEmail, "error", err)
			}
		}(cred)
	}

	wg.Wait()
}
