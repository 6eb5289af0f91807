package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/cortexcart/cortexcart-api/configs"
	"github.com/cortexcart/cortexcart-api/internal/credentials"
	"github.com/cortexcart/cortexcart-api/internal/models"
	"github.com/cortexcart/cortexcart-api/internal/repository"
	"github.com/cortexcart/cortexcart-api/internal/transfer"
)

const (
	facebookAuthURL   = "https://www.facebook.com/v19.0/dialog/oauth"
	facebookGraphURL  = "https://graph.facebook.com/v19.0"
	pinterestAuthURL  = "https://www.pinterest.com/oauth"
	pinterestTokenURL = "https://api.pinterest.com/v5/oauth/token"
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	xAuthURL          = "https://twitter.com/i/oauth2/authorize"
	xTokenURL         = "https://api.twitter.com/2/oauth2/token"
)

// ConnectService handles the OAuth connect flows and writes the resulting
// token material through the credential store. It is the only writer of
// credentials besides the refresh job.
type ConnectService interface {
	GetAuthURL(ctx context.Context, platform, state string) string
	FacebookCallback(ctx context.Context, code, userEmail string) error
	PinterestCallback(ctx context.Context, code, userEmail string) error
	YoutubeCallback(ctx context.Context, code, userEmail string) error
	XCallback(ctx context.Context, code, verifier, userEmail string) error
	ListConnections(ctx context.Context, userEmail string) ([]*models.SocialConnection, error)
	ListInstagramAccounts(ctx context.Context, userEmail string) ([]*models.InstagramAccount, error)
	SelectFacebookPage(ctx context.Context, userEmail, pageID string) error
	SelectInstagramAccount(ctx context.Context, userEmail, instagramUserID string) error
	RefreshYoutube(ctx context.Context, cred *credentials.Credential) error
	RefreshPinterest(ctx context.Context, cred *credentials.Credential) error
	RefreshX(ctx context.Context, cred *credentials.Credential) error
}

type connectService struct {
	cfg    config.Config
	creds  credentials.Store
	sc     repository.SocialConnectionRepository
	ig     repository.InstagramAccountRepository
	client *http.Client
}

func NewConnectService(
	cfg config.Config,
	creds credentials.Store,
	sc repository.SocialConnectionRepository,
	ig repository.InstagramAccountRepository) ConnectService {
	return &connectService{
		cfg:    cfg,
		creds:  creds,
		sc:     sc,
		ig:     ig,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *connectService) GetAuthURL(ctx context.Context, platform, state string) string {
	switch platform {
	case "facebook":
		params := url.Values{}
		params.Add("client_id", s.cfg.FacebookAppID)
		params.Add("redirect_uri", s.cfg.FacebookRedirectURI)
		params.Add("scope", "pages_show_list,pages_manage_posts,pages_read_engagement,instagram_basic,instagram_content_publish,business_management")
		params.Add("response_type", "code")
		params.Add("state", state)
		return fmt.Sprintf("%s?%s", facebookAuthURL, params.Encode())

	case "pinterest":
		params := url.Values{}
		params.Add("client_id", s.cfg.PinterestAppID)
		params.Add("redirect_uri", s.cfg.PinterestRedirectURI)
		params.Add("scope", "boards:read,pins:read,pins:write")
		params.Add("response_type", "code")
		params.Add("state", state)
		return fmt.Sprintf("%s?%s", pinterestAuthURL, params.Encode())

	case "youtube":
		params := url.Values{}
		params.Add("client_id", s.cfg.GoogleClientID)
		params.Add("redirect_uri", s.cfg.GoogleRedirectURI)
		params.Add("response_type", "code")
		params.Add("scope", "https://www.googleapis.com/auth/userinfo.email https://www.googleapis.com/auth/youtube.upload")
		params.Add("access_type", "offline")
		params.Add("prompt", "consent")
		params.Add("state", state)
		return fmt.Sprintf("%s?%s", googleAuthURL, params.Encode())

	case "x":
		params := url.Values{}
		params.Add("client_id", s.cfg.XClientID)
		params.Add("redirect_uri", s.cfg.XRedirectURI)
		params.Add("response_type", "code")
		params.Add("scope", "tweet.read tweet.write users.read offline.access")
		params.Add("code_challenge", "challenge")
		params.Add("code_challenge_method", "plain")
		params.Add("state", state)
		return fmt.Sprintf("%s?%s", xAuthURL, params.Encode())

	default:
		return ""
	}
}

// FacebookCallback exchanges the code, upgrades it to a long-lived token,
// then walks the user's pages storing one page-scoped credential per page
// and recording any linked Instagram business accounts.
func (s *connectService) FacebookCallback(ctx context.Context, code, userEmail string) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}

	token, err := s.exchangeFacebookCode(ctx, code)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(time.Second * time.Duration(token.ExpiresIn))
	err = s.creds.Put(ctx, &credentials.Credential{
		UserEmail:      userEmail,
		Platform:       "facebook",
		AccessToken:    token.AccessToken,
		TokenExpiresAt: expiresAt,
	})
	if err != nil {
		return err
	}

	pages, err := s.fetchFacebookPages(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	for _, page := range pages {
		err = s.creds.Put(ctx, &credentials.Credential{
			UserEmail:      userEmail,
			Platform:       "facebook-page",
			PageID:         page.ID,
			AccessToken:    page.AccessToken,
			TokenExpiresAt: expiresAt,
		})
		if err != nil {
			return err
		}

		if err := s.recordInstagramAccount(ctx, userEmail, page.ID, token.AccessToken); err != nil {
			slog.Info("no instagram account for page", "page_id", page.ID, "error", err)
		}
	}

	return nil
}

func (s *connectService) exchangeFacebookCode(ctx context.Context, code string) (*transfer.FacebookTokenResponse, error) {
	params := url.Values{}
	params.Add("client_id", s.cfg.FacebookAppID)
	params.Add("client_secret", s.cfg.FacebookAppSecret)
	params.Add("redirect_uri", s.cfg.FacebookRedirectURI)
	params.Add("code", code)

	token, err := s.getFacebookToken(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	// Upgrade to a long-lived token (~60 days).
	params = url.Values{}
	params.Add("grant_type", "fb_exchange_token")
	params.Add("client_id", s.cfg.FacebookAppID)
	params.Add("client_secret", s.cfg.FacebookAppSecret)
	params.Add("fb_exchange_token", token.AccessToken)

	longLived, err := s.getFacebookToken(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get long-lived token: %w", err)
	}
	return longLived, nil
}

func (s *connectService) getFacebookToken(ctx context.Context, params url.Values) (*transfer.FacebookTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/oauth/access_token?%s", facebookGraphURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("error response from facebook: %s (status code: %d)", body, resp.StatusCode)
	}

	var token transfer.FacebookTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *connectService) fetchFacebookPages(ctx context.Context, accessToken string) ([]transfer.FacebookPage, error) {
	reqURL := fmt.Sprintf("%s/me/accounts?access_token=%s", facebookGraphURL, url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("error fetching pages: %s (status code: %d)", body, resp.StatusCode)
	}

	var pages transfer.FacebookPageList
	if err := json.NewDecoder(resp.Body).Decode(&pages); err != nil {
		return nil, err
	}
	return pages.Data, nil
}

func (s *connectService) recordInstagramAccount(ctx context.Context, userEmail, pageID, accessToken string) error {
	reqURL := fmt.Sprintf("%s/%s?fields=instagram_business_account{id,username}&access_token=%s",
		facebookGraphURL, pageID, url.QueryEscape(accessToken))
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	var account transfer.InstagramBusinessAccount
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return err
	}
	if account.InstagramBusinessAccount.ID == "" {
		return nil
	}

	return s.ig.Upsert(ctx, &models.InstagramAccount{
		UserEmail:   userEmail,
		PageID:      pageID,
		InstagramID: account.InstagramBusinessAccount.ID,
		Username:    account.InstagramBusinessAccount.Username,
	})
}

func (s *connectService) PinterestCallback(ctx context.Context, code, userEmail string) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}

	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", s.cfg.PinterestRedirectURI)

	token, err := s.pinterestTokenRequest(ctx, data)
	if err != nil {
		return err
	}

	return s.creds.Put(ctx, &credentials.Credential{
		UserEmail:      userEmail,
		Platform:       "pinterest",
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: time.Now().Add(time.Second * time.Duration(token.ExpiresIn)),
	})
}

func (s *connectService) pinterestTokenRequest(ctx context.Context, data url.Values) (*transfer.PinterestTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", pinterestTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.PinterestAppID, s.cfg.PinterestAppSecret)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("error response from pinterest: %s (status code: %d)", body, resp.StatusCode)
	}

	var token transfer.PinterestTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *connectService) YoutubeCallback(ctx context.Context, code, userEmail string) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}

	data := url.Values{}
	data.Set("client_id", s.cfg.GoogleClientID)
	data.Set("client_secret", s.cfg.GoogleClientSecret)
	data.Set("redirect_uri", s.cfg.GoogleRedirectURI)
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)

	resp, err := s.client.PostForm(googleTokenURL, data)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("error response from google: %s (status code: %d)", body, resp.StatusCode)
	}

	var token struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return err
	}

	if token.RefreshToken == "" {
		err := errors.New("refresh token is empty")
		slog.Info(err.Error())
		return err
	}

	return s.creds.Put(ctx, &credentials.Credential{
		UserEmail:      userEmail,
		Platform:       "youtube",
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: time.Now().Add(time.Second * time.Duration(token.ExpiresIn)),
	})
}

func (s *connectService) XCallback(ctx context.Context, code, verifier, userEmail string) error {
	if code == "" {
		err := errors.New("code is empty")
		slog.Info(err.Error())
		return err
	}
	if verifier == "" {
		verifier = "challenge"
	}

	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", s.cfg.XRedirectURI)
	data.Set("code_verifier", verifier)

	token, err := s.xTokenRequest(ctx, data)
	if err != nil {
		return err
	}

	return s.creds.Put(ctx, &credentials.Credential{
		UserEmail:      userEmail,
		Platform:       "x",
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenExpiresAt: time.Now().Add(time.Second * time.Duration(token.ExpiresIn)),
	})
}

func (s *connectService) xTokenRequest(ctx context.Context, data url.Values) (*transfer.XTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", xTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.XClientID, s.cfg.XClientSecret)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("error response from x: %s (status code: %d)", body, resp.StatusCode)
	}

	var token transfer.XTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, err
	}
	return &token, nil
}

func (s *connectService) ListConnections(ctx context.Context, userEmail string) ([]*models.SocialConnection, error) {
	connections, err := s.sc.ListByUser(ctx, userEmail)
	if err != nil {
		return nil, fmt.Errorf("error getting social connections")
	}
	return connections, nil
}

func (s *connectService) ListInstagramAccounts(ctx context.Context, userEmail string) ([]*models.InstagramAccount, error) {
	return s.ig.ListByUser(ctx, userEmail)
}

func (s *connectService) SelectFacebookPage(ctx context.Context, userEmail, pageID string) error {
	if pageID == "" {
		return errors.New("page id is empty")
	}
	return s.sc.SetActiveFacebookPage(ctx, userEmail, pageID)
}

func (s *connectService) SelectInstagramAccount(ctx context.Context, userEmail, instagramUserID string) error {
	if instagramUserID == "" {
		return errors.New("instagram user id is empty")
	}
	return s.sc.SetActiveInstagramUser(ctx, userEmail, instagramUserID)
}

func (s *connectService) RefreshYoutube(ctx context.Context, cred *credentials.Credential) error {
	data := url.Values{}
	data.Set("client_id", s.cfg.GoogleClientID)
	data.Set("client_secret", s.cfg.GoogleClientSecret)
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", cred.RefreshToken)

	resp, err := s.client.PostForm(googleTokenURL, data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("error refreshing google token: %s (status code: %d)", body, resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return err
	}

	return s.creds.Put(ctx, &credentials.Credential{
		UserEmail:      cred.UserEmail,
		Platform:       cred.Platform,
		PageID:         cred.PageID,
		AccessToken:    token.AccessToken,
		RefreshToken:   cred.RefreshToken,
		TokenExpiresAt: time.Now().Add(time.Second * time.Duration(token.ExpiresIn)),
	})
}

func (s *connectService) RefreshPinterest(ctx context.Context, cred *credentials.Credential) error {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", cred.RefreshToken)

	token, err := s.pinterestTokenRequest(ctx, data)
	if err != nil {
		return err
	}

	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = cred.RefreshToken
	}

	return s.creds.Put(ctx, &credentials.Credential{
		UserEmail:      cred.UserEmail,
		Platform:       cred.Platform,
		PageID:         cred.PageID,
		AccessToken:    token.AccessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: time.Now().Add(time.Second * time.Duration(token.ExpiresIn)),
	})
}

func (s *connectService) RefreshX(ctx context.Context, cred *credentials.Credential) error {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", cred.RefreshToken)

	token, err := s.xTokenRequest(ctx, data)
	if err != nil {
		return err
	}

	refreshToken := token.RefreshToken
	if refreshToken == "" {
		refreshToken = cred.RefreshToken
	}

	return s.creds.Put(ctx, &credentials.Credential{
		UserEmail:      cred.UserEmail,
		Platform:       cred.Platform,
		PageID:         cred.PageID,
		AccessToken:    token.AccessToken,
		RefreshToken:   refreshToken,
		TokenExpiresAt: time.Now().Add(time.Second * time.Duration(token.ExpiresIn)),
	})
}
