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
	"strconv"
	"strings"
	"time"

	"github.com/maheshrc27/storyflow/internal/transfer"
)

const defaultInstagramBaseURL = "https://i.instagram.com"

// PlatformClient is a session-based client of a publishing platform, used to
// take already published media down.
type PlatformClient interface {
	Login(ctx context.Context, username, password string) (*transfer.PlatformSession, error)
	DeleteMedia(ctx context.Context, session *transfer.PlatformSession, mediaID string) error
}

type instagramService struct {
	baseURL string
	client  *http.Client
}

func NewInstagramService(baseURL string, client *http.Client) PlatformClient {
	if baseURL == "" {
		baseURL = defaultInstagramBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &instagramService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (ig *instagramService) Login(ctx context.Context, username, password string) (*transfer.PlatformSession, error) {
	if username == "" || password == "" {
		err := errors.New("instagram login requires username and password")
		slog.Info(err.Error())
		return nil, err
	}

	data := url.Values{}
	data.Set("username", username)
	data.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ig.baseURL+"/api/v1/accounts/login/", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ig.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("instagram login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("instagram login failed: %w", decodeInstagramError(resp))
	}

	var result transfer.InstagramLoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("instagram login returned status %q", result.Status)
	}

	return &transfer.PlatformSession{
		UserID:        strconv.FormatInt(result.LoggedInUser.PK, 10),
		Username:      result.LoggedInUser.Username,
		Authorization: resp.Header.Get("ig-set-authorization"),
		Cookies:       resp.Cookies(),
	}, nil
}

func (ig *instagramService) DeleteMedia(ctx context.Context, session *transfer.PlatformSession, mediaID string) error {
	if session == nil {
		return errors.New("instagram session is nil")
	}
	if mediaID == "" {
		return errors.New("media id is empty")
	}

	data := url.Values{}
	data.Set("media_id", mediaID)

	endpoint := fmt.Sprintf("%s/api/v1/media/%s/delete/", ig.baseURL, url.PathEscape(mediaID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if session.Authorization != "" {
		req.Header.Set("Authorization", session.Authorization)
	}
	for _, c := range session.Cookies {
		req.AddCookie(c)
	}

	resp, err := ig.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		igErr := decodeInstagramError(resp)
		if resp.StatusCode == http.StatusNotFound || mediaGone(igErr.Error()) {
			return fmt.Errorf("media %s: %w: %v", mediaID, ErrMediaNotFound, igErr)
		}
		return fmt.Errorf("failed to delete media %s: %w", mediaID, igErr)
	}

	var result transfer.InstagramDeleteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	if !result.DidDelete {
		return fmt.Errorf("instagram did not delete media %s", mediaID)
	}

	return nil
}

func mediaGone(msg string) bool {
	msg = strings.ToLower(msg)
	for _, m := range []string{"not found", "unavailable", "does not exist"} {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

func decodeInstagramError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var igErr transfer.InstagramErrorResponse
	if err := json.Unmarshal(body, &igErr); err != nil {
		return fmt.Errorf("unexpected status code from Instagram: %d: %s", resp.StatusCode, body)
	}
	return fmt.Errorf("unexpected status code from Instagram: %d: %s", resp.StatusCode, igErr.Reason())
}
