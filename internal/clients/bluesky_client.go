package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	BLUESKY_API_URL     = "https://bsky.social/xrpc"
	BLUESKY_SESSION_URL = BLUESKY_API_URL + "/com.atproto.server.createSession"
	BLUESKY_SEARCH_URL  = BLUESKY_API_URL + "/app.bsky.feed.searchPosts"
)

var (
	blueskyClientInstance *BlueskyClient
	blueskyClientOnce     sync.Once
)

// BlueskyClient talks to the Bluesky AT Protocol API using an app-password
// session. The access token is refreshed transparently on 401.
type BlueskyClient struct {
	Client      *http.Client
	handle      string
	appPassword string

	mu          sync.Mutex
	accessToken string
}

// BlueskyPost is the subset of a searchPosts result the collector consumes.
type BlueskyPost struct {
	URI    string `json:"uri"`
	CID    string `json:"cid"`
	Author struct {
		Handle      string `json:"handle"`
		DisplayName string `json:"displayName"`
	} `json:"author"`
	Record struct {
		Text      string    `json:"text"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"record"`
	LikeCount   int `json:"likeCount"`
	RepostCount int `json:"repostCount"`
	ReplyCount  int `json:"replyCount"`
}

type searchPostsResponse struct {
	Posts  []BlueskyPost `json:"posts"`
	Cursor string        `json:"cursor"`
}

type createSessionResponse struct {
	AccessJwt string `json:"accessJwt"`
	Handle    string `json:"handle"`
}

func GetBlueskyClient(handle, appPassword string) *BlueskyClient {
	blueskyClientOnce.Do(func() {
		blueskyClientInstance = &BlueskyClient{
			Client:      &http.Client{Timeout: 30 * time.Second},
			handle:      handle,
			appPassword: appPassword,
		}
	})
	return blueskyClientInstance
}

// RefreshSession exchanges handle + app password for a fresh access token.
func (bc *BlueskyClient) RefreshSession(ctx context.Context) error {
	bc.mu.Lock()
	defer bc.mu.Unlock()

	body, err := json.Marshal(map[string]string{
		"identifier": bc.handle,
		"password":   bc.appPassword,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, BLUESKY_SESSION_URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)

	resp, err := bc.Client.Do(req)
	if err != nil {
		return fmt.Errorf("[BlueskyClient] Session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("[BlueskyClient] Session refused with status %d: %s",
			resp.StatusCode, string(raw))
	}

	var session createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return fmt.Errorf("[BlueskyClient] Failed to decode session: %w", err)
	}

	bc.accessToken = session.AccessJwt
	slog.Info("[BlueskyClient] Session established",
		slog.String("handle", session.Handle))
	return nil
}

// SearchPosts fetches up to limit recent posts matching query. Server-side
// 5xx responses retry with exponential backoff; client errors do not.
func (bc *BlueskyClient) SearchPosts(ctx context.Context, query string, limit int) ([]BlueskyPost, error) {
	if bc.token() == "" {
		if err := bc.RefreshSession(ctx); err != nil {
			return nil, err
		}
	}

	parsedUrl, err := url.Parse(BLUESKY_SEARCH_URL)
	if err != nil {
		return nil, fmt.Errorf("[BlueskyClient] Failed to parse URL: %w", err)
	}
	queryParams := parsedUrl.Query()
	queryParams.Add("q", query)
	queryParams.Add("limit", strconv.Itoa(limit))
	queryParams.Add("sort", "latest")
	parsedUrl.RawQuery = queryParams.Encode()

	backoff := INITIAL_BACKOFF
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsedUrl.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+bc.token())
		req.Header.Set("User-Agent", USER_AGENT)

		resp, err := bc.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("[BlueskyClient] Search request failed: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			defer resp.Body.Close()
			var result searchPostsResponse
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return nil, fmt.Errorf("[BlueskyClient] Failed to decode search response: %w", err)
			}
			return result.Posts, nil

		case resp.StatusCode == http.StatusUnauthorized:
			resp.Body.Close()
			slog.Warn("[BlueskyClient] Token expired - Refreshing and Retrying...")
			if err := bc.RefreshSession(ctx); err != nil {
				return nil, err
			}

		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			slog.Warn("[BlueskyClient] Retrying request",
				slog.Int("status", resp.StatusCode),
				slog.Int("attempt", attempt),
				slog.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > MAX_BACKOFF {
				backoff = MAX_BACKOFF
			}

		default:
			raw, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("[BlueskyClient] Search refused with status %d: %s",
				resp.StatusCode, string(raw))
		}
	}

	return nil, fmt.Errorf("[BlueskyClient] Search exhausted %d retries", MAX_RETRIES)
}

func (bc *BlueskyClient) token() string {
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.accessToken
}
