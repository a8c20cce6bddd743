package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/Mankeylol/lolly-leaderboard-backend/utils"
)

const (
	NeynarFeedUri    = "https://api.neynar.com/v2/farcaster/feed/channels"
	DefaultPageLimit = 100
)

// PageFetcher is the capability the cursor walker drives. An empty cursor
// requests the first page. Implementations must be consistent for a given
// cursor, the walker may be re-run with a failed cursor to resume.
type PageFetcher interface {
	FetchPage(ctx context.Context, cursor string) (*Page, error)
}

// NeynarClient fetches a Farcaster channel feed from the Neynar v2 API.
// Should be constructed with NewNeynarClient.
type NeynarClient struct {
	httpClient *HttpClient
	channelId  string
	limit      int
}

type neynarFeedResponse struct {
	Casts []Cast `json:"casts"`
	Next  struct {
		Cursor string `json:"cursor"`
	} `json:"next"`
}

func NewNeynarClient(apiKey string, channelId string, limit int) *NeynarClient {
	header := http.Header{}
	header.Set("accept", "application/json")
	header.Set("api_key", apiKey)
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return &NeynarClient{
		httpClient: NewHttpClient(header),
		channelId:  channelId,
		limit:      limit,
	}
}

// NewNeynarClientFromEnv builds a client keyed by the NEYNAR_API env var.
func NewNeynarClientFromEnv(channelId string, limit int) *NeynarClient {
	return NewNeynarClient(os.Getenv("NEYNAR_API"), channelId, limit)
}

func (c *NeynarClient) constructUrl(cursor string) string {
	baseUri := utils.GetEnvOrDefault("NEYNAR_FEED_URI", NeynarFeedUri)
	params := url.Values{}
	params.Set("channel_ids", c.channelId)
	params.Set("with_recasts", "true")
	params.Set("with_replies", "true")
	params.Set("limit", fmt.Sprint(c.limit))
	if cursor != "" {
		params.Set("cursor", cursor)
	}
	return baseUri + "?" + params.Encode()
}

func (c *NeynarClient) FetchPage(ctx context.Context, cursor string) (*Page, error) {
	res, err := c.httpClient.Get(ctx, c.constructUrl(cursor))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	resp := &neynarFeedResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, fmt.Errorf("fail to parse feed response: %w", err)
	}

	return &Page{Casts: resp.Casts, NextCursor: resp.Next.Cursor}, nil
}
