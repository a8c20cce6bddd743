package feed

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"

	Logger "github.com/Mankeylol/lolly-leaderboard-backend/utils/log"
)

// HttpClient wraps the stdlib client with a fixed set of headers applied to
// every request, which is how the Neynar api key travels.
type HttpClient struct {
	header http.Header

	client *http.Client
}

func NewHttpClient(header http.Header) *HttpClient {
	return &HttpClient{header: header, client: &http.Client{}}
}

func (c *HttpClient) Get(ctx context.Context, uri string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header = c.header
	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if IsNon200HttpResponse(res) {
		MaybeLogNon200HttpError(res)
		return nil, fmt.Errorf("non-200 http code: %d", res.StatusCode)
	}

	return res, err
}

// Log http response if the error code is not 2XX
func MaybeLogNon200HttpError(res *http.Response) {
	if IsNon200HttpResponse(res) {
		Logger.Log.Errorf("non-200 http code: %d", res.StatusCode)
		LogHttpResponseBody(res)
	}
}

func IsNon200HttpResponse(res *http.Response) bool {
	return res.StatusCode >= 300
}

func LogHttpResponseBody(res *http.Response) {
	body, err := ioutil.ReadAll(res.Body)
	if err == nil {
		Logger.Log.Errorln("response body is: ", string(body))
	}
}
