package schools

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	userAgent       = "spigell/school-matcher"
	// Max value for page size accepted by the school API.
	perPage = 100
)

// ItemResponse is a single page returned by the school API.
type ItemResponse struct {
	Items   []map[string]any `json:"items"`
	Found   int              `json:"found"`
	Pages   int              `json:"pages"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// HTTPSource fetches schools from a paginated JSON API.
type HTTPSource struct {
	URL        string
	HTTPClient *http.Client
	UserAgent  string

	token  string
	logger *zap.Logger
}

func NewHTTPSource(apiURL, token string, logger *zap.Logger) *HTTPSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPSource{
		URL:   apiURL,
		token: token,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: userAgent,
		logger:    logger,
	}
}

// Schools requests every page for the given division groups.
func (s *HTTPSource) Schools(ctx context.Context, divisions ...string) ([]*School, error) {
	q := url.Values{}
	for _, division := range divisions {
		q.Add("division_group", division)
	}
	q.Set("per_page", strconv.Itoa(perPage))

	items, err := s.getItems(ctx, q)
	if err != nil {
		return nil, err
	}

	return Decode(items)
}

func (s *HTTPSource) getItems(ctx context.Context, q url.Values) ([]map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}

	req = s.setHeaders(req)
	req.URL.RawQuery = q.Encode()

	response, err := s.fetchPage(req)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("got response from school API", zap.Int("pages", response.Pages), zap.Int("max items per page", response.PerPage))

	items := append([]map[string]any{}, response.Items...)

	for response.Page < (response.Pages - 1) {
		s.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", response.Page+1, response.Pages),
		))

		response, err = s.fetchPage(addPage(req, response.Page+1))
		if err != nil {
			return nil, err
		}

		items = append(items, response.Items...)
	}

	return items, nil
}

func (s *HTTPSource) fetchPage(req *http.Request) (*ItemResponse, error) {
	s.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	var response ItemResponse
	if err := json.NewDecoder(body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode school page: %w", err)
	}

	return &response, nil
}

func (s *HTTPSource) setHeaders(req *http.Request) *http.Request {
	if s.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.token))
	}
	req.Header.Set("User-Agent", s.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Content-Type", contentType)

	return req
}

// addPage sets the page parameter on the request URL.
func addPage(req *http.Request, page int) *http.Request {
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	req.URL.RawQuery = q.Encode()

	return req
}
