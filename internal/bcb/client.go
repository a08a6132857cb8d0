package bcb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/alevtelles/agente-crewai-mercado-pix/internal/models"
)

const (
	// DefaultBaseURL is the base URL for the Olinda Pix open-data service.
	DefaultBaseURL = "https://olinda.bcb.gov.br/olinda/servico/Pix_DadosAbertos/versao/v1/odata"

	// DefaultTimeout bounds every request to the source.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the $top value requested per query.
	DefaultPageSize = 1000

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5
)

// Client is an Olinda Pix open-data client.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
	now        func() time.Time
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithPageSize sets the $top value.
func WithPageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithClock overrides the query timestamp source.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new Olinda client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		pageSize: DefaultPageSize,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchByMunicipality returns the records of one municipality for the period.
// The source's name filter rejects variant spellings, so the whole period is
// requested and filtered locally on the normalised Municipio field.
func (c *Client) FetchByMunicipality(ctx context.Context, municipality string, period models.Period) ([]models.TransactionRecord, error) {
	path := fmt.Sprintf("/%s(DataBase='%s')", EntityMunicipality, period.Compact())
	params := url.Values{}
	params.Set("$top", strconv.Itoa(c.pageSize))

	var resp odataResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	want := NormalizeName(municipality)
	matched := make([]models.TransactionRecord, 0)
	for _, rec := range resp.Value {
		if NormalizeName(rec.Municipio) == want {
			matched = append(matched, rec)
		}
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("municipality", municipality).
			Str("period", period.String()).
			Int("total", len(resp.Value)).
			Int("matched", len(matched)).
			Msg("Filtered municipality records")
	}

	return matched, nil
}

// StateCode returns the upper-cased two-letter UF, or an invalid_input error.
func StateCode(state string) (string, error) {
	uf := strings.ToUpper(strings.TrimSpace(state))
	if len(uf) != 2 || uf[0] < 'A' || uf[0] > 'Z' || uf[1] < 'A' || uf[1] > 'Z' {
		return "", models.NewError(models.ErrInvalidInput, models.StagePix,
			fmt.Sprintf("UF inválida %q: use a sigla de duas letras, por exemplo SC", state))
	}
	return uf, nil
}

// FetchByState returns the records of one state for the period, filtered by the source.
func (c *Client) FetchByState(ctx context.Context, state string, period models.Period) ([]models.TransactionRecord, error) {
	uf, err := StateCode(state)
	if err != nil {
		return nil, err
	}
	params := url.Values{}
	params.Set("$filter", fmt.Sprintf("MesAno eq '%s' and Estado eq '%s'", period.Compact(), uf))
	params.Set("$top", strconv.Itoa(c.pageSize))

	var resp odataResponse
	if err := c.get(ctx, "/"+EntityState, params, &resp); err != nil {
		return nil, err
	}

	return resp.Value, nil
}

// get performs a GET request to the service.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{RetryAfter: time.Second}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("$format", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Debug().
			Str("url", reqURL).
			Msg("BCB API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
