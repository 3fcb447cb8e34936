package billz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const tokenProvider = "billz"

// TokenStore persists the cached access token across restarts.
type TokenStore interface {
	Load(provider string) (token string, expiresAt time.Time, err error)
	Save(provider, token string, expiresAt time.Time) error
}

// Client talks to the Billz admin API. It logs in with the configured secret
// token, caches the bearer token until expiry and refreshes it transparently.
// Every request is retried exactly once before the failure surfaces.
type Client struct {
	baseURL     string
	secretToken string
	pageSize    int
	tokens      TokenStore
	httpClient  *http.Client
	logger      zerolog.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewClient(baseURL, secretToken string, pageSize int, tokens TokenStore, logger zerolog.Logger) *Client {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Client{
		baseURL:     baseURL,
		secretToken: secretToken,
		pageSize:    pageSize,
		tokens:      tokens,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}
}

// FetchAll pages through the full remote product listing and returns the
// records priced at the designated shop. Records with no price entry for
// that shop are dropped; a missing stock entry means quantity zero.
// Any page failure aborts the fetch: a partial catalog would look like a
// mass stock-out to the sweeper.
func (c *Client) FetchAll(shopID string) ([]Product, error) {
	var all []Product
	page := 1

	for {
		resp, err := c.getProducts(page)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		for _, product := range resp.Products {
			selected := false
			for _, sp := range product.ShopPrices {
				if sp.ShopID == shopID {
					product.Price = sp.RetailPrice
					selected = true
					break
				}
			}
			if !selected {
				continue
			}

			product.Qty = 0
			for _, m := range product.ShopMeasurementValues {
				if m.ShopID == shopID {
					product.Qty = int(m.ActiveMeasurementValue)
					break
				}
			}

			all = append(all, product)
		}

		c.logger.Debug().Int("page", page).Int("received", len(resp.Products)).Msg("fetched product page")

		// A full page means there may be more; anything shorter ends the
		// listing. An exact-multiple catalog costs one empty final page.
		if len(resp.Products) < c.pageSize {
			break
		}
		page++
	}

	c.logger.Info().Int("products", len(all)).Str("shop_id", shopID).Msg("remote fetch complete")
	return all, nil
}

func (c *Client) getProducts(page int) (*ProductsResponse, error) {
	url := fmt.Sprintf("%s/v2/products?limit=%d&page=%d", c.baseURL, c.pageSize, page)

	body, err := c.doRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	var resp ProductsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode products response: %w", err)
	}
	return &resp, nil
}

// doRequest performs an authenticated request, retrying once on failure.
func (c *Client) doRequest(method, url string, payload []byte) ([]byte, error) {
	body, err := c.request(method, url, payload)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("request failed, retrying once")
		body, err = c.request(method, url, payload)
	}
	return body, err
}

func (c *Client) request(method, url string, payload []byte) ([]byte, error) {
	token, err := c.ensureToken()
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// ensureToken returns a valid bearer token, logging in on first use or
// whenever the cached token has expired.
func (c *Client) ensureToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.accessToken != "" && now.Before(c.expiresAt) {
		return c.accessToken, nil
	}

	if c.tokens != nil {
		if token, expiresAt, err := c.tokens.Load(tokenProvider); err == nil && token != "" && now.Before(expiresAt) {
			c.accessToken = token
			c.expiresAt = expiresAt
			return token, nil
		}
	}

	return c.login()
}

func (c *Client) login() (string, error) {
	payload, _ := json.Marshal(map[string]string{
		"secret_token": c.secretToken,
	})

	req, err := http.NewRequest("POST", c.baseURL+"/v1/auth/login", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("login failed: %d - %s", resp.StatusCode, string(body))
	}

	var loginResp loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if loginResp.Data.AccessToken == "" {
		return "", fmt.Errorf("login response contained no access token")
	}

	c.accessToken = loginResp.Data.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(loginResp.Data.ExpiresIn) * time.Second)

	if c.tokens != nil {
		if err := c.tokens.Save(tokenProvider, c.accessToken, c.expiresAt); err != nil {
			c.logger.Warn().Err(err).Msg("failed to persist access token")
		}
	}

	c.logger.Debug().Time("expires_at", c.expiresAt).Msg("obtained new access token")
	return c.accessToken, nil
}
