package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/travelmate/flightproxy/internal/cache"
	"github.com/travelmate/flightproxy/internal/logging"
	"github.com/travelmate/flightproxy/internal/models"
	"github.com/travelmate/flightproxy/internal/ratelimit"
)

const (
	amadeusName = "amadeus"

	tokenPath        = "/v1/security/oauth2/token"
	flightOffersPath = "/v2/shopping/flight-offers"

	// Tokens are dropped this long before Amadeus expires them.
	tokenExpiryBuffer = 10 * time.Second
	tokenFetchTimeout = 10 * time.Second

	maxResponseBytes = 8 << 20
)

var (
	ErrMissingData  = errors.New("response has no data member")
	ErrMissingToken = errors.New("token response has no access_token")
)

type AmadeusConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	HTTPClient   *http.Client
	Limiter      *ratelimit.EndpointLimiter
	Tokens       cache.TokenCache
}

type AmadeusProvider struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client
	limiter      *ratelimit.EndpointLimiter
	tokens       cache.TokenCache
	tokenGroup   singleflight.Group
}

type amadeusTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type amadeusOffersResponse struct {
	Data json.RawMessage `json:"data"`
}

func NewAmadeusProvider(cfg AmadeusConfig) *AmadeusProvider {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = ratelimit.NewEndpointLimiterWithDefaults()
	}
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = cache.NewMemoryCache()
	}

	return &AmadeusProvider{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		client:       client,
		limiter:      limiter,
		tokens:       tokens,
	}
}

func (p *AmadeusProvider) Name() string {
	return amadeusName
}

// SearchFlightOffers performs exactly one flight-offers call and returns the
// provider's data member as is.
func (p *AmadeusProvider) SearchFlightOffers(ctx context.Context, params models.OfferSearchParams) (models.FlightOffers, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.limiter.Wait(ctx, ratelimit.EndpointFlightOffers); err != nil {
		return nil, NewProviderError(p.Name(), fmt.Errorf("rate limiter: %w", err))
	}

	endpoint := p.baseURL + flightOffersPath + "?" + params.Values().Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewProviderError(p.Name(), err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.amadeus+json, application/json")
	if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("ama-client-ref", requestID)
	}

	status, body, err := p.do(req)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, p.errorFromResponse(status, body)
	}

	var resp amadeusOffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewProviderError(p.Name(), fmt.Errorf("decode flight offers: %w", err))
	}
	if len(resp.Data) == 0 || bytes.Equal(resp.Data, []byte("null")) {
		return nil, NewProviderError(p.Name(), ErrMissingData)
	}

	return resp.Data, nil
}

func (p *AmadeusProvider) accessToken(ctx context.Context) (string, error) {
	if token, ok := p.tokens.Get(ctx, p.clientID); ok {
		return token, nil
	}

	// The fetch is shared by every waiting caller, so it must not end when
	// the caller that started it goes away.
	result := p.tokenGroup.DoChan(p.clientID, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tokenFetchTimeout)
		defer cancel()

		if token, ok := p.tokens.Get(fetchCtx, p.clientID); ok {
			return token, nil
		}
		return p.fetchToken(fetchCtx)
	})

	select {
	case <-ctx.Done():
		return "", NewProviderError(p.Name(), ctx.Err())
	case res := <-result:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (p *AmadeusProvider) fetchToken(ctx context.Context) (string, error) {
	if err := p.limiter.Wait(ctx, ratelimit.EndpointOAuthToken); err != nil {
		return "", NewProviderError(p.Name(), fmt.Errorf("rate limiter: %w", err))
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", NewProviderError(p.Name(), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := p.do(req)
	if err != nil {
		return "", err
	}
	if !isSuccess(status) {
		return "", p.errorFromResponse(status, body)
	}

	var resp amadeusTokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", NewProviderError(p.Name(), fmt.Errorf("decode token: %w", err))
	}
	if resp.AccessToken == "" {
		return "", NewProviderError(p.Name(), ErrMissingToken)
	}

	ttl := time.Duration(resp.ExpiresIn)*time.Second - tokenExpiryBuffer
	if err := p.tokens.Set(ctx, p.clientID, resp.AccessToken, ttl); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("failed to cache access token")
	}

	return resp.AccessToken, nil
}

func (p *AmadeusProvider) do(req *http.Request) (int, []byte, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, NewProviderError(p.Name(), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, NewProviderError(p.Name(), fmt.Errorf("read response: %w", err))
	}
	return resp.StatusCode, body, nil
}

// errorFromResponse keeps the reply only when it is a JSON document the
// caller can be shown; anything else is an unstructured failure.
func (p *AmadeusProvider) errorFromResponse(status int, body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return NewResponseError(p.Name(), status, json.RawMessage(trimmed))
	}
	return NewProviderError(p.Name(), fmt.Errorf("unexpected status %d with non-JSON body", status))
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
