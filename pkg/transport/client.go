package transport

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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/meridianpay/meridian-go/pkg/apierror"
	"github.com/meridianpay/meridian-go/pkg/intents"
)

const (
	// DefaultBaseURL is the live API host.
	DefaultBaseURL = "https://api.meridianpay.com"

	headerRequestID = "Request-Id"
)

// Client is the default Repository implementation: form-encoded
// requests, bearer auth with the publishable key, JSON responses,
// OpenTelemetry-instrumented HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithHTTPClient swaps the underlying HTTP client. The transport is
// still wrapped with otelhttp.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 80 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	base := c.httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.httpClient.Transport = otelhttp.NewTransport(base)
	return c
}

// intentCollection picks the API collection from the intent id prefix:
// setup intents are "seti_...", everything else is a payment intent.
func intentCollection(intentID string) string {
	if strings.HasPrefix(intentID, "seti_") {
		return "setup_intents"
	}
	return "payment_intents"
}

func (c *Client) ConfirmIntent(ctx context.Context, params intents.ConfirmParams, opts RequestOptions) (*intents.Intent, error) {
	intentID, err := intents.IDFromClientSecret(params.ClientSecret)
	if err != nil {
		return nil, err
	}
	form := params.Encode()
	form.Set("client_secret", params.ClientSecret)

	body, err := c.do(ctx, http.MethodPost,
		fmt.Sprintf("/v1/%s/%s/confirm", intentCollection(intentID), intentID), form, opts)
	if err != nil {
		return nil, err
	}
	return intents.ParseIntent(body)
}

func (c *Client) RetrieveIntent(ctx context.Context, clientSecret string, opts RequestOptions) (*intents.Intent, error) {
	intentID, err := intents.IDFromClientSecret(clientSecret)
	if err != nil {
		return nil, err
	}
	query := url.Values{"client_secret": {clientSecret}}
	body, err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("/v1/%s/%s?%s", intentCollection(intentID), intentID, query.Encode()), nil, opts)
	if err != nil {
		return nil, err
	}
	return intents.ParseIntent(body)
}

func (c *Client) Start3DS2Auth(ctx context.Context, params intents.AuthParams, opts RequestOptions) (*intents.AuthResult, error) {
	form := url.Values{
		"source":                   {params.SourceID},
		"app_id":                   {params.SDKAppID},
		"source_reference_number":  {params.SDKReferenceNumber},
		"sdk_transaction_id":       {params.SDKTransactionID},
		"device_render_options":    {params.DeviceData},
		"sdk_ephemeral_public_key": {params.SDKEphemeralKey},
		"message_version":          {params.MessageVersion},
		"timeout":                  {strconv.Itoa(params.TimeoutMinutes)},
	}
	body, err := c.do(ctx, http.MethodPost, "/v1/3ds2/authenticate", form, opts)
	if err != nil {
		return nil, err
	}
	return intents.ParseAuthResult(body)
}

func (c *Client) Complete3DS2Auth(ctx context.Context, sourceID string, opts RequestOptions) (bool, error) {
	form := url.Values{"source": {sourceID}}
	body, err := c.do(ctx, http.MethodPost, "/v1/3ds2/challenge_complete", form, opts)
	if err != nil {
		return false, err
	}
	var result struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return false, apierror.Connection(err)
	}
	return result.State == "succeeded", nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, opts RequestOptions) ([]byte, error) {
	var reqBody io.Reader
	if form != nil {
		reqBody = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, apierror.Connection(err)
	}
	req.Header.Set("Authorization", "Bearer "+opts.APIKey)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if opts.AccountID != "" {
		req.Header.Set("Meridian-Account", opts.AccountID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apierror.Connection(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierror.Connection(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apierror.Parse(body, resp.StatusCode, resp.Header.Get(headerRequestID))
	}
	return body, nil
}
