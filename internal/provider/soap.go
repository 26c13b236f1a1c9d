package provider

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mhollis/stocksync/internal/metrics"
)

const soapEnvelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"

// SOAPClient implements Client against the provider's SOAP endpoint.
type SOAPClient struct {
	endpoint    string
	creds       Credentials
	client      *http.Client
	rateLimiter *RateLimiter
}

// SOAPOption configures the SOAPClient.
type SOAPOption func(*SOAPClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) SOAPOption {
	return func(c *SOAPClient) {
		c.client = hc
	}
}

// WithRateLimiter injects a rate limiter that controls per-second and daily
// call limits. When set, every provider call goes through Wait() first.
func WithRateLimiter(r *RateLimiter) SOAPOption {
	return func(c *SOAPClient) {
		c.rateLimiter = r
	}
}

// NewSOAPClient creates a new provider client for the given endpoint.
func NewSOAPClient(endpoint string, creds Credentials, opts ...SOAPOption) *SOAPClient {
	c := &SOAPClient{
		endpoint: endpoint,
		creds:    creds,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type soapEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	NS      string   `xml:"xmlns:soap,attr"`
	Body    soapBody `xml:"soap:Body"`
}

type soapBody struct {
	Content any `xml:",any"`
}

type getStockPageRequest struct {
	XMLName    xml.Name `xml:"GetStockPage"`
	AccountID  string   `xml:"AccountID"`
	APIKey     string   `xml:"APIKey"`
	PageNumber int      `xml:"PageNumber"`
	PageSize   int      `xml:"PageSize"`
}

type setStockItemRequest struct {
	XMLName   xml.Name `xml:"SetStockItem"`
	AccountID string   `xml:"AccountID"`
	APIKey    string   `xml:"APIKey"`
	SKU       string   `xml:"SKU"`
	Name      string   `xml:"Name"`
	Quantity  int      `xml:"Quantity"`
	Price     float64  `xml:"Price"`
	Location  string   `xml:"Location,omitempty"`
}

type soapResponseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		StockPage *getStockPageResponse `xml:"GetStockPageResponse"`
		SetItem   *setStockItemResponse `xml:"SetStockItemResponse"`
	} `xml:"Body"`
}

type getStockPageResponse struct {
	IsError      bool        `xml:"IsError"`
	ErrorMessage string      `xml:"ErrorMessage"`
	HasMore      bool        `xml:"HasMore"`
	Items        []StockItem `xml:"Items>Item"`
}

type setStockItemResponse struct {
	Success bool   `xml:"Success"`
	Message string `xml:"Message"`
}

// FetchPage implements Client.FetchPage. Transport failures and unparsable
// responses are returned as errors; provider-side faults come back inside
// the PageResponse with IsError set.
func (c *SOAPClient) FetchPage(
	ctx context.Context,
	req PageRequest,
) (*PageResponse, error) {
	payload := getStockPageRequest{
		AccountID:  c.creds.AccountID,
		APIKey:     c.creds.APIKey,
		PageNumber: req.Page,
		PageSize:   req.PageSize,
	}

	var envelope soapResponseEnvelope
	if err := c.call(ctx, payload, &envelope); err != nil {
		return nil, err
	}

	resp := envelope.Body.StockPage
	if resp == nil {
		return nil, fmt.Errorf("provider response missing GetStockPageResponse body")
	}

	return &PageResponse{
		IsError:      resp.IsError,
		ErrorMessage: resp.ErrorMessage,
		HasMore:      resp.HasMore,
		Items:        resp.Items,
	}, nil
}

// WriteItem implements Client.WriteItem. A provider-reported failure for
// the item is returned as an error carrying the provider's message.
func (c *SOAPClient) WriteItem(ctx context.Context, item WriteItem) error {
	payload := setStockItemRequest{
		AccountID: c.creds.AccountID,
		APIKey:    c.creds.APIKey,
		SKU:       item.SKU,
		Name:      item.Name,
		Quantity:  item.Quantity,
		Price:     item.Price,
		Location:  item.Location,
	}

	var envelope soapResponseEnvelope
	if err := c.call(ctx, payload, &envelope); err != nil {
		return err
	}

	resp := envelope.Body.SetItem
	if resp == nil {
		return fmt.Errorf("provider response missing SetStockItemResponse body")
	}

	if !resp.Success {
		return fmt.Errorf("provider rejected item %s: %s", item.SKU, resp.Message)
	}

	return nil
}

func (c *SOAPClient) call(ctx context.Context, payload any, out *soapResponseEnvelope) error {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyQuotaExceeded) {
				metrics.ProviderDailyLimitHits.Inc()
			}
			return fmt.Errorf("rate limit: %w", err)
		}
		metrics.ProviderCallsTotal.Inc()
		metrics.ProviderDailyUsage.Set(float64(c.rateLimiter.DailyCount()))
	}

	body, err := xml.Marshal(soapEnvelope{
		NS:   soapEnvelopeNS,
		Body: soapBody{Content: payload},
	})
	if err != nil {
		return fmt.Errorf("marshaling SOAP request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint,
		bytes.NewReader(append([]byte(xml.Header), body...)),
	)
	if err != nil {
		return fmt.Errorf("creating HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "text/xml; charset=utf-8")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("executing provider request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(
			"provider API error (status %d): %s",
			resp.StatusCode,
			string(respBody),
		)
	}

	if err := xml.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing provider response: %w", err)
	}

	return nil
}
