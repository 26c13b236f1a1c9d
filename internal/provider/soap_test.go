package provider_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhollis/stocksync/internal/provider"
)

const stockPageXML = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetStockPageResponse>
      <IsError>false</IsError>
      <HasMore>true</HasMore>
      <Items>
        <Item>
          <SKU>WIDGET-1</SKU>
          <Name>Widget</Name>
          <Quantity>42</Quantity>
          <Allocated>2</Allocated>
          <CostPrice>3.50</CostPrice>
          <SellingPrice>9.99</SellingPrice>
          <LastUpdated>2026-08-30T12:00:00Z</LastUpdated>
        </Item>
        <Item>
          <SKU>WIDGET-2</SKU>
          <Name>Widget Two Pack</Name>
          <Quantity>7</Quantity>
        </Item>
      </Items>
    </GetStockPageResponse>
  </soap:Body>
</soap:Envelope>`

const errorPageXML = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetStockPageResponse>
      <IsError>true</IsError>
      <ErrorMessage>invalid credentials</ErrorMessage>
      <HasMore>false</HasMore>
    </GetStockPageResponse>
  </soap:Body>
</soap:Envelope>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *provider.SOAPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return provider.NewSOAPClient(
		srv.URL,
		provider.Credentials{AccountID: "acct-1", APIKey: "key-1"},
		provider.WithHTTPClient(srv.Client()),
	)
}

func TestSOAPClient_FetchPage(t *testing.T) {
	t.Parallel()

	var gotBody string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(stockPageXML))
	})

	resp, err := client.FetchPage(context.Background(), provider.PageRequest{
		Page:     2,
		PageSize: 100,
	})
	require.NoError(t, err)

	assert.False(t, resp.IsError)
	assert.True(t, resp.HasMore)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "WIDGET-1", resp.Items[0].SKU)
	assert.Equal(t, 42, resp.Items[0].Quantity)
	assert.Equal(t, "3.50", resp.Items[0].CostPrice)

	// Request carried credentials and paging.
	assert.Contains(t, gotBody, "<GetStockPage>")
	assert.Contains(t, gotBody, "<AccountID>acct-1</AccountID>")
	assert.Contains(t, gotBody, "<PageNumber>2</PageNumber>")
	assert.Contains(t, gotBody, "<PageSize>100</PageSize>")
}

func TestSOAPClient_FetchPage_ProviderFault(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(errorPageXML))
	})

	resp, err := client.FetchPage(context.Background(), provider.PageRequest{Page: 1})
	require.NoError(t, err)

	assert.True(t, resp.IsError)
	assert.Equal(t, "invalid credentials", resp.ErrorMessage)
	assert.Empty(t, resp.Items)
}

func TestSOAPClient_FetchPage_HTTPError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := client.FetchPage(context.Background(), provider.PageRequest{Page: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestSOAPClient_FetchPage_MalformedResponse(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<<<not xml"))
	})

	_, err := client.FetchPage(context.Background(), provider.PageRequest{Page: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing provider response")
}

func TestSOAPClient_FetchPage_MissingBody(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<Envelope><Body></Body></Envelope>`))
	})

	_, err := client.FetchPage(context.Background(), provider.PageRequest{Page: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing GetStockPageResponse")
}

func TestSOAPClient_WriteItem(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		wantErr  string
	}{
		{
			name: "accepted",
			response: `<Envelope><Body><SetStockItemResponse>
				<Success>true</Success>
			</SetStockItemResponse></Body></Envelope>`,
		},
		{
			name: "rejected with message",
			response: `<Envelope><Body><SetStockItemResponse>
				<Success>false</Success>
				<Message>unknown SKU</Message>
			</SetStockItemResponse></Body></Envelope>`,
			wantErr: "unknown SKU",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotBody string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				gotBody = string(body)
				_, _ = w.Write([]byte(tt.response))
			})

			err := client.WriteItem(context.Background(), provider.WriteItem{
				SKU:      "GADGET-9",
				Name:     "Gadget",
				Quantity: 12,
				Price:    4.25,
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.True(t, strings.Contains(gotBody, "<SKU>GADGET-9</SKU>"))
			assert.Contains(t, gotBody, "<Quantity>12</Quantity>")
		})
	}
}
