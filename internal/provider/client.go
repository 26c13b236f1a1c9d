// Package provider implements the remote inventory provider client,
// abstracted behind interfaces for testability. The wire protocol is a
// SOAP-style XML envelope; the rest of the system only depends on the
// logical page shape.
package provider

import (
	"context"
)

// Credentials identify the retailer account at the remote provider.
type Credentials struct {
	AccountID string
	APIKey    string
}

// PageRequest asks for one page of stock records. Pages are 1-based.
type PageRequest struct {
	Page     int
	PageSize int
}

// PageResponse is the logical shape of one stock page. IsError signals a
// provider-side fault carried inside a well-formed response.
type PageResponse struct {
	IsError      bool
	ErrorMessage string
	HasMore      bool
	Items        []StockItem
}

// StockItem is a wire-level stock record as returned by the provider.
type StockItem struct {
	SKU          string `xml:"SKU"`
	Name         string `xml:"Name"`
	Quantity     int    `xml:"Quantity"`
	Allocated    int    `xml:"Allocated"`
	CostPrice    string `xml:"CostPrice"`
	SellingPrice string `xml:"SellingPrice"`
	LastUpdated  string `xml:"LastUpdated"`
}

// WriteItem is one record pushed to the provider's write endpoint.
type WriteItem struct {
	SKU      string
	Name     string
	Quantity int
	Price    float64
	Location string
}

// Client defines the interface for interacting with the remote provider.
type Client interface {
	FetchPage(ctx context.Context, req PageRequest) (*PageResponse, error)
	WriteItem(ctx context.Context, item WriteItem) error
}
