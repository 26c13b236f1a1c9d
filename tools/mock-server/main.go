// Package main implements a mock stock provider for local development.
// It speaks the provider's SOAP dialect over a single endpoint, serving
// paginated stock pages from a JSON fixture and accepting item writes
// into an in-memory overlay, so the full sync and upload paths can be
// exercised without real provider credentials.
package main

import (
	"encoding/json"
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"
)

type stockItem struct {
	SKU          string `json:"sku"           xml:"SKU"`
	Name         string `json:"name"          xml:"Name"`
	Quantity     int    `json:"quantity"      xml:"Quantity"`
	Allocated    int    `json:"allocated"     xml:"Allocated"`
	CostPrice    string `json:"cost_price"    xml:"CostPrice"`
	SellingPrice string `json:"selling_price" xml:"SellingPrice"`
	LastUpdated  string `json:"last_updated"  xml:"LastUpdated"`
}

type soapRequest struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		StockPage *getStockPageRequest `xml:"GetStockPage"`
		SetItem   *setStockItemRequest `xml:"SetStockItem"`
	} `xml:"Body"`
}

type getStockPageRequest struct {
	AccountID  string `xml:"AccountID"`
	APIKey     string `xml:"APIKey"`
	PageNumber int    `xml:"PageNumber"`
	PageSize   int    `xml:"PageSize"`
}

type setStockItemRequest struct {
	AccountID string  `xml:"AccountID"`
	APIKey    string  `xml:"APIKey"`
	SKU       string  `xml:"SKU"`
	Name      string  `xml:"Name"`
	Quantity  int     `xml:"Quantity"`
	Price     float64 `xml:"Price"`
	Location  string  `xml:"Location"`
}

type getStockPageResponse struct {
	XMLName      xml.Name    `xml:"GetStockPageResponse"`
	IsError      bool        `xml:"IsError"`
	ErrorMessage string      `xml:"ErrorMessage"`
	HasMore      bool        `xml:"HasMore"`
	Items        []stockItem `xml:"Items>Item"`
}

type setStockItemResponse struct {
	XMLName xml.Name `xml:"SetStockItemResponse"`
	Success bool     `xml:"Success"`
	Message string   `xml:"Message"`
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	NS      string   `xml:"xmlns:soap,attr"`
	Body    struct {
		Content any `xml:",any"`
	} `xml:"soap:Body"`
}

// mockProvider holds the fixture items plus any writes received since start.
type mockProvider struct {
	mu       sync.Mutex
	items    []stockItem
	index    map[string]int // SKU -> position in items
	failPage int            // page number that returns a provider fault, 0 disables
	log      *slog.Logger
}

func newMockProvider(items []stockItem, failPage int, log *slog.Logger) *mockProvider {
	p := &mockProvider{
		items:    items,
		index:    make(map[string]int, len(items)),
		failPage: failPage,
		log:      log,
	}
	for i := range items {
		p.index[items[i].SKU] = i
	}
	return p
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/stock_items.json", "path to stock items fixture")
	failPage := flag.Int("fail-page", 0, "return a provider fault for this page number (0 disables)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	items, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "items", len(items))

	provider := newMockProvider(items, *failPage, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /", provider.handleSOAP)

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock stock provider", "addr", addr, "fail_page", *failPage)

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) ([]stockItem, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var items []stockItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return items, nil
}

func (p *mockProvider) handleSOAP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "reading request body", http.StatusBadRequest)
		return
	}

	var req soapRequest
	if err := xml.Unmarshal(body, &req); err != nil {
		p.log.Warn("unparsable SOAP request", "error", err)
		http.Error(w, "malformed SOAP envelope", http.StatusBadRequest)
		return
	}

	switch {
	case req.Body.StockPage != nil:
		p.handleStockPage(w, req.Body.StockPage)
	case req.Body.SetItem != nil:
		p.handleSetItem(w, req.Body.SetItem)
	default:
		http.Error(w, "unknown SOAP operation", http.StatusBadRequest)
	}
}

func (p *mockProvider) handleStockPage(w http.ResponseWriter, req *getStockPageRequest) {
	if req.AccountID == "" || req.APIKey == "" {
		writeSOAP(w, getStockPageResponse{
			IsError:      true,
			ErrorMessage: "missing credentials",
		})
		p.log.Warn("stock page request missing credentials")
		return
	}

	if p.failPage > 0 && req.PageNumber == p.failPage {
		writeSOAP(w, getStockPageResponse{
			IsError:      true,
			ErrorMessage: fmt.Sprintf("simulated fault on page %d", req.PageNumber),
		})
		p.log.Info("returned simulated fault", "page", req.PageNumber)
		return
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	page := req.PageNumber
	if page < 1 {
		page = 1
	}

	p.mu.Lock()
	total := len(p.items)
	start := (page - 1) * pageSize
	var items []stockItem
	if start < total {
		end := min(start+pageSize, total)
		items = append(items, p.items[start:end]...)
	}
	p.mu.Unlock()

	writeSOAP(w, getStockPageResponse{
		HasMore: start+pageSize < total,
		Items:   items,
	})
	p.log.Info("served stock page", "page", page, "page_size", pageSize, "items", len(items))
}

func (p *mockProvider) handleSetItem(w http.ResponseWriter, req *setStockItemRequest) {
	if req.AccountID == "" || req.APIKey == "" {
		writeSOAP(w, setStockItemResponse{Success: false, Message: "missing credentials"})
		return
	}
	if req.SKU == "" {
		writeSOAP(w, setStockItemResponse{Success: false, Message: "missing SKU"})
		return
	}

	item := stockItem{
		SKU:          req.SKU,
		Name:         req.Name,
		Quantity:     req.Quantity,
		SellingPrice: fmt.Sprintf("%.2f", req.Price),
		LastUpdated:  time.Now().UTC().Format(time.RFC3339),
	}

	p.mu.Lock()
	if i, ok := p.index[req.SKU]; ok {
		p.items[i] = item
	} else {
		p.index[req.SKU] = len(p.items)
		p.items = append(p.items, item)
	}
	p.mu.Unlock()

	writeSOAP(w, setStockItemResponse{Success: true, Message: "ok"})
	p.log.Info("stored item", "sku", req.SKU, "quantity", req.Quantity)
}

func writeSOAP(w http.ResponseWriter, content any) {
	env := responseEnvelope{NS: "http://schemas.xmlsoap.org/soap/envelope/"}
	env.Body.Content = content

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	w.Write([]byte(xml.Header))
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	xml.NewEncoder(w).Encode(env)
}
