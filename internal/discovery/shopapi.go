package discovery

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"reelpost/internal/catalog"
	"reelpost/internal/config"
	"reelpost/internal/logging"
	"reelpost/internal/services"
)

const searchPath = "/product/202309/products/search"

// ShopSource fetches trending products from the shop partner API using
// app-key/secret request signing.
type ShopSource struct {
	cfg    *config.Config
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewShopSource builds a shop API source.
func NewShopSource(cfg *config.Config, logger *slog.Logger) *ShopSource {
	timeout := time.Duration(cfg.Discovery.RequestTimeout) * time.Second
	return &ShopSource{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		logger: componentLogger(logger),
		now:    time.Now,
	}
}

type shopImage struct {
	URL string `json:"url"`
}

type shopProduct struct {
	ProductID      string      `json:"product_id"`
	ProductName    string      `json:"product_name"`
	Description    string      `json:"description"`
	Price          float64     `json:"price"`
	CommissionRate float64     `json:"commission_rate"`
	CategoryName   string      `json:"category_name"`
	Rating         float64     `json:"rating"`
	Images         []shopImage `json:"images"`
	ProductURL     string      `json:"product_url"`
}

type shopSearchResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Products []shopProduct `json:"products"`
	} `json:"data"`
}

// Fetch queries the product search endpoint sorted by sales and returns
// candidates that pass the configured filters.
func (s *ShopSource) Fetch(ctx context.Context, limit int) ([]*catalog.Product, error) {
	discovery := s.cfg.Discovery

	params := url.Values{}
	params.Set("app_key", discovery.AppKey)
	params.Set("access_token", discovery.AccessToken)
	params.Set("page_size", strconv.Itoa(limit))
	params.Set("sort_by", "sales")
	params.Set("timestamp", strconv.FormatInt(s.now().Unix(), 10))
	params.Set("sign", signRequest(searchPath, params, discovery.AppSecret))

	endpoint := strings.TrimRight(discovery.BaseURL, "/") + searchPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "discovery", "search", "build request", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "discovery", "search", "shop api request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, services.Wrap(services.ErrTransient, "discovery", "search", fmt.Sprintf("shop api returned %s", resp.Status), nil)
	}

	var payload shopSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "discovery", "search", "decode response", err)
	}
	if payload.Code != 0 {
		return nil, services.Wrap(services.ErrExternalTool, "discovery", "search", fmt.Sprintf("shop api error %d: %s", payload.Code, payload.Message), nil)
	}

	products := make([]*catalog.Product, 0, len(payload.Data.Products))
	for _, item := range payload.Data.Products {
		if !meetsCriteria(s.cfg.Filters, item.Price, item.CommissionRate, item.Rating) {
			continue
		}

		product := &catalog.Product{
			ProductKey:     item.ProductID,
			Title:          item.ProductName,
			Description:    item.Description,
			Price:          item.Price,
			CommissionRate: item.CommissionRate,
			Rating:         item.Rating,
			Category:       item.CategoryName,
			ProductURL:     item.ProductURL,
		}
		if len(item.Images) > 0 {
			product.ImageURL = item.Images[0].URL
		}
		if product.Category == "" {
			product.Category = "General"
		}
		if product.ProductURL == "" {
			product.ProductURL = affiliateLink(discovery, item.ProductID)
		}
		products = append(products, product)
	}

	s.logger.Info("shop products fetched",
		logging.Int("returned", len(payload.Data.Products)),
		logging.Int("matched", len(products)),
	)
	return products, nil
}

// signRequest computes the partner API request signature: the request path
// and the sorted query parameters are concatenated, wrapped in the app
// secret on both sides, and HMAC-SHA256 hashed with that same secret. The
// sign and access_token parameters are excluded from the base string.
func signRequest(path string, params url.Values, secret string) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if key == "sign" || key == "access_token" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var base strings.Builder
	base.WriteString(secret)
	base.WriteString(path)
	for _, key := range keys {
		base.WriteString(key)
		base.WriteString(params.Get(key))
	}
	base.WriteString(secret)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(base.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
