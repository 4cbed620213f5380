package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fundlink-next/internal/cache"
	"github.com/fundlink-next/internal/config"
	"github.com/fundlink-next/internal/logger"
)

// MarketDataService 行情代理服务
// 只做只读透传：基金 NAV 与资讯走上游公开接口，结果经 Redis 缓存，
// 上游故障统一折叠为 ErrMarketDataUnavailable。
type MarketDataService struct {
	cfg        config.MarketDataConfig
	httpClient *http.Client
}

// NewMarketDataService 创建行情代理服务
func NewMarketDataService(cfg config.MarketDataConfig) *MarketDataService {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &MarketDataService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SearchSchemes 按关键词检索基金
func (s *MarketDataService) SearchSchemes(ctx context.Context, query string) (json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return json.RawMessage("[]"), nil
	}
	endpoint := fmt.Sprintf("%s/mf/search?q=%s", strings.TrimRight(s.cfg.NAVBaseURL, "/"), url.QueryEscape(query))
	return s.fetchCached(ctx, "marketdata:search:"+strings.ToLower(query), endpoint)
}

// GetLatestNAV 查询基金最新净值
func (s *MarketDataService) GetLatestNAV(ctx context.Context, schemeCode string) (json.RawMessage, error) {
	schemeCode = strings.TrimSpace(schemeCode)
	if schemeCode == "" {
		return nil, ErrNotFound
	}
	endpoint := fmt.Sprintf("%s/mf/%s/latest", strings.TrimRight(s.cfg.NAVBaseURL, "/"), url.PathEscape(schemeCode))
	return s.fetchCached(ctx, "marketdata:nav:"+schemeCode, endpoint)
}

// GetNews 查询市场资讯，未配置上游时返回空列表
func (s *MarketDataService) GetNews(ctx context.Context) (json.RawMessage, error) {
	endpoint := strings.TrimSpace(s.cfg.NewsBaseURL)
	if endpoint == "" {
		return json.RawMessage("[]"), nil
	}
	return s.fetchCached(ctx, "marketdata:news", endpoint)
}

func (s *MarketDataService) fetchCached(ctx context.Context, cacheKey, endpoint string) (json.RawMessage, error) {
	var cached json.RawMessage
	hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
	if cacheErr == nil && hit {
		return cached, nil
	}

	payload, err := s.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	_ = cache.SetJSON(ctx, cacheKey, payload, s.cacheTTL())
	return payload, nil
}

func (s *MarketDataService) fetch(ctx context.Context, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarketDataUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Warnw("market_data_fetch_failed", "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrMarketDataUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Warnw("market_data_upstream_status", "endpoint", endpoint, "status", resp.StatusCode)
		return nil, ErrMarketDataUnavailable
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarketDataUnavailable, err)
	}
	if !json.Valid(body) {
		return nil, ErrMarketDataUnavailable
	}
	return json.RawMessage(body), nil
}

func (s *MarketDataService) cacheTTL() time.Duration {
	if s.cfg.CacheTTLSeconds > 0 {
		return time.Duration(s.cfg.CacheTTLSeconds) * time.Second
	}
	return 10 * time.Minute
}
