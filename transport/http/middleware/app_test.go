package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"roombook/config"
	"roombook/infras/metrics"
	"roombook/infras/otel/mocks"
	"roombook/shared/cache"
	cacheMocks "roombook/shared/cache/mocks"
	"roombook/shared/constant"
	"roombook/shared/i18n"
	"roombook/transport/http/middleware"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func limiterConfig(backend string, maxReqs int) *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "roombook-test"
	cfg.App.Language = "en"
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.Backend = backend
	cfg.App.RateLimiter.MaxRequests = maxReqs
	cfg.App.RateLimiter.WindowSeconds = 60

	return cfg
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func hit(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/v1/rooms", nil)
	req.Header.Set(constant.RequestHeaderForwardedFor, ip+", 10.0.0.254")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestRateLimit_Memory(t *testing.T) {
	cfg := limiterConfig("memory", 2)
	mw := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, cache.NewMemoryCache(60, mocks.NewOtel()), metrics.New(cfg))
	handler := mw.RateLimit()(http.HandlerFunc(ok))

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2").Code)
}

func TestRateLimit_Shared(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(c *cacheMocks.MockCache)
		wantStatus    int
		wantRemaining string
	}{
		{
			name: "under the limit",
			setupMock: func(c *cacheMocks.MockCache) {
				c.EXPECT().Increment(gomock.Any(), gomock.Any(), 60).Return(int64(1), nil)
			},
			wantStatus:    http.StatusOK,
			wantRemaining: "2",
		},
		{
			name: "over the limit",
			setupMock: func(c *cacheMocks.MockCache) {
				c.EXPECT().Increment(gomock.Any(), gomock.Any(), 60).Return(int64(4), nil)
			},
			wantStatus:    http.StatusTooManyRequests,
			wantRemaining: "0",
		},
		{
			name: "cache failure lets the request through",
			setupMock: func(c *cacheMocks.MockCache) {
				c.EXPECT().Increment(gomock.Any(), gomock.Any(), 60).Return(int64(0), errors.New("connection refused"))
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			store := cacheMocks.NewMockCache(ctrl)
			tt.setupMock(store)

			cfg := limiterConfig("redis", 3)
			mw := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, store, metrics.New(cfg))

			rec := hit(mw.RateLimit()(http.HandlerFunc(ok)), "10.0.0.1")

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantRemaining, rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
		})
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	cfg := limiterConfig("redis", 1)
	cfg.App.RateLimiter.Enable = false

	ctrl := gomock.NewController(t)
	mw := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, cacheMocks.NewMockCache(ctrl), metrics.New(cfg))
	handler := mw.RateLimit()(http.HandlerFunc(ok))

	for range 3 {
		assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1").Code)
	}
}

func TestLanguage(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   i18n.Lang
	}{
		{name: "no header uses the configured default", want: i18n.English},
		{name: "indonesian", header: "id-ID,id;q=0.9,en;q=0.8", want: i18n.Indonesian},
		{name: "unsupported falls back", header: "fr-FR", want: i18n.English},
	}

	cfg := limiterConfig("memory", 1)
	mw := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, cache.NewMemoryCache(60, mocks.NewOtel()), metrics.New(cfg))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got i18n.Lang

			handler := mw.Language(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = i18n.FromContext(r.Context())
			}))

			req := httptest.NewRequestWithContext(context.Background(), http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(constant.RequestHeaderAcceptLanguage, tt.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, string(tt.want), rec.Header().Get(constant.RequestHeaderContentLanguage))
		})
	}
}
