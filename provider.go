package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// ErrProviderUnconfigured 未配置瓦片服务
var ErrProviderUnconfigured = errors.New("tile provider is not configured, set provider.url (or TILE_PROVIDER_URL)")

// TileProvider 瓦片地图服务
type TileProvider struct {
	Name      string
	URL       string
	APIKey    string
	UserAgent string
}

// NewTileProvider creates a provider from configuration values.
func NewTileProvider(name, urlTemplate, apiKey, userAgent string) *TileProvider {
	return &TileProvider{
		Name:      name,
		URL:       strings.TrimSpace(urlTemplate),
		APIKey:    strings.TrimSpace(apiKey),
		UserAgent: userAgent,
	}
}

// Configured reports whether a URL template is present. An empty template is
// a valid state, not an error, until a download is attempted.
func (p *TileProvider) Configured() bool {
	return p.URL != ""
}

// TileURL 获取瓦片URL. The api key replaces an {apiKey} placeholder when the
// template carries one, otherwise it is appended as a key query parameter.
func (p *TileProvider) TileURL(t maptile.Tile) (string, error) {
	if !p.Configured() {
		return "", ErrProviderUnconfigured
	}
	u := strings.Replace(p.URL, "{x}", strconv.Itoa(int(t.X)), -1)
	u = strings.Replace(u, "{y}", strconv.Itoa(int(t.Y)), -1)
	u = strings.Replace(u, "{z}", strconv.Itoa(int(t.Z)), -1)

	if p.APIKey == "" {
		return u, nil
	}
	if strings.Contains(u, "{apiKey}") {
		return strings.Replace(u, "{apiKey}", p.APIKey, -1), nil
	}
	separator := "?"
	if strings.Contains(u, "?") {
		separator = "&"
	}
	return u + separator + "key=" + url.QueryEscape(p.APIKey), nil
}

// ProbeURL returns scheme://host of the template, used by the connectivity
// monitor. Empty when unconfigured or unparsable.
func (p *TileProvider) ProbeURL() string {
	if !p.Configured() {
		return ""
	}
	u, err := url.Parse(strings.NewReplacer("{z}", "0", "{x}", "0", "{y}", "0", "{apiKey}", "").Replace(p.URL))
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Fetch 拉取单个瓦片. A non-200 status or an empty body is a fetch failure.
func (p *TileProvider) Fetch(ctx context.Context, client *http.Client, t maptile.Tile) ([]byte, error) {
	tileURL, err := p.TileURL(t)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build tile request: %w", err)
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tile(z:%d, x:%d, y:%d): %w", t.Z, t.X, t.Y, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch tile(z:%d, x:%d, y:%d): status code %d", t.Z, t.X, t.Y, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tile(z:%d, x:%d, y:%d) body: %w", t.Z, t.X, t.Y, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("nil tile (z:%d, x:%d, y:%d)", t.Z, t.X, t.Y)
	}
	return body, nil
}
