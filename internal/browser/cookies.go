package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"gopkg.in/yaml.v3"

	"github.com/YusufSemihCan/Charon-LCBot/internal/logging"
)

// Cookie is the persisted form of a browser cookie. Keeping the login cookies
// between runs lets the client skip its sign-in screen.
type Cookie struct {
	Name     string  `yaml:"name"`
	Value    string  `yaml:"value"`
	Domain   string  `yaml:"domain"`
	Path     string  `yaml:"path"`
	Expires  float64 `yaml:"expires"`
	HTTPOnly bool    `yaml:"http_only"`
	Secure   bool    `yaml:"secure"`
	SameSite string  `yaml:"same_site"`
}

// LoadCookies reads a cookie file. A missing file yields no cookies.
func LoadCookies(path string) ([]Cookie, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("browser: read cookies %s: %w", path, err)
	}
	var cookies []Cookie
	if err := yaml.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("browser: parse cookies %s: %w", path, err)
	}
	return cookies, nil
}

// WriteCookies stores cookies to path.
func WriteCookies(path string, cookies []Cookie) error {
	data, err := yaml.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("browser: encode cookies: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("browser: write cookies %s: %w", path, err)
	}
	return nil
}

// GetCookies reads every cookie from the running browser.
func (s *Session) GetCookies() ([]Cookie, error) {
	if !s.alive() {
		return nil, ErrNotRunning
	}

	var cookies []*network.Cookie
	err := chromedp.Run(s.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			cookies, err = network.GetCookies().Do(ctx)
			return err
		}),
	)
	if err != nil {
		logging.Error("Failed to get cookies: %v", err)
		return nil, err
	}

	out := make([]Cookie, len(cookies))
	for i, c := range cookies {
		out[i] = Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		}
	}

	logging.Info("Retrieved %d cookies from browser", len(out))
	return out, nil
}

// SetCookies installs cookies in the browser. Individual failures are logged
// and skipped.
func (s *Session) SetCookies(cookies []Cookie) error {
	if len(cookies) == 0 {
		return nil
	}
	if !s.alive() {
		return ErrNotRunning
	}

	err := chromedp.Run(s.ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, c := range cookies {
				params := network.SetCookie(c.Name, c.Value).
					WithDomain(c.Domain).
					WithPath(c.Path).
					WithHTTPOnly(c.HTTPOnly).
					WithSecure(c.Secure)

				if c.Expires > 0 {
					expires := cdp.TimeSinceEpoch(time.Unix(int64(c.Expires), 0))
					params = params.WithExpires(&expires)
				}
				if c.SameSite != "" {
					params = params.WithSameSite(network.CookieSameSite(c.SameSite))
				}

				if err := params.Do(ctx); err != nil {
					logging.Warn("Failed to set cookie %s: %v", c.Name, err)
				}
			}
			return nil
		}),
	)
	if err != nil {
		logging.Error("Failed to set cookies: %v", err)
		return err
	}

	logging.Info("Set %d cookies in browser", len(cookies))
	return nil
}

// SaveCookies writes the browser's current cookies to path.
func (s *Session) SaveCookies(path string) error {
	cookies, err := s.GetCookies()
	if err != nil {
		return err
	}
	return WriteCookies(path, cookies)
}
