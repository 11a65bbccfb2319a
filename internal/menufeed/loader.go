package menufeed

import (
	"context"
	"fmt"
	"mime"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"corpintranet/portal/internal/domain"
)

const defaultFetchTimeout = 15 * time.Second

// Loader reads a feed from a local path or an http(s) URL.
type Loader struct {
	httpClient *resty.Client
}

func NewLoader(timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json, application/yaml, text/yaml")
	return &Loader{httpClient: client}
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load fetches and parses source.
func (l *Loader) Load(ctx context.Context, source string) ([]domain.MenuDay, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("menu feed source is empty")
	}
	if isRemote(source) {
		return l.fetch(ctx, source)
	}

	format, err := FormatFromName(source)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read menu feed: %w", err)
	}
	return Parse(data, format)
}

func (l *Loader) fetch(ctx context.Context, source string) ([]domain.MenuDay, error) {
	resp, err := l.httpClient.R().SetContext(ctx).Get(source)
	if err != nil {
		return nil, fmt.Errorf("fetch menu feed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch menu feed: unexpected status %d", resp.StatusCode())
	}

	format, err := remoteFormat(source, resp.Header().Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	return Parse(resp.Body(), format)
}

// remoteFormat prefers the URL extension and falls back to the content type.
func remoteFormat(source, contentType string) (Format, error) {
	if u, err := url.Parse(source); err == nil {
		if f, err := FormatFromName(u.Path); err == nil {
			return f, nil
		}
	}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return FormatJSON, nil
	case strings.Contains(mediaType, "yaml"):
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s (content type %q)", ErrUnknownFormat, source, contentType)
}
