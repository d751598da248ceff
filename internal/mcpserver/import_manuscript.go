package mcpserver

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/cardsmith/internal/models"
)

const maxManuscriptSize = 5 << 20 // 5 MB

var textMediaTypes = map[string]bool{
	"text/markdown":   true,
	"text/x-markdown": true,
	"text/plain":      true,
}

type importResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Units int    `json:"units"`
}

func (s *Server) importManuscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	rawURL := req.GetString("url", "")

	var (
		data []byte
		err  error
	)
	switch {
	case content != "":
		data = []byte(content)
	case strings.HasPrefix(rawURL, "data:"):
		data, err = decodeDataURI(rawURL)
	case rawURL != "":
		data, err = fetchHTTP(ctx, rawURL)
	default:
		return mcp.NewToolResultError("either content or url is required"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxManuscriptSize {
		return mcp.NewToolResultError(fmt.Sprintf("manuscript too large: %d bytes (max %d)", len(data), maxManuscriptSize)), nil
	}
	if !utf8.Valid(data) {
		return mcp.NewToolResultError("manuscript is not valid UTF-8 text"), nil
	}

	card, err := s.svc.ImportMarkdown(ctx, data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.svc.Units(ctx, card.ID, models.FieldBody)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(importResult{ID: card.ID, Title: card.State.Title, Units: len(st.Units)}), nil
}

// decodeDataURI parses a data:[<mediatype>][;base64],<data> URI holding text.
func decodeDataURI(uri string) ([]byte, error) {
	meta, encoded, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URI: missing comma separator")
	}

	mediaType := strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	if mediaType != "" && !textMediaTypes[mediaType] {
		return nil, fmt.Errorf("unsupported MIME type in data URI: %s", mediaType)
	}

	if !strings.Contains(meta, ";base64") {
		text, err := url.PathUnescape(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid data URI: %w", err)
		}
		return []byte(text), nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	return data, nil
}

// fetchHTTP downloads a manuscript from an HTTP/HTTPS URL with security checks.
func fetchHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s (only http/https)", parsed.Scheme)
	}
	if err := checkBlockedHost(parsed.Hostname()); err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return checkBlockedHost(req.URL.Hostname())
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}
	if ct := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0]); ct != "" && !textMediaTypes[ct] {
		return nil, fmt.Errorf("unsupported content type: %s", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManuscriptSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if len(data) > maxManuscriptSize {
		return nil, fmt.Errorf("manuscript too large: exceeds %d bytes", maxManuscriptSize)
	}
	return data, nil
}

// checkBlockedHost rejects loopback and cloud metadata addresses.
func checkBlockedHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		ips, lookupErr := net.LookupIP(host)
		if lookupErr != nil || len(ips) == 0 {
			return nil //nolint:nilerr // let http.Client handle DNS failures
		}
		ip = ips[0]
	}

	if ip.IsLoopback() {
		return fmt.Errorf("blocked host: loopback address %s", host)
	}
	// AWS/GCP/Azure metadata endpoint.
	if ip.Equal(net.ParseIP("169.254.169.254")) {
		return fmt.Errorf("blocked host: cloud metadata address %s", host)
	}
	return nil
}
