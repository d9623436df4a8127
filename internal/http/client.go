// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package http

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/wneessen/dist2coast/internal/logger"
)

const (
	// DefaultTimeout is the default timeout value for the HTTPClient. The reference grid
	// files are large, so it covers the complete download.
	DefaultTimeout = time.Minute * 30
)

var (
	// version is the version of the application (will be set at build time)
	version = "dev"
	// UserAgent is the User-Agent that the HTTP client sends with requests
	UserAgent = fmt.Sprintf("Mozilla/5.0 (%s; %s) dist2coast/%s (+https://github.com/wneessen/dist2coast/)",
		runtime.GOOS,
		runtime.GOARCH,
		version,
	)

	ErrUnexpectedStatus = errors.New("unexpected HTTP status")
)

// Client is a type wrapper for the Go stdlib http.Client and the Config
type Client struct {
	*http.Client
	logger *logger.Logger
}

// New returns a new HTTP client
func New(logger *logger.Logger) *Client {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	httpTransport := &http.Transport{TLSClientConfig: tlsConfig, Proxy: http.ProxyFromEnvironment}
	httpClient := &http.Client{
		Timeout:   DefaultTimeout,
		Transport: httpTransport,
	}
	return &Client{httpClient, logger}
}

// Download performs a HTTP GET request for the given URL and copies the response body to w.
// It returns the number of bytes written.
func (h *Client) Download(ctx context.Context, endpoint string, w io.Writer) (int64, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed create new HTTP request with context: %w", err)
	}
	request.Header.Set("User-Agent", UserAgent)

	// Execute HTTP request
	response, err := h.Do(request)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to perform HTTP request: %w", err)
	}
	if response == nil {
		return 0, errors.New("nil response received")
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			h.logger.Error("failed to close HTTP response body", logger.Err(err))
		}
	}(response.Body)

	if response.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, response.StatusCode)
	}
	written, err := io.Copy(w, response.Body)
	if err != nil {
		return written, fmt.Errorf("failed to read HTTP response body: %w", err)
	}
	return written, nil
}

// DownloadFile downloads the given URL to path. The file is written next to path first and
// only moved into place once the download completed.
func (h *Client) DownloadFile(ctx context.Context, endpoint, path string) (int64, error) {
	file, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("failed to create download file: %w", err)
	}
	defer func() {
		_ = os.Remove(file.Name())
	}()

	written, err := h.Download(ctx, endpoint, file)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close download file: %w", cerr)
	}
	if err != nil {
		return written, err
	}
	if err = os.Rename(file.Name(), path); err != nil {
		return written, fmt.Errorf("failed to move download into place: %w", err)
	}
	return written, nil
}
