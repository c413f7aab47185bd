package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mchmarny/cardiocheck/pkg/net"
	"github.com/pkg/errors"
)

const dirMode = 0700

// IsURL reports whether location should be downloaded rather than read.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Fetch returns a local path for location. URLs are downloaded into dir once;
// later calls reuse the cached file. Local paths are returned unchanged.
func Fetch(ctx context.Context, location, dir string) (string, error) {
	if !IsURL(location) {
		return location, nil
	}
	if dir == "" {
		return "", errors.Wrap(ErrModelUnavailable, "cache directory not specified")
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", errors.Wrapf(ErrModelUnavailable, "creating %s: %v", dir, err)
	}

	sum := sha256.Sum256([]byte(location))
	ext := path.Ext(strings.SplitN(location, "?", 2)[0])
	local := filepath.Join(dir, "model-"+hex.EncodeToString(sum[:8])+ext)

	if _, err := os.Stat(local); err == nil {
		slog.Debug("using cached model", "url", location, "path", local)
		return local, nil
	}

	slog.Info("downloading model", "url", location)
	if err := net.Download(ctx, location, local); err != nil {
		return "", errors.Wrapf(ErrModelUnavailable, "downloading %s: %v", location, err)
	}
	return local, nil
}
