package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path"
	"path/filepath"
	"strings"
)

// normalizeOutputDir returns a slash separated, cleaned output directory.
// Absolute directories keep their leading slash.
func normalizeOutputDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	clean := path.Clean(filepath.ToSlash(dir))
	if clean == "." {
		return ""
	}
	return clean
}

func joinOutputPath(base string, rel string) string {
	rel = strings.TrimLeft(rel, "/")
	if strings.TrimSpace(base) == "" {
		return rel
	}
	return path.Join(base, rel)
}

func ensureDir(ctx context.Context, writer artifactWriter, cache map[string]struct{}, dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" || dir == "." || dir == "/" {
		return nil
	}
	if cache != nil {
		if _, ok := cache[dir]; ok {
			return nil
		}
		cache[dir] = struct{}{}
	}
	return writer.EnsureDir(ctx, dir)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}
