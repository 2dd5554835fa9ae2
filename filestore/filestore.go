// Package filestore keeps uploaded photo binaries.
package filestore

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// Storage persists photo files under names it chooses. The returned name is
// what gets recorded on the photo document.
type Storage interface {
	Save(ctx context.Context, originalName string, data []byte) (string, error)
	Remove(ctx context.Context, fileName string) error
}

const maxNameLength = 100

// SanitizeName reduces a client-supplied file name to a safe base name. It
// drops any directory part and replaces characters outside [A-Za-z0-9._-].
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)

	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)

	cleaned = strings.TrimLeft(cleaned, ".")
	if len(cleaned) > maxNameLength {
		cleaned = cleaned[len(cleaned)-maxNameLength:]
	}
	if cleaned == "" || cleaned == "_" {
		return "photo"
	}
	return cleaned
}

// uniqueName prefixes the sanitized name with the upload time in milliseconds.
func uniqueName(now time.Time, originalName string) string {
	return fmt.Sprintf("U%d_%s", now.UnixMilli(), SanitizeName(originalName))
}
