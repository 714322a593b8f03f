package organization

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	maxSlugLen     = 63
	maxSlugBaseLen = 56 // room for a "-NNN" suffix
	maxSlugTries   = 100
)

// Slugify lower-cases name, turns runs of other characters into single
// dashes and trims them from both ends.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugBaseLen {
		slug = strings.Trim(slug[:maxSlugBaseLen], "-")
	}
	switch {
	case slug == "":
		return "clinic"
	case len(slug) < 3:
		return slug + "-clinic"
	}
	return slug
}

// SlugChecker reports whether a slug is taken.
type SlugChecker func(ctx context.Context, slug string) (bool, error)

// UniqueSlug returns base, or base-2, base-3, ... for the first free candidate.
func UniqueSlug(ctx context.Context, base string, exists SlugChecker) (string, error) {
	for i := 1; i <= maxSlugTries; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	candidate := fmt.Sprintf("%s-%s", base, uuid.NewString()[:6])
	if len(candidate) > maxSlugLen {
		candidate = candidate[:maxSlugLen]
	}
	return candidate, nil
}
