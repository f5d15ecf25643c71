package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/yungbote/scandine-backend/internal/data/repos"
	"github.com/yungbote/scandine-backend/internal/platform/dbctx"
)

const maxSlugAttempts = 1000

// Slugify lowercases name and collapses every run of non-alphanumerics into one hyphen.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || (r > unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsMark(r))) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// uniqueShopSlug returns base, base-2, base-3, ... whichever is free first.
func uniqueShopSlug(dbc dbctx.Context, shopRepo repos.ShopRepo, name string) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "shop"
	}
	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		taken, err := shopRepo.SlugExists(dbc, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free slug for %q", base)
}
