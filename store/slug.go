package store

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"portfolio/apperror"
)

const (
	maxSlugLen = 200
	// maxSlugSuffix bounds the -2, -3, ... disambiguation loop.
	maxSlugSuffix = 1000
	// maxSlugRetries bounds re-derivation after a unique index collision.
	maxSlugRetries = 3
)

var (
	slugStrip  = regexp.MustCompile(`[^\w\s-]`)
	slugDashes = regexp.MustCompile(`[-\s]+`)
)

// Slugify folds s to ASCII, lowercases it and joins its words with hyphens.
// "Café Déjà Vu!" becomes "cafe-deja-vu".
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)

	folded = slugStrip.ReplaceAllString(strings.ToLower(folded), "")
	folded = slugDashes.ReplaceAllString(strings.TrimSpace(folded), "-")
	return strings.Trim(folded, "-_")
}

func truncateSlug(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimRight(s[:n], "-_")
}

// uniqueSlug returns base, or base-2, base-3, ... whichever is first unused
// by another row of m's table.
func uniqueSlug(db *gorm.DB, m any, base string) (string, error) {
	if base == "" {
		base = strings.ToLower(entityName(m))
	}
	exclude := idOf(m)

	for i := 1; i <= maxSlugSuffix; i++ {
		candidate := truncateSlug(base, maxSlugLen)
		if i > 1 {
			suffix := "-" + strconv.Itoa(i)
			candidate = truncateSlug(base, maxSlugLen-len(suffix)) + suffix
		}

		taken, err := slugTaken(db, m, candidate, exclude)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperror.NewConflict(entityName(m), "slug", base)
}

func slugTaken(db *gorm.DB, m any, slug string, exclude uint) (bool, error) {
	var n int64
	q := db.Model(newOf(m)).Where("slug = ?", slug)
	if exclude != 0 {
		q = q.Where("id <> ?", exclude)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, apperror.NewInternal("check slug", err)
	}
	return n > 0, nil
}
