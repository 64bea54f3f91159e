package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Slugify converts a display title into its canonical URL segment: lower-case,
// every run of non-alphanumeric characters collapsed into a single hyphen,
// leading/trailing hyphens trimmed. Pure and locale-independent: the same
// function runs on the linking side and the validating side, so it must never
// disagree with itself. A title with no alphanumeric content slugifies to "".
//
// The multiplication sign is folded to "x" first; romanized titles use it as a
// join character (SPY×FAMILY, Hunter×Hunter) and dropping it would split or
// mangle the word.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastWasHyphen := false
	for _, r := range strings.ToLower(title) {
		if r == '×' {
			r = 'x'
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasHyphen = false
		default:
			if !lastWasHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastWasHyphen = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}

// ParseIDSlug splits an {id}-{slug} route segment. The id is the leading
// integer up to the first hyphen; anything after "{id}-" is returned as the
// slug remainder (possibly empty). A missing or non-positive id yields
// ErrNotFound, since there is nothing to resolve.
func ParseIDSlug(segment string) (int, string, error) {
	idPart, slugPart, _ := strings.Cut(segment, "-")
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("parsing %q: %w", segment, ErrNotFound)
	}
	return id, slugPart, nil
}
