// Package preprocessing provides the feature-encoding stage of the fairness
// pipeline: column-name sanitization and one-hot expansion of categorical
// columns against a schema frozen at fit time.
package preprocessing

import "strings"

// SanitizeName rewrites a column name so it contains only characters safe
// for identifier use: letters, digits and underscore. Every disallowed
// character is replaced by an underscore, runs of underscores are collapsed,
// and leading/trailing underscores are trimmed.
//
// The transform is deterministic and idempotent:
// SanitizeName(SanitizeName(x)) == SanitizeName(x) for every x.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastUnderscore := false
	for _, r := range name {
		safe := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if safe {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	return strings.Trim(b.String(), "_")
}
