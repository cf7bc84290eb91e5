package textproc

import "regexp"

var (
	// urlPattern matches scheme-qualified URLs, www-prefixed hosts and bare
	// domains followed by a path, including balanced parentheses in the path.
	urlPattern = regexp.MustCompile(`(?i)\b((?:https?://|www\d{0,3}[.]|[a-z0-9.\-]+[.][a-z]{2,4}/)` +
		`(?:[^\s()<>]+|\(([^\s()<>]+|(\([^\s()<>]+\)))*\))+` +
		`(?:\(([^\s()<>]+|(\([^\s()<>]+\)))*\)|[^\s` + "`" + `!()\[\]{};:'".,<>?«»“”‘’]))`)

	// nonWordPattern matches every rune that is not a letter, a mark, a number or an underscore.
	nonWordPattern = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_]`)

	// englishPrefix is anchored at the first character only. Zero is not part of the class.
	englishPrefix = regexp.MustCompile(`^[a-zA-Z1-9]`)
)

// RemoveURLs replaces every URL in s with a single space.
func RemoveURLs(s string) string {
	return urlPattern.ReplaceAllString(s, " ")
}

// RemovePunctuation replaces every non-word rune in s with a space.
func RemovePunctuation(s string) string {
	return nonWordPattern.ReplaceAllString(s, " ")
}

// IsEnglish reports whether the first character of s is an ASCII letter or a
// digit from 1 to 9. It is a cheap prefilter, not language detection.
func IsEnglish(s string) bool {
	return englishPrefix.MatchString(s)
}
