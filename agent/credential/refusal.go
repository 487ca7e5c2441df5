package credential

import "regexp"

// Apostrophes are optional and may be ASCII or typographic.
var refusalPattern = regexp.MustCompile(`(?i)\b(?:` +
	`don['’]?t have|do not have|` +
	`doesn['’]?t match|does not match|` +
	`not it|` +
	`wrong number|wrong zip|` +
	`can['’]?t provide|can ?not provide|` +
	`i['’]?m unable to|i am unable to` +
	`)\b`)

// IsRefusal reports whether text says the user cannot or will not supply the
// credential they were asked for.
func IsRefusal(text string) bool {
	return refusalPattern.MatchString(text)
}
