package vmssops

import "strings"

// ParseInstanceIDs splits a comma separated instance id list. Segments are
// kept verbatim: no trimming, de-duplication or validation, and empty
// segments (including a trailing one) stay in the result.
func ParseInstanceIDs(text string) []string {
	return strings.Split(text, ",")
}
