package parse

import "regexp"

// bankPattern pairs a bank's canonical name with a pattern matched
// against From/Subject/Body, in priority order (first match wins).
type bankPattern struct {
	name    string
	pattern *regexp.Regexp
}

var bankPatterns = []bankPattern{
	{"HDFC Bank", regexp.MustCompile(`(?i)hdfc`)},
	{"ICICI Bank", regexp.MustCompile(`(?i)icici`)},
	{"State Bank of India", regexp.MustCompile(`(?i)\bsbi\b|state bank of india`)},
	{"Axis Bank", regexp.MustCompile(`(?i)\baxis\b`)},
	{"Kotak Mahindra Bank", regexp.MustCompile(`(?i)kotak`)},
	{"Punjab National Bank", regexp.MustCompile(`(?i)\bpnb\b|punjab national bank`)},
	{"Yes Bank", regexp.MustCompile(`(?i)yes bank`)},
	{"IDFC FIRST Bank", regexp.MustCompile(`(?i)idfc`)},
}

// DetectBank scans from, subject, and body against the ordered
// name-pattern table (spec.md §4.5) and returns the first match, or ""
// if none of the known banks are recognized.
func DetectBank(from, subject, body string) string {
	for _, bp := range bankPatterns {
		if bp.pattern.MatchString(from) || bp.pattern.MatchString(subject) || bp.pattern.MatchString(body) {
			return bp.name
		}
	}
	return ""
}
