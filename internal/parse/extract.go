package parse

import "regexp"

// amountCapturePattern finds the first currency-marked numeric token in
// text, e.g. "Rs. 1,50,000.00", "INR 500", "₹99.50".
var amountCapturePattern = regexp.MustCompile(`(?i)(?:rs\.?|inr|₹)\s*([0-9][0-9,]*(?:\.[0-9]+)?)`)

// maskedAccountPattern matches a masked account/card number like
// "XX1234", "xxxxxx1234", or "ending 1234".
var maskedAccountPattern = regexp.MustCompile(`(?i)(?:a/?c|account|card)?\s*(?:no\.?)?\s*(?:ending(?:\s+in)?|xx+|\*+)\s*(\d{2,6})`)

var referencePattern = regexp.MustCompile(`(?i)(?:ref(?:erence)?(?:\s*no\.?)?|UTR|txn\s*id)\s*[:\-]?\s*([A-Za-z0-9]{6,})`)

// extractAmount pulls the first currency-marked amount out of text and
// normalizes it.
func extractAmount(text string) (float64, bool) {
	m := amountCapturePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := NormalizeAmount(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

func extractMaskedAccount(text string) string {
	m := maskedAccountPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return "XX" + m[1]
}

func extractReference(text string) string {
	m := referencePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
