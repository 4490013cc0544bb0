package leads

import (
	"fmt"
	"strings"
)

const brazilCountryCode = "55"

// sanitizeDigits strips everything but digits from raw.
func sanitizeDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// ToDialString converts freely-typed phone text into the digits-only
// international form used to build WhatsApp deep links.
//
// The heuristic is Brazil-biased on purpose: it maximizes correct output
// for Brazilian numbers typed with or without area code or country code,
// at the cost of occasionally mis-prefixing genuinely foreign numbers
// shorter than 12 digits. Deep-link generation depends on exactly this
// behavior; do not tighten it into a strict E.164 parser.
func ToDialString(raw string) string {
	cleaned := sanitizeDigits(raw)

	// Already international with the Brazilian country code.
	if strings.HasPrefix(cleaned, brazilCountryCode) && len(cleaned) >= 12 {
		return cleaned
	}

	// Brazilian number with a trunk zero: drop it before prefixing.
	if len(cleaned) == 11 && strings.HasPrefix(cleaned, "0") {
		return brazilCountryCode + cleaned[1:]
	}
	if len(cleaned) == 11 {
		return brazilCountryCode + cleaned
	}
	if len(cleaned) == 10 {
		return brazilCountryCode + cleaned
	}

	// Long enough to already carry some other country code.
	if len(cleaned) >= 12 {
		return cleaned
	}

	// Ambiguous short input: assume Brazil.
	return brazilCountryCode + cleaned
}

// ToDisplayString renders a canonicalized number for operators:
// Brazilian numbers as (DD) DDDDD-DDDD, longer internationals with a
// plain + prefix, anything else unchanged.
func ToDisplayString(raw string) string {
	cleaned := sanitizeDigits(raw)

	local := cleaned
	if strings.HasPrefix(cleaned, brazilCountryCode) && len(cleaned) == 13 {
		local = cleaned[2:]
	}
	if len(local) == 11 && (len(cleaned) == 11 || len(cleaned) == 13) {
		return fmt.Sprintf("(%s) %s-%s", local[:2], local[2:7], local[7:])
	}

	if len(cleaned) > 11 {
		return "+" + cleaned
	}

	return raw
}
