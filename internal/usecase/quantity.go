package usecase

import (
	"regexp"
	"strings"
)

// unambiguousQuantityPattern matches a number followed by an optional
// recognized unit token: weight (kg/g), volume (l/ml) or count
// (pc/pcs/st/kom/br/бр). A trailing plural "s" is tolerated.
var unambiguousQuantityPattern = regexp.MustCompile(`^\d+([.,]\d+)?\s*(kg|g|l|ml|pc|pcs|st|kom|br|бр)?s?$`)

// ParsedQuantity is the result of classifying a quantity description.
type ParsedQuantity struct {
	IsAmbiguous bool
}

// ParseQuantity classifies a free-text quantity/unit description as
// unambiguous (simple number plus recognized unit, or a bare number) or
// ambiguous (ranges, size adjectives, prose). It is deterministic, total and
// performs no I/O; any unrecognized pattern degrades to ambiguous.
//
// Callers holding a missing (as opposed to empty) quantity should not call
// this at all: absence means "1 default unit" and is never ambiguous.
func ParseQuantity(quantity string) ParsedQuantity {
	s := strings.ToLower(strings.TrimSpace(quantity))

	if unambiguousQuantityPattern.MatchString(s) {
		return ParsedQuantity{IsAmbiguous: false}
	}

	return ParsedQuantity{IsAmbiguous: true}
}
