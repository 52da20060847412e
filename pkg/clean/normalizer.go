// Package clean rewrites postcode and street-name values into their canonical form.
package clean

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// SentinelPostcode replaces postcodes that cannot be repaired
const SentinelPostcode = "000000"

var (
	compliantPostcodeRe = regexp.MustCompile(`^\d{5,6}$`)
	nonDigitRe          = regexp.MustCompile(`\D`)
	lorWordRe           = regexp.MustCompile(`\bLor\b`)
)

// Normalizer cleans single values. When Verbose is set every rewrite is
// reported on Out as a diagnostic line.
type Normalizer struct {
	Verbose bool
	Out     io.Writer
}

// NewNormalizer returns a normalizer writing diagnostics to out when verbose is true
func NewNormalizer(out io.Writer, verbose bool) *Normalizer {
	return &Normalizer{Verbose: verbose, Out: out}
}

func (n *Normalizer) report(format string, args ...any) {
	if n == nil || !n.Verbose || n.Out == nil {
		return
	}
	fmt.Fprintf(n.Out, format+"\n", args...)
}

// Postcode returns postcode unchanged when it is five or six digits. Otherwise
// all non-digits are stripped and anything that is not then exactly six digits
// becomes SentinelPostcode.
func (n *Normalizer) Postcode(postcode string) string {
	if compliantPostcodeRe.MatchString(postcode) {
		return postcode
	}

	result := nonDigitRe.ReplaceAllString(postcode, "")
	if len(result) != 6 {
		result = SentinelPostcode
	}

	n.report("original: %s, cleaned: %s", postcode, result)
	return result
}

// StreetName expands the word "Lor" to "Lorong" and moves a trailing
// "Lorong ..." to the front of the name. Names starting with a digit are not
// reordered. Only the exact spelling "Lor" is expanded.
func (n *Normalizer) StreetName(name string) string {
	result := lorWordRe.ReplaceAllString(name, "Lorong")

	idx := strings.Index(result, "Lorong")
	if idx > 0 && !isDigit(result[0]) {
		swapped := result[idx:] + " " + result[:idx]
		n.report("swap: %s -> %s", result, swapped)
		return swapped
	}
	return result
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Postcode cleans a value without diagnostics
func Postcode(postcode string) string {
	return (*Normalizer)(nil).Postcode(postcode)
}

// StreetName cleans a value without diagnostics
func StreetName(name string) string {
	return (*Normalizer)(nil).StreetName(name)
}
