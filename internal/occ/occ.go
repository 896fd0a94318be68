// Package occ handles OCC-style option symbols, which encode the
// underlying, expiry, call/put type and strike in a single identifier:
// <UNDERLYING><YYMMDD><C|P><8-digit strike x1000>, e.g.
// GOOG251219C00355000.
package occ

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/optionpilot/internal/domain"
)

// ParseOptionSymbol parses an OCC-style symbol against a known
// underlying. The symbol must start with the underlying, carry at
// least YYMMDD+C/P+8 strike digits after it, and use C or P as the
// type code.
func ParseOptionSymbol(symbol, underlying string) (expiry time.Time, optType domain.OptionType, strike float64, err error) {
	if !strings.HasPrefix(symbol, underlying) {
		return time.Time{}, "", 0, fmt.Errorf("symbol %s does not start with underlying %s", symbol, underlying)
	}

	rest := symbol[len(underlying):]
	if len(rest) < 6+1+8 {
		return time.Time{}, "", 0, fmt.Errorf("symbol %s too short to be OCC-style (YYMMDD+C/P+8 strike)", symbol)
	}

	dateCode := rest[:6]
	cpCode := rest[6]
	strikeCode := rest[7:15]

	year, err1 := strconv.Atoi(dateCode[0:2])
	month, err2 := strconv.Atoi(dateCode[2:4])
	day, err3 := strconv.Atoi(dateCode[4:6])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, "", 0, fmt.Errorf("invalid date code %q in symbol %s", dateCode, symbol)
	}
	expiry = time.Date(2000+year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

	switch cpCode {
	case 'C':
		optType = domain.OptionTypeCall
	case 'P':
		optType = domain.OptionTypePut
	default:
		return time.Time{}, "", 0, fmt.Errorf("unknown call/put code %q in symbol %s", string(cpCode), symbol)
	}

	strikeInt, err := strconv.Atoi(strikeCode)
	if err != nil {
		return time.Time{}, "", 0, fmt.Errorf("invalid strike code %q in symbol %s", strikeCode, symbol)
	}
	strike = float64(strikeInt) / 1000.0

	return expiry, optType, strike, nil
}

// ExtractUnderlying returns the leading alphabetic run of a symbol.
// OCC symbols embed the underlying as a prefix before the 6-digit date
// code, so this recovers the ticker for options and passes pure equity
// symbols through unchanged. Returns "" for empty input.
//
//	VIXY260220C00028000 -> VIXY
//	IEF260227P00095500  -> IEF
//	AAPL                -> AAPL
func ExtractUnderlying(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return ""
	}
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	return s[:i]
}

// IsOptionSymbol reports whether a symbol looks like an option: its
// underlying prefix differs from the full symbol and the symbol carries
// at least one digit (the expiry/strike metadata).
func IsOptionSymbol(symbol string) bool {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	und := ExtractUnderlying(s)
	if und == "" || s == und {
		return false
	}
	for _, c := range s {
		if c >= '0' && c <= '9' {
			return true
		}
	}
	return false
}
