package normalize

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-pis/internal/models"
	"github.com/xuri/excelize/v2"
)

var (
	ErrInvalidNumber = errors.New("invalid number")
	ErrInvalidDate   = errors.New("invalid date")
)

// String trims s; blank becomes nil.
func String(s string) *string {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	return &t
}

// TaxID keeps only the digits of a CNPJ/CPF. Nothing left means nil.
func TaxID(s string) *string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return nil
	}
	digits := b.String()
	return &digits
}

var (
	brDecimalSuffix = regexp.MustCompile(`,\d{1,2}$`)
	missingExponent = regexp.MustCompile(`^-?\d+(?:\.\d+)?-\d+$`)
	trailingDigits  = regexp.MustCompile(`-(\d+)$`)
	nonNumeric      = regexp.MustCompile(`[^0-9eE.+\-]`)
	dashReplacer    = strings.NewReplacer("R$", "", " ", "", "−", "-", "–", "-", "—", "-")
)

// ParseBRL parses an amount written the Brazilian way ("R$ 1.234,50", "(200,00)").
// A blank cell returns ok=false with no error.
func ParseBRL(raw string) (value float64, ok bool, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, nil
	}
	s = dashReplacer.Replace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	// "100.000,50" -> "100000.50"
	if brDecimalSuffix.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}

	// "1234-02" lost its exponent marker on export
	if missingExponent.MatchString(s) {
		s = trailingDigits.ReplaceAllString(s, "e-$1")
	}

	s = nonNumeric.ReplaceAllString(s, "")
	switch s {
	case "", "-", "+", ".", "e", "E":
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}

	v, perr := strconv.ParseFloat(s, 64)
	if perr != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	if negative {
		v = -v
	}
	return v, true, nil
}

// Money coerces a monetary cell.
func Money(raw string) (*models.Money, error) {
	v, ok, err := ParseBRL(raw)
	if err != nil || !ok {
		return nil, err
	}
	return models.MoneyFromFloat(v), nil
}

// dateLayouts tries day-first numeric dates, then year-first and named-month forms,
// then month-first as a fallback. Go's "1" and "2" accept one or two digits.
var dateLayouts = buildDateLayouts()

func buildDateLayouts() []string {
	numeric := func(first, second string) []string {
		var out []string
		for _, sep := range []string{"/", "-", "."} {
			for _, year := range []string{"2006", "06"} {
				base := first + sep + second + sep + year
				out = append(out, base, base+" 15:04:05", base+" 15:04")
			}
		}
		return out
	}
	layouts := numeric("2", "1")
	layouts = append(layouts,
		"2006-1-2",
		"2006/1/2",
		"2006-1-2 15:04:05",
		"2006-1-2 15:04",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
		"20060102",
		"2 Jan 2006",
		"2-Jan-2006",
		"2-Jan-06",
		"Jan 2, 2006",
		"2 January 2006",
		"January 2, 2006",
	)
	return append(layouts, numeric("1", "2")...)
}

var (
	excelSerial = regexp.MustCompile(`^\d{5}(\.\d+)?$`)
	compactDate = regexp.MustCompile(`^\d{8}$`)
	bareNumber  = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Date coerces a date cell. Text is read day-first, falling back to month-first.
// Five-digit numbers are Excel serial days (1927-05-18 to 2173-10-13); eight digits
// are yyyymmdd. Other bare numbers are rejected. A blank cell returns nil without error.
func Date(raw string) (*models.Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	if excelSerial.MatchString(s) {
		f, err := strconv.ParseFloat(s, 64)
		if err == nil {
			if t, err := excelize.ExcelDateToTime(f, false); err == nil {
				return models.DatePtr(models.DateOf(t)), nil
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	if bareNumber.MatchString(s) && !compactDate.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DatePtr(models.DateOf(t)), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}
