// Package presenter turns domain values into display state for the mobile
// screens: one state container per screen, driven by Activate and read with
// CurrentDisplayState.
package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/pennybank-bfa-go/internal/domain"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// NoBreakSpace separates a currency symbol from the number so the two never
// wrap apart.
const NoBreakSpace = "\u00a0"

type localeStyle struct {
	group       string
	decimal     string
	symbolAfter bool
	symbolSpace bool
	symbols     map[string]string
	timestamp   func(t time.Time) string
	hello       string
	greetings   [3]string // morning, afternoon, evening
}

var englishGreetings = [3]string{"Good Morning!", "Good Afternoon!", "Good Evening!"}

// Symbols shared by every locale unless a locale overrides them.
var commonSymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"BRL": "R$",
	"INR": "₹",
	"KRW": "₩",
}

var ptMonths = [12]string{"jan.", "fev.", "mar.", "abr.", "mai.", "jun.", "jul.", "ago.", "set.", "out.", "nov.", "dez."}

var supportedLocales = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.BrazilianPortuguese,
	language.MustParse("de-DE"),
}

var localeStyles = []localeStyle{
	{
		group: ",", decimal: ".",
		timestamp: func(t time.Time) string { return t.Format("Jan 2, 2006 at 3:04 PM") },
		hello:     "Hi",
		greetings: englishGreetings,
	},
	{
		group: ",", decimal: ".",
		symbols:   map[string]string{"USD": "US$"},
		timestamp: func(t time.Time) string { return t.Format("2 Jan 2006 at 15:04") },
		hello:     "Hi",
		greetings: englishGreetings,
	},
	{
		group: ".", decimal: ",", symbolSpace: true,
		symbols: map[string]string{"USD": "US$"},
		timestamp: func(t time.Time) string {
			return fmt.Sprintf("%d de %s de %d %02d:%02d", t.Day(), ptMonths[t.Month()-1], t.Year(), t.Hour(), t.Minute())
		},
		hello:     "Olá",
		greetings: [3]string{"Bom dia!", "Boa tarde!", "Boa noite!"},
	},
	{
		group: ".", decimal: ",", symbolAfter: true, symbolSpace: true,
		timestamp: func(t time.Time) string { return t.Format("02.01.2006, 15:04") },
		hello:     "Hallo",
		greetings: [3]string{"Guten Morgen!", "Guten Tag!", "Guten Abend!"},
	},
}

var localeMatcher = language.NewMatcher(supportedLocales)

// Formatter renders money, timestamps and greetings for one locale and time zone.
// It is immutable and safe for concurrent use.
type Formatter struct {
	tag      language.Tag
	style    localeStyle
	location *time.Location
	now      func() time.Time
}

// NewFormatter builds a formatter for a BCP 47 locale such as "en-US".
// Unsupported locales fall back to the closest supported one, en-US by default.
// A nil location means UTC.
func NewFormatter(locale string, location *time.Location) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "locale", Message: err.Error()}
	}
	_, idx, _ := localeMatcher.Match(tag)
	if location == nil {
		location = time.UTC
	}
	return &Formatter{
		tag:      supportedLocales[idx],
		style:    localeStyles[idx],
		location: location,
		now:      time.Now,
	}, nil
}

// WithClock returns a copy of f that reads the current time from now.
func (f *Formatter) WithClock(now func() time.Time) *Formatter {
	clone := *f
	clone.now = now
	return &clone
}

// Locale returns the supported locale actually in use.
func (f *Formatter) Locale() language.Tag {
	return f.tag
}

// FormatMoney renders the amount in its own currency. Fraction digits follow
// the currency's standard rounding; banker's rounding is applied here and
// never to the stored value.
func (f *Formatter) FormatMoney(m domain.MoneyAmount) string {
	scale := 2
	if unit, err := currency.ParseISO(m.Currency); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}

	v := m.Value.RoundBank(int32(scale))
	sign := ""
	if v.IsNegative() {
		sign = "-"
	}

	intPart, frac, _ := strings.Cut(v.Abs().StringFixed(int32(scale)), ".")
	number := groupDigits(intPart, f.style.group)
	if frac != "" {
		number += f.style.decimal + frac
	}

	symbol := f.symbol(m.Currency)
	space := ""
	if f.style.symbolSpace || symbol == m.Currency {
		space = NoBreakSpace
	}
	if f.style.symbolAfter {
		return sign + number + space + symbol
	}
	return sign + symbol + space + number
}

func (f *Formatter) symbol(code string) string {
	if s, ok := f.style.symbols[code]; ok {
		return s
	}
	if s, ok := commonSymbols[code]; ok {
		return s
	}
	return code
}

func groupDigits(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatTimestamp renders a medium date with a short time in the formatter's
// locale and time zone.
func (f *Formatter) FormatTimestamp(t time.Time) string {
	return f.style.timestamp(t.In(f.location))
}

// Hello returns the greeting title, "Hi, Jennifer" in en-US. An empty name
// yields the bare salutation.
func (f *Formatter) Hello(name string) string {
	if name == "" {
		return f.style.hello
	}
	return f.style.hello + ", " + name
}

// Greeting returns the subtitle shown under the user's name for the current
// local time.
func (f *Formatter) Greeting() string {
	switch h := f.now().In(f.location).Hour(); {
	case h < 12:
		return f.style.greetings[0]
	case h < 18:
		return f.style.greetings[1]
	default:
		return f.style.greetings[2]
	}
}
