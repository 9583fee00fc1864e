package prefs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatting helpers. These never return an error and never panic: a
// malformed currency code, language tag, or timezone degrades to a
// readable fallback string instead of breaking the page that called it.

// FormatCurrency renders an amount in the supplied currency code, or the
// stored primary currency when no code is given. An unrecognized code
// falls back to "<CODE> <amount with 2 decimals>".
func (s *Store) FormatCurrency(amount float64, code ...string) string {
	p := s.Get()

	active := p.Currency
	if len(code) > 0 && strings.TrimSpace(code[0]) != "" {
		active = code[0]
	}
	active = strings.ToUpper(strings.TrimSpace(active))

	unit, err := currency.ParseISO(active)
	if err != nil {
		return fmt.Sprintf("%s %.2f", active, amount)
	}

	tag, err := language.Parse(p.Language)
	if err != nil {
		tag = language.English
	}

	return message.NewPrinter(tag).Sprintf("%v", currency.Symbol(unit.Amount(amount)))
}

var dateLayouts = map[DateFormat]string{
	DateFormatShort:  "02/01/06 15:04",
	DateFormatMedium: "02 Jan 2006 15:04",
	DateFormatLong:   "Monday, 02 January 2006 15:04:05 MST",
}

// FormatDate renders a timestamp in the stored timezone using the stored
// or supplied style. A bad timezone degrades to a basic date string in
// the time's own location.
func (s *Store) FormatDate(t time.Time, style ...DateFormat) string {
	p := s.Get()

	format := p.DateFormat
	if len(style) > 0 {
		format = ParseDateFormat(string(style[0]))
	}
	layout := dateLayouts[format]
	if layout == "" {
		layout = dateLayouts[DateFormatMedium]
	}

	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return t.Format("2006-01-02 15:04:05")
	}
	return t.In(loc).Format(layout)
}

// FormatNumber renders a number with locale-aware grouping. Options are
// x/text number options (e.g. number.MaxFractionDigits). An unparseable
// language tag degrades to plain strconv formatting.
func (s *Store) FormatNumber(value float64, opts ...number.Option) string {
	p := s.Get()

	tag, err := language.Parse(p.Language)
	if err != nil {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}

	return message.NewPrinter(tag).Sprintf("%v", number.Decimal(value, opts...))
}
