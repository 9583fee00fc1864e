package prefs

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/number"
)

func TestFormatCurrency_UnknownCodeFallsBack(t *testing.T) {
	store := newTestStore(t)

	got := store.FormatCurrency(1234.5, "WAT")
	assert.Equal(t, "WAT 1234.50", got)
}

func TestFormatCurrency_StoredDefaultCode(t *testing.T) {
	store := newTestStore(t)

	// Stored default is NGN, a valid ISO code, so the formatter path runs
	got := store.FormatCurrency(100)
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "100")
}

func TestFormatCurrency_ExplicitCodeOverridesStored(t *testing.T) {
	store := newTestStore(t)

	withUSD := store.FormatCurrency(50, "USD")
	withDefault := store.FormatCurrency(50)
	assert.NotEqual(t, withUSD, withDefault)
}

func TestFormatCurrency_BadLanguageStillFormats(t *testing.T) {
	store := newTestStore(t)
	store.SetLanguage("!!not-a-tag!!")

	got := store.FormatCurrency(10, "USD")
	assert.NotEmpty(t, got)
}

func TestFormatDate_Styles(t *testing.T) {
	store := newTestStore(t)

	// 12:00 UTC is 13:00 in Africa/Lagos (UTC+1)
	ts := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)

	short := store.FormatDate(ts, DateFormatShort)
	assert.Equal(t, "30/08/26 13:00", short)

	medium := store.FormatDate(ts)
	assert.Equal(t, "30 Aug 2026 13:00", medium)

	long := store.FormatDate(ts, DateFormatLong)
	assert.True(t, strings.HasPrefix(long, "Sunday, 30 August 2026"), "got %q", long)
}

func TestFormatDate_BadTimezoneFallsBack(t *testing.T) {
	store := newTestStore(t)
	store.SetTimezone("Mars/Olympus_Mons")

	ts := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	got := store.FormatDate(ts)
	assert.Equal(t, "2026-08-30 12:00:00", got)
}

func TestFormatNumber_LocaleAware(t *testing.T) {
	store := newTestStore(t)

	got := store.FormatNumber(1234567.891, number.MaxFractionDigits(2))
	assert.NotEmpty(t, got)
	assert.Contains(t, got, "1")
}

func TestFormatNumber_BadLanguageFallsBack(t *testing.T) {
	store := newTestStore(t)
	store.SetLanguage("!!not-a-tag!!")

	got := store.FormatNumber(42.5)
	assert.Equal(t, "42.5", got)
}

func TestFormatters_NeverPanic(t *testing.T) {
	store := newTestStore(t)
	store.SetLanguage("")
	store.SetCurrency("???")
	store.SetTimezone("")

	assert.NotPanics(t, func() {
		_ = store.FormatCurrency(-0.001)
		_ = store.FormatDate(time.Time{})
		_ = store.FormatNumber(0)
	})
}
