package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/text/number"

	"github.com/abiolaogu/voxguard-console/internal/prefs"
	pkghttp "github.com/abiolaogu/voxguard-console/pkg/http"
)

// PrefsStore defines the preference operations the handler needs
type PrefsStore interface {
	Get() prefs.Preferences
	Update(next prefs.Preferences)
	GetTheme() prefs.Theme
	SetTheme(theme prefs.Theme)
	FormatCurrency(amount float64, code ...string) string
	FormatDate(t time.Time, style ...prefs.DateFormat) string
	FormatNumber(value float64, opts ...number.Option) string
}

// PrefsHandler handles operator display preferences
type PrefsHandler struct {
	store PrefsStore
}

// NewPrefsHandler creates a new PrefsHandler
func NewPrefsHandler(store PrefsStore) *PrefsHandler {
	return &PrefsHandler{store: store}
}

// UpdatePrefsRequest represents the request body for a preferences update.
// Omitted fields keep their current value.
type UpdatePrefsRequest struct {
	Language          *string `json:"language" validate:"omitempty,min=2,max=8"`
	Currency          *string `json:"currency" validate:"omitempty,len=3,alpha"`
	SecondaryCurrency *string `json:"secondary_currency" validate:"omitempty,len=3,alpha"`
	Timezone          *string `json:"timezone" validate:"omitempty,min=1"`
	DateFormat        *string `json:"date_format" validate:"omitempty,oneof=short medium long"`
}

// Get returns the current preferences, creating defaults on first read.
func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.store.Get())
}

// Update applies a partial preferences update.
func (h *PrefsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePrefsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	next := h.store.Get()
	if req.Language != nil {
		next.Language = *req.Language
	}
	if req.Currency != nil {
		next.Currency = *req.Currency
	}
	if req.SecondaryCurrency != nil {
		next.SecondaryCurrency = *req.SecondaryCurrency
	}
	if req.Timezone != nil {
		// An unloadable timezone would poison every date render
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			pkghttp.WriteBadRequest(w, "unknown timezone")
			return
		}
		next.Timezone = *req.Timezone
	}
	if req.DateFormat != nil {
		next.DateFormat = prefs.ParseDateFormat(*req.DateFormat)
	}

	h.store.Update(next)
	pkghttp.WriteJSON(w, http.StatusOK, h.store.Get())
}

// Format renders sample values with the stored locale settings so the
// console can preview a preferences change before saving it. The
// formatters never fail; malformed inputs degrade to fallback strings.
func (h *PrefsHandler) Format(w http.ResponseWriter, r *http.Request) {
	amount := floatQueryParam(r, "amount", 1234567.89)

	var codes []string
	if code := r.URL.Query().Get("currency"); code != "" {
		codes = append(codes, code)
	}

	now := time.Now()
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"currency": h.store.FormatCurrency(amount, codes...),
		"number":   h.store.FormatNumber(amount),
		"date":     h.store.FormatDate(now),
	})
}

// ThemeRequest represents the request body for a theme change
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required,oneof=light dark"`
}

// GetTheme returns the stored console theme.
func (h *PrefsHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, map[string]prefs.Theme{"theme": h.store.GetTheme()})
}

// SetTheme stores the console theme.
func (h *PrefsHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	h.store.SetTheme(prefs.Theme(req.Theme))
	pkghttp.WriteJSON(w, http.StatusOK, map[string]prefs.Theme{"theme": h.store.GetTheme()})
}
