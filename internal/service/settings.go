package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// SettingStore is the persistence needed by Settings.  It is satisfied by
// *repository.SettingRepo.
type SettingStore interface {
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	SetMany(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
}

// Keys of the global settings.
const (
	KeyVATDefault       = "vat_rate_default"
	KeyHotelName        = "hotel_name"
	KeyHotelPhone       = "hotel_phone"
	KeyHotelEmail       = "hotel_email"
	KeyHotelAddress     = "hotel_address"
	KeyHotelWelcomeText = "hotel_welcome_text"
)

// ThemeKeys lists the ten theme colors in the order the form shows them.
var ThemeKeys = []string{
	"theme_primary", "theme_secondary", "theme_accent", "theme_background", "theme_surface",
	"theme_text", "theme_muted", "theme_success", "theme_warning", "theme_danger",
}

// defaults is consulted whenever a key is absent from the store.
var defaults = map[string]string{
	"theme_primary":     "#1e3a5f",
	"theme_secondary":   "#2c5282",
	"theme_accent":      "#c9a227",
	"theme_background":  "#f4f6f9",
	"theme_surface":     "#ffffff",
	"theme_text":        "#1a202c",
	"theme_muted":       "#718096",
	"theme_success":     "#2f855a",
	"theme_warning":     "#dd6b20",
	"theme_danger":      "#c53030",
	KeyHotelName:        "Hôtel",
	KeyHotelPhone:       "",
	KeyHotelEmail:       "",
	KeyHotelAddress:     "",
	KeyHotelWelcomeText: "Bienvenue ! Commandez en quelques clics, nous livrons directement dans votre chambre.",
}

// VATKey is the settings key holding the VAT override of a category.
func VATKey(code string) string { return "vat_rate_" + code }

// absent marks, in the cache, a key that the store does not have.
const absent = "\x00"

// Settings gives typed access to the key/value settings table.  When a
// Redis client is configured, values are cached in one hash for cacheTTL;
// every write drops the hash.  Cache errors fall through to the store.
type Settings struct {
	store      SettingStore
	cache      *redis.Client
	cacheKey   string
	cacheTTL   time.Duration
	defaultVAT decimal.Decimal
}

// NewSettings builds the service.  defaultVAT is the process-wide VAT
// percentage used when vat_rate_default is not set; an unparsable value
// counts as zero.  cache may be nil.
func NewSettings(store SettingStore, cache *redis.Client, defaultVAT string) *Settings {
	d, err := parseRate(defaultVAT)
	if err != nil {
		log.Printf("settings: invalid default VAT rate %q, using 0", defaultVAT)
	}
	return &Settings{
		store:      store,
		cache:      cache,
		cacheKey:   "backoffice:settings",
		cacheTTL:   5 * time.Minute,
		defaultVAT: d,
	}
}

// load returns the stored values of keys.  Keys that are not stored are
// missing from the result.
func (s *Settings) load(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	missing := keys
	if s.cache != nil {
		vals, err := s.cache.HMGet(ctx, s.cacheKey, keys...).Result()
		if err == nil {
			missing = nil
			for i, v := range vals {
				str, ok := v.(string)
				switch {
				case !ok:
					missing = append(missing, keys[i])
				case str != absent:
					out[keys[i]] = str
				}
			}
			if len(missing) == 0 {
				return out, nil
			}
		}
	}

	stored, err := s.store.GetMany(ctx, missing)
	if err != nil {
		return nil, err
	}
	fill := make(map[string]any, len(missing))
	for _, k := range missing {
		if v, ok := stored[k]; ok {
			out[k] = v
			fill[k] = v
		} else {
			fill[k] = absent
		}
	}
	if s.cache != nil && len(fill) > 0 {
		pipe := s.cache.TxPipeline()
		pipe.HSet(ctx, s.cacheKey, fill)
		pipe.Expire(ctx, s.cacheKey, s.cacheTTL)
		_, _ = pipe.Exec(ctx)
	}
	return out, nil
}

func (s *Settings) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, s.cacheKey).Err()
	}
}

// String returns the value of key, or its default when unset or when the
// store cannot be read.
func (s *Settings) String(ctx context.Context, key string) string {
	vals, err := s.load(ctx, []string{key})
	if err != nil {
		log.Printf("settings: read %s: %v", key, err)
		return defaults[key]
	}
	if v, ok := vals[key]; ok {
		return v
	}
	return defaults[key]
}

// DefaultVATRate is the VAT percentage applied to categories without an
// override.
func (s *Settings) DefaultVATRate(ctx context.Context) decimal.Decimal {
	vals, err := s.load(ctx, []string{KeyVATDefault})
	if err != nil {
		return s.defaultVAT
	}
	return s.rateOrDefault(vals[KeyVATDefault], s.defaultVAT)
}

// SetDefaultVATRate stores the global VAT percentage.  nil restores the
// process default.
func (s *Settings) SetDefaultVATRate(ctx context.Context, rate *decimal.Decimal) error {
	defer s.invalidate(ctx)
	if rate == nil {
		return s.store.Delete(ctx, KeyVATDefault)
	}
	return s.store.Set(ctx, KeyVATDefault, rate.String())
}

// CategoryVATRate returns the effective VAT percentage of a category and
// whether it comes from an override.
func (s *Settings) CategoryVATRate(ctx context.Context, code string) (decimal.Decimal, bool) {
	rates := s.CategoryVATRates(ctx, []string{code})
	r := rates[code]
	return r.Rate, r.Overridden
}

// VATRate is the effective rate of one category.
type VATRate struct {
	Rate       decimal.Decimal
	Overridden bool
}

// CategoryVATRates resolves the effective rate of several categories with
// a single read.
func (s *Settings) CategoryVATRates(ctx context.Context, codes []string) map[string]VATRate {
	keys := make([]string, 0, len(codes)+1)
	keys = append(keys, KeyVATDefault)
	for _, c := range codes {
		keys = append(keys, VATKey(c))
	}
	vals, err := s.load(ctx, keys)
	if err != nil {
		log.Printf("settings: read VAT rates: %v", err)
		vals = map[string]string{}
	}
	def := s.rateOrDefault(vals[KeyVATDefault], s.defaultVAT)

	out := make(map[string]VATRate, len(codes))
	for _, c := range codes {
		raw, ok := vals[VATKey(c)]
		if !ok {
			out[c] = VATRate{Rate: def}
			continue
		}
		r, err := parseRate(raw)
		if err != nil {
			out[c] = VATRate{Rate: def}
			continue
		}
		out[c] = VATRate{Rate: r, Overridden: true}
	}
	return out
}

// SetCategoryVATRate stores or, when rate is nil, clears the override of a
// category.
func (s *Settings) SetCategoryVATRate(ctx context.Context, code string, rate *decimal.Decimal) error {
	defer s.invalidate(ctx)
	if rate == nil {
		return s.store.Delete(ctx, VATKey(code))
	}
	return s.store.Set(ctx, VATKey(code), rate.String())
}

func (s *Settings) rateOrDefault(raw string, def decimal.Decimal) decimal.Decimal {
	if raw == "" {
		return def
	}
	r, err := parseRate(raw)
	if err != nil {
		return def
	}
	return r
}

// ParseVATRate parses a user supplied percentage.  A comma is accepted as
// decimal separator.  Empty input yields nil, meaning "no override".
func ParseVATRate(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	r, err := parseRate(raw)
	if err != nil {
		return nil, invalid("vat_rate", "Le taux de TVA doit être un nombre compris entre 0 et 100.")
	}
	return &r, nil
}

var errRateRange = errors.New("rate out of range")

func parseRate(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw), ",", "."))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, errRateRange
	}
	return d, nil
}

// Theme returns the ten theme colors, defaults filled in.
func (s *Settings) Theme(ctx context.Context) map[string]string {
	vals, err := s.load(ctx, ThemeKeys)
	if err != nil {
		log.Printf("settings: read theme: %v", err)
		vals = map[string]string{}
	}
	out := make(map[string]string, len(ThemeKeys))
	for _, k := range ThemeKeys {
		if v, ok := vals[k]; ok && v != "" {
			out[k] = v
		} else {
			out[k] = defaults[k]
		}
	}
	return out
}

// ThemeDefaults returns the built-in theme.
func ThemeDefaults() map[string]string {
	out := make(map[string]string, len(ThemeKeys))
	for _, k := range ThemeKeys {
		out[k] = defaults[k]
	}
	return out
}

// SaveTheme validates and stores all ten colors.  Missing colors keep
// their default.
func (s *Settings) SaveTheme(ctx context.Context, colors map[string]string) error {
	values := make(map[string]string, len(ThemeKeys))
	for _, k := range ThemeKeys {
		c := strings.ToLower(strings.TrimSpace(colors[k]))
		if c == "" {
			c = defaults[k]
		}
		if err := Validate(themeColor{Key: k, Value: c}); err != nil {
			return invalid(k, "La couleur « "+strings.TrimPrefix(k, "theme_")+" » doit être au format #RRGGBB.")
		}
		values[k] = c
	}
	defer s.invalidate(ctx)
	return s.store.SetMany(ctx, values)
}

type themeColor struct {
	Key   string
	Value string `validate:"len=7,hexcolor"`
}

// ResetTheme deletes the ten theme keys so the defaults apply again.
func (s *Settings) ResetTheme(ctx context.Context) error {
	defer s.invalidate(ctx)
	return s.store.DeleteMany(ctx, ThemeKeys)
}

// HotelInfo is the site content shown to guests.
type HotelInfo struct {
	Name        string `validate:"required,max=120" label:"nom de l'hôtel"`
	Phone       string `validate:"max=30" label:"téléphone"`
	Email       string `validate:"omitempty,email,max=120" label:"e-mail"`
	Address     string `validate:"max=255" label:"adresse"`
	WelcomeText string `validate:"max=2000" label:"texte d'accueil"`
}

var hotelKeys = []string{KeyHotelName, KeyHotelPhone, KeyHotelEmail, KeyHotelAddress, KeyHotelWelcomeText}

// HotelInfo returns the hotel contact details, defaults filled in.
func (s *Settings) HotelInfo(ctx context.Context) HotelInfo {
	vals, err := s.load(ctx, hotelKeys)
	if err != nil {
		log.Printf("settings: read hotel info: %v", err)
		vals = map[string]string{}
	}
	get := func(k string) string {
		if v, ok := vals[k]; ok {
			return v
		}
		return defaults[k]
	}
	return HotelInfo{
		Name:        get(KeyHotelName),
		Phone:       get(KeyHotelPhone),
		Email:       get(KeyHotelEmail),
		Address:     get(KeyHotelAddress),
		WelcomeText: get(KeyHotelWelcomeText),
	}
}

// SaveHotelInfo validates and stores the hotel contact details.
func (s *Settings) SaveHotelInfo(ctx context.Context, h HotelInfo) error {
	h.Name = strings.TrimSpace(h.Name)
	h.Phone = strings.TrimSpace(h.Phone)
	h.Email = strings.TrimSpace(h.Email)
	h.Address = strings.TrimSpace(h.Address)
	h.WelcomeText = strings.TrimSpace(h.WelcomeText)
	if err := Validate(h); err != nil {
		return err
	}
	defer s.invalidate(ctx)
	return s.store.SetMany(ctx, map[string]string{
		KeyHotelName:        h.Name,
		KeyHotelPhone:       h.Phone,
		KeyHotelEmail:       h.Email,
		KeyHotelAddress:     h.Address,
		KeyHotelWelcomeText: h.WelcomeText,
	})
}
