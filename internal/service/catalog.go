package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-backoffice/internal/model"
	"github.com/iliyamo/hotel-backoffice/internal/repository"
)

// CategoryStore is satisfied by *repository.CategoryRepo.
type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	NextPosition(ctx context.Context) (int, error)
	Update(ctx context.Context, code string, c *model.Category) error
	ToggleActive(ctx context.Context, code string) error
	GetByCode(ctx context.Context, code string) (*repository.CategoryRow, error)
	List(ctx context.Context) ([]*repository.CategoryRow, error)
	DeleteAndReassign(ctx context.Context, code, target string) (int64, error)
}

// ItemStore is satisfied by *repository.ItemRepo.
type ItemStore interface {
	List(ctx context.Context, categoryCode string) ([]model.MenuItem, error)
	GetByID(ctx context.Context, id uint64) (*model.MenuItem, error)
	Create(ctx context.Context, it *model.MenuItem) error
	Update(ctx context.Context, it *model.MenuItem) error
	ToggleActive(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
	NextPosition(ctx context.Context, categoryCode string) (int, error)
}

// Messages shown by the category admin.
const (
	MsgTimePair          = "Veuillez renseigner les deux horaires (début et fin) ou aucun."
	MsgDuplicateCategory = "Ce code de catégorie existe déjà."
	MsgCategoryCode      = "Le code ne peut contenir que des lettres minuscules, des chiffres et des underscores."
	MsgTimeFormat        = "Horaire invalide, format attendu HH:MM."
	MsgGeneralProtected  = "La catégorie « general » est protégée et ne peut pas être supprimée."
	MsgCategoryNotFound  = "Catégorie introuvable."
	MsgItemNotFound      = "Article introuvable."
)

var (
	codePattern  = regexp.MustCompile(`^[a-z0-9_]+$`)
	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)
)

// CategoryInput is what the category form submits.
type CategoryInput struct {
	Code         string
	Name         string `validate:"required,max=100" label:"nom"`
	Translations map[string]string
	TimeStart    string
	TimeEnd      string
	Position     *int `validate:"omitempty,gte=0" label:"position"`
	IsActive     bool
	VATRate      string
}

// CategoryView is a category as listed in the admin, with its effective
// VAT rate.
type CategoryView struct {
	repository.CategoryRow
	VATRate       decimal.Decimal
	VATOverridden bool
}

// DeleteResult reports the outcome of DeleteCategory.
type DeleteResult struct {
	Success    bool
	Message    string
	Reassigned int64
}

// Catalog manages room-service categories and their items.
type Catalog struct {
	categories CategoryStore
	items      ItemStore
	settings   *Settings
}

func NewCatalog(categories CategoryStore, items ItemStore, settings *Settings) *Catalog {
	return &Catalog{categories: categories, items: items, settings: settings}
}

// normalize validates in and turns it into a category.  The returned VAT
// rate is nil when the override must be cleared.
func (c *Catalog) normalize(in CategoryInput) (*model.Category, *decimal.Decimal, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in); err != nil {
		return nil, nil, err
	}

	start, end := strings.TrimSpace(in.TimeStart), strings.TrimSpace(in.TimeEnd)
	if (start == "") != (end == "") {
		return nil, nil, invalid("time_start", MsgTimePair)
	}
	cat := &model.Category{Name: in.Name, IsActive: in.IsActive}
	if start != "" {
		if !clockPattern.MatchString(start) || !clockPattern.MatchString(end) {
			return nil, nil, invalid("time_start", MsgTimeFormat)
		}
		start, end = start[:5], end[:5]
		cat.TimeStart, cat.TimeEnd = &start, &end
	}

	cat.Translations = map[string]string{model.BaseLocale: in.Name}
	for _, loc := range model.ExtraLocales {
		if v := strings.TrimSpace(in.Translations[loc]); v != "" {
			cat.Translations[loc] = v
		}
	}

	rate, err := ParseVATRate(in.VATRate)
	if err != nil {
		return nil, nil, err
	}
	return cat, rate, nil
}

// CreateCategory validates and inserts a category, then stores its VAT
// override.  A taken code is reported as a *ValidationError wrapping
// repository.ErrDuplicate.
func (c *Catalog) CreateCategory(ctx context.Context, in CategoryInput) (uint64, error) {
	code := strings.TrimSpace(in.Code)
	if !codePattern.MatchString(code) {
		return 0, invalid("code", MsgCategoryCode)
	}
	cat, rate, err := c.normalize(in)
	if err != nil {
		return 0, err
	}
	cat.Code = code

	if in.Position != nil {
		cat.Position = *in.Position
	} else if cat.Position, err = c.categories.NextPosition(ctx); err != nil {
		return 0, err
	}

	if err := c.categories.Create(ctx, cat); err != nil {
		if repository.IsDuplicate(err) {
			return 0, &ValidationError{Field: "code", Message: MsgDuplicateCategory, Err: repository.ErrDuplicate}
		}
		return 0, err
	}
	if rate != nil {
		if err := c.settings.SetCategoryVATRate(ctx, code, rate); err != nil {
			return cat.ID, fmt.Errorf("category %s created, VAT rate not saved: %w", code, err)
		}
	}
	return cat.ID, nil
}

// UpdateCategory rewrites the category identified by code.  in.Code is
// ignored because codes are immutable.  The VAT override is replaced, or
// cleared when in.VATRate is empty.
func (c *Catalog) UpdateCategory(ctx context.Context, code string, in CategoryInput) error {
	cat, rate, err := c.normalize(in)
	if err != nil {
		return err
	}
	current, err := c.categories.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	cat.Code = code
	cat.Position = current.Position
	if in.Position != nil {
		cat.Position = *in.Position
	}
	if err := c.categories.Update(ctx, code, cat); err != nil {
		return err
	}
	return c.settings.SetCategoryVATRate(ctx, code, rate)
}

// ToggleCategoryActive flips the active flag of a category.
func (c *Catalog) ToggleCategoryActive(ctx context.Context, code string) error {
	return c.categories.ToggleActive(ctx, code)
}

// DeleteCategory removes a category after moving its items to reassignTo,
// which defaults to the general category.  The general category itself is
// never deleted and storage is not touched for it.
func (c *Catalog) DeleteCategory(ctx context.Context, code, reassignTo string) DeleteResult {
	code = strings.TrimSpace(code)
	if code == model.GeneralCategory {
		return DeleteResult{Message: MsgGeneralProtected}
	}
	target := strings.TrimSpace(reassignTo)
	if target == "" {
		target = model.GeneralCategory
	}
	if target == code {
		return DeleteResult{Message: "Les articles ne peuvent pas être réaffectés à la catégorie supprimée."}
	}

	moved, err := c.categories.DeleteAndReassign(ctx, code, target)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return DeleteResult{Message: MsgCategoryNotFound}
	case errors.Is(err, repository.ErrConflict):
		return DeleteResult{Message: fmt.Sprintf("La catégorie de destination « %s » n'existe pas.", target)}
	case err != nil:
		log.Printf("catalog: delete category %s: %v", code, err)
		return DeleteResult{Message: "Erreur lors de la suppression de la catégorie."}
	}

	if err := c.settings.SetCategoryVATRate(ctx, code, nil); err != nil {
		log.Printf("catalog: clear VAT rate of %s: %v", code, err)
	}
	msg := "Catégorie supprimée. Aucun article à réaffecter."
	if moved > 0 {
		msg = fmt.Sprintf("Catégorie supprimée. %d article(s) réaffecté(s) à « %s ».", moved, target)
	}
	return DeleteResult{Success: true, Message: msg, Reassigned: moved}
}

// ListCategories returns every category with its item count and effective
// VAT rate.
func (c *Catalog) ListCategories(ctx context.Context) ([]CategoryView, error) {
	rows, err := c.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	codes := make([]string, len(rows))
	for i, r := range rows {
		codes[i] = r.Code
	}
	rates := c.settings.CategoryVATRates(ctx, codes)

	out := make([]CategoryView, len(rows))
	for i, r := range rows {
		out[i] = CategoryView{CategoryRow: *r, VATRate: rates[r.Code].Rate, VATOverridden: rates[r.Code].Overridden}
	}
	return out, nil
}

// GetCategory returns one category.
func (c *Catalog) GetCategory(ctx context.Context, code string) (*repository.CategoryRow, error) {
	return c.categories.GetByCode(ctx, code)
}

// ItemInput is what the item form submits.
type ItemInput struct {
	CategoryCode string `validate:"required" label:"catégorie"`
	Name         string `validate:"required,max=150" label:"nom"`
	Translations map[string]string
	Price        string `validate:"required" label:"prix"`
	Position     *int   `validate:"omitempty,gte=0" label:"position"`
	IsActive     bool
}

// ItemView is an item with its price split by the VAT rate of its
// category.
type ItemView struct {
	model.MenuItem
	VATRate      decimal.Decimal
	PriceExclTax decimal.Decimal
}

func (c *Catalog) normalizeItem(ctx context.Context, in ItemInput) (*model.MenuItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.CategoryCode = strings.TrimSpace(in.CategoryCode)
	in.Price = strings.TrimSpace(in.Price)
	if err := Validate(in); err != nil {
		return nil, err
	}
	price, err := decimal.NewFromString(strings.ReplaceAll(in.Price, ",", "."))
	if err != nil || price.IsNegative() {
		return nil, invalid("price", "Le prix doit être un montant positif.")
	}
	if _, err := c.categories.GetByCode(ctx, in.CategoryCode); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("category_code", MsgCategoryNotFound)
		}
		return nil, err
	}

	it := &model.MenuItem{
		CategoryCode: in.CategoryCode,
		Name:         in.Name,
		Price:        price.Round(2),
		IsActive:     in.IsActive,
		Translations: map[string]string{model.BaseLocale: in.Name},
	}
	for _, loc := range model.ExtraLocales {
		if v := strings.TrimSpace(in.Translations[loc]); v != "" {
			it.Translations[loc] = v
		}
	}
	return it, nil
}

// CreateItem validates and inserts a menu item in an existing category.
func (c *Catalog) CreateItem(ctx context.Context, in ItemInput) (uint64, error) {
	it, err := c.normalizeItem(ctx, in)
	if err != nil {
		return 0, err
	}
	if in.Position != nil {
		it.Position = *in.Position
	} else if it.Position, err = c.items.NextPosition(ctx, it.CategoryCode); err != nil {
		return 0, err
	}
	if err := c.items.Create(ctx, it); err != nil {
		return 0, err
	}
	return it.ID, nil
}

// UpdateItem rewrites an item.
func (c *Catalog) UpdateItem(ctx context.Context, id uint64, in ItemInput) error {
	it, err := c.normalizeItem(ctx, in)
	if err != nil {
		return err
	}
	current, err := c.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	it.ID = id
	it.Position = current.Position
	if in.Position != nil {
		it.Position = *in.Position
	}
	return c.items.Update(ctx, it)
}

// ToggleItemActive flips the active flag of an item.
func (c *Catalog) ToggleItemActive(ctx context.Context, id uint64) error {
	return c.items.ToggleActive(ctx, id)
}

// DeleteItem removes an item.
func (c *Catalog) DeleteItem(ctx context.Context, id uint64) error {
	return c.items.Delete(ctx, id)
}

// ListItems returns the items of a category, or all items when code is
// empty, with prices excluding VAT computed from each category's rate.
func (c *Catalog) ListItems(ctx context.Context, code string) ([]ItemView, error) {
	items, err := c.items.List(ctx, code)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	codes := []string{}
	for _, it := range items {
		if !seen[it.CategoryCode] {
			seen[it.CategoryCode] = true
			codes = append(codes, it.CategoryCode)
		}
	}
	rates := c.settings.CategoryVATRates(ctx, codes)

	out := make([]ItemView, len(items))
	for i, it := range items {
		r := rates[it.CategoryCode].Rate
		out[i] = ItemView{MenuItem: it, VATRate: r, PriceExclTax: PriceExcludingTax(it.Price, r)}
	}
	return out, nil
}

// PriceExcludingTax removes a VAT percentage from a tax-inclusive price,
// rounded to the cent.
func PriceExcludingTax(price, rate decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100)))
	return price.Div(factor).Round(2)
}
