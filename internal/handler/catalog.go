package handler

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-backoffice/internal/model"
    "github.com/iliyamo/hotel-backoffice/internal/repository"
    "github.com/iliyamo/hotel-backoffice/internal/service"
    "github.com/iliyamo/hotel-backoffice/internal/view"
)

// CatalogHandler serves the category and menu item admin pages.
type CatalogHandler struct {
    Base
    Catalog *service.Catalog
}

func NewCatalogHandler(base Base, catalog *service.Catalog) *CatalogHandler {
    return &CatalogHandler{Base: base, Catalog: catalog}
}

func categoryInput(c echo.Context) service.CategoryInput {
    return service.CategoryInput{
        Code:         strings.TrimSpace(c.FormValue("code")),
        Name:         c.FormValue("name"),
        Translations: translations(c, model.ExtraLocales),
        TimeStart:    c.FormValue("time_start"),
        TimeEnd:      c.FormValue("time_end"),
        Position:     optionalInt(c.FormValue("position")),
        IsActive:     checked(c, "is_active"),
        VATRate:      strings.TrimSpace(c.FormValue("vat_rate")),
    }
}

// Categories renders GET /admin/categories; ?edit=<code> fills the form.
func (h *CatalogHandler) Categories(c echo.Context) error {
    return h.showCategories(c, nil, "", "")
}

// showCategories renders the page.  form is nil for a fresh page and
// holds the submitted values when a save failed.
func (h *CatalogHandler) showCategories(c echo.Context, form *service.CategoryInput, flash, errMsg string) error {
    ctx := c.Request().Context()
    cats, err := h.Catalog.ListCategories(ctx)
    if err != nil {
        c.Logger().Errorf("list categories request_id=%s: %v", requestID(c), err)
        if errMsg == "" {
            errMsg = "Les catégories n'ont pas pu être chargées."
        }
    }
    data := view.CategoriesData{
        Categories: cats,
        DefaultVAT: h.Settings.DefaultVATRate(ctx),
        Form:       service.CategoryInput{IsActive: true},
    }

    switch {
    case form != nil:
        data.Form = *form
        data.Editing = c.FormValue("action") == "update"
    case c.QueryParam("edit") != "":
        for _, cv := range cats {
            if cv.Code != c.QueryParam("edit") {
                continue
            }
            pos := cv.Position
            data.Editing = true
            data.Form = service.CategoryInput{
                Code:         cv.Code,
                Name:         cv.Name,
                Translations: cv.Translations,
                TimeStart:    derefString(cv.TimeStart),
                TimeEnd:      derefString(cv.TimeEnd),
                Position:     &pos,
                IsActive:     cv.IsActive,
            }
            if cv.VATOverridden {
                data.Form.VATRate = cv.VATRate.String()
            }
        }
    }

    p := h.page(c, "Catégories", "categories", data)
    p.Flash, p.Error = flash, errMsg
    return render(c, "categories", p)
}

// PostCategories handles POST /admin/categories with action create,
// update, toggle or delete.
func (h *CatalogHandler) PostCategories(c echo.Context) error {
    ctx := c.Request().Context()
    code := strings.TrimSpace(c.FormValue("code"))

    switch c.FormValue("action") {
    case "create":
        in := categoryInput(c)
        if _, err := h.Catalog.CreateCategory(ctx, in); err != nil {
            return h.showCategories(c, &in, "", userMessage(c, err))
        }
        return h.showCategories(c, nil, "Catégorie créée.", "")

    case "update":
        in := categoryInput(c)
        err := h.Catalog.UpdateCategory(ctx, code, in)
        if errors.Is(err, repository.ErrNotFound) {
            return h.showCategories(c, nil, "", service.MsgCategoryNotFound)
        }
        if err != nil {
            return h.showCategories(c, &in, "", userMessage(c, err))
        }
        return h.showCategories(c, nil, "Catégorie mise à jour.", "")

    case "toggle":
        err := h.Catalog.ToggleCategoryActive(ctx, code)
        if errors.Is(err, repository.ErrNotFound) {
            return h.showCategories(c, nil, "", service.MsgCategoryNotFound)
        }
        if err != nil {
            return h.showCategories(c, nil, "", userMessage(c, err))
        }
        return h.showCategories(c, nil, "Statut de la catégorie modifié.", "")

    case "delete":
        res := h.Catalog.DeleteCategory(ctx, code, c.FormValue("reassign_to"))
        if !res.Success {
            return h.showCategories(c, nil, "", res.Message)
        }
        return h.showCategories(c, nil, res.Message, "")
    }
    return h.showCategories(c, nil, "", "Action inconnue.")
}

func itemInput(c echo.Context) service.ItemInput {
    return service.ItemInput{
        CategoryCode: strings.TrimSpace(c.FormValue("category_code")),
        Name:         c.FormValue("name"),
        Translations: translations(c, model.ExtraLocales),
        Price:        c.FormValue("price"),
        Position:     optionalInt(c.FormValue("position")),
        IsActive:     checked(c, "is_active"),
    }
}

// Items renders GET /admin/items, optionally restricted to ?category=.
func (h *CatalogHandler) Items(c echo.Context) error {
    return h.showItems(c, nil, "", "")
}

func (h *CatalogHandler) showItems(c echo.Context, form *service.ItemInput, flash, errMsg string) error {
    ctx := c.Request().Context()
    current := strings.TrimSpace(c.QueryParam("category"))

    data := view.ItemsData{
        Current: current,
        Form:    service.ItemInput{CategoryCode: current, IsActive: true},
    }
    var err error
    if data.Categories, err = h.Catalog.ListCategories(ctx); err == nil {
        data.Items, err = h.Catalog.ListItems(ctx, current)
    }
    if err != nil {
        c.Logger().Errorf("list items request_id=%s: %v", requestID(c), err)
        if errMsg == "" {
            errMsg = "Les articles n'ont pas pu être chargés."
        }
    }
    if data.Form.CategoryCode == "" {
        data.Form.CategoryCode = model.GeneralCategory
    }

    switch {
    case form != nil:
        data.Form = *form
        data.Editing = c.FormValue("action") == "update"
        data.EditID = formUint(c, "item_id")
    case queryUint(c, "edit") != 0:
        id := queryUint(c, "edit")
        for _, it := range data.Items {
            if it.ID != id {
                continue
            }
            pos := it.Position
            data.Editing, data.EditID = true, id
            data.Form = service.ItemInput{
                CategoryCode: it.CategoryCode,
                Name:         it.Name,
                Translations: it.Translations,
                Price:        it.Price.StringFixed(2),
                Position:     &pos,
                IsActive:     it.IsActive,
            }
        }
    }

    p := h.page(c, "Articles", "items", data)
    p.Flash, p.Error = flash, errMsg
    return render(c, "items", p)
}

// PostItems handles POST /admin/items with action create, update, toggle
// or delete.
func (h *CatalogHandler) PostItems(c echo.Context) error {
    ctx := c.Request().Context()
    id := formUint(c, "item_id")

    var (
        err   error
        flash string
        in    = itemInput(c)
    )
    switch c.FormValue("action") {
    case "create":
        _, err = h.Catalog.CreateItem(ctx, in)
        flash = "Article créé."
    case "update":
        err = h.Catalog.UpdateItem(ctx, id, in)
        flash = "Article mis à jour."
    case "toggle":
        err = h.Catalog.ToggleItemActive(ctx, id)
        flash = "Statut de l'article modifié."
    case "delete":
        err = h.Catalog.DeleteItem(ctx, id)
        flash = "Article supprimé."
    default:
        return h.showItems(c, nil, "", "Action inconnue.")
    }

    switch {
    case errors.Is(err, repository.ErrNotFound):
        return h.showItems(c, nil, "", service.MsgItemNotFound)
    case err != nil:
        var ve *service.ValidationError
        if errors.As(err, &ve) {
            return h.showItems(c, &in, "", ve.Message)
        }
        return h.showItems(c, nil, "", userMessage(c, err))
    }
    return h.showItems(c, nil, flash, "")
}

type categoryJSON struct {
    Code          string            `json:"code"`
    Name          string            `json:"name"`
    Translations  map[string]string `json:"translations"`
    TimeStart     *string           `json:"time_start"`
    TimeEnd       *string           `json:"time_end"`
    Position      int               `json:"position"`
    IsActive      bool              `json:"is_active"`
    ItemCount     int               `json:"item_count"`
    VATRate       string            `json:"vat_rate"`
    VATOverridden bool              `json:"vat_overridden"`
}

// APICategories serves GET /api/categories.
func (h *CatalogHandler) APICategories(c echo.Context) error {
    cats, err := h.Catalog.ListCategories(c.Request().Context())
    if err != nil {
        c.Logger().Errorf("api categories request_id=%s: %v", requestID(c), err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Les catégories n'ont pas pu être chargées."})
    }
    out := make([]categoryJSON, len(cats))
    for i, cv := range cats {
        out[i] = categoryJSON{
            Code:          cv.Code,
            Name:          cv.Name,
            Translations:  cv.Translations,
            TimeStart:     cv.TimeStart,
            TimeEnd:       cv.TimeEnd,
            Position:      cv.Position,
            IsActive:      cv.IsActive,
            ItemCount:     cv.ItemCount,
            VATRate:       cv.VATRate.String(),
            VATOverridden: cv.VATOverridden,
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "data": out})
}

func derefString(p *string) string {
    if p == nil {
        return ""
    }
    return *p
}
