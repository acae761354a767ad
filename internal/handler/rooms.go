package handler

import (
    "errors"
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-backoffice/internal/model"
    "github.com/iliyamo/hotel-backoffice/internal/repository"
    "github.com/iliyamo/hotel-backoffice/internal/service"
    "github.com/iliyamo/hotel-backoffice/internal/view"
)

// RoomHandler serves the room inventory page and its JSON endpoints.
type RoomHandler struct {
    Base
    Rooms *service.Rooms
}

func NewRoomHandler(base Base, rooms *service.Rooms) *RoomHandler {
    return &RoomHandler{Base: base, Rooms: rooms}
}

// roomFilter reads the list filters from the query string.
func roomFilter(c echo.Context) repository.RoomFilter {
    return repository.RoomFilter{
        Status:             strings.TrimSpace(c.QueryParam("status")),
        HousekeepingStatus: strings.TrimSpace(c.QueryParam("housekeeping_status")),
        RoomType:           strings.TrimSpace(c.QueryParam("room_type")),
        Floor:              optionalInt(c.QueryParam("floor")),
        Search:             strings.TrimSpace(c.QueryParam("search")),
        ShowInactive:       c.QueryParam("show_inactive") == "1",
    }
}

// roomInput reads the room form.  Extra amenities typed in the free
// field are split on commas and merged with the ticked ones.
func roomInput(c echo.Context) service.RoomInput {
    form, _ := c.FormParams()
    amenities := append([]string{}, form["amenities"]...)
    amenities = append(amenities, strings.Split(c.FormValue("amenities_other"), ",")...)
    atoi := func(name string) int {
        n, _ := strconv.Atoi(strings.TrimSpace(c.FormValue(name)))
        return n
    }
    return service.RoomInput{
        RoomNumber:         c.FormValue("room_number"),
        Floor:              optionalInt(c.FormValue("floor")),
        RoomType:           c.FormValue("room_type"),
        Capacity:           atoi("capacity"),
        BedCount:           atoi("bed_count"),
        SurfaceArea:        c.FormValue("surface_area"),
        Amenities:          service.NormalizeAmenities(amenities),
        Notes:              c.FormValue("notes"),
        Status:             c.FormValue("status"),
        HousekeepingStatus: c.FormValue("housekeeping_status"),
        IsActive:           checked(c, "is_active"),
    }
}

// Page renders GET /admin/rooms; ?edit=<id> fills the form.
func (h *RoomHandler) Page(c echo.Context) error {
    return h.show(c, nil, "", "")
}

func (h *RoomHandler) show(c echo.Context, form *service.RoomInput, flash, errMsg string) error {
    ctx := c.Request().Context()
    data := view.RoomsData{
        Filter:       roomFilter(c),
        Form:         service.RoomInput{RoomType: "double", Capacity: 2, BedCount: 1, IsActive: true},
        Types:        model.RoomTypes,
        Statuses:     model.RoomStatuses,
        Housekeeping: model.HousekeepingStatuses,
        Amenities:    model.KnownAmenities,
    }
    var err error
    if data.Rooms, err = h.Rooms.GetRooms(ctx, data.Filter); err == nil {
        data.Stats, err = h.Rooms.GetRoomStatistics(ctx)
    }
    if err != nil {
        c.Logger().Errorf("list rooms request_id=%s: %v", requestID(c), err)
        if errMsg == "" {
            errMsg = "Les chambres n'ont pas pu être chargées."
        }
    }

    switch {
    case form != nil:
        data.Form = *form
        data.EditID = formUint(c, "room_id")
        data.Editing = data.EditID != 0
    case queryUint(c, "edit") != 0:
        id := queryUint(c, "edit")
        rm, err := h.Rooms.GetRoom(ctx, id)
        if err != nil {
            if errMsg == "" {
                errMsg = service.MsgRoomNotFound
            }
            break
        }
        data.Editing, data.EditID = true, id
        data.Form = service.RoomInput{
            RoomNumber: rm.RoomNumber,
            Floor:      rm.Floor,
            RoomType:   rm.RoomType,
            Capacity:   rm.Capacity,
            BedCount:   rm.BedCount,
            Amenities:  rm.Amenities,
            Notes:      rm.Notes,
            IsActive:   rm.IsActive,
        }
        if rm.SurfaceArea != nil {
            data.Form.SurfaceArea = rm.SurfaceArea.String()
        }
    }

    p := h.page(c, "Chambres", "rooms", data)
    p.Flash, p.Error = flash, errMsg
    return render(c, "rooms", p)
}

// Post handles POST /admin/rooms with action create, update,
// update_status, update_housekeeping or delete (hard_delete=1 removes the
// row instead of deactivating it).
func (h *RoomHandler) Post(c echo.Context) error {
    ctx := c.Request().Context()
    id := formUint(c, "room_id")

    var (
        err   error
        flash string
        in    *service.RoomInput
    )
    switch c.FormValue("action") {
    case "create":
        ri := roomInput(c)
        in = &ri
        _, err = h.Rooms.CreateRoom(ctx, ri)
        flash = "Chambre créée."
    case "update":
        ri := roomInput(c)
        in = &ri
        err = h.Rooms.UpdateRoom(ctx, id, ri)
        flash = "Chambre mise à jour."
    case "update_status":
        err = h.Rooms.UpdateRoomStatus(ctx, id, c.FormValue("status"))
        flash = "Statut de la chambre mis à jour."
    case "update_housekeeping":
        err = h.Rooms.UpdateRoomHousekeepingStatus(ctx, id, c.FormValue("housekeeping_status"))
        flash = "Statut de ménage mis à jour."
    case "delete":
        hard := c.FormValue("hard_delete") == "1"
        err = h.Rooms.DeleteRoom(ctx, id, hard)
        flash = "Chambre désactivée."
        if hard {
            flash = "Chambre supprimée définitivement."
        }
    default:
        return h.show(c, nil, "", "Action inconnue.")
    }

    var ve *service.ValidationError
    switch {
    case err == nil:
        return h.show(c, nil, flash, "")
    case errors.Is(err, repository.ErrNotFound):
        return h.show(c, nil, "", service.MsgRoomNotFound)
    case errors.As(err, &ve):
        return h.show(c, in, "", ve.Message)
    }
    return h.show(c, nil, "", userMessage(c, err))
}

// APIList serves GET /api/rooms with the same filters as the page.
func (h *RoomHandler) APIList(c echo.Context) error {
    rooms, err := h.Rooms.GetRooms(c.Request().Context(), roomFilter(c))
    if err != nil {
        c.Logger().Errorf("api rooms request_id=%s: %v", requestID(c), err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Les chambres n'ont pas pu être chargées."})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "data": rooms})
}

// APIStats serves GET /api/rooms/stats.
func (h *RoomHandler) APIStats(c echo.Context) error {
    stats, err := h.Rooms.GetRoomStatistics(c.Request().Context())
    if err != nil {
        c.Logger().Errorf("api room stats request_id=%s: %v", requestID(c), err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "Les statistiques n'ont pas pu être chargées."})
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "data": stats})
}
