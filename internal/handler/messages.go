package handler

import (
    "context"
    "errors"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/hotel-backoffice/internal/model"
    "github.com/iliyamo/hotel-backoffice/internal/repository"
    "github.com/iliyamo/hotel-backoffice/internal/view"
)

// MessageStore is satisfied by *repository.MessageRepo.
type MessageStore interface {
    List(ctx context.Context, status string, limit int) ([]model.GuestMessage, error)
    UpdateStatus(ctx context.Context, id uint64, status string) error
}

const messagePageSize = 100

var messageStatuses = []string{model.MessageNew, model.MessageRead, model.MessageArchived}

// MessageHandler serves the guest messages page.
type MessageHandler struct {
    Base
    Messages MessageStore
}

func NewMessageHandler(base Base, messages MessageStore) *MessageHandler {
    return &MessageHandler{Base: base, Messages: messages}
}

// Page renders GET /admin/messages, optionally filtered by ?status=.
func (h *MessageHandler) Page(c echo.Context) error {
    return h.show(c, "", "")
}

func (h *MessageHandler) show(c echo.Context, flash, errMsg string) error {
    status := c.QueryParam("status")
    if !model.Contains(messageStatuses, status) {
        status = ""
    }
    data := view.MessagesData{Status: status, Statuses: messageStatuses, Enabled: true}

    msgs, err := h.Messages.List(c.Request().Context(), status, messagePageSize)
    switch {
    case repository.IsMissingTable(err):
        data.Enabled = false
    case err != nil:
        c.Logger().Errorf("list messages request_id=%s: %v", requestID(c), err)
        if errMsg == "" {
            errMsg = "Les messages n'ont pas pu être chargés."
        }
    }
    data.Messages = msgs

    p := h.page(c, "Messages", "messages", data)
    p.Flash, p.Error = flash, errMsg
    return render(c, "messages", p)
}

// Post handles POST /admin/messages with action mark_read or archive.
func (h *MessageHandler) Post(c echo.Context) error {
    var status, flash string
    switch c.FormValue("action") {
    case "mark_read":
        status, flash = model.MessageRead, "Message marqué comme lu."
    case "archive":
        status, flash = model.MessageArchived, "Message archivé."
    default:
        return h.show(c, "", "Action inconnue.")
    }
    err := h.Messages.UpdateStatus(c.Request().Context(), formUint(c, "message_id"), status)
    if errors.Is(err, repository.ErrNotFound) {
        return h.show(c, "", "Message introuvable.")
    }
    if err != nil {
        return h.show(c, "", userMessage(c, err))
    }
    return h.show(c, flash, "")
}
