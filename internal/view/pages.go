package view

import (
    "html/template"

    "github.com/shopspring/decimal"

    "github.com/iliyamo/hotel-backoffice/internal/export"
    "github.com/iliyamo/hotel-backoffice/internal/model"
    "github.com/iliyamo/hotel-backoffice/internal/repository"
    "github.com/iliyamo/hotel-backoffice/internal/service"
)

type LoginData struct {
    Email string
}

type SortOption struct {
    Key   string
    Label string
}

// OrderDetail is the order opened with ?id= on the orders page.
type OrderDetail struct {
    Order model.Order
    Items []model.OrderItem
}

type OrdersData struct {
    Filter      export.Filter
    Orders      []model.Order
    Statuses    []string
    Sorts       []SortOption
    ExportQuery template.URL
    Degraded    bool
    Detail      *OrderDetail
}

type CategoriesData struct {
    Categories []service.CategoryView
    Form       service.CategoryInput
    Editing    bool
    DefaultVAT decimal.Decimal
}

type ItemsData struct {
    Categories []service.CategoryView
    Current    string
    Items      []service.ItemView
    Form       service.ItemInput
    Editing    bool
    EditID     uint64
}

type RoomsData struct {
    Rooms        []*model.Room
    Stats        repository.RoomStats
    Filter       repository.RoomFilter
    Form         service.RoomInput
    Editing      bool
    EditID       uint64
    Types        []string
    Statuses     []string
    Housekeeping []string
    Amenities    []string
}

type MessagesData struct {
    Messages []model.GuestMessage
    Status   string
    Statuses []string
    Enabled  bool
}

type ThemeData struct {
    Keys     []string
    Defaults map[string]string
}

type SettingsData struct {
    Info       service.HotelInfo
    DefaultVAT decimal.Decimal
}
