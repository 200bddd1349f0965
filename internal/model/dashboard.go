package model

import (
	"github.com/shopspring/decimal"
)

// OrderSummary is an order with totals recomputed from its lines.
type OrderSummary struct {
	Order
	ItemCount int         `json:"itemCount"`
	Totals    OrderTotals `json:"totals"`
}

// BuyerDashboard lists a buyer's orders.
type BuyerDashboard struct {
	Orders       []OrderSummary `json:"orders"`
	PendingCount int            `json:"pendingCount"`
}

// SellerProduct is a seller's product with its advertised bulk prices.
type SellerProduct struct {
	Product
	BulkPrice      decimal.Decimal `json:"bulkPrice"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
}

// SellerDashboard lists a seller's products and the orders containing them.
type SellerDashboard struct {
	Products     []SellerProduct `json:"products"`
	Orders       []OrderSummary  `json:"orders"`
	PendingCount int             `json:"pendingCount"`
}

// AdminDashboard holds marketplace-wide figures.
type AdminDashboard struct {
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalUsers    int             `json:"totalUsers"`
	TotalSales    decimal.Decimal `json:"totalSales"`
	PendingOrders int             `json:"pendingOrders"`
}

// SidebarState tells whether sidebar figures could be produced.
type SidebarState string

const (
	// SidebarNotApplicable means the caller is anonymous.
	SidebarNotApplicable SidebarState = "not_applicable"
	// SidebarAvailable means the figures were loaded.
	SidebarAvailable SidebarState = "available"
	// SidebarUnavailable means the data layer failed.
	SidebarUnavailable SidebarState = "unavailable"
)

// Sidebar holds the per-user quick figures shown next to every page.
type Sidebar struct {
	State       SidebarState    `json:"state"`
	OrdersCount int             `json:"ordersCount"`
	SalesTotal  decimal.Decimal `json:"salesTotal"`
	Phone       string          `json:"phone"`
	Address     string          `json:"address"`
}
