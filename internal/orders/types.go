package orders

import "time"

// Order is the schema-current view of a stored order.
type Order struct {
	ID             string         `json:"id"`
	OrderNumber    string         `json:"order_number"`
	OrderDate      string         `json:"order_date"`
	CustomerName   string         `json:"customer_name"`
	CustomerEmail  string         `json:"customer_email"`
	ProductItems   []ProductItem  `json:"product_items"`
	Amount         float64        `json:"amount"`
	Notes          string         `json:"notes"`
	Touchpoints    Touchpoints    `json:"touchpoints"`
	Stages         Stages         `json:"stages"`
	CustomReminder CustomReminder `json:"custom_reminder"`
	CreatedAt      time.Time      `json:"created_at"`
	LastUpdated    time.Time      `json:"last_updated"`
	IsHighPriority bool           `json:"is_high_priority"`
}

type ProductItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	SKU      string `json:"sku"`
}

// Touchpoints records which contact channels were used with the customer.
type Touchpoints struct {
	WhatsApp bool   `json:"whatsapp"`
	Email    bool   `json:"email"`
	Crisp    bool   `json:"crisp"`
	Notes    string `json:"notes"`
}

// Stages are independent fulfillment milestones; any subset may be set.
type Stages struct {
	InEmbroidery    bool `json:"in_embroidery"`
	Customizing     bool `json:"customizing"`
	Washing         bool `json:"washing"`
	ReadyToDispatch bool `json:"ready_to_dispatch"`
	SentToDelhi     bool `json:"sent_to_delhi"`
	LeftXportel     bool `json:"left_xportel"`
	ReachedCountry  bool `json:"reached_country"`
	Delivered       bool `json:"delivered"`
}

type CustomReminder struct {
	Days     int    `json:"days"`
	Time     string `json:"time"`
	Note     string `json:"note"`
	IsActive bool   `json:"is_active"`
}

// NewOrder carries the caller-supplied fields of a create. Identity, timestamps,
// priority, stages and the custom reminder are assigned by the store.
type NewOrder struct {
	OrderNumber   string
	OrderDate     string
	CustomerName  string
	CustomerEmail string
	ProductItems  []ProductItem
	Amount        float64
	Notes         string
}

// Update is a partial update. Nil fields are left alone; non-nil nested objects
// replace the stored object wholesale.
type Update struct {
	Touchpoints    *Touchpoints
	Stages         *Stages
	Notes          *string
	CustomReminder *CustomReminder
}

// Reminder flags an order that has not been touched for a while.
type Reminder struct {
	OrderID         string  `json:"order_id"`
	CustomerName    string  `json:"customer_name"`
	DaysSinceUpdate int     `json:"days_since_update"`
	Amount          float64 `json:"amount"`
}
