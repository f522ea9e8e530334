package validation

import (
	"bytes"
	"encoding/json"

	"github.com/imrishuroy/kashmkari-orderflow/internal/orders"
)

// ProductItem is a single line of a create payload.
type ProductItem struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1"`
	SKU      string `json:"sku"`
}

// CreateOrderRequest is the payload for POST /api/orders.
type CreateOrderRequest struct {
	OrderNumber   string        `json:"order_number"`
	OrderDate     string        `json:"order_date" validate:"required,orderdate"`
	CustomerName  string        `json:"customer_name" validate:"required"`
	CustomerEmail string        `json:"customer_email" validate:"required,email"`
	ProductItems  []ProductItem `json:"product_items" validate:"required,dive"`
	Amount        *float64      `json:"amount" validate:"required,gte=0"`
	Notes         string        `json:"notes"`
}

// UnmarshalJSON also accepts the old single-product shape, where product_items is
// a name and quantity/sku sit at the top level.
func (r *CreateOrderRequest) UnmarshalJSON(data []byte) error {
	type alias CreateOrderRequest
	var raw struct {
		alias
		ProductItems json.RawMessage `json:"product_items"`
		Quantity     any             `json:"quantity"`
		SKU          any             `json:"sku"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = CreateOrderRequest(raw.alias)
	r.ProductItems = nil

	items := bytes.TrimSpace(raw.ProductItems)
	switch {
	case len(items) == 0 || bytes.Equal(items, []byte("null")):
	case items[0] == '"':
		var name string
		if err := json.Unmarshal(items, &name); err != nil {
			return err
		}
		for _, it := range orders.FoldProductItems(name, raw.Quantity, raw.SKU) {
			r.ProductItems = append(r.ProductItems, ProductItem(it))
		}
	default:
		if err := json.Unmarshal(items, &r.ProductItems); err != nil {
			return err
		}
	}
	return nil
}

// NewOrder converts a validated request to the store's input.
func (r CreateOrderRequest) NewOrder() orders.NewOrder {
	items := make([]orders.ProductItem, 0, len(r.ProductItems))
	for _, it := range r.ProductItems {
		items = append(items, orders.ProductItem(it))
	}
	var amount float64
	if r.Amount != nil {
		amount = *r.Amount
	}
	return orders.NewOrder{
		OrderNumber:   r.OrderNumber,
		OrderDate:     r.OrderDate,
		CustomerName:  r.CustomerName,
		CustomerEmail: r.CustomerEmail,
		ProductItems:  items,
		Amount:        amount,
		Notes:         r.Notes,
	}
}

// UpdateOrderRequest is the payload for PUT /api/orders/:id. Absent fields are left untouched.
type UpdateOrderRequest struct {
	Touchpoints    *orders.Touchpoints `json:"touchpoints"`
	Stages         *orders.Stages      `json:"stages"`
	Notes          *string             `json:"notes"`
	CustomReminder *CustomReminder     `json:"custom_reminder"`
}

type CustomReminder struct {
	Days     int    `json:"days" validate:"gte=0"`
	Time     string `json:"time"`
	Note     string `json:"note"`
	IsActive bool   `json:"is_active"`
}

func (r UpdateOrderRequest) Update() orders.Update {
	u := orders.Update{
		Touchpoints: r.Touchpoints,
		Stages:      r.Stages,
		Notes:       r.Notes,
	}
	if r.CustomReminder != nil {
		cr := orders.CustomReminder(*r.CustomReminder)
		u.CustomReminder = &cr
	}
	return u
}

// SendEmailRequest is the payload for POST /api/send-email.
type SendEmailRequest struct {
	RecipientEmail string `json:"recipient_email" validate:"required,email"`
	Subject        string `json:"subject" validate:"required"`
	HTMLContent    string `json:"html_content" validate:"required"`
}
