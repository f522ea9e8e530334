package orders

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/imrishuroy/kashmkari-orderflow/internal/docstore"
)

// Document field names.
const (
	fieldID             = docstore.KeyAttribute
	fieldOrderNumber    = "order_number"
	fieldOrderDate      = "order_date"
	fieldCustomerName   = "customer_name"
	fieldCustomerEmail  = "customer_email"
	fieldProductItems   = "product_items"
	fieldAmount         = "amount"
	fieldNotes          = "notes"
	fieldTouchpoints    = "touchpoints"
	fieldStages         = "stages"
	fieldCustomReminder = "custom_reminder"
	fieldCreatedAt      = "created_at"
	fieldLastUpdated    = "last_updated"
	fieldHighPriority   = "is_high_priority"

	// top-level siblings of a string product_items in old documents
	legacyQuantity = "quantity"
	legacySKU      = "sku"
)

const orderNumberPrefix = "ORD-"

// Normalize turns a stored document of any schema version into an Order.
// It never fails: absent or mistyped fields take their zero value, which is also the
// default for custom_reminder and touchpoints.notes. Unknown fields are dropped.
func Normalize(doc docstore.Document) Order {
	o := Order{
		ID:             asString(doc[fieldID]),
		OrderNumber:    asString(doc[fieldOrderNumber]),
		OrderDate:      asString(doc[fieldOrderDate]),
		CustomerName:   asString(doc[fieldCustomerName]),
		CustomerEmail:  asString(doc[fieldCustomerEmail]),
		ProductItems:   FoldProductItems(doc[fieldProductItems], doc[legacyQuantity], doc[legacySKU]),
		Amount:         asFloat(doc[fieldAmount]),
		Notes:          asString(doc[fieldNotes]),
		Touchpoints:    decodeTouchpoints(doc[fieldTouchpoints]),
		Stages:         decodeStages(doc[fieldStages]),
		CustomReminder: decodeCustomReminder(doc[fieldCustomReminder]),
		CreatedAt:      asTime(doc[fieldCreatedAt]),
		LastUpdated:    asTime(doc[fieldLastUpdated]),
		IsHighPriority: asBool(doc[fieldHighPriority]),
	}
	if o.OrderNumber == "" {
		o.OrderNumber = SynthesizeOrderNumber(o.ID)
	}
	return o
}

// SynthesizeOrderNumber derives a display number from the first 8 characters of id.
func SynthesizeOrderNumber(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return orderNumberPrefix + id
}

type itemsShape int

const (
	itemsMissing itemsShape = iota
	itemsSingleName
	itemsList
	itemsUnrecognized
)

// productItemsValue is the decoded variant of a stored product_items value.
type productItemsValue struct {
	shape itemsShape
	name  string
	list  []any
}

func classifyProductItems(v any) productItemsValue {
	switch t := v.(type) {
	case nil:
		return productItemsValue{shape: itemsMissing}
	case string:
		return productItemsValue{shape: itemsSingleName, name: t}
	case []any:
		return productItemsValue{shape: itemsList, list: t}
	case []map[string]any:
		list := make([]any, len(t))
		for i, m := range t {
			list[i] = m
		}
		return productItemsValue{shape: itemsList, list: list}
	default:
		return productItemsValue{shape: itemsUnrecognized}
	}
}

// FoldProductItems decodes a product_items value. The legacy single-string form is
// folded with the top-level quantity (default 1) and sku (default "") into a
// one-element list; a missing or unrecognized value yields an empty list.
func FoldProductItems(items, quantity, sku any) []ProductItem {
	v := classifyProductItems(items)
	switch v.shape {
	case itemsSingleName:
		qty := 1
		if n, ok := toFloat(quantity); ok {
			qty = int(n)
		}
		return []ProductItem{{Name: v.name, Quantity: qty, SKU: asString(sku)}}
	case itemsList:
		out := make([]ProductItem, 0, len(v.list))
		for _, el := range v.list {
			switch e := el.(type) {
			case string:
				out = append(out, ProductItem{Name: e, Quantity: 1})
			default:
				m := asObject(e)
				if m == nil {
					continue
				}
				out = append(out, ProductItem{
					Name:     asString(m["name"]),
					Quantity: asInt(m["quantity"]),
					SKU:      asString(m["sku"]),
				})
			}
		}
		return out
	default:
		return []ProductItem{}
	}
}

func decodeTouchpoints(v any) Touchpoints {
	m := asObject(v)
	return Touchpoints{
		WhatsApp: asBool(m["whatsapp"]),
		Email:    asBool(m["email"]),
		Crisp:    asBool(m["crisp"]),
		Notes:    asString(m["notes"]),
	}
}

func decodeStages(v any) Stages {
	m := asObject(v)
	return Stages{
		InEmbroidery:    asBool(m["in_embroidery"]),
		Customizing:     asBool(m["customizing"]),
		Washing:         asBool(m["washing"]),
		ReadyToDispatch: asBool(m["ready_to_dispatch"]),
		SentToDelhi:     asBool(m["sent_to_delhi"]),
		LeftXportel:     asBool(m["left_xportel"]),
		ReachedCountry:  asBool(m["reached_country"]),
		Delivered:       asBool(m["delivered"]),
	}
}

func decodeCustomReminder(v any) CustomReminder {
	m := asObject(v)
	return CustomReminder{
		Days:     asInt(m["days"]),
		Time:     asString(m["time"]),
		Note:     asString(m["note"]),
		IsActive: asBool(m["is_active"]),
	}
}

// ToDocument encodes o in the current schema. Timestamps are stored as ISO-8601 text.
func ToDocument(o Order) docstore.Document {
	items := make([]any, 0, len(o.ProductItems))
	for _, it := range o.ProductItems {
		items = append(items, map[string]any{
			"name":     it.Name,
			"quantity": it.Quantity,
			"sku":      it.SKU,
		})
	}
	return docstore.Document{
		fieldID:             o.ID,
		fieldOrderNumber:    o.OrderNumber,
		fieldOrderDate:      o.OrderDate,
		fieldCustomerName:   o.CustomerName,
		fieldCustomerEmail:  o.CustomerEmail,
		fieldProductItems:   items,
		fieldAmount:         o.Amount,
		fieldNotes:          o.Notes,
		fieldTouchpoints:    touchpointsDocument(o.Touchpoints),
		fieldStages:         stagesDocument(o.Stages),
		fieldCustomReminder: customReminderDocument(o.CustomReminder),
		fieldCreatedAt:      FormatTimestamp(o.CreatedAt),
		fieldLastUpdated:    FormatTimestamp(o.LastUpdated),
		fieldHighPriority:   o.IsHighPriority,
	}
}

func touchpointsDocument(t Touchpoints) map[string]any {
	return map[string]any{
		"whatsapp": t.WhatsApp,
		"email":    t.Email,
		"crisp":    t.Crisp,
		"notes":    t.Notes,
	}
}

func stagesDocument(s Stages) map[string]any {
	return map[string]any{
		"in_embroidery":     s.InEmbroidery,
		"customizing":       s.Customizing,
		"washing":           s.Washing,
		"ready_to_dispatch": s.ReadyToDispatch,
		"sent_to_delhi":     s.SentToDelhi,
		"left_xportel":      s.LeftXportel,
		"reached_country":   s.ReachedCountry,
		"delivered":         s.Delivered,
	}
}

func customReminderDocument(r CustomReminder) map[string]any {
	return map[string]any{
		"days":      r.Days,
		"time":      r.Time,
		"note":      r.Note,
		"is_active": r.IsActive,
	}
}

// FormatTimestamp renders t as stored: RFC 3339 in UTC with nanoseconds.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampLayouts are tried in order; the naive forms come from writers that
// dropped the zone and are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses stored timestamp text; ok is false for unparseable input.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		ts, _ := ParseTimestamp(t)
		return ts
	default:
		return time.Time{}
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asFloat(v any) float64 {
	f, _ := toFloat(v)
	return f
}

func asInt(v any) int {
	f, _ := toFloat(v)
	return int(f)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asObject(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case docstore.Document:
		return m
	default:
		return nil
	}
}
