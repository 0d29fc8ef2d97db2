package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Category identifies one of the product collections served by the
// PowerEV catalog API.
type Category string

const (
	CategoryAdapter Category = "adapter"
	CategoryBox     Category = "box"
	CategoryBreaker Category = "breaker"
	CategoryCable   Category = "cable"
	CategoryCharger Category = "charger"
	CategoryOther   Category = "other"
	CategoryPlug    Category = "plug"
	CategoryStation Category = "station"
	CategoryWire    Category = "wire"
)

// Categories returns every product category in collection order.
func Categories() []Category {
	return []Category{
		CategoryAdapter, CategoryBox, CategoryBreaker,
		CategoryCable, CategoryCharger, CategoryOther,
		CategoryPlug, CategoryStation, CategoryWire,
	}
}

// Collection returns the REST collection name for the category.
func (c Category) Collection() string {
	switch c {
	case CategoryBox:
		return "boxes"
	default:
		return string(c) + "s"
	}
}

// Label returns the Arabic display name used on the dashboard.
func (c Category) Label() string {
	switch c {
	case CategoryAdapter:
		return "محولات"
	case CategoryBox:
		return "صناديق"
	case CategoryBreaker:
		return "قواطع"
	case CategoryCable:
		return "كابلات"
	case CategoryCharger:
		return "شواحن"
	case CategoryOther:
		return "منتجات أخرى"
	case CategoryPlug:
		return "قوابس"
	case CategoryStation:
		return "محطات"
	case CategoryWire:
		return "أسلاك"
	}
	return string(c)
}

// ParseCategory resolves a category from either its singular name or its
// collection name.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if s == string(c) || s == c.Collection() {
			return c, true
		}
	}
	return "", false
}

// Offer is the single discount representation. The legacy API expressed
// discounts as an absent field, a bare percentage number, or an
// {enabled, discountPercentage} object; all three decode into this shape
// and it always encodes as the structured object.
type Offer struct {
	Percentage float64
}

// Enabled reports whether the offer takes effect. A zero percentage is
// treated as no offer regardless of how the wire value spelled it.
func (o Offer) Enabled() bool { return o.Percentage > 0 }

func (o Offer) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Enabled            bool    `json:"enabled"`
		DiscountPercentage float64 `json:"discountPercentage"`
	}{o.Enabled(), o.Percentage})
}

func (o *Offer) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		o.Percentage = 0
		return nil
	}
	if trimmed[0] != '{' {
		return json.Unmarshal(data, &o.Percentage)
	}
	var obj struct {
		Enabled            *bool   `json:"enabled"`
		DiscountPercentage float64 `json:"discountPercentage"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Enabled != nil && !*obj.Enabled {
		o.Percentage = 0
		return nil
	}
	o.Percentage = obj.DiscountPercentage
	return nil
}

// Stock labels surfaced to the UI.
const (
	StockIn  = "in stock"
	StockLow = "low stock"
	StockOut = "out of stock"
)

// Availability is the single stock representation. The legacy API mixed a
// numeric stock, a numeric quantity, a two-valued quantity string and a
// stockStatus label; everything collapses into a count here.
type Availability struct {
	Count int
}

// InStock reports whether at least one unit is purchasable.
func (a Availability) InStock() bool { return a.Count > 0 }

// Label maps the count to a stock label. lowMax is the inclusive upper
// bound of the low-stock band; zero disables the band.
func (a Availability) Label(lowMax int) string {
	switch {
	case a.Count <= 0:
		return StockOut
	case lowMax > 0 && a.Count <= lowMax:
		return StockLow
	default:
		return StockIn
	}
}

// availabilityFromWire reconciles the legacy stock fields. A label with no
// count maps to 1/0 so the in/out signal survives the round trip.
func availabilityFromWire(stock *int, quantity json.RawMessage, stockStatus string) Availability {
	if stock != nil {
		return Availability{Count: *stock}
	}
	if len(quantity) > 0 {
		var n int
		if err := json.Unmarshal(quantity, &n); err == nil {
			return Availability{Count: n}
		}
		var s string
		if err := json.Unmarshal(quantity, &s); err == nil {
			if strings.EqualFold(strings.TrimSpace(s), StockIn) {
				return Availability{Count: 1}
			}
			return Availability{Count: 0}
		}
	}
	if strings.EqualFold(strings.TrimSpace(stockStatus), StockIn) {
		return Availability{Count: 1}
	}
	return Availability{Count: 0}
}

// ImageRef is a reference to a product image: either one already persisted
// by the backend (a URL or data-URI string, kept verbatim) or bytes chosen
// locally and not yet uploaded.
type ImageRef struct {
	Pending bool   `json:"pending"`
	URL     string `json:"url,omitempty"`
	Alt     string `json:"alt,omitempty"`
	MIME    string `json:"mime,omitempty"`
	Data    []byte `json:"-"`
}

// RemoteImage wraps an already-persisted image string.
func RemoteImage(url string) ImageRef { return ImageRef{URL: url} }

// PendingImage wraps locally selected bytes. The MIME type is sniffed when
// empty.
func PendingImage(mime string, data []byte) ImageRef {
	if mime == "" {
		mime = http.DetectContentType(data)
	}
	return ImageRef{Pending: true, MIME: mime, Data: data}
}

// String serializes the reference into the flat form the backend expects:
// remote refs pass through verbatim, pending refs become data-URIs.
func (r ImageRef) String() string {
	if !r.Pending {
		return r.URL
	}
	return fmt.Sprintf("data:%s;base64,%s", r.MIME, base64.StdEncoding.EncodeToString(r.Data))
}

// ImageList is an ordered image sequence. It decodes the mixed wire forms
// (plain strings, data-URIs, {url, alt} objects) and always encodes as a
// flat string array. An empty list encodes as [], never null, so the
// backend can tell "explicitly no images" apart from an omitted field.
type ImageList []ImageRef

func (l ImageList) Strings() []string {
	out := make([]string, 0, len(l))
	for _, r := range l {
		out = append(out, r.String())
	}
	return out
}

func (l ImageList) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Strings())
}

func (l *ImageList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	refs := make(ImageList, 0, len(raws))
	for _, raw := range raws {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			refs = append(refs, RemoteImage(s))
			continue
		}
		var obj struct {
			URL string `json:"url"`
			Alt string `json:"alt"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return fmt.Errorf("unsupported image entry: %s", string(raw))
		}
		refs = append(refs, ImageRef{URL: obj.URL, Alt: obj.Alt})
	}
	*l = refs
	return nil
}

// Product is the unified shape shared by all nine catalog categories.
// Category-specific technical attributes are optional; absent values stay
// nil and are omitted on the wire.
type Product struct {
	ID           string       `json:"id"`
	Category     Category     `json:"-"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Price        float64      `json:"price"`
	Brand        string       `json:"brand,omitempty"`
	Type         string       `json:"type,omitempty"`
	Offer        Offer        `json:"offer"`
	Availability Availability `json:"-"`
	Images       ImageList    `json:"images"`

	Voltage       *float64 `json:"voltage,omitempty"`
	Current       *float64 `json:"current,omitempty"`
	Ampere        *float64 `json:"ampere,omitempty"`
	Efficiency    *float64 `json:"efficiency,omitempty"`
	CableLength   *float64 `json:"cableLength,omitempty"`
	WireGauge     string   `json:"wireGauge,omitempty"`
	ConnectorType string   `json:"connectorType,omitempty"`
	Phase         string   `json:"phase,omitempty"`
	Size          string   `json:"size,omitempty"`
}

// EntityID implements the entity-control contract.
func (p Product) EntityID() string { return p.ID }

// EffectivePrice applies the offer percentage.
func (p Product) EffectivePrice() float64 {
	if !p.Offer.Enabled() {
		return p.Price
	}
	return p.Price * (1 - p.Offer.Percentage/100)
}

type productWire struct {
	ID          string    `json:"id,omitempty"`
	MongoID     string    `json:"_id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Brand       string    `json:"brand,omitempty"`
	Type        string    `json:"type,omitempty"`
	Offer       Offer     `json:"offer"`
	Images      ImageList `json:"images"`

	Stock       *int            `json:"stock,omitempty"`
	Quantity    json.RawMessage `json:"quantity,omitempty"`
	StockStatus string          `json:"stockStatus,omitempty"`

	Voltage       *float64 `json:"voltage,omitempty"`
	Current       *float64 `json:"current,omitempty"`
	Ampere        *float64 `json:"ampere,omitempty"`
	Efficiency    *float64 `json:"efficiency,omitempty"`
	CableLength   *float64 `json:"cableLength,omitempty"`
	WireGauge     string   `json:"wireGauge,omitempty"`
	ConnectorType string   `json:"connectorType,omitempty"`
	Phase         string   `json:"phase,omitempty"`
	Size          string   `json:"size,omitempty"`
}

func (p *Product) UnmarshalJSON(data []byte) error {
	var w productWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id := w.ID
	if id == "" {
		id = w.MongoID
	}
	*p = Product{
		ID:            id,
		Name:          w.Name,
		Description:   w.Description,
		Price:         w.Price,
		Brand:         w.Brand,
		Type:          w.Type,
		Offer:         w.Offer,
		Availability:  availabilityFromWire(w.Stock, w.Quantity, w.StockStatus),
		Images:        w.Images,
		Voltage:       w.Voltage,
		Current:       w.Current,
		Ampere:        w.Ampere,
		Efficiency:    w.Efficiency,
		CableLength:   w.CableLength,
		WireGauge:     w.WireGauge,
		ConnectorType: w.ConnectorType,
		Phase:         w.Phase,
		Size:          w.Size,
	}
	return nil
}

func (p Product) MarshalJSON() ([]byte, error) {
	qty, err := json.Marshal(p.Availability.Count)
	if err != nil {
		return nil, err
	}
	w := productWire{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		Brand:         p.Brand,
		Type:          p.Type,
		Offer:         p.Offer,
		Images:        p.Images,
		Quantity:      qty,
		StockStatus:   p.Availability.Label(0),
		Voltage:       p.Voltage,
		Current:       p.Current,
		Ampere:        p.Ampere,
		Efficiency:    p.Efficiency,
		CableLength:   p.CableLength,
		WireGauge:     p.WireGauge,
		ConnectorType: p.ConnectorType,
		Phase:         p.Phase,
		Size:          p.Size,
	}
	if w.Images == nil {
		w.Images = ImageList{}
	}
	return json.Marshal(w)
}
