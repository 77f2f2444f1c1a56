package remote

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"phonestore/internal/model"

	"github.com/shopspring/decimal"
)

// wireID accepts identifiers sent either as strings or as numbers.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = wireID(n.String())
	return nil
}

// wireInt accepts counters sent as numbers or numeric strings. Anything else
// decodes to zero.
type wireInt int

func (n *wireInt) UnmarshalJSON(b []byte) error {
	var id wireID
	if err := id.UnmarshalJSON(b); err != nil {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(id)))
	if err != nil {
		f, ferr := strconv.ParseFloat(strings.TrimSpace(string(id)), 64)
		if ferr != nil {
			*n = 0
			return nil
		}
		v = int(f)
	}
	*n = wireInt(v)
	return nil
}

// wireTime accepts RFC 3339 timestamps and plain dates.
type wireTime time.Time

var wireTimeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

func (t *wireTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		*t = wireTime{}
		return nil
	}
	for _, layout := range wireTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = wireTime(parsed)
			return nil
		}
	}
	*t = wireTime{}
	return nil
}

// money renders an amount as a JSON number rounded to cents.
func money(d decimal.Decimal) json.Number {
	return json.Number(model.RoundMoney(d).StringFixed(model.MoneyPlaces))
}

// codec maps a domain enum to the backend's vocabulary.
type codec[T ~string] struct {
	toWire   map[T]string
	fromWire map[string]T
	fallback T
}

func newCodec[T ~string](fallback T, pairs map[T]string) codec[T] {
	c := codec[T]{toWire: pairs, fromWire: make(map[string]T, len(pairs)), fallback: fallback}
	for k, v := range pairs {
		c.fromWire[v] = k
		c.fromWire[string(k)] = k
	}
	return c
}

func (c codec[T]) wire(v T) string {
	if s, ok := c.toWire[v]; ok {
		return s
	}
	return string(v)
}

func (c codec[T]) domain(s string) T {
	if v, ok := c.fromWire[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return v
	}
	return c.fallback
}

var (
	cartStates = newCodec(model.CartOpen, map[model.CartState]string{
		model.CartOpen:      "ABIERTO",
		model.CartPurchased: "COMPRADO",
	})
	orderStates = newCodec(model.OrderIssued, map[model.PurchaseOrderState]string{
		model.OrderIssued:   "EMITIDA",
		model.OrderReceived: "RECIBIDA",
		model.OrderAnnulled: "ANULADA",
	})
	paymentMethods = newCodec(model.PaymentCash, map[model.PaymentMethod]string{
		model.PaymentCash:     "EFECTIVO",
		model.PaymentCard:     "TARJETA",
		model.PaymentTransfer: "TRANSFERENCIA",
	})
	movementKinds = newCodec(model.MovementAdjust, map[model.MovementKind]string{
		model.MovementIn:     "ENTRADA",
		model.MovementOut:    "SALIDA",
		model.MovementAdjust: "AJUSTE",
	})
)

type pageMetaDTO struct {
	TotalItems   wireInt `json:"totalItems"`
	ItemCount    wireInt `json:"itemCount"`
	ItemsPerPage wireInt `json:"itemsPerPage"`
	TotalPages   wireInt `json:"totalPages"`
	CurrentPage  wireInt `json:"currentPage"`
}

func (m pageMetaDTO) toModel() model.PageMeta {
	return model.PageMeta{
		TotalItems:   int(m.TotalItems),
		ItemCount:    int(m.ItemCount),
		ItemsPerPage: int(m.ItemsPerPage),
		TotalPages:   int(m.TotalPages),
		CurrentPage:  int(m.CurrentPage),
	}
}

type pageDTO[T any] struct {
	Items []T         `json:"items"`
	Meta  pageMetaDTO `json:"meta"`
}

func toPage[D any, T any](p pageDTO[D], conv func(D) T) *model.Page[T] {
	items := make([]T, 0, len(p.Items))
	for _, d := range p.Items {
		items = append(items, conv(d))
	}
	meta := p.Meta.toModel()
	meta.ItemCount = len(items)
	if meta.TotalPages < 1 {
		meta.TotalPages = 1
	}
	return &model.Page[T]{Items: items, Meta: meta}
}

type profileDTO struct {
	ID         wireID `json:"id_cliente"`
	UserID     wireID `json:"id_usuario"`
	NationalID string `json:"cedula"`
	Phone      string `json:"telefono"`
	Address    string `json:"direccion"`
}

func (d profileDTO) toModel() model.CustomerProfile {
	return model.CustomerProfile{
		ID:          string(d.ID),
		OwnerUserID: string(d.UserID),
		NationalID:  d.NationalID,
		Phone:       d.Phone,
		Address:     d.Address,
	}
}

type phoneDTO struct {
	ID           wireID          `json:"id_celular"`
	Code         string          `json:"codigo"`
	Brand        string          `json:"marca"`
	Model        string          `json:"modelo"`
	Color        string          `json:"color"`
	Storage      string          `json:"almacenamiento"`
	RAM          string          `json:"ram"`
	SalePrice    decimal.Decimal `json:"precio_venta"`
	PurchaseCost decimal.Decimal `json:"costo_compra"`
	Stock        int             `json:"stock_actual"`
	Status       string          `json:"estado"`
	Description  string          `json:"descripcion"`
	ImageURL     string          `json:"imagen_url"`
}

func (d phoneDTO) toModel() model.Phone {
	return model.Phone{
		ID:            string(d.ID),
		Code:          d.Code,
		Brand:         d.Brand,
		Model:         d.Model,
		Color:         d.Color,
		Storage:       d.Storage,
		RAM:           d.RAM,
		SalePrice:     d.SalePrice,
		PurchaseCost:  d.PurchaseCost,
		StockQuantity: d.Stock,
		Status:        d.Status,
		Description:   d.Description,
		ImageURL:      d.ImageURL,
	}
}

type phoneWrite struct {
	Code         string      `json:"codigo"`
	Brand        string      `json:"marca"`
	Model        string      `json:"modelo"`
	Color        string      `json:"color"`
	Storage      string      `json:"almacenamiento"`
	RAM          string      `json:"ram"`
	SalePrice    json.Number `json:"precio_venta"`
	PurchaseCost json.Number `json:"costo_compra"`
	Stock        *int        `json:"stock_actual,omitempty"`
	Status       string      `json:"estado"`
	Description  string      `json:"descripcion"`
}

type cartDTO struct {
	ID         wireID   `json:"id_carrito"`
	CustomerID wireID   `json:"id_cliente"`
	State      string   `json:"estado"`
	CreatedAt  wireTime `json:"fecha_creacion"`
}

func (d cartDTO) toModel() model.Cart {
	return model.Cart{
		ID:                string(d.ID),
		CustomerProfileID: string(d.CustomerID),
		State:             cartStates.domain(d.State),
		CreatedAt:         time.Time(d.CreatedAt),
	}
}

type cartLineDTO struct {
	ID        wireID          `json:"id_producto_carrito"`
	CartID    wireID          `json:"id_carrito"`
	PhoneID   wireID          `json:"id_celular"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
}

func (d cartLineDTO) toModel() model.CartLine {
	return model.CartLine{
		ID:        string(d.ID),
		CartID:    string(d.CartID),
		PhoneID:   string(d.PhoneID),
		Quantity:  d.Quantity,
		UnitPrice: d.UnitPrice,
	}
}

type cartLineWrite struct {
	CartID    string      `json:"id_carrito,omitempty"`
	PhoneID   string      `json:"id_celular,omitempty"`
	Quantity  int         `json:"cantidad"`
	UnitPrice json.Number `json:"precio_unitario"`
}

type invoiceDTO struct {
	ID            wireID          `json:"id_factura"`
	Number        string          `json:"numero_factura"`
	IssuedAt      wireTime        `json:"fecha_emision"`
	CustomerID    wireID          `json:"id_cliente"`
	UserID        wireID          `json:"id_usuario"`
	PaymentMethod string          `json:"metodo_pago"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"iva"`
	Total         decimal.Decimal `json:"total"`
}

func (d invoiceDTO) toModel() model.Invoice {
	return model.Invoice{
		ID:                string(d.ID),
		Number:            d.Number,
		IssuedAt:          time.Time(d.IssuedAt),
		CustomerProfileID: string(d.CustomerID),
		UserID:            string(d.UserID),
		PaymentMethod:     paymentMethods.domain(d.PaymentMethod),
		Subtotal:          d.Subtotal,
		Tax:               d.Tax,
		Total:             d.Total,
	}
}

type invoiceWrite struct {
	Number        string      `json:"numero_factura"`
	IssuedAt      string      `json:"fecha_emision"`
	CustomerID    string      `json:"id_cliente"`
	UserID        string      `json:"id_usuario"`
	PaymentMethod string      `json:"metodo_pago"`
	Subtotal      json.Number `json:"subtotal"`
	Tax           json.Number `json:"iva"`
	Total         json.Number `json:"total"`
}

type invoiceLineDTO struct {
	ID        wireID          `json:"id_detalle_factura"`
	InvoiceID wireID          `json:"id_factura"`
	PhoneID   wireID          `json:"id_celular"`
	Quantity  int             `json:"cantidad"`
	UnitPrice decimal.Decimal `json:"precio_unitario"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func (d invoiceLineDTO) toModel() model.InvoiceLine {
	return model.InvoiceLine{
		ID:        string(d.ID),
		InvoiceID: string(d.InvoiceID),
		PhoneID:   string(d.PhoneID),
		Quantity:  d.Quantity,
		UnitPrice: d.UnitPrice,
		Subtotal:  d.Subtotal,
	}
}

type invoiceLineWrite struct {
	InvoiceID string      `json:"id_factura"`
	PhoneID   string      `json:"id_celular"`
	Quantity  int         `json:"cantidad"`
	UnitPrice json.Number `json:"precio_unitario"`
	Subtotal  json.Number `json:"subtotal"`
}

type orderLineDTO struct {
	ID       wireID          `json:"id_detalle_oc"`
	PhoneID  wireID          `json:"id_celular"`
	Quantity int             `json:"cantidad"`
	UnitCost decimal.Decimal `json:"costo_unitario"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type orderDTO struct {
	ID         wireID          `json:"id_orden_compra"`
	SupplierID wireID          `json:"id_proveedor"`
	UserID     wireID          `json:"id_usuario"`
	IssuedAt   wireTime        `json:"fecha_emision"`
	State      string          `json:"estado"`
	Total      decimal.Decimal `json:"total"`
	Lines      []orderLineDTO  `json:"detalles"`
}

func (d orderDTO) toModel() model.PurchaseOrder {
	o := model.PurchaseOrder{
		ID:         string(d.ID),
		SupplierID: string(d.SupplierID),
		UserID:     string(d.UserID),
		IssuedAt:   time.Time(d.IssuedAt),
		State:      orderStates.domain(d.State),
		Total:      d.Total,
		Lines:      make([]model.PurchaseOrderLine, 0, len(d.Lines)),
	}
	for _, l := range d.Lines {
		subtotal := l.Subtotal
		if subtotal.IsZero() {
			subtotal = model.LineAmount(l.UnitCost, l.Quantity)
		}
		o.Lines = append(o.Lines, model.PurchaseOrderLine{
			ID:       string(l.ID),
			PhoneID:  string(l.PhoneID),
			Quantity: l.Quantity,
			UnitCost: l.UnitCost,
			Subtotal: subtotal,
		})
	}
	return o
}

type orderLineWrite struct {
	PhoneID  string      `json:"id_celular"`
	Quantity int         `json:"cantidad"`
	UnitCost json.Number `json:"costo_unitario"`
	Subtotal json.Number `json:"subtotal"`
}

type orderWrite struct {
	SupplierID string           `json:"id_proveedor"`
	UserID     string           `json:"id_usuario"`
	IssuedAt   string           `json:"fecha_emision"`
	State      string           `json:"estado"`
	Lines      []orderLineWrite `json:"detalles"`
}

type supplierDTO struct {
	ID      wireID `json:"_id"`
	Name    string `json:"nombre"`
	TaxID   string `json:"ruc"`
	Phone   string `json:"telefono"`
	Email   string `json:"correo"`
	Address string `json:"direccion"`
	Contact string `json:"contacto"`
}

func (d supplierDTO) toModel() model.Supplier {
	return model.Supplier{
		ID:      string(d.ID),
		Name:    d.Name,
		TaxID:   d.TaxID,
		Phone:   d.Phone,
		Email:   d.Email,
		Address: d.Address,
		Contact: d.Contact,
	}
}

type kardexDTO struct {
	ID          wireID          `json:"id_kardex"`
	PhoneID     wireID          `json:"id_celular"`
	MovedAt     wireTime        `json:"fecha_movimiento"`
	Kind        string          `json:"tipo_movimiento"`
	Origin      string          `json:"origen"`
	DocumentID  wireID          `json:"id_documento"`
	Quantity    int             `json:"cantidad"`
	UnitCost    decimal.Decimal `json:"costo_unitario"`
	StockBefore int             `json:"stock_anterior"`
	StockAfter  int             `json:"stock_nuevo"`
}

func (d kardexDTO) toModel() model.StockMovement {
	return model.StockMovement{
		ID:          string(d.ID),
		PhoneID:     string(d.PhoneID),
		MovedAt:     time.Time(d.MovedAt),
		Kind:        movementKinds.domain(d.Kind),
		Origin:      d.Origin,
		DocumentID:  string(d.DocumentID),
		Quantity:    d.Quantity,
		UnitCost:    d.UnitCost,
		StockBefore: d.StockBefore,
		StockAfter:  d.StockAfter,
	}
}
