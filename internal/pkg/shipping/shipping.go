package shipping

import (
	"errors"
	"strings"
	"time"
)

// Option is a carrier/price quote the user can pick at checkout.
type Option struct {
	Carrier      string  `json:"carrier"`
	Service      string  `json:"service"`
	ServiceCode  string  `json:"service_code"`
	Price        float64 `json:"price"`
	DeliveryDays int     `json:"delivery_days"`
}

// OrderShippingData is the immutable snapshot persisted on an order.
type OrderShippingData struct {
	Carrier        string
	Service        string
	ServiceCode    string
	Price          float64
	DeliveryDays   int
	DestinationZip string
	QuotedAt       time.Time
}

// region groups Brazilian zip prefixes by first digit; prices and delivery
// estimates vary per region.
type region struct {
	pacPrice   float64
	sedexPrice float64
	pacDays    int
	sedexDays  int
}

var regions = map[byte]region{
	'0': {pacPrice: 14.90, sedexPrice: 24.90, pacDays: 5, sedexDays: 2},  // SP capital/metro
	'1': {pacPrice: 16.90, sedexPrice: 27.90, pacDays: 6, sedexDays: 2},  // SP interior
	'2': {pacPrice: 18.90, sedexPrice: 29.90, pacDays: 7, sedexDays: 3},  // RJ/ES
	'3': {pacPrice: 19.90, sedexPrice: 31.90, pacDays: 7, sedexDays: 3},  // MG
	'4': {pacPrice: 22.90, sedexPrice: 36.90, pacDays: 8, sedexDays: 4},  // BA/SE
	'5': {pacPrice: 24.90, sedexPrice: 39.90, pacDays: 9, sedexDays: 4},  // NE
	'6': {pacPrice: 27.90, sedexPrice: 44.90, pacDays: 10, sedexDays: 5}, // CE/N
	'7': {pacPrice: 22.90, sedexPrice: 36.90, pacDays: 8, sedexDays: 4},  // DF/GO/TO
	'8': {pacPrice: 19.90, sedexPrice: 31.90, pacDays: 7, sedexDays: 3},  // PR/SC
	'9': {pacPrice: 20.90, sedexPrice: 33.90, pacDays: 7, sedexDays: 3},  // RS
}

// QuoteOptions returns the carrier options available for a destination zip.
func QuoteOptions(zip string) ([]Option, error) {
	z := normalizeZip(zip)
	if len(z) != 8 {
		return nil, errors.New("invalid zip code")
	}

	r, ok := regions[z[0]]
	if !ok {
		return nil, errors.New("unsupported destination")
	}

	return []Option{
		{Carrier: "Correios", Service: "PAC", ServiceCode: "04510", Price: r.pacPrice, DeliveryDays: r.pacDays},
		{Carrier: "Correios", Service: "SEDEX", ServiceCode: "04014", Price: r.sedexPrice, DeliveryDays: r.sedexDays},
	}, nil
}

// BuildOrderShippingData produces the snapshot persisted on the order from
// the user's selected option.
func BuildOrderShippingData(opt Option, destinationZip string) OrderShippingData {
	return OrderShippingData{
		Carrier:        opt.Carrier,
		Service:        opt.Service,
		ServiceCode:    opt.ServiceCode,
		Price:          opt.Price,
		DeliveryDays:   opt.DeliveryDays,
		DestinationZip: normalizeZip(destinationZip),
		QuotedAt:       time.Now(),
	}
}

func normalizeZip(zip string) string {
	return strings.ReplaceAll(strings.TrimSpace(zip), "-", "")
}
