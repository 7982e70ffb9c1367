package shipping

import "testing"

func TestQuoteOptions(t *testing.T) {
	options, err := QuoteOptions("01001-000")
	if err != nil {
		t.Fatalf("QuoteOptions returned error: %v", err)
	}
	if len(options) != 2 {
		t.Fatalf("expected 2 options, got %d", len(options))
	}

	pac, sedex := options[0], options[1]
	if pac.Service != "PAC" || sedex.Service != "SEDEX" {
		t.Fatalf("unexpected services: %s, %s", pac.Service, sedex.Service)
	}
	if pac.Price >= sedex.Price {
		t.Fatalf("expected PAC (%v) cheaper than SEDEX (%v)", pac.Price, sedex.Price)
	}
	if pac.DeliveryDays <= sedex.DeliveryDays {
		t.Fatalf("expected PAC (%d days) slower than SEDEX (%d days)", pac.DeliveryDays, sedex.DeliveryDays)
	}
}

func TestQuoteOptions_RegionPricing(t *testing.T) {
	sp, err := QuoteOptions("01001000")
	if err != nil {
		t.Fatalf("QuoteOptions(SP) returned error: %v", err)
	}
	ne, err := QuoteOptions("50000000")
	if err != nil {
		t.Fatalf("QuoteOptions(NE) returned error: %v", err)
	}
	if sp[0].Price >= ne[0].Price {
		t.Fatalf("expected SP PAC (%v) cheaper than NE PAC (%v)", sp[0].Price, ne[0].Price)
	}
}

func TestQuoteOptions_InvalidZip(t *testing.T) {
	for _, zip := range []string{"", "123", "abcdefgh", "123456789012"} {
		if _, err := QuoteOptions(zip); err == nil {
			t.Fatalf("expected error for zip %q", zip)
		}
	}
}

func TestBuildOrderShippingData(t *testing.T) {
	opt := Option{Carrier: "Correios", Service: "PAC", ServiceCode: "04510", Price: 14.90, DeliveryDays: 5}
	data := BuildOrderShippingData(opt, "01001-000")

	if data.Carrier != "Correios" || data.Service != "PAC" {
		t.Fatalf("unexpected snapshot: %+v", data)
	}
	if data.DestinationZip != "01001000" {
		t.Fatalf("expected normalized zip, got %q", data.DestinationZip)
	}
	if data.QuotedAt.IsZero() {
		t.Fatalf("expected QuotedAt to be set")
	}
}
