package models

import "testing"

func TestCanonicalPayment(t *testing.T) {
	order := &Order{}
	if order.CanonicalPayment() != nil {
		t.Fatalf("expected nil for an order without payments")
	}

	order.Payments = []Payment{
		{ID: 1, Method: PaymentMethodPix},
		{ID: 2, Method: PaymentMethodCreditCard},
	}
	canonical := order.CanonicalPayment()
	if canonical == nil || canonical.ID != 1 {
		t.Fatalf("expected the first payment to be canonical, got %+v", canonical)
	}
}

func TestSubscriptionIsEntitling(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{status: SubscriptionStatusActive, want: true},
		{status: SubscriptionStatusPaused, want: false},
		{status: SubscriptionStatusCanceled, want: false},
	}

	for _, tt := range tests {
		s := &Subscription{Status: tt.status}
		if got := s.IsEntitling(); got != tt.want {
			t.Fatalf("IsEntitling(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
