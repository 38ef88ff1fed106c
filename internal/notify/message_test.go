package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/antojitos/comanda/internal/model"
)

func TestFormatOrderMessage(t *testing.T) {
	msg := FormatOrderMessage(OrderDetails{
		ClientName:    "María López",
		ClientEmail:   "maria@example.com",
		ClientPhone:   "+34600111222",
		DeliveryDate:  "2025-06-14",
		DeliveryTime:  "13:30:00",
		PaymentMethod: "efectivo",
		CartItems: []model.CartItem{
			{Name: "Empanada", ProductSize: "mediana", Quantity: 2, Price: 3.5, Complements: "salsa verde, queso extra"},
			{Name: "Tamal", ProductSize: "grande", Quantity: 1, Price: 4.0},
		},
	})

	for _, want := range []string{
		"🧾 *Nuevo pedido* 🧾",
		"— Nombre: María López",
		"— Teléfono: +34600111222",
		"— Hora de recogida: 13:30", // seconds stripped
		"• 2 x Empanada (mediana)",
		"Complementos:",
		"    - salsa verde",
		"    - queso extra",
		"Precio unitario: $3.50",
		"Subtotal: $7.00",
		"• 1 x Tamal (grande)",
		"💰 *Total: $11.00*",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q\nfull message:\n%s", want, msg)
		}
	}

	if strings.Contains(msg, "13:30:00") {
		t.Error("delivery time should not keep the seconds component")
	}
}

func TestFormatOrderMessageNoComplements(t *testing.T) {
	msg := FormatOrderMessage(OrderDetails{
		ClientName: "Ana",
		CartItems: []model.CartItem{
			{Name: "Arepa", ProductSize: "normal", Quantity: 1, Price: 2.0, Complements: "  ,  "},
		},
	})

	if strings.Contains(msg, "Complementos:") {
		t.Error("blank complements should not render a Complementos block")
	}
}

func TestFormatOrderMessageEmptyCart(t *testing.T) {
	msg := FormatOrderMessage(OrderDetails{ClientName: "Ana"})

	if !strings.Contains(msg, "ningún producto en el carrito") {
		t.Errorf("empty cart placeholder missing:\n%s", msg)
	}
	if !strings.Contains(msg, "*Total: $0.00*") {
		t.Errorf("empty cart should total zero:\n%s", msg)
	}
}

func TestRebuildTime(t *testing.T) {
	tests := []struct{ in, want string }{
		{"13:30:00", "13:30"},
		{"13:30", "13:30"},
		{"9:05:59", "9:05"},
		{"13", "13"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := RebuildTime(tt.in); got != tt.want {
			t.Errorf("RebuildTime(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTwilioSenderSend(t *testing.T) {
	var gotPath, gotBody, gotFrom, gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotBody = r.PostFormValue("Body")
		gotFrom = r.PostFormValue("From")
		gotTo = r.PostFormValue("To")
		if _, _, ok := r.BasicAuth(); !ok {
			t.Error("expected basic auth on the request")
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sender := NewTwilioSender(TwilioConfig{
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "+14155550100",
		To:         "+34600111222",
		BaseURL:    srv.URL,
	})

	if err := sender.Send(context.Background(), "hola"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/2010-04-01/Accounts/AC123/Messages.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody != "hola" {
		t.Errorf("body = %q", gotBody)
	}
	if gotFrom != "whatsapp:+14155550100" || gotTo != "whatsapp:+34600111222" {
		t.Errorf("from = %q, to = %q; want whatsapp-prefixed numbers", gotFrom, gotTo)
	}
}

func TestTwilioSenderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid number"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	sender := NewTwilioSender(TwilioConfig{AccountSID: "AC123", BaseURL: srv.URL})

	if err := sender.Send(context.Background(), "hola"); !errors.Is(err, ErrSendFailed) {
		t.Errorf("non-2xx response: err = %v, want ErrSendFailed", err)
	}
	if err := sender.Send(context.Background(), "   "); !errors.Is(err, ErrSendFailed) {
		t.Errorf("blank message: err = %v, want ErrSendFailed", err)
	}
}
