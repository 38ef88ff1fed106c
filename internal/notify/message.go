package notify

import (
	"fmt"
	"strings"

	"github.com/antojitos/comanda/internal/model"
)

// OrderDetails is everything needed to format the staff notification for an
// incoming order.
type OrderDetails struct {
	ClientName    string
	ClientEmail   string
	ClientPhone   string
	DeliveryDate  string
	DeliveryTime  string
	PaymentMethod string
	CartItems     []model.CartItem
}

// FormatOrderMessage renders the WhatsApp summary for a new order: client
// block, per-item lines with companions, unit prices and subtotals, and the
// grand total. The same text is persisted on the order row.
func FormatOrderMessage(d OrderDetails) string {
	var items []string
	var total float64
	for _, item := range d.CartItems {
		lineTotal := item.Price * float64(item.Quantity)
		total += lineTotal

		complements := ""
		if item.Complements != "" {
			var list []string
			for _, c := range strings.Split(item.Complements, ",") {
				if c = strings.TrimSpace(c); c != "" {
					list = append(list, "    - "+c)
				}
			}
			if len(list) > 0 {
				complements = "\n    Complementos:\n" + strings.Join(list, "\n")
			}
		}

		items = append(items, fmt.Sprintf(
			"• %d x %s (%s)%s\n    Precio unitario: $%.2f\n    Subtotal: $%.2f",
			item.Quantity, item.Name, item.ProductSize, complements, item.Price, lineTotal))
	}

	itemsSummary := strings.Join(items, "\n\n")
	if itemsSummary == "" {
		itemsSummary = "— (ningún producto en el carrito)"
	}

	return fmt.Sprintf(`
    🧾 *Nuevo pedido* 🧾
    👤 *Datos del cliente*
— Nombre: %s
— Email: %s
— Teléfono: %s
— Fecha de recogida: %s
— Hora de recogida: %s
— Método de pago: %s

    🛒 *Productos solicitados*
%s

    💰 *Total: $%.2f*
`, d.ClientName, d.ClientEmail, d.ClientPhone, d.DeliveryDate, RebuildTime(d.DeliveryTime), d.PaymentMethod, itemsSummary, total)
}

// RebuildTime normalizes a delivery time to HH:MM for display, dropping a
// trailing seconds component if the client sent one.
func RebuildTime(t string) string {
	parts := strings.Split(t, ":")
	if len(parts) >= 2 {
		return parts[0] + ":" + parts[1]
	}
	return t
}
