// Package presentation drives the notification bell and toasts from bus
// events. It holds view state only; the notification store stays
// authoritative.
package presentation

import "github.com/aliskhannn/debt-notifier/internal/model"

// Style is the visual treatment of a notification type.
type Style struct {
	Icon  string
	Color string // hex
	Label string
}

var themes = map[model.Type]Style{
	model.TypeInfo:            {Icon: "ℹ", Color: "#3B82F6", Label: "Info"},
	model.TypeSuccess:         {Icon: "✔", Color: "#10B981", Label: "Success"},
	model.TypeWarning:         {Icon: "⚠", Color: "#F59E0B", Label: "Warning"},
	model.TypeError:           {Icon: "✖", Color: "#EF4444", Label: "Error"},
	model.TypeReminder:        {Icon: "⏰", Color: "#8B5CF6", Label: "Reminder"},
	model.TypePaymentDue:      {Icon: "💳", Color: "#F97316", Label: "Payment due"},
	model.TypePaymentReceived: {Icon: "💰", Color: "#22C55E", Label: "Payment received"},
	model.TypeCustomerCreated: {Icon: "👤", Color: "#06B6D4", Label: "New customer"},
	model.TypeDueOverdue:      {Icon: "⏳", Color: "#DC2626", Label: "Overdue"},
	model.TypeSystem:          {Icon: "⚙", Color: "#6B7280", Label: "System"},
}

// Theme returns the style of t; unknown types look like info.
func Theme(t model.Type) Style {
	if s, ok := themes[t]; ok {
		return s
	}
	return themes[model.TypeInfo]
}
