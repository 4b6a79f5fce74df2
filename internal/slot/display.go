package slot

// Icon names understood by the clients.
const (
	IconCheckCircle = "CheckCircle"
	IconXCircle     = "XCircle"
)

// Display is the presentation metadata for a slot state.
type Display struct {
	Icon         string `json:"icon"`
	IconColor    string `json:"iconColor"`
	Text         string `json:"text"`
	TextColor    string `json:"textColor"`
	BgColor      string `json:"bgColor"`
	HoverBgColor string `json:"hoverBgColor"`
}

var (
	displayAvailable = Display{
		Icon:         IconCheckCircle,
		IconColor:    "text-green-600",
		Text:         "Available",
		TextColor:    "text-green-700",
		BgColor:      "bg-green-50",
		HoverBgColor: "hover:bg-green-100",
	}
	displayBooked = Display{
		Icon:         IconXCircle,
		IconColor:    "text-blue-600",
		Text:         "Booked",
		TextColor:    "text-blue-700",
		BgColor:      "bg-blue-50",
		HoverBgColor: "hover:bg-blue-100",
	}
	displayUnavailable = Display{
		Icon:         IconXCircle,
		IconColor:    "text-red-600",
		Text:         "Unavailable",
		TextColor:    "text-red-700",
		BgColor:      "bg-red-50",
		HoverBgColor: "hover:bg-red-100",
	}
)

// Resolve maps a slot to its display metadata: available, then booked, then unavailable.
func Resolve(s Slot) Display {
	switch {
	case s.Available:
		return displayAvailable
	case s.Booked:
		return displayBooked
	default:
		return displayUnavailable
	}
}
