package templates

// QRGuest is one invitation on the QR pages.
type QRGuest struct {
	ID    int64
	Name  string
	Phone string
	// Link is the absolute RSVP address the code encodes.
	Link string
}
