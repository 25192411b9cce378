package models

// BookingRecord is one raw row of a bulk booking batch, fields as supplied.
type BookingRecord struct {
	Email            string `json:"email"`
	Session          string `json:"session"`
	Status           string `json:"status"`
	DiscountCode     string `json:"discountcode"`
	NotificationType string `json:"notificationtype"`
}

// RowError addresses a validation failure to one or more data rows. Rows is
// a comma-joined list when a single error spans several rows.
type RowError struct {
	Rows    string `json:"row"`
	Message string `json:"message"`
}

// BookingHeaders is the fixed column order of a bulk booking CSV.
func BookingHeaders() []string {
	return []string{
		"email",
		"session",
		"status",
		"discountcode",
		"notificationtype",
	}
}
