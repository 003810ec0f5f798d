package models

const (
	// EventNameAppointment is the conversion event name sent for bookings.
	EventNameAppointment = "calendar_appointment"
	// ActionSourceWebsite is the Conversions API action_source value.
	ActionSourceWebsite = "website"
)

// UserData carries hashed identifiers plus raw network hints.
// Empty fields are omitted so absent contact data is never hashed.
type UserData struct {
	Email           string `json:"em,omitempty"`
	Phone           string `json:"ph,omitempty"`
	FirstName       string `json:"fn,omitempty"`
	LastName        string `json:"ln,omitempty"`
	ClientIPAddress string `json:"client_ip_address,omitempty"`
	ClientUserAgent string `json:"client_user_agent,omitempty"`
}

// CustomData is always sent in full; missing values are "".
type CustomData struct {
	AppointmentID    string `json:"appointment_id"`
	CalendarName     string `json:"calendar_name"`
	AppointmentStart string `json:"appointment_start"`
	UTMSource        string `json:"utm_source"`
	UTMMedium        string `json:"utm_medium"`
	UTMCampaign      string `json:"utm_campaign"`
	UTMTerm          string `json:"utm_term"`
	UTMContent       string `json:"utm_content"`
	GCLID            string `json:"gclid"`
	FBCLID           string `json:"fbclid"`
}

// ConversionEvent is one entry of a Conversions API batch.
type ConversionEvent struct {
	EventName    string     `json:"event_name"`
	EventTime    int64      `json:"event_time"`
	EventID      string     `json:"event_id"`
	UserData     UserData   `json:"user_data"`
	CustomData   CustomData `json:"custom_data"`
	ActionSource string     `json:"action_source"`
}

// ConversionBatch is the Conversions API request body.
type ConversionBatch struct {
	Data []ConversionEvent `json:"data"`
}

// ForwardEvent is the payload sent to the optional server-side tagging
// endpoint. ClientID is null when no browser client id was registered.
type ForwardEvent struct {
	EventName  string     `json:"event_name"`
	EventTime  int64      `json:"event_time"`
	EventID    string     `json:"event_id"`
	ClientID   *string    `json:"client_id"`
	UserData   UserData   `json:"user_data"`
	CustomData CustomData `json:"custom_data"`
}

// WebhookResponse is returned by POST /ghl-webhook on success.
type WebhookResponse struct {
	OK         bool   `json:"ok"`
	MetaStatus int    `json:"metaStatus"`
	MetaResult string `json:"metaResult"`
}
