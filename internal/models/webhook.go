package models

// WebhookPayload is the loosely-shaped booking event posted by the
// scheduling platform. Workflows differ in which keys they populate, so the
// payload is kept as a generic object and read through accessors.
type WebhookPayload map[string]any

// UnmarshalJSON implements json.Unmarshaler.
func (p *WebhookPayload) UnmarshalJSON(b []byte) error {
	obj, err := decodeObject(b)
	if err != nil {
		return err
	}
	*p = obj
	return nil
}

// Appointment returns the appointment object: "appointment", then
// "booking", then the payload root.
func (p WebhookPayload) Appointment() map[string]any {
	for _, k := range []string{"appointment", "booking"} {
		if m, ok := p[k].(map[string]any); ok {
			return m
		}
	}
	return p
}

// Contact returns the contact object: "contact", "customer" or "client",
// or an empty object when none is present.
func (p WebhookPayload) Contact() Contact {
	for _, k := range []string{"contact", "customer", "client"} {
		if m, ok := p[k].(map[string]any); ok {
			return Contact(m)
		}
	}
	return Contact{}
}

// AppointmentID tolerates the alternate id spellings used across workflows.
// The result is keyed the same way as a registration.
func (p WebhookPayload) AppointmentID() string {
	appt := p.Appointment()
	for _, k := range []string{"id", "bookingId", "appointment_id", "appointmentId"} {
		if id := NormalizeID(appt[k]); id != "" {
			return id
		}
	}
	return ""
}

func (p WebhookPayload) CalendarName() string {
	return stringField(p.Appointment(), "calendarName", "calendar_name")
}

func (p WebhookPayload) StartTime() string {
	return stringField(p.Appointment(), "startTime", "start")
}

// Contact is the person attached to a booking.
type Contact map[string]any

func (c Contact) Email() string { return stringField(c, "email") }
func (c Contact) Phone() string { return stringField(c, "phone") }
func (c Contact) FirstName() string { return stringField(c, "firstName", "first_name") }
func (c Contact) LastName() string { return stringField(c, "lastName", "last_name") }
