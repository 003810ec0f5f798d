package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Canonical holds the normalized UTM fields captured by the browser.
type Canonical struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
	Term     string `json:"utm_term,omitempty"`
	Content  string `json:"utm_content,omitempty"`
}

// MappingEntry is the attribution data stored per appointment id between
// registration and the matching webhook.
type MappingEntry struct {
	EventID    string
	ClientID   string
	UTM        map[string]any
	Canonical  *Canonical
	ReceivedAt time.Time
}

// ClickID resolves utm.last_touch.utm.<key>, returning "" when any step of
// the path is missing or not a scalar.
func (e MappingEntry) ClickID(key string) string {
	lastTouch, ok := e.UTM["last_touch"].(map[string]any)
	if !ok {
		return ""
	}
	utm, ok := lastTouch["utm"].(map[string]any)
	if !ok {
		return ""
	}
	return scalarString(utm[key])
}

// RegisterRequest is the POST /register_event payload sent by the browser.
//
// Only the two ids are required. Optional fields with an unexpected shape
// are dropped rather than failing the request.
type RegisterRequest struct {
	AppointmentID string
	EventID       string
	ClientID      string
	UTM           map[string]any
	Canonical     *Canonical
	TS            any
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RegisterRequest) UnmarshalJSON(b []byte) error {
	obj, err := decodeObject(b)
	if err != nil {
		return err
	}

	*r = RegisterRequest{
		AppointmentID: NormalizeID(obj["appointment_id"]),
		EventID:       NormalizeID(obj["event_id"]),
		ClientID:      NormalizeID(obj["client_id"]),
		TS:            obj["ts"],
	}
	if utm, ok := obj["utm"].(map[string]any); ok {
		r.UTM = utm
	}
	if c, ok := obj["canonical"].(map[string]any); ok {
		r.Canonical = &Canonical{
			Source:   scalarString(c["utm_source"]),
			Medium:   scalarString(c["utm_medium"]),
			Campaign: scalarString(c["utm_campaign"]),
			Term:     scalarString(c["utm_term"]),
			Content:  scalarString(c["utm_content"]),
		}
	}
	return nil
}

// NormalizeID turns a decoded JSON id into the mapping key. Strings are
// trimmed; numbers keep their literal text. Registration and webhook
// lookups must both key through here.
func NormalizeID(v any) string {
	return strings.TrimSpace(scalarString(v))
}

// scalarString returns the string form of a JSON string or number, and ""
// for anything else.
func scalarString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// stringField returns the first non-empty scalar found under keys in obj.
func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := scalarString(obj[k]); s != "" {
			return s
		}
	}
	return ""
}

// decodeObject decodes a JSON object keeping numbers as json.Number, so
// large or exponent-form ids survive unchanged. A literal null yields nil.
func decodeObject(b []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	return obj, nil
}
