package domain

import "time"

// Message is the envelope written to websocket clients.
type Message struct {
	Topic      string            `json:"topic"`
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// MetadataValue returns the trimmed metadata value for key, or "".
func (m *Message) MetadataValue(key string) string {
	if m == nil || m.Metadata == nil {
		return ""
	}
	return trim(m.Metadata[key])
}

// SetMetadata stores value under key, skipping empty values.
func (m *Message) SetMetadata(key, value string) {
	value = trim(value)
	if value == "" {
		return
	}
	if m.Metadata == nil {
		m.Metadata = make(map[string]string)
	}
	m.Metadata[key] = value
}
