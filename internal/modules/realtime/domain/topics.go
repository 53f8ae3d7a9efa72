package domain

import "strings"

const (
	SystemEntity = "system"

	TopicSystemConnected = SystemEntity + ".connected"
	TopicSystemPong      = SystemEntity + ".pong"
	TopicSystemError     = SystemEntity + ".error"

	ActionConnected = "connected"
	ActionPong      = "pong"
	ActionError     = "error"
	ActionCreated   = "created"
	ActionUpdated   = "updated"

	MetadataRestaurantID   = "restaurantId"
	MetadataTableID        = "tableId"
	MetadataStatus         = "status"
	MetadataPreviousStatus = "previousStatus"
	MetadataGuests         = "guests"
	MetadataUserID         = "userId"
)

// CreatedTopic returns the canonical created topic for the given entity.
func CreatedTopic(entity string) string {
	return CustomTopic(entity, ActionCreated)
}

// UpdatedTopic returns the canonical updated topic for the given entity.
func UpdatedTopic(entity string) string {
	return CustomTopic(entity, ActionUpdated)
}

// ErrorTopic returns the canonical error topic for the given entity.
func ErrorTopic(entity string) string {
	return CustomTopic(entity, ActionError)
}

// CustomTopic returns "<entity>.<action>", or "" when either part is blank.
func CustomTopic(entity, action string) string {
	cleanEntity := trim(entity)
	cleanAction := strings.ToLower(trim(action))
	if cleanEntity == "" || cleanAction == "" {
		return ""
	}
	return cleanEntity + "." + cleanAction
}

// SplitTopic infers entity and action from a dotted topic such as
// "mesa-ya.reservations.created". Missing parts come back as "".
func SplitTopic(topic string) (string, string) {
	parts := strings.Split(trim(topic), ".")
	if len(parts) < 2 {
		return trim(parts[0]), ""
	}
	return trim(parts[len(parts)-2]), trim(parts[len(parts)-1])
}

func trim(value string) string {
	return strings.TrimSpace(value)
}
