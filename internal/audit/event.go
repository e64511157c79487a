package audit

import "time"

// Topics of the link lifecycle events.
const (
	TopicLinkCreated = "link.created"
	TopicLinkUpdated = "link.updated"
	TopicLinkDeleted = "link.deleted"
)

// LinkCreatedEvent is emitted after a link is stored.
type LinkCreatedEvent struct {
	LinkID          string    `json:"linkId"`
	OwnerID         string    `json:"userId"`
	OriginalURL     string    `json:"originalUrl"`
	TargetParamName string    `json:"targetParamName"`
	CreatedAt       time.Time `json:"createdAt"`
	ClientIP        string    `json:"clientIp"`
	UserAgent       string    `json:"userAgent"`
}

// LinkUpdatedEvent is emitted after a partial update. Fields lists the attributes the request touched.
type LinkUpdatedEvent struct {
	LinkID    string    `json:"linkId"`
	Fields    []string  `json:"fields"`
	UpdatedAt time.Time `json:"updatedAt"`
	ClientIP  string    `json:"clientIp"`
}

// LinkDeletedEvent is emitted after a link and its click log are removed.
type LinkDeletedEvent struct {
	LinkID    string    `json:"linkId"`
	DeletedAt time.Time `json:"deletedAt"`
	ClientIP  string    `json:"clientIp"`
}
