package links

import "time"

// DefaultTargetParamName is the query parameter read on redirect when a link is created without one.
const DefaultTargetParamName = "t"

// ID identifies a short link.
type ID string

// OwnerID references the user that owns a link.
type OwnerID string

// TargetValue is one entry of a link's catalogue of expected attribution values.
// The catalogue is informational; incoming clicks are never checked against it.
type TargetValue struct {
	Name  string `json:"name"  validate:"required"`
	Value string `json:"value" validate:"required"`
}

// ClickEvent records a single visit through a short link.
type ClickEvent struct {
	InsertedAt       time.Time `json:"insertedAt"`
	IPAddress        string    `json:"ipAddress"        validate:"required"`
	TargetParamValue string    `json:"targetParamValue"`
}

// Link is a short link record.
type Link struct {
	ID              ID
	OwnerID         OwnerID
	OriginalURL     string
	TargetParamName string
	TargetValues    []TargetValue
	CreatedAt       time.Time

	// Clicks is only populated by Service.Get. Repositories never fill it.
	Clicks []ClickEvent
}

// Spec holds the attributes of a link to create.
type Spec struct {
	OwnerID         OwnerID       `json:"userId"          validate:"required"`
	OriginalURL     string        `json:"originalUrl"     validate:"required"`
	TargetParamName string        `json:"targetParamName"`
	TargetValues    []TargetValue `json:"targetValues"    validate:"dive"`
}

// Patch is a partial update of a link. Nil fields are left untouched.
type Patch struct {
	OriginalURL     *string        `json:"originalUrl"`
	TargetParamName *string        `json:"targetParamName"`
	TargetValues    *[]TargetValue `json:"targetValues"    validate:"omitnil,dive"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.OriginalURL == nil && p.TargetParamName == nil && p.TargetValues == nil
}

// Apply writes the patch onto l.
func (p Patch) Apply(l *Link) {
	if p.OriginalURL != nil {
		l.OriginalURL = *p.OriginalURL
	}

	if p.TargetParamName != nil {
		l.TargetParamName = *p.TargetParamName
	}

	if p.TargetValues != nil {
		l.TargetValues = append([]TargetValue{}, *p.TargetValues...)
	}
}
