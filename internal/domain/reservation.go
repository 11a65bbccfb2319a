package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReservationKind separates meeting room bookings from visitor registrations.
type ReservationKind string

const (
	ReservationRoom    ReservationKind = "room"
	ReservationVisitor ReservationKind = "visitor"
)

// Reservation books a resource (a room, or the reception desk for a visitor) for [Start, End).
type Reservation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind        ReservationKind    `bson:"kind" json:"kind"`
	Resource    string             `bson:"resource" json:"resource"` // room name, or host area for visitors
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Title       string             `bson:"title,omitempty" json:"title,omitempty"`
	VisitorName string             `bson:"visitorName,omitempty" json:"visitorName,omitempty"`
	VisitorDoc  string             `bson:"visitorDoc,omitempty" json:"visitorDoc,omitempty"`
	Start       time.Time          `bson:"start" json:"start"`
	End         time.Time          `bson:"end" json:"end"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Overlaps reports whether r and o share any instant of [Start, End).
func (r *Reservation) Overlaps(o *Reservation) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}
