package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Protein is one of the labels the cafeteria can serve as the main dish.
type Protein string

const (
	ProteinFrango    Protein = "Frango"
	ProteinOmelete   Protein = "Omelete"
	ProteinOvoFrito  Protein = "Ovo frito"
	ProteinOvoCozido Protein = "Ovo cozido"
)

// Proteins lists every valid label in display order.
var Proteins = []Protein{ProteinFrango, ProteinOmelete, ProteinOvoFrito, ProteinOvoCozido}

// Valid reports whether p is a member of the fixed enumeration.
func (p Protein) Valid() bool {
	for _, known := range Proteins {
		if p == known {
			return true
		}
	}
	return false
}

// MenuDay is the published default protein for one calendar date.
// DefaultProtein keeps the text as published upstream; it is not guaranteed
// to be one of the Protein labels.
type MenuDay struct {
	Date           Date      `bson:"_id" json:"date"`
	DefaultProtein string    `bson:"defaultProtein" json:"defaultProtein"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"-"`
}

// Exchange is a user's persisted protein substitution for one menu day.
// At most one exists per (UserID, Date).
type Exchange struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Date            Date               `bson:"date" json:"date"`
	OriginalProtein string             `bson:"originalProtein" json:"originalProtein"` // menu default captured at request time
	NewProtein      Protein            `bson:"newProtein" json:"newProtein"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExchangeTally is how many users swapped to NewProtein on Date; the kitchen
// plans portions from it.
type ExchangeTally struct {
	Date       Date    `bson:"date" json:"date"`
	NewProtein Protein `bson:"newProtein" json:"newProtein"`
	Count      int     `bson:"count" json:"count"`
}
