package domain

import "time"

type ListingStatus string

const (
	StatusAvailable ListingStatus = "AVAILABLE"
	StatusSold      ListingStatus = "SOLD"
	StatusUnlisted  ListingStatus = "UNLISTED"
)

// Closed value sets the vision model is instructed to choose from. The same
// slices feed the prompt, the reply schema and local validation, so a value
// accepted here is a value the rest of the system can store.
var (
	BodyTypes     = []string{"SUV", "Sedan", "Hatchback", "Convertible", "Coupe", "Wagon", "Pickup"}
	FuelTypes     = []string{"Petrol", "Diesel", "Electric", "Hybrid", "Plug-in Hybrid"}
	Transmissions = []string{"Automatic", "Manual", "Semi-Automatic"}
)

func ValidStatus(s ListingStatus) bool {
	switch s {
	case StatusAvailable, StatusSold, StatusUnlisted:
		return true
	}
	return false
}

// CarListing is the persisted entity. Images holds public URLs in display
// order. The ID doubles as the storage folder for the listing's images.
type CarListing struct {
	ID           string        `json:"id"`
	Make         string        `json:"make"`
	Model        string        `json:"model"`
	Year         int           `json:"year"`
	Color        string        `json:"color"`
	Price        string        `json:"price"`
	Mileage      int64         `json:"mileage"`
	BodyType     string        `json:"bodyType"`
	FuelType     string        `json:"fuelType"`
	Transmission string        `json:"transmission"`
	Seats        int           `json:"seats"`
	Description  string        `json:"description"`
	Status       ListingStatus `json:"status"`
	Featured     bool          `json:"featured"`
	Images       []string      `json:"images"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// ExtractedAttributes is the vetted output of the vision model, never
// persisted on its own. Price and Mileage keep the string form the prompt
// demands; parsing into a draft happens after human review.
type ExtractedAttributes struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Color        string  `json:"color"`
	Price        string  `json:"price"`
	Mileage      string  `json:"mileage"`
	BodyType     string  `json:"bodyType"`
	FuelType     string  `json:"fuelType"`
	Transmission string  `json:"transmission"`
	Description  string  `json:"description"`
	Confidence   float64 `json:"confidence"`
}

// SearchQuery pre-fills the public search form from a photo. Best effort,
// never persisted.
type SearchQuery struct {
	Make       string  `json:"make"`
	BodyType   string  `json:"bodyType"`
	Color      string  `json:"color"`
	Confidence float64 `json:"confidence"`
}

// ListingDraft is the caller-reviewed input to ingestion: the extracted
// attributes after human edits plus the fields extraction cannot supply.
type ListingDraft struct {
	Make         string        `json:"make"`
	Model        string        `json:"model"`
	Year         int           `json:"year"`
	Color        string        `json:"color"`
	Price        string        `json:"price"`
	Mileage      int64         `json:"mileage"`
	BodyType     string        `json:"bodyType"`
	FuelType     string        `json:"fuelType"`
	Transmission string        `json:"transmission"`
	Seats        int           `json:"seats"`
	Description  string        `json:"description"`
	Status       ListingStatus `json:"status"`
	Featured     bool          `json:"featured"`
}

// ListingPatch carries a partial status/featured update. Nil fields are left
// untouched, never reset.
type ListingPatch struct {
	Status   *ListingStatus `json:"status,omitempty"`
	Featured *bool          `json:"featured,omitempty"`
}

func (p ListingPatch) Empty() bool {
	return p.Status == nil && p.Featured == nil
}

// User mirrors the identity-provider account the JWT subject resolves to.
type User struct {
	ID        string
	AuthID    string
	Email     string
	Name      string
	CreatedAt time.Time
}
