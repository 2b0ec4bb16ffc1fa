package domain

import "time"

type Country struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null;uniqueIndex" binding:"required"`
	Code      string    `json:"code" gorm:"type:varchar(2);not null;uniqueIndex" binding:"required,len=2"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type City struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null" binding:"required"`
	CountryID int64     `json:"countryId" gorm:"not null;index" binding:"required"`
	Country   *Country  `json:"country,omitempty" gorm:"foreignKey:CountryID" binding:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Airport struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null" binding:"required"`
	IATACode  string    `json:"iataCode" gorm:"column:iata_code;type:varchar(3);not null;uniqueIndex" binding:"required,len=3"`
	CityID    int64     `json:"cityId" gorm:"not null;index" binding:"required"`
	City      *City     `json:"city,omitempty" gorm:"foreignKey:CityID" binding:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Airline struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null" binding:"required"`
	IATACode  string    `json:"iataCode" gorm:"column:iata_code;type:varchar(2);not null;uniqueIndex" binding:"required,len=2"`
	CountryID int64     `json:"countryId" gorm:"not null;index" binding:"required"`
	Country   *Country  `json:"country,omitempty" gorm:"foreignKey:CountryID" binding:"-"`
	IsActive  bool      `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Destination is a bookable city/airport pairing.
type Destination struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null" binding:"required"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl" gorm:"column:image_url"`
	CityID      int64     `json:"cityId" gorm:"not null;index" binding:"required"`
	City        *City     `json:"city,omitempty" gorm:"foreignKey:CityID" binding:"-"`
	CountryID   int64     `json:"countryId" gorm:"not null;index" binding:"required"`
	Country     *Country  `json:"country,omitempty" gorm:"foreignKey:CountryID" binding:"-"`
	AirportID   int64     `json:"airportId" gorm:"not null;index" binding:"required"`
	Airport     *Airport  `json:"airport,omitempty" gorm:"foreignKey:AirportID" binding:"-"`
	IsPopular   bool      `json:"isPopular" gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CountryName is empty when the country was not loaded.
func (d *Destination) CountryName() string {
	if d == nil || d.Country == nil {
		return ""
	}
	return d.Country.Name
}

type DestinationFilter struct {
	CountryID   *int64
	PopularOnly bool
}

type Promotion struct {
	ID              int64         `json:"id" gorm:"primaryKey"`
	Code            string        `json:"code" gorm:"type:varchar(32);not null;uniqueIndex" binding:"required"`
	Title           string        `json:"title" gorm:"type:varchar(255);not null" binding:"required"`
	Description     string        `json:"description"`
	DiscountPercent int           `json:"discountPercent" gorm:"not null" binding:"min=1,max=100"`
	ValidFrom       time.Time     `json:"validFrom" gorm:"not null" binding:"required"`
	ValidUntil      time.Time     `json:"validUntil" gorm:"not null" binding:"required"`
	IsActive        bool          `json:"isActive" gorm:"not null;default:true"`
	Destinations    []Destination `json:"destinations,omitempty" gorm:"many2many:promotion_destinations" binding:"-"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// ActiveAt reports whether the promotion applies at t.
func (p *Promotion) ActiveAt(t time.Time) bool {
	return p.IsActive && !t.Before(p.ValidFrom) && t.Before(p.ValidUntil)
}

type PromotionDestination struct {
	PromotionID   int64 `gorm:"primaryKey"`
	DestinationID int64 `gorm:"primaryKey"`
}

func (PromotionDestination) TableName() string {
	return "promotion_destinations"
}
