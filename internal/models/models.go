package models

// Product is the only persisted entity. ID is assigned by the store on insert
// and never changes afterwards.
type Product struct {
	ID    uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name  string  `gorm:"not null"                 json:"name"`
	Price float64 `gorm:"not null"                 json:"price"`
}
