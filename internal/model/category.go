package model

// LotCategory is an optional grouping label for purchase lots (phones,
// accessories, ...). Icon and color are stored verbatim for the UIs.
type LotCategory struct {
	BaseModel
	Name        string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Icon        *string `gorm:"type:varchar(50)" json:"icon,omitempty"`
	Color       *string `gorm:"type:varchar(50)" json:"color,omitempty"`
	Active      bool    `gorm:"default:true" json:"active"`
}
