package models

// CategoryModel groups articles into magazine sections.
type CategoryModel struct {
	Base
	Name        string `json:"name" gorm:"not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}

func (CategoryModel) TableName() string { return "categories" }
