package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Difficulty is how demanding a recipe is to prepare.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// DishGroup is the high-level category a recipe belongs to.
type DishGroup string

const (
	DishGroupMain      DishGroup = "MAIN"
	DishGroupDessert   DishGroup = "DESSERT"
	DishGroupBread     DishGroup = "BREAD"
	DishGroupAppetizer DishGroup = "APPETIZER"
	DishGroupSalad     DishGroup = "SALAD"
	DishGroupSoup      DishGroup = "SOUP"
)

// CookingMethod is the primary technique used for a recipe.
type CookingMethod string

const (
	CookingMethodBake   CookingMethod = "BAKE"
	CookingMethodFry    CookingMethod = "FRY"
	CookingMethodBoil   CookingMethod = "BOIL"
	CookingMethodGrill  CookingMethod = "GRILL"
	CookingMethodNoCook CookingMethod = "NO_COOK"
)

// StringArray is a string list persisted as a JSON array column
type StringArray []string

// Value implements the driver.Valuer interface
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = StringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// GormDBDataType picks the JSON column type for the active dialect
func (StringArray) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "JSON"
}

// Recipe is the persisted recipe record.
type Recipe struct {
	ID              uuid.UUID                        `gorm:"type:uuid;primaryKey" json:"id"`
	Slug            string                           `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	Title           string                           `gorm:"size:255;not null" json:"title"`
	Lead            string                           `gorm:"type:text;not null" json:"lead"`
	PrepTimeMinutes int                              `gorm:"not null" json:"prepTimeMinutes"`
	Servings        int                              `gorm:"not null" json:"servings"`
	Difficulty      Difficulty                       `gorm:"size:16;not null;index" json:"difficulty"`
	DishGroup       DishGroup                        `gorm:"size:16;not null;index" json:"dishGroup"`
	CookingMethod   CookingMethod                    `gorm:"size:16;not null;index" json:"cookingMethod"`
	Tags            StringArray                      `gorm:"not null" json:"tags"`
	Ingredients     datatypes.JSONType[[]Ingredient] `gorm:"not null" json:"ingredients"`
	Steps           datatypes.JSONType[[]Step]       `gorm:"not null" json:"steps"`
	ImageCdnPath    string                           `gorm:"size:512;not null" json:"imageCdnPath"`
	Images          datatypes.JSONType[Images]       `gorm:"not null" json:"images"`
	CreatedAt       time.Time                        `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time                        `json:"updatedAt"`
}

// TableName returns the table name for the Recipe model
func (Recipe) TableName() string {
	return "recipes"
}

// BeforeCreate assigns an ID when the caller did not.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Ingredient is a single ingredient line.
type Ingredient struct {
	Name   string  `json:"name" binding:"required"`
	Amount *Amount `json:"amount,omitempty"`
	Unit   *string `json:"unit,omitempty" binding:"omitnil,min=1"`
}

// Step is one instruction step.
type Step struct {
	Text string `json:"text" binding:"required"`
}
