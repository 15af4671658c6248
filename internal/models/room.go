package models

type Room struct {
	ID           int64    `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Type         string   `yaml:"type" json:"type"`
	Location     string   `yaml:"location" json:"location"`
	Capacity     int64    `yaml:"capacity" json:"capacity"`
	Facilities   []string `yaml:"facilities" json:"facilities"`
	Description  string   `yaml:"description" json:"description"`
	PricePerHour float64  `yaml:"price_per_hour" json:"price_per_hour"`
	IsActive     bool     `yaml:"is_active" json:"is_active"`
}
