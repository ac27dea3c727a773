package models

import (
	"time"
)

// User is a seeded account. Password is stored as plain text; this
// system has no registration flow and no hashing.
type User struct {
	ID       uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Username string      `gorm:"uniqueIndex;not null"     json:"username"`
	Password string      `gorm:"not null"                 json:"-"`
	Roles    []UserRole  `gorm:"constraint:OnDelete:CASCADE" json:"roles"`
	Claims   []UserClaim `gorm:"constraint:OnDelete:CASCADE" json:"claims"`
}

type UserRole struct {
	ID     uint   `gorm:"primaryKey"     json:"-"`
	UserID uint   `gorm:"index;not null" json:"-"`
	Name   string `gorm:"not null"       json:"name"`
}

type UserClaim struct {
	ID     uint   `gorm:"primaryKey"     json:"-"`
	UserID uint   `gorm:"index;not null" json:"-"`
	Type   string `gorm:"not null"       json:"type"`
	Value  string `gorm:"not null"       json:"value"`
}

// RefreshTokenData holds the single live refresh token of a user.
type RefreshTokenData struct {
	ID           uint      `gorm:"primaryKey"           json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	RefreshToken string    `gorm:"uniqueIndex;not null" json:"refresh_token"`
	Expires      time.Time `gorm:"not null"             json:"expires"`
}

func (RefreshTokenData) TableName() string { return "refresh_tokens" }

type ElementalType string

const (
	ElementalFire      ElementalType = "Fire"
	ElementalWater     ElementalType = "Water"
	ElementalEarth     ElementalType = "Earth"
	ElementalAir       ElementalType = "Air"
	ElementalLightning ElementalType = "Lightning"
	ElementalIce       ElementalType = "Ice"
	ElementalRadiation ElementalType = "Radiation"
)

func (e ElementalType) Valid() bool {
	switch e {
	case ElementalFire, ElementalWater, ElementalEarth, ElementalAir,
		ElementalLightning, ElementalIce, ElementalRadiation:
		return true
	}
	return false
}

type MagicalObject struct {
	ID          uint              `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string            `gorm:"uniqueIndex;not null"     json:"name"`
	Description *string           `json:"description"`
	Elemental   ElementalType     `gorm:"not null"                 json:"elemental"`
	Discovered  time.Time         `gorm:"not null"                 json:"discovered"`
	Properties  []MagicalProperty `gorm:"constraint:OnDelete:CASCADE" json:"properties"`
}

type MagicalProperty struct {
	ID              uint   `gorm:"primaryKey"     json:"-"`
	MagicalObjectID uint   `gorm:"index;not null" json:"-"`
	Name            string `gorm:"not null"       json:"name"`
	Value           string `gorm:"not null"       json:"value"`
}

// All lists every entity for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &UserRole{}, &UserClaim{},
		&RefreshTokenData{},
		&MagicalObject{}, &MagicalProperty{},
	}
}
