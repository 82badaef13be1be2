package postgres

import (
	"time"

	"gorm.io/gorm"

	"samaj-directory/internal/domain/directory"
)

// AddressSchema is embedded into every table that carries an address.
type AddressSchema struct {
	BasicAddress string `gorm:"size:500"`
	State        string `gorm:"size:100;index"`
	District     string `gorm:"size:100;index"`
	Vidhansabha  string `gorm:"size:100;index"`
	Pincode      string `gorm:"size:6"`
}

func addressFromDomain(a directory.Address) AddressSchema {
	return AddressSchema{
		BasicAddress: a.BasicAddress,
		State:        a.State,
		District:     a.District,
		Vidhansabha:  a.Vidhansabha,
		Pincode:      a.Pincode,
	}
}

func (a AddressSchema) toDomain() directory.Address {
	return directory.Address{
		BasicAddress: a.BasicAddress,
		State:        a.State,
		District:     a.District,
		Vidhansabha:  a.Vidhansabha,
		Pincode:      a.Pincode,
	}
}

// filterByAddress applies the address equality filters.
func filterByAddress(tx *gorm.DB, f directory.Filter) *gorm.DB {
	if f.State != "" {
		tx = tx.Where("state = ?", f.State)
	}
	if f.District != "" {
		tx = tx.Where("district = ?", f.District)
	}
	if f.Vidhansabha != "" {
		tx = tx.Where("vidhansabha = ?", f.Vidhansabha)
	}
	return tx
}

// OrganisationSchema represents the organisations table.
type OrganisationSchema struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"not null;size:200"`
	Description string    `gorm:"type:text"`
	Logo        string    `gorm:"size:1000"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (OrganisationSchema) TableName() string { return "organisations" }

func (s OrganisationSchema) cursorKey() (time.Time, string) { return s.CreatedAt, s.ID }

// AryaSamajSchema represents the arya_samajs table.
type AryaSamajSchema struct {
	ID          string        `gorm:"primaryKey;size:36"`
	Name        string        `gorm:"not null;size:200"`
	Description string        `gorm:"type:text"`
	Address     AddressSchema `gorm:"embedded"`
	MediaURLs   []string      `gorm:"serializer:json;type:text"`
	CreatedAt   time.Time     `gorm:"not null;index"`
}

func (AryaSamajSchema) TableName() string { return "arya_samajs" }

func (s AryaSamajSchema) cursorKey() (time.Time, string) { return s.CreatedAt, s.ID }

// MemberSchema represents the members table.
type MemberSchema struct {
	ID           string        `gorm:"primaryKey;size:36"`
	Name         string        `gorm:"not null;size:200"`
	PhoneNumber  string        `gorm:"size:15;index"`
	Email        string        `gorm:"size:320"`
	ProfileImage string        `gorm:"size:1000"`
	Address      AddressSchema `gorm:"embedded"`
	CreatedAt    time.Time     `gorm:"not null;index"`
}

func (MemberSchema) TableName() string { return "members" }

func (s MemberSchema) cursorKey() (time.Time, string) { return s.CreatedAt, s.ID }

// FamilySchema represents the families table.
type FamilySchema struct {
	ID          string        `gorm:"primaryKey;size:36"`
	Name        string        `gorm:"not null;size:200"`
	AryaSamajID string        `gorm:"size:36;index"`
	Address     AddressSchema `gorm:"embedded"`
	MemberIDs   []string      `gorm:"serializer:json;type:text"`
	CreatedAt   time.Time     `gorm:"not null;index"`
}

func (FamilySchema) TableName() string { return "families" }

func (s FamilySchema) cursorKey() (time.Time, string) { return s.CreatedAt, s.ID }

// ActivitySchema represents the activities table.
type ActivitySchema struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"not null;size:200"`
	Description string    `gorm:"type:text"`
	Type        string    `gorm:"not null;size:20;index"`
	Place       string    `gorm:"size:300"`
	StartsAt    time.Time
	EndsAt      time.Time
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (ActivitySchema) TableName() string { return "activities" }

func (s ActivitySchema) cursorKey() (time.Time, string) { return s.CreatedAt, s.ID }

// Schemas lists every table for AutoMigrate.
func Schemas() []any {
	return []any{
		&OrganisationSchema{},
		&AryaSamajSchema{},
		&MemberSchema{},
		&FamilySchema{},
		&ActivitySchema{},
	}
}
