package directory

import "time"

// Address is the postal address shared by samaj units, families and members.
type Address struct {
	BasicAddress string `json:"basic_address,omitempty" validate:"max=500"`
	State        string `json:"state,omitempty" validate:"max=100"`
	District     string `json:"district,omitempty" validate:"max=100"`
	Vidhansabha  string `json:"vidhansabha,omitempty" validate:"max=100"`
	Pincode      string `json:"pincode,omitempty" validate:"omitempty,numeric,len=6"`
}

// Organisation is a top-level body in the directory.
type Organisation struct {
	ID          string    `json:"id"`                                      // ID is a UUID assigned on create
	Name        string    `json:"name" validate:"required,min=2,max=200"`  // Name is the display name
	Description string    `json:"description,omitempty" validate:"max=5000"`
	Logo        string    `json:"logo,omitempty" validate:"omitempty,url"` // Logo is an image URL
	CreatedAt   time.Time `json:"created_at"`
}

// Key implements pagination.Keyed.
func (o Organisation) Key() string { return o.ID }

// AryaSamaj is a local samaj unit.
type AryaSamaj struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,min=2,max=200"`
	Description string    `json:"description,omitempty" validate:"max=5000"`
	Address     Address   `json:"address"`
	MediaURLs   []string  `json:"media_urls,omitempty" validate:"max=20,dive,url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Key implements pagination.Keyed.
func (a AryaSamaj) Key() string { return a.ID }

// Member is a person registered in the directory.
type Member struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required,min=2,max=200"`
	PhoneNumber  string    `json:"phone_number,omitempty" validate:"omitempty,numeric,min=10,max=15"`
	Email        string    `json:"email,omitempty" validate:"omitempty,email"`
	ProfileImage string    `json:"profile_image,omitempty" validate:"omitempty,url"`
	Address      Address   `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
}

// Key implements pagination.Keyed.
func (m Member) Key() string { return m.ID }

// Family groups members, optionally attached to a samaj unit.
type Family struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,min=2,max=200"`
	AryaSamajID string    `json:"arya_samaj_id,omitempty" validate:"omitempty,uuid"`
	Address     Address   `json:"address"`
	MemberIDs   []string  `json:"member_ids,omitempty" validate:"dive,uuid"`
	CreatedAt   time.Time `json:"created_at"`
}

// Key implements pagination.Keyed.
func (f Family) Key() string { return f.ID }

// ActivityType classifies activities.
type ActivityType string

const (
	ActivityEvent    ActivityType = "EVENT"
	ActivitySession  ActivityType = "SESSION"
	ActivityCampaign ActivityType = "CAMPAIGN"
	ActivityCourse   ActivityType = "COURSE"
)

// Valid reports whether t is one of the known activity types.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityEvent, ActivitySession, ActivityCampaign, ActivityCourse:
		return true
	}
	return false
}

// Activity is an event, session, campaign or course run by an organisation.
type Activity struct {
	ID          string       `json:"id"`
	Name        string       `json:"name" validate:"required,min=2,max=200"`
	Description string       `json:"description,omitempty" validate:"max=5000"`
	Type        ActivityType `json:"type" validate:"required,oneof=EVENT SESSION CAMPAIGN COURSE"`
	Place       string       `json:"place,omitempty" validate:"max=300"`
	StartsAt    time.Time    `json:"starts_at"`
	EndsAt      time.Time    `json:"ends_at"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Key implements pagination.Keyed.
func (a Activity) Key() string { return a.ID }

// Counts summarises the size of the directory.
type Counts struct {
	Families int64 `json:"families"`
	Members  int64 `json:"members"`
}
