package postgres

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"samaj-directory/internal/domain/directory"
)

type (
	OrganisationRepo = CollectionRepo[directory.Organisation, OrganisationSchema]
	AryaSamajRepo    = CollectionRepo[directory.AryaSamaj, AryaSamajSchema]
	MemberRepo       = CollectionRepo[directory.Member, MemberSchema]
	FamilyRepo       = CollectionRepo[directory.Family, FamilySchema]
	ActivityRepo     = CollectionRepo[directory.Activity, ActivitySchema]
)

// NewOrganisationRepo searches name and description. Organisations have no filters.
func NewOrganisationRepo(db *gorm.DB, log *zap.Logger) *OrganisationRepo {
	return newCollectionRepo(db, log, mapping[directory.Organisation, OrganisationSchema]{
		resource:      string(directory.CollectionOrganisations),
		searchColumns: []string{"name", "description"},
		fromDomain: func(o directory.Organisation, id string, createdAt time.Time) OrganisationSchema {
			return OrganisationSchema{ID: id, Name: o.Name, Description: o.Description, Logo: o.Logo, CreatedAt: createdAt}
		},
		toDomain: func(s OrganisationSchema) directory.Organisation {
			return directory.Organisation{ID: s.ID, Name: s.Name, Description: s.Description, Logo: s.Logo, CreatedAt: s.CreatedAt}
		},
	})
}

// NewAryaSamajRepo searches name, description and district.
func NewAryaSamajRepo(db *gorm.DB, log *zap.Logger) *AryaSamajRepo {
	return newCollectionRepo(db, log, mapping[directory.AryaSamaj, AryaSamajSchema]{
		resource:      string(directory.CollectionAryaSamajs),
		searchColumns: []string{"name", "description", "district"},
		fromDomain: func(a directory.AryaSamaj, id string, createdAt time.Time) AryaSamajSchema {
			return AryaSamajSchema{
				ID:          id,
				Name:        a.Name,
				Description: a.Description,
				Address:     addressFromDomain(a.Address),
				MediaURLs:   a.MediaURLs,
				CreatedAt:   createdAt,
			}
		},
		toDomain: func(s AryaSamajSchema) directory.AryaSamaj {
			return directory.AryaSamaj{
				ID:          s.ID,
				Name:        s.Name,
				Description: s.Description,
				Address:     s.Address.toDomain(),
				MediaURLs:   s.MediaURLs,
				CreatedAt:   s.CreatedAt,
			}
		},
		filter: filterByAddress,
	})
}

// NewMemberRepo searches name, phone number and email.
func NewMemberRepo(db *gorm.DB, log *zap.Logger) *MemberRepo {
	return newCollectionRepo(db, log, mapping[directory.Member, MemberSchema]{
		resource:      string(directory.CollectionMembers),
		searchColumns: []string{"name", "phone_number", "email"},
		fromDomain: func(m directory.Member, id string, createdAt time.Time) MemberSchema {
			return MemberSchema{
				ID:           id,
				Name:         m.Name,
				PhoneNumber:  m.PhoneNumber,
				Email:        m.Email,
				ProfileImage: m.ProfileImage,
				Address:      addressFromDomain(m.Address),
				CreatedAt:    createdAt,
			}
		},
		toDomain: func(s MemberSchema) directory.Member {
			return directory.Member{
				ID:           s.ID,
				Name:         s.Name,
				PhoneNumber:  s.PhoneNumber,
				Email:        s.Email,
				ProfileImage: s.ProfileImage,
				Address:      s.Address.toDomain(),
				CreatedAt:    s.CreatedAt,
			}
		},
		filter: filterByAddress,
	})
}

// NewFamilyRepo searches the family name.
func NewFamilyRepo(db *gorm.DB, log *zap.Logger) *FamilyRepo {
	return newCollectionRepo(db, log, mapping[directory.Family, FamilySchema]{
		resource:      string(directory.CollectionFamilies),
		searchColumns: []string{"name"},
		fromDomain: func(f directory.Family, id string, createdAt time.Time) FamilySchema {
			return FamilySchema{
				ID:          id,
				Name:        f.Name,
				AryaSamajID: f.AryaSamajID,
				Address:     addressFromDomain(f.Address),
				MemberIDs:   f.MemberIDs,
				CreatedAt:   createdAt,
			}
		},
		toDomain: func(s FamilySchema) directory.Family {
			return directory.Family{
				ID:          s.ID,
				Name:        s.Name,
				AryaSamajID: s.AryaSamajID,
				Address:     s.Address.toDomain(),
				MemberIDs:   s.MemberIDs,
				CreatedAt:   s.CreatedAt,
			}
		},
		filter: filterByAddress,
	})
}

// NewActivityRepo searches name and place, and filters by activity type.
func NewActivityRepo(db *gorm.DB, log *zap.Logger) *ActivityRepo {
	return newCollectionRepo(db, log, mapping[directory.Activity, ActivitySchema]{
		resource:      string(directory.CollectionActivities),
		searchColumns: []string{"name", "place"},
		fromDomain: func(a directory.Activity, id string, createdAt time.Time) ActivitySchema {
			return ActivitySchema{
				ID:          id,
				Name:        a.Name,
				Description: a.Description,
				Type:        string(a.Type),
				Place:       a.Place,
				StartsAt:    a.StartsAt.UTC(),
				EndsAt:      a.EndsAt.UTC(),
				CreatedAt:   createdAt,
			}
		},
		toDomain: func(s ActivitySchema) directory.Activity {
			return directory.Activity{
				ID:          s.ID,
				Name:        s.Name,
				Description: s.Description,
				Type:        directory.ActivityType(s.Type),
				Place:       s.Place,
				StartsAt:    s.StartsAt,
				EndsAt:      s.EndsAt,
				CreatedAt:   s.CreatedAt,
			}
		},
		filter: func(tx *gorm.DB, f directory.Filter) *gorm.DB {
			if f.ActivityType != "" {
				tx = tx.Where("type = ?", string(f.ActivityType))
			}
			return tx
		},
	})
}
