package contactfield

import (
	"github.com/Gobusters/ectologger"

	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/models"
)

// One constructor per contact category. The column lists mirror the table
// definitions in db/pg.

func NewPhoneNumberStore(db database.DB, logger ectologger.Logger) *Store[models.PhoneNumber] {
	return NewStore[models.PhoneNumber](db, logger, "phone_numbers",
		[]string{"id", "user_id", "parent_kind", "parent_id", "number", "label", "is_primary", "created_at", "updated_at"},
		[]string{"number", "label", "is_primary", "updated_at"},
		"is_primary",
	)
}

func NewEmailAddressStore(db database.DB, logger ectologger.Logger) *Store[models.EmailAddress] {
	return NewStore[models.EmailAddress](db, logger, "email_addresses",
		[]string{"id", "user_id", "parent_kind", "parent_id", "address", "label", "is_primary", "created_at", "updated_at"},
		[]string{"address", "label", "is_primary", "updated_at"},
		"is_primary",
	)
}

func NewPostalAddressStore(db database.DB, logger ectologger.Logger) *Store[models.PostalAddress] {
	return NewStore[models.PostalAddress](db, logger, "postal_addresses",
		[]string{"id", "user_id", "parent_kind", "parent_id", "line1", "line2", "city", "region", "postal_code", "country", "label", "is_primary", "created_at", "updated_at"},
		[]string{"line1", "line2", "city", "region", "postal_code", "country", "label", "is_primary", "updated_at"},
		"is_primary",
	)
}

func NewURLStore(db database.DB, logger ectologger.Logger) *Store[models.URL] {
	return NewStore[models.URL](db, logger, "urls",
		[]string{"id", "user_id", "parent_kind", "parent_id", "url", "label", "created_at", "updated_at"},
		[]string{"url", "label", "updated_at"},
		"",
	)
}

func NewSocialProfileStore(db database.DB, logger ectologger.Logger) *Store[models.SocialProfile] {
	return NewStore[models.SocialProfile](db, logger, "social_profiles",
		[]string{"id", "user_id", "parent_kind", "parent_id", "platform", "handle", "profile_url", "created_at", "updated_at"},
		[]string{"platform", "handle", "profile_url", "updated_at"},
		"",
	)
}

func NewSignificantDateStore(db database.DB, logger ectologger.Logger) *Store[models.SignificantDate] {
	return NewStore[models.SignificantDate](db, logger, "significant_dates",
		[]string{"id", "user_id", "parent_kind", "parent_id", "label", "happened_on", "recurs_annually", "created_at", "updated_at"},
		[]string{"label", "happened_on", "recurs_annually", "updated_at"},
		"",
	)
}

func NewCareerEntryStore(db database.DB, logger ectologger.Logger) *Store[models.CareerEntry] {
	return NewStore[models.CareerEntry](db, logger, "career_entries",
		[]string{"id", "user_id", "parent_kind", "parent_id", "organization", "title", "started_on", "ended_on", "is_current", "created_at", "updated_at"},
		[]string{"organization", "title", "started_on", "ended_on", "is_current", "updated_at"},
		"is_current",
	)
}
