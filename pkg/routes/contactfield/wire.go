package contactfield

import (
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	repo "github.com/datenknoten/freundebuch/internal/repositories/contactfield"
	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/events"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/subresource"
)

// Handlers bundles every contact category so the server wires them once and
// mounts them under both friend and collective parents.
type Handlers struct {
	PhoneNumbers     *Handler[models.PhoneNumber, models.CreatePhoneNumberRequest, models.UpdatePhoneNumberRequest]
	EmailAddresses   *Handler[models.EmailAddress, models.CreateEmailAddressRequest, models.UpdateEmailAddressRequest]
	PostalAddresses  *Handler[models.PostalAddress, models.CreatePostalAddressRequest, models.UpdatePostalAddressRequest]
	URLs             *Handler[models.URL, models.CreateURLRequest, models.UpdateURLRequest]
	SocialProfiles   *Handler[models.SocialProfile, models.CreateSocialProfileRequest, models.UpdateSocialProfileRequest]
	SignificantDates *Handler[models.SignificantDate, models.CreateSignificantDateRequest, models.UpdateSignificantDateRequest]
	CareerEntries    *Handler[models.CareerEntry, models.CreateCareerEntryRequest, models.UpdateCareerEntryRequest]
}

// Register mounts every category on a group that carries the parent path
// parameter (/friends/:friendId or /collectives/:collectiveId).
func (h *Handlers) Register(g *echo.Group) {
	h.PhoneNumbers.Register(g.Group("/phone-numbers"))
	h.EmailAddresses.Register(g.Group("/email-addresses"))
	h.PostalAddresses.Register(g.Group("/postal-addresses"))
	h.URLs.Register(g.Group("/urls"))
	h.SocialProfiles.Register(g.Group("/social-profiles"))
	h.SignificantDates.Register(g.Group("/significant-dates"))
	h.CareerEntries.Register(g.Group("/career-entries"))
}

func NewHandlers(db database.DB, parents subresource.ParentResolver, emitter *events.Emitter, logger ectologger.Logger) *Handlers {
	return &Handlers{
		PhoneNumbers:     newPhoneNumberHandler(db, parents, emitter, logger),
		EmailAddresses:   newEmailAddressHandler(db, parents, emitter, logger),
		PostalAddresses:  newPostalAddressHandler(db, parents, emitter, logger),
		URLs:             newURLHandler(db, parents, emitter, logger),
		SocialProfiles:   newSocialProfileHandler(db, parents, emitter, logger),
		SignificantDates: newSignificantDateHandler(db, parents, emitter, logger),
		CareerEntries:    newCareerEntryHandler(db, parents, emitter, logger),
	}
}

func newManager[I any](
	category string,
	db database.DB,
	store subresource.Store[I],
	parents subresource.ParentResolver,
	emitter *events.Emitter,
	logger ectologger.Logger,
	id func(*I) string,
	isPrimary func(*I) bool,
) *subresource.Manager[I] {
	return subresource.NewManager(subresource.Config[I]{
		Category:  category,
		DB:        db,
		Store:     store,
		Parents:   parents,
		Emitter:   emitter,
		Logger:    logger,
		ID:        id,
		IsPrimary: isPrimary,
	})
}

func newPhoneNumberHandler(db database.DB, parents subresource.ParentResolver, emitter *events.Emitter, logger ectologger.Logger) *Handler[models.PhoneNumber, models.CreatePhoneNumberRequest, models.UpdatePhoneNumberRequest] {
	manager := newManager("phone_number", db, repo.NewPhoneNumberStore(db, logger), parents, emitter, logger,
		func(i *models.PhoneNumber) string { return i.ID },
		func(i *models.PhoneNumber) bool { return i.IsPrimary },
	)
	return NewHandler(manager,
		func(userID string, parent models.ParentRef, req *models.CreatePhoneNumberRequest) *models.PhoneNumber {
			now := time.Now().UTC()
			return &models.PhoneNumber{
				ID:         uuid.New().String(),
				UserID:     userID,
				ParentKind: parent.Kind,
				ParentID:   parent.ID,
				Number:     req.Number,
				Label:      req.Label,
				IsPrimary:  req.IsPrimary,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		},
		func(item *models.PhoneNumber, req *models.UpdatePhoneNumberRequest) {
			if req.Number != nil {
				item.Number = *req.Number
			}
			if req.Label != nil {
				item.Label = *req.Label
			}
			if req.IsPrimary != nil {
				item.IsPrimary = *req.IsPrimary
			}
			item.UpdatedAt = time.Now().UTC()
		},
	)
}

func newEmailAddressHandler(db database.DB, parents subresource.ParentResolver, emitter *events.Emitter, logger ectologger.Logger) *Handler[models.EmailAddress, models.CreateEmailAddressRequest, models.UpdateEmailAddressRequest] {
	manager := newManager("email_address", db, repo.NewEmailAddressStore(db, logger), parents, emitter, logger,
		func(i *models.EmailAddress) string { return i.ID },
		func(i *models.EmailAddress) bool { return i.IsPrimary },
	)
	return NewHandler(manager,
		func(userID string, parent models.ParentRef, req *models.CreateEmailAddressRequest) *models.EmailAddress {
			now := time.Now().UTC()
			return &models.EmailAddress{
				ID:         uuid.New().String(),
				UserID:     userID,
				ParentKind: parent.Kind,
				ParentID:   parent.ID,
				Address:    req.Address,
				Label:      req.Label,
				IsPrimary:  req.IsPrimary,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		},
		func(item *models.EmailAddress, req *models.UpdateEmailAddressRequest) {
			if req.Address != nil {
				item.Address = *req.Address
			}
			if req.Label != nil {
				item.Label = *req.Label
			}
			if req.IsPrimary != nil {
				item.IsPrimary = *req.IsPrimary
			}
			item.UpdatedAt = time.Now().UTC()
		},
	)
}

func newPostalAddressHandler(db database.DB, parents subresource.ParentResolver, emitter *events.Emitter, logger ectologger.Logger) *Handler[models.PostalAddress, models.CreatePostalAddressRequest, models.UpdatePostalAddressRequest] {
	manager := newManager("postal_address", db, repo.NewPostalAddressStore(db, logger), parents, emitter, logger,
		func(i *models.PostalAddress) string { return i.ID },
		func(i *models.PostalAddress) bool { return i.IsPrimary },
	)
	return NewHandler(manager,
		func(userID string, parent models.ParentRef, req *models.CreatePostalAddressRequest) *models.PostalAddress {
			now := time.Now().UTC()
			return &models.PostalAddress{
				ID:         uuid.New().String(),
				UserID:     userID,
				ParentKind: parent.Kind,
				ParentID:   parent.ID,
				Line1:      req.Line1,
				Line2:      req.Line2,
				City:       req.City,
				Region:     req.Region,
				PostalCode: req.PostalCode,
				Country:    req.Country,
				Label:      req.Label,
				IsPrimary:  req.IsPrimary,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		},
		func(item *models.PostalAddress, req *models.UpdatePostalAddressRequest) {
			if req.Line1 != nil {
				item.Line1 = *req.Line1
			}
			if req.Line2 != nil {
				item.Line2 = *req.Line2
			}
			if req.City != nil {
				item.City = *req.City
			}
			if req.Region != nil {
				item.Region = *req.Region
			}
			if req.PostalCode != nil {
				item.PostalCode = *req.PostalCode
			}
			if req.Country != nil {
				item.Country = *req.Country
			}
			if req.Label != nil {
				item.Label = *req.Label
			}
			if req.IsPrimary != nil {
				item.IsPrimary = *req.IsPrimary
			}
			item.UpdatedAt = time.Now().UTC()
		},
	)
}

func newURLHandler(db database.DB, parents subresource.ParentResolver, emitter *events.Emitter, logger ectologger.Logger) *Handler[models.URL, models.CreateURLRequest, models.UpdateURLRequest] {
	manager := newManager("url", db, repo.NewURLStore(db, logger), parents, emitter, logger,
		func(i *models.URL) string { return i.ID },
		nil,
	)
	return NewHandler(manager,
		func(userID string, parent models.ParentRef, req *models.CreateURLRequest) *models.URL {
			now := time.Now().UTC()
			return &models.URL{
				ID:         uuid.New().String(),
				UserID:     userID,
				ParentKind: parent.Kind,
				ParentID:   parent.ID,
				URL:        req.URL,
				Label:      req.Label,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		},
		func(item *models.URL, req *models.UpdateURLRequest) {
			if req.URL != nil {
				item.URL = *req.URL
			}
			if req.Label != nil {
				item.Label = *req.Label
			}
			item.UpdatedAt = time.Now().UTC()
		},
	)
}

func newSocialProfileHandler(db database.DB, parents subresource.ParentResolver, emitter *events.Emitter, logger ectologger.Logger) *Handler[models.SocialProfile, models.CreateSocialProfileRequest, models.UpdateSocialProfileRequest] {
	manager := newManager("social_profile", db, repo.NewSocialProfileStore(db, logger), parents, emitter, logger,
		func(i *models.SocialProfile) string { return i.ID },
		nil,
	)
	return NewHandler(manager,
		func(userID string, parent models.ParentRef, req *models.CreateSocialProfileRequest) *models.SocialProfile {
			now := time.Now().UTC()
			return &models.SocialProfile{
				ID:         uuid.New().String(),
				UserID:     userID,
				ParentKind: parent.Kind,
				ParentID:   parent.ID,
				Platform:   req.Platform,
				Handle:     req.Handle,
				ProfileURL: req.ProfileURL,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		},
		func(item *models.SocialProfile, req *models.UpdateSocialProfileRequest) {
			if req.Platform != nil {
				item.Platform = *req.Platform
			}
			if req.Handle != nil {
				item.Handle = *req.Handle
			}
			if req.ProfileURL != nil {
				item.ProfileURL = *req.ProfileURL
			}
			item.UpdatedAt = time.Now().UTC()
		},
	)
}

func newSignificantDateHandler(db database.DB, parents subresource.ParentResolver, emitter *events.Emitter, logger ectologger.Logger) *Handler[models.SignificantDate, models.CreateSignificantDateRequest, models.UpdateSignificantDateRequest] {
	manager := newManager("significant_date", db, repo.NewSignificantDateStore(db, logger), parents, emitter, logger,
		func(i *models.SignificantDate) string { return i.ID },
		nil,
	)
	return NewHandler(manager,
		func(userID string, parent models.ParentRef, req *models.CreateSignificantDateRequest) *models.SignificantDate {
			now := time.Now().UTC()
			return &models.SignificantDate{
				ID:             uuid.New().String(),
				UserID:         userID,
				ParentKind:     parent.Kind,
				ParentID:       parent.ID,
				Label:          req.Label,
				HappenedOn:     req.HappenedOn,
				RecursAnnually: req.RecursAnnually,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
		},
		func(item *models.SignificantDate, req *models.UpdateSignificantDateRequest) {
			if req.Label != nil {
				item.Label = *req.Label
			}
			if req.HappenedOn != nil {
				item.HappenedOn = *req.HappenedOn
			}
			if req.RecursAnnually != nil {
				item.RecursAnnually = *req.RecursAnnually
			}
			item.UpdatedAt = time.Now().UTC()
		},
	)
}

func newCareerEntryHandler(db database.DB, parents subresource.ParentResolver, emitter *events.Emitter, logger ectologger.Logger) *Handler[models.CareerEntry, models.CreateCareerEntryRequest, models.UpdateCareerEntryRequest] {
	manager := newManager("career_entry", db, repo.NewCareerEntryStore(db, logger), parents, emitter, logger,
		func(i *models.CareerEntry) string { return i.ID },
		func(i *models.CareerEntry) bool { return i.IsCurrent },
	)
	return NewHandler(manager,
		func(userID string, parent models.ParentRef, req *models.CreateCareerEntryRequest) *models.CareerEntry {
			now := time.Now().UTC()
			return &models.CareerEntry{
				ID:           uuid.New().String(),
				UserID:       userID,
				ParentKind:   parent.Kind,
				ParentID:     parent.ID,
				Organization: req.Organization,
				Title:        req.Title,
				StartedOn:    req.StartedOn,
				EndedOn:      req.EndedOn,
				IsCurrent:    req.IsCurrent,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
		},
		func(item *models.CareerEntry, req *models.UpdateCareerEntryRequest) {
			if req.Organization != nil {
				item.Organization = *req.Organization
			}
			if req.Title != nil {
				item.Title = *req.Title
			}
			if req.StartedOn != nil {
				item.StartedOn = req.StartedOn
			}
			if req.EndedOn != nil {
				item.EndedOn = req.EndedOn
			}
			if req.IsCurrent != nil {
				item.IsCurrent = *req.IsCurrent
			}
			item.UpdatedAt = time.Now().UTC()
		},
	)
}
