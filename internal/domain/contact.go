package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/simp-lee/kontakt/internal/query"
)

// Physical field names of a stored contact. SQL columns and MongoDB document
// keys use the same names so one predicate compiles against either store.
const (
	FieldContactID    = "contact_id"
	FieldCreatedOn    = "created_on"
	FieldUpdatedOn    = "updated_on"
	FieldVersion      = "version"
	FieldEmailAddress = "email_address"
	FieldPhoneNumber  = "phone_number"
	FieldFirstName    = "first_name"
	FieldLastName     = "last_name"
	FieldBirthdate    = "birthdate"
	FieldGender       = "gender"
	FieldWebsite      = "website"
)

// Contact is a person in the address book.
type Contact struct {
	ID uuid.UUID `gorm:"column:contact_id;type:varchar(36);primaryKey" json:"id"`
	Audit

	EmailAddress *string `gorm:"column:email_address;size:255" json:"email_address"`
	PhoneNumber  *string `gorm:"column:phone_number;size:40" json:"phone_number"`

	FirstName string `gorm:"column:first_name;size:100;not null" json:"first_name"`
	LastName  string `gorm:"column:last_name;size:100;not null" json:"last_name"`

	Birthdate *time.Time `gorm:"column:birthdate" json:"birthdate"`
	Gender    *string    `gorm:"column:gender;size:40" json:"gender"`

	Website *string `gorm:"column:website;size:2048" json:"website"`
}

// TableName pins the table name used by gorm.
func (Contact) TableName() string {
	return "contacts"
}

// SaveContactPayload carries the mutable fields of a contact. It is the body of
// both create and update; every field is replaced on update.
type SaveContactPayload struct {
	EmailAddress *string `json:"email_address" form:"email_address" binding:"omitempty,max=255,email"`
	PhoneNumber  *string `json:"phone_number" form:"phone_number" binding:"omitempty,max=40"`

	FirstName string `json:"first_name" form:"first_name" binding:"max=100"`
	LastName  string `json:"last_name" form:"last_name" binding:"max=100"`

	Birthdate *time.Time `json:"birthdate" form:"birthdate"`
	Gender    *string    `json:"gender" form:"gender" binding:"omitempty,max=40"`

	Website *string `json:"website" form:"website" binding:"omitempty,max=2048,url"`
}

// NewContact builds a contact from payload with a fresh identifier and
// version 1, created at now.
func NewContact(payload SaveContactPayload, now time.Time) *Contact {
	c := &Contact{
		ID:    uuid.New(),
		Audit: NewAudit(now),
	}
	c.assign(payload)
	return c
}

// Apply replaces every mutable field with payload and records the mutation at now.
func (c *Contact) Apply(payload SaveContactPayload, now time.Time) {
	c.assign(payload)
	c.Touch(now)
}

func (c *Contact) assign(payload SaveContactPayload) {
	c.EmailAddress = payload.EmailAddress
	c.PhoneNumber = payload.PhoneNumber
	c.FirstName = payload.FirstName
	c.LastName = payload.LastName
	c.Birthdate = nil
	if payload.Birthdate != nil {
		b := Timestamp(*payload.Birthdate)
		c.Birthdate = &b
	}
	c.Gender = payload.Gender
	c.Website = payload.Website
}

// ContactSort is a logical sort field of the contact search.
type ContactSort string

const (
	SortBirthdate             ContactSort = "birthdate"
	SortEmailAddress          ContactSort = "email_address"
	SortFullName              ContactSort = "full_name"
	SortLastNameThenFirstName ContactSort = "last_name_then_first_name"
	SortPhoneNumber           ContactSort = "phone_number"
	SortUpdatedOn             ContactSort = "updated_on"
)

// SearchContactsRequest is the body of a contact search.
type SearchContactsRequest struct {
	query.SearchRequest

	BornAfter    *time.Time `json:"born_after"`
	BornBefore   *time.Time `json:"born_before"`
	HasBirthdate *bool      `json:"has_birthdate"`

	Gender    *string `json:"gender"`
	NotGender bool    `json:"not_gender"`

	Sort []query.SortOption[ContactSort] `json:"sort"`
}

// ContactRepository defines the data access interface for contacts.
//
// Count and Find make a repository a query.Source, so searches run through
// query.Execute.
type ContactRepository interface {
	Create(ctx context.Context, contact *Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*Contact, error)
	// Update loads the contact, passes it to apply and replaces the stored
	// document with the result.
	Update(ctx context.Context, id uuid.UUID, apply func(*Contact)) (*Contact, error)
	// Delete removes the contact and returns it as it was before removal.
	Delete(ctx context.Context, id uuid.UUID) (*Contact, error)
	Count(ctx context.Context, filter query.Predicate) (int64, error)
	Find(ctx context.Context, q query.Query) ([]Contact, error)
	Ping(ctx context.Context) error
}

// ContactService defines the business logic interface for contacts.
type ContactService interface {
	CreateContact(ctx context.Context, payload SaveContactPayload) (*Contact, error)
	GetContact(ctx context.Context, id uuid.UUID) (*Contact, error)
	UpdateContact(ctx context.Context, id uuid.UUID, payload SaveContactPayload) (*Contact, error)
	DeleteContact(ctx context.Context, id uuid.UUID) (*Contact, error)
	SearchContacts(ctx context.Context, req SearchContactsRequest) (*query.Results[Contact], error)
}
