package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the root identity record. Email is the login key, unique and
// case-normalized at the repository boundary. PasswordHash is opaque and is
// never serialized.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	IsActive      bool       `bun:"is_active,notnull,default:true" json:"is_active,omitempty"`
	IsStaff       bool       `bun:"is_staff,notnull,default:false" json:"is_staff,omitempty"`
	Profile       *Profile   `bun:"rel:has-one,join:id=user_id" json:"profile,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"-"`
}

// Profile holds the optional, free-form attributes of a User. Exactly one
// per user; the foreign key cascades so deleting a user removes its profile.
type Profile struct {
	bun.BaseModel  `bun:"table:profiles,alias:prf"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID         uuid.UUID  `bun:"user_id,notnull,unique,type:uuid" json:"user_id,omitempty"`
	User           *User      `bun:"rel:belongs-to,join:user_id=id,on_delete:CASCADE" json:"user,omitempty"`
	Bio            string     `bun:"bio" json:"bio"`
	PhoneNumber    string     `bun:"phone_number" json:"phone_number"`
	ProfilePicture string     `bun:"profile_picture" json:"profile_picture"`
	Location       string     `bun:"location" json:"location"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ProfilePatch is a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	Bio            *string `json:"bio,omitempty"`
	PhoneNumber    *string `json:"phone_number,omitempty"`
	ProfilePicture *string `json:"profile_picture,omitempty"`
	Location       *string `json:"location,omitempty"`
}

// IsZero reports whether the patch carries no changes.
func (p ProfilePatch) IsZero() bool {
	return p.Bio == nil && p.PhoneNumber == nil && p.ProfilePicture == nil && p.Location == nil
}

// Apply copies the set fields onto the profile.
func (p ProfilePatch) Apply(profile *Profile) {
	if profile == nil {
		return
	}
	if p.Bio != nil {
		profile.Bio = *p.Bio
	}
	if p.PhoneNumber != nil {
		profile.PhoneNumber = *p.PhoneNumber
	}
	if p.ProfilePicture != nil {
		profile.ProfilePicture = *p.ProfilePicture
	}
	if p.Location != nil {
		profile.Location = *p.Location
	}
}

// PublicUser is the response shape for account endpoints. It deliberately
// carries no password material.
type PublicUser struct {
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Public projects the user onto its exposable fields.
func (u *User) Public() PublicUser {
	return PublicUser{
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// PublicProfile is the response shape for profile endpoints.
type PublicProfile struct {
	Bio            string     `json:"bio"`
	PhoneNumber    string     `json:"phone_number"`
	ProfilePicture string     `json:"profile_picture"`
	Location       string     `json:"location"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// Public projects the profile onto its exposable fields.
func (p *Profile) Public() PublicProfile {
	return PublicProfile{
		Bio:            p.Bio,
		PhoneNumber:    p.PhoneNumber,
		ProfilePicture: p.ProfilePicture,
		Location:       p.Location,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
