package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleGoogle   Role = "g-ind"
	RoleFacebook Role = "fb-ind"
	RoleX        Role = "x-ind"
	RoleOrg      Role = "org"
)

// Social reports whether the role was assigned by a social login provider.
func (r Role) Social() bool {
	return r == RoleGoogle || r == RoleFacebook || r == RoleX
}

type User struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string        `bson:"email" json:"email"`
	PhoneNumber   string        `bson:"phoneNumber,omitempty" json:"phone_number,omitempty"`
	PasswordHash  string        `bson:"passwordHash,omitempty" json:"-"` // never expose
	Name          string        `bson:"name,omitempty" json:"name,omitempty"`
	Picture       string        `bson:"picture,omitempty" json:"picture,omitempty"`
	Role          Role          `bson:"role" json:"role"`
	EmailVerified bool          `bson:"emailVerified" json:"email_verified"`

	// Admin step-up login
	OTP          string     `bson:"otp,omitempty" json:"-"`
	OTPExpiresAt *time.Time `bson:"otpExpiresAt,omitempty" json:"-"`

	// Most recently issued refresh token. Older tokens stay structurally
	// valid until their own expiry; revocation happens on the session.
	RefreshToken string `bson:"refreshToken,omitempty" json:"-"`

	// Social provider subject ids
	GoogleSub  string `bson:"googleSub,omitempty" json:"-"`
	FacebookID string `bson:"facebookId,omitempty" json:"-"`
	XID        string `bson:"xId,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Organization is the second identity space. Signup email uniqueness is
// enforced across both users and organizations.
type Organization struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string        `bson:"email" json:"email"`
	CompanyName   string        `bson:"companyName" json:"company_name"`
	PasswordHash  string        `bson:"passwordHash,omitempty" json:"-"`
	Role          Role          `bson:"role" json:"role"`
	EmailVerified bool          `bson:"emailVerified" json:"email_verified"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}
