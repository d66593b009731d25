package domain

import "time"

// Identity is the identity-provider account bound to an email address.
// PK: email. The uid is immutable once assigned.
type Identity struct {
	UID           string    `json:"uid" dynamodbav:"uid"`
	Email         string    `json:"email" dynamodbav:"email"`
	EmailVerified bool      `json:"email_verified" dynamodbav:"email_verified"`
	Disabled      bool      `json:"disabled" dynamodbav:"disabled"`
	CreatedAt     time.Time `json:"created" dynamodbav:"created_at"`
}

// CreateIdentityParams describes a new passwordless identity.
type CreateIdentityParams struct {
	Email         string
	EmailVerified bool
}

// UserProfile is the application-owned companion document of an identity.
// PK: uid. Display and club fields start null and are filled in by the
// profile-completion flow of the web application.
type UserProfile struct {
	UID                   string     `json:"uid" dynamodbav:"uid"`
	Email                 string     `json:"email" dynamodbav:"email"`
	Name                  *string    `json:"name" dynamodbav:"name"`
	Mobile                *string    `json:"mobile" dynamodbav:"mobile"`
	PhotoURL              *string    `json:"photoURL" dynamodbav:"photo_url"`
	OwnedClubID           *string    `json:"ownedClubId" dynamodbav:"owned_club_id"`
	OwnedClubName         *string    `json:"ownedClubName" dynamodbav:"owned_club_name"`
	OwnedClubLogoURL      *string    `json:"ownedClubLogoUrl" dynamodbav:"owned_club_logo_url"`
	OwnedClubInstagramURL *string    `json:"ownedClubInstagramUrl" dynamodbav:"owned_club_instagram_url"`
	OwnedClubFacebookURL  *string    `json:"ownedClubFacebookUrl" dynamodbav:"owned_club_facebook_url"`
	ClubID                *string    `json:"clubId" dynamodbav:"club_id"`
	ClubName              *string    `json:"clubName" dynamodbav:"club_name"`
	ClubAffiliationDate   *time.Time `json:"clubAffiliationDate" dynamodbav:"club_affiliation_date"`
	CreatedAt             time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt             time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
}

// NewUserProfile returns the initial profile for a freshly created identity.
func NewUserProfile(uid, email string, now time.Time) *UserProfile {
	return &UserProfile{
		UID:       uid,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateUserRequest is the payload accepted by the updateUser placeholder.
type UpdateUserRequest struct {
	UID         string                 `json:"uid"`
	ProfileData map[string]interface{} `json:"profileData"`
}
