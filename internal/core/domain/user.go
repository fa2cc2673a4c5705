package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrEmailExists = errors.New("email already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")

// User models a registered learner. PasswordHash is never serialized.
type User struct {
	ID               string `json:"id" bson:"_id,omitempty"`
	Email            string `json:"email" bson:"email"`
	FullName         string `json:"fullName" bson:"full_name"`
	PasswordHash     string `json:"-" bson:"password_hash"`
	ProfilePic       string `json:"profilePic" bson:"profile_pic"`
	IsOnboarded      bool   `json:"isOnboarded" bson:"is_onboarded"`
	Bio              string `json:"bio" bson:"bio"`
	NativeLanguage   string `json:"nativeLanguage" bson:"native_language"`
	LearningLanguage string `json:"learningLanguage" bson:"learning_language"`
	Location         string `json:"location" bson:"location"`
	// Friends holds the ids of mutually connected users. Membership is
	// symmetric and a user never appears in its own set.
	Friends   []string  `json:"friends" bson:"friends"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// HasFriend reports whether id is already in the user's friend set.
func (u *User) HasFriend(id string) bool {
	for _, f := range u.Friends {
		if f == id {
			return true
		}
	}
	return false
}
