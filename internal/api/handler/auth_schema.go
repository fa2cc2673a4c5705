package handler

import "github.com/linguameet/linguameet-api/internal/core/domain"

type signupRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type onboardingRequest struct {
	FullName         string `json:"fullName"`
	Bio              string `json:"bio"`
	NativeLanguage   string `json:"nativeLanguage"`
	LearningLanguage string `json:"learningLanguage"`
	Location         string `json:"location"`
}

// missingFields lists the empty onboarding fields by their JSON names.
func (r *onboardingRequest) missingFields() []string {
	var missing []string
	if r.FullName == "" {
		missing = append(missing, "fullName")
	}
	if r.Bio == "" {
		missing = append(missing, "bio")
	}
	if r.NativeLanguage == "" {
		missing = append(missing, "nativeLanguage")
	}
	if r.LearningLanguage == "" {
		missing = append(missing, "learningLanguage")
	}
	if r.Location == "" {
		missing = append(missing, "location")
	}
	return missing
}

type authResponse struct {
	Success bool         `json:"success"`
	User    *domain.User `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

type onboardingErrorResponse struct {
	Message       string   `json:"message"`
	MissingFields []string `json:"missingFields"`
}
