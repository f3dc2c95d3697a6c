package wire

// Credentials is the login body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the register body.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User identifies a logged-in guard.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserResponse is returned by login and register.
type UserResponse struct {
	Envelope
	User *User `json:"user,omitempty"`
}

// ForgotPasswordRequest asks for a reset token.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPasswordResponse carries the issued reset token.
type ForgotPasswordResponse struct {
	Envelope
	Token string `json:"token,omitempty"`
}

// ProfileRequest selects a user profile.
type ProfileRequest struct {
	ID int64 `json:"id"`
}

// Profile holds the editable guard details.
type Profile struct {
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
	ProfilePhoto  string `json:"profile_photo"`
}

// ProfileResponse is returned by the profile endpoint.
type ProfileResponse struct {
	Envelope
	Profile *Profile `json:"profile,omitempty"`
}

// ProfileUpdate is the profile update body. An empty Password keeps the current one.
type ProfileUpdate struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
	Password      string `json:"password,omitempty"`
}

// Student is a face-registry entry. Photos are held by the recognition service.
type Student struct {
	Name       string `json:"name"`
	LRN        string `json:"lrn"`
	GradeLevel string `json:"grade_level"`
	Section    string `json:"section"`
}
