package domain

// User is an account on the job board.
type User struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Role            string `json:"role,omitempty"`
	Location        string `json:"location,omitempty"`
	JobTitle        string `json:"jobTitle,omitempty"`
	ExperienceLevel string `json:"experienceLevel,omitempty"`
	Bio             string `json:"bio,omitempty"`
	Phone           string `json:"phone,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

// FullName joins first and last name, falling back to the email.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}
