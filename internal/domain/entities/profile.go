package entities

import "time"

// Profile is the per-user document written by profile setup.
// Its existence is what marks an account's setup as complete.
type Profile struct {
	UserID        string    `json:"user_id" db:"user_id"`
	Name          string    `json:"name" db:"name"`
	City          string    `json:"city" db:"city"`
	Education     string    `json:"education" db:"education"`
	PreferredRole string    `json:"preferred_role" db:"preferred_role"`
	Experience    string    `json:"experience" db:"experience"`
	Skills        []string  `json:"skills" db:"skills"` // stored as JSON in DB
	Bio           string    `json:"bio,omitempty" db:"bio"`
	AvatarURL     *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Education levels offered by profile setup
var EducationOptions = []string{"High School", "Diploma", "Bachelors", "Masters", "PhD"}

// Roles a user can search jobs for
var RoleOptions = []string{
	"Frontend Developer",
	"Backend Developer",
	"Fullstack Developer",
	"Mobile Developer",
	"Data Scientist",
}

// Experience brackets in years
var ExperienceOptions = []string{"Fresher", "1-2", "3-5", "5+"}

// MissingFields returns the names of required fields left empty, in form order
func (p *Profile) MissingFields() []string {
	var missing []string
	required := []struct {
		name  string
		value string
	}{
		{"name", p.Name},
		{"education", p.Education},
		{"preferred_role", p.PreferredRole},
		{"city", p.City},
		{"experience", p.Experience},
	}
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// HasAvatar returns true if an avatar image has been uploaded
func (p *Profile) HasAvatar() bool {
	return p.AvatarURL != nil && *p.AvatarURL != ""
}
