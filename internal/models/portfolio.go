package models

import "time"

// ContactDetails holds the public contact channels of a profile owner.
type ContactDetails struct {
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// SocialAccounts holds optional social handles or links.
type SocialAccounts struct {
	LinkedIn  string `json:"linkedIn,omitempty"`
	Github    string `json:"github,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	X         string `json:"x,omitempty"`
}

// EmailCredentials is a mailbox login used to send contact notifications.
type EmailCredentials struct {
	Email    string `json:"email"`
	Passcode string `json:"passcode"`
}

// Profile is the portfolio owner's public record.
type Profile struct {
	// ID is the generated profile identifier.
	ID string `json:"id"`
	// Email is unique across profiles regardless of letter case.
	Email string `json:"email"`
	// Firstname is the owner's given name.
	Firstname string `json:"firstname"`
	// Lastname is the owner's family name.
	Lastname string `json:"lastname"`
	// Intro is a short headline.
	Intro string `json:"intro"`
	// Jobs lists job titles, at least one.
	Jobs []string `json:"jobs"`
	// Bio is the long-form biography.
	Bio string `json:"bio"`
	// ContactDetails are shown on the contact page.
	ContactDetails ContactDetails `json:"contactDetails"`
	// SocialAccounts are optional.
	SocialAccounts SocialAccounts `json:"socialAccounts"`
	// ProfileImageURL points at the avatar.
	ProfileImageURL string `json:"profileImageUrl"`
	// BioImageURL points at the bio picture.
	BioImageURL string `json:"bioImageUrl"`
	// DownloadCvURL points at the downloadable CV.
	DownloadCvURL string `json:"downloadCvUrl"`
	// AutoEmailCredentials override the default sender for contact mail.
	// Write-only: never rendered in responses.
	AutoEmailCredentials *EmailCredentials `json:"-"`
	// CreatedAt is the creation timestamp.
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the last modification timestamp.
	UpdatedAt time.Time `json:"updatedAt"`
}

// Job is a single position held at an organization.
type Job struct {
	Title       string `json:"title"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
	JobType     string `json:"jobType"`
	Description string `json:"description,omitempty"`
}

// WorkExperience groups jobs held at one organization, in order.
type WorkExperience struct {
	Organization string `json:"organization"`
	Jobs         []Job  `json:"jobs"`
}

// TechnicalSkill is a named skill with a numeric self-rating.
type TechnicalSkill struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// Education is a degree or course of study.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Stream      string `json:"stream"`
	StartYear   string `json:"startYear"`
	EndYear     string `json:"endYear,omitempty"`
}

// Certification is an issued certificate.
type Certification struct {
	Name     string `json:"name"`
	Issuer   string `json:"issuer"`
	IssuedOn string `json:"issuedOn"`
}

// Resume belongs to exactly one profile.
type Resume struct {
	ID              string           `json:"id"`
	ProfileID       string           `json:"profileId"`
	WorkExperiences []WorkExperience `json:"workExperiences"`
	TechnicalSkills []TechnicalSkill `json:"technicalSkills"`
	Educations      []Education      `json:"educations"`
	Certifications  []Certification  `json:"certifications"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// Project is a showcased piece of work owned by a profile.
type Project struct {
	ID            string    `json:"id"`
	ProfileID     string    `json:"profileId"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"imageUrl"`
	Tools         []string  `json:"tools"`
	SourceCodeURL string    `json:"sourceCodeUrl,omitempty"`
	LiveURL       string    `json:"liveUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ContactInput is a visitor's message addressed to a profile.
type ContactInput struct {
	SenderEmail string
	SenderName  string
	Subject     string
	Message     string
	ToProfileID string
}

// ContactMessage is the stored record of a delivered contact message.
type ContactMessage struct {
	ID          string
	SenderEmail string
	SenderName  string
	Subject     string
	Message     string
	ToProfileID string
	CreatedAt   time.Time
}

// Envelope is a single outgoing HTML mail and the mailbox login it is sent
// with.
type Envelope struct {
	From     string
	Password string
	To       string
	Subject  string
	HTML     string
}
