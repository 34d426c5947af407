// Package entity defines the core domain entities and validation logic for the application.
// It contains the news Article shown in feeds and saved as a bookmark, and the
// read-only emergency Alert reference data, along with their validation rules
// and domain-specific errors.
package entity

import "strings"

// Article represents one news story as shown to the user and as stored in the
// bookmark set. URL is the identity of an article: two articles with the same
// URL are the same bookmark regardless of their other fields.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url"`
	Date        string `json:"date"`
	Source      string `json:"source,omitempty"`
}

// SameAs reports whether a and other identify the same story.
func (a Article) SameAs(other Article) bool {
	return a.URL == other.URL
}

// Validate checks the fields a stored article must carry.
// Description, Image and Source are optional.
func (a Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if err := ValidateURL(a.URL); err != nil {
		return err
	}
	if strings.TrimSpace(a.Date) == "" {
		return &ValidationError{Field: "date", Message: "is required"}
	}
	return nil
}
