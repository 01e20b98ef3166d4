package notion

import (
	"fmt"
	"time"
)

// RichText is a Notion rich text object
type RichText struct {
	Type      string `json:"type,omitempty"`
	Text      *Text  `json:"text,omitempty"`
	PlainText string `json:"plain_text,omitempty"`
}

type Text struct {
	Content string `json:"content"`
}

// DateValue is the value of a date property. Start and End are ISO 8601.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// Property is a page property value. Only the fields of its kind are set.
type Property struct {
	Type     string     `json:"type,omitempty"`
	Title    []RichText `json:"title,omitempty"`
	RichText []RichText `json:"rich_text,omitempty"`
	Date     *DateValue `json:"date,omitempty"`
	Number   *float64   `json:"number,omitempty"`
}

// Properties maps property names to values
type Properties map[string]Property

// TitleProperty builds a title property holding s
func TitleProperty(s string) Property {
	return Property{Title: []RichText{{Type: "text", Text: &Text{Content: s}}}}
}

// TextProperty builds a rich text property holding s
func TextProperty(s string) Property {
	return Property{RichText: []RichText{{Type: "text", Text: &Text{Content: s}}}}
}

// NumberProperty builds a number property
func NumberProperty(n float64) Property {
	return Property{Number: &n}
}

// DateProperty builds a date property; end may be empty
func DateProperty(start, end string) Property {
	return Property{Date: &DateValue{Start: start, End: end}}
}

// PlainText concatenates the text of a title or rich text property
func (p Property) PlainText() string {
	parts := p.Title
	if len(parts) == 0 {
		parts = p.RichText
	}
	var s string
	for _, rt := range parts {
		switch {
		case rt.PlainText != "":
			s += rt.PlainText
		case rt.Text != nil:
			s += rt.Text.Content
		}
	}
	return s
}

type Parent struct {
	DatabaseID string `json:"database_id"`
}

type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// EmojiIcon builds an emoji page icon
func EmojiIcon(emoji string) *Icon {
	return &Icon{Type: "emoji", Emoji: emoji}
}

// CreatePageRequest is the body of POST /v1/pages
type CreatePageRequest struct {
	Parent     Parent     `json:"parent"`
	Properties Properties `json:"properties"`
	Icon       *Icon      `json:"icon,omitempty"`
}

// Page is a database row
type Page struct {
	Object      string     `json:"object"`
	ID          string     `json:"id"`
	URL         string     `json:"url,omitempty"`
	CreatedTime time.Time  `json:"created_time"`
	Properties  Properties `json:"properties"`
}

// Filter is a property filter or an "and" compound of filters
type Filter struct {
	Property string         `json:"property,omitempty"`
	Date     *DateCondition `json:"date,omitempty"`
	And      []Filter       `json:"and,omitempty"`
}

type DateCondition struct {
	Equals     string `json:"equals,omitempty"`
	OnOrAfter  string `json:"on_or_after,omitempty"`
	OnOrBefore string `json:"on_or_before,omitempty"`
}

type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

// QueryRequest is the body of POST /v1/databases/{id}/query
type QueryRequest struct {
	Filter      *Filter `json:"filter,omitempty"`
	Sorts       []Sort  `json:"sorts,omitempty"`
	StartCursor string  `json:"start_cursor,omitempty"`
	PageSize    int     `json:"page_size,omitempty"`
}

type QueryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// APIError is an error response from the Notion API
type APIError struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api error %d %s: %s", e.Status, e.Code, e.Message)
}
