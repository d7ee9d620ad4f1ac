package models

type EventStatus string

const (
	EventPublished EventStatus = "Published"
	EventDraft     EventStatus = "Draft"
	EventArchived  EventStatus = "Archived"
)

func (s EventStatus) Valid() bool {
	return s == EventPublished || s == EventDraft || s == EventArchived
}

type Event struct {
	ID          string      `json:"_id,omitempty"`
	Title       string      `json:"title"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	Location    string      `json:"location"`
	Description string      `json:"description"`
	Status      EventStatus `json:"status"`
	ImageURL    string      `json:"imageUrl"`
	Category    string      `json:"category"`
}

const DefaultSSCBatch = "২০২৬"

// RegistrationInput is the fixed sign-up form for an event.
type RegistrationInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Instagram string `json:"instagram"`
	SSCBatch  string `json:"sscBatch"`
	Section   string `json:"section"`
}

// Registration ties a RegistrationInput to an event. EventName is copied
// at registration time and survives deletion of the event.
type Registration struct {
	ID        string `json:"_id,omitempty"`
	EventID   string `json:"eventId"`
	EventName string `json:"eventName"`
	RegistrationInput
	SubmittedAt string `json:"submittedAt"`
}
