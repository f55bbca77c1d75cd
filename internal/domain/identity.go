package domain

import "time"

// Identity is an authenticated user as seen by the chat core. It is a
// read-only value object; accounts are created and mutated by the auth
// service, never here.
type Identity struct {
	ID    string
	Name  string
	Email string
}

// User is the persisted account record backing an Identity.
type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Identity returns the read-only identity view of a user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Room is a named, persistent group-chat scope with a participant list.
// The core only reads participants to decide room delivery scope.
type Room struct {
	ID           string
	Name         string
	Description  string
	CreatedBy    string
	Participants []string
	CreatedAt    time.Time
}

// HasParticipant reports whether the given user belongs to the room.
func (r *Room) HasParticipant(userID string) bool {
	for _, id := range r.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
