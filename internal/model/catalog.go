package model

// Role is the authorization role of a member.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type Theme struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// TimeSlot is a bookable start time, formatted as HH:MM.
type TimeSlot struct {
	ID      int64  `json:"id"`
	StartAt string `json:"start_at"`
}
