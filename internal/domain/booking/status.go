package booking

import "fmt"

// Status is the persisted lifecycle state of a booking.
type Status string

const (
	StatusCreated  Status = "CREATED"
	StatusCanceled Status = "CANCELED"
	StatusRebooked Status = "REBOOKED"
)

// UpdatedLabel marks a booking in the response of a successful modification.
// It is presentation only and never stored.
const UpdatedLabel = "Updated"

var displayNames = map[Status]string{
	StatusCreated:  "Booked",
	StatusCanceled: "Canceled",
	StatusRebooked: "Rebooked",
}

// DisplayName returns the human readable name of a status.
func DisplayName(s Status) string {
	if name, ok := displayNames[s]; ok {
		return name
	}
	return string(s)
}

func (s Status) Valid() bool {
	_, ok := displayNames[s]
	return ok
}

// Active reports whether a booking in this status still occupies its dates.
func (s Status) Active() bool {
	return s.Valid() && s != StatusCanceled
}

func (s Status) String() string {
	return string(s)
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("booking: unknown status %q", raw)
	}
	return s, nil
}
