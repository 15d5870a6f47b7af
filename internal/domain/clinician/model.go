package clinician

import "time"

type Clinician struct {
	ID        int
	Login     string
	Password  string // bcrypt hash
	FullName  string
	Role      string
	CreatedAt time.Time
}
