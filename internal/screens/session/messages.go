package session

import "time"

// clockMsg redraws the countdown and picks up expiry.
type clockMsg time.Time
