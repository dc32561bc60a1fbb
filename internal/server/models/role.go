package models

import "time"

type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
}
