package models

import "time"

type ItemRequest struct {
	ID          int64     `json:"id" db:"id"`
	RequestorID int64     `json:"-" db:"requestor_id"`
	Description string    `json:"description" db:"description"`
	Created     time.Time `json:"created" db:"created"`
}

type ItemRequestView struct {
	ItemRequest
	Items []ItemRef `json:"items"`
}
