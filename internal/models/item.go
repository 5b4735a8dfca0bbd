package models

import "time"

type Item struct {
	ID          int64  `json:"id" db:"id"`
	OwnerID     int64  `json:"-" db:"owner_id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Available   bool   `json:"available" db:"available"`
	RequestID   *int64 `json:"requestId,omitempty" db:"request_id"`
}

type ItemPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

func (p ItemPatch) Apply(item *Item) {
	if name, ok := present(p.Name); ok {
		item.Name = name
	}
	if description, ok := present(p.Description); ok {
		item.Description = description
	}
	if p.Available != nil {
		item.Available = *p.Available
	}
}

type Comment struct {
	ID         int64     `json:"id" db:"id"`
	ItemID     int64     `json:"-" db:"item_id"`
	AuthorID   int64     `json:"-" db:"author_id"`
	AuthorName string    `json:"authorName" db:"author_name"`
	Text       string    `json:"text" db:"text"`
	Created    time.Time `json:"created" db:"created"`
}

// ItemView is an item as returned to clients. LastBooking and NextBooking
// are only filled for the item's owner.
type ItemView struct {
	Item
	LastBooking *time.Time `json:"lastBooking,omitempty"`
	NextBooking *time.Time `json:"nextBooking,omitempty"`
	Comments    []Comment  `json:"comments"`
}

// ItemRef is the short form of an item listed under an item request.
type ItemRef struct {
	ID        int64  `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	OwnerID   int64  `json:"ownerId" db:"owner_id"`
	RequestID int64  `json:"-" db:"request_id"`
}
