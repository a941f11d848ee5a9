package model

import "time"

// PrizeMeta is the owner-only half of a prize, stored under
// `prizes/<id>`. It is created and deleted together with the matching
// PrizeInfo record; the generated id is the sole link between the two.
//
// Fields:
//  CreatorUID – uid of the shop owner who created the prize.
//  Quantity   – how many units the shop stocked (0..999).
//  CreatedAt  – creation timestamp.
type PrizeMeta struct {
	CreatorUID string    `json:"creator_uid"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
}

// PrizeInfo is the public half of a prize, stored under
// `prize-info/<id>`. Ticket holders see these fields on the
// redemption page.
//
// Fields:
//  Name         – display name.
//  Description  – display description, free text.
//  Image        – image URL.
//  LastModified – timestamp of the last edit to the display fields.
type PrizeInfo struct {
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Image        string    `json:"image"`
	LastModified time.Time `json:"last_modified"`
}

// PrizeEntry joins the two halves of one prize, tagged with the
// linking id and a 1-based position within the query result.
type PrizeEntry struct {
	Num  int       `json:"num"`
	ID   string    `json:"id"`
	Meta PrizeMeta `json:"metadata"`
	Info PrizeInfo `json:"info"`
}
