package models

// DiscoverRequest is the payload for starting a discovery run
type DiscoverRequest struct {
	Profile CandidateProfile `json:"profile" validate:"required"`
	Mode    ScrapeMode       `json:"mode" validate:"omitempty,oneof=full quick"`
	Execute bool             `json:"execute"`
}

// UpdateListingRequest updates the interaction state of a stored listing
type UpdateListingRequest struct {
	Status ListingStatus `json:"status" validate:"omitempty,oneof=new viewed saved applied hidden rejected"`
	Notes  string        `json:"notes" validate:"omitempty,max=2000"`
}
