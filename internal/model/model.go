package model

// AssetKind names an entity that owns a single file slot.
type AssetKind string

const (
	KindVehicle  AssetKind = "vehicle"
	KindCampaign AssetKind = "campaign"
	KindDocument AssetKind = "document"
)

func (k AssetKind) Valid() bool {
	switch k {
	case KindVehicle, KindCampaign, KindDocument:
		return true
	}
	return false
}

// Optional reports whether the slot may be empty. A document row exists only
// for its file, so its slot can be replaced but never cleared.
func (k AssetKind) Optional() bool {
	return k == KindVehicle || k == KindCampaign
}

// AssetSlot is the URL column of one entity row.
// OwnerID is set for documents (the customer id) and empty otherwise.
type AssetSlot struct {
	Kind    AssetKind `json:"kind"`
	ID      int64     `json:"id"`
	OwnerID string    `json:"owner_id,omitempty"`
	URL     *string   `json:"url"`
}

// CurrentURL returns the stored URL or "" for an empty slot.
func (s AssetSlot) CurrentURL() string {
	if s.URL == nil {
		return ""
	}
	return *s.URL
}
