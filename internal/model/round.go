package model

// RoundRecord is one playable round: the catalog subject and its artwork
type RoundRecord struct {
	ExternalID  int    `json:"externalId"`
	DisplayName string `json:"displayName"`
	ImageRef    string `json:"imageRef"`
}

// Valid reports whether the record can be served to a player
func (r *RoundRecord) Valid() bool {
	return r != nil && r.ExternalID > 0 && r.DisplayName != "" && r.ImageRef != ""
}

// RoundView is what the client sees when a round starts; the answer stays server-side
type RoundView struct {
	ID    int    `json:"id"`
	Image string `json:"image"`
}

// View strips the answer from the record
func (r *RoundRecord) View() *RoundView {
	return &RoundView{
		ID:    r.ExternalID,
		Image: r.ImageRef,
	}
}
