package dto

type FavoriteRequest struct {
	ItemID string `json:"item_id"`
}

type FavoriteResponse struct {
	OK bool `json:"ok"`
}
