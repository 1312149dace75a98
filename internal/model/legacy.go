package model

import "time"

// Legacy asset records from the retired blockchain-game product. They are
// metadata only: each is serialized to a JSON blob in the media store and
// mirrored best-effort to the remote ledger service. No lifecycle guarantee
// beyond "log and continue on failure".

// GameData describes a registered game title.
type GameData struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	URI         string    `json:"uri"`
	AuthorityID string    `json:"authorityId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TokenData describes a fungible in-game token.
type TokenData struct {
	ID        string    `json:"id"`
	GameID    string    `json:"gameId"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	URI       string    `json:"uri"`
	Decimals  int       `json:"decimals"`
	CreatedAt time.Time `json:"createdAt"`
}

// CollectionData groups NFTs under a game.
type CollectionData struct {
	ID        string    `json:"id"`
	GameID    string    `json:"gameId"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	URI       string    `json:"uri"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// NFTData is a single asset inside a collection.
type NFTData struct {
	ID           string    `json:"id"`
	CollectionID string    `json:"collectionId"`
	Name         string    `json:"name"`
	Symbol       string    `json:"symbol"`
	URI          string    `json:"uri"`
	CreatedAt    time.Time `json:"createdAt"`
}
