package domain

import "time"

// CREATE TABLE predictions (
//     id               BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id          BIGINT,
//     product_name     TEXT NOT NULL,
//     predicted_price  NUMERIC(12,2) NOT NULL,
//     prediction_date  DATE NOT NULL,
//     created_at       TIMESTAMPTZ DEFAULT NOW()
// );

type PredictionRecord struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         *uint     `gorm:"column:user_id" json:"user_id,omitempty"`
	ProductName    string    `gorm:"column:product_name;type:varchar(255);not null;index" json:"product_name"`
	PredictedPrice float64   `gorm:"column:predicted_price;type:numeric(12,2);not null" json:"predicted_price"`
	PredictionDate time.Time `gorm:"column:prediction_date;type:date;not null" json:"prediction_date"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PredictionRecord) TableName() string {
	return "predictions"
}

// PredictionResult is what the prediction flow hands back to the web layer.
// The price is authoritative even when Persisted is false.
type PredictionResult struct {
	Commodity      string  `json:"commodity"`
	PredictedPrice float64 `json:"predicted_price"`
	PredictionDate string  `json:"prediction_date"`
	LatestPrice    float64 `json:"latest_price"`
	LatestMonth    string  `json:"latest_month"`
	Persisted      bool    `json:"persisted"`
	Warning        string  `json:"warning,omitempty"`
}
