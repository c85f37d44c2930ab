package domain

import "time"

// CREATE TABLE price_alerts (
//     id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     user_id       BIGINT NOT NULL,
//     product_name  TEXT NOT NULL,
//     alert_price   NUMERIC NOT NULL,
//     created_at    TIMESTAMPTZ DEFAULT NOW(),
//     updated_at    TIMESTAMPTZ DEFAULT NOW(),
//     UNIQUE (user_id, product_name)
// );

type PriceAlert struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"column:user_id;not null;uniqueIndex:idx_alert_user_product" json:"user_id"`
	ProductName string    `gorm:"column:product_name;type:varchar(255);not null;uniqueIndex:idx_alert_user_product" json:"product_name"`
	AlertPrice  float64   `gorm:"column:alert_price;type:numeric;not null" json:"alert_price"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (PriceAlert) TableName() string {
	return "price_alerts"
}
