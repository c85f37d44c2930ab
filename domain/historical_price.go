package domain

import (
	"database/sql"
	"time"
)

// CREATE TABLE historical_prices (
//     id            BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
//     product_name  TEXT NOT NULL,
//     price         NUMERIC,
//     date          DATE NOT NULL
// );

type HistoricalPrice struct {
	ID          uint64          `gorm:"primaryKey;autoIncrement" json:"-"`
	ProductName string          `gorm:"column:product_name;type:varchar(255);not null;index" json:"product_name"`
	Price       sql.NullFloat64 `gorm:"column:price;type:numeric" json:"-"`
	Date        time.Time       `gorm:"column:date;type:date;not null;index" json:"-"`
}

func (HistoricalPrice) TableName() string {
	return "historical_prices"
}

// TrendPoint is the API shape of a HistoricalPrice row. Price is nil when the
// source had no value for that day.
type TrendPoint struct {
	Date  string   `json:"date"`
	Price *float64 `json:"price"`
}
