package models

import "time"

// Point is one entry of an aggregated series.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type TopItem struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type Summary struct {
	Rows    int            `json:"rows"`
	Columns int            `json:"columns"`
	Missing []MissingCount `json:"missing_values"`
	Numeric []ColumnStats  `json:"numeric"`
}

type MissingCount struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// ColumnStats covers the non-missing values of one numeric column.
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}
