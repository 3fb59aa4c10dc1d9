package models

import (
	"time"
)

// GeoLocation геоданные клика. Реального lookup нет,
// пока всегда записывается placeholder "Unknown".
type GeoLocation struct {
	Country string `json:"country"`
	City    string `json:"city"`
	Region  string `json:"region"`
}

// UnknownGeoLocation возвращает placeholder для кликов без геоданных.
func UnknownGeoLocation() GeoLocation {
	return GeoLocation{
		Country: "Unknown",
		City:    "Unknown",
		Region:  "Unknown",
	}
}

// Click запись одного клика. GeoLocation хранится сериализованной строкой JSON.
type Click struct {
	ID          int64     `json:"id"`
	Shortcode   string    `json:"shortcode"`
	Timestamp   time.Time `json:"timestamp"`
	Referrer    string    `json:"referrer"`
	GeoLocation string    `json:"geo_location"`
}

// ClickDetail элемент истории кликов в статистике,
// геоданные уже десериализованы.
type ClickDetail struct {
	Timestamp   time.Time   `json:"timestamp"`
	Referrer    string      `json:"referrer"`
	GeoLocation GeoLocation `json:"geoLocation"`
}
