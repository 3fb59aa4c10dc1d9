package models

import (
	"time"
)

// Status статус короткой ссылки, вычисляется из expiry на момент чтения.
// Явного поля статуса в БД нет.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

type ShortURL struct {
	ID          int64     `json:"id"`
	Shortcode   string    `json:"shortcode"`
	OriginalURL string    `json:"original_url"`
	CreatedAt   time.Time `json:"created_at"`
	Expiry      time.Time `json:"expiry"`
	Clicks      int64     `json:"clicks"`
}

// StatusAt вычисляет статус ссылки на момент времени now.
// Единственное место, где сравнивается expiry с текущим временем.
func (u *ShortURL) StatusAt(now time.Time) Status {
	if u.Expiry.After(now) {
		return StatusActive
	}
	return StatusExpired
}

type CreateShortURLInput struct {
	URL       string  `json:"url"`
	Validity  *int    `json:"validity,omitempty"`
	Shortcode *string `json:"shortcode,omitempty"`
}

type CreateShortURLResult struct {
	ShortLink string    `json:"shortLink"`
	Expiry    time.Time `json:"expiry"`
}

type ShortURLStats struct {
	Clicks       int64         `json:"clicks"`
	OriginalURL  string        `json:"originalURL"`
	CreationDate time.Time     `json:"creationDate"`
	Expiry       time.Time     `json:"expiry"`
	ClicksDetail []ClickDetail `json:"clicksDetail"`
}
