package models

import "time"

// Media is an uploaded file stored in object storage.
type Media struct {
	ID              int64
	PublicID        string
	Filename        string
	MimeType        string
	FileExtension   string
	SecureURL       string
	FileSize        int64
	Width           *int
	Height          *int
	Duration        *float64
	StorageKey      string
	MediaType       string
	AltText         string
	Caption         string
	Description     string
	Tags            []string
	StorageMetadata map[string]any
	UploadedBy      int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
