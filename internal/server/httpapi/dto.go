package httpapi

import (
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type registerRequest struct {
	Name     string `json:"name" validate:"omitempty,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Image    string `json:"image" validate:"omitempty,url"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type updateMediaRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=255"`
	AltText *string `json:"altText" validate:"omitempty,max=255"`
}

// userResponse exposes the public id as id and never the password hash.
type userResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"emailVerified"`
	Image         string    `json:"image,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Is2FAEnabled  bool      `json:"is2faEnabled"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:            u.PublicID,
		Name:          u.Name,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Image:         u.Image,
		Phone:         u.Phone,
		Is2FAEnabled:  u.Is2FAEnabled,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type sessionResponse struct {
	ID         string    `json:"id"`
	IPAddress  string    `json:"ipAddress"`
	UserAgent  string    `json:"userAgent"`
	DeviceName string    `json:"deviceName"`
	DeviceType string    `json:"deviceType"`
	ExpiresAt  time.Time `json:"expiresAt"`
	IsRevoked  bool      `json:"isRevoked"`
	Current    bool      `json:"current"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toSessionResponses(list []*models.Session, current *models.Session) []sessionResponse {
	out := make([]sessionResponse, 0, len(list))
	for _, s := range list {
		out = append(out, sessionResponse{
			ID:         s.PublicID,
			IPAddress:  s.IPAddress,
			UserAgent:  s.UserAgent,
			DeviceName: s.DeviceName,
			DeviceType: s.DeviceType,
			ExpiresAt:  s.ExpiresAt,
			IsRevoked:  s.IsRevoked,
			Current:    current != nil && s.ID == current.ID,
			CreatedAt:  s.CreatedAt,
		})
	}
	return out
}

type mediaResponse struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	MimeType      string    `json:"mimeType"`
	FileExtension string    `json:"fileExtension"`
	SecureURL     string    `json:"secureUrl"`
	FileSize      int64     `json:"fileSize"`
	Width         *int      `json:"width,omitempty"`
	Height        *int      `json:"height,omitempty"`
	Duration      *float64  `json:"duration,omitempty"`
	MediaType     string    `json:"mediaType"`
	AltText       string    `json:"altText,omitempty"`
	Caption       string    `json:"caption,omitempty"`
	Description   string    `json:"description,omitempty"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toMediaResponse(m *models.Media) mediaResponse {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return mediaResponse{
		ID:            m.PublicID,
		Filename:      m.Filename,
		MimeType:      m.MimeType,
		FileExtension: m.FileExtension,
		SecureURL:     m.SecureURL,
		FileSize:      m.FileSize,
		Width:         m.Width,
		Height:        m.Height,
		Duration:      m.Duration,
		MediaType:     m.MediaType,
		AltText:       m.AltText,
		Caption:       m.Caption,
		Description:   m.Description,
		Tags:          tags,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toMediaResponses(list []*models.Media) []mediaResponse {
	out := make([]mediaResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMediaResponse(m))
	}
	return out
}
