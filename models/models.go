package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultBlendingMethod = "smart"
	DefaultMimeType       = "image/jpeg"
)

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	OpenID       string    `gorm:"column:open_id;size:64;not null;uniqueIndex" json:"openId"`
	Name         string    `gorm:"type:text" json:"name"`
	Email        string    `gorm:"size:320" json:"email"`
	LoginMethod  string    `gorm:"size:64" json:"loginMethod"`
	Role         string    `gorm:"size:16;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}

type Thumbnail struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"userId"`
	User      *User           `json:"-" gorm:"constraint:OnUpdate:CASCADE;"`
	FileName  string          `gorm:"size:255;not null" json:"fileName"`
	FileKey   string          `gorm:"size:255;not null" json:"fileKey"`
	FileURL   string          `gorm:"column:file_url;type:text;not null" json:"fileUrl"`
	MimeType  string          `gorm:"size:100;not null;default:image/jpeg" json:"mimeType"`
	FileSize  int64           `gorm:"not null" json:"fileSize"`
	Width     *int            `json:"width"`
	Height    *int            `json:"height"`
	Analysis  *datatypes.JSON `json:"analysis,omitempty"` // legacy copy of the latest analysis
	Analyses  []Analysis      `json:"analyses"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TextElement is a piece of text found on a thumbnail and where it sits.
type TextElement struct {
	Text     string `json:"text"`
	Position string `json:"position"`
}

type Analysis struct {
	ID              uint                             `gorm:"primarykey" json:"id"`
	ThumbnailID     uint                             `gorm:"not null;index" json:"thumbnailId"`
	Thumbnail       *Thumbnail                       `json:"-"`
	DominantColors  datatypes.JSONSlice[string]      `json:"dominantColors"`
	TextElements    datatypes.JSONSlice[TextElement] `json:"textElements"`
	Composition     *string                          `gorm:"type:text" json:"composition"`
	EngagementScore *int                             `json:"engagementScore"`
	Suggestions     datatypes.JSONSlice[string]      `json:"suggestions"`
	CreatedAt       time.Time                        `json:"createdAt"`
}

type Mix struct {
	ID             uint                      `gorm:"primarykey" json:"id"`
	UserID         uint                      `gorm:"not null;index" json:"userId"`
	User           *User                     `json:"-" gorm:"constraint:OnUpdate:CASCADE;"`
	Name           string                    `gorm:"size:255;not null" json:"name"`
	Description    *string                   `gorm:"type:text" json:"description"`
	SourceThumbIDs datatypes.JSONSlice[uint] `gorm:"column:source_thumb_ids;not null" json:"sourceThumbIds"`
	ResultFileKey  *string                   `gorm:"size:255" json:"resultFileKey"`
	ResultFileURL  *string                   `gorm:"column:result_file_url;type:text" json:"resultFileUrl"`
	BlendingMethod string                    `gorm:"size:100;not null;default:smart" json:"blendingMethod"`
	RAGSuggestions *datatypes.JSON           `gorm:"column:rag_suggestions" json:"ragSuggestions,omitempty"`
	CreatedAt      time.Time                 `json:"createdAt"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
}

// All lists every model in migration order.
func All() []any {
	return []any{&User{}, &Thumbnail{}, &Analysis{}, &Mix{}}
}
