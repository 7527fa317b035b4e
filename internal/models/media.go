package models

// MediaModel is an entry in the media library backed by object storage.
type MediaModel struct {
	Base
	Key        string `json:"key"        gorm:"uniqueIndex;not null"`
	URL        string `json:"url"        gorm:"not null"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type"`
	Size       int64  `json:"size"`
	UploaderID string `json:"uploader_id" gorm:"index"`
}

func (MediaModel) TableName() string { return "media" }
