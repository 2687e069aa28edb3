package models

// Media represents one catalogued file. Hash is the identity of the content,
// Path is the current location and may change when the same content is
// rediscovered elsewhere.
type Media struct {
	ImageID uint   `gorm:"column:imageID;primaryKey;autoIncrement"`
	Hash    string `gorm:"column:hash;type:text;not null;uniqueIndex"`
	Path    string `gorm:"column:path;type:text;not null"`
	Hidden  bool   `gorm:"column:hidden;not null;default:false"`
}

func (Media) TableName() string {
	return "MEDIA"
}
