package models

// Class represents a classification label. Labels are created lazily on
// first use and are never renamed.
type Class struct {
	ClassID uint   `gorm:"column:classID;primaryKey;autoIncrement"`
	Label   string `gorm:"column:class;type:text;not null;uniqueIndex"`
}

func (Class) TableName() string {
	return "CLASS"
}
