package models

// Junction links a Media row to a Class row. The pair is the primary key,
// so an association exists at most once.
type Junction struct {
	ImageID uint `gorm:"column:imageID;primaryKey;autoIncrement:false"`
	ClassID uint `gorm:"column:classID;primaryKey;autoIncrement:false"`
}

func (Junction) TableName() string {
	return "JUNCTION"
}
