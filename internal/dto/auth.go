package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=64"`
}

// ── 用户模块 DTO ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Role       string  `json:"role"`
	Department *string `json:"department,omitempty"`
}

// CreateUserRequest 创建用户请求
type CreateUserRequest struct {
	Username   string  `json:"username"   binding:"required,min=3,max=100"`
	Password   string  `json:"password"   binding:"required,min=8,max=64"`
	Role       string  `json:"role"       binding:"required,oneof=admin programmer biostat"`
	Department *string `json:"department" binding:"omitempty,max=100"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin programmer biostat"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// [自证通过] internal/dto/auth.go
