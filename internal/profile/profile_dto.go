package profile

type CreateProfileRequest struct {
	FullName  string  `json:"full_name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=6"`
	Role      string  `json:"role" binding:"required,oneof=ADMIN MANAGER EMPLOYEE"`
	ManagerID *string `json:"manager_id"`
}

type UpdateProfileRequest struct {
	FullName  string  `json:"full_name" binding:"required"`
	Role      string  `json:"role" binding:"required,oneof=ADMIN MANAGER EMPLOYEE"`
	ManagerID *string `json:"manager_id"`
	IsActive  *bool   `json:"is_active" binding:"required"`
}

type ProfileResponse struct {
	ID        string  `json:"id"`
	FullName  string  `json:"full_name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	ManagerID *string `json:"manager_id,omitempty"`
	IsActive  bool    `json:"is_active"`
}
