package echoapi

import "github.com/trezcool/shule/core"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return core.Validate.Struct(r)
}

type LoginResponse struct {
	Token string `json:"token"`
}

type SuccessResponse struct {
	Success string `json:"success"`
}

type GenerateReportCardRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Term      string `json:"term" validate:"required,term"`
	SessionID string `json:"session_id" validate:"required"`
}

func (r *GenerateReportCardRequest) Validate() error {
	return core.Validate.Struct(r)
}
