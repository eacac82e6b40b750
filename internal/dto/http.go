package dto

import "net/http"

type BaseResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewBaseResponse(status int, message string, data interface{}) *BaseResponse {
	return &BaseResponse{
		Status:  status,
		Message: message,
		Data:    data,
	}
}

func NewSuccessResponse(data interface{}) *BaseResponse {
	return NewBaseResponse(http.StatusOK, "success", data)
}

func NewBadRequestResponse(message string) *BaseResponse {
	return NewBaseResponse(http.StatusBadRequest, message, nil)
}

func NewInternalErrorResponse() *BaseResponse {
	return NewBaseResponse(http.StatusInternalServerError, "internal server error", nil)
}
