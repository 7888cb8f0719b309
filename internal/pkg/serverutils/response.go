package serverutils

// Response is the common envelope every endpoint returns.
type Response[T any] struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Code:    200,
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

func ErrorResponse(code int, message string) Response[any] {
	return Response[any]{
		Code:    code,
		Status:  "error",
		Message: message,
	}
}

func ValidationErrorResponse(fields map[string]string) Response[map[string]string] {
	return Response[map[string]string]{
		Code:    400,
		Status:  "error",
		Message: "Validation failed",
		Data:    fields,
	}
}
