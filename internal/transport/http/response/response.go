package response

import "github.com/gin-gonic/gin"

const (
	CodeBadRequest      = 40000
	CodeUnsupportedFile = 40001
	CodeFileTooLarge    = 40002
	CodeMissingAPIKey   = 40100
	CodeInvalidAPIKey   = 40300
	CodeSessionNotFound = 40401
	CodeSummaryNotFound = 40402
	CodeInternalServer  = 50000
	CodeProcessingError = 50001
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// OK writes body as the response document; endpoints define their own shapes.
func OK(c *gin.Context, body interface{}) {
	c.JSON(200, body)
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// Abort writes the error and stops the handler chain.
func Abort(c *gin.Context, httpStatus, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
