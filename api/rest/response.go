package rest

import "github.com/gin-gonic/gin"

// Envelope is the uniform REST response shape: {success, data?, error?, message?}.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func ok(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func fail(c *gin.Context, status int, err error, message string) {
	envelope := Envelope{Success: false, Message: message}
	if err != nil {
		envelope.Error = err.Error()
	}
	c.JSON(status, envelope)
}
