package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cwbudde/algo-eeg/eeg"
)

// Body is the API response envelope.
type Body struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Body{Success: false, Error: msg})
}

var errSessionNotFound = errors.New("session not found")

// statusOf maps an error to its HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, eeg.ErrParameter):
		return http.StatusBadRequest
	case errors.Is(err, eeg.ErrDecode), errors.Is(err, eeg.ErrNoUsableChannels):
		return http.StatusUnprocessableEntity
	case errors.Is(err, eeg.ErrEndOfStream):
		return http.StatusConflict
	case errors.Is(err, eeg.ErrNotInitialized):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func failErr(c *gin.Context, err error) {
	fail(c, statusOf(err), err.Error())
}
