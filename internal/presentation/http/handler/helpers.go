package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewpos-api/internal/presentation/http/dto/response"
)

// saleIDParam parses the :id path parameter. On failure it writes the 400
// response and returns false.
func saleIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid sale ID")
		return 0, false
	}
	return uint(id), true
}
