package handlers

import (
	"mdrive/utils"

	"github.com/gin-gonic/gin"
)

func Search(c *gin.Context) {
	userID := c.GetUint("user_id")

	out, err := getServices().Search.Search(c.Request.Context(), userID, c.Query("q"))
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, out)
}
