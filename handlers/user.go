package handlers

import (
	"net/http"

	"mdrive/utils"

	"github.com/gin-gonic/gin"
)

type UpdateUsernameRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
}

func GetStorage(c *gin.Context) {
	userID := c.GetUint("user_id")
	out, err := getServices().User.GetStorage(c.Request.Context(), userID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, out)
}

func UpdateUsername(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req UpdateUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, err := getServices().User.UpdateUsername(c.Request.Context(), userID, req.Username)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, user)
}

func DeleteAccount(c *gin.Context) {
	userID := c.GetUint("user_id")
	err := getServices().User.DeleteAccount(c.Request.Context(), userID)
	if respondServiceError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
