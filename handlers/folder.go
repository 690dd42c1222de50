package handlers

import (
	"net/http"
	"strconv"

	"mdrive/utils"

	"github.com/gin-gonic/gin"
)

type CreateFolderRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	ParentID *uint  `json:"parent_id"`
}

type RenameFolderRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type MoveFolderRequest struct {
	NewParentID *uint `json:"new_parent_id"`
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.Error(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return uint(id), true
}

// folderIDQuery reads an optional ?folder_id= style query value; absent or
// zero means the user's root folder.
func folderIDQuery(c *gin.Context, name string) (*uint, bool) {
	raw := c.Query(name)
	if raw == "" || raw == "0" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid "+name)
		return nil, false
	}
	val := uint(id)
	return &val, true
}

func CreateFolder(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folder.CreateFolder(c.Request.Context(), userID, req.Name, req.ParentID)
	if respondServiceError(c, err) {
		return
	}
	utils.Created(c, folder)
}

func GetFolderContents(c *gin.Context) {
	userID := c.GetUint("user_id")
	folderID, ok := folderIDQuery(c, "folder_id")
	if !ok {
		return
	}

	contents, err := getServices().Folder.GetContents(c.Request.Context(), userID, folderID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, contents)
}

func GetBreadcrumbs(c *gin.Context) {
	userID := c.GetUint("user_id")
	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	crumbs, err := getServices().Folder.GetBreadcrumbs(c.Request.Context(), userID, &folderID)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, gin.H{"breadcrumbs": crumbs})
}

func RenameFolder(c *gin.Context) {
	userID := c.GetUint("user_id")
	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RenameFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	folder, err := getServices().Folder.RenameFolder(c.Request.Context(), userID, folderID, req.Name)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, folder)
}

func MoveFolder(c *gin.Context) {
	userID := c.GetUint("user_id")
	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req MoveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	out, err := getServices().Folder.MoveFolder(c.Request.Context(), userID, folderID, req.NewParentID)
	if respondServiceError(c, err) {
		return
	}
	if out.AlreadyPresent {
		utils.Success(c, gin.H{"folder": out.Folder, "message": "Folder already present"})
		return
	}
	utils.Success(c, out.Folder)
}

func DeleteFolder(c *gin.Context) {
	userID := c.GetUint("user_id")
	folderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := getServices().Folder.DeleteFolder(c.Request.Context(), userID, folderID)
	if respondServiceError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
