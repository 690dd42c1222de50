package handlers

import (
	"net/http"

	"mdrive/services"
	"mdrive/utils"

	"github.com/gin-gonic/gin"
)

type RenameFileRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

type MoveFileRequest struct {
	FolderID *uint `json:"folder_id"`
}

func UploadFile(c *gin.Context) {
	userID := c.GetUint("user_id")

	folderID, ok := folderIDQuery(c, "folder_id")
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		utils.Error(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	src, err := header.Open()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, "Failed to read uploaded file")
		return
	}
	defer src.Close()

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	file, err := getServices().File.Upload(c.Request.Context(), userID, services.UploadFileInput{
		FolderID:     folderID,
		Name:         c.PostForm("name"),
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Size:         header.Size,
		Content:      src,
	})
	if respondServiceError(c, err) {
		return
	}
	utils.Created(c, file)
}

func RenameFile(c *gin.Context) {
	userID := c.GetUint("user_id")
	fileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RenameFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	file, err := getServices().File.RenameFile(c.Request.Context(), userID, fileID, req.Name)
	if respondServiceError(c, err) {
		return
	}
	utils.Success(c, file)
}

func MoveFile(c *gin.Context) {
	userID := c.GetUint("user_id")
	fileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req MoveFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	out, err := getServices().File.MoveFile(c.Request.Context(), userID, fileID, req.FolderID)
	if respondServiceError(c, err) {
		return
	}
	if out.AlreadyPresent {
		utils.Success(c, gin.H{"file": out.File, "message": "File already present"})
		return
	}
	utils.Success(c, out.File)
}

func DeleteFile(c *gin.Context) {
	userID := c.GetUint("user_id")
	fileID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := getServices().File.DeleteFile(c.Request.Context(), userID, fileID)
	if respondServiceError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
