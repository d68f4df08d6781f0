package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// register handles local account creation
func (s *Server) register(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request format",
		})
	}

	result, err := s.auth.Register(c.Request().Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		return s.serviceError(c, err, "Failed to register user")
	}
	return c.JSON(http.StatusCreated, result)
}

// login handles local sign-in
func (s *Server) login(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request format",
		})
	}

	result, err := s.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.serviceError(c, err, "Failed to sign in")
	}
	return c.JSON(http.StatusOK, result)
}

// googleLogin handles Google ID token sign-in
func (s *Server) googleLogin(c echo.Context) error {
	var req struct {
		IDToken string `json:"id_token"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request format",
		})
	}

	result, err := s.auth.GoogleLogin(c.Request().Context(), req.IDToken)
	if err != nil {
		return s.serviceError(c, err, "Failed to sign in with Google")
	}
	return c.JSON(http.StatusOK, result)
}

// me returns the authenticated user
func (s *Server) me(c echo.Context) error {
	return c.JSON(http.StatusOK, s.currentUser(c))
}

// adminPing confirms admin access
func (s *Server) adminPing(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "pong"})
}

// listTemplates handles listing the visible template catalog
func (s *Server) listTemplates(c echo.Context) error {
	templates, err := s.templates.List(c.Request().Context(), s.currentUser(c))
	if err != nil {
		return s.serviceError(c, err, "Failed to list templates")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"templates": templates,
		"count":     len(templates),
	})
}

// listFiles handles listing the caller's files
func (s *Server) listFiles(c echo.Context) error {
	files, err := s.files.List(c.Request().Context(), s.currentUser(c))
	if err != nil {
		return s.serviceError(c, err, "Failed to list files")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"files": files,
		"count": len(files),
	})
}

// createFile handles file instantiation from a template
func (s *Server) createFile(c echo.Context) error {
	var req struct {
		TemplateID string `json:"template_id"`
		Name       string `json:"name"`
		IsPublic   bool   `json:"is_public"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request format",
		})
	}
	if req.TemplateID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "template_id is required",
		})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "name is required",
		})
	}

	file, err := s.files.Create(c.Request().Context(), s.currentUser(c), req.TemplateID, req.Name, req.IsPublic)
	if err != nil {
		return s.serviceError(c, err, "Failed to create file")
	}
	return c.JSON(http.StatusCreated, file)
}

// getFile handles fetching one file by id or code
func (s *Server) getFile(c echo.Context) error {
	file, err := s.files.Get(c.Request().Context(), s.currentUser(c), c.Param("id"))
	if err != nil {
		return s.serviceError(c, err, "Failed to get file")
	}
	return c.JSON(http.StatusOK, file)
}

// updateFile handles whole-document replacement
func (s *Server) updateFile(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Failed to read request body",
		})
	}

	file, err := s.files.UpdateDocument(c.Request().Context(), s.currentUser(c), c.Param("id"), payload)
	if err != nil {
		return s.serviceError(c, err, "Failed to update file")
	}
	return c.JSON(http.StatusOK, file)
}

// deleteFile handles file deletion
func (s *Server) deleteFile(c echo.Context) error {
	if err := s.files.Delete(c.Request().Context(), s.currentUser(c), c.Param("id")); err != nil {
		return s.serviceError(c, err, "Failed to delete file")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "File deleted successfully",
	})
}

// exportFile streams the file rendered as an xlsx workbook
func (s *Server) exportFile(c echo.Context) error {
	filename, data, err := s.files.Export(c.Request().Context(), s.currentUser(c), c.Param("id"))
	if err != nil {
		return s.serviceError(c, err, "Failed to export file")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, xlsxContentType, data)
}

// getSharedFile handles the public sharing link
func (s *Server) getSharedFile(c echo.Context) error {
	file, err := s.files.GetShared(c.Request().Context(), c.Param("token"))
	if err != nil {
		return s.serviceError(c, err, "Failed to get shared file")
	}
	return c.JSON(http.StatusOK, file)
}
