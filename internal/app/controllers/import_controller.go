package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/curriculum/planner/internal/app/models/dto"
	"github.com/curriculum/planner/internal/importer"
	"github.com/curriculum/planner/internal/middleware"
	"github.com/curriculum/planner/internal/pkg/apperrors"
	"github.com/curriculum/planner/internal/pkg/filestorage"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// importSubPath is where uploaded catalogs are archived inside the storage directory.
const importSubPath = "imports"

// CatalogImporter applies parsed catalog records.
type CatalogImporter interface {
	Apply(ctx context.Context, records []importer.Record) (*importer.Result, error)
}

// ImportController accepts catalog spreadsheets over HTTP.
type ImportController struct {
	catalog CatalogImporter
	uploads filestorage.FileStorage
	logger  zerolog.Logger
}

// NewImportController creates a new ImportController
func NewImportController(catalog CatalogImporter, uploads filestorage.FileStorage, logger zerolog.Logger) *ImportController {
	return &ImportController{catalog: catalog, uploads: uploads, logger: logger}
}

// ImportCatalog uploads and applies a catalog file
// @Summary Import catalog
// @Description Upload a CSV or XLSX catalog with program, course_code, course_name and optional credits, description and prerequisites columns. Row problems are reported, not fatal.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Catalog file (.csv, .xlsx)"
// @Param sheet formData string false "Worksheet of an XLSX file"
// @Param dryRun query bool false "Validate only"
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} dto.ErrorResponse "Missing or unreadable file"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/import [post]
func (c *ImportController) ImportCatalog(ctx *gin.Context) {
	dryRun, _ := strconv.ParseBool(ctx.DefaultQuery("dryRun", "false"))

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("a catalog file is required in the \"file\" form field"))
		return
	}
	if !importer.Supported(fileHeader.Filename) {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("catalog must be a .csv or .xlsx file"))
		return
	}

	stored, err := c.uploads.Save(fileHeader, importSubPath)
	if err != nil {
		middleware.HandleAPIError(ctx, fmt.Errorf("storing upload: %w", err))
		return
	}

	records, err := importer.ReadFile(stored.Path, ctx.PostForm("sheet"))
	if err != nil {
		c.discard(stored)
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError(err.Error()))
		return
	}

	resp := dto.ImportResponse{File: stored.Name, OriginalName: stored.OriginalName, DryRun: dryRun, Rows: len(records)}
	if dryRun {
		c.discard(stored)
		resp.Errors = rowErrors(importer.Validate(records))
		resp.Skipped = len(resp.Errors)
		ctx.JSON(http.StatusOK, resp)
		return
	}

	result, err := c.catalog.Apply(ctx.Request.Context(), records)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp.ProgramsCreated = result.ProgramsCreated
	resp.CoursesCreated = result.CoursesCreated
	resp.Groups = result.Groups
	resp.Members = result.Members
	resp.Skipped = result.Skipped
	resp.Errors = rowErrors(result.Errors)

	c.logger.Info().Str("file", stored.Name).Str("originalName", stored.OriginalName).
		Int("rows", resp.Rows).Int("errors", len(resp.Errors)).Msg("Catalog uploaded and imported")
	ctx.JSON(http.StatusOK, resp)
}

func (c *ImportController) discard(stored *filestorage.StoredFile) {
	if err := c.uploads.Delete(stored); err != nil {
		c.logger.Warn().Err(err).Str("file", stored.Name).Msg("Failed to remove discarded upload")
	}
}

func rowErrors(errs []importer.RowError) []dto.ImportRowError {
	out := make([]dto.ImportRowError, 0, len(errs))
	for _, e := range errs {
		out = append(out, dto.ImportRowError{Row: e.Row, Message: e.Message})
	}
	return out
}
