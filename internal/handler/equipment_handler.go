package handler

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/service"
)

// EquipmentHandler serves flaw-detector units and their licenses.
type EquipmentHandler struct {
	svc      *service.EquipmentService
	licenses *service.LicenseService
}

func NewEquipmentHandler(svc *service.EquipmentService, licenses *service.LicenseService) *EquipmentHandler {
	return &EquipmentHandler{svc: svc, licenses: licenses}
}

// Upsert creates or updates a unit keyed by serial number. The
// equipment_type field in the body selects the model.
func (h *EquipmentHandler) Upsert(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		BadRequest(c, "Failed to read request body")
		return
	}

	var probe struct {
		EquipmentType string `json:"equipment_type"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	actorID := GetUserID(c)

	switch probe.EquipmentType {
	case entity.EquipmentTypeKalmar32:
		var unit entity.Kalmar32
		if err := json.Unmarshal(body, &unit); err != nil {
			BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
		saved, created, err := h.svc.UpsertKalmar(c.Request.Context(), &unit, actorID)
		if err != nil {
			HandleError(c, err)
			return
		}
		respondUpsert(c, saved, created)
	case entity.EquipmentTypePhasar32:
		var unit entity.Phasar32
		if err := json.Unmarshal(body, &unit); err != nil {
			BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
		saved, created, err := h.svc.UpsertPhasar(c.Request.Context(), &unit, actorID)
		if err != nil {
			HandleError(c, err)
			return
		}
		respondUpsert(c, saved, created)
	default:
		BadRequest(c, "Unknown equipment type")
	}
}

func respondUpsert(c *gin.Context, data interface{}, created bool) {
	if created {
		Created(c, data)
		return
	}
	Success(c, data)
}

// ListKalmars returns a page of Kalmar32 units.
func (h *EquipmentHandler) ListKalmars(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword": c.Query("keyword"),
	}

	units, total, err := h.svc.ListKalmars(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(units, page, pageSize, total))
}

// GetKalmar returns one Kalmar32 unit.
func (h *EquipmentHandler) GetKalmar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Unit ID is required")
		return
	}

	unit, err := h.svc.GetKalmar(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, unit)
}

// GetKalmarBySerial looks a Kalmar32 unit up by serial number.
func (h *EquipmentHandler) GetKalmarBySerial(c *gin.Context) {
	serial := c.Param("serial")
	if serial == "" {
		BadRequest(c, "Serial number is required")
		return
	}

	unit, err := h.svc.GetKalmarBySerial(c.Request.Context(), serial)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, unit)
}

// DeleteKalmar removes a Kalmar32 unit and its reports.
func (h *EquipmentHandler) DeleteKalmar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Unit ID is required")
		return
	}

	if err := h.svc.DeleteKalmar(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// ListPhasars returns a page of Phasar32 units.
func (h *EquipmentHandler) ListPhasars(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword": c.Query("keyword"),
	}

	units, total, err := h.svc.ListPhasars(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(units, page, pageSize, total))
}

// GetPhasar returns one Phasar32 unit.
func (h *EquipmentHandler) GetPhasar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Unit ID is required")
		return
	}

	unit, err := h.svc.GetPhasar(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, unit)
}

// GetPhasarBySerial looks a Phasar32 unit up by serial number.
func (h *EquipmentHandler) GetPhasarBySerial(c *gin.Context) {
	serial := c.Param("serial")
	if serial == "" {
		BadRequest(c, "Serial number is required")
		return
	}

	unit, err := h.svc.GetPhasarBySerial(c.Request.Context(), serial)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, unit)
}

// DeletePhasar removes a Phasar32 unit and its reports.
func (h *EquipmentHandler) DeletePhasar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "Unit ID is required")
		return
	}

	if err := h.svc.DeletePhasar(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	Success(c, nil)
}

// IssueLicense signs and binds a license to a unit.
func (h *EquipmentHandler) IssueLicense(c *gin.Context) {
	equipmentType := c.Param("type")
	serial := c.Param("serial")
	if equipmentType == "" || serial == "" {
		BadRequest(c, "Equipment type and serial number are required")
		return
	}

	var in service.IssueInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	license, err := h.licenses.IssueForEquipment(c.Request.Context(), equipmentType, serial, in, GetUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}

	Created(c, license)
}

// GetLicense returns one issued license.
func (h *EquipmentHandler) GetLicense(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		BadRequest(c, "License ID is required")
		return
	}

	license, err := h.licenses.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, license)
}

// ListLicenses returns a page of issued licenses.
func (h *EquipmentHandler) ListLicenses(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"product":      c.Query("product"),
		"company_name": c.Query("company_name"),
	}

	licenses, total, err := h.licenses.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(licenses, page, pageSize, total))
}
