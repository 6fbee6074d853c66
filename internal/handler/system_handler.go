package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/service"
)

// SystemHandler serves the audit trail and the dashboard summary.
type SystemHandler struct {
	audit     *service.AuditService
	equipment *service.EquipmentService
	machines  *service.MachineService
	modules   *service.ModuleService
	parts     *service.PartService
	tasks     *service.TaskService
}

func NewSystemHandler(
	audit *service.AuditService,
	equipment *service.EquipmentService,
	machines *service.MachineService,
	modules *service.ModuleService,
	parts *service.PartService,
	tasks *service.TaskService,
) *SystemHandler {
	return &SystemHandler{
		audit:     audit,
		equipment: equipment,
		machines:  machines,
		modules:   modules,
		parts:     parts,
		tasks:     tasks,
	}
}

// ListChanges returns a page of the audit trail, optionally scoped
// to one table or one record.
func (h *SystemHandler) ListChanges(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"table_name": c.Query("table_name"),
		"record_id":  c.Query("record_id"),
	}

	changes, total, err := h.audit.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, NewListResponse(changes, page, pageSize, total))
}

// Dashboard returns entity counts for the landing page.
func (h *SystemHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	none := map[string]interface{}{}

	_, machines, err := h.machines.List(ctx, 1, 1, none)
	if err != nil {
		HandleError(c, err)
		return
	}
	_, modules, err := h.modules.List(ctx, 1, 1, none)
	if err != nil {
		HandleError(c, err)
		return
	}
	_, parts, err := h.parts.List(ctx, 1, 1, none)
	if err != nil {
		HandleError(c, err)
		return
	}
	_, kalmars, err := h.equipment.ListKalmars(ctx, 1, 1, none)
	if err != nil {
		HandleError(c, err)
		return
	}
	_, phasars, err := h.equipment.ListPhasars(ctx, 1, 1, none)
	if err != nil {
		HandleError(c, err)
		return
	}
	_, openTasks, err := h.tasks.List(ctx, 1, 1, map[string]interface{}{"status": entity.TaskStatusOnReview})
	if err != nil {
		HandleError(c, err)
		return
	}

	Success(c, gin.H{
		"machines":      machines,
		"modules":       modules,
		"parts":         parts,
		"kalmar_units":  kalmars,
		"phasar_units":  phasars,
		"tasks_pending": openTasks,
	})
}
