package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/alex-1-tech/assemcloud/internal/model/entity"
	"github.com/alex-1-tech/assemcloud/internal/repository"
	"github.com/alex-1-tech/assemcloud/internal/service"
	"github.com/alex-1-tech/assemcloud/internal/storage"
)

// Handlers bundles all HTTP handlers.
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Client    *ClientHandler
	Machine   *MachineHandler
	Module    *ModuleHandler
	Part      *PartHandler
	Blueprint *BlueprintHandler
	Task      *TaskHandler
	Equipment *EquipmentHandler
	Report    *ReportHandler
	App       *AppHandler
	System    *SystemHandler
}

// NewHandlers creates the handler set.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:      NewAuthHandler(svc.Auth),
		User:      NewUserHandler(svc.User),
		Client:    NewClientHandler(svc.Client),
		Machine:   NewMachineHandler(svc.Machine, svc.Assembly, svc.Import),
		Module:    NewModuleHandler(svc.Module, svc.Assembly, svc.Import),
		Part:      NewPartHandler(svc.Part),
		Blueprint: NewBlueprintHandler(svc.Blueprint),
		Task:      NewTaskHandler(svc.Task),
		Equipment: NewEquipmentHandler(svc.Equipment, svc.License),
		Report:    NewReportHandler(svc.Report),
		App:       NewAppHandler(svc.AppFile),
		System:    NewSystemHandler(svc.Audit, svc.Equipment, svc.Machine, svc.Module, svc.Part, svc.Task),
	}
}

// Response is the common envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse wraps a page of items.
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination describes one page.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

// NewListResponse builds the list envelope.
func NewListResponse(items interface{}, page, pageSize int, total int64) *ListResponse {
	totalPages := total / int64(pageSize)
	if total%int64(pageSize) > 0 {
		totalPages++
	}
	return &ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error response; the HTTP status is code/100.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound writes a 404 response.
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError writes a 500 response.
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// validation errors from the service and entity layers map to 400.
var validationErrors = []error{
	service.ErrSelfParent,
	service.ErrCyclicHierarchy,
	service.ErrParentMachine,
	service.ErrQuantity,
	service.ErrEquipmentType,
	service.ErrEmailTaken,
	service.ErrFileExtension,
	service.ErrImportFormat,
	service.ErrImportHeaders,
	service.ErrImportChapter,
	service.ErrTaskStatus,
	service.ErrLicenseExpiry,
	service.ErrReportDateFuture,
	service.ErrReportFileType,
	service.ErrAppFileExt,
	entity.ErrSerialFormat,
	entity.ErrShipmentInFuture,
	entity.ErrCalibrationInFuture,
	entity.ErrWeightNegative,
	entity.ErrReportEquipment,
	entity.ErrReportNumberTO,
}

// HandleError maps a service error to the envelope.
func HandleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, err.Error())
	default:
		for _, verr := range validationErrors {
			if errors.Is(err, verr) {
				BadRequest(c, err.Error())
				return
			}
		}
		InternalError(c, err.Error())
	}
}

// GetUserID returns the acting user's id from the request context.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination reads page/page_size query params with bounds.
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
