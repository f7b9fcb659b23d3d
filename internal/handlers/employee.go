package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/diewo77/comptable/internal/httpx"
	"github.com/diewo77/comptable/internal/models"
	"github.com/diewo77/comptable/internal/validation"
)

// EmployeeHandler manages payroll records.
type EmployeeHandler struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func NewEmployeeHandler(db *gorm.DB, timeout time.Duration) *EmployeeHandler {
	return &EmployeeHandler{DB: db, Timeout: timeout}
}

type employeeReq struct {
	Name     string          `json:"name"`
	Position string          `json:"position"`
	Salary   decimal.Decimal `json:"salary"`
	HireDate string          `json:"hire_date,omitempty"` // 2006-01-02
}

// List: GET /api/employees.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	var employees []models.Employee
	if err := h.DB.WithContext(ctx).Where("owner_id = ?", ownerID(r)).Order("name ASC").Find(&employees).Error; err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": employees, "total": len(employees)})
}

// Create: POST /api/employees.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeReq
	if err := httpx.Decode(r, &req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.NonNegativeDecimal("salary", req.Salary, v)
	if !v.Empty() {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}
	hireDate := time.Now()
	if req.HireDate != "" {
		d, err := time.Parse("2006-01-02", req.HireDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_hire_date", nil)
			return
		}
		hireDate = d
	}

	employee := &models.Employee{
		OwnerID:  ownerID(r),
		Name:     req.Name,
		Position: req.Position,
		Salary:   req.Salary,
		HireDate: hireDate,
	}
	ctx, cancel := boundCtx(r, h.Timeout)
	defer cancel()
	if err := h.DB.WithContext(ctx).Create(employee).Error; err != nil {
		writeError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, employee)
}
