package handler

import (
	"net/http"
	"reflect"

	"paypilot/internal/apierror"
	"paypilot/internal/middleware"
	"paypilot/internal/model"
	"paypilot/internal/scope"
	"paypilot/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery binds and validates query-string filters.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters: "+err.Error()))
		return false
	}
	if err := validate.Struct(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query parameters"))
		return false
	}
	return true
}

// respondError maps a service error to its HTTP status and the message
// envelope. Internal errors are masked.
func respondError(c *gin.Context, err error) {
	status := apierror.Status(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, apierror.New("internal server error"))
		return
	}
	c.JSON(status, apierror.New(err.Error()))
}

// requestScope resolves the caller's store scope and principal from JWT
// claims. Writes the Forbidden response itself when resolution fails.
func requestScope(c *gin.Context) (scope.Scope, service.Principal, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusForbidden, apierror.New(apierror.ErrForbidden.Error()))
		return scope.Scope{}, service.Principal{}, false
	}

	var storeID *uuid.UUID
	if claims.StoreID != nil {
		if id, err := uuid.Parse(*claims.StoreID); err == nil {
			storeID = &id
		}
	}

	role := model.Role(claims.Role)
	sc, err := scope.Resolve(role, storeID)
	if err != nil {
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
		return scope.Scope{}, service.Principal{}, false
	}

	userID, _ := uuid.Parse(claims.UserID)
	return sc, service.Principal{UserID: userID, Role: role}, true
}

// parseID parses the :id path parameter, writing the 400 response on failure.
func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
