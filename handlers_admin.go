package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bitbucket.org/vetadata/iga_backend/middlewares"
	"bitbucket.org/vetadata/iga_backend/models"
	"bitbucket.org/vetadata/iga_backend/utils"
)

func parseIdParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func respondModelError(c *gin.Context, err error) {
	if err == utils.ErrorRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// --- zones ---

func listZonesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		zones, err := models.GetAllZones(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, zones)
	}
}

func createZoneHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.Zone
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		zone, err := models.CreateZone(c.Request.Context(), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, zone)
	}
}

func updateZoneHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		var input models.Zone
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		zone, err := input.UpdateZone(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, zone)
	}
}

func deleteZoneHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		if err := models.DeleteZone(c.Request.Context(), id); err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// --- centres ---

func listCentresHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if zoneIdStr := c.Query("zoneId"); zoneIdStr != "" {
			zoneId, err := strconv.Atoi(zoneIdStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid zoneId"})
				return
			}
			centres, err := models.GetCentresByZone(c.Request.Context(), zoneId)
			if err != nil {
				respondModelError(c, err)
				return
			}
			c.JSON(http.StatusOK, centres)
			return
		}

		centres, err := models.GetAllCentres(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, centres)
	}
}

func createCentreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.Centre
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		centre, err := models.CreateCentre(c.Request.Context(), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, centre)
	}
}

func updateCentreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		var input models.Centre
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		centre, err := input.UpdateCentre(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, centre)
	}
}

func deleteCentreHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		if err := models.DeleteCentre(c.Request.Context(), id); err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// --- departments ---

func listDepartmentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		departments, err := models.GetAllDepartments(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, departments)
	}
}

func createDepartmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.Department
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		department, err := models.CreateDepartment(c.Request.Context(), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, department)
	}
}

func updateDepartmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		var input models.Department
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		department, err := input.UpdateDepartment(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, department)
	}
}

func deleteDepartmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		if err := models.DeleteDepartment(c.Request.Context(), id); err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// --- customers ---

func listCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if term := c.Query("search"); term != "" {
			customers, err := models.SearchCustomers(c.Request.Context(), term)
			if err != nil {
				respondModelError(c, err)
				return
			}
			c.JSON(http.StatusOK, customers)
			return
		}
		if centreIdStr := c.Query("centreId"); centreIdStr != "" {
			centreId, err := strconv.Atoi(centreIdStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid centreId"})
				return
			}
			customers, err := models.GetCustomersByCentre(c.Request.Context(), centreId)
			if err != nil {
				respondModelError(c, err)
				return
			}
			c.JSON(http.StatusOK, customers)
			return
		}

		customers, err := models.GetAllCustomers(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, customers)
	}
}

func createCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.Customer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		customer, err := models.CreateCustomer(c.Request.Context(), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

func updateCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		var input models.Customer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		customer, err := input.UpdateCustomer(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func deleteCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		if err := models.DeleteCustomer(c.Request.Context(), id); err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// --- gfs codes ---

func listGfsCodesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		codes, err := models.GetAllGfsCodes(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, codes)
	}
}

func createGfsCodeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.GfsCode
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		code, err := models.CreateGfsCode(c.Request.Context(), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, code)
	}
}

func updateGfsCodeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		var input models.GfsCode
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		code, err := input.UpdateGfsCode(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, code)
	}
}

func deleteGfsCodeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		if err := models.DeleteGfsCode(c.Request.Context(), id); err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// --- users ---

type userResponse struct {
	*models.User
	CentreName     string `json:"centre_name,omitempty"`
	ZoneName       string `json:"zone_name,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
}

// hydrateUsers resolves centre, zone and department names through the
// request loaders so a user list does one batched query per association.
func hydrateUsers(c *gin.Context, users []*models.User) []userResponse {
	responses := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp := userResponse{User: u}
		if u.CentreId != nil {
			if centre, err := middlewares.GetCentre(c.Request.Context(), *u.CentreId); err == nil && centre != nil {
				resp.CentreName = centre.Name
				if zone, err := middlewares.GetZone(c.Request.Context(), centre.ZoneId); err == nil && zone != nil {
					resp.ZoneName = zone.Name
				}
			}
		}
		if u.DepartmentId != nil {
			if department, err := middlewares.GetDepartment(c.Request.Context(), *u.DepartmentId); err == nil && department != nil {
				resp.DepartmentName = department.Name
			}
		}
		responses = append(responses, resp)
	}
	return responses
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := models.GetAllUsers(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		page, pageSize := models.ParsePaging(c.Query("page"), c.Query("pageSize"))
		c.JSON(http.StatusOK, models.PageOf(hydrateUsers(c, users), page, pageSize))
	}
}

func getUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		user, err := models.GetUser(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func updateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		var input models.User
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		user, err := input.UpdateUser(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func deleteUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		if userId, ok := utils.GetUserIdFromContext(c.Request.Context()); ok && userId == id {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete own account"})
			return
		}
		if err := models.DeleteUser(c.Request.Context(), id); err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

// --- api keys ---

func listApiKeysHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		keys, err := models.GetAllApiKeys(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, keys)
	}
}

type createApiKeyRequest struct {
	Owner string `json:"owner" binding:"required"`
}

func createApiKeyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createApiKeyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owner is required"})
			return
		}
		key, err := models.CreateApiKey(c.Request.Context(), req.Owner)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, key)
	}
}

func revokeApiKeyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		if err := models.RevokeApiKey(c.Request.Context(), id); err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"revoked": true})
	}
}

// --- audit ---

func auditLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, _ := strconv.Atoi(c.Query("userId"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		logs, err := models.GetAuditLogs(c.Request.Context(), userId, limit)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, logs)
	}
}

func loginAttemptsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
		attempts, err := models.GetLoginAttempts(c.Request.Context(), c.Query("username"), limit)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, attempts)
	}
}

// --- allocations and distribution formulas ---

func listAllocationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if centreIdStr := c.Query("centreId"); centreIdStr != "" {
			centreId, err := strconv.Atoi(centreIdStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid centreId"})
				return
			}
			allocations, err := models.GetAllocationsByCentre(c.Request.Context(), centreId)
			if err != nil {
				respondModelError(c, err)
				return
			}
			c.JSON(http.StatusOK, allocations)
			return
		}

		year, err := strconv.Atoi(c.Query("year"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year is required"})
			return
		}
		month, err := strconv.Atoi(c.Query("month"))
		if err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be 1-12"})
			return
		}
		allocations, err := models.GetAllocationsForMonth(c.Request.Context(), year, month)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, allocations)
	}
}

func listDistributionFormulasHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if gfsCodeIdStr := c.Query("gfsCodeId"); gfsCodeIdStr != "" {
			gfsCodeId, err := strconv.Atoi(gfsCodeIdStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gfsCodeId"})
				return
			}
			formula, err := models.GetDistributionFormulaByGfsCode(c.Request.Context(), gfsCodeId)
			if err != nil {
				respondModelError(c, err)
				return
			}
			c.JSON(http.StatusOK, formula)
			return
		}
		formulas, err := models.GetDistributionFormulas(c.Request.Context())
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, formulas)
	}
}

func getSystemConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := models.GetSystemConfig(c.Request.Context(), c.Param("key"))
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

type systemConfigRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

func setSystemConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req systemConfigRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		cfg, err := models.SetSystemConfig(c.Request.Context(), req.Key, req.Value)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

func getCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		customer, err := models.GetCustomer(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func getGfsCodeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		code, err := models.GetGfsCode(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, code)
	}
}

func getZoneHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		zone, err := models.GetZone(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, zone)
	}
}

func getDepartmentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseIdParam(c)
		if !ok {
			return
		}
		department, err := models.GetDepartment(c.Request.Context(), id)
		if err != nil {
			respondModelError(c, err)
			return
		}
		c.JSON(http.StatusOK, department)
	}
}
