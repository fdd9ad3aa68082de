package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"gridbase/internal/listing"
	"gridbase/internal/middlewares"
	"gridbase/internal/models"
	"gridbase/internal/responses"
	"gridbase/internal/services"
	"gridbase/internal/utils"
)

type RecordHandler struct {
	recordService *services.RecordService
	tableService  *services.TableService
}

func NewRecordHandler(recordService *services.RecordService, tableService *services.TableService) *RecordHandler {
	return &RecordHandler{recordService: recordService, tableService: tableService}
}

func (h *RecordHandler) Create(c *gin.Context) {
	tableID, ok := requireTableAccess(c, h.tableService)
	if !ok {
		return
	}
	user := middlewares.CurrentUser(c)

	var data models.RecordData
	if err := c.ShouldBindJSON(&data); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	record, err := h.recordService.Create(tableID, user.ID, data)
	if err != nil {
		failFromError(c, err, "Could not create record")
		return
	}
	responses.Success(c, http.StatusCreated, record, "Record created successfully")
}

func (h *RecordHandler) BulkCreate(c *gin.Context) {
	tableID, ok := requireTableAccess(c, h.tableService)
	if !ok {
		return
	}
	user := middlewares.CurrentUser(c)

	var req struct {
		Records []models.RecordData `json:"records" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	records, err := h.recordService.BulkCreate(tableID, user.ID, req.Records)
	if err != nil {
		failFromError(c, err, "Could not create records")
		return
	}
	responses.Success(c, http.StatusCreated, records, "Records created successfully")
}

// List reads sorting, filtering, search and paging from the query string:
// sort=Name:asc,Age:desc (or sortField/sortDirection)  filters=<json array>
// search=...  page=1  pageSize=50 (limit is accepted as an alias)
func (h *RecordHandler) List(c *gin.Context) {
	tableID, ok := requireTableAccess(c, h.tableService)
	if !ok {
		return
	}

	opts, err := parseListOptions(c)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid list options")
		return
	}

	result, err := h.recordService.List(tableID, opts)
	if err != nil {
		failFromError(c, err, "Could not list records")
		return
	}
	responses.Success(c, http.StatusOK, result, "")
}

func (h *RecordHandler) Get(c *gin.Context) {
	if _, ok := requireTableAccess(c, h.tableService); !ok {
		return
	}
	recordID, err := utils.ParseUUID(c.Param("recordId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid record id")
		return
	}

	record, err := h.recordService.Get(recordID)
	if err != nil {
		failFromError(c, err, "Could not fetch record")
		return
	}
	responses.Success(c, http.StatusOK, record, "")
}

func (h *RecordHandler) Update(c *gin.Context) {
	if _, ok := requireTableAccess(c, h.tableService); !ok {
		return
	}
	recordID, err := utils.ParseUUID(c.Param("recordId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid record id")
		return
	}

	var patch models.RecordData
	if err := c.ShouldBindJSON(&patch); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	record, err := h.recordService.Update(recordID, patch)
	if err != nil {
		failFromError(c, err, "Could not update record")
		return
	}
	responses.Success(c, http.StatusOK, record, "Record updated successfully")
}

func (h *RecordHandler) Delete(c *gin.Context) {
	if _, ok := requireTableAccess(c, h.tableService); !ok {
		return
	}
	recordID, err := utils.ParseUUID(c.Param("recordId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid record id")
		return
	}

	if err := h.recordService.Delete(recordID); err != nil {
		failFromError(c, err, "Could not delete record")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Record deleted successfully")
}

func parseListOptions(c *gin.Context) (services.ListOptions, error) {
	var opts services.ListOptions

	if sortParam := c.Query("sort"); sortParam != "" {
		for _, part := range strings.Split(sortParam, ",") {
			field, direction, _ := strings.Cut(part, ":")
			if direction == "" {
				direction = listing.DirectionAsc
			}
			opts.Sort = append(opts.Sort, listing.SortRule{
				Field:     strings.TrimSpace(field),
				Direction: strings.TrimSpace(direction),
			})
		}
	} else if field := c.Query("sortField"); field != "" {
		direction := c.Query("sortDirection")
		if direction == "" {
			direction = listing.DirectionAsc
		}
		opts.Sort = append(opts.Sort, listing.SortRule{Field: field, Direction: direction})
	}

	if filtersParam := c.Query("filters"); filtersParam != "" {
		if err := json.Unmarshal([]byte(filtersParam), &opts.Filters); err != nil {
			return opts, err
		}
	}

	opts.Search = c.Query("search")

	if page := c.Query("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			return opts, err
		}
		opts.Page = n
	}
	pageSize := c.Query("pageSize")
	if pageSize == "" {
		pageSize = c.Query("limit")
	}
	if pageSize != "" {
		n, err := strconv.Atoi(pageSize)
		if err != nil {
			return opts, err
		}
		opts.PageSize = n
	}

	return opts, nil
}
