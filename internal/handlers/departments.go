package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"medqueue/internal/models"
	"medqueue/internal/response"
	"medqueue/internal/storage"

	"github.com/gin-gonic/gin"
)

type SpecialistItem struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Cabinet  string `json:"cabinet,omitempty"`
}

type DepartmentItem struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Specialists []SpecialistItem `json:"specialists"`
}

const departmentsCacheKey = "departments_all"

// GetDepartmentsHandler обрабатывает запрос справочника отделений
// @Summary		Справочник отделений
// @Description	Возвращает отделения со специалистами, кэширует результат в Redis
// @Tags			departments
// @Accept			json
// @Produce		json
// @Success		200	{array}		DepartmentItem	"Отделения со специалистами"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/departments [get]
func GetDepartmentsHandler(c *gin.Context) {
	redisClient := storage.RedisClient

	// Проверка кэша
	cached, err := redisClient.Get(storage.Ctx, departmentsCacheKey).Result()
	if err == nil && cached != "" {
		var items []DepartmentItem
		if err := json.Unmarshal([]byte(cached), &items); err == nil {
			c.JSON(http.StatusOK, items)
			return
		}
	}

	var departments []models.Department
	if err := storage.DB.Find(&departments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки отделений",
			Details: err.Error(),
		})
		return
	}

	var specialists []models.Specialist
	if err := storage.DB.Find(&specialists).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка загрузки специалистов",
			Details: err.Error(),
		})
		return
	}

	byDepartment := make(map[uint][]SpecialistItem)
	for _, s := range specialists {
		byDepartment[s.DepartmentID] = append(byDepartment[s.DepartmentID], SpecialistItem{
			ID:       s.ID,
			FullName: s.FullName,
			Cabinet:  s.Cabinet,
		})
	}

	items := make([]DepartmentItem, 0, len(departments))
	for _, d := range departments {
		items = append(items, DepartmentItem{
			ID:          d.ID,
			Name:        d.Name,
			Specialists: byDepartment[d.ID],
		})
	}

	// Кэширование результата: справочник меняется редко.
	if payload, err := json.Marshal(items); err == nil {
		redisClient.Set(storage.Ctx, departmentsCacheKey, payload, 10*time.Minute)
	}

	c.JSON(http.StatusOK, items)
}
