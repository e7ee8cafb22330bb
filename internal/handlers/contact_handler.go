package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/raakesh-m/autosendr-backend/internal/models"
	"github.com/raakesh-m/autosendr-backend/internal/services"
	"github.com/raakesh-m/autosendr-backend/internal/services/excel"
	"github.com/raakesh-m/autosendr-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactService *services.ContactService
	excelService   *excel.Service
}

func NewContactHandler(contactService *services.ContactService, excelService *excel.Service) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		excelService:   excelService,
	}
}

// CreateContact godoc
// @Summary Create a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateContactRequest true "Contact details"
// @Success 201 {object} models.Contact
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/contacts [post]
func (h *ContactHandler) CreateContact(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	contact, err := h.contactService.CreateContact(userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, contact)
}

// GetContacts godoc
// @Summary List contacts
// @Description List the authenticated user's contacts with search and pagination
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param search query string false "Search by email, name or company"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/contacts [get]
func (h *ContactHandler) GetContacts(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	search := c.Query("search")

	contacts, total, err := h.contactService.GetContacts(userID, page, pageSize, search)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contacts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts":   contacts,
		"pagination": utils.CalculatePaginationInfo(int(total), page, pageSize),
	})
}

// ImportContacts godoc
// @Summary Import contacts from a file
// @Description Import contacts from an uploaded .xlsx or .csv file with a header row
// @Tags contacts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Contact list (.xlsx or .csv)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/contacts/import [post]
func (h *ContactHandler) ImportContacts(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded", "details": err.Error()})
		return
	}

	result, err := h.excelService.ParseContactList(fileHeader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse contact list", "details": err.Error()})
		return
	}

	imported, err := h.contactService.ImportContacts(userID, result.Contacts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import contacts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Contacts imported",
		"imported":     imported,
		"skipped_rows": result.SkippedRows,
	})
}

// UpdateContact godoc
// @Summary Update a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Param request body models.UpdateContactRequest true "Fields to update"
// @Success 200 {object} models.Contact
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/contacts/{id} [put]
func (h *ContactHandler) UpdateContact(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var req models.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	contact, err := h.contactService.UpdateContact(c.Param("id"), userID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update contact", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, contact)
}

// DeleteContact godoc
// @Summary Delete a contact
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Contact ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/contacts/{id} [delete]
func (h *ContactHandler) DeleteContact(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	if err := h.contactService.DeleteContact(c.Param("id"), userID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Contact deleted"})
}
