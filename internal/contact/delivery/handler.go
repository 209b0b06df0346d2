package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"touchbase-backend/internal/contact/domain"
	contactdto "touchbase-backend/internal/contact/dto"
	"touchbase-backend/internal/contact/usecase"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	contactUsecase usecase.ContactUsecase
	syncUsecase    usecase.EmailSyncUsecase
}

func NewContactHandler(contactUsecase usecase.ContactUsecase, syncUsecase usecase.EmailSyncUsecase) *ContactHandler {
	return &ContactHandler{
		contactUsecase: contactUsecase,
		syncUsecase:    syncUsecase,
	}
}

func (h *ContactHandler) Create(c *gin.Context) {
	userID := c.GetString("userID")

	var req contactdto.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact := &domain.Contact{
		Email: req.Email,
		Name:  req.Name,
	}
	if err := h.contactUsecase.CreateContact(userID, contact); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, contact)
}

func (h *ContactHandler) Get(c *gin.Context) {
	userID := c.GetString("userID")

	contact, err := h.contactUsecase.GetContact(userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) List(c *gin.Context) {
	userID := c.GetString("userID")
	status := domain.ContactStatus(c.Query("status"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	contacts, total, err := h.contactUsecase.ListContacts(userID, status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contactdto.ListResponse{
		Items:  contacts,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *ContactHandler) Update(c *gin.Context) {
	userID := c.GetString("userID")

	var req contactdto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact := &domain.Contact{
		ID:     c.Param("id"),
		Email:  req.Email,
		Name:   req.Name,
		Status: domain.ContactStatus(req.Status),
	}
	if err := h.contactUsecase.UpdateContact(userID, contact); err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contact)
}

func (h *ContactHandler) Delete(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.contactUsecase.DeleteContact(userID, c.Param("id")); err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "contact deleted"})
}

func (h *ContactHandler) ListInteractions(c *gin.Context) {
	userID := c.GetString("userID")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	interactions, total, err := h.contactUsecase.ListInteractions(userID, c.Param("id"), limit, offset)
	if err != nil {
		if errors.Is(err, domain.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, contactdto.ListResponse{
		Items:  interactions,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// SyncAll runs a capped batch sync over the user's active contacts.
func (h *ContactHandler) SyncAll(c *gin.Context) {
	userID := c.GetString("userID")
	forceHistoric := c.Query("force_historic") == "true"

	if err := h.syncUsecase.SyncContactEmails(c.Request.Context(), userID, "", forceHistoric); err != nil {
		h.renderSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "sync completed"})
}

// SyncOne syncs a single contact's email history.
func (h *ContactHandler) SyncOne(c *gin.Context) {
	userID := c.GetString("userID")
	forceHistoric := c.Query("force_historic") == "true"

	if err := h.syncUsecase.SyncContactEmails(c.Request.Context(), userID, c.Param("id"), forceHistoric); err != nil {
		h.renderSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "sync completed"})
}

func (h *ContactHandler) renderSyncError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrContactNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "contact not found"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
	case errors.Is(err, domain.ErrSyncTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "sync timed out, partial progress was saved"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
