// Package redirect tracks retired slugs so stale public URLs keep resolving
// after a draft's slug is regenerated.
package redirect

import (
	"errors"

	"github.com/akshayrajput12/chronical-sub004/internal/models"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Service provides slug redirect operations.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Track records that oldSlug for the given content type now points to targetID.
func (s *Service) Track(oldSlug, refType, targetID string) error {
	return s.TrackTx(s.db, oldSlug, refType, targetID)
}

// TrackTx is Track inside an existing transaction, so the redirect lands
// atomically with the slug change itself.
func (s *Service) TrackTx(tx *gorm.DB, oldSlug, refType, targetID string) error {
	redir := models.SlugRedirectModel{Slug: oldSlug, Type: refType, TargetID: targetID}
	return tx.Where(models.SlugRedirectModel{Slug: oldSlug, Type: refType}).
		Assign(models.SlugRedirectModel{TargetID: targetID}).
		FirstOrCreate(&redir).Error
}

// FindBySlug returns the current targetID for the given old slug, or ("", nil).
func (s *Service) FindBySlug(slug, refType string) (string, error) {
	var redir models.SlugRedirectModel
	err := s.db.Where("slug = ? AND type = ?", slug, refType).First(&redir).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return redir.TargetID, nil
}

// DeleteByTargetID removes all redirect entries for a deleted content item.
func (s *Service) DeleteByTargetID(targetID string) error {
	return s.db.Where("target_id = ?", targetID).Delete(&models.SlugRedirectModel{}).Error
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/redirect/:type/:slug", h.lookup)
}

// GET /redirect/:type/:slug — public redirect lookup
func (h *Handler) lookup(c *gin.Context) {
	refType := c.Param("type")
	slug := c.Param("slug")

	targetID, err := h.svc.FindBySlug(slug, refType)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if targetID == "" {
		response.NotFound(c)
		return
	}
	response.OK(c, gin.H{"target_id": targetID, "type": refType, "slug": slug})
}
