package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matthieukhl/axoshard/internal/apperr"
	"github.com/matthieukhl/axoshard/internal/catalog"
	"github.com/matthieukhl/axoshard/internal/models"
)

func (s *Server) listProducts(c *gin.Context) {
	var f catalog.Filter
	if err := s.query.Decode(&f, c.Request.URL.Query()); err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, err, "invalid query"))
		return
	}

	products, err := s.deps.Catalog.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	p, err := s.deps.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) createProduct(c *gin.Context) {
	var in models.ProductInput
	if !bindJSON(c, &in) {
		return
	}

	p, err := s.deps.Catalog.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// updateProduct applies the supplied fields over the stored product.
func (s *Server) updateProduct(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, err, errBadBody.Error()))
		return
	}

	p, err := s.deps.Catalog.Patch(c.Request.Context(), c.Param("id"), func(in *models.ProductInput) error {
		if err := json.Unmarshal(body, in); err != nil {
			return apperr.Wrap(apperr.KindValidation, err, errBadBody.Error())
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type toggleRequest struct {
	IsActive *bool `json:"isActive"`
}

func (s *Server) toggleProduct(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		respondError(c, apperr.New(apperr.KindValidation, "isActive must be a boolean"))
		return
	}

	p, err := s.deps.Catalog.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.deps.Catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) uploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperr.New(apperr.KindValidation, "file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, apperr.Wrap(apperr.KindValidation, err, "unreadable upload"))
		return
	}
	defer f.Close()

	img, err := s.deps.Images.Upload(c.Request.Context(), fh.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, img)
}
