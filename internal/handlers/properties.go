package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"estatescout/internal/media/sniffer"
	"estatescout/internal/middleware"
	"estatescout/internal/models"
	"estatescout/internal/service"
)

// maxCreateBody caps a listing upload: five images, a thumbnail and the text fields.
const maxCreateBody = (models.MaxPropertyImages+1)*(5<<20) + 1<<20

type createPropertyForm struct {
	Title       string   `form:"title" binding:"required,max=200"`
	Description string   `form:"description" binding:"max=5000"`
	Type        string   `form:"type" binding:"max=50"`
	Amenities   []string `form:"amenities"`
	Area        float64  `form:"area" binding:"gte=0"`
	Price       float64  `form:"price" binding:"gte=0"`
	Location    string   `form:"location" binding:"max=200"`
}

type updatePropertyRequest struct {
	Title       *string  `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=5000"`
	Type        *string  `json:"type" binding:"omitempty,max=50"`
	Amenities   []string `json:"amenities"`
	Area        *float64 `json:"area" binding:"omitempty,gte=0"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Location    *string  `json:"location" binding:"omitempty,max=200"`
}

type ownerResponse struct {
	ID             string `json:"_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

type propertyResponse struct {
	ID          string         `json:"_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	Amenities   []string       `json:"amenities"`
	Area        float64        `json:"area"`
	Price       float64        `json:"price"`
	Location    string         `json:"location"`
	Images      []string       `json:"images"`
	Thumbnail   string         `json:"thumbnail"`
	OwnerID     string         `json:"ownerId"`
	Owner       *ownerResponse `json:"owner,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func newPropertyResponse(p models.PropertyWithOwner) propertyResponse {
	resp := propertyResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Type:        p.Type,
		Amenities:   nonNil(p.Amenities),
		Area:        p.Area,
		Price:       p.Price,
		Location:    p.Location,
		Images:      nonNil(p.Images),
		Thumbnail:   p.Thumbnail,
		OwnerID:     p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Owner != nil {
		resp.Owner = &ownerResponse{
			ID:             p.Owner.ID,
			Name:           p.Owner.Name,
			Email:          p.Owner.Email,
			ProfilePicture: p.Owner.ProfilePicture,
		}
	}
	return resp
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// ListProperties returns every listing, or only one agent's when the owner
// query parameter is set.
func (h HandlerSet) ListProperties(c *gin.Context) {
	var (
		list []models.PropertyWithOwner
		err  error
	)
	if owner := c.Query("owner"); owner != "" {
		list, err = h.properties.ListByOwner(c.Request.Context(), owner)
	} else {
		list, err = h.properties.List(c.Request.Context())
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]propertyResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, newPropertyResponse(p))
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) GetProperty(c *gin.Context) {
	p, err := h.properties.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPropertyResponse(p))
}

func (h HandlerSet) CreateProperty(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCreateBody)

	var form createPropertyForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, err)
		return
	}

	multipartForm, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "thumbnail and images are required"})
		return
	}
	images := multipartForm.File["images"]
	thumbnails := multipartForm.File["thumbnail"]
	if len(images) == 0 || len(thumbnails) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "thumbnail and images are required"})
		return
	}

	input := service.CreatePropertyInput{
		Title:       form.Title,
		Description: form.Description,
		Type:        form.Type,
		Amenities:   parseAmenities(form.Amenities),
		Area:        form.Area,
		Price:       form.Price,
		Location:    form.Location,
		Images:      make([]service.File, 0, len(images)),
	}
	for _, fh := range images {
		input.Images = append(input.Images, uploadedFile(fh))
	}
	thumbnail := uploadedFile(thumbnails[0])
	input.Thumbnail = &thumbnail

	property, err := h.properties.Create(c.Request.Context(), identity, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Property created successfully",
		"property": newPropertyResponse(models.PropertyWithOwner{Property: property}),
	})
}

func (h HandlerSet) UpdateProperty(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req updatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	property, err := h.properties.Update(c.Request.Context(), identity, c.Param("id"), models.PropertyUpdate{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Amenities:   req.Amenities,
		Area:        req.Area,
		Price:       req.Price,
		Location:    req.Location,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Property updated successfully",
		"property": newPropertyResponse(models.PropertyWithOwner{Property: property}),
	})
}

func (h HandlerSet) DeleteProperty(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	if err := h.properties.Delete(c.Request.Context(), identity, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Property deleted successfully"})
}

// parseAmenities accepts repeated fields, a JSON array or a comma separated list.
func parseAmenities(raw []string) []string {
	if len(raw) == 1 {
		value := strings.TrimSpace(raw[0])
		if strings.HasPrefix(value, "[") {
			var parsed []string
			if err := json.Unmarshal([]byte(value), &parsed); err == nil {
				return cleanAmenities(parsed)
			}
		}
		return cleanAmenities(strings.Split(value, ","))
	}
	return cleanAmenities(raw)
}

func cleanAmenities(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func uploadedFile(fh *multipart.FileHeader) service.File {
	return service.File{
		Filename:     fh.Filename,
		DeclaredType: sniffer.MimeTypeFromHTTP(http.Header(fh.Header)),
		Size:         fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
