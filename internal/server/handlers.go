package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/otosight/otosight/internal/analyze"
	"github.com/otosight/otosight/internal/engine"
	"github.com/otosight/otosight/internal/geometry"
	"github.com/otosight/otosight/internal/imaging"
)

// analyzeRequest is the wire shape of POST /api/analyze. Optional fields are
// pointers so an absent value and an explicit zero can be told apart.
type analyzeRequest struct {
	Image                 string   `json:"image"`
	ConfThres             *float64 `json:"conf_thres"`
	IoUThres              *float64 `json:"iou_thres"`
	IncludeCropCoords     *bool    `json:"include_crop_coords"`
	CoordinateType        *string  `json:"coordinate_type"`
	IncludeAnnotatedImage bool     `json:"include_annotated_image"`
}

// params validates the request and folds it over the documented defaults.
func (r *analyzeRequest) params() (analyze.Params, error) {
	p := analyze.DefaultParams()

	if r.Image == "" {
		return p, inputError("image", "field is required")
	}
	if r.ConfThres != nil {
		if *r.ConfThres < 0 || *r.ConfThres > 1 {
			return p, inputError("conf_thres", "must be within [0,1], got %g", *r.ConfThres)
		}
		p.ConfThres = *r.ConfThres
	}
	if r.IoUThres != nil {
		if *r.IoUThres < 0 || *r.IoUThres > 1 {
			return p, inputError("iou_thres", "must be within [0,1], got %g", *r.IoUThres)
		}
		p.IoUThres = *r.IoUThres
	}
	if r.IncludeCropCoords != nil {
		p.IncludeCropCoords = *r.IncludeCropCoords
	}
	if r.CoordinateType != nil {
		frame, err := geometry.ParseFrame(*r.CoordinateType)
		if err != nil {
			return p, inputError("coordinate_type", "%v", err)
		}
		p.CoordinateType = frame
	}
	p.IncludeAnnotatedImage = r.IncludeAnnotatedImage

	return p, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"detector_loaded": s.engine != nil,
	})
}

func (s *Server) handleInfo(c *gin.Context) {
	info := gin.H{
		"name":            ServiceName,
		"version":         ServiceVersion,
		"features":        Features,
		"detector_loaded": s.engine != nil,
		"classes":         engine.ClassNames,
	}
	if s.engine != nil {
		runtime := s.engine.Info()
		info["device"] = runtime.Device
		info["img_size"] = runtime.ImgSize
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleAnalyze(c *gin.Context) {
	if s.analyzer == nil {
		log.Printf("analyze rejected: %v", ErrEngineNotReady)
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrEngineNotReady.Error()})
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, inputError("body", "invalid JSON: %v", err))
		return
	}

	params, err := req.params()
	if err != nil {
		badRequest(c, err)
		return
	}

	img, err := imaging.DecodeBase64(req.Image)
	if err != nil {
		badRequest(c, inputError("image", "%v", err))
		return
	}

	result, err := s.analyzer.Analyze(c.Request.Context(), img, params)
	if err != nil {
		bounds := img.Bounds()
		log.Printf("analysis failed on %dx%d image (conf=%g iou=%g frame=%s): %v",
			bounds.Dx(), bounds.Dy(), params.ConfThres, params.IoUThres, params.CoordinateType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
