package server

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/san-kum/particlefield/internal/config"
	"github.com/san-kum/particlefield/internal/export"
	"github.com/san-kum/particlefield/internal/field"
	"github.com/san-kum/particlefield/internal/record"
)

type presetResponse struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Theme       string        `json:"theme,omitempty"`
	Options     field.Options `json:"options"`
}

var errBadQuery = errors.New("bad query")

func (s *Server) listPresets(c *gin.Context) {
	names := config.ListPresets()
	out := make([]presetResponse, 0, len(names))
	for _, name := range names {
		p := config.GetPreset(name)
		out = append(out, presetResponse{Name: name, Description: p.Description, Theme: p.Theme, Options: p.Field()})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getPreset(c *gin.Context) {
	name := c.Param("name")
	p := config.GetPreset(name)
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("preset %q not found", name)})
		return
	}
	c.JSON(http.StatusOK, presetResponse{Name: name, Description: p.Description, Theme: p.Theme, Options: p.Field()})
}

func (s *Server) listSessions(c *gin.Context) {
	if s.index == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session index not configured"})
		return
	}
	limit, err := queryInt(c, "limit", 50, 1, 1000)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rows, err := s.index.Sessions(c.Query("preset"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// request holds the parameters shared by the backdrop endpoints.
type request struct {
	preset string
	opts   field.Options
	width  int
	height int
	frames int
	fps    int
	seed   int64
}

func (s *Server) parseRequest(c *gin.Context) (request, int, error) {
	req := request{preset: c.DefaultQuery("preset", s.cfg.Preset)}
	if req.preset == s.cfg.Preset {
		req.opts = s.cfg.Field
	} else {
		p := config.GetPreset(req.preset)
		if p == nil {
			return req, http.StatusNotFound, fmt.Errorf("preset %q not found", req.preset)
		}
		req.opts = p.Field()
	}

	var err error
	if req.width, err = queryInt(c, "w", s.cfg.Width, 1, maxSide); err != nil {
		return req, http.StatusBadRequest, err
	}
	if req.height, err = queryInt(c, "h", s.cfg.Height, 1, maxSide); err != nil {
		return req, http.StatusBadRequest, err
	}
	if req.frames, err = queryInt(c, "frames", s.cfg.Frames, 1, maxFrames); err != nil {
		return req, http.StatusBadRequest, err
	}
	if req.fps, err = queryInt(c, "fps", s.cfg.FPS, 1, maxFPS); err != nil {
		return req, http.StatusBadRequest, err
	}
	req.seed = s.cfg.Seed
	if raw := c.Query("seed"); raw != "" {
		if req.seed, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return req, http.StatusBadRequest, fmt.Errorf("%w: seed=%q is not an integer", errBadQuery, raw)
		}
	}
	return req, http.StatusOK, nil
}

func (s *Server) backdropGIF(c *gin.Context) {
	req, status, err := s.parseRequest(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	res, err := record.Run(c.Request.Context(), record.Options{
		Field:  req.opts,
		Width:  req.width,
		Height: req.height,
		Frames: req.frames,
		FPS:    req.fps,
		Seed:   req.seed,
		Orbit:  req.opts.Interactive,
		Logger: s.logger,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/gif", res.GIF)
}

func (s *Server) backdropSVG(c *gin.Context) {
	req, status, err := s.parseRequest(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	var rng *rand.Rand
	if req.seed != 0 {
		rng = rand.New(rand.NewSource(req.seed))
	}
	svg, _, err := export.Snapshot(req.opts, float64(req.width), float64(req.height), req.frames, rng)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(svg.String()))
}

// queryInt reads an integer query parameter within [min, max]. A missing
// parameter yields def clamped into the same range.
func queryInt(c *gin.Context, key string, def, min, max int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return clampInt(def, min, max), nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", errBadQuery, key, raw)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%w: %s=%d out of range [%d, %d]", errBadQuery, key, v, min, max)
	}
	return v, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
