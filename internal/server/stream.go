package server

import (
	"io"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/san-kum/particlefield/internal/anim"
	"github.com/san-kum/particlefield/internal/field"
)

// frameBuffer bounds how many frames may queue for a slow client before
// newer ones are dropped.
const frameBuffer = 4

type particleEvent struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	R     float64 `json:"r"`
	Alpha float64 `json:"a"`
	Color string  `json:"c"`
}

type frameEvent struct {
	Frame     uint64          `json:"frame"`
	ElapsedMS int64           `json:"elapsed_ms"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Links     int             `json:"links"`
	Particles []particleEvent `json:"particles"`
}

// stream pushes particle positions as server-sent events until the client
// disconnects or the requested frame count is reached.
func (s *Server) stream(c *gin.Context) {
	req, status, err := s.parseRequest(c)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	limit := 0
	if _, ok := c.GetQuery("frames"); ok {
		limit = req.frames
	}

	frames := make(chan frameEvent, frameBuffer)
	host := anim.NewStaticHost(field.Discard, float64(req.width), float64(req.height))
	ticker := anim.NewTickerScheduler(req.fps)
	defer ticker.Close()

	options := []anim.Option{
		anim.WithLogger(s.logger),
		anim.WithFrameHook(func(info anim.FrameInfo) {
			ev := toEvent(info, req.width, req.height)
			select {
			case frames <- ev:
			default:
			}
		}),
	}
	if req.seed != 0 {
		options = append(options, anim.WithSeed(req.seed))
	}
	a, err := anim.New(host, ticker, req.opts, options...)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer a.Stop()

	s.logger.Debug("stream opened", "preset", req.preset, "fps", req.fps, "limit", limit)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	sent := 0
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev := <-frames:
			c.SSEvent("frame", ev)
			sent++
			return limit == 0 || sent < limit
		}
	})
	s.logger.Debug("stream closed", "preset", req.preset, "sent", sent)
}

func toEvent(info anim.FrameInfo, w, h int) frameEvent {
	ev := frameEvent{
		Frame:     info.Frame,
		ElapsedMS: info.Elapsed.Milliseconds(),
		Width:     w,
		Height:    h,
		Links:     info.Stats.Links,
		Particles: make([]particleEvent, len(info.Particles)),
	}
	for i, p := range info.Particles {
		ev.Particles[i] = particleEvent{
			X:     round(p.Pos.X, 2),
			Y:     round(p.Pos.Y, 2),
			R:     round(p.Radius, 2),
			Alpha: round(p.Alpha, 3),
			Color: p.Color.Clamped().Hex(),
		}
	}
	return ev
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
