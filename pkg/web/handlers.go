package web

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/reactive-signs/pkg/counter"
	"github.com/teslashibe/reactive-signs/pkg/hub"
	"github.com/teslashibe/reactive-signs/pkg/scheduler"
)

// PosterInfo describes a selectable poster
type PosterInfo struct {
	Index  int    `json:"index"`
	Key    int    `json:"key"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// handleStatus returns the installation status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.inst.Status())
}

// handleListPosters returns the posters in key order
func (s *Server) handleListPosters(c *fiber.Ctx) error {
	active := s.inst.Status().Scheduler.Active
	names := s.inst.Posters()
	out := make([]PosterInfo, len(names))
	for i, name := range names {
		out[i] = PosterInfo{Index: i, Key: i + 1, Name: name, Active: i == active}
	}
	return c.JSON(out)
}

// handleSelectPoster requests a transition to the poster at :index
func (s *Server) handleSelectPoster(c *fiber.Ctx) error {
	i, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "index must be an integer",
		})
	}

	if err := s.inst.RequestPoster(i); err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, scheduler.ErrInvalidPoster) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	s.logger.Info("poster requested", "index", i, "remote", c.IP())
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"requested": i,
	})
}

// handleCounterStep requests a manual counter step; :dir is advance or rewind
func (s *Server) handleCounterStep(c *fiber.Ctx) error {
	var dir counter.Direction
	switch c.Params("dir") {
	case "advance":
		dir = counter.Advance
	case "rewind":
		dir = counter.Rewind
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "dir must be advance or rewind",
		})
	}

	s.inst.RequestCounterStep(dir)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"step": c.Params("dir"),
	})
}

// handleStatusWS streams status updates to one dashboard client
func (s *Server) handleStatusWS(c *websocket.Conn) {
	hub.NewClient(s.statusHub, c).Run()
}

// handlePostersWS streams scheduler changes to one dashboard client
func (s *Server) handlePostersWS(c *websocket.Conn) {
	hub.NewClient(s.posterHub, c).Run()
}
