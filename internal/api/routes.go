package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mjollne/varde/internal/database"
	"github.com/mjollne/varde/internal/database/models"
	"github.com/mjollne/varde/internal/evidence"
	"github.com/mjollne/varde/internal/feed"
	"github.com/mjollne/varde/internal/fs"
	"github.com/mjollne/varde/internal/tracker"
	"github.com/mjollne/varde/internal/util"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/valyala/fasthttp"
)

const facadeResponse = "Device OK"

// recentAttack is the wire shape of one row in the recent-events response
type recentAttack struct {
	Timestamp string `json:"timestamp"` // ISO-8601
	SourceIP  string `json:"source_ip"`
	Path      string `json:"path"`
	Method    string `json:"method"`
	RiskScore int    `json:"risk_score"`
}

type statsResponse struct {
	TotalRecent   int64                  `json:"total_recent"`
	RiskBreakdown database.RiskBreakdown `json:"risk_breakdown"`
}

type healthResponse struct {
	Status       string              `json:"status"`
	Database     bool                `json:"database"`
	DatabasePath string              `json:"database_path"`
	Evidence     []evidence.FileMeta `json:"evidence"`
}

// setupRoutes configures all the routes for the API server
func (s *Server) setupRoutes() {
	s.app.Get("/", indexHandler)
	s.app.Post("/ingest", s.ingestHandler)

	admin := s.app.Group("/admin", s.gate.Protect())
	admin.Get("/api/attacks", s.recentHandler)
	admin.Get("/api/stats", s.statsHandler)
	admin.Get("/api/alerts", s.alertListHandler)
	admin.Get("/alert/:name", s.alertFileHandler)
	admin.Get("/health", s.healthHandler)
	admin.Get("/stream/attacks", s.streamHandler)
	admin.Get("/ws/attacks", websocket.New(s.wsFeed))
}

// indexHandler handles the root path
func indexHandler(c *fiber.Ctx) error {
	return c.SendString("varde tracker is up and running!")
}

// ingestHandler is the capture intake for the decoy facades. It always answers
// with the facade response: a malformed or failed capture must look exactly
// like a successful one to the prober on the other end.
func (s *Server) ingestHandler(c *fiber.Ctx) error {
	var req tracker.RequestEvent
	if err := c.BodyParser(&req); err != nil {
		util.PrintWarningf("unparseable capture payload from %s: %v", c.IP(), err)
		return c.SendString(facadeResponse)
	}

	if req.ClientIP == "" {
		req.ClientIP = c.IP()
	}
	s.trk.Capture(req)

	return c.SendString(facadeResponse)
}

// recentHandler returns the newest events of the trailing 24 hours
func (s *Server) recentHandler(c *fiber.Ctx) error {
	events, err := s.store.Recent(s.cfg.Tracker.RecentLimit, last24h())
	if err != nil {
		util.PrintErrorf("recent query failed: %v", err)
		return c.JSON([]recentAttack{})
	}

	out := make([]recentAttack, 0, len(events))
	for _, event := range events {
		out = append(out, recentAttack{
			Timestamp: util.ISOTimestamp(event.Timestamp),
			SourceIP:  event.ClientIP,
			Path:      event.Path,
			Method:    event.Method,
			RiskScore: event.RiskScore,
		})
	}
	return c.JSON(out)
}

// statsHandler returns the trailing-24h count and risk histogram
func (s *Server) statsHandler(c *fiber.Ctx) error {
	since := last24h()

	total, err := s.store.CountSince(since)
	if err != nil {
		util.PrintErrorf("stats count failed: %v", err)
		return c.JSON(statsResponse{})
	}
	breakdown, err := s.store.RiskBreakdown(since)
	if err != nil {
		util.PrintErrorf("stats breakdown failed: %v", err)
		return c.JSON(statsResponse{})
	}

	return c.JSON(statsResponse{TotalRecent: total, RiskBreakdown: breakdown})
}

// alertListHandler lists the evidence artifacts, newest first
func (s *Server) alertListHandler(c *fiber.Ctx) error {
	return c.JSON(s.evid.List())
}

// alertFileHandler returns the raw bytes of one evidence artifact. Anything
// that does not resolve to a file under the evidence root is a uniform 404,
// so a traversal probe cannot confirm what exists outside it.
func (s *Server) alertFileHandler(c *fiber.Ctx) error {
	path, err := s.evid.Open(c.Params("name"))
	if err != nil {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.SendFile(path)
}

// healthHandler reports whether the database file exists and summarizes the
// newest evidence artifacts
func (s *Server) healthHandler(c *fiber.Ctx) error {
	files := s.evid.List()
	if len(files) > 20 {
		files = files[:20]
	}
	if files == nil {
		files = []evidence.FileMeta{}
	}

	return c.JSON(healthResponse{
		Status:       "ok",
		Database:     fs.FileExists(s.cfg.DatabasePath()),
		DatabasePath: s.cfg.DatabasePath(),
		Evidence:     files,
	})
}

// streamHandler serves the live feed as a text event stream: one JSON-encoded
// AttackEvent per message, in commit order.
func (s *Server) streamHandler(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	pub := feed.NewPublisher(s.store, s.pollInterval())

	conn := c.Context().Conn()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		// The server write deadline is armed once for the whole response, and
		// a live stream has to outlive it. It is already set by the time this
		// writer runs, so clear it here.
		if conn != nil {
			if err := conn.SetWriteDeadline(time.Time{}); err != nil {
				return
			}
		}

		// The flush surfaces a write error once the client is gone, which
		// ends the publisher loop on its next emission or keepalive.
		pub.OnIdle = func() error {
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return err
			}
			return w.Flush()
		}

		err := pub.Run(context.Background(), func(event models.AttackEvent) error {
			payload, err := json.Marshal(event)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return err
			}
			return w.Flush()
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			util.PrintInfof("attack stream closed: %v", err)
		}
	}))

	return nil
}

// wsFeed serves the same live feed over a websocket
func (s *Server) wsFeed(conn *websocket.Conn) {
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The read pump only exists to notice the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pub := feed.NewPublisher(s.store, s.pollInterval())
	pub.OnIdle = func() error {
		return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
	}

	err := pub.Run(ctx, func(event models.AttackEvent) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		return conn.WriteMessage(websocket.TextMessage, payload)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		util.PrintInfof("attack websocket closed: %v", err)
	}
}

func last24h() float64 {
	return float64(time.Now().Add(-24 * time.Hour).Unix())
}
