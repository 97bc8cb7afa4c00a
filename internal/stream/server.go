// Package stream serves the particle background over websockets. Every
// connection gets its own scheduler, viewport and controller; the browser
// reports its size and receives one binary draw-command frame per tick.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/matflow/internal/lifecycle"
	"github.com/san-kum/matflow/internal/render"
	"github.com/san-kum/matflow/internal/scheduler"
)

const (
	writeWait     = 2 * time.Second
	maxMessage    = 512
	defaultWidth  = 1280
	defaultHeight = 720
	maxDimension  = 8192
)

// ResizeMessage is the client's viewport-size-change notification.
type ResizeMessage struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type Server struct {
	opts        lifecycle.Options
	fps         int
	maxSessions int

	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	sessions int
	closed   bool
}

var (
	errClosing  = errors.New("server closing")
	errSessions = errors.New("too many sessions")
)

func NewServer(opts lifecycle.Options, fps, maxSessions int) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		opts:        opts,
		fps:         fps,
		maxSessions: maxSessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:    1024,
			WriteBufferSize:   4096,
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

// Close ends every session and waits for their controllers to unmount.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
	s.wg.Wait()
}

// acquire reserves a session slot. The WaitGroup is joined under the same
// lock that Close takes, so no session starts once Close is waiting.
func (s *Server) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosing
	}
	if s.maxSessions > 0 && s.sessions >= s.maxSessions {
		return errSessions
	}
	s.sessions++
	s.wg.Add(1)
	return nil
}

func (s *Server) release() {
	s.mu.Lock()
	s.sessions--
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := s.acquire(); err != nil {
		log.Println("stream: rejected session:", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer s.release()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("stream: upgrade failed:", err)
		return
	}
	defer conn.Close()

	width := queryDim(r, "w", defaultWidth)
	height := queryDim(r, "h", defaultHeight)
	if err := s.run(conn, width, height); err != nil && !isClosed(err) {
		log.Printf("stream: session ended: %v", err)
	}
}

func (s *Server) run(conn *websocket.Conn, width, height int) error {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	sched := scheduler.New()
	view := scheduler.NewViewport(width, height)
	rec := render.NewRecorder(width, height)
	ctrl := lifecycle.New(lifecycle.NewLocalHost(sched, view, lifecycle.StaticSurface(rec)), s.opts)
	if err := ctrl.Mount(); err != nil {
		return err
	}
	defer ctrl.Unmount()

	conn.SetReadLimit(maxMessage)
	go func() {
		defer cancel()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg ResizeMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Println("stream: bad resize message:", err)
				continue
			}
			w, h := clampDim(msg.Width), clampDim(msg.Height)
			sched.Post(func() { view.Resize(w, h) })
		}
	}()

	var buf []byte
	err := sched.Run(ctx, s.fps, func(fired int) error {
		if fired == 0 {
			return nil
		}
		w, h := rec.Size()
		buf = EncodeFrame(buf[:0], w, h, rec.Commands())
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.BinaryMessage, buf)
	})

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func queryDim(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return clampDim(v)
}

// clampDim bounds client-reported sizes. Zero and negative sizes pass
// through as degenerate bounds.
func clampDim(v int) int {
	return min(v, maxDimension)
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, websocket.ErrCloseSent)
}
