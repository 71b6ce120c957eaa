package router

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gobwas/ws"
	"github.com/lintang-b-s/wayfinder/pkg/concurrent"
	"github.com/lintang-b-s/wayfinder/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/wayfinder/pkg/http/server"
	"go.uber.org/zap"
)

// handleWebsocket serves planner sessions. Every accepted connection gets
// upgraded and then read in a goroutine pool worker until the peer hangs up,
// ref: https://sergey.kamardin.org/articles/million-websocket-and-go/
func (api *API) handleWebsocket(ctx context.Context, config http_server.Config,
	plannerService controllers.PlannerService, errChan chan error,
) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", config.WebsocketPort))
	if err != nil {
		errChan <- err
		return
	}
	api.log.Info(fmt.Sprintf("planner session websocket API run on port %d", config.WebsocketPort))

	api.pool = concurrent.NewWorkerPool(128, 32)
	api.pool.Spawn(16)

	api.hub = controllers.NewHub(api.pool, plannerService)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					delay := 5 * time.Millisecond
					api.log.Sugar().Infof("accept error: %v; retrying in %s", err, delay)
					time.Sleep(delay)
					continue
				}
				select {
				case <-ctx.Done():
					// listener closed during shutdown
				default:
					errChan <- err
				}
				return
			}

			err = api.pool.ScheduleTimeout(1000*time.Millisecond, func() {
				api.handle(conn)
			})
			if err != nil {
				// pool saturated, shed the connection instead of queueing forever
				if err == concurrent.ErrScheduleTimeout {
					api.log.Sugar().Infof("schedule error: %v; dropping %s", err, nameConn(conn))
				}
				conn.Close()
			}
		}
	}()

	// Handle graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sig:
	case <-ctx.Done():
	}

	ln.Close()

	api.hub.RemoveAllSessions()

	api.pool.Close()

	log.Println("websocket server stopped")
}

func (api *API) handle(conn net.Conn) {
	br := bufio.NewReader(conn)

	rw := struct {
		io.Reader
		io.Writer
	}{br, conn}

	hs, err := ws.Upgrade(rw)
	if err != nil {
		api.log.Info("upgrade error", zap.Error(err), zap.String("connection name ", nameConn(conn)))
		conn.Close()
		return
	}

	api.log.Info("established websocket connection", zap.String("connection name ", nameConn(conn)),
		zap.String("protocol", hs.Protocol))

	session := api.hub.Register(conn)

	for {
		if err := session.HandleEvent(); err != nil {
			if err != io.EOF {
				api.log.Info("session closed", zap.Error(err), zap.String("connection name ", nameConn(conn)))
			}
			api.hub.Remove(session)
			return
		}
	}
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
