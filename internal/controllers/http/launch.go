package http

import (
	"io"
	"log"
	"net/http"

	"book-order-service/internal/video"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Launch(c *gin.Context) {
	setting, err := h.settings.Current(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	var resp LaunchResponse
	if setting != nil && setting.YoutubeURL != nil {
		resp.YoutubeURL = setting.YoutubeURL
		if id := video.ExtractID(*setting.YoutubeURL); id != "" {
			resp.VideoID = id
			resp.EmbedURL = video.EmbedURL(id)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// LaunchStream holds the request open and relays registry events as
// server-sent events until the client goes away or the registry drops the
// connection.
func (h *Handler) LaunchStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")

	ctx := c.Request.Context()
	ch := h.streams.Register(ctx)
	defer h.streams.Unregister(ch)

	log.Printf("stream: client %s connected", c.ClientIP())
	c.Stream(func(w io.Writer) bool {
		select {
		case ev := <-ch.Events():
			c.SSEvent(ev.Type, ev)
			return true
		case <-ch.Done():
			return false
		case <-ctx.Done():
			return false
		}
	})
	log.Printf("stream: client %s disconnected", c.ClientIP())
}
