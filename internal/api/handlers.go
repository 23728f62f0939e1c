package api

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ktcalder/chatrelay/internal/server"
	"github.com/ktcalder/chatrelay/internal/types"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

type UploadResponse struct {
	Url      string `json:"url"`
	FileName string `json:"fileName"`
}

func (s *ChatRelayApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

// getMessages serves paginated history for a room: up to limit messages
// created before the given timestamp, returned in chronological order.
func (s *ChatRelayApp) getMessages(w http.ResponseWriter, r *http.Request) {
	roomId := r.URL.Query().Get("roomId")
	if roomId == "" {
		roomId = server.GlobalRoom
	}

	limit := defaultPageSize
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}
	limit = min(max(limit, 1), maxPageSize)

	before := time.Now().UTC()
	if beforeStr := r.URL.Query().Get("before"); beforeStr != "" {
		var err error
		before, err = time.Parse(time.RFC3339, beforeStr)
		if err != nil {
			errResp := NewBadRequestError()
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	messages, err := s.store.ListMessages(roomId, before, limit)
	if err != nil {
		s.log.Println("list messages:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	// store returns newest first; history reads oldest to newest
	slices.Reverse(messages)

	wireMessages := make([]types.Message, 0, len(messages))
	for _, msg := range messages {
		wireMessages = append(wireMessages, types.Message{
			Id:          msg.Id,
			RoomId:      msg.RoomId,
			From:        msg.Sender,
			To:          msg.Recipient,
			Text:        msg.Text,
			Attachments: msg.Attachments,
			Reactions:   msg.Reactions,
			ReadBy:      msg.ReadBy,
			CreatedAt:   msg.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, wireMessages)
}

func (s *ChatRelayApp) uploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer file.Close()

	sid, err := s.generateShortId()
	if err != nil {
		s.log.Print("generateShortId:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		s.log.Println("create upload dir:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	fileName := sid + filepath.Ext(header.Filename)
	dst, err := os.Create(filepath.Join(s.uploadDir, fileName))
	if err != nil {
		s.log.Println("create upload file:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		s.log.Println("write upload file:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, UploadResponse{
		Url:      "/uploads/" + fileName,
		FileName: fileName,
	})
}

func (s *ChatRelayApp) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(uuid.NewString(), conn, s.cs, s.log)

	s.cs.RegisterChan <- client
	go client.Write()
	go client.Read()
}
