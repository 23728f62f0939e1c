package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ktcalder/chatrelay/internal/config"
	"github.com/ktcalder/chatrelay/internal/store"
	"github.com/ktcalder/chatrelay/internal/testutil"
	"github.com/ktcalder/chatrelay/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, st store.MessageRepository) *ChatRelayApp {
	cfg, err := config.NewConfig("localhost:8000", "test-dsn", "test.db", t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	return NewChatRelayApp(http.NewServeMux(), testutil.TestLogger(t), nil, st, cfg)
}

func Test_getMessages(t *testing.T) {
	t.Run("defaults to the global room and page size", func(t *testing.T) {
		older := store.Message{
			Id:        1,
			RoomId:    "global",
			Sender:    types.Sender{Id: "u1", Name: "alice"},
			Text:      "first",
			CreatedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		}
		newer := store.Message{
			Id:        2,
			RoomId:    "global",
			Sender:    types.Sender{Id: "u2", Name: "bob"},
			Text:      "second",
			CreatedAt: time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC),
		}

		st := &store.MockMessageRepository{}
		st.On("ListMessages", "global", mock.AnythingOfType("time.Time"), 25).
			Return([]store.Message{newer, older}, nil)
		defer st.AssertExpectations(t)

		app := newTestApp(t, st)

		req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
		rr := httptest.NewRecorder()
		app.getMessages(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected status 200")

		var got []types.Message
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got), "expected valid JSON body")
		require.Len(t, got, 2, "expected both messages")
		assert.Equal(t, int64(1), got[0].Id, "expected chronological order, oldest first")
		assert.Equal(t, int64(2), got[1].Id, "expected chronological order, newest last")
		assert.Equal(t, "alice", got[0].From.Name, "expected sender to be carried over")
	})

	t.Run("clamps limit to the maximum page size", func(t *testing.T) {
		st := &store.MockMessageRepository{}
		st.On("ListMessages", "general", mock.AnythingOfType("time.Time"), 100).
			Return([]store.Message{}, nil)
		defer st.AssertExpectations(t)

		app := newTestApp(t, st)

		req := httptest.NewRequest(http.MethodGet, "/api/messages?roomId=general&limit=1000", nil)
		rr := httptest.NewRecorder()
		app.getMessages(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected status 200")
	})

	t.Run("clamps limit to at least one", func(t *testing.T) {
		st := &store.MockMessageRepository{}
		st.On("ListMessages", "global", mock.AnythingOfType("time.Time"), 1).
			Return([]store.Message{}, nil)
		defer st.AssertExpectations(t)

		app := newTestApp(t, st)

		req := httptest.NewRequest(http.MethodGet, "/api/messages?limit=-5", nil)
		rr := httptest.NewRecorder()
		app.getMessages(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected status 200")
	})

	t.Run("honors the before cursor", func(t *testing.T) {
		before := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

		st := &store.MockMessageRepository{}
		st.On("ListMessages", "global", before, 25).Return([]store.Message{}, nil)
		defer st.AssertExpectations(t)

		app := newTestApp(t, st)

		req := httptest.NewRequest(http.MethodGet, "/api/messages?before=2026-08-30T12:00:00Z", nil)
		rr := httptest.NewRecorder()
		app.getMessages(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected status 200")
	})

	t.Run("rejects a non-numeric limit", func(t *testing.T) {
		st := &store.MockMessageRepository{}
		defer st.AssertExpectations(t)

		app := newTestApp(t, st)

		req := httptest.NewRequest(http.MethodGet, "/api/messages?limit=lots", nil)
		rr := httptest.NewRecorder()
		app.getMessages(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, "expected status 400")
		st.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a malformed before cursor", func(t *testing.T) {
		st := &store.MockMessageRepository{}
		defer st.AssertExpectations(t)

		app := newTestApp(t, st)

		req := httptest.NewRequest(http.MethodGet, "/api/messages?before=yesterday", nil)
		rr := httptest.NewRecorder()
		app.getMessages(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, "expected status 400")
	})

	t.Run("store error returns 500", func(t *testing.T) {
		st := &store.MockMessageRepository{}
		st.On("ListMessages", "global", mock.AnythingOfType("time.Time"), 25).
			Return([]store.Message{}, errors.New("db closed"))
		defer st.AssertExpectations(t)

		app := newTestApp(t, st)

		req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
		rr := httptest.NewRecorder()
		app.getMessages(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected status 500")
	})
}

func multipartBody(t *testing.T, fieldName, fileName, content string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err, "expected form file to be created")
	_, err = part.Write([]byte(content))
	require.NoError(t, err, "expected form file to be written")
	require.NoError(t, writer.Close(), "expected writer to close")
	return body, writer.FormDataContentType()
}

func Test_uploadFile(t *testing.T) {
	t.Run("stores the file under a generated name", func(t *testing.T) {
		app := newTestApp(t, &store.MockMessageRepository{})
		app.generateShortId = func() (string, error) { return "abc123", nil }

		body, contentType := multipartBody(t, "file", "cat.png", "not really a png")

		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		app.uploadFile(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "expected status 200")

		var resp UploadResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), "expected valid JSON body")
		assert.Equal(t, "abc123.png", resp.FileName, "expected generated name keeping the upload's extension")
		assert.Equal(t, "/uploads/abc123.png", resp.Url, "expected public url")

		saved, err := os.ReadFile(filepath.Join(app.uploadDir, "abc123.png"))
		require.NoError(t, err, "expected file on disk")
		assert.Equal(t, "not really a png", string(saved), "expected file content to match")
	})

	t.Run("missing file field returns 400", func(t *testing.T) {
		app := newTestApp(t, &store.MockMessageRepository{})

		body, contentType := multipartBody(t, "attachment", "cat.png", "data")

		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		app.uploadFile(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, "expected status 400")
	})

	t.Run("non-multipart request returns 400", func(t *testing.T) {
		app := newTestApp(t, &store.MockMessageRepository{})

		req := httptest.NewRequest(http.MethodPost, "/api/uploads", bytes.NewBufferString("plain"))
		rr := httptest.NewRecorder()
		app.uploadFile(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code, "expected status 400")
	})

	t.Run("short id failure returns 500", func(t *testing.T) {
		app := newTestApp(t, &store.MockMessageRepository{})
		app.generateShortId = func() (string, error) { return "", errors.New("entropy exhausted") }

		body, contentType := multipartBody(t, "file", "cat.png", "data")

		req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()
		app.uploadFile(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code, "expected status 500")
	})
}
