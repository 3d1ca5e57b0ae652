package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"afcon-assistant-be/internal/dto"
	"afcon-assistant-be/internal/pkg/serverutils"
	"afcon-assistant-be/pkg/rag/response"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type fakeAssistantService struct {
	res          *dto.ChatResponse
	err          error
	gotSessionId string
}

func (f *fakeAssistantService) Chat(ctx context.Context, sessionId string, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	f.gotSessionId = sessionId
	return f.res, f.err
}

func newTestApp(svc *fakeAssistantService) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewChatController(svc).RegisterRoutes(api)
	return app
}

func chatRequest(t *testing.T, body string, sessionId string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat/v1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if sessionId != "" {
		req.Header.Set("X-Session-Id", sessionId)
	}
	return req
}

func TestChatSuccess(t *testing.T) {
	svc := &fakeAssistantService{res: &dto.ChatResponse{
		SessionId: "abc",
		Answer:    "There are 12 pharmacies in Sale.",
	}}
	app := newTestApp(svc)

	resp, err := app.Test(chatRequest(t, `{"question": "pharmacies in Sale?"}`, "abc"))
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "abc", svc.gotSessionId)

	var result struct {
		Success bool             `json:"success"`
		Data    dto.ChatResponse `json:"data"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Success)
	assert.Equal(t, "There are 12 pharmacies in Sale.", result.Data.Answer)
	assert.Equal(t, "abc", result.Data.SessionId)
}

func TestChatValidation(t *testing.T) {
	app := newTestApp(&fakeAssistantService{})

	resp, err := app.Test(chatRequest(t, `{"question": ""}`, ""))
	assert.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestChatGenerationFailureIsUserSafe(t *testing.T) {
	svc := &fakeAssistantService{err: &response.GenerationError{Cause: errors.New("raw backend stack trace")}}
	app := newTestApp(svc)

	resp, err := app.Test(chatRequest(t, `{"question": "hello"}`, ""))
	assert.NoError(t, err)
	assert.Equal(t, 503, resp.StatusCode)

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.False(t, result.Success)
	assert.NotContains(t, result.Message, "stack trace")
	assert.Contains(t, result.Message, "Sorry")
}
