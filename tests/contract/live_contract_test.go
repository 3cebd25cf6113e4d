package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/seva-edu/seva-go-api/internal/authz"
	"github.com/seva-edu/seva-go-api/internal/dto"
	"github.com/seva-edu/seva-go-api/internal/handler"
	"github.com/seva-edu/seva-go-api/internal/models"
)

type stubLiveService struct {
	room dto.LiveResponse
}

func (s stubLiveService) CreateDraft(context.Context, authz.Principal, dto.LiveCreateRequest) (dto.LiveResponse, error) {
	return s.room, nil
}

func (s stubLiveService) SubmitReview(context.Context, authz.Principal, uint) (dto.LiveResponse, error) {
	return s.room, nil
}

func (s stubLiveService) Audit(context.Context, authz.Principal, uint, dto.LiveAuditRequest) (dto.LiveResponse, error) {
	return s.room, nil
}

func (s stubLiveService) Publish(context.Context, authz.Principal, uint) (dto.LiveResponse, error) {
	return s.room, nil
}

func (s stubLiveService) Start(context.Context, authz.Principal, uint) (dto.LiveResponse, error) {
	return s.room, nil
}

func (s stubLiveService) Finish(context.Context, authz.Principal, uint) (dto.LiveResponse, error) {
	return s.room, nil
}

func (s stubLiveService) Offline(context.Context, authz.Principal, uint, dto.LiveOfflineRequest) (dto.LiveResponse, error) {
	return s.room, nil
}

func (s stubLiveService) Get(context.Context, authz.Principal, uint) (dto.LiveResponse, error) {
	return s.room, nil
}

func (s stubLiveService) List(context.Context, authz.Principal, dto.LiveListRequest) (dto.LiveListResponse, error) {
	return dto.LiveListResponse{Items: []dto.LiveResponse{s.room}}, nil
}

func TestLiveRoomContract(t *testing.T) {
	schema := compileSchema(t, "live_room.schema.json")

	started := time.Now().UTC()
	svc := stubLiveService{room: dto.LiveResponse{
		ID:            7,
		Title:         "Evening math",
		Status:        models.LiveStatusLiving,
		PlanStartTime: started,
		PlanEndTime:   started.Add(time.Hour),
		ActualStart:   &started,
		PullURL:       "https://stream.seva.local/live/abc.m3u8",
		AnchorID:      10,
		CollegeID:     1,
		CreatedAt:     started,
		UpdatedAt:     started,
	}}

	app := fiber.New()
	handler.NewLiveHandler(svc, zerolog.Nop()).Register(app.Group("/api/v1/lives"))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/lives/7", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
